package repository

import "errors"

// ErrNotFound is returned when no document matched. For the guarded update
// helpers it also covers a failed precondition: the caller re-reads the
// document to tell the two apart.
var ErrNotFound = errors.New("repository: not found")
