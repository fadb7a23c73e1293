package service

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payload carries the identifiers a workflow transition produced. Which of
// the fields are set depends on the event name.
type Payload struct {
	EventID       primitive.ObjectID
	EventTitle    string
	EventStartsAt time.Time
	OrganizerID   primitive.ObjectID

	// The participant, requester, or client the transition is about.
	UserID primitive.ObjectID

	BookingID    primitive.ObjectID
	ServiceTitle string
}

// Emitter broadcasts workflow transitions. Implementations are fire-and-
// forget: Emit never blocks the caller and never reports failure back into
// the workflow.
type Emitter interface {
	Emit(event string, payload Payload)
}

// NopEmitter drops everything. Used in tests and maintenance commands.
type NopEmitter struct{}

func (NopEmitter) Emit(string, Payload) {}
