package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/currency"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ru"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrRequestNotFound = errors.New("join request not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrUserNotFound    = errors.New("user not found")

	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyJoined    = errors.New("user already joined")
	ErrDuplicateRequest = errors.New("pending join request already exists")
	ErrCapacityExceeded = errors.New("event capacity exceeded")
	ErrAlreadyProcessed = errors.New("request already processed")
	ErrNotAParticipant  = errors.New("user is not a participant")

	ErrAlreadyWaitlisted = errors.New("user already waitlisted")
	ErrNotWaitlisted     = errors.New("user is not waitlisted")
	ErrEventNotFull      = errors.New("event is not full")
	ErrApprovalRequired  = errors.New("approval-gated events have no waitlist")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// PaymentRequiredError is returned by the join workflow for paid events when
// no transaction code accompanies the attempt. It carries the price so the
// client can render it.
type PaymentRequiredError struct {
	Amount   float64
	Currency string
}

func (e *PaymentRequiredError) Error() string {
	return fmt.Sprintf("payment required: %.2f %s", e.Amount, e.Currency)
}

var translators = map[string]locales.Translator{
	"en": en.New(),
	"ru": ru.New(),
}

var currencies = map[string]currency.Type{
	"USD": currency.USD,
	"EUR": currency.EUR,
	"GBP": currency.GBP,
	"UAH": currency.UAH,
	"RUB": currency.RUB,
}

// Display renders the price in the user's locale, e.g. "$15.00".
func (e *PaymentRequiredError) Display(lang string) string {
	t, ok := translators[lang]
	if !ok {
		t = translators["en"]
	}
	c, ok := currencies[e.Currency]
	if !ok {
		return fmt.Sprintf("%.2f %s", e.Amount, e.Currency)
	}
	return t.FmtCurrency(e.Amount, 2, c)
}
