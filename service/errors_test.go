package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentRequiredErrorMessage(t *testing.T) {
	err := &PaymentRequiredError{Amount: 15, Currency: "USD"}
	assert.Equal(t, "payment required: 15.00 USD", err.Error())
}

func TestPaymentRequiredErrorDisplay(t *testing.T) {
	err := &PaymentRequiredError{Amount: 15, Currency: "USD"}

	assert.Equal(t, "$15.00", err.Display("en"))

	// Unknown locales fall back to English formatting.
	assert.Equal(t, "$15.00", err.Display("de"))

	// Unknown currencies render plainly instead of failing.
	plain := &PaymentRequiredError{Amount: 9.5, Currency: "CHF"}
	assert.Equal(t, "9.50 CHF", plain.Display("en"))
}
