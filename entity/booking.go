package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SportService is a bookable offering published by a coach: a training
// session, a court rental, a guided run.
type SportService struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID primitive.ObjectID `bson:"coachId" json:"coachId"`
	Coach   *User              `bson:"coach,omitempty" json:"coach,omitempty"`

	Title       string  `bson:"title" json:"title"`
	Sport       string  `bson:"sport" json:"sport"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	PricePerHr  float64 `bson:"pricePerHour" json:"pricePerHour"`
	Currency    string  `bson:"currency" json:"currency"`
	Active      bool    `bson:"active" json:"active"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingDeclined  BookingStatus = "declined"
	BookingCancelled BookingStatus = "cancelled"
)

// Terminal reports whether the booking can no longer transition. Mirrors the
// join-request rule: once decided, a booking never reverts.
func (s BookingStatus) Terminal() bool {
	return s == BookingConfirmed || s == BookingDeclined || s == BookingCancelled
}

type Booking struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ServiceID primitive.ObjectID `bson:"serviceId" json:"serviceId"`
	Service   *SportService      `bson:"service,omitempty" json:"service,omitempty"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"`
	ClientID  primitive.ObjectID `bson:"clientId" json:"clientId"`

	// Opaque reference handed to the client, used in payment reconciliation.
	Reference string `bson:"reference" json:"reference"`

	StartsAt time.Time     `bson:"startsAt" json:"startsAt"`
	Hours    int           `bson:"hours" json:"hours"`
	Status   BookingStatus `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
