package entity

import (
	"fmt"
	"time"

	"github.com/klauspost/lctime"
	"github.com/sportmate/server/util"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
)

type PricingType string

const (
	PricingFree PricingType = "free"
	PricingPaid PricingType = "paid"
)

type Pricing struct {
	Type     PricingType `bson:"type" json:"type"`
	Amount   float64     `bson:"amount,omitempty" json:"amount,omitempty"`
	Currency string      `bson:"currency,omitempty" json:"currency,omitempty"`
}

// Capacity is the participant ledger embedded in an event. Current mirrors
// len(ParticipantIDs) and is maintained by the same document update that
// mutates the participant array.
type Capacity struct {
	Current int `bson:"current" json:"current"`
	Max     int `bson:"max" json:"max"`
}

type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestApproved JoinRequestStatus = "approved"
	JoinRequestRejected JoinRequestStatus = "rejected"
)

// JoinRequest lives inside its event document. Entries are appended by the
// join workflow and transitioned by the organizer; they are never removed.
type JoinRequest struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	TransactionCode string             `bson:"transactionCode" json:"transactionCode"`
	Status          JoinRequestStatus  `bson:"status" json:"status"`
	RequestedAt     time.Time          `bson:"requestedAt" json:"requestedAt"`
	RespondedAt     *time.Time         `bson:"respondedAt,omitempty" json:"respondedAt,omitempty"`
}

type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizerID primitive.ObjectID `bson:"organizerId" json:"organizerId"`
	Organizer   *User              `bson:"organizer,omitempty" json:"organizer,omitempty"`

	Title       string      `bson:"title" json:"title"`
	Sport       string      `bson:"sport" json:"sport"`
	Description string      `bson:"description,omitempty" json:"description,omitempty"`
	Location    string      `bson:"location,omitempty" json:"location,omitempty"`
	StartsAt    time.Time   `bson:"startsAt" json:"startsAt"`
	Status      EventStatus `bson:"status" json:"status"`

	RequiresApproval bool    `bson:"requiresApproval" json:"requiresApproval"`
	Pricing          Pricing `bson:"pricing" json:"pricing"`

	Capacity       Capacity             `bson:"capacity" json:"capacity"`
	ParticipantIDs []primitive.ObjectID `bson:"participantIds" json:"participantIds"`
	Waitlist       []primitive.ObjectID `bson:"waitlist" json:"waitlist"`
	JoinRequests   []*JoinRequest       `bson:"joinRequests" json:"joinRequests"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (e *Event) IsFull() bool {
	return len(e.ParticipantIDs) >= e.Capacity.Max
}

func (e *Event) HasParticipant(userID primitive.ObjectID) bool {
	for _, id := range e.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (e *Event) IsWaitlisted(userID primitive.ObjectID) bool {
	for _, id := range e.Waitlist {
		if id == userID {
			return true
		}
	}
	return false
}

// PendingRequestFor returns the user's pending join request, if any. At most
// one pending request per user can exist; approved and rejected entries stay
// behind and do not count.
func (e *Event) PendingRequestFor(userID primitive.ObjectID) *JoinRequest {
	for _, req := range e.JoinRequests {
		if req.UserID == userID && req.Status == JoinRequestPending {
			return req
		}
	}
	return nil
}

func (e *Event) GetJoinRequest(requestID primitive.ObjectID) *JoinRequest {
	for _, req := range e.JoinRequests {
		if req.ID == requestID {
			return req
		}
	}
	return nil
}

func (e *Event) IsPaid() bool {
	return e.Pricing.Type == PricingPaid
}

func (e *Event) Alias(lang string) string {
	format := "%A, %d.%m.%Y %H:%M"
	if e.StartsAt.Hour() == 0 && e.StartsAt.Minute() == 0 {
		format = "%A, %d.%m.%Y"
	}
	t, _ := lctime.StrftimeLoc(util.IetfToIsoLangCode(lang), format, e.StartsAt)
	return fmt.Sprintf("%s (%s)", e.Title, t)
}
