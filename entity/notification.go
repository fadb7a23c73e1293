package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationParticipantJoined   = "participant_joined"
	NotificationJoinRequestCreated  = "join_request_created"
	NotificationJoinRequestApproved = "join_request_approved"
	NotificationJoinRequestRejected = "join_request_rejected"
	NotificationWaitlistPromoted    = "waitlist_promoted"
	NotificationBookingRequested    = "booking_requested"
	NotificationBookingConfirmed    = "booking_confirmed"
	NotificationBookingDeclined     = "booking_declined"
)

type Notification struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"userId" json:"userId"`

	Type  string `bson:"type" json:"type"`
	Title string `bson:"title" json:"title"`
	Body  string `bson:"body" json:"body"`

	// Reference back to the record that produced the notification.
	RefType string             `bson:"refType,omitempty" json:"refType,omitempty"`
	RefID   primitive.ObjectID `bson:"refId,omitempty" json:"refId,omitempty"`

	Read      bool       `bson:"read" json:"read"`
	ReadAt    *time.Time `bson:"readAt,omitempty" json:"readAt,omitempty"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
}
