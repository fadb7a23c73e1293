package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`

	// Preferred IETF language code, drives notification copy.
	Lang string `bson:"lang,omitempty" json:"lang,omitempty"`

	AllowsNotifications bool     `bson:"allowsNotifications" json:"allowsNotifications"`
	PushTokens          []string `bson:"pushTokens,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
