package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User's Password always holds the bcrypt digest, never the plaintext.
// The json:"-" tag keeps it out of every API response.
type User struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FirstName string             `json:"firstName" bson:"first_name" validate:"required,min=1,max=60"`
	LastName  string             `json:"lastName" bson:"last_name" validate:"required,min=1,max=60"`
	Email     string             `json:"email" bson:"email" validate:"required,email,max=254"`
	Password  string             `json:"-" bson:"password" validate:"required"`
	CreatedAt time.Time          `json:"createdAt,omitempty" bson:"created_at"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,min=1,max=60"`
	LastName  string `json:"lastName" validate:"required,min=1,max=60"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdate carries the mutable profile fields. A nil Password leaves
// the stored digest untouched; a supplied one is re-hashed.
type ProfileUpdate struct {
	FirstName string  `json:"firstName" validate:"required,min=1,max=60"`
	LastName  string  `json:"lastName" validate:"required,min=1,max=60"`
	Password  *string `json:"password,omitempty"`
}
