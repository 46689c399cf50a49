package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking is the passenger record linking a user, a bus and a seat.
// UserID is always taken from the authenticated identity, never from the
// request body.
type Booking struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name" validate:"required,min=2,max=100"`
	IdentityNumber string             `json:"identityNumber" bson:"identity_number" validate:"required,min=2,max=40"`
	Age            int                `json:"age" bson:"age" validate:"required,min=1,max=120"`
	Contact        string             `json:"contact" bson:"contact" validate:"required,min=7,max=20"`
	Seat           string             `json:"seat" bson:"seat" validate:"required,min=1,max=10"`
	BusID          primitive.ObjectID `json:"busId" bson:"bus_id"`
	Price          float64            `json:"price" bson:"price" validate:"required,gt=0"`
	BookingDate    time.Time          `json:"bookingDate,omitempty" bson:"booking_date"`
	UserID         primitive.ObjectID `json:"userId,omitempty" bson:"user_id"`
}

// BookingRequest is the create payload. A userId field, if the client sends
// one, is deliberately absent here so it can never override the
// authenticated identity.
type BookingRequest struct {
	Name           string             `json:"name" validate:"required,min=2,max=100"`
	IdentityNumber string             `json:"identityNumber" validate:"required,min=2,max=40"`
	Age            int                `json:"age" validate:"required,min=1,max=120"`
	Contact        string             `json:"contact" validate:"required,min=7,max=20"`
	Seat           string             `json:"seat" validate:"required,min=1,max=10"`
	BusID          primitive.ObjectID `json:"busId"`
	Price          float64            `json:"price" validate:"required,gt=0"`
}

// BookingWithBus is the list projection: the booking joined with its
// referenced bus. Bus is nil when the bus document has been removed.
type BookingWithBus struct {
	Booking `bson:",inline"`
	Bus     *Bus `json:"bus,omitempty" bson:"bus,omitempty"`
}
