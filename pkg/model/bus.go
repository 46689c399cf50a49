package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Bus struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Source      string             `json:"source" bson:"source" validate:"required,min=2,max=100"`
	Destination string             `json:"destination" bson:"destination" validate:"required,min=2,max=100"`
	BusName     string             `json:"busName" bson:"bus_name" validate:"required,min=2,max=100"`
	Time        string             `json:"time" bson:"time" validate:"required,datetime=15:04"`
	Date        string             `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	CreatedAt   time.Time          `json:"createdAt,omitempty" bson:"created_at"`
}

// BusFilter holds the optional search criteria. Source and destination are
// matched as case-insensitive substrings, date and time exactly.
type BusFilter struct {
	Source      string
	Destination string
	Date        string
	Time        string
}

func (f BusFilter) IsEmpty() bool {
	return f.Source == "" && f.Destination == "" && f.Date == "" && f.Time == ""
}
