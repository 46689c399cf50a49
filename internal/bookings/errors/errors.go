package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrDuplicateSeat = errors.New("seat already booked on this bus")
)
