package errors

import "errors"

var ErrNotFound = errors.New("bus not found")
