package models

import (
	"errors"
	"fmt"
)

var (
	ErrNoRecord          = errors.New("models: no matching record found")
	ErrBioNotFound       = errors.New("bio not found")
	ErrOfferNotFound     = errors.New("offer not found")
	ErrAdoptionNotFound  = errors.New("adoption not found")
	ErrTrackingNotFound  = errors.New("tracking code not found")
	ErrDuplicateAdoption = errors.New("offer already adopted")
)

// StatusError is returned by adoption/offer gates that must surface a
// specific HTTP status to the caller (402, 403, 404, 409, 400).
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

func NewStatusError(code int, format string, args ...interface{}) *StatusError {
	return &StatusError{Code: code, Message: fmt.Sprintf(format, args...)}
}
