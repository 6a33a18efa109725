package services

import (
	"errors"
	"fmt"

	"github.com/yeremiapane/club-manager/repository"
)

var (
	ErrTableUnavailable    = errors.New("table is not available")
	ErrTableOccupied       = errors.New("cannot delete occupied table")
	ErrTableNotOccupied    = errors.New("table is not occupied")
	ErrTableNotFound       = errors.New("table not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrQueueFull           = errors.New("waitlist is full")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidSessionState = errors.New("table has a partial session record")
)

// ConflictError is a scheduling rejection. Reason is meant to be shown to
// the operator as is.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func conflict(format string, args ...interface{}) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StoreError wraps a failure of the backing store. The mutation was not
// applied and may be retried.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// storeErr maps repository errors to domain errors. Domain errors returned
// from inside a transaction pass through untouched.
func storeErr(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	var (
		ce *ConflictError
		ve *ValidationError
		se *StoreError
	)
	switch {
	case errors.Is(err, repository.ErrNotFound) && notFound != nil:
		return notFound
	case errors.As(err, &ce), errors.As(err, &ve), errors.As(err, &se):
		return err
	case errors.Is(err, ErrTableUnavailable), errors.Is(err, ErrTableOccupied),
		errors.Is(err, ErrTableNotOccupied), errors.Is(err, ErrTableNotFound),
		errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrQueueFull),
		errors.Is(err, ErrInvalidSessionState):
		return err
	}
	return &StoreError{Op: op, Err: err}
}
