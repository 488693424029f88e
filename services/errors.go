package services

import (
	"errors"
	"fmt"
)

// Domain errors surfaced by the application and messaging services. Routes
// map these to HTTP statuses; anything wrapped by storeErr is a persistence
// failure.
var (
	ErrUnauthenticated      = errors.New("no authenticated user")
	ErrUnauthorized         = errors.New("not allowed to perform this action")
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateApplication = errors.New("an application for this property already exists")
	ErrInvalidTransition    = errors.New("application already decided")
	ErrValidation           = errors.New("invalid input")
)

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: store failure: %w", op, err)
}

func validationErr(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
