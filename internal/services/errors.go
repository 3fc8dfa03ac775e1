package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTemporarilyLocked  = errors.New("account temporarily locked, try again later")
	ErrAccountNotActive   = errors.New("account is not active")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidResetToken  = errors.New("invalid reset token")
	ErrResetTokenExpired  = errors.New("reset token has expired")
	ErrInvalidReason      = errors.New("reason must be at least 3 characters")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnsupportedMedia   = errors.New("only image and video files are allowed")
	ErrNotFound           = errors.New("not found")
)

// EntityError reports a missing row of a named entity.
type EntityError struct {
	Entity string
}

func (e *EntityError) Error() string {
	return e.Entity + " not found"
}

func (e *EntityError) Unwrap() error {
	return ErrNotFound
}

func notFound(entity string) error {
	return &EntityError{Entity: entity}
}

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func transitionError(from, action string) error {
	return fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, action, from)
}
