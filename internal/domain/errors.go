package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrSlotOccupied  = errors.New("a meal already exists")
	ErrUsernameTaken = errors.New("username already taken")
)

// ValidationError describes why a single field was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes every ValidationError match ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Invalid builds a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// SlotOccupied wraps ErrSlotOccupied with the slot that was taken.
func SlotOccupied(s Slot) error {
	return fmt.Errorf("%w for %s", ErrSlotOccupied, s)
}
