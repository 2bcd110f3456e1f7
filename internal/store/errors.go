package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPersistence       = errors.New("persistence failure")
	ErrInvalidInput      = errors.New("invalid input")
)

// persistError marks err as a failed durable write. The in-memory change that
// preceded it is kept.
func persistError(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, what, err)
}
