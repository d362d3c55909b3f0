package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDirection is returned for anything other than the four directions.
	ErrInvalidDirection = errors.New("game: invalid direction")

	// ErrNoSnapshot means no saved game exists. It is not a failure; callers
	// start a fresh game.
	ErrNoSnapshot = errors.New("game: no saved snapshot")

	// ErrCorruptSnapshot means a save exists but cannot be used.
	ErrCorruptSnapshot = errors.New("game: corrupt snapshot")
)

// ValidationError describes why a snapshot was rejected.
// It matches ErrCorruptSnapshot with errors.Is.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap ties every validation failure to ErrCorruptSnapshot.
func (e *ValidationError) Unwrap() error {
	return ErrCorruptSnapshot
}

func invalid(code, format string, args ...any) error {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}
