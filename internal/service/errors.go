package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument request values the service refuses.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict the request contradicts the stored state.
	ErrConflict = errors.New("conflict")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
