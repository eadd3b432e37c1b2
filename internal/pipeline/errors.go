package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned for an operation the current state does not allow.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrBusy is returned while another operation on the session is in flight.
	ErrBusy = errors.New("session busy")
)

// TransitionError names the rejected move.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
