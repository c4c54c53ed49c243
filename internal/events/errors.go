package events

import (
	"errors"
	"fmt"
)

var (
	// ErrNilHandler is returned when a nil handler is registered.
	ErrNilHandler = errors.New("handler cannot be nil")
	// ErrInvalidName is returned when an event name is empty.
	ErrInvalidName = errors.New("event name cannot be empty")
	// ErrRecursionLimit is returned when nested emits exceed the configured depth.
	ErrRecursionLimit = errors.New("event recursion limit exceeded")
	// ErrHandlerPanic matches any *PanicError.
	ErrHandlerPanic = errors.New("handler panicked")
)

// PanicError reports a recovered handler panic.
type PanicError struct {
	Name  string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic on %q: %v", e.Name, e.Value)
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
