package app

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// ErrAlreadyRunning indicates Run was called on a running application.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNoBackend indicates New was called without a backend.
	ErrNoBackend = errors.New("no compositor backend")

	// ErrShutdownTimeout indicates the backend did not stop in time.
	ErrShutdownTimeout = errors.New("shutdown timeout exceeded")
)

// InitError represents an error during application initialization.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("failed to initialize %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ComponentError wraps a runtime failure with the component and the action
// that failed. Runtime failures are logged, never returned from Run.
type ComponentError struct {
	Component string // e.g. "config", "keymap"
	Action    string // e.g. "reload"
	Err       error
}

// NewComponentError creates a new ComponentError.
func NewComponentError(component, action string, err error) *ComponentError {
	return &ComponentError{
		Component: component,
		Action:    action,
		Err:       err,
	}
}

func (e *ComponentError) Error() string {
	if e == nil {
		return ""
	}
	if e.Action != "" {
		return fmt.Sprintf("%s: %s: %v", e.Component, e.Action, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Component, e.Err)
}

func (e *ComponentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
