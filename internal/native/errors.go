package native

import (
	"errors"
	"fmt"
)

var (
	// ErrDestroyed is wrapped by the panic raised when a destroyed window is
	// used.
	ErrDestroyed = errors.New("native window destroyed")
	// ErrNotFound reports an unknown window or display id.
	ErrNotFound = errors.New("not found")
	// ErrUnsupported reports an attribute the backend cannot change.
	ErrUnsupported = errors.New("unsupported by backend")
)

// CreationError reports a failed native window construction. There is no
// degraded mode without a handle, so callers propagate it.
type CreationError struct {
	Err error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("create native window: %v", e.Err)
}

func (e *CreationError) Unwrap() error { return e.Err }

// QueryError reports a failed native getter. After creation it is treated as
// a broken contract and raised as a panic.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// CommandError reports a failed native setter. The store keeps its
// last-known-good value.
type CommandError struct {
	Op  string
	Err error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s: %v", e.Op, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }
