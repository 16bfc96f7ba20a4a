package renderer

import (
	"errors"
	"fmt"
)

var (
	// ErrSuperseded is returned by a Load overtaken by a newer Load or by
	// Destroy. It writes no state and emits no events.
	ErrSuperseded = errors.New("load superseded")
	// ErrDestroyed marks operations invoked after Destroy.
	ErrDestroyed = errors.New("renderer destroyed")
	// ErrUnsupported is wrapped in a LoadError when no backend accepts the
	// source.
	ErrUnsupported = errors.New("unsupported source")
)

// LoadError reports a failed Load: an unreachable source or a backend
// rejecting the bytes.
type LoadError struct {
	Op     string
	Format string
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	msg := e.Op
	if e.Format != "" {
		msg += " " + e.Format
	}
	if e.Source != "" {
		msg += " " + e.Source
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// RangeError describes a unit index outside the document. Navigation fails
// soft, so it is only logged.
type RangeError struct {
	Unit  int
	Count int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("unit %d out of range [1, %d]", e.Unit, e.Count)
}

// StateError reports an operation the current state does not allow.
type StateError struct {
	Op    string
	State State
	Err   error
}

func (e *StateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s in state %s: %v", e.Op, e.State, e.Err)
	}
	return fmt.Sprintf("%s in state %s", e.Op, e.State)
}

func (e *StateError) Unwrap() error { return e.Err }

// SearchError reports a query the matcher could not compile.
type SearchError struct {
	Query string
	Err   error
}

func (e *SearchError) Error() string { return fmt.Sprintf("search %q: %v", e.Query, e.Err) }

func (e *SearchError) Unwrap() error { return e.Err }

// IsLoadError reports whether err is or wraps a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// IsStateError reports whether err is or wraps a *StateError.
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}
