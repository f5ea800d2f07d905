package bookmarks

import "fmt"

// ErrKind classifies a store failure.
type ErrKind int

const (
	// ErrInit means durable storage could not be opened or created.
	ErrInit ErrKind = iota
	// ErrIO means a read or write failed after successful initialization.
	ErrIO
)

func (k ErrKind) String() string {
	switch k {
	case ErrInit:
		return "init"
	case ErrIO:
		return "io"
	default:
		return "unknown"
	}
}

// StoreError is the classified failure of a bookmark operation. Failures
// are always reported to the caller, never swallowed.
type StoreError struct {
	Kind ErrKind
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("bookmarks: %s error: %v", e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
