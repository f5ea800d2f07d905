package newsapi

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrKind classifies a fetch failure. Every error returned by the client
// is a *FetchError carrying exactly one of these kinds; no raw transport
// error escapes unclassified.
type ErrKind int

const (
	// ErrNetwork covers transport failures: DNS, refused connections,
	// broken pipes.
	ErrNetwork ErrKind = iota
	// ErrTimeout covers exceeded connect or receive deadlines.
	ErrTimeout
	// ErrUpstream covers non-2xx responses; Status carries the code.
	ErrUpstream
	// ErrDecode covers malformed response payloads.
	ErrDecode
)

func (k ErrKind) String() string {
	switch k {
	case ErrNetwork:
		return "network"
	case ErrTimeout:
		return "timeout"
	case ErrUpstream:
		return "upstream"
	case ErrDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// FetchError is the classified failure of a single upstream request.
type FetchError struct {
	Kind   ErrKind
	Status int // HTTP status for ErrUpstream, zero otherwise
	Err    error
}

func (e *FetchError) Error() string {
	if e.Kind == ErrUpstream {
		return fmt.Sprintf("newsapi: %s error: status %d", e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("newsapi: %s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("newsapi: %s error", e.Kind)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// classifyTransport maps an error from the HTTP round trip to either
// ErrTimeout or ErrNetwork.
func classifyTransport(err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Kind: ErrTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchError{Kind: ErrTimeout, Err: err}
	}
	return &FetchError{Kind: ErrNetwork, Err: err}
}
