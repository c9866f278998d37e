package beacon

import (
	"context"
	"fmt"
)

// ErrPermissionDenied is returned by a Radio when the process lacks the
// radio capability. Sessions surface it as a terminal status event and
// never retry it automatically.
var ErrPermissionDenied = fmt.Errorf("radio capability is not granted")

// Radio is the platform short-range radio. Implementations block until
// the context is canceled or the session fails.
type Radio interface {
	// Advertise re-broadcasts frame until ctx is canceled.
	Advertise(ctx context.Context, frame []byte) error

	// Scan delivers every received frame to frames until ctx is
	// canceled. The channel is owned by the caller and is not closed
	// by the radio.
	Scan(ctx context.Context, frames chan<- []byte) error
}

// StatusKind enumerates the events a radio session emits.
type StatusKind int

const (
	// StatusStarted - the radio session acquired the radio resource.
	StatusStarted StatusKind = iota
	// StatusMessage - a scan session decoded a qualifying message.
	StatusMessage
	// StatusPermissionDenied - terminal, the radio capability is missing.
	StatusPermissionDenied
	// StatusError - terminal, the radio failed for another reason.
	StatusError
	// StatusStopped - the session was explicitly stopped.
	StatusStopped
)

func (k StatusKind) String() string {
	switch k {
	case StatusStarted:
		return "started"
	case StatusMessage:
		return "message"
	case StatusPermissionDenied:
		return "permission-denied"
	case StatusError:
		return "error"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Status is one event in the bounded, typed event sequence a session
// produces. Message is set for StatusMessage, Err for StatusError.
type Status struct {
	Kind    StatusKind
	Message string
	Err     error
}
