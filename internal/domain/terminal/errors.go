package terminal

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/termhost/internal/shared/id"
)

var (
	// ErrNotFound is returned for an unknown or already closed session.
	ErrNotFound = errors.New("session not found")
	// ErrClosed reports a backend whose input or output handle is gone.
	ErrClosed = errors.New("session backend closed")
	// ErrUnsupported is returned by backend variants with no implementation.
	ErrUnsupported = errors.New("session backend not supported")
	// ErrLimitReached is returned when the session cap is hit.
	ErrLimitReached = errors.New("session limit reached")
	// ErrShuttingDown is returned for opens after Shutdown.
	ErrShuttingDown = errors.New("session manager is shutting down")
)

// SpawnError means the backend could not be started. No session exists.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// WriteError means input could not be forwarded to a session's backend.
type WriteError struct {
	SessionID id.SessionID
	Err       error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write to session %s: %v", e.SessionID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// DecodeError reports malformed UTF-8 in session output. It never ends a
// session.
type DecodeError struct {
	Offset  int    // first bad byte within the chunk
	Charset string // best guess at the real encoding, if any
}

func (e *DecodeError) Error() string {
	if e.Charset != "" {
		return fmt.Sprintf("invalid utf-8 at offset %d (detected %s)", e.Offset, e.Charset)
	}
	return fmt.Sprintf("invalid utf-8 at offset %d", e.Offset)
}

// Error codes shared by the REST and stream surfaces.
const (
	CodeNotFound     = "not_found"
	CodeUnsupported  = "unsupported"
	CodeLimitReached = "limit_reached"
	CodeShuttingDown = "shutting_down"
	CodeSpawnFailed  = "spawn_failed"
	CodeWriteFailed  = "write_failed"
	CodeInternal     = "internal"
)

// ErrorCode classifies err into one of the Code constants.
func ErrorCode(err error) string {
	var (
		spawnErr *SpawnError
		writeErr *WriteError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrUnsupported):
		return CodeUnsupported
	case errors.Is(err, ErrLimitReached):
		return CodeLimitReached
	case errors.Is(err, ErrShuttingDown):
		return CodeShuttingDown
	case errors.As(err, &spawnErr):
		return CodeSpawnFailed
	case errors.As(err, &writeErr):
		return CodeWriteFailed
	default:
		return CodeInternal
	}
}
