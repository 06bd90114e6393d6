package domain

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInitFailed      = errors.New("session initialization failed")
	ErrUnknownAction   = errors.New("unknown action")
	ErrMalformedAction = errors.New("malformed action request")
	ErrShuttingDown    = errors.New("sessions are shutting down")
)

// Transport errors: the session could not be reached, as opposed to the
// session reporting a failed operation in its reply.
var (
	ErrMailboxFull   = errors.New("session mailbox is full")
	ErrMailboxClosed = errors.New("session mailbox is closed")
	ErrReplyDropped  = errors.New("session exited without replying")
)

// IsUnreachable reports whether err means the session could not be reached.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrMailboxFull) || errors.Is(err, ErrMailboxClosed) || errors.Is(err, ErrReplyDropped)
}
