package domain

// Result is what a backend produces for one recognised action.
type Result struct {
	Response   ActionResponse
	Terminates bool
}

// Backend implements the session-specific behaviour behind the common
// session lifecycle. A Backend is owned by exactly one session goroutine,
// so implementations need no internal locking.
type Backend interface {
	// Initialize prepares the backend from the session's init message and
	// returns a human-readable ready message.
	Initialize(initMessage string) (string, error)
	// Handle runs one action. It returns ErrUnknownAction for actions the
	// backend does not recognise.
	Handle(req ActionRequest) (Result, error)
}

// BackendFactory builds a fresh backend for a new session.
type BackendFactory func() Backend
