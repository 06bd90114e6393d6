package domain

// CommandType distinguishes the two commands a session accepts.
type CommandType int

const (
	CommandExecute CommandType = iota
	CommandStop
)

func (t CommandType) String() string {
	if t == CommandStop {
		return "stop"
	}
	return "execute"
}

// Command is delivered to a session through its mailbox. It carries no
// session id: the mailbox already identifies the target.
type Command struct {
	Type    CommandType
	Message string
}

// Execute wraps a raw action payload.
func Execute(message string) Command {
	return Command{Type: CommandExecute, Message: message}
}

// Stop asks a session to terminate.
func Stop() Command {
	return Command{Type: CommandStop}
}

// Status tells the caller whether the session is still alive after a reply.
type Status int

const (
	StatusOk Status = iota
	StatusTerminated
)

func (s Status) String() string {
	if s == StatusTerminated {
		return "SessionExit"
	}
	return "SessionOk"
}

// Reply is the single answer produced for one Command (or for the
// initialization handshake).
type Reply struct {
	Status  Status
	Payload string
}

// Terminated reports whether the session exited after producing the reply.
func (r Reply) Terminated() bool {
	return r.Status == StatusTerminated
}
