package session

import (
	"context"
	"errors"
	"sync"

	"github.com/paarijaat/stickyapp/internal/domain"
)

// DefaultMailboxCapacity is the number of commands a session queues before
// senders start waiting.
const DefaultMailboxCapacity = 100

type envelope struct {
	cmd   domain.Command
	reply chan domain.Reply
}

// Mailbox is the sending side of a session. Many goroutines may post to it;
// only the owning actor receives.
//
// The queue channel is never closed. The actor closes done when it exits,
// and Close asks it to exit, so a late sender can never panic.
type Mailbox struct {
	id      domain.SessionID
	kind    domain.Kind
	queue   chan envelope
	done    chan struct{}
	closing chan struct{}
	once    sync.Once
}

func newMailbox(id domain.SessionID, kind domain.Kind, capacity int) *Mailbox {
	if capacity < 1 {
		capacity = DefaultMailboxCapacity
	}
	return &Mailbox{
		id:      id,
		kind:    kind,
		queue:   make(chan envelope, capacity),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}
}

func (m *Mailbox) ID() domain.SessionID { return m.id }
func (m *Mailbox) Kind() domain.Kind    { return m.kind }
func (m *Mailbox) Len() int             { return len(m.queue) }
func (m *Mailbox) Cap() int             { return cap(m.queue) }

// Done is closed once the session has exited.
func (m *Mailbox) Done() <-chan struct{} { return m.done }

// Close asks the session to exit without handling any further commands.
// Commands already queued are dropped; their callers get ErrReplyDropped.
func (m *Mailbox) Close() {
	m.once.Do(func() { close(m.closing) })
}

// Send posts cmd and waits for its reply.
func (m *Mailbox) Send(ctx context.Context, cmd domain.Command) (domain.Reply, error) {
	p, err := m.Post(ctx, cmd)
	if err != nil {
		return domain.Reply{}, err
	}
	return p.Await(ctx)
}

// Post enqueues cmd, waiting for space while the mailbox is full. If ctx
// ends first the error wraps both ErrMailboxFull and the context error.
func (m *Mailbox) Post(ctx context.Context, cmd domain.Command) (*Pending, error) {
	p, err := m.TryPost(cmd)
	if !errors.Is(err, domain.ErrMailboxFull) {
		return p, err
	}

	env := envelope{cmd: cmd, reply: make(chan domain.Reply, 1)}
	select {
	case m.queue <- env:
		return &Pending{reply: env.reply, done: m.done}, nil
	case <-m.done:
		return nil, domain.ErrMailboxClosed
	case <-m.closing:
		return nil, domain.ErrMailboxClosed
	case <-ctx.Done():
		return nil, errors.Join(domain.ErrMailboxFull, ctx.Err())
	}
}

// TryPost enqueues cmd without waiting.
func (m *Mailbox) TryPost(cmd domain.Command) (*Pending, error) {
	if m.closed() {
		return nil, domain.ErrMailboxClosed
	}

	env := envelope{cmd: cmd, reply: make(chan domain.Reply, 1)}
	select {
	case m.queue <- env:
		return &Pending{reply: env.reply, done: m.done}, nil
	default:
		return nil, domain.ErrMailboxFull
	}
}

func (m *Mailbox) closed() bool {
	select {
	case <-m.done:
		return true
	case <-m.closing:
		return true
	default:
		return false
	}
}

// Pending is the caller's end of one posted command.
type Pending struct {
	reply <-chan domain.Reply
	done  <-chan struct{}
}

// Await returns the command's reply. It fails with ErrReplyDropped if the
// session exited without answering, or with the context error if the
// caller stops waiting. Giving up never affects the session: the reply is
// still produced and then discarded.
func (p *Pending) Await(ctx context.Context) (domain.Reply, error) {
	select {
	case r := <-p.reply:
		return r, nil
	case <-p.done:
		// The actor replies before it exits, so a reply may already be waiting.
		select {
		case r := <-p.reply:
			return r, nil
		default:
			return domain.Reply{}, domain.ErrReplyDropped
		}
	case <-ctx.Done():
		return domain.Reply{}, ctx.Err()
	}
}
