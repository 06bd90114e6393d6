package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paarijaat/stickyapp/internal/adapter/metrics"
	"github.com/paarijaat/stickyapp/internal/backend"
	"github.com/paarijaat/stickyapp/internal/domain"
	"github.com/paarijaat/stickyapp/internal/platform/retry"
)

const DefaultStopTimeout = 5 * time.Second

// stopPolicy retries stop delivery while a mailbox is full.
var stopPolicy = retry.Policy{
	MaxAttempts:      8,
	InitialBackoff:   10 * time.Millisecond,
	RateLimitBackoff: 10 * time.Millisecond,
	MaxBackoff:       500 * time.Millisecond,
}

// Manager creates sessions, routes commands to them and stops them.
type Manager struct {
	registry        *Registry
	backends        map[domain.Kind]domain.BackendFactory
	clock           clockwork.Clock
	metrics         *metrics.SessionMetrics
	mailboxCapacity int
	stopTimeout     time.Duration
}

type Option func(*Manager)

func WithClock(clock clockwork.Clock) Option {
	return func(m *Manager) { m.clock = clock }
}

func WithMailboxCapacity(capacity int) Option {
	return func(m *Manager) { m.mailboxCapacity = capacity }
}

// WithStopTimeout bounds how long each stop of the shutdown fan-out waits.
func WithStopTimeout(d time.Duration) Option {
	return func(m *Manager) { m.stopTimeout = d }
}

// WithBackend replaces the backend used for sessions of the given kind.
func WithBackend(kind domain.Kind, factory domain.BackendFactory) Option {
	return func(m *Manager) { m.backends[kind] = factory }
}

// NewManager creates a manager with plaintext and CKKS backends.
func NewManager(sessionMetrics *metrics.SessionMetrics, opts ...Option) *Manager {
	m := &Manager{
		registry: NewRegistry(),
		backends: map[domain.Kind]domain.BackendFactory{
			domain.KindPlaintext:   backend.PlaintextFactory,
			domain.KindHomomorphic: backend.HomomorphicFactory(nil),
		},
		clock:           clockwork.NewRealClock(),
		metrics:         sessionMetrics,
		mailboxCapacity: DefaultMailboxCapacity,
		stopTimeout:     DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a session and waits for its initialization handshake. The
// session is registered only if initialization succeeds; otherwise the
// error wraps ErrInitFailed and the returned payload carries the reason.
//
// If ctx ends before the handshake completes, the session is closed as soon
// as it reports ready and is never registered.
func (m *Manager) Create(ctx context.Context, initMessage string, kind domain.Kind) (domain.SessionID, string, error) {
	factory, ok := m.backends[kind]
	if !ok {
		return "", "", fmt.Errorf("no backend for session kind %s", kind)
	}
	if m.registry.Sealed() {
		m.metrics.Created.WithLabelValues(kind.String(), "rejected").Inc()
		return "", "", domain.ErrShuttingDown
	}

	id := NewID(kind)
	mb := newMailbox(id, kind, m.mailboxCapacity)
	initReply := make(chan domain.Reply, 1)
	logger := slog.Default().With("session_id", id, "kind", kind)

	a := &actor{
		id:      id,
		backend: factory(),
		mailbox: mb,
		clock:   m.clock,
		metrics: m.metrics,
		logger:  logger,
		onExit:  func() { m.remove(id) },
	}
	go a.run(initMessage, initReply)

	select {
	case reply := <-initReply:
		if reply.Terminated() {
			m.metrics.Created.WithLabelValues(kind.String(), "failed").Inc()
			return id, reply.Payload, fmt.Errorf("%w: %s", domain.ErrInitFailed, initFailure(reply.Payload))
		}
		if err := m.registry.Insert(mb); err != nil {
			// Shutdown began during the handshake; the fan-out never saw
			// this session, so it must not outlive it.
			mb.Close()
			m.metrics.Created.WithLabelValues(kind.String(), "rejected").Inc()
			return "", "", fmt.Errorf("registering session %s: %w", id, err)
		}
		m.metrics.Created.WithLabelValues(kind.String(), "ok").Inc()
		m.metrics.Active.WithLabelValues(kind.String()).Inc()
		slog.InfoContext(ctx, "Session created", "session_id", id, "kind", kind)
		return id, reply.Payload, nil

	case <-ctx.Done():
		m.metrics.Created.WithLabelValues(kind.String(), "abandoned").Inc()
		go func() {
			if reply := <-initReply; !reply.Terminated() {
				mb.Close()
			}
		}()
		return "", "", fmt.Errorf("waiting for session initialization: %w", ctx.Err())
	}
}

// Dispatch sends a raw action payload to the session and returns its
// reply. A reply that terminates the session also unregisters it.
func (m *Manager) Dispatch(ctx context.Context, id domain.SessionID, message string) (domain.Reply, error) {
	if _, ok := domain.KindOf(id); !ok {
		return domain.Reply{}, fmt.Errorf("%w: malformed id %q", domain.ErrSessionNotFound, id)
	}
	mb, ok := m.registry.Lookup(id)
	if !ok {
		return domain.Reply{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}

	reply, err := mb.Send(ctx, domain.Execute(message))
	if err != nil {
		if errors.Is(err, domain.ErrMailboxFull) {
			m.metrics.MailboxFull.Inc()
		}
		return domain.Reply{}, fmt.Errorf("session %s: %w", id, err)
	}

	if reply.Terminated() {
		m.remove(id)
	}
	return reply, nil
}

// List returns the ids of all live sessions in no particular order.
func (m *Manager) List() []domain.SessionID {
	return m.registry.IDs()
}

// ShutdownAll sends Stop to every live session from its own goroutine and
// returns without waiting for any of them. It reports how many stops were
// started. Sessions created afterwards are rejected with ErrShuttingDown.
func (m *Manager) ShutdownAll() int {
	mailboxes := m.registry.Seal()
	for _, mb := range mailboxes {
		go m.stop(mb)
	}
	slog.Info("Session shutdown fan-out started", "sessions", len(mailboxes))
	return len(mailboxes)
}

func (m *Manager) stop(mb *Mailbox) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	timer := m.clock.AfterFunc(m.stopTimeout, cancel)
	defer timer.Stop()

	policy := stopPolicy
	policy.Clock = m.clock
	policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.Debug("Retrying session stop", "session_id", mb.ID(), "attempt", attempt, "backoff", backoff, "error", err)
	}

	pending, err := retry.Do(ctx, policy, classifyPost, func() (*Pending, error) {
		return mb.TryPost(domain.Stop())
	})
	if err != nil {
		// The mailbox stayed full. Closing drops the backlog; the session
		// exits after its current command and unregisters itself.
		slog.Warn("Could not deliver session stop, closing mailbox", "session_id", mb.ID(), "error", err)
		m.metrics.Stops.WithLabelValues("undelivered").Inc()
		mb.Close()
		return
	}

	reply, err := pending.Await(ctx)
	switch {
	case err == nil, errors.Is(err, domain.ErrReplyDropped):
		m.metrics.Stops.WithLabelValues("stopped").Inc()
		slog.Debug("Session stopped", "session_id", mb.ID(), "status", reply.Status)
		m.remove(mb.ID())
	default:
		// Still busy with an earlier command. Closing makes it exit right
		// after; its exit hook unregisters it.
		m.metrics.Stops.WithLabelValues("timeout").Inc()
		slog.Warn("Session stop timed out, closing mailbox", "session_id", mb.ID(), "timeout", m.stopTimeout)
		mb.Close()
	}
}

// Wait blocks until no session is registered or ctx ends.
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case <-m.registry.Idle():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) remove(id domain.SessionID) {
	if mb, ok := m.registry.Remove(id); ok {
		m.metrics.Active.WithLabelValues(mb.Kind().String()).Dec()
	}
}

func classifyPost(err error) retry.Action {
	if errors.Is(err, domain.ErrMailboxFull) {
		return retry.Retry
	}
	return retry.Stop
}

func initFailure(payload string) string {
	if resp, err := domain.DecodeActionResponse(payload); err == nil && resp.StatusMessage != "" {
		return resp.StatusMessage
	}
	return payload
}
