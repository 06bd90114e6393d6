package session

import (
	"errors"
	"sync"

	"github.com/paarijaat/stickyapp/internal/domain"
)

var errDuplicateID = errors.New("session id already registered")

// Registry maps live session ids to their mailboxes. The lock guards map
// operations only; no caller holds it while sending to a session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*Mailbox
	idle     chan struct{}
	sealed   bool
}

func NewRegistry() *Registry {
	idle := make(chan struct{})
	close(idle)
	return &Registry{
		sessions: make(map[domain.SessionID]*Mailbox),
		idle:     idle,
	}
}

// Insert registers mb under its id. It fails if the id is taken or the
// registry has been sealed.
func (r *Registry) Insert(mb *Mailbox) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return domain.ErrShuttingDown
	}
	if _, ok := r.sessions[mb.ID()]; ok {
		return errDuplicateID
	}
	if len(r.sessions) == 0 {
		r.idle = make(chan struct{})
	}
	r.sessions[mb.ID()] = mb
	return nil
}

func (r *Registry) Lookup(id domain.SessionID) (*Mailbox, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mb, ok := r.sessions[id]
	return mb, ok
}

// Remove unregisters id. Only the first of concurrent removals reports true.
func (r *Registry) Remove(id domain.SessionID) (*Mailbox, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mb, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	delete(r.sessions, id)
	if len(r.sessions) == 0 {
		close(r.idle)
	}
	return mb, true
}

// IDs returns the registered ids in no particular order.
func (r *Registry) IDs() []domain.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]domain.SessionID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Seal stops all further inserts and returns the mailboxes registered at
// that moment. Every session that is ever registered is either in the
// returned slice or was rejected by Insert.
func (r *Registry) Seal() []*Mailbox {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sealed = true
	mbs := make([]*Mailbox, 0, len(r.sessions))
	for _, mb := range r.sessions {
		mbs = append(mbs, mb)
	}
	return mbs
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Idle returns a channel that is closed while the registry is empty.
func (r *Registry) Idle() <-chan struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.idle
}
