package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/appointment-booking/internal/booking"
)

type entry struct {
	ledger   *booking.Ledger
	lastSeen time.Time
}

// Registry maps session ids to their own ledger. Ledgers are never shared
// between sessions.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*entry)}
}

// Open returns the ledger of id, creating an empty one on first use.
func (r *Registry) Open(id uuid.UUID, now time.Time) *booking.Ledger {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		e = &entry{ledger: booking.NewLedger()}
		r.sessions[id] = e
	}
	e.lastSeen = now
	return e.ledger
}

// Lookup returns the ledger of id without creating one.
func (r *Registry) Lookup(id uuid.UUID, now time.Time) (*booking.Ledger, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = now
	return e.ledger, true
}

// Sweep ends every session idle for longer than ttl and returns their ids
// together with the number of appointments each one discarded.
func (r *Registry) Sweep(now time.Time, ttl time.Duration) map[uuid.UUID]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	expired := make(map[uuid.UUID]int)
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > ttl {
			expired[id] = e.ledger.Len()
			delete(r.sessions, id)
		}
	}
	return expired
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
