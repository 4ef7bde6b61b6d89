package cart

import (
	"context"
	"sync"
	"time"
)

// Registry hands out per-session cart Stores keyed by an opaque session id.
// The session layer owns the identifier; the registry only maps it to state.
// Idle carts are swept after a TTL so abandoned sessions do not accumulate.
type Registry struct {
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	store    *Store
	lastSeen time.Time
}

// NewRegistry creates a Registry whose carts expire after ttl of inactivity.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		ttl:      ttl,
		sessions: make(map[string]*sessionEntry),
	}
}

// Get returns the cart for the given session id, creating an empty one on
// first use, and marks the session as active.
func (r *Registry) Get(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[sessionID]
	if !ok {
		e = &sessionEntry{store: NewStore()}
		r.sessions[sessionID] = e
	}
	e.lastSeen = time.Now()
	return e.store
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// sweep removes sessions idle longer than the TTL.
func (r *Registry) sweep(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.sessions, id)
		}
	}
}

// StartSweeper launches a background goroutine that periodically drops idle
// sessions. It stops when ctx is cancelled.
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				r.sweep(now)
			}
		}
	}()
}
