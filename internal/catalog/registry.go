package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type workspace struct {
	collection *Collection
	lastSeen   time.Time
}

// Registry keeps one Collection per console session.
type Registry struct {
	gw      Gateway
	idleTTL time.Duration

	mu         sync.Mutex
	workspaces map[string]*workspace
	now        func() time.Time
}

// NewRegistry creates a registry whose collections talk to gw. Collections
// untouched for idleTTL are dropped by Run.
func NewRegistry(gw Gateway, idleTTL time.Duration) *Registry {
	return &Registry{
		gw:         gw,
		idleTTL:    idleTTL,
		workspaces: make(map[string]*workspace),
		now:        time.Now,
	}
}

// Get returns the collection of the session, creating it on first use.
func (r *Registry) Get(sessionID string) *Collection {
	r.mu.Lock()
	defer r.mu.Unlock()

	ws, ok := r.workspaces[sessionID]
	if !ok {
		ws = &workspace{collection: NewCollection(r.gw)}
		r.workspaces[sessionID] = ws
	}
	ws.lastSeen = r.now()
	return ws.collection
}

// Drop forgets the collection of the session.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workspaces, sessionID)
}

// Len returns the number of live collections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// Evict removes collections idle for longer than the TTL and returns how
// many were dropped.
func (r *Registry) Evict() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	now := r.now()
	for id, ws := range r.workspaces {
		if now.Sub(ws.lastSeen) > r.idleTTL {
			delete(r.workspaces, id)
			n++
		}
	}
	return n
}

// Run evicts idle collections every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	const op = "Registry.Run"
	log := slog.With("op", op)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Evict(); n > 0 {
				log.Debug("evicted idle collections", "count", n)
			}
		}
	}
}
