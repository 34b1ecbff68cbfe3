package navigation

import (
	"sync"

	"drively/internal/domain/checkout"
)

// Registry is the server-side navigation boundary. While a checkout session
// holds a lock here, destructive routes for that session (cancel, edits)
// answer 409 instead of proceeding.
type Registry struct {
	mu    sync.RWMutex
	locks map[checkout.SessionID]string
}

func NewRegistry() *Registry {
	return &Registry{locks: make(map[checkout.SessionID]string)}
}

// ForSession returns the interceptor bound to one session id.
func (r *Registry) ForSession(id checkout.SessionID) checkout.Interceptor {
	return sessionInterceptor{registry: r, id: id}
}

// Reason returns the lock message for a session, and whether it is locked.
func (r *Registry) Reason(id checkout.SessionID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reason, ok := r.locks[id]
	return reason, ok
}

func (r *Registry) install(id checkout.SessionID, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks[id] = reason
}

func (r *Registry) remove(id checkout.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locks, id)
}

type sessionInterceptor struct {
	registry *Registry
	id       checkout.SessionID
}

func (s sessionInterceptor) Install(reason string) (func(), error) {
	s.registry.install(s.id, reason)
	id := s.id
	registry := s.registry
	return func() { registry.remove(id) }, nil
}
