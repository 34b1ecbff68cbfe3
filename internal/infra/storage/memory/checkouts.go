package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"drively/internal/domain/checkout"
)

// CheckoutStore keeps live checkout sessions in memory. Sessions are
// server-held mutable aggregates, so the store hands out the same pointer it
// was given; the aggregate's own mutex guards concurrent handlers.
type CheckoutStore struct {
	mu    sync.RWMutex
	items map[checkout.SessionID]*checkout.Session
}

func NewCheckoutStore() *CheckoutStore {
	return &CheckoutStore{items: make(map[checkout.SessionID]*checkout.Session)}
}

func (s *CheckoutStore) ByID(ctx context.Context, id checkout.SessionID) (*checkout.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.items[id]
	if !ok {
		return nil, checkout.ErrSessionNotFound
	}
	return sess, nil
}

func (s *CheckoutStore) Save(ctx context.Context, sess *checkout.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[sess.ID] = sess
	return nil
}

func (s *CheckoutStore) Delete(ctx context.Context, id checkout.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// Sweep tears down sessions idle longer than ttl. Teardown goes through
// Close so an armed handoff guard is released even when the guest never
// came back. Sessions mid-handoff are skipped until the next pass.
func (s *CheckoutStore) Sweep(now time.Time, ttl time.Duration, logger *slog.Logger) int {
	s.mu.Lock()
	var stale []*checkout.Session
	for _, sess := range s.items {
		if now.Sub(sess.UpdatedAt()) > ttl && !sess.InFlight() {
			stale = append(stale, sess)
		}
	}
	for _, sess := range stale {
		delete(s.items, sess.ID)
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.Close()
		if logger != nil {
			logger.Debug("checkout session expired", "session_id", sess.ID)
		}
	}
	return len(stale)
}

// Janitor runs Sweep on an interval until the context ends.
func (s *CheckoutStore) Janitor(ctx context.Context, ttl, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(now, ttl, logger)
		}
	}
}
