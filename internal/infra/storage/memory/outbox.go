package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "drively/internal/app/outbox"
	infraoutbox "drively/internal/infra/outbox"
)

// OutboxStore queues event records in memory for the publishing worker.
type OutboxStore struct {
	mu    sync.Mutex
	queue []*infraoutbox.PendingEvent
}

func NewOutboxStore() *OutboxStore {
	return &OutboxStore{}
}

func (s *OutboxStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, &infraoutbox.PendingEvent{Record: record})
	return nil
}

// Claim hands out the oldest unclaimed record that is due for (re)delivery.
func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*infraoutbox.PendingEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, ev := range s.queue {
		if ev.ClaimedBy == "" && !ev.NextAttemptAt.After(now) {
			ev.ClaimedBy = workerID
			return ev, nil
		}
	}
	return nil, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, ev := range s.queue {
		if ev.Record.ID == id {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, nextAttempt time.Time, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range s.queue {
		if ev.Record.ID == id {
			ev.ClaimedBy = ""
			ev.Attempts++
			ev.NextAttemptAt = nextAttempt
			ev.LastError = reason
			return nil
		}
	}
	return nil
}

// Pending reports the queue depth, used by tests and the readiness probe.
func (s *OutboxStore) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

var _ infraoutbox.Store = (*OutboxStore)(nil)
