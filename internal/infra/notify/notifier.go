package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Notice is one user-facing message produced by a checkout outcome.
type Notice struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// FeedNotifier keeps the latest notices per guest in memory and logs each
// one. Clients poll the feed to render toasts; Drain hands the pending
// notices over and clears them.
type FeedNotifier struct {
	Logger *slog.Logger
	Keep   int

	mu      sync.Mutex
	pending map[string][]Notice
}

func NewFeedNotifier(logger *slog.Logger) *FeedNotifier {
	return &FeedNotifier{Logger: logger, Keep: 20, pending: make(map[string][]Notice)}
}

func (n *FeedNotifier) Success(ctx context.Context, guestID, message string) error {
	n.push(guestID, Notice{Level: LevelSuccess, Message: message, CreatedAt: time.Now().UTC()})
	if n.Logger != nil {
		n.Logger.Info("notice", "guest_id", guestID, "level", LevelSuccess, "message", message)
	}
	return nil
}

func (n *FeedNotifier) Error(ctx context.Context, guestID, message string) error {
	n.push(guestID, Notice{Level: LevelError, Message: message, CreatedAt: time.Now().UTC()})
	if n.Logger != nil {
		n.Logger.Warn("notice", "guest_id", guestID, "level", LevelError, "message", message)
	}
	return nil
}

// Drain returns and clears the pending notices for one guest.
func (n *FeedNotifier) Drain(guestID string) []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	notices := n.pending[guestID]
	delete(n.pending, guestID)
	return notices
}

func (n *FeedNotifier) push(guestID string, notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	keep := n.Keep
	if keep <= 0 {
		keep = 20
	}
	queue := append(n.pending[guestID], notice)
	if len(queue) > keep {
		queue = queue[len(queue)-keep:]
	}
	n.pending[guestID] = queue
}
