package policies

import "context"

// Notifier surfaces user-facing outcomes. The checkout decides which message
// to show, not how it renders.
type Notifier interface {
	Success(ctx context.Context, guestID, message string) error
	Error(ctx context.Context, guestID, message string) error
}
