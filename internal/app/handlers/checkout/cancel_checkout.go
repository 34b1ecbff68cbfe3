package checkout

import (
	"context"

	"drively/internal/app/outbox"
	domaincheckout "drively/internal/domain/checkout"
)

const cancelCheckoutKey = "checkout.cancel"

type CancelCheckoutCommand struct {
	SessionID string
	GuestID   string
}

func (c CancelCheckoutCommand) Key() string { return cancelCheckoutKey }

type CancelCheckoutResult struct {
	Cancelled bool `json:"cancelled"`
}

// CancelCheckoutHandler discards a draft. Cancellation is refused while the
// payment handoff is in flight; the HTTP layer turns that into a
// "please wait" conflict.
type CancelCheckoutHandler struct {
	Sessions domaincheckout.Repository
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Clock    Clock
}

func (h *CancelCheckoutHandler) Handle(ctx context.Context, cmd CancelCheckoutCommand) (*CancelCheckoutResult, error) {
	sess, err := loadOwnedSession(ctx, h.Sessions, domaincheckout.SessionID(cmd.SessionID), cmd.GuestID)
	if err != nil {
		return nil, err
	}
	if err := sess.Cancel(h.Clock.now()); err != nil {
		return nil, err
	}
	sess.Close()
	if err := h.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, sess); err != nil {
		return nil, err
	}
	return &CancelCheckoutResult{Cancelled: true}, nil
}
