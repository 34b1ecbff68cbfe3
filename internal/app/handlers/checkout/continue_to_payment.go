package checkout

import (
	"context"
	"log/slog"

	"drively/internal/app/outbox"
	"drively/internal/app/policies"
	domaincheckout "drively/internal/domain/checkout"
)

const continueToPaymentKey = "checkout.continue_to_payment"

type ContinueToPaymentCommand struct {
	SessionID       string
	GuestID         string
	IdempotencyKeyV string
}

func (c ContinueToPaymentCommand) Key() string { return continueToPaymentKey }

func (c ContinueToPaymentCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c ContinueToPaymentCommand) ResultPrototype() any { return &ContinueToPaymentResult{} }

type ContinueToPaymentResult struct {
	PaymentSessionID string `json:"payment_session_id,omitempty"`
	RedirectURL      string `json:"redirect_url"`
}

const handoffLockReason = "payment in progress, please wait"

// ContinueToPaymentHandler performs the payment handoff: authentication gate,
// provider readiness gate, session creation, guard arming, redirect. Any
// failure disarms the guard, returns the session to selection with the draft
// untouched, and surfaces a cause-specific message.
type ContinueToPaymentHandler struct {
	Sessions domaincheckout.Repository
	Payments policies.PaymentSessionPort
	Provider policies.PaymentProviderPort
	Notifier policies.Notifier
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Logger   *slog.Logger
	Clock    Clock
}

func (h *ContinueToPaymentHandler) Handle(ctx context.Context, cmd ContinueToPaymentCommand) (*ContinueToPaymentResult, error) {
	if cmd.GuestID == "" {
		return nil, h.reject(ctx, cmd.GuestID, domaincheckout.ErrNotAuthenticated)
	}
	sess, err := loadOwnedSession(ctx, h.Sessions, domaincheckout.SessionID(cmd.SessionID), cmd.GuestID)
	if err != nil {
		return nil, err
	}
	if h.Provider == nil || !h.Provider.Ready() {
		return nil, h.reject(ctx, cmd.GuestID, domaincheckout.ErrPaymentClientNotReady)
	}

	now := h.Clock.now()
	if err := sess.BeginHandoff(now); err != nil {
		return nil, h.reject(ctx, cmd.GuestID, err)
	}

	payment, err := h.Payments.CreateSession(ctx, sess.Draft(), sess.Car)
	if err != nil {
		return nil, h.fail(ctx, sess, cmd.GuestID, err)
	}
	if payment.ID == "" && payment.RedirectURL == "" {
		return nil, h.fail(ctx, sess, cmd.GuestID, domaincheckout.ErrNoRedirectTarget)
	}

	// The guard goes up after the session exists and before the redirect is
	// handed out, closing the race between "session obtained" and
	// "navigation begins".
	if err := sess.ArmGuard(handoffLockReason); err != nil {
		return nil, h.fail(ctx, sess, cmd.GuestID, err)
	}

	intent := domaincheckout.RedirectIntent{
		PaymentSessionID: payment.ID,
		RedirectURL:      payment.RedirectURL,
	}
	if intent.RedirectURL == "" {
		// Fallback redirect primitive, used only when the provider returned
		// a bare session id.
		url, err := h.Provider.RedirectToCheckout(ctx, payment.ID)
		if err != nil {
			return nil, h.fail(ctx, sess, cmd.GuestID, err)
		}
		intent.RedirectURL = url
	}

	sess.HandoffSucceeded(intent, h.Clock.now())
	if err := h.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, sess); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("payment handoff started", "session_id", sess.ID, "payment_session_id", intent.PaymentSessionID)
	}
	return &ContinueToPaymentResult{
		PaymentSessionID: intent.PaymentSessionID,
		RedirectURL:      intent.RedirectURL,
	}, nil
}

// reject surfaces an error that caused no state change.
func (h *ContinueToPaymentHandler) reject(ctx context.Context, guestID string, cause error) error {
	h.notifyError(ctx, guestID, cause)
	return cause
}

// fail rolls the session back to selection, draft intact, and surfaces the
// classified cause. The guard is disarmed inside HandoffFailed before the
// message goes out.
func (h *ContinueToPaymentHandler) fail(ctx context.Context, sess *domaincheckout.Session, guestID string, cause error) error {
	sess.HandoffFailed(cause, h.Clock.now())
	if err := h.Sessions.Save(ctx, sess); err != nil && h.Logger != nil {
		h.Logger.Error("session save after failed handoff", "session_id", sess.ID, "error", err)
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, sess); err != nil && h.Logger != nil {
		h.Logger.Error("event drain after failed handoff", "session_id", sess.ID, "error", err)
	}
	h.notifyError(ctx, guestID, cause)
	return cause
}

func (h *ContinueToPaymentHandler) notifyError(ctx context.Context, guestID string, cause error) {
	if h.Notifier == nil {
		return
	}
	if err := h.Notifier.Error(ctx, guestID, domaincheckout.UserMessage(cause)); err != nil && h.Logger != nil {
		h.Logger.Warn("notifier error delivery failed", "error", err)
	}
}
