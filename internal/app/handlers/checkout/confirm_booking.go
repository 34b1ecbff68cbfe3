package checkout

import (
	"context"
	"log/slog"

	"drively/internal/app/dto"
	"drively/internal/app/outbox"
	"drively/internal/app/policies"
	domaincheckout "drively/internal/domain/checkout"
)

const (
	reviewCheckoutKey = "checkout.review"
	confirmBookingKey = "checkout.confirm_booking"
)

type ReviewCheckoutCommand struct {
	SessionID string
	GuestID   string
}

func (c ReviewCheckoutCommand) Key() string { return reviewCheckoutKey }

type ReviewCheckoutResult struct {
	Session dto.CheckoutSessionDTO `json:"session"`
}

// ReviewCheckoutHandler advances the direct-booking branch from selection to
// confirmation, behind the same date gate as the payment branch.
type ReviewCheckoutHandler struct {
	Sessions domaincheckout.Repository
	Clock    Clock
}

func (h *ReviewCheckoutHandler) Handle(ctx context.Context, cmd ReviewCheckoutCommand) (*ReviewCheckoutResult, error) {
	sess, err := loadOwnedSession(ctx, h.Sessions, domaincheckout.SessionID(cmd.SessionID), cmd.GuestID)
	if err != nil {
		return nil, err
	}
	if err := sess.AdvanceToConfirmation(h.Clock.now()); err != nil {
		return nil, err
	}
	if err := h.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return &ReviewCheckoutResult{Session: dto.MapCheckoutSession(sess)}, nil
}

type ConfirmBookingCommand struct {
	SessionID       string
	GuestID         string
	IdempotencyKeyV string
}

func (c ConfirmBookingCommand) Key() string { return confirmBookingKey }

func (c ConfirmBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c ConfirmBookingCommand) ResultPrototype() any { return &ConfirmBookingResult{} }

type ConfirmBookingResult struct {
	BookingID string `json:"booking_id"`
}

// ConfirmBookingHandler finalizes the direct-booking branch. A failed create
// keeps the session in confirmation so a retry never re-collects input.
type ConfirmBookingHandler struct {
	Sessions domaincheckout.Repository
	Bookings policies.BookingCreatorPort
	Notifier policies.Notifier
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Logger   *slog.Logger
	Clock    Clock
}

func (h *ConfirmBookingHandler) Handle(ctx context.Context, cmd ConfirmBookingCommand) (*ConfirmBookingResult, error) {
	if cmd.GuestID == "" {
		return nil, domaincheckout.ErrNotAuthenticated
	}
	sess, err := loadOwnedSession(ctx, h.Sessions, domaincheckout.SessionID(cmd.SessionID), cmd.GuestID)
	if err != nil {
		return nil, err
	}
	if err := sess.BeginBookingCreation(h.Clock.now()); err != nil {
		return nil, err
	}

	created, err := h.Bookings.Create(ctx, cmd.GuestID, sess.Draft(), sess.Car)
	if err != nil {
		sess.BookingFailed(h.Clock.now())
		if saveErr := h.Sessions.Save(ctx, sess); saveErr != nil && h.Logger != nil {
			h.Logger.Error("session save after failed booking", "session_id", sess.ID, "error", saveErr)
		}
		h.notifyError(ctx, cmd.GuestID, err)
		return nil, err
	}

	sess.BookingCreated(string(created.ID), h.Clock.now())
	if err := h.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, sess); err != nil {
		return nil, err
	}
	if h.Notifier != nil {
		if err := h.Notifier.Success(ctx, cmd.GuestID, "booking confirmed"); err != nil && h.Logger != nil {
			h.Logger.Warn("notifier success delivery failed", "error", err)
		}
	}
	return &ConfirmBookingResult{BookingID: string(created.ID)}, nil
}

func (h *ConfirmBookingHandler) notifyError(ctx context.Context, guestID string, cause error) {
	if h.Notifier == nil {
		return
	}
	if err := h.Notifier.Error(ctx, guestID, domaincheckout.UserMessage(cause)); err != nil && h.Logger != nil {
		h.Logger.Warn("notifier error delivery failed", "error", err)
	}
}
