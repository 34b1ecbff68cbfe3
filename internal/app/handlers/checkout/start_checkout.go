package checkout

import (
	"context"

	"drively/internal/app/dto"
	"drively/internal/app/outbox"
	domaincars "drively/internal/domain/cars"
	domaincheckout "drively/internal/domain/checkout"
)

const startCheckoutKey = "checkout.start"

type StartCheckoutCommand struct {
	SessionID string
	CarID     string
	GuestID   string
}

func (c StartCheckoutCommand) Key() string { return startCheckoutKey }

type StartCheckoutResult struct {
	Session dto.CheckoutSessionDTO `json:"session"`
}

// InterceptorFactory binds a navigation interceptor to one checkout session.
type InterceptorFactory interface {
	ForSession(id domaincheckout.SessionID) domaincheckout.Interceptor
}

type StartCheckoutHandler struct {
	Cars         domaincars.Repository
	Sessions     domaincheckout.Repository
	Interceptors InterceptorFactory
	Outbox       outbox.Outbox
	Encoder      outbox.EventEncoder
	Clock        Clock
}

func (h *StartCheckoutHandler) Handle(ctx context.Context, cmd StartCheckoutCommand) (*StartCheckoutResult, error) {
	if cmd.GuestID == "" {
		return nil, domaincheckout.ErrNotAuthenticated
	}
	car, err := h.Cars.ByID(ctx, domaincars.CarID(cmd.CarID))
	if err != nil {
		return nil, err
	}
	if !car.Available {
		return nil, domaincars.ErrCarUnavailable
	}
	id := domaincheckout.SessionID(cmd.SessionID)
	var interceptor domaincheckout.Interceptor
	if h.Interceptors != nil {
		interceptor = h.Interceptors.ForSession(id)
	}
	sess := domaincheckout.NewSession(id, cmd.GuestID, car.Summary(), interceptor, h.Clock.now())
	if err := h.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, sess); err != nil {
		return nil, err
	}
	return &StartCheckoutResult{Session: dto.MapCheckoutSession(sess)}, nil
}

func drainEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, sess *domaincheckout.Session) error {
	pending := sess.PendingEvents()
	sess.ClearEvents()
	return outbox.RecordDomainEvents(ctx, box, encoder, pending)
}
