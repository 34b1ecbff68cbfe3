package checkout

import (
	"context"
	"time"

	"drively/internal/app/dto"
	domaincheckout "drively/internal/domain/checkout"
)

const (
	setDatesKey           = "checkout.set_dates"
	setAddOnKey           = "checkout.set_addon"
	setLocationsKey       = "checkout.set_locations"
	setSpecialRequestsKey = "checkout.set_special_requests"
)

// DraftResult is the shared response for draft mutations: the repriced
// session snapshot, so the client never renders a stale total.
type DraftResult struct {
	Session dto.CheckoutSessionDTO `json:"session"`
}

type SetDatesCommand struct {
	SessionID string
	GuestID   string
	Pickup    time.Time
	Return    time.Time
}

func (c SetDatesCommand) Key() string { return setDatesKey }

type SetAddOnCommand struct {
	SessionID string
	GuestID   string
	AddOn     string
	Enabled   bool
}

func (c SetAddOnCommand) Key() string { return setAddOnKey }

type SetLocationsCommand struct {
	SessionID string
	GuestID   string
	Pickup    string
	Dropoff   string
}

func (c SetLocationsCommand) Key() string { return setLocationsKey }

type SetSpecialRequestsCommand struct {
	SessionID string
	GuestID   string
	Text      string
}

func (c SetSpecialRequestsCommand) Key() string { return setSpecialRequestsKey }

// UpdateDraftHandler serves all draft mutations; each one goes through the
// session so stage gating and repricing apply uniformly.
type UpdateDraftHandler struct {
	Sessions domaincheckout.Repository
	Clock    Clock
}

func (h *UpdateDraftHandler) HandleSetDates(ctx context.Context, cmd SetDatesCommand) (*DraftResult, error) {
	sess, err := loadOwnedSession(ctx, h.Sessions, domaincheckout.SessionID(cmd.SessionID), cmd.GuestID)
	if err != nil {
		return nil, err
	}
	if err := sess.SetDates(cmd.Pickup, cmd.Return, h.Clock.now()); err != nil {
		return nil, err
	}
	return h.save(ctx, sess)
}

func (h *UpdateDraftHandler) HandleSetAddOn(ctx context.Context, cmd SetAddOnCommand) (*DraftResult, error) {
	sess, err := loadOwnedSession(ctx, h.Sessions, domaincheckout.SessionID(cmd.SessionID), cmd.GuestID)
	if err != nil {
		return nil, err
	}
	if err := sess.SetAddOn(domaincheckout.AddOnKind(cmd.AddOn), cmd.Enabled, h.Clock.now()); err != nil {
		return nil, err
	}
	return h.save(ctx, sess)
}

func (h *UpdateDraftHandler) HandleSetLocations(ctx context.Context, cmd SetLocationsCommand) (*DraftResult, error) {
	sess, err := loadOwnedSession(ctx, h.Sessions, domaincheckout.SessionID(cmd.SessionID), cmd.GuestID)
	if err != nil {
		return nil, err
	}
	if err := sess.SetLocations(cmd.Pickup, cmd.Dropoff, h.Clock.now()); err != nil {
		return nil, err
	}
	return h.save(ctx, sess)
}

func (h *UpdateDraftHandler) HandleSetSpecialRequests(ctx context.Context, cmd SetSpecialRequestsCommand) (*DraftResult, error) {
	sess, err := loadOwnedSession(ctx, h.Sessions, domaincheckout.SessionID(cmd.SessionID), cmd.GuestID)
	if err != nil {
		return nil, err
	}
	if err := sess.SetSpecialRequests(cmd.Text, h.Clock.now()); err != nil {
		return nil, err
	}
	return h.save(ctx, sess)
}

func (h *UpdateDraftHandler) save(ctx context.Context, sess *domaincheckout.Session) (*DraftResult, error) {
	if err := h.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return &DraftResult{Session: dto.MapCheckoutSession(sess)}, nil
}
