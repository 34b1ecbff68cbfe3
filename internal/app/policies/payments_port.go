package policies

import (
	"context"

	"drively/internal/domain/cars"
	"drively/internal/domain/checkout"
)

// PaymentSession is the provider-issued handle for an initialized but not yet
// completed payment. On success at least one of ID/RedirectURL is present;
// both empty is a failure the caller must detect.
type PaymentSession struct {
	ID          string
	RedirectURL string
}

// PaymentSessionPort creates a hosted checkout session for the full draft
// snapshot plus the denormalized car summary, so the provider can render a
// line item without a second round trip.
type PaymentSessionPort interface {
	CreateSession(ctx context.Context, draft checkout.Draft, car cars.Summary) (PaymentSession, error)
}

// PaymentProviderPort is the provider client. RedirectToCheckout is the
// fallback redirect primitive, used only when the session carried no direct
// URL; it resolves the hosted page for a session id.
type PaymentProviderPort interface {
	Ready() bool
	RedirectToCheckout(ctx context.Context, sessionID string) (redirectURL string, err error)
}
