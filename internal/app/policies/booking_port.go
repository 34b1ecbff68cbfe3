package policies

import (
	"context"

	"drively/internal/domain/booking"
	"drively/internal/domain/cars"
	"drively/internal/domain/checkout"
)

// BookingCreatorPort creates a confirmed reservation directly, bypassing the
// hosted payment handoff.
type BookingCreatorPort interface {
	Create(ctx context.Context, guestID string, draft checkout.Draft, car cars.Summary) (*booking.Booking, error)
}
