package bookingsvc

import (
	"context"
	"time"

	"github.com/google/uuid"

	"drively/internal/domain/booking"
	"drively/internal/domain/cars"
	"drively/internal/domain/checkout"
	"drively/internal/domain/shared/daterange"
)

// Creator turns a finished checkout draft into a persisted confirmed booking.
// Failures are wrapped as provider-kind handoff errors so the checkout can
// surface a retryable message.
type Creator struct {
	Bookings booking.Repository
	Now      func() time.Time
}

func (c *Creator) Create(ctx context.Context, guestID string, draft checkout.Draft, car cars.Summary) (*booking.Booking, error) {
	now := time.Now().UTC()
	if c.Now != nil {
		now = c.Now()
	}
	created, err := booking.New(booking.CreateParams{
		ID:              booking.BookingID(uuid.NewString()),
		CarID:           car.ID,
		GuestID:         guestID,
		Range:           daterange.DateRange{Pickup: draft.Pickup, Return: draft.Return},
		AddOns:          draft.AddOns,
		PickupLocation:  draft.PickupLocation,
		DropoffLocation: draft.DropoffLocation,
		SpecialRequests: draft.SpecialRequests,
		Total:           draft.Total,
		CreatedAt:       now,
	})
	if err != nil {
		return nil, &checkout.HandoffError{Kind: checkout.FailureUnknown, Err: err}
	}
	if err := c.Bookings.Save(ctx, created); err != nil {
		return nil, &checkout.HandoffError{Kind: checkout.FailureProvider, Err: err}
	}
	return created, nil
}
