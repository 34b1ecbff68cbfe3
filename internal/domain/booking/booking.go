package booking

import (
	"context"
	"errors"
	"time"

	"drively/internal/domain/cars"
	"drively/internal/domain/pricing"
	"drively/internal/domain/shared/daterange"
	"drively/internal/domain/shared/money"
)

var (
	ErrBookingNotFound = errors.New("booking: not found")
	ErrGuestRequired   = errors.New("booking: guest id required")
	ErrZeroTotal       = errors.New("booking: total must be positive")
)

type BookingID string

type BookingState string

const (
	StatePending   BookingState = "PENDING"
	StateConfirmed BookingState = "CONFIRMED"
	StateCancelled BookingState = "CANCELLED"
)

// Booking is the confirmed reservation produced when a checkout completes on
// the direct (non-payment) branch, or reconciled server-side after a hosted
// payment succeeds.
type Booking struct {
	ID              BookingID
	CarID           cars.CarID
	GuestID         string
	Range           daterange.DateRange
	AddOns          pricing.AddOns
	PickupLocation  string
	DropoffLocation string
	SpecialRequests string
	Total           money.Money
	State           BookingState
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
}

type CreateParams struct {
	ID              BookingID
	CarID           cars.CarID
	GuestID         string
	Range           daterange.DateRange
	AddOns          pricing.AddOns
	PickupLocation  string
	DropoffLocation string
	SpecialRequests string
	Total           money.Money
	CreatedAt       time.Time
}

func New(params CreateParams) (*Booking, error) {
	if params.GuestID == "" {
		return nil, ErrGuestRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if params.Total.Amount <= 0 {
		return nil, ErrZeroTotal
	}
	now := params.CreatedAt.UTC()
	return &Booking{
		ID:              params.ID,
		CarID:           params.CarID,
		GuestID:         params.GuestID,
		Range:           params.Range,
		AddOns:          params.AddOns,
		PickupLocation:  params.PickupLocation,
		DropoffLocation: params.DropoffLocation,
		SpecialRequests: params.SpecialRequests,
		Total:           params.Total,
		State:           StateConfirmed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
}
