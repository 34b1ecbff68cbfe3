package checkout

import (
	"errors"
	"time"

	"drively/internal/domain/cars"
	"drively/internal/domain/pricing"
	"drively/internal/domain/shared/daterange"
	"drively/internal/domain/shared/money"
)

var ErrUnknownAddOn = errors.New("checkout: unknown add-on")

// AddOnKind names a toggleable extra on the draft.
type AddOnKind string

const (
	AddOnInsurance        AddOnKind = "insurance"
	AddOnGPS              AddOnKind = "gps"
	AddOnChildSeat        AddOnKind = "child_seat"
	AddOnAdditionalDriver AddOnKind = "additional_driver"
)

// Draft is the working record for an unconfirmed reservation. CarID and the
// daily rate are fixed at creation; TotalDays and Total are derived and have
// no setters, every date or add-on mutation re-runs the price engine before
// returning.
type Draft struct {
	CarID           cars.CarID
	DailyRate       money.Money
	Pickup          time.Time
	Return          time.Time
	TotalDays       int
	AddOns          pricing.AddOns
	PickupLocation  string
	DropoffLocation string
	SpecialRequests string
	Total           money.Money
}

// NewDraft seeds a draft from the selected car. Dates start unset; empty
// locations mean the car's home location.
func NewDraft(car cars.Summary) *Draft {
	d := &Draft{
		CarID:     car.ID,
		DailyRate: car.DailyRate,
	}
	d.recompute()
	return d
}

// SetDates validates the proposed range against today before accepting it.
// On success the derived fields are recomputed; on failure the draft is
// untouched.
func (d *Draft) SetDates(pickup, ret, today time.Time) error {
	if err := ValidateRange(pickup, ret, today); err != nil {
		return err
	}
	d.Pickup = pickup.UTC()
	d.Return = ret.UTC()
	d.recompute()
	return nil
}

// SetAddOn toggles one extra and reprices.
func (d *Draft) SetAddOn(kind AddOnKind, enabled bool) error {
	switch kind {
	case AddOnInsurance:
		d.AddOns.Insurance = enabled
	case AddOnGPS:
		d.AddOns.GPS = enabled
	case AddOnChildSeat:
		d.AddOns.ChildSeat = enabled
	case AddOnAdditionalDriver:
		d.AddOns.AdditionalDriver = enabled
	default:
		return ErrUnknownAddOn
	}
	d.recompute()
	return nil
}

// SetLocations records pickup and dropoff selectors; empty means the car's
// home location. Locations do not affect the price.
func (d *Draft) SetLocations(pickup, dropoff string) {
	d.PickupLocation = pickup
	d.DropoffLocation = dropoff
}

// SetSpecialRequests stores free-text advisory notes, unvalidated.
func (d *Draft) SetSpecialRequests(text string) {
	d.SpecialRequests = text
}

// Breakdown itemizes the current draft for display and provider line items.
func (d *Draft) Breakdown() (pricing.Breakdown, error) {
	return pricing.NewBreakdown(d.TotalDays, d.DailyRate, d.AddOns)
}

// Snapshot returns a copy safe to hand across the session boundary.
func (d *Draft) Snapshot() Draft {
	return *d
}

func (d *Draft) recompute() {
	d.TotalDays = 0
	if !d.Pickup.IsZero() && !d.Return.IsZero() {
		dr := daterange.DateRange{Pickup: d.Pickup, Return: d.Return}
		if dr.Validate() == nil {
			d.TotalDays = dr.Days()
		}
	}
	total, err := pricing.ComputeTotal(d.TotalDays, d.DailyRate, d.AddOns)
	if err != nil {
		// The rate currency is fixed at creation; reaching here means a
		// zero-value draft, which prices at zero.
		total = money.Money{Amount: 0, Currency: d.DailyRate.Currency}
	}
	d.Total = total
}
