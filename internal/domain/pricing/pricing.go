package pricing

import (
	"errors"

	"drively/internal/domain/shared/money"
)

var (
	ErrCurrencyUnset = errors.New("pricing: currency must be defined")
	ErrInvalidDays   = errors.New("pricing: days cannot be negative")
)

// Per-day and flat add-on rates in whole currency units.
const (
	InsurancePerDay      = 15
	GPSPerDay            = 5
	ChildSeatPerDay      = 8
	AdditionalDriverFlat = 25
)

// AddOns is the set of independently toggleable rental extras.
type AddOns struct {
	Insurance        bool
	GPS              bool
	ChildSeat        bool
	AdditionalDriver bool
}

// ComputeTotal applies the additive pricing rules: base days*rate, per-day
// add-ons scaled by days, the additional-driver flat fee, clamped at zero.
// Pure and deterministic; identical inputs always yield identical output.
func ComputeTotal(totalDays int, dailyRate money.Money, addOns AddOns) (money.Money, error) {
	if dailyRate.Currency == "" {
		return money.Money{}, ErrCurrencyUnset
	}
	if totalDays < 0 {
		return money.Money{}, ErrInvalidDays
	}
	days := int64(totalDays)
	total := dailyRate.Multiply(days)
	if addOns.Insurance {
		total.Amount += days * InsurancePerDay
	}
	if addOns.GPS {
		total.Amount += days * GPSPerDay
	}
	if addOns.ChildSeat {
		total.Amount += days * ChildSeatPerDay
	}
	if addOns.AdditionalDriver {
		total.Amount += AdditionalDriverFlat
	}
	return total.ClampNonNegative(), nil
}

// Line is one named component of a quote.
type Line struct {
	Name   string
	Amount money.Money
}

// Breakdown itemizes a quote for display and for the payment provider's line
// items. Total is derived, never set directly.
type Breakdown struct {
	Days      int
	DailyRate money.Money
	AddOns    AddOns
	Lines     []Line
	Total     money.Money
}

// NewBreakdown builds an itemized quote from the same rules as ComputeTotal.
func NewBreakdown(totalDays int, dailyRate money.Money, addOns AddOns) (Breakdown, error) {
	total, err := ComputeTotal(totalDays, dailyRate, addOns)
	if err != nil {
		return Breakdown{}, err
	}
	b := Breakdown{
		Days:      totalDays,
		DailyRate: dailyRate,
		AddOns:    addOns,
		Total:     total,
	}
	days := int64(totalDays)
	currency := dailyRate.Currency
	b.Lines = append(b.Lines, Line{Name: "base", Amount: dailyRate.Multiply(days)})
	if addOns.Insurance {
		b.Lines = append(b.Lines, Line{Name: "insurance", Amount: money.Money{Amount: days * InsurancePerDay, Currency: currency}})
	}
	if addOns.GPS {
		b.Lines = append(b.Lines, Line{Name: "gps", Amount: money.Money{Amount: days * GPSPerDay, Currency: currency}})
	}
	if addOns.ChildSeat {
		b.Lines = append(b.Lines, Line{Name: "child_seat", Amount: money.Money{Amount: days * ChildSeatPerDay, Currency: currency}})
	}
	if addOns.AdditionalDriver {
		b.Lines = append(b.Lines, Line{Name: "additional_driver", Amount: money.Money{Amount: AdditionalDriverFlat, Currency: currency}})
	}
	return b, nil
}
