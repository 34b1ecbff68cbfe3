package dto

import (
	"time"

	"drively/internal/domain/cars"
	"drively/internal/domain/checkout"
	"drively/internal/domain/pricing"
	"drively/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type CarSummaryDTO struct {
	ID        string   `json:"id"`
	Brand     string   `json:"brand"`
	Model     string   `json:"model"`
	Year      int      `json:"year"`
	DailyRate MoneyDTO `json:"daily_rate"`
	ImageURL  string   `json:"image_url,omitempty"`
}

type AddOnsDTO struct {
	Insurance        bool `json:"insurance"`
	GPS              bool `json:"gps"`
	ChildSeat        bool `json:"child_seat"`
	AdditionalDriver bool `json:"additional_driver"`
}

type DraftDTO struct {
	CarID           string     `json:"car_id"`
	Pickup          *time.Time `json:"pickup,omitempty"`
	Return          *time.Time `json:"return,omitempty"`
	TotalDays       int        `json:"total_days"`
	AddOns          AddOnsDTO  `json:"add_ons"`
	PickupLocation  string     `json:"pickup_location,omitempty"`
	DropoffLocation string     `json:"dropoff_location,omitempty"`
	SpecialRequests string     `json:"special_requests,omitempty"`
	Total           MoneyDTO   `json:"total"`
}

type PriceLineDTO struct {
	Name   string   `json:"name"`
	Amount MoneyDTO `json:"amount"`
}

type BreakdownDTO struct {
	Lines []PriceLineDTO `json:"lines"`
	Total MoneyDTO       `json:"total"`
}

type CheckoutSessionDTO struct {
	ID        string        `json:"id"`
	Stage     string        `json:"stage"`
	Car       CarSummaryDTO `json:"car"`
	Draft     DraftDTO      `json:"draft"`
	Breakdown *BreakdownDTO `json:"breakdown,omitempty"`
	Locked    bool          `json:"locked"`
	BookingID string        `json:"booking_id,omitempty"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

func MapCarSummary(car cars.Summary) CarSummaryDTO {
	return CarSummaryDTO{
		ID:        string(car.ID),
		Brand:     car.Brand,
		Model:     car.Model,
		Year:      car.Year,
		DailyRate: MapMoney(car.DailyRate),
		ImageURL:  car.ImageURL,
	}
}

func MapDraft(d checkout.Draft) DraftDTO {
	out := DraftDTO{
		CarID:           string(d.CarID),
		TotalDays:       d.TotalDays,
		PickupLocation:  d.PickupLocation,
		DropoffLocation: d.DropoffLocation,
		SpecialRequests: d.SpecialRequests,
		Total:           MapMoney(d.Total),
		AddOns: AddOnsDTO{
			Insurance:        d.AddOns.Insurance,
			GPS:              d.AddOns.GPS,
			ChildSeat:        d.AddOns.ChildSeat,
			AdditionalDriver: d.AddOns.AdditionalDriver,
		},
	}
	if !d.Pickup.IsZero() {
		pickup := d.Pickup
		out.Pickup = &pickup
	}
	if !d.Return.IsZero() {
		ret := d.Return
		out.Return = &ret
	}
	return out
}

func MapBreakdown(b pricing.Breakdown) BreakdownDTO {
	out := BreakdownDTO{Total: MapMoney(b.Total)}
	for _, line := range b.Lines {
		out.Lines = append(out.Lines, PriceLineDTO{Name: line.Name, Amount: MapMoney(line.Amount)})
	}
	return out
}

func MapCheckoutSession(s *checkout.Session) CheckoutSessionDTO {
	snap := s.Snapshot()
	out := CheckoutSessionDTO{
		ID:        string(s.ID),
		Stage:     snap.Stage.String(),
		Car:       MapCarSummary(s.Car),
		Draft:     MapDraft(snap.Draft),
		Locked:    snap.Locked,
		BookingID: snap.BookingID,
	}
	if breakdown, err := snap.Draft.Breakdown(); err == nil {
		mapped := MapBreakdown(breakdown)
		out.Breakdown = &mapped
	}
	return out
}
