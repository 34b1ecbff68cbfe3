package checkout

import (
	"time"

	"drively/internal/domain/cars"
	"drively/internal/domain/shared/money"
)

type CheckoutStarted struct {
	SessionID SessionID
	CarID     cars.CarID
	GuestID   string
	At        time.Time
}

func (e CheckoutStarted) EventName() string     { return "checkout.started" }
func (e CheckoutStarted) AggregateID() string   { return string(e.SessionID) }
func (e CheckoutStarted) OccurredAt() time.Time { return e.At }

type HandoffStarted struct {
	SessionID        SessionID
	PaymentSessionID string
	CarID            cars.CarID
	Total            money.Money
	At               time.Time
}

func (e HandoffStarted) EventName() string     { return "checkout.handoff_started" }
func (e HandoffStarted) AggregateID() string   { return string(e.SessionID) }
func (e HandoffStarted) OccurredAt() time.Time { return e.At }

type HandoffFailed struct {
	SessionID SessionID
	Kind      FailureKind
	Reason    string
	At        time.Time
}

func (e HandoffFailed) EventName() string     { return "checkout.handoff_failed" }
func (e HandoffFailed) AggregateID() string   { return string(e.SessionID) }
func (e HandoffFailed) OccurredAt() time.Time { return e.At }

type CheckoutCancelled struct {
	SessionID SessionID
	CarID     cars.CarID
	At        time.Time
}

func (e CheckoutCancelled) EventName() string     { return "checkout.cancelled" }
func (e CheckoutCancelled) AggregateID() string   { return string(e.SessionID) }
func (e CheckoutCancelled) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	SessionID SessionID
	BookingID string
	CarID     cars.CarID
	Total     money.Money
	At        time.Time
}

func (e BookingConfirmed) EventName() string     { return "checkout.booking_confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.SessionID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }
