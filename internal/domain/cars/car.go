package cars

import (
	"context"
	"errors"

	"drively/internal/domain/shared/money"
)

var (
	ErrCarNotFound    = errors.New("cars: not found")
	ErrCarUnavailable = errors.New("cars: not available for rental")
)

type CarID string

// Car is the catalog entry a checkout session is opened against.
type Car struct {
	ID           CarID
	Brand        string
	Model        string
	Year         int
	DailyRate    money.Money
	HomeLocation string
	ImageKey     string
	ImageURL     string
	Available    bool
}

// Summary is the denormalized slice of a car handed to the payment provider so
// it can render a line item without a second round trip.
type Summary struct {
	ID        CarID
	Brand     string
	Model     string
	Year      int
	DailyRate money.Money
	ImageURL  string
}

func (c Car) Summary() Summary {
	return Summary{
		ID:        c.ID,
		Brand:     c.Brand,
		Model:     c.Model,
		Year:      c.Year,
		DailyRate: c.DailyRate,
		ImageURL:  c.ImageURL,
	}
}

type Repository interface {
	ByID(ctx context.Context, id CarID) (*Car, error)
	List(ctx context.Context) ([]*Car, error)
	Save(ctx context.Context, car *Car) error
}
