package memory

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"

	"drively/internal/domain/cars"
	"drively/internal/domain/shared/money"
)

// CarRepository is the in-memory car catalog.
type CarRepository struct {
	mu    sync.RWMutex
	items map[cars.CarID]*cars.Car
}

func NewCarRepository() *CarRepository {
	return &CarRepository{items: make(map[cars.CarID]*cars.Car)}
}

func (r *CarRepository) ByID(ctx context.Context, id cars.CarID) (*cars.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	car, ok := r.items[id]
	if !ok {
		return nil, cars.ErrCarNotFound
	}
	return car, nil
}

func (r *CarRepository) List(ctx context.Context) ([]*cars.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*cars.Car, 0, len(r.items))
	for _, car := range r.items {
		out = append(out, car)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CarRepository) Save(ctx context.Context, car *cars.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[car.ID] = car
	return nil
}

type carFixture struct {
	ID           string `json:"id"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	DailyRate    int64  `json:"daily_rate"`
	Currency     string `json:"currency"`
	HomeLocation string `json:"home_location"`
	ImageKey     string `json:"image_key"`
	Available    *bool  `json:"available"`
}

// LoadFixtures seeds the catalog from a JSON file. Currency defaults to USD
// and availability to true when omitted.
func (r *CarRepository) LoadFixtures(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var fixtures []carFixture
	if err := json.Unmarshal(raw, &fixtures); err != nil {
		return 0, err
	}
	for _, f := range fixtures {
		currency := f.Currency
		if currency == "" {
			currency = money.USD
		}
		rate, err := money.New(f.DailyRate, currency)
		if err != nil {
			return 0, err
		}
		available := true
		if f.Available != nil {
			available = *f.Available
		}
		car := &cars.Car{
			ID:           cars.CarID(f.ID),
			Brand:        f.Brand,
			Model:        f.Model,
			Year:         f.Year,
			DailyRate:    rate,
			HomeLocation: f.HomeLocation,
			ImageKey:     f.ImageKey,
			Available:    available,
		}
		if err := r.Save(ctx, car); err != nil {
			return 0, err
		}
	}
	return len(fixtures), nil
}
