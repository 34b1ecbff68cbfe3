package memory

import (
	"context"
	"sort"
	"sync"

	"drively/internal/domain/booking"
)

// BookingRepository stores confirmed bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[booking.BookingID]*booking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[booking.BookingID]*booking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id booking.BookingID) (*booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return b, nil
}

func (r *BookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.Version++
	r.items[b.ID] = b
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*booking.Booking
	for _, b := range r.items {
		if b.GuestID == guestID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
