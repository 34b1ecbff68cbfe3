package dto_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drively/internal/app/dto"
	"drively/internal/domain/cars"
	"drively/internal/domain/checkout"
	"drively/internal/domain/shared/money"
)

func sessionForMapping(t *testing.T) *checkout.Session {
	t.Helper()
	car := cars.Summary{
		ID:        "car-compact-01",
		Brand:     "Toyota",
		Model:     "Corolla",
		Year:      2022,
		DailyRate: money.Must(50, "USD"),
	}
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	sess := checkout.NewSession("sess-1", "guest-1", car, nil, now)
	require.NoError(t, sess.SetDates(
		time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		now,
	))
	return sess
}

func TestMapCheckoutSession_ReflectsDraftAndStage(t *testing.T) {
	sess := sessionForMapping(t)

	out := dto.MapCheckoutSession(sess)
	assert.Equal(t, "sess-1", out.ID)
	assert.Equal(t, "SELECTION", out.Stage)
	assert.Equal(t, 3, out.Draft.TotalDays)
	assert.Equal(t, int64(150), out.Draft.Total.Amount)
	assert.False(t, out.Locked)
	require.NotNil(t, out.Breakdown)
	assert.Equal(t, int64(150), out.Breakdown.Total.Amount)
}

// Mapping a session must stay coherent while another request drives it
// through handoff transitions, so the reader takes one locked snapshot
// instead of field-by-field reads.
func TestMapCheckoutSession_ConcurrentWithTransitions(t *testing.T) {
	sess := sessionForMapping(t)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if err := sess.BeginHandoff(now); err != nil {
				continue
			}
			sess.HandoffFailed(errors.New("provider unavailable"), now)
		}
	}()

	var bad string
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			out := dto.MapCheckoutSession(sess)
			if out.Stage != "SELECTION" && out.Stage != "PAYMENT_HANDOFF" {
				bad = out.Stage
				return
			}
		}
	}()
	wg.Wait()

	assert.Empty(t, bad, "observed a stage the session never held")
	assert.Equal(t, "SELECTION", dto.MapCheckoutSession(sess).Stage)
}
