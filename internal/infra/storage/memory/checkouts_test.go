package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drively/internal/domain/cars"
	"drively/internal/domain/checkout"
	"drively/internal/domain/shared/money"
	"drively/internal/infra/navigation"
)

var sweepNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func sweepCar() cars.Summary {
	return cars.Summary{ID: "car-1", Brand: "Toyota", Model: "Corolla", Year: 2022, DailyRate: money.Must(50, "USD")}
}

func TestCheckoutStoreRoundTrip(t *testing.T) {
	store := NewCheckoutStore()
	sess := checkout.NewSession("sess-1", "guest-1", sweepCar(), nil, sweepNow)
	require.NoError(t, store.Save(context.Background(), sess))

	got, err := store.ByID(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Same(t, sess, got, "store hands out the live aggregate, not a copy")

	require.NoError(t, store.Delete(context.Background(), "sess-1"))
	_, err = store.ByID(context.Background(), "sess-1")
	require.ErrorIs(t, err, checkout.ErrSessionNotFound)
}

func TestSweepRemovesIdleSessions(t *testing.T) {
	store := NewCheckoutStore()
	stale := checkout.NewSession("stale", "guest-1", sweepCar(), nil, sweepNow.Add(-2*time.Hour))
	fresh := checkout.NewSession("fresh", "guest-1", sweepCar(), nil, sweepNow.Add(-time.Minute))
	require.NoError(t, store.Save(context.Background(), stale))
	require.NoError(t, store.Save(context.Background(), fresh))

	removed := store.Sweep(sweepNow, time.Hour, nil)
	assert.Equal(t, 1, removed)

	_, err := store.ByID(context.Background(), "stale")
	require.ErrorIs(t, err, checkout.ErrSessionNotFound)
	_, err = store.ByID(context.Background(), "fresh")
	require.NoError(t, err)
}

func TestSweepReleasesAbandonedGuard(t *testing.T) {
	registry := navigation.NewRegistry()
	opened := sweepNow.Add(-2 * time.Hour)
	sess := checkout.NewSession("sess-1", "guest-1", sweepCar(), registry.ForSession("sess-1"), opened)
	require.NoError(t, sess.SetDates(
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
		opened,
	))
	require.NoError(t, sess.BeginHandoff(opened))
	require.NoError(t, sess.ArmGuard("payment in progress"))
	// The handoff never completed: simulate the failure path having run so
	// the session is no longer in flight, but leave the guard armed.
	sess.HandoffFailed(checkout.ErrNoRedirectTarget, opened)
	require.NoError(t, sess.ArmGuard("payment in progress"))

	store := NewCheckoutStore()
	require.NoError(t, store.Save(context.Background(), sess))

	_, locked := registry.Reason("sess-1")
	require.True(t, locked)

	removed := store.Sweep(sweepNow, time.Hour, nil)
	assert.Equal(t, 1, removed)

	_, locked = registry.Reason("sess-1")
	assert.False(t, locked, "sweep must release the navigation lock of an abandoned session")
}

func TestSweepSkipsInFlightSessions(t *testing.T) {
	opened := sweepNow.Add(-2 * time.Hour)
	sess := checkout.NewSession("sess-1", "guest-1", sweepCar(), nil, opened)
	require.NoError(t, sess.SetDates(
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
		opened,
	))
	require.NoError(t, sess.BeginHandoff(opened))

	store := NewCheckoutStore()
	require.NoError(t, store.Save(context.Background(), sess))

	removed := store.Sweep(sweepNow, time.Hour, nil)
	assert.Zero(t, removed, "a session mid-handoff is never torn down")
	_, err := store.ByID(context.Background(), "sess-1")
	require.NoError(t, err)
}
