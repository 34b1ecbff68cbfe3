package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaincars "drively/internal/domain/cars"
	domaincheckout "drively/internal/domain/checkout"
)

func TestStartCheckout_OpensSelectionSession(t *testing.T) {
	repo := newFakeSessionRepo()
	interceptor := &recordingInterceptor{}
	box := &fakeOutbox{}
	h := &StartCheckoutHandler{
		Cars:         newFakeCarRepo(testCar()),
		Sessions:     repo,
		Interceptors: interceptorFactory{interceptor: interceptor},
		Outbox:       box,
		Clock:        testClock(),
	}

	res, err := h.Handle(context.Background(), StartCheckoutCommand{
		SessionID: "sess-1",
		CarID:     "car-compact-01",
		GuestID:   "guest-1",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domaincheckout.StageSelection), res.Session.Stage)
	assert.Equal(t, "car-compact-01", res.Session.Draft.CarID)
	assert.False(t, res.Session.Locked)
	assert.Contains(t, box.names(), "checkout.started")

	sess, err := repo.ByID(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "guest-1", sess.GuestID)
}

func TestStartCheckout_UnknownCar(t *testing.T) {
	h := &StartCheckoutHandler{
		Cars:     newFakeCarRepo(),
		Sessions: newFakeSessionRepo(),
		Clock:    testClock(),
	}
	_, err := h.Handle(context.Background(), StartCheckoutCommand{SessionID: "s", CarID: "ghost", GuestID: "guest-1"})
	require.ErrorIs(t, err, domaincars.ErrCarNotFound)
}

func TestStartCheckout_UnavailableCar(t *testing.T) {
	parked := testCar()
	parked.Available = false
	h := &StartCheckoutHandler{
		Cars:     newFakeCarRepo(parked),
		Sessions: newFakeSessionRepo(),
		Clock:    testClock(),
	}
	_, err := h.Handle(context.Background(), StartCheckoutCommand{SessionID: "s", CarID: string(parked.ID), GuestID: "guest-1"})
	require.ErrorIs(t, err, domaincars.ErrCarUnavailable)
}

func TestStartCheckout_Unauthenticated(t *testing.T) {
	h := &StartCheckoutHandler{
		Cars:     newFakeCarRepo(testCar()),
		Sessions: newFakeSessionRepo(),
		Clock:    testClock(),
	}
	_, err := h.Handle(context.Background(), StartCheckoutCommand{SessionID: "s", CarID: "car-compact-01"})
	require.ErrorIs(t, err, domaincheckout.ErrNotAuthenticated)
}

func TestCancelCheckout_FromSelection(t *testing.T) {
	repo := newFakeSessionRepo()
	interceptor := &recordingInterceptor{}
	sess := seedSession(t, repo, interceptor)
	box := &fakeOutbox{}
	h := &CancelCheckoutHandler{Sessions: repo, Outbox: box, Clock: testClock()}

	res, err := h.Handle(context.Background(), CancelCheckoutCommand{SessionID: "sess-1", GuestID: "guest-1"})
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Equal(t, domaincheckout.StageTerminated, sess.Stage())
	assert.Contains(t, box.names(), "checkout.cancelled")
}

func TestCancelCheckout_BlockedWhileGuardArmed(t *testing.T) {
	repo := newFakeSessionRepo()
	sess := seedSession(t, repo, &recordingInterceptor{})
	require.NoError(t, sess.BeginHandoff(testToday))
	require.NoError(t, sess.ArmGuard("payment in progress"))
	h := &CancelCheckoutHandler{Sessions: repo, Clock: testClock()}

	_, err := h.Handle(context.Background(), CancelCheckoutCommand{SessionID: "sess-1", GuestID: "guest-1"})
	require.ErrorIs(t, err, domaincheckout.ErrCancellationBlocked)
	assert.Equal(t, domaincheckout.StagePaymentHandoff, sess.Stage())
}

func TestCancelCheckout_NotOwner(t *testing.T) {
	repo := newFakeSessionRepo()
	seedSession(t, repo, &recordingInterceptor{})
	h := &CancelCheckoutHandler{Sessions: repo, Clock: testClock()}

	_, err := h.Handle(context.Background(), CancelCheckoutCommand{SessionID: "sess-1", GuestID: "intruder"})
	require.ErrorIs(t, err, domaincheckout.ErrNotSessionOwner)
}
