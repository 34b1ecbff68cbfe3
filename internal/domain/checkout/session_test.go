package checkout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) (*Session, *countingInterceptor) {
	t.Helper()
	interceptor := &countingInterceptor{}
	sess := NewSession("sess-1", "guest-1", compactCar(), interceptor, validateToday)
	require.NoError(t, sess.SetDates(day(2026, 9, 1), day(2026, 9, 4), validateToday))
	return sess, interceptor
}

func TestNewSession_StartsInSelection(t *testing.T) {
	sess := NewSession("sess-1", "guest-1", compactCar(), nil, validateToday)
	assert.Equal(t, StageSelection, sess.Stage())
	assert.False(t, sess.Locked())

	pending := sess.PendingEvents()
	require.Len(t, pending, 1)
	assert.Equal(t, "checkout.started", pending[0].EventName())
}

func TestSession_HandoffSuccessTerminates(t *testing.T) {
	sess, interceptor := newTestSession(t)

	require.NoError(t, sess.BeginHandoff(validateToday))
	assert.Equal(t, StagePaymentHandoff, sess.Stage())
	assert.True(t, sess.InFlight())

	require.NoError(t, sess.ArmGuard("payment in progress"))
	assert.True(t, sess.Locked())

	sess.HandoffSucceeded(RedirectIntent{PaymentSessionID: "ps-1", RedirectURL: "https://pay.example/ps-1"}, validateToday)
	assert.Equal(t, StageTerminated, sess.Stage())
	assert.True(t, sess.Stage().IsTerminal())
	assert.False(t, sess.Locked())
	assert.False(t, sess.InFlight())
	assert.Equal(t, 1, interceptor.removes)
}

func TestSession_HandoffFailureReturnsToSelectionWithDraftIntact(t *testing.T) {
	sess, interceptor := newTestSession(t)
	require.NoError(t, sess.SetAddOn(AddOnInsurance, true, validateToday))
	priced := sess.Draft()

	require.NoError(t, sess.BeginHandoff(validateToday))
	require.NoError(t, sess.ArmGuard("payment in progress"))

	cause := &HandoffError{Kind: FailureNetwork, Err: errors.New("dial tcp: timeout")}
	sess.HandoffFailed(cause, validateToday)

	assert.Equal(t, StageSelection, sess.Stage())
	assert.False(t, sess.Locked())
	assert.Equal(t, 1, interceptor.removes)
	assert.Equal(t, priced, sess.Draft())

	// editable again: the guest can fix the input and retry
	require.NoError(t, sess.SetAddOn(AddOnGPS, true, validateToday))
}

func TestSession_HandoffFailureEventCarriesKind(t *testing.T) {
	sess, _ := newTestSession(t)
	require.NoError(t, sess.BeginHandoff(validateToday))
	sess.ClearEvents()

	sess.HandoffFailed(&HandoffError{Kind: FailureProvider, Err: errors.New("status 500")}, validateToday)

	pending := sess.PendingEvents()
	require.Len(t, pending, 1)
	failed, ok := pending[0].(HandoffFailed)
	require.True(t, ok)
	assert.Equal(t, FailureProvider, failed.Kind)
}

func TestSession_DuplicateAdvanceRejected(t *testing.T) {
	sess, _ := newTestSession(t)
	require.NoError(t, sess.BeginHandoff(validateToday))

	assert.ErrorIs(t, sess.BeginHandoff(validateToday), ErrAdvanceInFlight)
	assert.ErrorIs(t, sess.SetDates(day(2026, 9, 2), day(2026, 9, 5), validateToday), ErrAdvanceInFlight)
}

func TestSession_BeginHandoffRevalidatesDates(t *testing.T) {
	interceptor := &countingInterceptor{}
	sess := NewSession("sess-1", "guest-1", compactCar(), interceptor, validateToday)

	err := sess.BeginHandoff(validateToday)
	assert.ErrorIs(t, err, ErrMissingDates)
	assert.Equal(t, StageSelection, sess.Stage())
	assert.False(t, sess.InFlight())

	// a range accepted yesterday can be stale by the time of the advance
	require.NoError(t, sess.SetDates(day(2026, 9, 1), day(2026, 9, 4), validateToday))
	later := day(2026, 9, 2)
	assert.ErrorIs(t, sess.BeginHandoff(later), ErrStartInPast)
}

func TestSession_DirectBranch(t *testing.T) {
	sess, _ := newTestSession(t)

	require.NoError(t, sess.AdvanceToConfirmation(validateToday))
	assert.Equal(t, StageConfirmation, sess.Stage())

	// edits are locked outside selection
	assert.ErrorIs(t, sess.SetAddOn(AddOnGPS, true, validateToday), ErrInvalidState)

	require.NoError(t, sess.BeginBookingCreation(validateToday))
	sess.BookingCreated("bk-1", validateToday)
	assert.Equal(t, StageTerminated, sess.Stage())
	assert.Equal(t, "bk-1", sess.BookingID())
}

func TestSession_DirectBranchFailureAllowsRetry(t *testing.T) {
	sess, _ := newTestSession(t)
	require.NoError(t, sess.AdvanceToConfirmation(validateToday))
	require.NoError(t, sess.BeginBookingCreation(validateToday))

	sess.BookingFailed(validateToday)
	assert.Equal(t, StageConfirmation, sess.Stage())
	assert.False(t, sess.InFlight())

	// same inputs, second attempt
	require.NoError(t, sess.BeginBookingCreation(validateToday))
	sess.BookingCreated("bk-2", validateToday)
	assert.Equal(t, "bk-2", sess.BookingID())
}

func TestSession_ConfirmationCannotReenterPaymentHandoff(t *testing.T) {
	sess, _ := newTestSession(t)
	require.NoError(t, sess.AdvanceToConfirmation(validateToday))
	assert.ErrorIs(t, sess.BeginHandoff(validateToday), ErrInvalidState)
}

func TestSession_CancelBlockedDuringHandoff(t *testing.T) {
	sess, _ := newTestSession(t)
	require.NoError(t, sess.BeginHandoff(validateToday))
	require.NoError(t, sess.ArmGuard("payment in progress"))

	assert.ErrorIs(t, sess.Cancel(validateToday), ErrCancellationBlocked)
	assert.Equal(t, StagePaymentHandoff, sess.Stage())
}

func TestSession_CancelFromSelection(t *testing.T) {
	sess, _ := newTestSession(t)
	require.NoError(t, sess.Cancel(validateToday))
	assert.Equal(t, StageTerminated, sess.Stage())
	assert.ErrorIs(t, sess.Cancel(validateToday), ErrInvalidState)
}

func TestSession_CancelFromConfirmation(t *testing.T) {
	sess, _ := newTestSession(t)
	require.NoError(t, sess.AdvanceToConfirmation(validateToday))
	require.NoError(t, sess.Cancel(validateToday))
	assert.Equal(t, StageTerminated, sess.Stage())
}

func TestSession_CloseReleasesGuardOnTeardown(t *testing.T) {
	sess, interceptor := newTestSession(t)
	require.NoError(t, sess.BeginHandoff(validateToday))
	require.NoError(t, sess.ArmGuard("payment in progress"))

	sess.Close()
	assert.False(t, sess.Locked())
	assert.Equal(t, 1, interceptor.removes)

	// closing an unarmed session is harmless
	sess.Close()
	assert.Equal(t, 1, interceptor.removes)
}

func TestSession_TerminatedIsDead(t *testing.T) {
	sess, _ := newTestSession(t)
	require.NoError(t, sess.BeginHandoff(validateToday))
	sess.HandoffSucceeded(RedirectIntent{PaymentSessionID: "ps-1"}, validateToday)

	assert.ErrorIs(t, sess.BeginHandoff(validateToday), ErrInvalidState)
	assert.ErrorIs(t, sess.AdvanceToConfirmation(validateToday), ErrInvalidState)
	assert.ErrorIs(t, sess.SetDates(day(2026, 9, 2), day(2026, 9, 6), validateToday), ErrInvalidState)
}

func TestStage_TransitionTable(t *testing.T) {
	assert.True(t, StageSelection.CanTransitionTo(StagePaymentHandoff))
	assert.True(t, StageSelection.CanTransitionTo(StageConfirmation))
	assert.True(t, StagePaymentHandoff.CanTransitionTo(StageSelection))
	assert.True(t, StagePaymentHandoff.CanTransitionTo(StageTerminated))
	assert.True(t, StageConfirmation.CanTransitionTo(StageTerminated))

	assert.False(t, StageConfirmation.CanTransitionTo(StagePaymentHandoff))
	assert.False(t, StagePaymentHandoff.CanTransitionTo(StageConfirmation))
	assert.False(t, StageTerminated.CanTransitionTo(StageSelection))
	assert.True(t, StageTerminated.IsTerminal())
	assert.False(t, StageSelection.IsTerminal())

	var unknown Stage = "LIMBO"
	assert.False(t, unknown.CanTransitionTo(StageSelection))
}

func TestUserMessage_Mapping(t *testing.T) {
	netErr := &HandoffError{Kind: FailureNetwork, Err: errors.New("dial tcp")}
	assert.Contains(t, UserMessage(netErr), "check your connection")

	provErr := &HandoffError{Kind: FailureProvider, Err: errors.New("status 502")}
	assert.Contains(t, UserMessage(provErr), "try again")

	assert.Contains(t, UserMessage(errors.New("weird")), "something went wrong")
	assert.Equal(t, ErrNotAuthenticated.Error(), UserMessage(ErrNotAuthenticated))
	assert.Empty(t, UserMessage(nil))
}
