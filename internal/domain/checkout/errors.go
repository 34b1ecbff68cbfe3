package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrMissingDates     = errors.New("checkout: pickup and return dates are required")
	ErrStartInPast      = errors.New("checkout: pickup date is in the past")
	ErrEndNotAfterStart = errors.New("checkout: return date must be after pickup")

	ErrNotAuthenticated      = errors.New("checkout: sign in to continue to payment")
	ErrPaymentClientNotReady = errors.New("checkout: payment client is still initializing")
	ErrNoRedirectTarget      = errors.New("checkout: payment session returned no redirect target")
	ErrCancellationBlocked   = errors.New("checkout: cancellation is blocked while payment handoff is in flight")
	ErrAdvanceInFlight       = errors.New("checkout: a request for this session is already in flight")
	ErrInvalidState          = errors.New("checkout: invalid stage transition")
	ErrSessionNotFound       = errors.New("checkout: session not found")
	ErrNotSessionOwner       = errors.New("checkout: session belongs to another guest")
)

// FailureKind classifies a session/redirect/booking failure so the user gets a
// remedy-specific message instead of a generic one.
type FailureKind string

const (
	FailureNetwork  FailureKind = "network"
	FailureProvider FailureKind = "provider"
	FailureUnknown  FailureKind = "unknown"
)

// HandoffError wraps a failure that occurred while requesting a payment
// session, initiating the redirect, or creating the booking directly.
type HandoffError struct {
	Kind FailureKind
	Err  error
}

func (e *HandoffError) Error() string {
	return fmt.Sprintf("checkout: handoff failed (%s): %v", e.Kind, e.Err)
}

func (e *HandoffError) Unwrap() error { return e.Err }

// ClassifyFailure extracts the failure kind, defaulting to unknown.
func ClassifyFailure(err error) FailureKind {
	var he *HandoffError
	if errors.As(err, &he) {
		return he.Kind
	}
	return FailureUnknown
}

// UserMessage maps an error to the message surfaced through the notifier.
// Network failures suggest a connectivity fix, provider failures a retry, and
// everything else falls back to a generic message.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingDates),
		errors.Is(err, ErrStartInPast),
		errors.Is(err, ErrEndNotAfterStart),
		errors.Is(err, ErrNotAuthenticated),
		errors.Is(err, ErrPaymentClientNotReady),
		errors.Is(err, ErrCancellationBlocked),
		errors.Is(err, ErrAdvanceInFlight):
		return err.Error()
	case errors.Is(err, ErrNoRedirectTarget):
		return "payment could not be started, please try again"
	}
	switch ClassifyFailure(err) {
	case FailureNetwork:
		return "payment could not be started, check your connection"
	case FailureProvider:
		return "payment could not be started, please try again"
	default:
		return "something went wrong, please try again"
	}
}
