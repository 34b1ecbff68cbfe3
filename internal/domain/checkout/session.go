package checkout

import (
	"context"
	"sync"
	"time"

	"drively/internal/domain/cars"
	"drively/internal/domain/shared/events"
)

type SessionID string

// Session is the checkout aggregate: one coherent in-progress booking with a
// well-defined current stage. It owns the draft, the stage, and the handoff
// guard; all of them change only through the methods below. Methods are safe
// for concurrent use; the in-flight flag is the duplicate-submission gate.
type Session struct {
	ID        SessionID
	GuestID   string
	Car       cars.Summary
	CreatedAt time.Time

	mu        sync.Mutex
	stage     Stage
	bookingID string
	updatedAt time.Time
	draft     *Draft
	guard     *HandoffGuard
	inFlight  bool
	events.EventRecorder
}

// NewSession opens a checkout for a car, seeded with the car's id and rate.
func NewSession(id SessionID, guestID string, car cars.Summary, interceptor Interceptor, now time.Time) *Session {
	now = now.UTC()
	s := &Session{
		ID:        id,
		GuestID:   guestID,
		Car:       car,
		CreatedAt: now,
		stage:     StageSelection,
		updatedAt: now,
		draft:     NewDraft(car),
		guard:     NewHandoffGuard(interceptor),
	}
	s.Record(CheckoutStarted{SessionID: s.ID, CarID: car.ID, GuestID: guestID, At: now})
	return s
}

// Draft returns a copy of the working draft. Mutation goes through the
// session so stage gating and repricing cannot be bypassed.
func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Snapshot()
}

// SetDates updates the rental range while still in selection.
func (s *Session) SetDates(pickup, ret, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	if err := s.draft.SetDates(pickup, ret, now); err != nil {
		return err
	}
	s.updatedAt = now.UTC()
	return nil
}

// SetAddOn toggles one extra while still in selection.
func (s *Session) SetAddOn(kind AddOnKind, enabled bool, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	if err := s.draft.SetAddOn(kind, enabled); err != nil {
		return err
	}
	s.updatedAt = now.UTC()
	return nil
}

// SetLocations records pickup and dropoff selectors.
func (s *Session) SetLocations(pickup, dropoff string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	s.draft.SetLocations(pickup, dropoff)
	s.updatedAt = now.UTC()
	return nil
}

// SetSpecialRequests stores advisory free text.
func (s *Session) SetSpecialRequests(text string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	s.draft.SetSpecialRequests(text)
	s.updatedAt = now.UTC()
	return nil
}

// editable requires the selection stage with no outstanding request.
// Callers hold s.mu.
func (s *Session) editable() error {
	if s.inFlight {
		return ErrAdvanceInFlight
	}
	if s.stage != StageSelection {
		return ErrInvalidState
	}
	return nil
}

// BeginHandoff moves the wizard into the payment handoff stage. The date gate
// runs again here so a stale draft cannot slip through, and the in-flight flag
// rejects a second concurrent advance for the same draft.
func (s *Session) BeginHandoff(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return ErrAdvanceInFlight
	}
	if !s.stage.CanTransitionTo(StagePaymentHandoff) {
		return ErrInvalidState
	}
	if err := ValidateRange(s.draft.Pickup, s.draft.Return, now); err != nil {
		return err
	}
	s.stage = StagePaymentHandoff
	s.inFlight = true
	s.updatedAt = now.UTC()
	return nil
}

// ArmGuard installs the navigation interceptor. Called strictly after the
// payment session was obtained and strictly before the redirect is handed out.
func (s *Session) ArmGuard(reason string) error {
	return s.guard.Arm(reason)
}

// HandoffSucceeded records that control left the process. From this session's
// point of view a full-page redirect is process termination, so the stage is
// terminal and the guard is released.
func (s *Session) HandoffSucceeded(intent RedirectIntent, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now = now.UTC()
	s.guard.Disarm()
	s.inFlight = false
	s.stage = StageTerminated
	s.updatedAt = now
	s.Record(HandoffStarted{
		SessionID:        s.ID,
		PaymentSessionID: intent.PaymentSessionID,
		CarID:            s.Car.ID,
		Total:            s.draft.Total,
		At:               now,
	})
}

// HandoffFailed returns the wizard to selection with the draft untouched.
// Every failure route out of the handoff disarms the guard before surfacing.
func (s *Session) HandoffFailed(cause error, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now = now.UTC()
	s.guard.Disarm()
	s.inFlight = false
	s.stage = StageSelection
	s.updatedAt = now
	s.Record(HandoffFailed{
		SessionID: s.ID,
		Kind:      ClassifyFailure(cause),
		Reason:    cause.Error(),
		At:        now,
	})
}

// AdvanceToConfirmation enters the direct-booking branch, gated by the same
// date validation as the payment branch.
func (s *Session) AdvanceToConfirmation(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return ErrAdvanceInFlight
	}
	if !s.stage.CanTransitionTo(StageConfirmation) {
		return ErrInvalidState
	}
	if err := ValidateRange(s.draft.Pickup, s.draft.Return, now); err != nil {
		return err
	}
	s.stage = StageConfirmation
	s.updatedAt = now.UTC()
	return nil
}

// BeginBookingCreation marks the direct-booking call in flight.
func (s *Session) BeginBookingCreation(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return ErrAdvanceInFlight
	}
	if s.stage != StageConfirmation {
		return ErrInvalidState
	}
	s.inFlight = true
	s.updatedAt = now.UTC()
	return nil
}

// BookingCreated terminates the session after the reservation was created.
func (s *Session) BookingCreated(bookingID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now = now.UTC()
	s.guard.Disarm()
	s.inFlight = false
	s.stage = StageTerminated
	s.bookingID = bookingID
	s.updatedAt = now
	s.Record(BookingConfirmed{
		SessionID: s.ID,
		BookingID: bookingID,
		CarID:     s.Car.ID,
		Total:     s.draft.Total,
		At:        now,
	})
}

// BookingFailed keeps the session in confirmation so the guest can retry
// without re-collecting input.
func (s *Session) BookingFailed(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.updatedAt = now.UTC()
}

// Cancel discards the draft. Blocked once a payment handoff is in flight; a
// terminated session has nothing left to cancel.
func (s *Session) Cancel(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage == StagePaymentHandoff || s.guard.Armed() {
		return ErrCancellationBlocked
	}
	if s.inFlight {
		return ErrAdvanceInFlight
	}
	if !s.stage.CanTransitionTo(StageTerminated) {
		return ErrInvalidState
	}
	now = now.UTC()
	s.stage = StageTerminated
	s.updatedAt = now
	s.Record(CheckoutCancelled{SessionID: s.ID, CarID: s.Car.ID, At: now})
	return nil
}

// Close releases the guard unconditionally. Safe on every teardown path,
// including sessions that never armed it.
func (s *Session) Close() {
	s.guard.Disarm()
}

// Stage returns the current wizard stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// BookingID returns the id of the confirmed reservation, empty until one exists.
func (s *Session) BookingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookingID
}

// UpdatedAt returns the time of the last state change.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// SessionSnapshot is a coherent read of the mutable session state.
type SessionSnapshot struct {
	Stage     Stage
	BookingID string
	Draft     Draft
	Locked    bool
}

// Snapshot captures stage, booking id and draft under a single lock so a
// reader racing a transition never sees a half-applied state.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	snap := SessionSnapshot{
		Stage:     s.stage,
		BookingID: s.bookingID,
		Draft:     s.draft.Snapshot(),
	}
	s.mu.Unlock()
	snap.Locked = s.guard.Armed()
	return snap
}

// Locked reports whether navigation out of the checkout is currently blocked.
func (s *Session) Locked() bool { return s.guard.Armed() }

// InFlight reports whether a network call for this session is outstanding.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

type Repository interface {
	ByID(ctx context.Context, id SessionID) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id SessionID) error
}
