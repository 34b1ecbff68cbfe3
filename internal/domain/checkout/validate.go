package checkout

import (
	"time"

	"drively/internal/domain/shared/daterange"
)

// ValidateRange checks a proposed rental range, first failure wins:
// both dates present, pickup not before today, return strictly after pickup.
// Comparison happens at day granularity; time-of-day is ignored.
func ValidateRange(pickup, ret, today time.Time) error {
	if pickup.IsZero() || ret.IsZero() {
		return ErrMissingDates
	}
	if daterange.Day(pickup).Before(daterange.Day(today)) {
		return ErrStartInPast
	}
	if !daterange.Day(ret).After(daterange.Day(pickup)) {
		return ErrEndNotAfterStart
	}
	return nil
}
