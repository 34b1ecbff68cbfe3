package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var validateToday = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidateRange_FirstFailureWins(t *testing.T) {
	// a range that violates every rule still reports the missing dates first
	err := ValidateRange(time.Time{}, time.Time{}, validateToday)
	assert.ErrorIs(t, err, ErrMissingDates)

	// in the past and inverted: past wins
	err = ValidateRange(day(2026, 8, 20), day(2026, 8, 18), validateToday)
	assert.ErrorIs(t, err, ErrStartInPast)

	err = ValidateRange(day(2026, 9, 5), day(2026, 9, 3), validateToday)
	assert.ErrorIs(t, err, ErrEndNotAfterStart)
}

func TestValidateRange_OneDateMissing(t *testing.T) {
	assert.ErrorIs(t, ValidateRange(day(2026, 9, 1), time.Time{}, validateToday), ErrMissingDates)
	assert.ErrorIs(t, ValidateRange(time.Time{}, day(2026, 9, 3), validateToday), ErrMissingDates)
}

func TestValidateRange_TodayIsNotPast(t *testing.T) {
	// pickup later today, even at an earlier clock time
	pickup := time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC)
	assert.NoError(t, ValidateRange(pickup, day(2026, 9, 2), validateToday))
}

func TestValidateRange_SameDayRejected(t *testing.T) {
	// same calendar day with different clock times is not a positive stay
	pickup := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	ret := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	assert.ErrorIs(t, ValidateRange(pickup, ret, validateToday), ErrEndNotAfterStart)
}

func TestValidateRange_Valid(t *testing.T) {
	assert.NoError(t, ValidateRange(day(2026, 9, 1), day(2026, 9, 4), validateToday))
}
