package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("daterange: return must be after pickup")

// DateRange represents a rental interval [pickup, return) at calendar-day
// granularity. Time-of-day on either endpoint carries no meaning.
type DateRange struct {
	Pickup time.Time
	Return time.Time
}

// New constructs a validated range. Endpoints are kept as given; comparisons
// happen on truncated days.
func New(pickup, ret time.Time) (DateRange, error) {
	dr := DateRange{Pickup: pickup.UTC(), Return: ret.UTC()}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.Pickup.IsZero() || dr.Return.IsZero() {
		return ErrInvalidRange
	}
	if !Day(dr.Return).After(Day(dr.Pickup)) {
		return ErrInvalidRange
	}
	return nil
}

// Days returns the rental length as the ceiling of the whole-day difference.
// A valid range is never shorter than one day.
func (dr DateRange) Days() int {
	diff := dr.Return.Sub(dr.Pickup)
	days := int(diff.Hours() / 24)
	if diff > time.Duration(days)*24*time.Hour {
		days++
	}
	return days
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.Pickup.Before(other.Return) && other.Pickup.Before(dr.Return)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = t.UTC()
	return (t.Equal(dr.Pickup) || t.After(dr.Pickup)) && t.Before(dr.Return)
}

// Day truncates a timestamp to midnight UTC, the granularity at which all
// rental date comparisons happen.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
