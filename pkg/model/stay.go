package model

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Stay is the half-open range [CheckIn, CheckOut). Date-only input starts
// and ends at midnight UTC; timestamps keep their instant.
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func NewStay(checkIn, checkOut time.Time) Stay {
	return Stay{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}
}

func (s Stay) Overlaps(other Stay) bool {
	return s.CheckIn.Before(other.CheckOut) && s.CheckOut.After(other.CheckIn)
}

// WholeDays lists midnight UTC of every calendar day that lies entirely
// inside the stay. Two stays that share a whole day always overlap.
func (s Stay) WholeDays() []time.Time {
	start := TruncateToDay(s.CheckIn)
	if start.Before(s.CheckIn) {
		start = start.AddDate(0, 0, 1)
	}

	var days []time.Time
	for d := start; !d.AddDate(0, 0, 1).After(s.CheckOut); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (s Stay) String() string {
	return fmt.Sprintf("[%s, %s)", FormatDate(s.CheckIn), FormatDate(s.CheckOut))
}

// ParseDate accepts a calendar date, read as midnight UTC, or an RFC 3339
// timestamp, kept as its instant in UTC at millisecond precision.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", value)
	}
	return t.UTC().Truncate(time.Millisecond), nil
}

// FormatDate prints midnight UTC as a calendar date and anything else as an
// RFC 3339 timestamp.
func FormatDate(t time.Time) string {
	t = t.UTC()
	if t.Equal(TruncateToDay(t)) {
		return t.Format(DateLayout)
	}
	return t.Format(time.RFC3339Nano)
}

func TruncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
