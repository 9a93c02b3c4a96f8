package stats

import (
	"fmt"
	"time"
)

const (
	dayKeyLayout   = "2006-01-02"
	dayLabelLayout = "02 Jan"
)

// Day is a calendar date in the display time zone. It is the bucket key for
// daily totals and compares chronologically across years.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar day containing t in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

// ParseDay parses a "2006-01-02" date.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayKeyLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return DayOf(t, time.UTC), nil
}

// Start is midnight at the beginning of the day in loc.
func (d Day) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// End is the start of the following day, the exclusive bound of the day.
func (d Day) End(loc *time.Location) time.Time {
	return d.AddDays(1).Start(loc)
}

// AddDays returns the day n calendar days away; n may be negative.
func (d Day) AddDays(n int) Day {
	return DayOf(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC), time.UTC)
}

// Before reports whether d is earlier than other.
func (d Day) Before(other Day) bool {
	return d.Key() < other.Key()
}

// Key is the fully qualified, sortable form of the day.
func (d Day) Key() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Label is the short display form, e.g. "05 Jan". It is not unique across years.
func (d Day) Label() string {
	return d.Start(time.UTC).Format(dayLabelLayout)
}

// String returns Key.
func (d Day) String() string {
	return d.Key()
}

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool {
	return d == Day{}
}

// DayRange returns the half-open interval [start, end) of the calendar day
// containing ref in loc.
func DayRange(ref time.Time, loc *time.Location) (start, end time.Time) {
	day := DayOf(ref, loc)
	return day.Start(loc), day.End(loc)
}
