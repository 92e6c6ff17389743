package nutrition

import (
	"fmt"
	"time"
)

// dateLayout is the wire format for calendar dates (ISO 8601).
const dateLayout = "2006-01-02"

// Date is a calendar date in YYYY-MM-DD form. The zone-free string
// representation is used directly on the wire and as map keys, so a
// Date compares with == and survives JSON round trips unchanged.
type Date string

// ParseDate validates s as a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(s), nil
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// Time returns the date at midnight UTC. Panics on malformed dates;
// construct Dates through ParseDate or DateOf.
func (d Date) Time() time.Time {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		panic(fmt.Sprintf("malformed date %q", string(d)))
	}
	return t
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is earlier than other. Lexicographic order
// on the ISO form is chronological order.
func (d Date) Before(other Date) bool { return d < other }

// After reports whether d is later than other.
func (d Date) After(other Date) bool { return d > other }

// MonthStart returns the first day of d's calendar month.
func (d Date) MonthStart() Date {
	t := d.Time()
	return DateOf(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC))
}

// MonthEnd returns the last day of d's calendar month.
func (d Date) MonthEnd() Date {
	t := d.Time()
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return DateOf(firstOfNext.AddDate(0, 0, -1))
}

// String implements fmt.Stringer.
func (d Date) String() string { return string(d) }
