package engine

import (
	"fmt"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// Date is a calendar date that may be absent. The zero value is absent.
type Date struct {
	t     time.Time
	valid bool
}

// NewDate returns a present date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), valid: true}
}

// DateOf returns a present date for the calendar day of t.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Present reports whether the date holds a value.
func (d Date) Present() bool { return d.valid }

// Time returns the date at midnight UTC and whether it is present.
func (d Date) Time() (time.Time, bool) { return d.t, d.valid }

// String formats the date as YYYY-MM-DD, or "" when absent.
func (d Date) String() string {
	if !d.valid {
		return ""
	}
	return d.t.Format(time.DateOnly)
}

// dayNumber counts whole days since the Unix epoch, flooring any time of day.
func (d Date) dayNumber() int64 {
	secs := d.t.Unix()
	n := secs / secondsPerDay
	if secs%secondsPerDay < 0 {
		n--
	}
	return n
}

// Between returns to − from in whole days. Absent if either date is absent.
func Between(from, to Date) Days {
	if !from.valid || !to.valid {
		return Days{}
	}
	return Days{Value: int(to.dayNumber() - from.dayNumber()), Valid: true}
}

// Days is a signed whole-day count that may be absent.
type Days struct {
	Value int
	Valid bool
}

// DaysOf returns a present day count.
func DaysOf(n int) Days { return Days{Value: n, Valid: true} }

func (d Days) String() string {
	if !d.Valid {
		return ""
	}
	return fmt.Sprintf("%d", d.Value)
}

// Mean is an arithmetic mean over present samples. Absent when there were none.
type Mean struct {
	Value   float64
	Samples int
	Valid   bool
}

func (m Mean) String() string {
	if !m.Valid {
		return ""
	}
	return fmt.Sprintf("%.1f", m.Value)
}
