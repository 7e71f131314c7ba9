package model

import (
    "encoding/json"
    "fmt"
    "time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without a time of day or zone.  It is used for
// arrival/departure dates extracted from request documents.
type Date struct {
    Year  int
    Month time.Month
    Day   int
}

// NewDate builds a Date and reports whether the components form a real
// calendar day (no 31 April, no 29 February outside leap years).
func NewDate(year int, month time.Month, day int) (Date, bool) {
    if month < time.January || month > time.December || day < 1 {
        return Date{}, false
    }
    t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
    if t.Year() != year || t.Month() != month || t.Day() != day {
        return Date{}, false
    }
    return Date{Year: year, Month: month, Day: day}, true
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
    y, m, d := t.Date()
    return Date{Year: y, Month: m, Day: d}
}

// ParseISODate parses a YYYY-MM-DD string.
func ParseISODate(s string) (Date, error) {
    t, err := time.Parse(dateLayout, s)
    if err != nil {
        return Date{}, err
    }
    return DateOf(t), nil
}

// Time returns midnight of the date in loc.
func (d Date) Time(loc *time.Location) time.Time {
    if loc == nil {
        loc = time.UTC
    }
    return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Weekday returns the day of week of the date.
func (d Date) Weekday() time.Weekday { return d.Time(time.UTC).Weekday() }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d.Time(time.UTC).Before(o.Time(time.UTC)) }

func (d Date) String() string {
    return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
    return json.Marshal(d.String())
}

// UnmarshalJSON parses "YYYY-MM-DD".
func (d *Date) UnmarshalJSON(b []byte) error {
    var s string
    if err := json.Unmarshal(b, &s); err != nil {
        return err
    }
    v, err := ParseISODate(s)
    if err != nil {
        return err
    }
    *d = v
    return nil
}
