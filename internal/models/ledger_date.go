package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const calendarDateLayout = "2006-01-02"

// LedgerDate is the date of a transaction. Clients send either a calendar date
// ("2024-05-10") or a full timestamp; the value re-serializes in the form it was given.
type LedgerDate struct {
	time.Time
	DateOnly bool
}

// NewLedgerDate wraps a full timestamp
func NewLedgerDate(t time.Time) LedgerDate {
	return LedgerDate{Time: t}
}

// NewCalendarDate builds a date-only value at midnight UTC
func NewCalendarDate(year int, month time.Month, day int) LedgerDate {
	return LedgerDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), DateOnly: true}
}

// ParseLedgerDate accepts RFC 3339 timestamps and YYYY-MM-DD dates
func ParseLedgerDate(s string) (LedgerDate, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return LedgerDate{Time: t}, nil
	}
	if t, err := time.Parse(calendarDateLayout, s); err == nil {
		return LedgerDate{Time: t, DateOnly: true}, nil
	}
	return LedgerDate{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
}

// String returns the wire form of the date
func (d LedgerDate) String() string {
	if d.DateOnly {
		return d.Time.Format(calendarDateLayout)
	}
	return d.Time.Format(time.RFC3339Nano)
}

// Equal compares instants and form
func (d LedgerDate) Equal(o LedgerDate) bool {
	return d.DateOnly == o.DateOnly && d.Time.Equal(o.Time)
}

// MarshalJSON implements json.Marshaler
func (d LedgerDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *LedgerDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseLedgerDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer; dates are stored as their wire string
func (d LedgerDate) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner
func (d *LedgerDate) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseLedgerDate(v)
		if err != nil {
			return err
		}
		*d = parsed
	case []byte:
		parsed, err := ParseLedgerDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
	case time.Time:
		*d = LedgerDate{Time: v}
	case nil:
		*d = LedgerDate{}
	default:
		return fmt.Errorf("cannot scan %T into LedgerDate", src)
	}
	return nil
}
