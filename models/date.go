package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date kept in a DATE column and rendered as YYYY-MM-DD.
// With parseTime=true the driver hands DATE values back as time.Time.
type Date string

// NewDate truncates t to its calendar date.
func NewDate(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

func (d Date) String() string {
	return string(d)
}

// Time parses the date in UTC.
func (d Date) Time() (time.Time, error) {
	return time.Parse(DateLayout, string(d))
}

func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = NewDate(v)
	case []byte:
		*d = dateFromText(string(v))
	case string:
		*d = dateFromText(v)
	default:
		return fmt.Errorf("models: cannot scan %T into Date", value)
	}
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	return string(d), nil
}

// dateFromText keeps the date part of "YYYY-MM-DD", "YYYY-MM-DD hh:mm:ss"
// or RFC3339 text.
func dateFromText(s string) Date {
	s = strings.TrimSpace(s)
	if len(s) >= len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return NewDate(t)
		}
	}
	return Date(s)
}
