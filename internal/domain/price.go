package domain

import "time"

// DateLayout is the calendar date format used in files, tables and reports.
const DateLayout = "2006-01-02"

// PricePoint is one daily observation of an instrument.
// Date is a calendar date (UTC midnight); Price is the adjusted close.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// TruncateDate normalizes t to UTC midnight of its calendar date.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a DateLayout string into a UTC date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
