package model

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Booking represents a single sales row from a booking system export.
// Fields that could not be coerced are left nil or invalid.
type Booking struct {
	Facility string
	CheckIn  *time.Time
	BookedOn *time.Time
	Sale     decimal.NullDecimal
	Nights   decimal.NullDecimal
}

// YearMonth returns the calendar month the check-in falls in
func (b Booking) YearMonth() (YearMonth, bool) {
	if b.CheckIn == nil {
		return YearMonth{}, false
	}
	return MonthOf(*b.CheckIn), true
}

// LeadTime returns the whole days between booking and check-in, floored.
func (b Booking) LeadTime() (int, bool) {
	if b.CheckIn == nil || b.BookedOn == nil {
		return 0, false
	}
	days := math.Floor(b.CheckIn.Sub(*b.BookedOn).Hours() / 24)
	return int(days), true
}

// YearMonth is a calendar month used as a grouping key
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthOf truncates t to its calendar month
func MonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses the "2006-01" form produced by String
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid year-month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

func (m YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Before reports whether m is an earlier month than o
func (m YearMonth) Before(o YearMonth) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// Summary is the aggregate for one (month, facility) pair
type Summary struct {
	Month          YearMonth
	Facility       string
	Rows           int                 // raw rows in the group
	TotalRevenue   decimal.Decimal     // sum of valid sale amounts
	TotalNights    decimal.Decimal     // sum of valid nights
	AvgNightlyRate decimal.NullDecimal // TotalRevenue / TotalNights, invalid when nights is zero
	AvgLeadTime    decimal.NullDecimal // mean lead time in days over rows that have one
	OccupancyRate  decimal.Decimal     // TotalNights / 30 * 100, one decimal
}
