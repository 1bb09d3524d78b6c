// Package report formats summaries for display and exports them as CSV.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zhaobenny/stayboard/internal/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// DefaultCurrencyUnit is appended to currency values when none is configured
	DefaultCurrencyUnit = "円"
	// DefaultDayUnit is appended to lead times when none is configured
	DefaultDayUnit = "日"
)

// Undefined is shown in place of values that cannot be computed
const Undefined = "-"

// Formatter renders summary values as display strings
type Formatter struct {
	currencyUnit string
	dayUnit      string
	printer      *message.Printer
}

// NewFormatter creates a formatter that suffixes currency values with
// currencyUnit and lead times with dayUnit. An empty unit adds no suffix.
func NewFormatter(currencyUnit, dayUnit string) Formatter {
	return Formatter{
		currencyUnit: strings.TrimSpace(currencyUnit),
		dayUnit:      strings.TrimSpace(dayUnit),
		printer:      message.NewPrinter(language.English),
	}
}

func withUnit(s, unit string) string {
	if unit == "" {
		return s
	}
	return s + " " + unit
}

func (f Formatter) currency(n int64) string {
	return withUnit(f.printer.Sprintf("%d", n), f.currencyUnit)
}

// Revenue formats a total as a whole currency amount, truncating any fraction
func (f Formatter) Revenue(d decimal.Decimal) string {
	return f.currency(d.IntPart())
}

// Rate formats a nightly rate rounded half to even to a whole currency amount
func (f Formatter) Rate(d decimal.NullDecimal) string {
	if !d.Valid {
		return Undefined
	}
	return f.currency(d.Decimal.RoundBank(0).IntPart())
}

// LeadTime formats a mean lead time in days to one decimal place
func (f Formatter) LeadTime(d decimal.NullDecimal) string {
	if !d.Valid {
		return Undefined
	}
	return withUnit(d.Decimal.StringFixedBank(1), f.dayUnit)
}

// Occupancy formats an occupancy percentage
func (f Formatter) Occupancy(d decimal.Decimal) string {
	return d.StringFixed(1) + " %"
}

// Nights formats a nights total with digit grouping
func (f Formatter) Nights(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return f.printer.Sprintf("%d", d.IntPart())
	}
	return d.String()
}

// Value formats a raw metric value, as read from a pivot cell
func (f Formatter) Value(m model.Metric, v float64) string {
	d := decimal.NewFromFloat(v)
	switch m {
	case model.MetricTotalRevenue:
		return f.Revenue(d)
	case model.MetricAvgNightlyRate:
		return f.Rate(decimal.NewNullDecimal(d))
	case model.MetricAvgLeadTime:
		return f.LeadTime(decimal.NewNullDecimal(d))
	case model.MetricOccupancyRate:
		return f.Occupancy(d)
	}
	return fmt.Sprintf("%g", v)
}

// Row is a summary with every value formatted for display
type Row struct {
	Month          string
	Facility       string
	Rows           int
	TotalRevenue   string
	TotalNights    string
	AvgNightlyRate string
	AvgLeadTime    string
	OccupancyRate  string
}

// Rows formats summaries for the report table
func (f Formatter) Rows(results []model.Summary) []Row {
	rows := make([]Row, len(results))
	for i, s := range results {
		rows[i] = Row{
			Month:          s.Month.String(),
			Facility:       s.Facility,
			Rows:           s.Rows,
			TotalRevenue:   f.Revenue(s.TotalRevenue),
			TotalNights:    f.Nights(s.TotalNights),
			AvgNightlyRate: f.Rate(s.AvgNightlyRate),
			AvgLeadTime:    f.LeadTime(s.AvgLeadTime),
			OccupancyRate:  f.Occupancy(s.OccupancyRate),
		}
	}
	return rows
}
