package aggregator

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/zhaobenny/stayboard/internal/model"
)

// DaysPerMonth is the fixed month length used for the occupancy approximation
const DaysPerMonth = 30

var (
	daysPerMonth = decimal.NewFromInt(DaysPerMonth)
	hundred      = decimal.NewFromInt(100)
)

type groupKey struct {
	month    model.YearMonth
	facility string
}

type group struct {
	summary   model.Summary
	leadSum   int64
	leadCount int64
}

// Summarize aggregates bookings by month and facility. Rows without a
// check-in month or facility name cannot be grouped and are skipped.
func Summarize(bookings []model.Booking) []model.Summary {
	grouped := make(map[groupKey]*group)

	for _, b := range bookings {
		month, ok := b.YearMonth()
		if !ok || b.Facility == "" {
			continue
		}
		key := groupKey{month: month, facility: b.Facility}

		if _, ok := grouped[key]; !ok {
			grouped[key] = &group{summary: model.Summary{
				Month:        month,
				Facility:     b.Facility,
				TotalRevenue: decimal.Zero,
				TotalNights:  decimal.Zero,
			}}
		}

		g := grouped[key]
		g.summary.Rows++
		if b.Sale.Valid {
			g.summary.TotalRevenue = g.summary.TotalRevenue.Add(b.Sale.Decimal)
		}
		if b.Nights.Valid {
			g.summary.TotalNights = g.summary.TotalNights.Add(b.Nights.Decimal)
		}
		if lead, ok := b.LeadTime(); ok {
			g.leadSum += int64(lead)
			g.leadCount++
		}
	}

	results := make([]model.Summary, 0, len(grouped))
	for _, g := range grouped {
		s := g.summary
		s.AvgNightlyRate = NightlyRate(s.TotalRevenue, s.TotalNights)
		if g.leadCount > 0 {
			s.AvgLeadTime = decimal.NewNullDecimal(
				decimal.NewFromInt(g.leadSum).Div(decimal.NewFromInt(g.leadCount)))
		}
		s.OccupancyRate = OccupancyRate(s.TotalNights)
		results = append(results, s)
	}

	Sort(results)
	return results
}

// NightlyRate divides revenue by nights, invalid when nights is zero
func NightlyRate(revenue, nights decimal.Decimal) decimal.NullDecimal {
	if nights.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(revenue.Div(nights))
}

// OccupancyRate approximates occupancy as nights over a 30-day month, as a
// percentage rounded to one decimal. Values above 100 are kept.
func OccupancyRate(nights decimal.Decimal) decimal.Decimal {
	return nights.Mul(hundred).Div(daysPerMonth).Round(1)
}

// Sort orders summaries by month, then facility
func Sort(results []model.Summary) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Month != b.Month {
			return a.Month.Before(b.Month)
		}
		return a.Facility < b.Facility
	})
}

// Totals is the grand total across every summary row
type Totals struct {
	Rows           int
	Groups         int
	TotalRevenue   decimal.Decimal
	TotalNights    decimal.Decimal
	AvgNightlyRate decimal.NullDecimal
}

// CalculateTotal returns the grand total of the summaries
func CalculateTotal(results []model.Summary) Totals {
	total := Totals{
		Groups:       len(results),
		TotalRevenue: decimal.Zero,
		TotalNights:  decimal.Zero,
	}

	for _, r := range results {
		total.Rows += r.Rows
		total.TotalRevenue = total.TotalRevenue.Add(r.TotalRevenue)
		total.TotalNights = total.TotalNights.Add(r.TotalNights)
	}
	total.AvgNightlyRate = NightlyRate(total.TotalRevenue, total.TotalNights)

	return total
}
