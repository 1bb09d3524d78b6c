package aggregator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhaobenny/stayboard/internal/model"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func num(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func booking(facility string, checkIn, bookedOn *time.Time, sale, nights string) model.Booking {
	b := model.Booking{Facility: facility, CheckIn: checkIn, BookedOn: bookedOn}
	if sale != "" {
		b.Sale = num(sale)
	}
	if nights != "" {
		b.Nights = num(nights)
	}
	return b
}

func TestSummarizeTwoRowsSameGroup(t *testing.T) {
	results := Summarize([]model.Booking{
		booking("Hotel A", day(2024, 5, 10), day(2024, 5, 1), "10000", "2"),
		booking("Hotel A", day(2024, 5, 20), day(2024, 5, 1), "20000", "3"),
	})
	require.Len(t, results, 1)

	s := results[0]
	assert.Equal(t, model.YearMonth{Year: 2024, Month: time.May}, s.Month)
	assert.Equal(t, "Hotel A", s.Facility)
	assert.Equal(t, 2, s.Rows)
	assert.Equal(t, "30000", s.TotalRevenue.String())
	assert.Equal(t, "5", s.TotalNights.String())
	require.True(t, s.AvgNightlyRate.Valid)
	assert.Equal(t, "6000", s.AvgNightlyRate.Decimal.String())
	assert.Equal(t, "16.7", s.OccupancyRate.String())
	require.True(t, s.AvgLeadTime.Valid)
	assert.Equal(t, "14", s.AvgLeadTime.Decimal.String())
}

func TestSummarizeRateIsRatioOfSums(t *testing.T) {
	// per-row rates are 1000 and 100; their mean would be 550
	results := Summarize([]model.Booking{
		booking("Inn", day(2024, 1, 3), nil, "1000", "1"),
		booking("Inn", day(2024, 1, 4), nil, "900", "9"),
	})
	require.Len(t, results, 1)
	assert.Equal(t, "190", results[0].AvgNightlyRate.Decimal.String())
	assert.False(t, results[0].AvgLeadTime.Valid)
}

func TestSummarizeUnparseableBookingDate(t *testing.T) {
	results := Summarize([]model.Booking{
		booking("Hotel A", day(2024, 5, 10), day(2024, 5, 1), "10000", "2"),
		booking("Hotel A", day(2024, 5, 20), nil, "20000", "3"),
	})
	require.Len(t, results, 1)

	s := results[0]
	assert.Equal(t, "30000", s.TotalRevenue.String())
	assert.Equal(t, "5", s.TotalNights.String())
	require.True(t, s.AvgLeadTime.Valid)
	assert.Equal(t, "9", s.AvgLeadTime.Decimal.String())
}

func TestSummarizeZeroNights(t *testing.T) {
	results := Summarize([]model.Booking{
		booking("Cabin", day(2024, 2, 1), day(2024, 1, 1), "5000", "0"),
		booking("Cabin", day(2024, 2, 1), day(2024, 1, 1), "", ""),
	})
	require.Len(t, results, 1)

	s := results[0]
	assert.Equal(t, 2, s.Rows)
	assert.False(t, s.AvgNightlyRate.Valid)
	assert.True(t, s.OccupancyRate.IsZero())
	assert.Equal(t, "5000", s.TotalRevenue.String())
}

func TestSummarizeMissingValuesExcludedFromSums(t *testing.T) {
	results := Summarize([]model.Booking{
		booking("Hotel A", day(2024, 5, 10), nil, "10000", ""),
		booking("Hotel A", day(2024, 5, 11), nil, "", "4"),
	})
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Rows)
	assert.Equal(t, "10000", results[0].TotalRevenue.String())
	assert.Equal(t, "4", results[0].TotalNights.String())
	assert.Equal(t, "2500", results[0].AvgNightlyRate.Decimal.String())
}

func TestSummarizeDropsUngroupableRows(t *testing.T) {
	results := Summarize([]model.Booking{
		booking("Hotel A", nil, day(2024, 5, 1), "10000", "2"),
		booking("", day(2024, 5, 10), day(2024, 5, 1), "10000", "2"),
	})
	assert.Empty(t, results)
}

func TestSummarizeOccupancyAboveHundred(t *testing.T) {
	results := Summarize([]model.Booking{
		booking("Resort", day(2024, 8, 1), nil, "1", "40"),
		booking("Resort", day(2024, 8, 2), nil, "1", "5"),
	})
	require.Len(t, results, 1)
	assert.Equal(t, "150", results[0].OccupancyRate.String())
}

func TestSummarizeGroupsAndOrder(t *testing.T) {
	bookings := []model.Booking{
		booking("B", day(2024, 6, 1), nil, "1", "1"),
		booking("A", day(2024, 6, 2), nil, "1", "1"),
		booking("A", day(2024, 5, 3), nil, "1", "1"),
		booking("A", day(2023, 12, 31), nil, "1", "1"),
		booking("B", day(2024, 6, 30), nil, "1", "1"),
	}
	results := Summarize(bookings)
	require.Len(t, results, 4)

	var got []string
	for _, r := range results {
		got = append(got, r.Month.String()+"/"+r.Facility)
	}
	assert.Equal(t, []string{"2023-12/A", "2024-05/A", "2024-06/A", "2024-06/B"}, got)

	// every raw row is accounted for by exactly one group
	rows := 0
	for _, r := range results {
		rows += r.Rows
	}
	assert.Equal(t, len(bookings), rows)
	assert.Equal(t, 2, results[3].Rows)
}

func TestOccupancyRateRounding(t *testing.T) {
	cases := map[string]string{
		"0":  "0",
		"1":  "3.3",
		"2":  "6.7",
		"15": "50",
		"30": "100",
		"31": "103.3",
	}
	for nights, want := range cases {
		assert.Equal(t, want, OccupancyRate(decimal.RequireFromString(nights)).String(), nights)
	}
}

func TestCalculateTotal(t *testing.T) {
	results := Summarize([]model.Booking{
		booking("A", day(2024, 1, 1), nil, "100", "1"),
		booking("B", day(2024, 1, 1), nil, "300", "3"),
		booking("B", day(2024, 2, 1), nil, "", ""),
	})

	total := CalculateTotal(results)
	assert.Equal(t, 3, total.Rows)
	assert.Equal(t, 3, total.Groups)
	assert.Equal(t, "400", total.TotalRevenue.String())
	assert.Equal(t, "4", total.TotalNights.String())
	assert.Equal(t, "100", total.AvgNightlyRate.Decimal.String())

	empty := CalculateTotal(nil)
	assert.False(t, empty.AvgNightlyRate.Valid)
}
