package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhaobenny/stayboard/internal/model"
)

func TestPivot(t *testing.T) {
	results := Summarize([]model.Booking{
		booking("Hotel B", day(2024, 5, 1), nil, "3000", "1"),
		booking("Hotel A", day(2024, 5, 1), nil, "1000", "1"),
		booking("Hotel A", day(2024, 6, 1), nil, "2000", "0"),
	})

	p := Pivot(results, model.MetricTotalRevenue)
	assert.Equal(t, model.MetricTotalRevenue, p.Metric)
	assert.Equal(t, []model.YearMonth{
		{Year: 2024, Month: time.May},
		{Year: 2024, Month: time.June},
	}, p.Months)
	assert.Equal(t, []string{"Hotel A", "Hotel B"}, p.Facilities)

	require.Len(t, p.Cells, 2)
	assert.Equal(t, Cell{Value: 1000, OK: true}, p.Cells[0][0])
	assert.Equal(t, Cell{Value: 3000, OK: true}, p.Cells[0][1])
	assert.Equal(t, Cell{Value: 2000, OK: true}, p.Cells[1][0])
	assert.False(t, p.Cells[1][1].OK, "Hotel B has no June group")

	rate := Pivot(results, model.MetricAvgNightlyRate)
	assert.False(t, rate.Cells[1][0].OK, "zero nights leaves the rate undefined")

	assert.Equal(t, []Cell{{Value: 3000, OK: true}, {}}, p.Column(1))
}

func TestPivotEmpty(t *testing.T) {
	p := Pivot(nil, model.MetricOccupancyRate)
	assert.Empty(t, p.Months)
	assert.Empty(t, p.Facilities)
	assert.Empty(t, p.Cells)
}
