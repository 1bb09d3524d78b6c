package aggregator

import (
	"sort"

	"github.com/samber/lo"
	"github.com/zhaobenny/stayboard/internal/model"
)

// Cell is one value of a pivot table. OK is false when the facility had no
// group that month or the metric is undefined for the group.
type Cell struct {
	Value float64
	OK    bool
}

// PivotTable is a metric laid out with months as rows and facilities as columns
type PivotTable struct {
	Metric     model.Metric
	Months     []model.YearMonth
	Facilities []string
	Cells      [][]Cell // [month][facility]
}

// Pivot reshapes summaries into a month x facility matrix for one metric
func Pivot(results []model.Summary, metric model.Metric) PivotTable {
	months := lo.Uniq(lo.Map(results, func(s model.Summary, _ int) model.YearMonth {
		return s.Month
	}))
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	facilities := lo.Uniq(lo.Map(results, func(s model.Summary, _ int) string {
		return s.Facility
	}))
	sort.Strings(facilities)

	row := make(map[model.YearMonth]int, len(months))
	for i, m := range months {
		row[m] = i
	}
	col := make(map[string]int, len(facilities))
	for i, f := range facilities {
		col[f] = i
	}

	cells := make([][]Cell, len(months))
	for i := range cells {
		cells[i] = make([]Cell, len(facilities))
	}
	for _, s := range results {
		v, ok := metric.Value(s)
		cells[row[s.Month]][col[s.Facility]] = Cell{Value: v, OK: ok}
	}

	return PivotTable{
		Metric:     metric,
		Months:     months,
		Facilities: facilities,
		Cells:      cells,
	}
}

// Column returns the cells of one facility in month order
func (p PivotTable) Column(j int) []Cell {
	out := make([]Cell, len(p.Months))
	for i := range p.Months {
		out[i] = p.Cells[i][j]
	}
	return out
}
