package model

import "fmt"

// Metric identifies one of the summary values that can be charted
type Metric string

const (
	MetricTotalRevenue   Metric = "total_revenue"
	MetricAvgNightlyRate Metric = "avg_nightly_rate"
	MetricAvgLeadTime    Metric = "avg_lead_time"
	MetricOccupancyRate  Metric = "occupancy_rate"
)

// DefaultMetric is shown when no metric has been selected
const DefaultMetric = MetricTotalRevenue

// Metrics lists every chartable metric in display order
var Metrics = []Metric{
	MetricTotalRevenue,
	MetricAvgNightlyRate,
	MetricAvgLeadTime,
	MetricOccupancyRate,
}

// ParseMetric resolves a metric key
func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Label returns the human readable name of the metric
func (m Metric) Label() string {
	switch m {
	case MetricTotalRevenue:
		return "Total revenue"
	case MetricAvgNightlyRate:
		return "Average nightly rate"
	case MetricAvgLeadTime:
		return "Average lead time"
	case MetricOccupancyRate:
		return "Occupancy rate (30-day month)"
	}
	return string(m)
}

// Value extracts the metric from a summary. The second result is false
// when the value is undefined for that group.
func (m Metric) Value(s Summary) (float64, bool) {
	switch m {
	case MetricTotalRevenue:
		return s.TotalRevenue.InexactFloat64(), true
	case MetricAvgNightlyRate:
		if !s.AvgNightlyRate.Valid {
			return 0, false
		}
		return s.AvgNightlyRate.Decimal.InexactFloat64(), true
	case MetricAvgLeadTime:
		if !s.AvgLeadTime.Valid {
			return 0, false
		}
		return s.AvgLeadTime.Decimal.InexactFloat64(), true
	case MetricOccupancyRate:
		return s.OccupancyRate.InexactFloat64(), true
	}
	return 0, false
}
