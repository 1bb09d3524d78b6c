package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhaobenny/stayboard/internal/aggregator"
	"github.com/zhaobenny/stayboard/internal/model"
	"github.com/zhaobenny/stayboard/internal/parser"
	"github.com/zhaobenny/stayboard/internal/report"
)

const sample = "物件名,チェックイン,予約日,販売,合計日数\n" +
	"Hotel A,2024-01-10,2023-12-27,10000,2\n" +
	"Hotel A,2024-01-20,2024-01-06,20000,3\n" +
	"海辺の宿 とても長い名前の施設,2024-01-05,,8000,0\n"

func loadSample(t *testing.T) ([]model.Summary, parser.Stats) {
	t.Helper()
	bookings, stats, err := parser.LoadCSV(strings.NewReader(sample), parser.Options{})
	require.NoError(t, err)
	return aggregator.Summarize(bookings), stats
}

func TestDisplayWidth(t *testing.T) {
	assert.Equal(t, 7, displayWidth("Hotel A"))
	assert.Equal(t, 4, displayWidth("海辺"))
	assert.Equal(t, 9, displayWidth("30,000 円"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 16))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "海辺…", truncate("海辺の宿", 6))
}

func TestPrintTableFull(t *testing.T) {
	t.Setenv("COLUMNS", "160")
	results, _ := loadSample(t)

	var buf bytes.Buffer
	PrintTable(&buf, results, report.NewFormatter(report.DefaultCurrencyUnit, report.DefaultDayUnit), TableOptions{})
	out := buf.String()

	assert.Contains(t, out, "Bookings")
	assert.Contains(t, out, "Lead Time")
	assert.Contains(t, out, "海辺の宿 とても長い名前の施設")
	assert.Contains(t, out, "30,000 円")
	assert.Contains(t, out, "6,000 円")
	assert.Contains(t, out, "16.7 %")
	assert.Contains(t, out, "14.0 日")
	assert.NotContains(t, out, "Compact mode")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := lines[len(lines)-1]
	assert.True(t, strings.HasPrefix(last, "Total"), last)
	assert.Contains(t, last, "38,000 円")
	assert.Contains(t, last, "7,600 円")
}

func TestPrintTableCompact(t *testing.T) {
	results, _ := loadSample(t)

	var buf bytes.Buffer
	PrintTable(&buf, results, report.NewFormatter("JPY", "days"), TableOptions{ForceCompact: true})
	out := buf.String()

	assert.NotContains(t, out, "Lead Time")
	assert.Contains(t, out, "30,000 JPY")
	assert.Contains(t, out, "…")
	assert.Contains(t, out, "(Compact mode - expand terminal for full view)")
}

func TestPrintTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, nil, report.NewFormatter("", ""), TableOptions{})
	assert.Contains(t, buf.String(), "No bookings")
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	PrintStats(&buf, parser.Stats{Rows: 3})
	assert.Empty(t, buf.String())

	PrintStats(&buf, parser.Stats{Rows: 3, MissingBookedOn: 1})
	assert.Contains(t, buf.String(), "booking date 1")
}

func TestPrintJSON(t *testing.T) {
	results, stats := loadSample(t)

	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, results, stats))

	var out struct {
		Results []map[string]any `json:"results"`
		Total   map[string]any   `json:"total"`
		Stats   map[string]int   `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	require.Len(t, out.Results, 2)
	assert.Equal(t, "2024-01", out.Results[0]["year_month"])
	assert.Equal(t, "Hotel A", out.Results[0]["facility"])
	assert.Equal(t, "30000", out.Results[0]["total_revenue"])
	assert.Equal(t, "6000", out.Results[0]["avg_nightly_rate"])
	assert.Nil(t, out.Results[1]["avg_nightly_rate"], "zero nights has no rate")
	assert.Nil(t, out.Results[1]["avg_lead_time"])

	assert.Equal(t, float64(3), out.Total["rows"])
	assert.Equal(t, "38000", out.Total["total_revenue"])
	assert.Equal(t, 1, out.Stats["missing_booked_on"])
}
