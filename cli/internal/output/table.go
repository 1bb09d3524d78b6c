package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zhaobenny/stayboard/internal/aggregator"
	"github.com/zhaobenny/stayboard/internal/model"
	"github.com/zhaobenny/stayboard/internal/parser"
	"github.com/zhaobenny/stayboard/internal/report"
	"golang.org/x/text/width"
)

const (
	compactThreshold = 100 // Terminal width below which compact mode kicks in
	defaultWidth     = 120
	compactFacility  = 16
)

// TableOptions controls table display behavior
type TableOptions struct {
	ForceCompact bool
}

// columnsEnv reads the COLUMNS override
func columnsEnv() (int, bool) {
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if w, err := strconv.Atoi(cols); err == nil && w > 0 {
			return w, true
		}
	}
	return 0, false
}

// shouldUseCompact determines if compact mode should be used
func shouldUseCompact(opts TableOptions) bool {
	if opts.ForceCompact {
		return true
	}
	return getTerminalWidth() < compactThreshold
}

// displayWidth counts terminal cells, two for wide East Asian runes
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// truncate cuts s to at most limit cells, marking the cut with "…"
func truncate(s string, limit int) string {
	if displayWidth(s) <= limit {
		return s
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		w := displayWidth(string(r))
		if n+w > limit-1 {
			break
		}
		b.WriteRune(r)
		n += w
	}
	return b.String() + "…"
}

func padRight(s string, w int) string {
	if d := w - displayWidth(s); d > 0 {
		return s + strings.Repeat(" ", d)
	}
	return s
}

func padLeft(s string, w int) string {
	if d := w - displayWidth(s); d > 0 {
		return strings.Repeat(" ", d) + s
	}
	return s
}

type column struct {
	title string
	right bool
	cell  func(r report.Row) string
	total string
}

// PrintTable writes the summaries as a formatted table with a totals row
func PrintTable(w io.Writer, results []model.Summary, f report.Formatter, opts TableOptions) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No bookings could be grouped by month and facility.")
		return
	}

	compact := shouldUseCompact(opts)
	rows := f.Rows(results)
	totals := aggregator.CalculateTotal(results)

	facility := func(r report.Row) string {
		if compact {
			return truncate(r.Facility, compactFacility)
		}
		return r.Facility
	}

	var cols []column
	if compact {
		cols = []column{
			{title: "Month", cell: func(r report.Row) string { return r.Month }, total: "Total"},
			{title: "Facility", cell: facility},
			{title: "Revenue", right: true, cell: func(r report.Row) string { return r.TotalRevenue }, total: f.Revenue(totals.TotalRevenue)},
			{title: "Rate", right: true, cell: func(r report.Row) string { return r.AvgNightlyRate }, total: f.Rate(totals.AvgNightlyRate)},
			{title: "Occupancy", right: true, cell: func(r report.Row) string { return r.OccupancyRate }},
		}
	} else {
		cols = []column{
			{title: "Month", cell: func(r report.Row) string { return r.Month }, total: "Total"},
			{title: "Facility", cell: facility},
			{title: "Bookings", right: true, cell: func(r report.Row) string { return strconv.Itoa(r.Rows) }, total: strconv.Itoa(totals.Rows)},
			{title: "Revenue", right: true, cell: func(r report.Row) string { return r.TotalRevenue }, total: f.Revenue(totals.TotalRevenue)},
			{title: "Nights", right: true, cell: func(r report.Row) string { return r.TotalNights }, total: f.Nights(totals.TotalNights)},
			{title: "Avg Rate", right: true, cell: func(r report.Row) string { return r.AvgNightlyRate }, total: f.Rate(totals.AvgNightlyRate)},
			{title: "Lead Time", right: true, cell: func(r report.Row) string { return r.AvgLeadTime }},
			{title: "Occupancy", right: true, cell: func(r report.Row) string { return r.OccupancyRate }},
		}
	}

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = max(displayWidth(c.title), displayWidth(c.total))
		for _, r := range rows {
			widths[i] = max(widths[i], displayWidth(c.cell(r)))
		}
	}

	line := func(cells []string) {
		parts := make([]string, len(cells))
		for i, s := range cells {
			if cols[i].right {
				parts[i] = padLeft(s, widths[i])
			} else {
				parts[i] = padRight(s, widths[i])
			}
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	ruleWidth := 2 * (len(cols) - 1)
	for _, cw := range widths {
		ruleWidth += cw
	}
	rule := strings.Repeat("─", ruleWidth)

	fmt.Fprintln(w)
	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.title
	}
	line(titles)
	fmt.Fprintln(w, rule)

	for _, r := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = c.cell(r)
		}
		line(cells)
	}

	if len(rows) > 1 {
		fmt.Fprintln(w, rule)
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = c.total
		}
		line(cells)
	}

	fmt.Fprintln(w)
	if compact {
		fmt.Fprintln(w, "(Compact mode - expand terminal for full view)")
	}
}

// PrintStats writes a one-line note about values that could not be read
func PrintStats(w io.Writer, s parser.Stats) {
	if s.Clean() {
		return
	}
	fmt.Fprintf(w, "Rows read: %d; missing check-in %d, facility %d, booking date %d, sale %d, nights %d\n",
		s.Rows, s.MissingCheckIn, s.MissingFacility, s.MissingBookedOn, s.MissingSale, s.MissingNights)
}

// JSONOutput represents the JSON output structure
type JSONOutput struct {
	Results []JSONResult `json:"results"`
	Total   JSONTotal    `json:"total"`
	Stats   JSONStats    `json:"stats"`
}

// JSONResult represents a single group in JSON format. Decimals are
// encoded as strings; undefined values are null.
type JSONResult struct {
	YearMonth      string              `json:"year_month"`
	Facility       string              `json:"facility"`
	Rows           int                 `json:"rows"`
	TotalRevenue   decimal.Decimal     `json:"total_revenue"`
	TotalNights    decimal.Decimal     `json:"total_nights"`
	AvgNightlyRate decimal.NullDecimal `json:"avg_nightly_rate"`
	AvgLeadTime    decimal.NullDecimal `json:"avg_lead_time"`
	OccupancyRate  decimal.Decimal     `json:"occupancy_rate"`
}

// JSONTotal is the grand total across groups
type JSONTotal struct {
	Rows           int                 `json:"rows"`
	Groups         int                 `json:"groups"`
	TotalRevenue   decimal.Decimal     `json:"total_revenue"`
	TotalNights    decimal.Decimal     `json:"total_nights"`
	AvgNightlyRate decimal.NullDecimal `json:"avg_nightly_rate"`
}

// JSONStats mirrors parser.Stats
type JSONStats struct {
	Rows            int `json:"rows"`
	MissingFacility int `json:"missing_facility"`
	MissingCheckIn  int `json:"missing_check_in"`
	MissingBookedOn int `json:"missing_booked_on"`
	MissingSale     int `json:"missing_sale"`
	MissingNights   int `json:"missing_nights"`
}

// PrintJSON outputs results as JSON
func PrintJSON(w io.Writer, results []model.Summary, stats parser.Stats) error {
	output := JSONOutput{
		Results: make([]JSONResult, len(results)),
		Stats:   JSONStats(stats),
	}

	for i, r := range results {
		output.Results[i] = JSONResult{
			YearMonth:      r.Month.String(),
			Facility:       r.Facility,
			Rows:           r.Rows,
			TotalRevenue:   r.TotalRevenue,
			TotalNights:    r.TotalNights,
			AvgNightlyRate: r.AvgNightlyRate,
			AvgLeadTime:    r.AvgLeadTime,
			OccupancyRate:  r.OccupancyRate,
		}
	}

	totals := aggregator.CalculateTotal(results)
	output.Total = JSONTotal{
		Rows:           totals.Rows,
		Groups:         totals.Groups,
		TotalRevenue:   totals.TotalRevenue,
		TotalNights:    totals.TotalNights,
		AvgNightlyRate: totals.AvgNightlyRate,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
