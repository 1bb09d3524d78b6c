package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/zhaobenny/stayboard/internal/model"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultFilename is the suggested name for a downloaded export
const DefaultFilename = "monthly-summary-by-facility.csv"

// Header is the first row of an export
var Header = []string{
	"year_month",
	"facility",
	"rows",
	"total_revenue",
	"total_nights",
	"avg_nightly_rate",
	"avg_lead_time",
	"occupancy_rate",
}

// WriteCSV writes the unformatted summaries as UTF-8 with a byte order
// mark. Undefined values are written as empty cells.
func WriteCSV(w io.Writer, results []model.Summary) error {
	tw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(tw)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range results {
		row := []string{
			s.Month.String(),
			s.Facility,
			strconv.Itoa(s.Rows),
			s.TotalRevenue.String(),
			s.TotalNights.String(),
			nullString(s.AvgNightlyRate),
			nullString(s.AvgLeadTime),
			s.OccupancyRate.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s/%s: %w", s.Month, s.Facility, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return tw.Close()
}

// ReadCSV parses an export written by WriteCSV
func ReadCSV(r io.Reader) ([]model.Summary, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = len(Header)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse export: missing header")
	}
	for i, name := range Header {
		if records[0][i] != name {
			return nil, fmt.Errorf("parse export: unexpected column %q, want %q", records[0][i], name)
		}
	}

	results := make([]model.Summary, 0, len(records)-1)
	for n, rec := range records[1:] {
		s, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("parse export line %d: %w", n+2, err)
		}
		results = append(results, s)
	}
	return results, nil
}

func parseRow(rec []string) (model.Summary, error) {
	var (
		s   model.Summary
		err error
	)
	if s.Month, err = model.ParseYearMonth(rec[0]); err != nil {
		return s, err
	}
	s.Facility = rec[1]
	if s.Rows, err = strconv.Atoi(rec[2]); err != nil {
		return s, fmt.Errorf("rows: %w", err)
	}
	if s.TotalRevenue, err = decimal.NewFromString(rec[3]); err != nil {
		return s, fmt.Errorf("total_revenue: %w", err)
	}
	if s.TotalNights, err = decimal.NewFromString(rec[4]); err != nil {
		return s, fmt.Errorf("total_nights: %w", err)
	}
	if s.AvgNightlyRate, err = parseNull(rec[5]); err != nil {
		return s, fmt.Errorf("avg_nightly_rate: %w", err)
	}
	if s.AvgLeadTime, err = parseNull(rec[6]); err != nil {
		return s, fmt.Errorf("avg_lead_time: %w", err)
	}
	if s.OccupancyRate, err = decimal.NewFromString(rec[7]); err != nil {
		return s, fmt.Errorf("occupancy_rate: %w", err)
	}
	return s, nil
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func parseNull(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
