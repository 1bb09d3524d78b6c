package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/zhaobenny/stayboard/internal/model"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrEmptyInput is returned when the upload has no header row
	ErrEmptyInput = errors.New("input is empty")
	// ErrMissingColumn is returned when a required header is absent
	ErrMissingColumn = errors.New("required column missing")
)

// Encoding selects how uploaded bytes are decoded
type Encoding string

const (
	EncodingAuto     Encoding = "auto"
	EncodingUTF8     Encoding = "utf-8"
	EncodingShiftJIS Encoding = "shift_jis"
)

// ParseEncoding validates an encoding name
func ParseEncoding(s string) (Encoding, error) {
	switch e := Encoding(strings.ToLower(strings.TrimSpace(s))); e {
	case "", EncodingAuto:
		return EncodingAuto, nil
	case EncodingUTF8, "utf8":
		return EncodingUTF8, nil
	case EncodingShiftJIS, "sjis", "shift-jis":
		return EncodingShiftJIS, nil
	}
	return "", fmt.Errorf("unsupported encoding %q", s)
}

// Columns maps each booking field to its CSV header
type Columns struct {
	Facility string `yaml:"facility"`
	CheckIn  string `yaml:"check_in"`
	BookedOn string `yaml:"booked_on"`
	Sale     string `yaml:"sale"`
	Nights   string `yaml:"nights"`
}

// DefaultColumns are the headers written by the booking system export
func DefaultColumns() Columns {
	return Columns{
		Facility: "物件名",
		CheckIn:  "チェックイン",
		BookedOn: "予約日",
		Sale:     "販売",
		Nights:   "合計日数",
	}
}

// Merge fills empty names in c from d
func (c Columns) Merge(d Columns) Columns {
	if c.Facility == "" {
		c.Facility = d.Facility
	}
	if c.CheckIn == "" {
		c.CheckIn = d.CheckIn
	}
	if c.BookedOn == "" {
		c.BookedOn = d.BookedOn
	}
	if c.Sale == "" {
		c.Sale = d.Sale
	}
	if c.Nights == "" {
		c.Nights = d.Nights
	}
	return c
}

func (c Columns) names() []string {
	return []string{c.Facility, c.CheckIn, c.BookedOn, c.Sale, c.Nights}
}

// Options controls how a CSV is loaded
type Options struct {
	Columns  Columns
	Encoding Encoding
}

// Stats counts what coercion could not recover
type Stats struct {
	Rows            int
	MissingFacility int
	MissingCheckIn  int
	MissingBookedOn int
	MissingSale     int
	MissingNights   int
}

// Clean reports whether every cell was coerced
func (s Stats) Clean() bool {
	return s.MissingFacility == 0 && s.MissingCheckIn == 0 && s.MissingBookedOn == 0 &&
		s.MissingSale == 0 && s.MissingNights == 0
}

// LoadCSV reads a bookings CSV. Cells that cannot be coerced become
// missing values; only structural problems are returned as errors.
func LoadCSV(r io.Reader, opts Options) ([]model.Booking, Stats, error) {
	var stats Stats

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, stats, fmt.Errorf("read input: %w", err)
	}

	text, _, err := transform.Bytes(decoder(opts.Encoding, raw), raw)
	if err != nil {
		return nil, stats, fmt.Errorf("decode input: %w", err)
	}
	if len(bytes.TrimSpace(text)) == 0 {
		return nil, stats, ErrEmptyInput
	}

	cr := csv.NewReader(bytes.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, stats, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, stats, ErrEmptyInput
	}

	header := records[0]
	present := make(map[string]bool, len(header))
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
		present[header[i]] = true
	}

	cols := opts.Columns.Merge(DefaultColumns())
	for _, name := range cols.names() {
		if !present[name] {
			return nil, stats, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	// Short rows read as trailing missing cells; only extra cells are fatal.
	for i, rec := range records[1:] {
		switch {
		case len(rec) > len(header):
			return nil, stats, fmt.Errorf("parse csv: row %d has %d fields, header has %d: %w",
				i+2, len(rec), len(header), csv.ErrFieldCount)
		case len(rec) < len(header):
			records[i+1] = append(rec, make([]string, len(header)-len(rec))...)
		}
	}
	records[0] = uniqueHeader(header)

	if len(records) == 1 {
		return nil, stats, nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, stats, fmt.Errorf("load csv: %w", df.Err)
	}

	column := func(name string) ([]string, error) {
		s := df.Col(name)
		if s.Err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		return s.Records(), nil
	}

	var cells [5][]string
	for i, name := range cols.names() {
		if cells[i], err = column(name); err != nil {
			return nil, stats, err
		}
	}
	facility, checkIn, bookedOn, sale, nights := cells[0], cells[1], cells[2], cells[3], cells[4]

	bookings := make([]model.Booking, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		b := model.Booking{
			Facility: strings.TrimSpace(facility[i]),
			CheckIn:  ParseDate(checkIn[i]),
			BookedOn: ParseDate(bookedOn[i]),
			Sale:     ParseNumber(sale[i]),
			Nights:   ParseNumber(nights[i]),
		}

		stats.Rows++
		if b.Facility == "" {
			stats.MissingFacility++
		}
		if b.CheckIn == nil {
			stats.MissingCheckIn++
		}
		if b.BookedOn == nil {
			stats.MissingBookedOn++
		}
		if !b.Sale.Valid {
			stats.MissingSale++
		}
		if !b.Nights.Valid {
			stats.MissingNights++
		}

		bookings = append(bookings, b)
	}

	return bookings, stats, nil
}

// uniqueHeader renames repeated names to name.1, name.2 and so on, so a
// lookup by name always finds the first column carrying it.
func uniqueHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		seen[name] = true
	}
	counts := make(map[string]int, len(header))
	for i, name := range header {
		if counts[name] == 0 {
			out[i] = name
			counts[name] = 1
			continue
		}
		for {
			candidate := fmt.Sprintf("%s.%d", name, counts[name])
			counts[name]++
			if !seen[candidate] {
				seen[candidate] = true
				out[i] = candidate
				break
			}
		}
	}
	return out
}

// decoder picks the transformer for raw upload bytes. A leading byte order
// mark always wins and is stripped.
func decoder(enc Encoding, raw []byte) transform.Transformer {
	switch enc {
	case EncodingShiftJIS:
		return unicode.BOMOverride(japanese.ShiftJIS.NewDecoder())
	case EncodingUTF8:
		return unicode.BOMOverride(unicode.UTF8.NewDecoder())
	}
	if hasBOM(raw) || utf8.Valid(raw) {
		return unicode.BOMOverride(unicode.UTF8.NewDecoder())
	}
	return unicode.BOMOverride(japanese.ShiftJIS.NewDecoder())
}

func hasBOM(b []byte) bool {
	return bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(b, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(b, []byte{0xFF, 0xFE})
}
