package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

const sampleCSV = ` 物件名 ,チェックイン,予約日,販売,合計日数
Hotel A,2024-05-10,2024-04-30,10000,2
Hotel A,2024/05/20,not a date,"20,000",3
Hotel B,garbage,2024-04-01,5000,1
,2024-05-01,2024-04-01,abc,
`

func TestLoadCSV(t *testing.T) {
	bookings, stats, err := LoadCSV(strings.NewReader(sampleCSV), Options{})
	require.NoError(t, err)
	require.Len(t, bookings, 4)

	first := bookings[0]
	assert.Equal(t, "Hotel A", first.Facility)
	require.NotNil(t, first.CheckIn)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), *first.CheckIn)
	assert.Equal(t, "10000", first.Sale.Decimal.String())
	assert.Equal(t, "2", first.Nights.Decimal.String())

	second := bookings[1]
	assert.Nil(t, second.BookedOn)
	assert.True(t, second.Sale.Valid)
	assert.Equal(t, "20000", second.Sale.Decimal.String())

	assert.Nil(t, bookings[2].CheckIn)

	last := bookings[3]
	assert.Equal(t, "", last.Facility)
	assert.False(t, last.Sale.Valid)
	assert.False(t, last.Nights.Valid)

	assert.Equal(t, Stats{
		Rows:            4,
		MissingFacility: 1,
		MissingCheckIn:  1,
		MissingBookedOn: 1,
		MissingSale:     1,
		MissingNights:   1,
	}, stats)
	assert.False(t, stats.Clean())
}

func TestLoadCSVCustomColumns(t *testing.T) {
	in := "facility,check_in,booked,sale,nights\nInn,2024-01-02,2024-01-01,100,1\n"
	opts := Options{Columns: Columns{
		Facility: "facility",
		CheckIn:  "check_in",
		BookedOn: "booked",
		Sale:     "sale",
		Nights:   "nights",
	}}

	bookings, stats, err := LoadCSV(strings.NewReader(in), opts)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "Inn", bookings[0].Facility)
	assert.True(t, stats.Clean())
}

func TestLoadCSVMissingColumn(t *testing.T) {
	in := "物件名,チェックイン,予約日,販売\nHotel A,2024-05-10,2024-04-30,10000\n"
	_, _, err := LoadCSV(strings.NewReader(in), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), "合計日数")
}

func TestLoadCSVEmpty(t *testing.T) {
	for _, in := range []string{"", "   \n\n", "\xEF\xBB\xBF"} {
		_, _, err := LoadCSV(strings.NewReader(in), Options{})
		assert.ErrorIs(t, err, ErrEmptyInput, "input %q", in)
	}
}

func TestLoadCSVHeaderOnly(t *testing.T) {
	bookings, stats, err := LoadCSV(strings.NewReader("物件名,チェックイン,予約日,販売,合計日数\n"), Options{})
	require.NoError(t, err)
	assert.Empty(t, bookings)
	assert.Equal(t, 0, stats.Rows)
}

func TestLoadCSVShortRows(t *testing.T) {
	in := "物件名,チェックイン,予約日,販売,合計日数\n" +
		"Hotel A,2024-05-10\n" +
		"Hotel B,2024-05-11,2024-05-01,9000,1\n"
	bookings, stats, err := LoadCSV(strings.NewReader(in), Options{})
	require.NoError(t, err)
	require.Len(t, bookings, 2)

	assert.Equal(t, "Hotel A", bookings[0].Facility)
	require.NotNil(t, bookings[0].CheckIn)
	assert.Nil(t, bookings[0].BookedOn)
	assert.False(t, bookings[0].Sale.Valid)
	assert.False(t, bookings[0].Nights.Valid)
	assert.Equal(t, "9000", bookings[1].Sale.Decimal.String())

	assert.Equal(t, Stats{
		Rows:            2,
		MissingBookedOn: 1,
		MissingSale:     1,
		MissingNights:   1,
	}, stats)
}

func TestLoadCSVLongRow(t *testing.T) {
	in := "物件名,チェックイン,予約日,販売,合計日数\nHotel A,2024-05-10,2024-04-30,10000,2,extra\n"
	_, _, err := LoadCSV(strings.NewReader(in), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, csv.ErrFieldCount)
	assert.Contains(t, err.Error(), "row 2")
}

func TestLoadCSVBareQuotes(t *testing.T) {
	in := "物件名,チェックイン,予約日,販売,合計日数\nHotel \"A\",2024-05-10,2024-04-30,10000,2\n"
	bookings, stats, err := LoadCSV(strings.NewReader(in), Options{})
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, `Hotel "A"`, bookings[0].Facility)
	assert.True(t, stats.Clean())
}

func TestLoadCSVDuplicateHeader(t *testing.T) {
	in := "物件名,チェックイン,予約日,販売,合計日数,販売\nHotel A,2024-05-10,2024-04-30,10000,2,99\n"
	bookings, stats, err := LoadCSV(strings.NewReader(in), Options{})
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "10000", bookings[0].Sale.Decimal.String())
	assert.True(t, stats.Clean())
}

func TestUniqueHeader(t *testing.T) {
	assert.Equal(t,
		[]string{"a", "b", "a.2", "a.1", "a.3"},
		uniqueHeader([]string{"a", "b", "a", "a.1", "a"}))
	assert.Equal(t, []string{"x", "y"}, uniqueHeader([]string{"x", "y"}))
}

func TestLoadCSVByteOrderMark(t *testing.T) {
	in := "\xEF\xBB\xBF" + sampleCSV
	bookings, _, err := LoadCSV(strings.NewReader(in), Options{Encoding: EncodingUTF8})
	require.NoError(t, err)
	assert.Len(t, bookings, 4)
}

func TestLoadCSVShiftJIS(t *testing.T) {
	encoded, err := japanese.ShiftJIS.NewEncoder().String(
		"物件名,チェックイン,予約日,販売,合計日数\n湯の宿,2024-05-10,2024-05-01,12000,2\n")
	require.NoError(t, err)

	for _, enc := range []Encoding{EncodingAuto, EncodingShiftJIS} {
		bookings, _, err := LoadCSV(bytes.NewReader([]byte(encoded)), Options{Encoding: enc})
		require.NoError(t, err, "encoding %s", enc)
		require.Len(t, bookings, 1)
		assert.Equal(t, "湯の宿", bookings[0].Facility)
	}
}

func TestParseEncoding(t *testing.T) {
	cases := map[string]Encoding{
		"":          EncodingAuto,
		"auto":      EncodingAuto,
		"UTF-8":     EncodingUTF8,
		"utf8":      EncodingUTF8,
		"Shift_JIS": EncodingShiftJIS,
		"sjis":      EncodingShiftJIS,
	}
	for in, want := range cases {
		got, err := ParseEncoding(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseEncoding("latin1")
	assert.Error(t, err)
}
