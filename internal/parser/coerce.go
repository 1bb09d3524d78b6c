package parser

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order; the first that parses wins
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"2006-1-2 15:04",
	"2006/1/2 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"20060102",
	"2006年1月2日",
	"01/02/2006",
}

// ParseDate coerces a cell to a date, returning nil when no layout matches
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

var numberReplacer = strings.NewReplacer(",", "", "¥", "", "￥", "", "円", "")

// ParseNumber coerces a cell to a decimal. Currency marks and digit
// grouping commas are ignored; anything else that does not parse is invalid.
func ParseNumber(s string) decimal.NullDecimal {
	s = strings.TrimSpace(numberReplacer.Replace(strings.TrimSpace(s)))
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
