package chart

import (
	"math"
	"strconv"
	"strings"

	"github.com/zhaobenny/stayboard/internal/aggregator"
)

const (
	marginLeft   = 90
	marginRight  = 20
	marginTop    = 16
	marginBottom = 36
	gridLines    = 5
	maxXLabels   = 12
)

// Palette is cycled through for each facility series
var Palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// Point is a plotted value in SVG coordinates
type Point struct {
	X, Y  float64
	Label string
}

// Segment is an unbroken run of points
type Segment struct {
	Points string // SVG polyline points attribute
}

// Series is one facility line
type Series struct {
	Name     string
	Color    string
	Segments []Segment
	Dots     []Point
}

// Tick is a labelled position on an axis
type Tick struct {
	X, Y float64
	Text string
}

// Chart is a laid out multi-series line chart
type Chart struct {
	Width, Height int
	Left, Right   float64
	Top, Bottom   float64
	Series        []Series
	XTicks        []Tick
	YTicks        []Tick
}

// Empty reports whether there is nothing to draw
func (c Chart) Empty() bool {
	return len(c.Series) == 0
}

// Build lays out one line per facility column of the pivot. Missing cells
// break the line. format renders y-axis and point labels.
func Build(p aggregator.PivotTable, width, height int, format func(float64) string) Chart {
	c := Chart{
		Width:  width,
		Height: height,
		Left:   marginLeft,
		Right:  float64(width - marginRight),
		Top:    marginTop,
		Bottom: float64(height - marginBottom),
	}
	if len(p.Months) == 0 || len(p.Facilities) == 0 {
		return c
	}

	lo, hi := valueRange(p)
	x := func(i int) float64 {
		if len(p.Months) == 1 {
			return (c.Left + c.Right) / 2
		}
		return c.Left + float64(i)*(c.Right-c.Left)/float64(len(p.Months)-1)
	}
	y := func(v float64) float64 {
		return c.Bottom - (v-lo)/(hi-lo)*(c.Bottom-c.Top)
	}

	step := int(math.Ceil(float64(len(p.Months)) / maxXLabels))
	for i, m := range p.Months {
		if i%step == 0 {
			c.XTicks = append(c.XTicks, Tick{X: x(i), Y: c.Bottom, Text: m.String()})
		}
	}
	for i := 0; i <= gridLines; i++ {
		v := lo + float64(i)*(hi-lo)/gridLines
		c.YTicks = append(c.YTicks, Tick{X: c.Left, Y: y(v), Text: format(v)})
	}

	for j, name := range p.Facilities {
		s := Series{Name: name, Color: Palette[j%len(Palette)]}
		var run []string
		flush := func() {
			if len(run) > 1 {
				s.Segments = append(s.Segments, Segment{Points: strings.Join(run, " ")})
			}
			run = nil
		}
		for i, cell := range p.Column(j) {
			if !cell.OK || math.IsNaN(cell.Value) || math.IsInf(cell.Value, 0) {
				flush()
				continue
			}
			px, py := x(i), y(cell.Value)
			run = append(run, Coord(px)+","+Coord(py))
			s.Dots = append(s.Dots, Point{X: px, Y: py, Label: p.Months[i].String() + " " + name + ": " + format(cell.Value)})
		}
		flush()
		c.Series = append(c.Series, s)
	}

	return c
}

// valueRange returns the y-axis extent, always including zero
func valueRange(p aggregator.PivotTable) (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, row := range p.Cells {
		for _, cell := range row {
			if !cell.OK || math.IsNaN(cell.Value) || math.IsInf(cell.Value, 0) {
				continue
			}
			lo = math.Min(lo, cell.Value)
			hi = math.Max(hi, cell.Value)
		}
	}
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi
}

// Coord formats an SVG coordinate to one decimal
func Coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
