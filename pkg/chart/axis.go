package chart

import (
	"image/color"
	"math"
)

const (
	axisMargin      = 30.0
	yAxisLeftMargin = 50.0
	tickLength      = 5.0
	labelSize       = 12.0
	titleSize       = 24.0
	// glyphAdvance approximates the width of one glyph as a fraction of
	// the font size.
	glyphAdvance = 0.6
)

var black = color.RGBA{A: 0xFF}

// xAxisPos is the pixel row of the horizontal axis.
func xAxisPos(tr Transform) float64 {
	return clamp(tr.PixelY(0), axisMargin, tr.Height-axisMargin)
}

// yAxisPos is the pixel column of the vertical axis.
func yAxisPos(tr Transform) float64 {
	return clamp(tr.PixelX(0), yAxisLeftMargin, tr.Width-axisMargin)
}

// clamp prefers hi when the surface is too small for lo <= hi.
func clamp(v, lo, hi float64) float64 {
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}

// Ticks returns n tick values of an axis covering [min, min+span], aligned
// on multiples of span/10.
func Ticks(min, span float64, n int) []float64 {
	step := span / 10
	start := math.Floor(min/step) * step
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func drawAxes(f *Frame, tr Transform) {
	x0, y0 := yAxisPos(tr), xAxisPos(tr)
	v := tr.View

	f.add(Line{From: Point{0, y0}, To: Point{tr.Width, y0}, Color: black, Width: 1})
	for _, x := range Ticks(v.XMin, v.SpanX(), 11) {
		px := tr.PixelX(x)
		f.add(Line{From: Point{px, y0}, To: Point{px, y0 + tickLength}, Color: black, Width: 1})
		f.add(Text{At: Point{px, y0 + 10}, Body: FormatValue(x, v.SpanX()), Size: labelSize, Color: black})
	}

	f.add(Line{From: Point{x0, 0}, To: Point{x0, tr.Height}, Color: black, Width: 1})
	for _, y := range Ticks(v.YMin, v.SpanY(), 10) {
		py := tr.PixelY(y)
		f.add(Line{From: Point{x0 - tickLength, py}, To: Point{x0, py}, Color: black, Width: 1})
		f.add(Text{At: Point{x0 - 40, py}, Body: FormatValue(y, v.SpanY()), Size: labelSize, Color: black})
	}
}

func textWidth(s string, size float64) float64 {
	return float64(len([]rune(s))) * size * glyphAdvance
}

func axisTitle(title, unit string) string {
	text := title
	if unit != "" {
		text += " (" + unit + ")"
	}
	return text
}
