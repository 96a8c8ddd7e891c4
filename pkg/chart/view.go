package chart

import (
	"math"

	"dataviewer/pkg/dataview"
)

const (
	// DefaultMargin is the fraction of each span added around autoscaled data.
	DefaultMargin = 0.07
	// ZoomStep is the fraction of each span removed (or added) per wheel step.
	ZoomStep = 0.10
)

// ViewRect is the rectangle of data space mapped onto the surface.
type ViewRect struct {
	XMin, XMax float64
	YMin, YMax float64
}

// FallbackView replaces views computed from degenerate data.
var FallbackView = ViewRect{XMin: -1, XMax: 1, YMin: -1, YMax: 1}

func (v ViewRect) SpanX() float64 { return v.XMax - v.XMin }
func (v ViewRect) SpanY() float64 { return v.YMax - v.YMin }

// Valid reports whether v can be used to build a Transform.
func (v ViewRect) Valid() bool {
	for _, f := range []float64{v.XMin, v.XMax, v.YMin, v.YMax} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return v.XMin < v.XMax && v.YMin < v.YMax
}

// Autoscale returns the bounding rectangle of every pair of every series.
// Pairs with a non-finite coordinate are skipped. With fewer than two usable
// points the result is FallbackView.
func Autoscale(file *dataview.File) ViewRect {
	v, ok := bounds(file)
	if !ok {
		return FallbackView
	}
	return v
}

// bounds is Autoscale without the fallback. ok is false when fewer than two
// usable points exist.
func bounds(file *dataview.File) (ViewRect, bool) {
	v := ViewRect{
		XMin: math.MaxFloat64, XMax: -math.MaxFloat64,
		YMin: math.MaxFloat64, YMax: -math.MaxFloat64,
	}
	points := 0
	if file != nil {
		for _, series := range file.Data {
			for i := 0; i < series.Len(); i++ {
				x, y := series.At(i)
				if !finite(x) || !finite(y) {
					continue
				}
				v.XMin = math.Min(v.XMin, x)
				v.XMax = math.Max(v.XMax, x)
				v.YMin = math.Min(v.YMin, y)
				v.YMax = math.Max(v.YMax, y)
				points++
			}
		}
	}
	return v, points >= 2
}

// IncludeOrigin extends v so that 0 lies within both axes.
func (v ViewRect) IncludeOrigin() ViewRect {
	v.XMin = math.Min(v.XMin, 0)
	v.XMax = math.Max(v.XMax, 0)
	v.YMin = math.Min(v.YMin, 0)
	v.YMax = math.Max(v.YMax, 0)
	return v
}

// WithMargin grows each axis by fraction of its span on both ends.
// An axis with zero span is left as is.
func (v ViewRect) WithMargin(fraction float64) ViewRect {
	if sx := v.SpanX(); sx > 0 {
		v.XMin -= fraction * sx
		v.XMax += fraction * sx
	}
	if sy := v.SpanY(); sy > 0 {
		v.YMin -= fraction * sy
		v.YMax += fraction * sy
	}
	return v
}

// ComputeView is the autoview composition: autoscale, include the origin,
// add the margin, then honor the bounds fixed by the document header.
// A document with fewer than two usable points starts from FallbackView
// as is, with only the header bounds applied.
func ComputeView(file *dataview.File, margin float64) ViewRect {
	v, ok := bounds(file)
	if ok {
		v = v.IncludeOrigin().WithMargin(margin)
	} else {
		v = FallbackView
	}
	if file != nil {
		v = v.withOverrides(file.DataView)
	}
	if !v.Valid() {
		return FallbackView
	}
	return v
}

// withOverrides applies the fixed bounds of h axis by axis, ignoring an
// axis whose overridden bounds would be inverted.
func (v ViewRect) withOverrides(h dataview.Header) ViewRect {
	xmin, xmax := override(v.XMin, h.XMin), override(v.XMax, h.XMax)
	if xmin < xmax {
		v.XMin, v.XMax = xmin, xmax
	}
	ymin, ymax := override(v.YMin, h.YMin), override(v.YMax, h.YMax)
	if ymin < ymax {
		v.YMin, v.YMax = ymin, ymax
	}
	return v
}

func override(current float64, fixed *float64) float64 {
	if fixed == nil || !finite(*fixed) {
		return current
	}
	return *fixed
}

// Pan shifts v by a pointer drag of (dxPix, dyPix) on a width x height
// surface. The content follows the pointer: x moves against the drag and
// y with it, since pixel y grows downwards.
func (v ViewRect) Pan(dxPix, dyPix, width, height float64) ViewRect {
	if width <= 0 || height <= 0 {
		return v
	}
	dx := dxPix * v.SpanX() / width
	dy := dyPix * v.SpanY() / height
	v.XMin -= dx
	v.XMax -= dx
	v.YMin += dy
	v.YMax += dy
	return v
}

// Zoom applies one wheel step. dy > 0 zooms in, anything else zooms out.
func (v ViewRect) Zoom(dy float64) ViewRect {
	zx := v.SpanX() * ZoomStep
	zy := v.SpanY() * ZoomStep
	if dy <= 0 {
		zx, zy = -zx, -zy
	}
	v.XMin += zx
	v.XMax -= zx
	v.YMin += zy
	v.YMax -= zy
	return v
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
