package chart

import (
	"math"

	"dataviewer/pkg/dataview"
)

const (
	markerRadius  = 2.0
	tooltipRadius = 5.0
	tooltipOffset = 15.0
)

// XY draws every series as a polyline over a pair of crossing axes.
type XY struct{}

func (XY) Type() dataview.Type { return dataview.TypeXY }

func (XY) View(file *dataview.File, margin float64) ViewRect {
	return ComputeView(file, margin)
}

func (XY) Draw(tr Transform, file *dataview.File, pointer Point, opts DrawOptions) Frame {
	f := Frame{Width: tr.Width, Height: tr.Height}
	if !tr.View.Valid() || tr.Width <= 0 || tr.Height <= 0 {
		return f
	}
	if file == nil {
		file = dataview.NewFile()
	}
	threshold := opts.TooltipThreshold
	if threshold <= 0 {
		threshold = DefaultTooltipThreshold
	}

	drawAxes(&f, tr)
	drawTitles(&f, tr, file.DataView)

	palette := NewPalette(opts.Palette)
	best := math.Inf(1)
	for _, key := range file.Keys() {
		series := file.Data[key]
		if series.Len() < 2 {
			continue
		}
		c := palette.Next()
		line := Polyline{Points: make([]Point, 0, series.Len()), Color: c, Width: 1}
		for i := 0; i < series.Len(); i++ {
			x, y := series.At(i)
			p := tr.Pixel(x, y)
			line.Points = append(line.Points, p)

			d := sqDist(p, pointer)
			if d < threshold && d < best {
				best = d
				f.Tooltip = &Tooltip{Key: key, X: x, Y: y, PixelX: p.X, PixelY: p.Y}
			}
		}
		f.add(line)
		for _, p := range line.Points {
			f.add(Circle{Center: p, Radius: markerRadius, Color: c, Fill: true})
		}
	}

	if f.Tooltip != nil {
		drawTooltip(&f, file, f.Tooltip)
	}
	return f
}

func sqDist(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

func drawTitles(f *Frame, tr Transform, h dataview.Header) {
	if h.Title != "" {
		x := (tr.Width - textWidth(h.Title, titleSize)) / 2
		f.add(Text{At: Point{x, titleSize}, Body: h.Title, Size: titleSize, Color: black})
	}
	if text := axisTitle(h.XTitle, h.XUnit); text != "" {
		x := tr.Width - textWidth(text, labelSize)
		f.add(Text{At: Point{x, xAxisPos(tr) + 21}, Body: text, Size: labelSize, Color: black})
	}
	if text := axisTitle(h.YTitle, h.YUnit); text != "" {
		f.add(Text{At: Point{yAxisPos(tr) + 2, 45}, Body: text, Size: labelSize, Color: black})
	}
}

// TooltipLines returns the label shown next to a hovered point.
func TooltipLines(file *dataview.File, t *Tooltip) []string {
	var lines []string
	if meta, ok := file.Meta(t.Key); ok {
		if meta.Title != "" {
			lines = append(lines, "["+meta.Title+"]")
		}
		if meta.Description != "" {
			lines = append(lines, meta.Description)
		}
	}
	h := file.DataView
	lines = append(lines,
		labelLine(h.XTitle, "x", formatShortest(t.X), h.XUnit),
		labelLine(h.YTitle, "y", formatShortest(t.Y), h.YUnit),
	)
	return lines
}

func drawTooltip(f *Frame, file *dataview.File, t *Tooltip) {
	at := Point{t.PixelX, t.PixelY}
	f.add(Circle{Center: at, Radius: tooltipRadius, Color: black})
	y := at.Y + tooltipOffset
	for _, line := range TooltipLines(file, t) {
		f.add(Text{At: Point{at.X + tooltipOffset, y}, Body: line, Size: labelSize, Color: black})
		y += labelSize
	}
}
