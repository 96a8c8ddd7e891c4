package render

import (
	"image/color"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"dataviewer/pkg/chart"
)

// WriteSVG encodes frame as an SVG document through the go-chart vector renderer.
func WriteSVG(w io.Writer, frame chart.Frame) error {
	width, height := int(frame.Width), int(frame.Height)
	if width <= 0 || height <= 0 {
		width, height = 1, 1
	}
	r, err := gochart.SVG(width, height)
	if err != nil {
		return err
	}
	if f, err := gochart.GetDefaultFont(); err == nil {
		r.SetFont(f)
	}

	r.SetFillColor(toDrawing(Background))
	r.SetStrokeColor(drawing.ColorTransparent)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.Fill()

	for _, cmd := range frame.Commands {
		switch c := cmd.(type) {
		case chart.Line:
			r.SetStrokeColor(toDrawing(c.Color))
			r.SetStrokeWidth(c.Width)
			r.MoveTo(px(c.From.X), px(c.From.Y))
			r.LineTo(px(c.To.X), px(c.To.Y))
			r.Stroke()
		case chart.Polyline:
			if len(c.Points) == 0 {
				continue
			}
			r.SetStrokeColor(toDrawing(c.Color))
			r.SetStrokeWidth(c.Width)
			r.MoveTo(px(c.Points[0].X), px(c.Points[0].Y))
			for _, p := range c.Points[1:] {
				r.LineTo(px(p.X), px(p.Y))
			}
			r.Stroke()
		case chart.Circle:
			r.SetStrokeColor(toDrawing(c.Color))
			r.SetStrokeWidth(1)
			if c.Fill {
				r.SetFillColor(toDrawing(c.Color))
			} else {
				r.SetFillColor(drawing.ColorTransparent)
			}
			r.Circle(c.Radius, px(c.Center.X), px(c.Center.Y))
		case chart.Text:
			r.SetFontColor(toDrawing(c.Color))
			r.SetFontSize(c.Size)
			r.Text(c.Body, px(c.At.X), px(c.At.Y))
		}
	}
	return r.Save(w)
}

func toDrawing(c color.RGBA) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func px(v float64) int {
	return int(math.Round(v))
}
