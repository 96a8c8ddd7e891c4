// Package render replays chart frames onto image and vector surfaces.
package render

import (
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"dataviewer/pkg/chart"
)

// Background is the color surfaces are cleared with before a frame is painted.
var Background = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}

var (
	fontOnce sync.Once
	regular  *opentype.Font

	facesMu sync.Mutex
	faces   = map[float64]font.Face{}
)

// faceFor returns a Go Regular face of the given size, falling back to the
// fixed 7x13 face when the embedded font cannot be parsed.
func faceFor(size float64) font.Face {
	fontOnce.Do(func() {
		regular, _ = opentype.Parse(goregular.TTF)
	})
	if regular == nil {
		return basicfont.Face7x13
	}

	facesMu.Lock()
	defer facesMu.Unlock()
	if f, ok := faces[size]; ok {
		return f
	}
	f, err := opentype.NewFace(regular, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	faces[size] = f
	return f
}

// raster paints frame onto a new image the size of the frame.
func raster(frame chart.Frame) image.Image {
	w, h := int(frame.Width), int(frame.Height)
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	dc := gg.NewContext(w, h)
	paint(dc, frame)
	return dc.Image()
}

// WritePNG encodes frame as a PNG image.
func WritePNG(w io.Writer, frame chart.Frame) error {
	if int(frame.Width) <= 0 || int(frame.Height) <= 0 {
		frame.Width, frame.Height = 1, 1
	}
	return gg.NewContextForImage(raster(frame)).EncodePNG(w)
}

func paint(dc *gg.Context, frame chart.Frame) {
	dc.SetColor(Background)
	dc.Clear()

	for _, cmd := range frame.Commands {
		switch c := cmd.(type) {
		case chart.Line:
			dc.SetColor(c.Color)
			dc.SetLineWidth(c.Width)
			dc.DrawLine(c.From.X, c.From.Y, c.To.X, c.To.Y)
			dc.Stroke()
		case chart.Polyline:
			if len(c.Points) == 0 {
				continue
			}
			dc.SetColor(c.Color)
			dc.SetLineWidth(c.Width)
			dc.MoveTo(c.Points[0].X, c.Points[0].Y)
			for _, p := range c.Points[1:] {
				dc.LineTo(p.X, p.Y)
			}
			dc.Stroke()
		case chart.Circle:
			dc.SetColor(c.Color)
			dc.SetLineWidth(1)
			dc.DrawCircle(c.Center.X, c.Center.Y, c.Radius)
			if c.Fill {
				dc.Fill()
			} else {
				dc.Stroke()
			}
		case chart.Text:
			dc.SetColor(c.Color)
			dc.SetFontFace(faceFor(c.Size))
			dc.DrawString(c.Body, c.At.X, c.At.Y)
		}
	}
}
