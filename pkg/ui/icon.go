package ui

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/fogleman/gg"

	"dataviewer/pkg/chart"
)

const iconSize = 512

// DrawIcon paints the application icon: a pair of axes with two series in
// the default palette.
func DrawIcon(size int) image.Image {
	s := float64(size)
	dc := gg.NewContext(size, size)

	dc.SetColor(color.RGBA{0xFB, 0xF7, 0xF0, 0xFF})
	dc.DrawRoundedRectangle(0, 0, s, s, s*0.18)
	dc.Fill()

	dc.SetColor(color.Black)
	dc.SetLineWidth(s * 0.02)
	dc.DrawLine(s*0.15, s*0.85, s*0.88, s*0.85)
	dc.DrawLine(s*0.15, s*0.12, s*0.15, s*0.85)
	dc.Stroke()

	series := [][]float64{
		{0.22, 0.70, 0.38, 0.52, 0.55, 0.60, 0.72, 0.32, 0.84, 0.24},
		{0.22, 0.78, 0.38, 0.74, 0.55, 0.66, 0.72, 0.62, 0.84, 0.48},
	}
	for i, pts := range series {
		dc.SetColor(chart.Palette1[i])
		dc.SetLineWidth(s * 0.025)
		dc.MoveTo(s*pts[0], s*pts[1])
		for j := 2; j < len(pts); j += 2 {
			dc.LineTo(s*pts[j], s*pts[j+1])
		}
		dc.Stroke()
		for j := 0; j < len(pts); j += 2 {
			dc.DrawCircle(s*pts[j], s*pts[j+1], s*0.025)
			dc.Fill()
		}
	}
	return dc.Image()
}

// GenerateIcon writes the application icon to filename as a PNG.
func GenerateIcon(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return gg.NewContextForImage(DrawIcon(iconSize)).EncodePNG(f)
}

var (
	iconOnce sync.Once
	iconRes  fyne.Resource
)

// Icon returns the application icon as a fyne resource.
func Icon() fyne.Resource {
	iconOnce.Do(func() {
		var buf bytes.Buffer
		if err := gg.NewContextForImage(DrawIcon(256)).EncodePNG(&buf); err == nil {
			iconRes = fyne.NewStaticResource("dataviewer.png", buf.Bytes())
		}
	})
	return iconRes
}
