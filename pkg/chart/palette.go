package chart

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Palette1 is the default series palette.
var Palette1 = []color.RGBA{
	{0x7D, 0x09, 0x2F, 0xFF},
	{0xFB, 0x8B, 0x24, 0xFF},
	{0x5F, 0x0F, 0x40, 0xFF},
	{0x79, 0x58, 0x38, 0xFF},
	{0xCB, 0x47, 0x21, 0xFF},
	{0xAE, 0x5E, 0x26, 0xFF},
	{0xE3, 0x64, 0x14, 0xFF},
	{0x9A, 0x03, 0x1E, 0xFF},
	{0xEF, 0x78, 0x1C, 0xFF},
}

// Palette hands out colors in order, wrapping around at the end.
type Palette struct {
	colors []color.RGBA
	next   int
}

// NewPalette returns a cursor over colors, or over Palette1 when colors is empty.
func NewPalette(colors []color.RGBA) *Palette {
	if len(colors) == 0 {
		colors = Palette1
	}
	return &Palette{colors: colors}
}

func (p *Palette) Next() color.RGBA {
	c := p.colors[p.next%len(p.colors)]
	p.next = (p.next + 1) % len(p.colors)
	return c
}

func (p *Palette) Reset() {
	p.next = 0
}

// ParsePalette turns a list of hex colors ("#7D092F" or "7d092f") into RGBA.
func ParsePalette(hex []string) ([]color.RGBA, error) {
	out := make([]color.RGBA, 0, len(hex))
	for _, h := range hex {
		h = strings.TrimPrefix(strings.TrimSpace(h), "#")
		if len(h) != 6 || strings.Trim(strings.ToLower(h), "0123456789abcdef") != "" {
			return nil, fmt.Errorf("invalid palette color %q", h)
		}
		c := drawing.ColorFromHex(h)
		out = append(out, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF})
	}
	return out, nil
}
