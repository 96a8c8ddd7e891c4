package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransform_Endpoints(t *testing.T) {
	views := []ViewRect{
		{0, 10, 0, 10},
		{-3.5, 17.25, -1e6, 2e6},
		{0.001, 0.002, -0.5, 0.5},
	}
	for _, v := range views {
		tr := NewTransform(v, 640, 480)
		assert.Equal(t, 0.0, tr.PixelX(v.XMin))
		assert.Equal(t, 640.0, tr.PixelX(v.XMax))
		assert.Equal(t, 480.0, tr.PixelY(v.YMin))
		assert.Equal(t, 0.0, tr.PixelY(v.YMax))
	}
}

func TestTransform_Inverse(t *testing.T) {
	tr := NewTransform(ViewRect{-10, 30, 5, 25}, 400, 200)
	p := tr.Pixel(12.5, 7)
	assert.InDelta(t, 12.5, tr.DataX(p.X), 1e-9)
	assert.InDelta(t, 7, tr.DataY(p.Y), 1e-9)
}
