package chart

// Transform maps data coordinates onto a Width x Height pixel surface
// through View. Pixel y grows downwards.
type Transform struct {
	View          ViewRect
	Width, Height float64
}

func NewTransform(v ViewRect, width, height float64) Transform {
	return Transform{View: v, Width: width, Height: height}
}

func (t Transform) PixelX(x float64) float64 {
	return (x - t.View.XMin) / t.View.SpanX() * t.Width
}

func (t Transform) PixelY(y float64) float64 {
	return t.Height - (y-t.View.YMin)/t.View.SpanY()*t.Height
}

func (t Transform) Pixel(x, y float64) Point {
	return Point{X: t.PixelX(x), Y: t.PixelY(y)}
}

// DataX is the inverse of PixelX.
func (t Transform) DataX(px float64) float64 {
	return t.View.XMin + px/t.Width*t.View.SpanX()
}

// DataY is the inverse of PixelY.
func (t Transform) DataY(py float64) float64 {
	return t.View.YMin + (t.Height-py)/t.Height*t.View.SpanY()
}
