package dataview

// Series is a flat list of interleaved x,y values: x0, y0, x1, y1, ...
type Series []float64

// Len returns the number of complete (x, y) pairs. A trailing unpaired
// value is not counted.
func (s Series) Len() int {
	return len(s) / 2
}

// At returns the i-th pair.
func (s Series) At(i int) (x, y float64) {
	return s[2*i], s[2*i+1]
}

// Points returns the pairs as a slice of {x, y} arrays.
func (s Series) Points() [][2]float64 {
	n := s.Len()
	out := make([][2]float64, n)
	for i := 0; i < n; i++ {
		out[i][0], out[i][1] = s.At(i)
	}
	return out
}
