package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		v, span float64
		want    string
	}{
		{12345.678, 20000, "12346"},
		{1234.5678, 2000, "1234.6"},
		{12.345678, 200, "12.35"},
		{1.2345678, 20, "1.235"},
		{0.5, 1, "0.5000"},
		{0.005, 0.005, "0.00500"},
		{0.0005, 0.0005, "0.000500"},
		{0.00005, 0.00005, "0.0000500"},
		{0.000005, 0.000005, "0.00000500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.v, tt.span), "v=%v span=%v", tt.v, tt.span)
	}
}

func TestTicks(t *testing.T) {
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, Ticks(0, 10, 11))

	ticks := Ticks(-0.7, 11.4, 10)
	assert.Len(t, ticks, 10)
	assert.LessOrEqual(t, ticks[0], -0.7)
}
