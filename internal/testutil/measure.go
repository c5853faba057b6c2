package testutil

import (
	"math"

	"github.com/dscruggs/lyre-studio/dsp/buffer"
)

// RMS returns the root mean square of x, or 0 for an empty slice.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	var sum float64
	for _, v := range x {
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(x)))
}

// Peak returns the largest absolute value in x.
func Peak(x []float64) float64 {
	var p float64
	for _, v := range x {
		p = math.Max(p, math.Abs(v))
	}

	return p
}

// BufferPeak returns the largest absolute sample across all channels.
func BufferPeak(b *buffer.Buffer) float64 {
	var p float64
	for _, ch := range b.Channels() {
		p = math.Max(p, Peak(Float64s(ch)))
	}

	return p
}

// Float64s widens a float32 audio channel for measurement.
func Float64s(x []float32) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}

	return out
}
