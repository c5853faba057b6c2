// Package interp provides fractional-position sample interpolation.
package interp

import "math"

// Hermite4 evaluates the 4-point, 3rd-order Hermite polynomial through
// xm1, x0, x1, x2 at fractional position t in [0, 1) between x0 and x1.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)

	return ((c3*t+c2)*t+c1)*t + c0
}

// HermiteAt reads x at fractional index pos, clamping neighbours to the
// slice ends.
func HermiteAt(x []float64, pos float64) float64 {
	if len(x) == 0 {
		return 0
	}

	idx := int(math.Floor(pos))
	t := pos - float64(idx)

	return Hermite4(t, clampAt(x, idx-1), clampAt(x, idx), clampAt(x, idx+1), clampAt(x, idx+2))
}

// Stretch resamples x to n samples with Hermite interpolation, mapping the
// first and last samples of x onto the first and last output samples.
func Stretch(x []float64, n int) []float64 {
	if n <= 0 || len(x) == 0 {
		return nil
	}

	out := make([]float64, n)
	if len(x) == 1 || n == 1 {
		for i := range out {
			out[i] = x[0]
		}

		return out
	}

	step := float64(len(x)-1) / float64(n-1)
	for i := range out {
		out[i] = HermiteAt(x, float64(i)*step)
	}

	return out
}

func clampAt(x []float64, idx int) float64 {
	if idx < 0 {
		return x[0]
	}

	if idx >= len(x) {
		return x[len(x)-1]
	}

	return x[idx]
}
