package resample

import (
	"errors"
	"fmt"
	"math"

	"github.com/dscruggs/lyre-studio/dsp/window"
)

func designPhases(up, halfTaps int, cutoff, beta float64) ([][]float64, error) {
	if halfTaps <= 0 {
		return nil, errors.New("resample: taps per phase must be > 0")
	}

	if cutoff <= 0 || cutoff > 1 {
		return nil, fmt.Errorf("resample: invalid cutoff %.6f", cutoff)
	}

	span := float64(halfTaps)
	phases := make([][]float64, up)

	for p := range up {
		frac := float64(p) / float64(up)
		taps := make([]float64, 2*halfTaps)

		var sum float64

		for k := range taps {
			// Distance from the output position to input sample i+k-halfTaps+1.
			t := float64(k-halfTaps+1) - frac
			x := 0.5 + t/(2*span)

			w := 0.0
			if x >= 0 && x <= 1 {
				w = window.BesselI0(beta*math.Sqrt(math.Max(0, 1-(2*x-1)*(2*x-1)))) / window.BesselI0(beta)
			}

			taps[k] = cutoff * sinc(cutoff*t) * w
			sum += taps[k]
		}

		if sum == 0 {
			return nil, errors.New("resample: designed zero-sum filter")
		}

		for k := range taps {
			taps[k] /= sum
		}

		phases[p] = taps
	}

	return phases, nil
}

func approximateRatio(v float64, maxDen int) (num, den int) {
	if maxDen <= 0 {
		maxDen = 4096
	}

	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1, 1
	}

	a0 := math.Floor(v)
	p0, q0 := 1.0, 0.0
	p1, q1 := a0, 1.0
	x := v

	for {
		frac := x - math.Floor(x)
		if frac == 0 {
			break
		}

		x = 1 / frac
		a := math.Floor(x)
		p2 := a*p1 + p0

		q2 := a*q1 + q0
		if q2 > float64(maxDen) {
			break
		}

		p0, q0 = p1, q1
		p1, q1 = p2, q2
	}

	num = int(math.Round(p1))

	den = int(math.Round(q1))
	if den <= 0 || num <= 0 {
		return 1, 1
	}

	g := gcd(num, den)

	return num / g, den / g
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}

	if b < 0 {
		b = -b
	}

	for b != 0 {
		a, b = b, a%b
	}

	if a == 0 {
		return 1
	}

	return a
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}

	pix := math.Pi * x

	return math.Sin(pix) / pix
}
