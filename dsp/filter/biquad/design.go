package biquad

import (
	"fmt"
	"math"
)

// Kind selects a filter response.
type Kind int

const (
	// KindHighpass is a first-order (6 dB/octave) highpass.
	KindHighpass Kind = iota
	// KindLowpass is a first-order (6 dB/octave) lowpass.
	KindLowpass
	// KindLowShelf is an RBJ low shelf.
	KindLowShelf
	// KindHighShelf is an RBJ high shelf.
	KindHighShelf
	// KindPeak is an RBJ peaking equalizer.
	KindPeak
)

// DefaultQ is the Butterworth quality factor.
const DefaultQ = 1 / math.Sqrt2

// Design returns coefficients for kind at freq (Hz). gainDB and q are
// ignored by the first-order designs.
func Design(kind Kind, freq, gainDB, q, sampleRate float64) (Coefficients, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Coefficients{}, fmt.Errorf("biquad sample rate must be > 0: %f", sampleRate)
	}

	if freq <= 0 || freq >= sampleRate/2 || math.IsNaN(freq) {
		return Coefficients{}, fmt.Errorf("biquad frequency must be in (0, %g): %g", sampleRate/2, freq)
	}

	if math.IsNaN(gainDB) || math.IsInf(gainDB, 0) {
		return Coefficients{}, fmt.Errorf("biquad gain must be finite: %f", gainDB)
	}

	if kind >= KindLowShelf && (q <= 0 || math.IsNaN(q) || math.IsInf(q, 0)) {
		return Coefficients{}, fmt.Errorf("biquad q must be > 0: %f", q)
	}

	switch kind {
	case KindHighpass:
		return firstOrder(freq, sampleRate, true), nil
	case KindLowpass:
		return firstOrder(freq, sampleRate, false), nil
	case KindLowShelf:
		return lowShelf(freq, gainDB, q, sampleRate), nil
	case KindHighShelf:
		return highShelf(freq, gainDB, q, sampleRate), nil
	case KindPeak:
		return peak(freq, gainDB, q, sampleRate), nil
	default:
		return Coefficients{}, fmt.Errorf("biquad: unknown kind %d", kind)
	}
}

func firstOrder(freq, sampleRate float64, highpass bool) Coefficients {
	k := math.Tan(math.Pi * freq / sampleRate)
	a1 := (k - 1) / (k + 1)

	if highpass {
		g := 1 / (k + 1)
		return Coefficients{B0: g, B1: -g, A1: a1}
	}

	g := k / (k + 1)

	return Coefficients{B0: g, B1: g, A1: a1}
}

func peak(freq, gainDB, q, sampleRate float64) Coefficients {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	return normalize(
		1+alpha*a, -2*cw, 1-alpha*a,
		1+alpha/a, -2*cw, 1-alpha/a,
	)
}

func lowShelf(freq, gainDB, q, sampleRate float64) Coefficients {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	sa := 2 * math.Sqrt(a) * alpha

	return normalize(
		a*((a+1)-(a-1)*cw+sa), 2*a*((a-1)-(a+1)*cw), a*((a+1)-(a-1)*cw-sa),
		(a+1)+(a-1)*cw+sa, -2*((a-1)+(a+1)*cw), (a+1)+(a-1)*cw-sa,
	)
}

func highShelf(freq, gainDB, q, sampleRate float64) Coefficients {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	sa := 2 * math.Sqrt(a) * alpha

	return normalize(
		a*((a+1)+(a-1)*cw+sa), -2*a*((a-1)+(a+1)*cw), a*((a+1)+(a-1)*cw-sa),
		(a+1)-(a-1)*cw+sa, 2*((a-1)-(a+1)*cw), (a+1)-(a-1)*cw-sa,
	)
}

func normalize(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	return Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
