// Package core holds small numeric helpers shared by the DSP packages.
package core

import (
	"fmt"
	"math"
)

// Clamp limits value to the inclusive range [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	if value < lo {
		return lo
	}

	if value > hi {
		return hi
	}

	return value
}

// FlushDenormals converts tiny denormal-like values to exact zero.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// IsFinite reports whether v is neither NaN nor Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidateSampleRate returns an error naming owner when sampleRate is not
// a positive finite number.
func ValidateSampleRate(owner string, sampleRate float64) error {
	if sampleRate <= 0 || !IsFinite(sampleRate) {
		return fmt.Errorf("%s sample rate must be > 0: %f", owner, sampleRate)
	}

	return nil
}

// ValidateRange returns an error when v is outside [lo, hi] or not finite.
func ValidateRange(owner, param string, v, lo, hi float64) error {
	if v < lo || v > hi || !IsFinite(v) {
		return fmt.Errorf("%s %s must be in [%g, %g]: %g", owner, param, lo, hi, v)
	}

	return nil
}

// MsToCoeff returns the one-pole smoothing coefficient for a time constant
// in milliseconds. Zero or negative times give an instant response.
func MsToCoeff(ms, sampleRate float64) float64 {
	if ms <= 0 || sampleRate <= 0 {
		return 0
	}

	return math.Exp(-1 / (ms * 0.001 * sampleRate))
}
