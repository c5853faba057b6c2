// Package window generates the analysis windows used by the spectral
// effects and the resampler design.
package window

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

var errMismatchedLength = errors.New("samples and coefficients must have same length")

// Type selects a window shape.
type Type int

const (
	// TypeHann is the raised cosine window.
	TypeHann Type = iota
	// TypeSqrtHann is the square root of Hann, used as a matched
	// analysis/synthesis pair for 50% overlap-add.
	TypeSqrtHann
	// TypeKaiser is the Kaiser-Bessel window; see WithBeta.
	TypeKaiser
)

type config struct {
	periodic bool
	beta     float64
}

// Option configures window generation.
type Option func(*config)

// WithPeriodic configures periodic form (FFT framing) instead of symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// WithBeta sets the Kaiser beta parameter.
func WithBeta(beta float64) Option {
	return func(c *config) {
		c.beta = beta
	}
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	cfg := config{beta: 8.6}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	for i := range out {
		x := samplePosition(i, length, cfg.periodic)

		switch t {
		case TypeSqrtHann:
			out[i] = math.Sqrt(hannAt(x))
		case TypeKaiser:
			out[i] = kaiserAt(x, cfg.beta)
		default:
			out[i] = hannAt(x)
		}
	}

	return out
}

// Hann returns Hann window coefficients.
func Hann(size int, opts ...Option) ([]float64, error) {
	return Generate(TypeHann, size, opts...), validateLength(size)
}

// Kaiser returns Kaiser window coefficients for beta >= 0.
func Kaiser(size int, beta float64) ([]float64, error) {
	if err := validateLength(size); err != nil {
		return nil, err
	}

	if beta < 0 || math.IsNaN(beta) {
		return nil, fmt.Errorf("kaiser beta must be >= 0: %f", beta)
	}

	return Generate(TypeKaiser, size, WithBeta(beta)), nil
}

// Apply multiplies buf in-place by the selected window.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// ApplyCoefficientsInPlace multiplies samples with coefficients in place.
func ApplyCoefficientsInPlace(samples, coeffs []float64) error {
	if len(samples) != len(coeffs) {
		return errMismatchedLength
	}

	vecmath.MulBlockInPlace(samples, coeffs)

	return nil
}

// BesselI0 evaluates the zeroth-order modified Bessel function of the
// first kind by power series.
func BesselI0(x float64) float64 {
	sum := 1.0
	term := 1.0

	x2 := (x * x) / 4
	for k := 1; k < 64; k++ {
		term *= x2 / float64(k*k)

		sum += term
		if term < 1e-16*sum {
			break
		}
	}

	return sum
}

func hannAt(x float64) float64 {
	return 0.5 - 0.5*math.Cos(2*math.Pi*x)
}

func kaiserAt(x, beta float64) float64 {
	if beta <= 0 {
		return 1
	}

	r := 2*x - 1
	term := math.Sqrt(math.Max(0, 1-r*r))

	return BesselI0(beta*term) / BesselI0(beta)
}

func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0
	}

	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}

	return float64(n) / den
}

func validateLength(size int) error {
	if size <= 0 {
		return fmt.Errorf("window size must be > 0: %d", size)
	}

	return nil
}
