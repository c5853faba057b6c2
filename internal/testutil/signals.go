// Package testutil holds deterministic test signals and tolerance checks
// shared by the dsp and service tests.
package testutil

import (
	"math"
	"math/rand"
	"testing"

	"github.com/dscruggs/lyre-studio/dsp/buffer"
)

// DeterministicSine returns length samples of a sine starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	step := 2 * math.Pi * freqHz / sampleRate

	out := make([]float64, length)
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// DeterministicNoise returns uniform white noise in [-amplitude, amplitude]
// drawn from a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	rng := rand.New(rand.NewSource(seed))

	out := make([]float64, length)
	for i := range out {
		out[i] = (2*rng.Float64() - 1) * amplitude
	}

	return out
}

// Impulse returns a unit impulse at pos; out-of-range positions give silence.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}

	return out
}

// DC returns a constant signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}

	return out
}

// SineBuffer returns a buffer whose channel i carries a 0.5 amplitude sine
// at 220*(i+1) Hz, so channels are distinguishable.
func SineBuffer(tb testing.TB, channels int, sampleRate float64, length int) *buffer.Buffer {
	tb.Helper()

	planes := make([][]float64, channels)
	for i := range planes {
		planes[i] = DeterministicSine(220*float64(i+1), sampleRate, 0.5, length)
	}

	b, err := buffer.FromFloat64(planes, sampleRate)
	if err != nil {
		tb.Fatalf("SineBuffer: %v", err)
	}

	return b
}
