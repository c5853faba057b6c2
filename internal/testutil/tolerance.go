package testutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/dscruggs/lyre-studio/dsp/buffer"
)

// RequireSliceNearlyEqual fails tb on a length mismatch or on the first
// element pair further apart than eps.
func RequireSliceNearlyEqual(tb testing.TB, got, want []float64, eps float64) {
	tb.Helper()

	if len(got) != len(want) {
		tb.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i := range got {
		if d := math.Abs(got[i] - want[i]); d > eps {
			tb.Fatalf("index %d: got %v, want %v (diff %v > %v)", i, got[i], want[i], d, eps)
		}
	}
}

// RequireFinite fails tb on the first NaN or Inf in data.
func RequireFinite(tb testing.TB, data []float64) {
	tb.Helper()

	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			tb.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// MaxAbsDiff returns the largest absolute difference between a and b.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}

	var m float64
	for i := range a {
		m = math.Max(m, math.Abs(a[i]-b[i]))
	}

	return m, nil
}

// RequireBufferNearlyEqual fails tb unless got and want share layout and
// sample rate and every sample is within eps.
func RequireBufferNearlyEqual(tb testing.TB, got, want *buffer.Buffer, eps float64) {
	tb.Helper()

	if got == nil || want == nil {
		tb.Fatalf("nil buffer: got %v, want %v", got, want)
	}

	if got.NumChannels() != want.NumChannels() || got.Len() != want.Len() {
		tb.Fatalf("layout mismatch: got %dx%d, want %dx%d",
			got.NumChannels(), got.Len(), want.NumChannels(), want.Len())
	}

	if got.SampleRate() != want.SampleRate() {
		tb.Fatalf("sample rate: got %v, want %v", got.SampleRate(), want.SampleRate())
	}

	for ch := range got.NumChannels() {
		g, w := got.Channel(ch), want.Channel(ch)
		for i := range g {
			if d := math.Abs(float64(g[i]) - float64(w[i])); d > eps {
				tb.Fatalf("channel %d sample %d: got %v, want %v (diff %v > %v)", ch, i, g[i], w[i], d, eps)
			}
		}
	}
}

// RequireBufferFinite fails tb on the first NaN or Inf in any channel.
func RequireBufferFinite(tb testing.TB, b *buffer.Buffer) {
	tb.Helper()

	for ch, samples := range b.Channels() {
		for i, v := range samples {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				tb.Fatalf("channel %d sample %d: non-finite value %v", ch, i, v)
			}
		}
	}
}
