package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	t.Parallel()

	s := DeterministicSine(1000, 48000, 0.5, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}

	if s[0] != 0 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}

	// 48 samples at 1 kHz / 48 kHz is one period; the quarter point peaks.
	if math.Abs(s[12]-0.5) > 1e-12 {
		t.Fatalf("s[12] = %v, want 0.5", s[12])
	}
}

func TestDeterministicNoiseSeeds(t *testing.T) {
	t.Parallel()

	a := DeterministicNoise(42, 0.25, 64)
	b := DeterministicNoise(42, 0.25, 64)
	c := DeterministicNoise(43, 0.25, 64)

	if d, _ := MaxAbsDiff(a, b); d != 0 {
		t.Fatalf("same seed differs by %v", d)
	}

	if d, _ := MaxAbsDiff(a, c); d == 0 {
		t.Fatal("different seeds produced identical noise")
	}

	if p := Peak(a); p > 0.25 {
		t.Fatalf("peak %v exceeds amplitude", p)
	}
}

func TestImpulseAndDC(t *testing.T) {
	t.Parallel()

	imp := Impulse(8, 3)
	if Peak(imp) != 1 || imp[3] != 1 || RMS(imp) != math.Sqrt(1.0/8) {
		t.Fatalf("Impulse = %v", imp)
	}

	if Peak(Impulse(4, 10)) != 0 {
		t.Fatal("out-of-range impulse is not silent")
	}

	if got := RMS(DC(-0.5, 16)); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("RMS(DC) = %v, want 0.5", got)
	}
}

func TestMaxAbsDiff(t *testing.T) {
	t.Parallel()

	d, err := MaxAbsDiff([]float64{1, 2, 3}, []float64{1, 2.5, 2})
	if err != nil {
		t.Fatal(err)
	}

	if d != 1 {
		t.Fatalf("MaxAbsDiff = %v, want 1", d)
	}

	if _, err := MaxAbsDiff([]float64{1}, []float64{1, 2}); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestSineBuffer(t *testing.T) {
	t.Parallel()

	b := SineBuffer(t, 2, 8000, 400)
	if b.NumChannels() != 2 || b.Len() != 400 || b.SampleRate() != 8000 {
		t.Fatalf("layout = %dx%d at %v", b.NumChannels(), b.Len(), b.SampleRate())
	}

	if p := BufferPeak(b); math.Abs(p-0.5) > 0.01 {
		t.Fatalf("BufferPeak = %v, want ~0.5", p)
	}

	RequireBufferFinite(t, b)
	RequireBufferNearlyEqual(t, b.Copy(), b, 0)

	if got := Float64s([]float32{0.25, -1}); got[0] != 0.25 || got[1] != -1 {
		t.Fatalf("Float64s = %v", got)
	}
}
