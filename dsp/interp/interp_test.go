package interp

import (
	"math"
	"testing"
)

func TestHermite4IdentityOnLinearRamp(t *testing.T) {
	t.Parallel()

	for _, tt := range []float64{0, 0.25, 0.5, 0.75} {
		got := Hermite4(tt, -1, 0, 1, 2)
		if math.Abs(got-tt) > 1e-12 {
			t.Fatalf("Hermite4(%v) = %v, want %v", tt, got, tt)
		}
	}
}

func TestHermiteAtHitsSamples(t *testing.T) {
	t.Parallel()

	x := []float64{3, 1, 4, 1, 5}
	for i, v := range x {
		if got := HermiteAt(x, float64(i)); got != v {
			t.Fatalf("HermiteAt(%d) = %v, want %v", i, got, v)
		}
	}

	if HermiteAt(nil, 1) != 0 {
		t.Fatal("empty slice should read 0")
	}
}

func TestStretch(t *testing.T) {
	t.Parallel()

	ramp := []float64{0, 1, 2, 3, 4}

	out := Stretch(ramp, 9)
	if len(out) != 9 || out[0] != 0 || out[8] != 4 {
		t.Fatalf("endpoints = %v", out)
	}

	// Interior points away from the clamped edges follow the ramp exactly.
	for i := 2; i <= 6; i++ {
		if math.Abs(out[i]-float64(i)*0.5) > 1e-12 {
			t.Fatalf("index %d: %v", i, out[i])
		}
	}

	if got := Stretch([]float64{7}, 3); got[2] != 7 {
		t.Fatalf("single-sample stretch = %v", got)
	}

	if Stretch(ramp, 0) != nil {
		t.Fatal("zero length should be nil")
	}
}
