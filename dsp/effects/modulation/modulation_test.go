package modulation

import (
	"math"
	"testing"

	"github.com/dscruggs/lyre-studio/internal/testutil"
)

func TestChorusDryMixIsTransparent(t *testing.T) {
	t.Parallel()

	c, err := NewChorus(48000, WithChorusMix(0))
	if err != nil {
		t.Fatalf("NewChorus() error = %v", err)
	}

	in := testutil.DeterministicNoise(3, 0.5, 2048)
	out := append([]float64(nil), in...)
	c.ProcessInPlace(out)

	testutil.RequireSliceNearlyEqual(t, out, in, 0)
}

func TestChorusWetIsDelayed(t *testing.T) {
	t.Parallel()

	c, err := NewChorus(1000, WithChorusMix(1), WithChorusDepth(0), WithChorusCentreDelayMs(10))
	if err != nil {
		t.Fatalf("NewChorus() error = %v", err)
	}

	buf := testutil.Impulse(32, 0)
	c.ProcessInPlace(buf)

	if math.Abs(buf[10]-1) > 1e-12 {
		t.Fatalf("delayed impulse = %v at 10 samples, buf=%v", buf[10], buf)
	}

	if buf[0] != 0 {
		t.Fatalf("wet-only output leaked dry input: %v", buf[0])
	}
}

func TestChorusValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  ChorusOption
	}{
		{"depth", WithChorusDepth(2)},
		{"rate", WithChorusRateHz(-1)},
		{"feedback", WithChorusFeedback(1)},
		{"mix", WithChorusMix(math.NaN())},
		{"centre", WithChorusCentreDelayMs(500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := NewChorus(48000, tt.opt); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestPhaserDryMixAndStability(t *testing.T) {
	t.Parallel()

	dry, err := NewPhaser(48000, WithPhaserMix(0))
	if err != nil {
		t.Fatalf("NewPhaser() error = %v", err)
	}

	in := testutil.DeterministicSine(500, 48000, 0.5, 4096)
	out := append([]float64(nil), in...)
	dry.ProcessInPlace(out)
	testutil.RequireSliceNearlyEqual(t, out, in, 0)

	wet, err := NewPhaser(48000, WithPhaserFeedback(0.9), WithPhaserDepth(1), WithPhaserRateHz(5))
	if err != nil {
		t.Fatalf("NewPhaser() error = %v", err)
	}

	buf := testutil.DeterministicNoise(9, 0.5, 48000)
	wet.ProcessInPlace(buf)
	testutil.RequireFinite(t, buf)

	for i, v := range buf {
		if math.Abs(v) > 20 {
			t.Fatalf("index %d: runaway output %v", i, v)
		}
	}
}

func TestPhaserValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewPhaser(48000, WithPhaserCentreHz(5)); err == nil {
		t.Fatal("expected centre frequency error")
	}

	if _, err := NewPhaser(0); err == nil {
		t.Fatal("expected sample rate error")
	}
}
