package ladder

import (
	"math"
	"testing"

	"github.com/dscruggs/lyre-studio/internal/testutil"
)

func TestNewValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []Option
	}{
		{"cutoff below min", []Option{WithCutoffHz(0)}},
		{"cutoff above nyquist", []Option{WithCutoffHz(30000)}},
		{"resonance above one", []Option{WithResonance(1.5)}},
		{"drive below one", []Option{WithDrive(0.5)}},
		{"bad mode", []Option{WithMode(Mode(9))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := New(48000, tt.opts...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLowpassAttenuatesAboveCutoff(t *testing.T) {
	t.Parallel()

	const sr = 48000.0

	run := func(freq float64) float64 {
		f, err := New(sr, WithMode(ModeLPF24), WithCutoffHz(500))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		buf := testutil.DeterministicSine(freq, sr, 0.1, 9600)
		f.ProcessInPlace(buf)
		testutil.RequireFinite(t, buf)

		return testutil.RMS(buf[4800:])
	}

	low := run(50)
	high := run(8000)

	if high > low*0.01 {
		t.Fatalf("8 kHz rms %v not well below 50 Hz rms %v", high, low)
	}
}

func TestDCGainNearUnityWithoutResonance(t *testing.T) {
	t.Parallel()

	f, err := New(48000, WithCutoffHz(1000))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	buf := testutil.DC(0.05, 4800)
	f.ProcessInPlace(buf)

	if got := buf[len(buf)-1]; math.Abs(got-0.05) > 1e-3 {
		t.Fatalf("settled DC = %v, want 0.05", got)
	}

	f.Reset()

	if y := f.ProcessSample(0); y != 0 {
		t.Fatalf("after reset, zero input gave %v", y)
	}
}
