package dynamics

import (
	"math"
	"testing"

	"github.com/dscruggs/lyre-studio/internal/testutil"
)

const sr = 48000.0

func TestCompressorUnityRatioIsTransparent(t *testing.T) {
	t.Parallel()

	c, err := NewCompressor(sr)
	if err != nil {
		t.Fatalf("NewCompressor() error = %v", err)
	}

	in := testutil.DeterministicNoise(1, 0.9, 4096)
	out := append([]float64(nil), in...)
	c.ProcessInPlace(out)

	testutil.RequireSliceNearlyEqual(t, out, in, 0)
}

func TestCompressorReducesLevelAboveThreshold(t *testing.T) {
	t.Parallel()

	c, err := NewCompressor(sr)
	if err != nil {
		t.Fatalf("NewCompressor() error = %v", err)
	}

	if err := c.SetThreshold(-20); err != nil {
		t.Fatal(err)
	}

	if err := c.SetRatio(4); err != nil {
		t.Fatal(err)
	}

	buf := testutil.DC(0.5, 9600)
	c.ProcessInPlace(buf)

	// -6 dBFS in, 14 dB over, 4:1 leaves 3.5 dB over: -16.5 dBFS.
	want := math.Pow(10, -16.5/20)
	if got := buf[len(buf)-1]; math.Abs(got-want) > 1e-3 {
		t.Fatalf("settled level = %v, want %v", got, want)
	}
}

func TestCompressorBlockMatchesSample(t *testing.T) {
	t.Parallel()

	a, _ := NewCompressor(sr)
	b, _ := NewCompressor(sr)

	for _, c := range []*Compressor{a, b} {
		if err := c.SetThreshold(-12); err != nil {
			t.Fatal(err)
		}

		if err := c.SetRatio(3); err != nil {
			t.Fatal(err)
		}

		if err := c.SetTimes(5, 50); err != nil {
			t.Fatal(err)
		}
	}

	in := testutil.DeterministicSine(200, sr, 0.8, 2048)
	block := append([]float64(nil), in...)
	b.ProcessInPlace(block)

	for i, x := range in {
		if y := a.ProcessSample(x); math.Abs(y-block[i]) > 1e-12 {
			t.Fatalf("index %d: sample=%v block=%v", i, y, block[i])
		}
	}
}

func TestLimiterCeiling(t *testing.T) {
	t.Parallel()

	l, err := NewLimiter(sr)
	if err != nil {
		t.Fatalf("NewLimiter() error = %v", err)
	}

	buf := testutil.DeterministicNoise(7, 1, 4800)
	l.ProcessInPlace(buf)

	ceiling := math.Pow(10, -10.0/20)
	if p := testutil.Peak(buf); p > ceiling+1e-12 {
		t.Fatalf("peak %v exceeds ceiling %v", p, ceiling)
	}

	if err := l.SetRelease(-1); err == nil {
		t.Fatal("expected release error")
	}
}

func TestGateAttenuatesQuietSignal(t *testing.T) {
	t.Parallel()

	g, err := NewGate(sr)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	if err := g.SetThreshold(-30); err != nil {
		t.Fatal(err)
	}

	quiet := testutil.DeterministicSine(300, sr, 0.003, 9600)
	g.ProcessInPlace(quiet)

	if p := testutil.Peak(quiet[4800:]); p > 1e-6 {
		t.Fatalf("gated peak = %v", p)
	}

	g.Reset()

	loud := testutil.DeterministicSine(300, sr, 0.5, 9600)
	in := append([]float64(nil), loud...)
	g.ProcessInPlace(loud)

	if p := testutil.Peak(loud[4800:]); math.Abs(p-testutil.Peak(in[4800:])) > 1e-3 {
		t.Fatalf("open gate changed peak: %v vs %v", p, testutil.Peak(in))
	}
}

func TestValidation(t *testing.T) {
	t.Parallel()

	c, _ := NewCompressor(sr)
	if err := c.SetRatio(0.5); err == nil {
		t.Fatal("expected compressor ratio error")
	}

	g, _ := NewGate(sr)
	if err := g.SetThreshold(math.NaN()); err == nil {
		t.Fatal("expected gate threshold error")
	}

	if _, err := NewLimiter(-1); err == nil {
		t.Fatal("expected limiter sample rate error")
	}
}
