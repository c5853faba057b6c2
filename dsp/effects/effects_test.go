package effects

import (
	"math"
	"testing"

	"github.com/dscruggs/lyre-studio/internal/testutil"
)

const testSampleRate = 48000.0

func TestGain(t *testing.T) {
	t.Parallel()

	g, err := NewGain(6)
	if err != nil {
		t.Fatalf("NewGain() error = %v", err)
	}

	buf := []float64{0.1, -0.2}
	g.ProcessInPlace(buf)

	want := []float64{0.1 * 1.9952623149688795, -0.2 * 1.9952623149688795}
	testutil.RequireSliceNearlyEqual(t, buf, want, 1e-12)

	unity, err := NewGain(0)
	if err != nil {
		t.Fatalf("NewGain(0) error = %v", err)
	}

	if got := unity.ProcessSample(0.3); got != 0.3 {
		t.Fatalf("0 dB gain changed sample: %v", got)
	}

	if _, err := NewGain(math.NaN()); err == nil {
		t.Fatal("expected error for NaN gain")
	}
}

func TestClipper(t *testing.T) {
	t.Parallel()

	c, err := NewClipper(-6)
	if err != nil {
		t.Fatalf("NewClipper() error = %v", err)
	}

	lim := math.Pow(10, -6.0/20)
	buf := []float64{1, -1, 0.1}
	c.ProcessInPlace(buf)

	testutil.RequireSliceNearlyEqual(t, buf, []float64{lim, -lim, 0.1}, 1e-12)

	if _, err := NewClipper(math.Inf(1)); err == nil {
		t.Fatal("expected error for +Inf threshold")
	}
}

func TestDistortionSaturates(t *testing.T) {
	t.Parallel()

	d, err := NewDistortion(25)
	if err != nil {
		t.Fatalf("NewDistortion() error = %v", err)
	}

	buf := testutil.DeterministicSine(440, testSampleRate, 0.8, 480)
	d.ProcessInPlace(buf)

	for i, v := range buf {
		if math.Abs(v) >= 1 {
			t.Fatalf("index %d: |%v| >= 1", i, v)
		}
	}

	if got := d.ProcessSample(0); got != 0 {
		t.Fatalf("silence in gave %v", got)
	}
}

func TestBitCrusherQuantizes(t *testing.T) {
	t.Parallel()

	bc, err := NewBitCrusher(2)
	if err != nil {
		t.Fatalf("NewBitCrusher() error = %v", err)
	}

	// Two bits give a step of 0.5.
	buf := []float64{0.2, 0.3, -0.74, 1}
	bc.ProcessInPlace(buf)
	testutil.RequireSliceNearlyEqual(t, buf, []float64{0, 0.5, -0.5, 1}, 1e-12)

	for _, bits := range []int{0, 33} {
		if _, err := NewBitCrusher(bits); err == nil {
			t.Fatalf("expected error for %d bits", bits)
		}
	}
}

func TestDelayImpulse(t *testing.T) {
	t.Parallel()

	d, err := NewDelay(1000, WithDelaySeconds(0.01), WithDelayFeedback(0.5), WithDelayMix(1))
	if err != nil {
		t.Fatalf("NewDelay() error = %v", err)
	}

	buf := testutil.Impulse(40, 0)
	d.ProcessInPlace(buf)

	if buf[0] != 0 || buf[10] != 1 || buf[20] != 0.5 || buf[30] != 0.25 {
		t.Fatalf("echo taps = %v, %v, %v, %v", buf[0], buf[10], buf[20], buf[30])
	}

	d.Reset()

	if got := d.ProcessSample(0); got != 0 {
		t.Fatalf("after reset got %v", got)
	}
}

func TestDelayValidationAndZeroTime(t *testing.T) {
	t.Parallel()

	if _, err := NewDelay(48000, WithDelayFeedback(1.5)); err == nil {
		t.Fatal("expected feedback error")
	}

	if _, err := NewDelay(0); err == nil {
		t.Fatal("expected sample rate error")
	}

	d, err := NewDelay(48000, WithDelaySeconds(0))
	if err != nil {
		t.Fatalf("NewDelay() error = %v", err)
	}

	if got := d.ProcessSample(0.7); got != 0.7 {
		t.Fatalf("zero delay got %v", got)
	}
}

func TestReverbTailAndDry(t *testing.T) {
	t.Parallel()

	r, err := NewReverb(testSampleRate, WithWetLevel(0.5), WithDryLevel(0))
	if err != nil {
		t.Fatalf("NewReverb() error = %v", err)
	}

	buf := testutil.Impulse(24000, 0)
	r.ProcessInPlace(buf)
	testutil.RequireFinite(t, buf)

	var tail float64
	for _, v := range buf[4800:] {
		tail += v * v
	}

	if tail == 0 {
		t.Fatal("expected a reverb tail")
	}

	dry, err := NewReverb(testSampleRate, WithWetLevel(0), WithDryLevel(0.5))
	if err != nil {
		t.Fatalf("NewReverb() error = %v", err)
	}

	// Dry level 0.5 scales to unity.
	if got := dry.ProcessSample(0.25); math.Abs(got-0.25) > 1e-12 {
		t.Fatalf("dry-only output = %v, want 0.25", got)
	}

	if _, err := NewReverb(testSampleRate, WithRoomSize(2)); err == nil {
		t.Fatal("expected room size error")
	}
}

func TestReverbFreezeMutesInput(t *testing.T) {
	t.Parallel()

	r, err := NewReverb(testSampleRate, WithFreezeMode(1), WithDryLevel(0))
	if err != nil {
		t.Fatalf("NewReverb() error = %v", err)
	}

	if !r.Frozen() {
		t.Fatal("expected frozen reverb")
	}

	buf := testutil.DeterministicNoise(1, 0.5, 4800)
	r.ProcessInPlace(buf)

	for i, v := range buf {
		if v != 0 {
			t.Fatalf("index %d: frozen empty tank produced %v", i, v)
		}
	}
}

func TestReverbStereoLengthMismatch(t *testing.T) {
	t.Parallel()

	r, err := NewReverb(testSampleRate)
	if err != nil {
		t.Fatalf("NewReverb() error = %v", err)
	}

	if err := r.ProcessStereoInPlace(make([]float64, 3), make([]float64, 2)); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestGSMEmulatorBandLimits(t *testing.T) {
	t.Parallel()

	g, err := NewGSMEmulator(testSampleRate)
	if err != nil {
		t.Fatalf("NewGSMEmulator() error = %v", err)
	}

	high := testutil.DeterministicSine(8000, testSampleRate, 0.5, 9600)
	g.ProcessInPlace(high)
	testutil.RequireFinite(t, high)

	voice := testutil.DeterministicSine(1000, testSampleRate, 0.5, 9600)
	g.ProcessInPlace(voice)

	if testutil.RMS(high[1000:8600]) > 0.05*testutil.RMS(voice[1000:8600]) {
		t.Fatalf("8 kHz survived: rms %v vs voice %v", testutil.RMS(high), testutil.RMS(voice))
	}
}

func TestSpectralCodecTransparentAtBestQualityForLowTone(t *testing.T) {
	t.Parallel()

	c, err := NewSpectralCodec(testSampleRate, 0)
	if err != nil {
		t.Fatalf("NewSpectralCodec() error = %v", err)
	}

	in := testutil.DeterministicSine(440, testSampleRate, 0.5, 8192)
	out := append([]float64(nil), in...)

	if err := c.Process(out); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	diff, err := testutil.MaxAbsDiff(in, out)
	if err != nil {
		t.Fatal(err)
	}

	if diff > 0.01 {
		t.Fatalf("max diff = %v, want <= 0.01", diff)
	}
}

func TestSpectralCodecRemovesContentAboveCutoff(t *testing.T) {
	t.Parallel()

	c, err := NewSpectralCodec(testSampleRate, 10)
	if err != nil {
		t.Fatalf("NewSpectralCodec() error = %v", err)
	}

	buf := testutil.DeterministicSine(15000, testSampleRate, 0.5, 8192)
	c.ProcessInPlace(buf)

	if got := testutil.RMS(buf[1024:7168]); got > 0.01 {
		t.Fatalf("rms above cutoff = %v", got)
	}

	if _, err := NewSpectralCodec(testSampleRate, 11); err == nil {
		t.Fatal("expected quality range error")
	}
}
