package effects

import (
	"math"

	"github.com/dscruggs/lyre-studio/dsp/core"
	"github.com/dscruggs/lyre-studio/dsp/filter/biquad"
	"github.com/dscruggs/lyre-studio/dsp/resample"
)

const (
	gsmSampleRate = 8000.0
	gsmLowHz      = 200.0
	gsmHighHz     = 3400.0
	gsmLevels     = 4096.0 // 13-bit signed PCM
)

// GSMEmulator approximates the sound of a GSM 06.10 full-rate voice
// channel: the signal is band-limited to telephone bandwidth at 8 kHz,
// quantized to 13-bit PCM and converted back to the original rate.
// It processes whole blocks; there is no state carried between calls.
type GSMEmulator struct {
	sampleRate float64
	down       *resample.Resampler
	up         *resample.Resampler
	low, high  biquad.Coefficients
}

// NewGSMEmulator creates an emulator for signals at sampleRate.
func NewGSMEmulator(sampleRate float64) (*GSMEmulator, error) {
	if err := core.ValidateSampleRate("gsm", sampleRate); err != nil {
		return nil, err
	}

	down, err := resample.NewForRates(sampleRate, gsmSampleRate)
	if err != nil {
		return nil, err
	}

	up, err := resample.NewForRates(gsmSampleRate, sampleRate)
	if err != nil {
		return nil, err
	}

	low, err := biquad.Design(biquad.KindHighpass, gsmLowHz, 0, biquad.DefaultQ, gsmSampleRate)
	if err != nil {
		return nil, err
	}

	high, err := biquad.Design(biquad.KindLowpass, gsmHighHz, 0, biquad.DefaultQ, gsmSampleRate)
	if err != nil {
		return nil, err
	}

	return &GSMEmulator{sampleRate: sampleRate, down: down, up: up, low: low, high: high}, nil
}

// ProcessInPlace runs buf through the emulated channel.
func (g *GSMEmulator) ProcessInPlace(buf []float64) {
	if len(buf) == 0 {
		return
	}

	narrow := g.down.Process(buf)
	biquad.NewSection(g.low).ProcessInPlace(narrow)
	biquad.NewSection(g.high).ProcessInPlace(narrow)

	for i, x := range narrow {
		narrow[i] = core.Clamp(math.Round(x*gsmLevels), -gsmLevels, gsmLevels-1) / gsmLevels
	}

	wide := g.up.Process(narrow)
	n := copy(buf, wide)
	clear(buf[n:])
}

// Reset is a no-op; each block is processed independently.
func (g *GSMEmulator) Reset() {}
