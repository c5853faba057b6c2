package effects

import (
	"math"

	"github.com/dscruggs/lyre-studio/dsp/core"
	"github.com/dscruggs/lyre-studio/dsp/delay"
)

const (
	defaultDelaySeconds  = 0.5
	defaultDelayFeedback = 0.0
	defaultDelayMix      = 0.5
	maxDelaySeconds      = 30.0
)

// DelayOption mutates delay construction parameters.
type DelayOption func(*delayConfig) error

type delayConfig struct {
	seconds  float64
	feedback float64
	mix      float64
}

// WithDelaySeconds sets the delay time in [0, 30] seconds.
func WithDelaySeconds(seconds float64) DelayOption {
	return func(cfg *delayConfig) error {
		if err := core.ValidateRange("delay", "time", seconds, 0, maxDelaySeconds); err != nil {
			return err
		}

		cfg.seconds = seconds

		return nil
	}
}

// WithDelayFeedback sets the feedback amount in [0, 1].
func WithDelayFeedback(feedback float64) DelayOption {
	return func(cfg *delayConfig) error {
		if err := core.ValidateRange("delay", "feedback", feedback, 0, 1); err != nil {
			return err
		}

		cfg.feedback = feedback

		return nil
	}
}

// WithDelayMix sets the wet amount in [0, 1].
func WithDelayMix(mix float64) DelayOption {
	return func(cfg *delayConfig) error {
		if err := core.ValidateRange("delay", "mix", mix, 0, 1); err != nil {
			return err
		}

		cfg.mix = mix

		return nil
	}
}

// Delay is a feedback delay with dry/wet mix.
type Delay struct {
	sampleRate float64
	seconds    float64
	feedback   float64
	mix        float64

	delaySamples int
	line         *delay.Line
}

// NewDelay creates a delay line sized for the configured time.
func NewDelay(sampleRate float64, opts ...DelayOption) (*Delay, error) {
	if err := core.ValidateSampleRate("delay", sampleRate); err != nil {
		return nil, err
	}

	cfg := delayConfig{
		seconds:  defaultDelaySeconds,
		feedback: defaultDelayFeedback,
		mix:      defaultDelayMix,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	d := &Delay{
		sampleRate:   sampleRate,
		seconds:      cfg.seconds,
		feedback:     cfg.feedback,
		mix:          cfg.mix,
		delaySamples: int(math.Round(cfg.seconds * sampleRate)),
	}
	if d.delaySamples > 0 {
		line, err := delay.New(d.delaySamples)
		if err != nil {
			return nil, err
		}

		d.line = line
	}

	return d, nil
}

// Time returns the delay time in seconds.
func (d *Delay) Time() float64 { return d.seconds }

// Feedback returns the feedback amount.
func (d *Delay) Feedback() float64 { return d.feedback }

// Mix returns the wet amount.
func (d *Delay) Mix() float64 { return d.mix }

// Reset clears delay state.
func (d *Delay) Reset() {
	if d.line != nil {
		d.line.Reset()
	}
}

// ProcessSample processes one sample.
func (d *Delay) ProcessSample(input float64) float64 {
	if d.delaySamples == 0 {
		return input
	}

	delayed := d.line.Read(d.delaySamples)
	d.line.Write(input + delayed*d.feedback)

	return input*(1-d.mix) + delayed*d.mix
}

// ProcessInPlace applies the delay to buf in place.
func (d *Delay) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = d.ProcessSample(buf[i])
	}
}
