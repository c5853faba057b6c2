package modulation

import (
	"math"

	"github.com/dscruggs/lyre-studio/dsp/core"
	"github.com/dscruggs/lyre-studio/dsp/delay"
)

const (
	defaultChorusRateHz        = 1.0
	defaultChorusDepth         = 0.25
	defaultChorusCentreDelayMs = 7.0
	defaultChorusFeedback      = 0.0
	defaultChorusMix           = 0.5

	maxChorusRateHz      = 100.0
	maxChorusCentreDelay = 100.0
	maxChorusFeedback    = 0.95
)

// ChorusOption mutates chorus construction parameters.
type ChorusOption func(*chorusConfig) error

type chorusConfig struct {
	rateHz        float64
	depth         float64
	centreDelayMs float64
	feedback      float64
	mix           float64
}

// WithChorusRateHz sets the LFO rate in [0, 100] Hz.
func WithChorusRateHz(hz float64) ChorusOption {
	return func(cfg *chorusConfig) error {
		if err := core.ValidateRange("chorus", "rate", hz, 0, maxChorusRateHz); err != nil {
			return err
		}

		cfg.rateHz = hz

		return nil
	}
}

// WithChorusDepth sets modulation depth in [0, 1] as a fraction of the
// centre delay.
func WithChorusDepth(depth float64) ChorusOption {
	return func(cfg *chorusConfig) error {
		if err := core.ValidateRange("chorus", "depth", depth, 0, 1); err != nil {
			return err
		}

		cfg.depth = depth

		return nil
	}
}

// WithChorusCentreDelayMs sets the centre delay in [0, 100] ms.
func WithChorusCentreDelayMs(ms float64) ChorusOption {
	return func(cfg *chorusConfig) error {
		if err := core.ValidateRange("chorus", "centre delay", ms, 0, maxChorusCentreDelay); err != nil {
			return err
		}

		cfg.centreDelayMs = ms

		return nil
	}
}

// WithChorusFeedback sets feedback in [-0.95, 0.95].
func WithChorusFeedback(fb float64) ChorusOption {
	return func(cfg *chorusConfig) error {
		if err := core.ValidateRange("chorus", "feedback", fb, -maxChorusFeedback, maxChorusFeedback); err != nil {
			return err
		}

		cfg.feedback = fb

		return nil
	}
}

// WithChorusMix sets the wet amount in [0, 1].
func WithChorusMix(mix float64) ChorusOption {
	return func(cfg *chorusConfig) error {
		if err := core.ValidateRange("chorus", "mix", mix, 0, 1); err != nil {
			return err
		}

		cfg.mix = mix

		return nil
	}
}

// Chorus is a single-voice modulated delay. Delay time follows
//
//	d(t) = centre * (1 + depth * sin(phase))
type Chorus struct {
	sampleRate float64
	cfg        chorusConfig

	centreSamples float64
	lfoPhase      float64
	lfoStep       float64

	line *delay.Line
}

// NewChorus creates a chorus.
func NewChorus(sampleRate float64, opts ...ChorusOption) (*Chorus, error) {
	if err := core.ValidateSampleRate("chorus", sampleRate); err != nil {
		return nil, err
	}

	cfg := chorusConfig{
		rateHz:        defaultChorusRateHz,
		depth:         defaultChorusDepth,
		centreDelayMs: defaultChorusCentreDelayMs,
		feedback:      defaultChorusFeedback,
		mix:           defaultChorusMix,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	centre := cfg.centreDelayMs * 0.001 * sampleRate

	line, err := delay.New(int(math.Ceil(2*centre)) + 4)
	if err != nil {
		return nil, err
	}

	return &Chorus{
		sampleRate:    sampleRate,
		cfg:           cfg,
		centreSamples: centre,
		lfoStep:       2 * math.Pi * cfg.rateHz / sampleRate,
		line:          line,
	}, nil
}

// RateHz returns the LFO rate.
func (c *Chorus) RateHz() float64 { return c.cfg.rateHz }

// Mix returns the wet amount.
func (c *Chorus) Mix() float64 { return c.cfg.mix }

// Reset clears delay state and modulation phase.
func (c *Chorus) Reset() {
	c.line.Reset()
	c.lfoPhase = 0
}

// ProcessSample processes one sample.
func (c *Chorus) ProcessSample(input float64) float64 {
	wet := c.line.ReadFractional(c.centreSamples * (1 + c.cfg.depth*math.Sin(c.lfoPhase)))
	c.line.Write(input + wet*c.cfg.feedback)

	c.lfoPhase += c.lfoStep
	if c.lfoPhase >= 2*math.Pi {
		c.lfoPhase -= 2 * math.Pi
	}

	return input*(1-c.cfg.mix) + wet*c.cfg.mix
}

// ProcessInPlace applies chorus to buf in place.
func (c *Chorus) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = c.ProcessSample(buf[i])
	}
}
