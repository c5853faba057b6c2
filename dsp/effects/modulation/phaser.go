package modulation

import (
	"math"

	"github.com/dscruggs/lyre-studio/dsp/core"
)

const (
	phaserStages             = 6
	phaserOctaveRange        = 2.0
	phaserMinFreqHz          = 20.0
	phaserNyquistSafetyRatio = 0.49
	maxPhaserFeedback        = 0.99
)

// PhaserOption mutates phaser construction parameters.
type PhaserOption func(*phaserConfig) error

type phaserConfig struct {
	rateHz   float64
	depth    float64
	centreHz float64
	feedback float64
	mix      float64
}

// WithPhaserRateHz sets modulation speed in [0, 100] Hz.
func WithPhaserRateHz(hz float64) PhaserOption {
	return func(cfg *phaserConfig) error {
		if err := core.ValidateRange("phaser", "rate", hz, 0, 100); err != nil {
			return err
		}

		cfg.rateHz = hz

		return nil
	}
}

// WithPhaserDepth sets sweep depth in [0, 1]; 1 sweeps two octaves
// either side of the centre frequency.
func WithPhaserDepth(depth float64) PhaserOption {
	return func(cfg *phaserConfig) error {
		if err := core.ValidateRange("phaser", "depth", depth, 0, 1); err != nil {
			return err
		}

		cfg.depth = depth

		return nil
	}
}

// WithPhaserCentreHz sets the sweep centre frequency.
func WithPhaserCentreHz(hz float64) PhaserOption {
	return func(cfg *phaserConfig) error {
		if err := core.ValidateRange("phaser", "centre frequency", hz, phaserMinFreqHz, 20000); err != nil {
			return err
		}

		cfg.centreHz = hz

		return nil
	}
}

// WithPhaserFeedback sets feedback amount in [-0.99, 0.99].
func WithPhaserFeedback(fb float64) PhaserOption {
	return func(cfg *phaserConfig) error {
		if err := core.ValidateRange("phaser", "feedback", fb, -maxPhaserFeedback, maxPhaserFeedback); err != nil {
			return err
		}

		cfg.feedback = fb

		return nil
	}
}

// WithPhaserMix sets wet amount in [0, 1].
func WithPhaserMix(mix float64) PhaserOption {
	return func(cfg *phaserConfig) error {
		if err := core.ValidateRange("phaser", "mix", mix, 0, 1); err != nil {
			return err
		}

		cfg.mix = mix

		return nil
	}
}

type allpassStage struct {
	x1, y1 float64
}

func (s *allpassStage) process(x, a float64) float64 {
	y := a*x + s.x1 - a*s.y1
	s.x1 = x
	s.y1 = y

	return y
}

// Phaser is a six-stage allpass phaser whose break frequency is swept
// exponentially around a centre frequency.
type Phaser struct {
	sampleRate float64
	cfg        phaserConfig

	lfoPhase       float64
	feedbackSample float64
	stages         [phaserStages]allpassStage
}

// NewPhaser creates a phaser.
func NewPhaser(sampleRate float64, opts ...PhaserOption) (*Phaser, error) {
	if err := core.ValidateSampleRate("phaser", sampleRate); err != nil {
		return nil, err
	}

	cfg := phaserConfig{rateHz: 1, depth: 0.5, centreHz: 1300, feedback: 0, mix: 0.5}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Phaser{sampleRate: sampleRate, cfg: cfg}, nil
}

// CentreHz returns the sweep centre frequency.
func (p *Phaser) CentreHz() float64 { return p.cfg.centreHz }

// Reset clears allpass and modulation state.
func (p *Phaser) Reset() {
	p.stages = [phaserStages]allpassStage{}
	p.feedbackSample = 0
	p.lfoPhase = 0
}

// ProcessSample processes one sample.
func (p *Phaser) ProcessSample(input float64) float64 {
	freq := p.cfg.centreHz * math.Exp2(phaserOctaveRange*p.cfg.depth*math.Sin(p.lfoPhase))
	coef := allpassCoefficient(freq, p.sampleRate)

	y := input + p.feedbackSample*p.cfg.feedback
	for i := range p.stages {
		y = p.stages[i].process(y, coef)
	}

	p.feedbackSample = core.FlushDenormals(y)

	p.lfoPhase += 2 * math.Pi * p.cfg.rateHz / p.sampleRate
	if p.lfoPhase >= 2*math.Pi {
		p.lfoPhase -= 2 * math.Pi
	}

	return input*(1-p.cfg.mix) + y*p.cfg.mix
}

// ProcessInPlace applies phasing to buf in place.
func (p *Phaser) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = p.ProcessSample(buf[i])
	}
}

func allpassCoefficient(freqHz, sampleRate float64) float64 {
	freqHz = core.Clamp(freqHz, 1, phaserNyquistSafetyRatio*sampleRate)

	g := math.Tan(math.Pi * freqHz / sampleRate)
	if math.IsInf(g, 0) || math.IsNaN(g) {
		return 0
	}

	return (1 - g) / (1 + g)
}
