package dynamics

import (
	"fmt"
	"math"

	"github.com/dscruggs/lyre-studio/dsp/core"
)

const (
	defaultGateThresholdDB = -100.0
	defaultGateRatio       = 10.0
	defaultGateAttackMs    = 1.0
	defaultGateReleaseMs   = 100.0

	minGateRatio = 1.0
	maxGateRatio = 100.0
)

// Gate is a downward expander driven by an RMS envelope. Below the
// threshold the output falls ratio dB per input dB.
type Gate struct {
	thresholdDB float64
	threshold   float64
	ratio       float64

	det  detector
	gain gainBuffer
}

// NewGate creates a noise gate.
func NewGate(sampleRate float64) (*Gate, error) {
	if err := core.ValidateSampleRate("noise gate", sampleRate); err != nil {
		return nil, err
	}

	g := &Gate{det: detector{sampleRate: sampleRate, meanSquare: true}}
	if err := g.SetThreshold(defaultGateThresholdDB); err != nil {
		return nil, err
	}

	if err := g.SetRatio(defaultGateRatio); err != nil {
		return nil, err
	}

	if err := g.SetTimes(defaultGateAttackMs, defaultGateReleaseMs); err != nil {
		return nil, err
	}

	return g, nil
}

// SetThreshold sets the opening threshold in dBFS.
func (g *Gate) SetThreshold(dB float64) error {
	if err := validateThreshold("noise gate", dB); err != nil {
		return err
	}

	g.thresholdDB = dB
	g.threshold = core.DBToLinear(dB)

	return nil
}

// SetRatio sets the expansion ratio in [1, 100].
func (g *Gate) SetRatio(ratio float64) error {
	if ratio < minGateRatio || ratio > maxGateRatio || math.IsNaN(ratio) {
		return fmt.Errorf("noise gate ratio must be in [%g, %g]: %f", minGateRatio, maxGateRatio, ratio)
	}

	g.ratio = ratio

	return nil
}

// SetTimes sets attack and release in milliseconds.
func (g *Gate) SetTimes(attackMs, releaseMs float64) error {
	return g.det.setTimes(attackMs, releaseMs)
}

// Threshold returns the threshold in dBFS.
func (g *Gate) Threshold() float64 { return g.thresholdDB }

// Reset clears the envelope.
func (g *Gate) Reset() { g.det.reset() }

func (g *Gate) gainFor(env float64) float64 {
	if env >= g.threshold {
		return 1
	}

	if env <= 0 {
		return 0
	}

	return math.Pow(env/g.threshold, g.ratio-1)
}

// ProcessSample processes one sample.
func (g *Gate) ProcessSample(input float64) float64 {
	return input * g.gainFor(g.det.next(input))
}

// ProcessInPlace gates buf in place.
func (g *Gate) ProcessInPlace(buf []float64) {
	gains := g.gain.get(len(buf))
	for i, x := range buf {
		gains[i] = g.gainFor(g.det.next(x))
	}

	applyGains(buf, gains)
}
