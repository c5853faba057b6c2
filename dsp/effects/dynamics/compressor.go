package dynamics

import (
	"fmt"
	"math"

	"github.com/dscruggs/lyre-studio/dsp/core"
)

const (
	defaultCompressorThresholdDB = 0.0
	defaultCompressorRatio       = 1.0
	defaultCompressorAttackMs    = 1.0
	defaultCompressorReleaseMs   = 100.0

	minCompressorRatio = 1.0
	maxCompressorRatio = 100.0
)

// Compressor is a hard-knee peak compressor. Above the threshold the
// output level rises 1/ratio dB per input dB.
type Compressor struct {
	thresholdDB float64
	threshold   float64
	ratio       float64

	det  detector
	gain gainBuffer
}

// NewCompressor creates a compressor with a transparent 1:1 ratio.
func NewCompressor(sampleRate float64) (*Compressor, error) {
	if err := core.ValidateSampleRate("compressor", sampleRate); err != nil {
		return nil, err
	}

	c := &Compressor{det: detector{sampleRate: sampleRate}}
	if err := c.SetThreshold(defaultCompressorThresholdDB); err != nil {
		return nil, err
	}

	if err := c.SetRatio(defaultCompressorRatio); err != nil {
		return nil, err
	}

	if err := c.det.setTimes(defaultCompressorAttackMs, defaultCompressorReleaseMs); err != nil {
		return nil, err
	}

	return c, nil
}

// SetThreshold sets the threshold in dBFS.
func (c *Compressor) SetThreshold(dB float64) error {
	if err := validateThreshold("compressor", dB); err != nil {
		return err
	}

	c.thresholdDB = dB
	c.threshold = core.DBToLinear(dB)

	return nil
}

// SetRatio sets the compression ratio in [1, 100].
func (c *Compressor) SetRatio(ratio float64) error {
	if ratio < minCompressorRatio || ratio > maxCompressorRatio || math.IsNaN(ratio) {
		return fmt.Errorf("compressor ratio must be in [%g, %g]: %f",
			minCompressorRatio, maxCompressorRatio, ratio)
	}

	c.ratio = ratio

	return nil
}

// SetTimes sets attack and release in milliseconds.
func (c *Compressor) SetTimes(attackMs, releaseMs float64) error {
	return c.det.setTimes(attackMs, releaseMs)
}

// Threshold returns the threshold in dBFS.
func (c *Compressor) Threshold() float64 { return c.thresholdDB }

// Ratio returns the compression ratio.
func (c *Compressor) Ratio() float64 { return c.ratio }

// Reset clears the envelope.
func (c *Compressor) Reset() { c.det.reset() }

func (c *Compressor) gainFor(env float64) float64 {
	if env <= c.threshold || c.ratio == 1 {
		return 1
	}

	return math.Pow(env/c.threshold, 1/c.ratio-1)
}

// ProcessSample processes one sample.
func (c *Compressor) ProcessSample(input float64) float64 {
	return input * c.gainFor(c.det.next(input))
}

// ProcessInPlace compresses buf in place.
func (c *Compressor) ProcessInPlace(buf []float64) {
	gains := c.gain.get(len(buf))
	for i, x := range buf {
		gains[i] = c.gainFor(c.det.next(x))
	}

	applyGains(buf, gains)
}
