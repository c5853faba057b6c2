package effects

import (
	"fmt"
	"math"

	"github.com/dscruggs/lyre-studio/dsp/core"
)

// Clipper hard-clips samples to a threshold given in dBFS.
type Clipper struct {
	thresholdDB float64
	threshold   float64
}

// NewClipper creates a hard clipper. Thresholds above +24 dBFS are rejected.
func NewClipper(thresholdDB float64) (*Clipper, error) {
	if thresholdDB > 24 || math.IsNaN(thresholdDB) || math.IsInf(thresholdDB, 0) {
		return nil, fmt.Errorf("clipping threshold must be finite and <= 24 dB: %f", thresholdDB)
	}

	return &Clipper{thresholdDB: thresholdDB, threshold: core.DBToLinear(thresholdDB)}, nil
}

// ThresholdDB returns the clip threshold in dBFS.
func (c *Clipper) ThresholdDB() float64 { return c.thresholdDB }

// ProcessSample processes one sample.
func (c *Clipper) ProcessSample(input float64) float64 {
	return core.Clamp(input, -c.threshold, c.threshold)
}

// ProcessInPlace clips buf in place.
func (c *Clipper) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = core.Clamp(x, -c.threshold, c.threshold)
	}
}

// Reset is a no-op; Clipper is stateless.
func (c *Clipper) Reset() {}
