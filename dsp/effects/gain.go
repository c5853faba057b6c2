package effects

import (
	"fmt"
	"math"

	"github.com/dscruggs/lyre-studio/dsp/core"
)

const (
	minGainDB = -120.0
	maxGainDB = 60.0
)

// Gain scales the signal by a fixed amount in decibels.
type Gain struct {
	gainDB float64
	linear float64
}

// NewGain creates a gain stage.
func NewGain(gainDB float64) (*Gain, error) {
	if gainDB < minGainDB || gainDB > maxGainDB || math.IsNaN(gainDB) {
		return nil, fmt.Errorf("gain must be in [%g, %g] dB: %f", minGainDB, maxGainDB, gainDB)
	}

	return &Gain{gainDB: gainDB, linear: core.DBToLinear(gainDB)}, nil
}

// GainDB returns the gain in dB.
func (g *Gain) GainDB() float64 { return g.gainDB }

// ProcessSample processes one sample.
func (g *Gain) ProcessSample(input float64) float64 {
	return input * g.linear
}

// ProcessInPlace applies the gain to buf in place.
func (g *Gain) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] *= g.linear
	}
}

// Reset is a no-op; Gain is stateless.
func (g *Gain) Reset() {}
