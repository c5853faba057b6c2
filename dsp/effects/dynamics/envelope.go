package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/dscruggs/lyre-studio/dsp/core"
)

const (
	minAttackMs  = 0.0
	maxAttackMs  = 1000.0
	minReleaseMs = 0.0
	maxReleaseMs = 5000.0
)

// detector is a peak or mean-square envelope follower with separate
// attack and release ballistics.
type detector struct {
	sampleRate float64
	attackMs   float64
	releaseMs  float64
	meanSquare bool

	attackCoeff  float64
	releaseCoeff float64
	env          float64
}

func (d *detector) setTimes(attackMs, releaseMs float64) error {
	if err := core.ValidateRange("dynamics", "attack", attackMs, minAttackMs, maxAttackMs); err != nil {
		return err
	}

	if err := core.ValidateRange("dynamics", "release", releaseMs, minReleaseMs, maxReleaseMs); err != nil {
		return err
	}

	d.attackMs = attackMs
	d.releaseMs = releaseMs
	d.attackCoeff = core.MsToCoeff(attackMs, d.sampleRate)
	d.releaseCoeff = core.MsToCoeff(releaseMs, d.sampleRate)

	return nil
}

// next feeds one sample and returns the envelope as linear amplitude.
func (d *detector) next(x float64) float64 {
	level := math.Abs(x)
	if d.meanSquare {
		level = x * x
	}

	coeff := d.releaseCoeff
	if level > d.env {
		coeff = d.attackCoeff
	}

	d.env = core.FlushDenormals(level + coeff*(d.env-level))

	if d.meanSquare {
		return math.Sqrt(d.env)
	}

	return d.env
}

func (d *detector) reset() { d.env = 0 }

// gainBuffer holds the per-block gain curve.
type gainBuffer struct {
	gains []float64
}

func (g *gainBuffer) get(n int) []float64 {
	if cap(g.gains) < n {
		g.gains = make([]float64, n)
	}

	return g.gains[:n]
}

// applyGains multiplies buf by gains sample by sample.
func applyGains(buf, gains []float64) {
	vecmath.MulBlockInPlace(buf, gains)
}

func validateThreshold(owner string, thresholdDB float64) error {
	if thresholdDB > 24 || math.IsNaN(thresholdDB) || math.IsInf(thresholdDB, 0) {
		return fmt.Errorf("%s threshold must be finite and <= 24 dB: %f", owner, thresholdDB)
	}

	return nil
}
