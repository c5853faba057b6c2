package effects

import (
	"fmt"
	"math"
)

const (
	minBitCrusherBitDepth = 1
	maxBitCrusherBitDepth = 32
)

// BitCrusher reduces amplitude resolution by snapping samples to a grid
// of 2^bitDepth levels across [-1, 1]. Values outside [-1, 1] are
// quantized but not clipped.
type BitCrusher struct {
	bitDepth int
	levels   float64
}

// NewBitCrusher creates a bit crusher with an integer bit depth in [1, 32].
func NewBitCrusher(bitDepth int) (*BitCrusher, error) {
	if bitDepth < minBitCrusherBitDepth || bitDepth > maxBitCrusherBitDepth {
		return nil, fmt.Errorf("bit crusher bit depth must be in [%d, %d]: %d",
			minBitCrusherBitDepth, maxBitCrusherBitDepth, bitDepth)
	}

	return &BitCrusher{
		bitDepth: bitDepth,
		levels:   math.Exp2(float64(bitDepth)) / 2,
	}, nil
}

// BitDepth returns the quantization bit depth.
func (bc *BitCrusher) BitDepth() int { return bc.bitDepth }

// ProcessSample quantizes one sample.
func (bc *BitCrusher) ProcessSample(input float64) float64 {
	return math.Round(input*bc.levels) / bc.levels
}

// ProcessInPlace quantizes buf in place.
func (bc *BitCrusher) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = math.Round(x*bc.levels) / bc.levels
	}
}

// Reset is a no-op; BitCrusher is stateless.
func (bc *BitCrusher) Reset() {}
