// Package delay provides the circular sample buffer shared by the
// time-based effects.
package delay

import (
	"fmt"

	"github.com/dscruggs/lyre-studio/dsp/core"
	"github.com/dscruggs/lyre-studio/dsp/interp"
)

// Line is a circular delay line. Read offsets count back from the most
// recent write: 1 is the newest sample, Len() the oldest.
type Line struct {
	buf   []float64
	write int
}

// New returns a zeroed line holding size samples.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay line size must be > 0: %d", size)
	}

	return &Line{buf: make([]float64, size)}, nil
}

// Len returns the capacity in samples.
func (l *Line) Len() int { return len(l.buf) }

// Write pushes one sample, overwriting the oldest.
func (l *Line) Write(x float64) {
	l.buf[l.write] = core.FlushDenormals(x)

	l.write++
	if l.write >= len(l.buf) {
		l.write = 0
	}
}

// Read returns the sample written delay steps ago, with delay clamped to
// [1, Len()].
func (l *Line) Read(delay int) float64 {
	if delay < 1 {
		delay = 1
	} else if delay > len(l.buf) {
		delay = len(l.buf)
	}

	idx := l.write - delay
	if idx < 0 {
		idx += len(l.buf)
	}

	return l.buf[idx]
}

// ReadFractional reads a fractional delay with 4-point Hermite
// interpolation. The delay is clamped to [1, Len()-3], so lines shorter
// than four samples always read the newest sample.
func (l *Line) ReadFractional(delay float64) float64 {
	maxDelay := float64(len(l.buf) - 3)
	if maxDelay < 1 {
		return l.Read(1)
	}

	delay = core.Clamp(delay, 1, maxDelay)

	p := int(delay)
	t := delay - float64(p)

	return interp.Hermite4(t, l.Read(p-1), l.Read(p), l.Read(p+1), l.Read(p+2))
}

// Reset zeroes the line.
func (l *Line) Reset() {
	clear(l.buf)
	l.write = 0
}
