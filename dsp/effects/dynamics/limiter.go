package dynamics

import (
	"github.com/dscruggs/lyre-studio/dsp/core"
)

const (
	defaultLimiterThresholdDB = -10.0
	defaultLimiterReleaseMs   = 100.0
)

// Limiter is a brickwall peak limiter: the envelope attacks instantly,
// releases exponentially, and a final clip guarantees no output sample
// exceeds the threshold.
type Limiter struct {
	thresholdDB float64
	threshold   float64

	det  detector
	gain gainBuffer
}

// NewLimiter creates a limiter.
func NewLimiter(sampleRate float64) (*Limiter, error) {
	if err := core.ValidateSampleRate("limiter", sampleRate); err != nil {
		return nil, err
	}

	l := &Limiter{det: detector{sampleRate: sampleRate}}
	if err := l.SetThreshold(defaultLimiterThresholdDB); err != nil {
		return nil, err
	}

	if err := l.SetRelease(defaultLimiterReleaseMs); err != nil {
		return nil, err
	}

	return l, nil
}

// SetThreshold sets the ceiling in dBFS.
func (l *Limiter) SetThreshold(dB float64) error {
	if err := validateThreshold("limiter", dB); err != nil {
		return err
	}

	l.thresholdDB = dB
	l.threshold = core.DBToLinear(dB)

	return nil
}

// SetRelease sets the release time in milliseconds.
func (l *Limiter) SetRelease(ms float64) error {
	return l.det.setTimes(0, ms)
}

// Threshold returns the ceiling in dBFS.
func (l *Limiter) Threshold() float64 { return l.thresholdDB }

// Reset clears the envelope.
func (l *Limiter) Reset() { l.det.reset() }

func (l *Limiter) gainFor(env float64) float64 {
	if env <= l.threshold {
		return 1
	}

	return l.threshold / env
}

// ProcessSample processes one sample.
func (l *Limiter) ProcessSample(input float64) float64 {
	y := input * l.gainFor(l.det.next(input))
	return core.Clamp(y, -l.threshold, l.threshold)
}

// ProcessInPlace limits buf in place.
func (l *Limiter) ProcessInPlace(buf []float64) {
	gains := l.gain.get(len(buf))
	for i, x := range buf {
		gains[i] = l.gainFor(l.det.next(x))
	}

	applyGains(buf, gains)

	for i, y := range buf {
		buf[i] = core.Clamp(y, -l.threshold, l.threshold)
	}
}
