// Package ladder implements a nonlinear four-pole transistor ladder filter
// using Huovilainen's tuning and resonance compensation.
package ladder

import (
	"fmt"
	"math"
)

const (
	defaultCutoffHz  = 200.0
	defaultResonance = 0.0
	defaultDrive     = 1.0

	thermalVoltage = 1.22070313
	maxFeedback    = 4.0
	minCutoffHz    = 1.0
	maxDrive       = 100.0
	stateLimit     = 32.0
)

// Mode selects which ladder taps form the output.
type Mode int

const (
	// ModeLPF12 is a two-pole lowpass.
	ModeLPF12 Mode = iota
	// ModeLPF24 is a four-pole lowpass.
	ModeLPF24
	// ModeHPF12 is a two-pole highpass.
	ModeHPF12
	// ModeHPF24 is a four-pole highpass.
	ModeHPF24
)

type config struct {
	mode      Mode
	cutoffHz  float64
	resonance float64
	drive     float64
}

// Option mutates constructor configuration.
type Option func(*config) error

// WithMode selects the output response.
func WithMode(mode Mode) Option {
	return func(cfg *config) error {
		if mode < ModeLPF12 || mode > ModeHPF24 {
			return fmt.Errorf("ladder: invalid mode: %d", mode)
		}

		cfg.mode = mode

		return nil
	}
}

// WithCutoffHz sets the cutoff frequency.
func WithCutoffHz(hz float64) Option {
	return func(cfg *config) error {
		if hz < minCutoffHz || math.IsNaN(hz) || math.IsInf(hz, 0) {
			return fmt.Errorf("ladder: cutoff must be >= %g Hz: %f", minCutoffHz, hz)
		}

		cfg.cutoffHz = hz

		return nil
	}
}

// WithResonance sets resonance in [0, 1]; 1 is the edge of self-oscillation.
func WithResonance(r float64) Option {
	return func(cfg *config) error {
		if r < 0 || r > 1 || math.IsNaN(r) {
			return fmt.Errorf("ladder: resonance must be in [0, 1]: %f", r)
		}

		cfg.resonance = r

		return nil
	}
}

// WithDrive sets the input drive in [1, 100].
func WithDrive(drive float64) Option {
	return func(cfg *config) error {
		if drive < 1 || drive > maxDrive || math.IsNaN(drive) {
			return fmt.Errorf("ladder: drive must be in [1, %g]: %f", maxDrive, drive)
		}

		cfg.drive = drive

		return nil
	}
}

// Filter is a mono ladder filter instance.
type Filter struct {
	sampleRate float64
	mode       Mode
	cutoffHz   float64
	resonance  float64
	drive      float64

	coefficient float64
	feedback    float64

	stage      [4]float64
	tanhStage  [3]float64
	prevOutput float64
}

// New creates a ladder filter.
func New(sampleRate float64, opts ...Option) (*Filter, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("ladder: sample rate must be > 0: %f", sampleRate)
	}

	cfg := config{
		mode:      ModeLPF12,
		cutoffHz:  defaultCutoffHz,
		resonance: defaultResonance,
		drive:     defaultDrive,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.cutoffHz >= sampleRate/2 {
		return nil, fmt.Errorf("ladder: cutoff must be < Nyquist (%f Hz): %f", sampleRate/2, cfg.cutoffHz)
	}

	f := &Filter{
		sampleRate: sampleRate,
		mode:       cfg.mode,
		cutoffHz:   cfg.cutoffHz,
		resonance:  cfg.resonance,
		drive:      cfg.drive,
	}
	f.rebuild()

	return f, nil
}

// CutoffHz returns the cutoff frequency.
func (f *Filter) CutoffHz() float64 { return f.cutoffHz }

// Resonance returns resonance in [0, 1].
func (f *Filter) Resonance() float64 { return f.resonance }

// Drive returns the input drive.
func (f *Filter) Drive() float64 { return f.drive }

// Reset clears ladder state.
func (f *Filter) Reset() {
	f.stage = [4]float64{}
	f.tanhStage = [3]float64{}
	f.prevOutput = 0
}

// ProcessSample processes one sample.
func (f *Filter) ProcessSample(input float64) float64 {
	if math.IsNaN(input) || math.IsInf(input, 0) {
		input = 0
	}

	s := &f.stage
	t := &f.tanhStage

	fb := 0.5 * (s[3] + f.prevOutput)
	u := input*f.drive - f.feedback*fb

	const shape = 0.5 / thermalVoltage

	g := f.coefficient
	tIn := math.Tanh(shape * u)

	s[0] = clipState(s[0] + g*(tIn-t[0]))
	t0 := math.Tanh(shape * s[0])
	s[1] = clipState(s[1] + g*(t0-t[1]))
	t1 := math.Tanh(shape * s[1])
	s[2] = clipState(s[2] + g*(t1-t[2]))
	t2 := math.Tanh(shape * s[2])
	s[3] = clipState(s[3] + g*(t2-math.Tanh(shape*s[3])))

	t[0], t[1], t[2] = t0, t1, t2
	f.prevOutput = s[3]

	var out float64

	switch f.mode {
	case ModeLPF24:
		out = s[3]
	case ModeHPF12:
		out = u - 2*s[0] + s[1]
	case ModeHPF24:
		out = u - 4*s[0] + 6*s[1] - 4*s[2] + s[3]
	default:
		out = s[1]
	}

	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0
	}

	return out
}

// ProcessInPlace processes a mono buffer in place.
func (f *Filter) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i])
	}
}

func (f *Filter) rebuild() {
	fc := f.cutoffHz / f.sampleRate

	fcr := 1.8730*fc*fc*fc + 0.4955*fc*fc - 0.6490*fc + 0.9988
	if fcr < 0 {
		fcr = 0
	}

	// Scaled so the small-signal stage gain equals the one-pole coefficient.
	f.coefficient = 2 * thermalVoltage * (1 - math.Exp(-2*math.Pi*fcr*fc))

	resonanceComp := -3.9364*fc*fc + 1.8409*fc + 0.9968
	if resonanceComp < 0 {
		resonanceComp = 0
	}

	f.feedback = maxFeedback * f.resonance * resonanceComp
}

func clipState(value float64) float64 {
	if value > stateLimit {
		return stateLimit
	}

	if value < -stateLimit {
		return -stateLimit
	}

	return value
}
