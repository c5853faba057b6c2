package resample

import (
	"errors"
	"math"
)

var (
	// ErrInvalidRatio indicates an invalid up/down ratio.
	ErrInvalidRatio = errors.New("resample: invalid ratio")
	// ErrInvalidRate indicates an invalid input/output sample rate.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
)

// Quality controls default anti-aliasing filter settings.
type Quality int

const (
	// QualityFast prioritizes lower CPU usage.
	QualityFast Quality = iota
	// QualityBalanced is the default quality/performance trade-off.
	QualityBalanced
	// QualityBest prioritizes stopband attenuation and passband flatness.
	QualityBest
)

// Profile exposes default filter parameters for each quality mode.
type Profile struct {
	HalfTaps    int
	CutoffScale float64
	KaiserBeta  float64
}

// QualityProfile returns the default profile used by quality mode q.
func QualityProfile(q Quality) Profile {
	switch q {
	case QualityFast:
		return Profile{HalfTaps: 8, CutoffScale: 0.88, KaiserBeta: 5.0}
	case QualityBest:
		return Profile{HalfTaps: 32, CutoffScale: 0.96, KaiserBeta: 9.0}
	default:
		return Profile{HalfTaps: 16, CutoffScale: 0.92, KaiserBeta: 7.5}
	}
}

type config struct {
	quality Quality
	maxDen  int
}

// Option configures the resampler.
type Option func(*config)

// WithQuality selects a predefined anti-aliasing quality mode.
func WithQuality(q Quality) Option {
	return func(cfg *config) {
		cfg.quality = q
	}
}

// WithMaxDenominator caps denominator size for rate-ratio approximation.
func WithMaxDenominator(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxDen = n
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{quality: QualityBalanced, maxDen: 4096}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Resampler performs rational sample-rate conversion by up/down.
type Resampler struct {
	up   int
	down int

	quality  Quality
	halfTaps int
	// phases[p][k] weights input sample i+k-halfTaps+1 for an output whose
	// position falls p/up of the way past input sample i.
	phases [][]float64
}

// NewRational creates a resampler for ratio up/down.
func NewRational(up, down int, opts ...Option) (*Resampler, error) {
	if up <= 0 || down <= 0 {
		return nil, ErrInvalidRatio
	}

	g := gcd(up, down)
	up /= g
	down /= g

	cfg := newConfig(opts)
	p := QualityProfile(cfg.quality)

	cutoff := p.CutoffScale * math.Min(1, float64(up)/float64(down))
	halfTaps := int(math.Ceil(float64(p.HalfTaps) / math.Min(1, float64(up)/float64(down))))

	phases, err := designPhases(up, halfTaps, cutoff, p.KaiserBeta)
	if err != nil {
		return nil, err
	}

	return &Resampler{
		up:       up,
		down:     down,
		quality:  cfg.quality,
		halfTaps: halfTaps,
		phases:   phases,
	}, nil
}

// NewForRates creates a resampler by approximating outRate/inRate as a ratio.
func NewForRates(inRate, outRate float64, opts ...Option) (*Resampler, error) {
	if inRate <= 0 || outRate <= 0 || math.IsNaN(inRate) || math.IsNaN(outRate) ||
		math.IsInf(inRate, 0) || math.IsInf(outRate, 0) {
		return nil, ErrInvalidRate
	}

	cfg := newConfig(opts)
	up, down := approximateRatio(outRate/inRate, cfg.maxDen)

	return NewRational(up, down, opts...)
}

// Convert is a one-shot helper converting input from inRate to outRate.
func Convert(input []float64, inRate, outRate float64, opts ...Option) ([]float64, error) {
	if inRate == outRate && inRate > 0 {
		return append([]float64(nil), input...), nil
	}

	r, err := NewForRates(inRate, outRate, opts...)
	if err != nil {
		return nil, err
	}

	return r.Process(input), nil
}

// OutputLen returns the number of samples Process produces for inputLen.
func (r *Resampler) OutputLen(inputLen int) int {
	if inputLen <= 0 {
		return 0
	}

	return (inputLen*r.up + r.down - 1) / r.down
}

// Process converts a whole block. Samples outside the block are treated
// as silence.
func (r *Resampler) Process(input []float64) []float64 {
	n := len(input)
	out := make([]float64, r.OutputLen(n))

	for m := range out {
		pos := m * r.down
		i := pos / r.up
		taps := r.phases[pos%r.up]
		start := i - r.halfTaps + 1

		var y float64

		for k, c := range taps {
			idx := start + k
			if idx < 0 || idx >= n {
				continue
			}

			y += c * input[idx]
		}

		out[m] = y
	}

	return out
}

// Ratio returns reduced up/down conversion factors.
func (r *Resampler) Ratio() (up, down int) {
	return r.up, r.down
}

// Quality returns the configured quality mode.
func (r *Resampler) Quality() Quality {
	return r.quality
}

// TapsPerPhase returns the number of input samples weighted per output.
func (r *Resampler) TapsPerPhase() int {
	return 2 * r.halfTaps
}
