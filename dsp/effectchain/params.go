package effectchain

import (
	"fmt"
	"math"

	"github.com/dscruggs/lyre-studio/dsp/core"
	"github.com/dscruggs/lyre-studio/dsp/effects"
	"github.com/dscruggs/lyre-studio/dsp/effects/dynamics"
	"github.com/dscruggs/lyre-studio/dsp/effects/modulation"
	"github.com/dscruggs/lyre-studio/dsp/effects/pitch"
	"github.com/dscruggs/lyre-studio/dsp/filter/biquad"
	"github.com/dscruggs/lyre-studio/dsp/filter/ladder"
	"github.com/dscruggs/lyre-studio/dsp/resample"
)

// paramSet holds resolved numeric parameters for one effect.
type paramSet map[string]float64

// get returns the named value, or def if it is missing or not finite.
func (p paramSet) get(key string, def float64) float64 {
	v, ok := p[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}

	return v
}

// getInt is get for integer parameters, clamped to the int32 range.
func (p paramSet) getInt(key string, def int) int {
	v := p.get(key, float64(def))

	return int(math.Max(math.MinInt32, math.Min(math.MaxInt32, math.Floor(v+0.5))))
}

// planeFunc processes one channel in place.
type planeFunc func(plane []float64) error

// stereoFunc processes a left/right pair in place.
type stereoFunc func(left, right []float64) error

// Settings is the typed parameter set of one effect kind. Implementations
// live in this package only.
type Settings interface {
	Kind() Kind
	// channel instantiates a fresh primitive for one plane at sampleRate.
	channel(sampleRate float64) (planeFunc, error)
}

// stereoSettings is implemented by kinds with a true stereo primitive.
type stereoSettings interface {
	stereo(sampleRate float64) (stereoFunc, error)
}

type inPlaceProcessor interface {
	ProcessInPlace(buf []float64)
}

func inPlace(p inPlaceProcessor) planeFunc {
	return func(plane []float64) error {
		p.ProcessInPlace(plane)
		return nil
	}
}

// decodeSettings maps resolved parameters onto the typed settings of kind.
// Missing parameters take the primitive's own default.
func decodeSettings(kind Kind, p paramSet) (Settings, error) {
	switch kind {
	case KindGain:
		return GainSettings{GainDB: p.get("gain_db", 1)}, nil
	case KindClipping:
		return ClippingSettings{ThresholdDB: p.get("threshold_db", -6)}, nil
	case KindDistortion:
		return DistortionSettings{DriveDB: p.get("drive_db", 25)}, nil
	case KindBitcrush:
		return BitcrushSettings{BitDepth: p.getInt("bit_depth", 8)}, nil
	case KindPitchShift:
		return PitchShiftSettings{Semitones: p.getInt("semitones", 0)}, nil
	case KindChorus:
		return ChorusSettings{
			RateHz:        p.get("rate_hz", 1),
			Depth:         p.get("depth", 0.25),
			CentreDelayMs: p.get("centre_delay_ms", 7),
			Feedback:      p.get("feedback", 0),
			Mix:           p.get("mix", 0.5),
		}, nil
	case KindPhaser:
		return PhaserSettings{
			RateHz:   p.get("rate_hz", 1),
			Depth:    p.get("depth", 0.5),
			CentreHz: p.get("centre_frequency_hz", 1300),
			Feedback: p.get("feedback", 0),
			Mix:      p.get("mix", 0.5),
		}, nil
	case KindReverb:
		return ReverbSettings{
			RoomSize:   p.get("room_size", 0.5),
			Damping:    p.get("damping", 0.5),
			WetLevel:   p.get("wet_level", 0.33),
			DryLevel:   p.get("dry_level", 0.4),
			Width:      p.get("width", 1),
			FreezeMode: p.get("freeze_mode", 0),
		}, nil
	case KindDelay:
		return DelaySettings{
			Seconds:  p.get("delay_seconds", 0.5),
			Feedback: p.get("feedback", 0),
			Mix:      p.get("mix", 0.5),
		}, nil
	case KindCompressor:
		return CompressorSettings{
			ThresholdDB: p.get("threshold_db", 0),
			Ratio:       p.get("ratio", 1),
			AttackMs:    p.get("attack_ms", 1),
			ReleaseMs:   p.get("release_ms", 100),
		}, nil
	case KindNoiseGate:
		return NoiseGateSettings{
			ThresholdDB: p.get("threshold_db", -100),
			Ratio:       p.get("ratio", 10),
			AttackMs:    p.get("attack_ms", 1),
			ReleaseMs:   p.get("release_ms", 100),
		}, nil
	case KindLimiter:
		return LimiterSettings{
			ThresholdDB: p.get("threshold_db", -10),
			ReleaseMs:   p.get("release_ms", 100),
		}, nil
	case KindHighpassFilter, KindLowpassFilter:
		return FilterSettings{kind: kind, CutoffHz: p.get("cutoff_frequency_hz", 50), Q: biquad.DefaultQ}, nil
	case KindHighShelfFilter, KindLowShelfFilter, KindPeakFilter:
		return FilterSettings{
			kind:     kind,
			CutoffHz: p.get("cutoff_frequency_hz", 440),
			GainDB:   p.get("gain_db", 0),
			Q:        p.get("q", biquad.DefaultQ),
		}, nil
	case KindLadderFilter:
		return LadderSettings{
			Mode:      ladder.Mode(p.getInt("mode", int(ladder.ModeLPF12))),
			CutoffHz:  p.get("cutoff_hz", 200),
			Resonance: p.get("resonance", 0),
			Drive:     p.get("drive", 1),
		}, nil
	case KindGSMFullRateCompressor:
		return GSMSettings{}, nil
	case KindMP3Compressor:
		return MP3Settings{VBRQuality: p.get("vbr_quality", 2)}, nil
	case KindResample:
		return ResampleSettings{
			TargetSampleRate: p.getInt("target_sample_rate", 8000),
			Quality:          resample.Quality(p.getInt("quality", int(resample.QualityBalanced))),
		}, nil
	default:
		return nil, fmt.Errorf("effectchain: no settings for kind %v", kind)
	}
}

// GainSettings configures KindGain.
type GainSettings struct{ GainDB float64 }

func (GainSettings) Kind() Kind { return KindGain }

func (s GainSettings) channel(float64) (planeFunc, error) {
	g, err := effects.NewGain(s.GainDB)
	if err != nil {
		return nil, err
	}

	return inPlace(g), nil
}

// ClippingSettings configures KindClipping.
type ClippingSettings struct{ ThresholdDB float64 }

func (ClippingSettings) Kind() Kind { return KindClipping }

func (s ClippingSettings) channel(float64) (planeFunc, error) {
	c, err := effects.NewClipper(s.ThresholdDB)
	if err != nil {
		return nil, err
	}

	return inPlace(c), nil
}

// DistortionSettings configures KindDistortion.
type DistortionSettings struct{ DriveDB float64 }

func (DistortionSettings) Kind() Kind { return KindDistortion }

func (s DistortionSettings) channel(float64) (planeFunc, error) {
	d, err := effects.NewDistortion(s.DriveDB)
	if err != nil {
		return nil, err
	}

	return inPlace(d), nil
}

// BitcrushSettings configures KindBitcrush.
type BitcrushSettings struct{ BitDepth int }

func (BitcrushSettings) Kind() Kind { return KindBitcrush }

func (s BitcrushSettings) channel(float64) (planeFunc, error) {
	b, err := effects.NewBitCrusher(s.BitDepth)
	if err != nil {
		return nil, err
	}

	return inPlace(b), nil
}

// PitchShiftSettings configures KindPitchShift.
type PitchShiftSettings struct{ Semitones int }

func (PitchShiftSettings) Kind() Kind { return KindPitchShift }

func (s PitchShiftSettings) channel(sampleRate float64) (planeFunc, error) {
	p, err := pitch.NewPitchShifter(sampleRate, s.Semitones)
	if err != nil {
		return nil, err
	}

	return inPlace(p), nil
}

// ChorusSettings configures KindChorus.
type ChorusSettings struct {
	RateHz        float64
	Depth         float64
	CentreDelayMs float64
	Feedback      float64
	Mix           float64
}

func (ChorusSettings) Kind() Kind { return KindChorus }

func (s ChorusSettings) channel(sampleRate float64) (planeFunc, error) {
	c, err := modulation.NewChorus(sampleRate,
		modulation.WithChorusRateHz(s.RateHz),
		modulation.WithChorusDepth(s.Depth),
		modulation.WithChorusCentreDelayMs(s.CentreDelayMs),
		modulation.WithChorusFeedback(s.Feedback),
		modulation.WithChorusMix(s.Mix),
	)
	if err != nil {
		return nil, err
	}

	return inPlace(c), nil
}

// PhaserSettings configures KindPhaser.
type PhaserSettings struct {
	RateHz   float64
	Depth    float64
	CentreHz float64
	Feedback float64
	Mix      float64
}

func (PhaserSettings) Kind() Kind { return KindPhaser }

func (s PhaserSettings) channel(sampleRate float64) (planeFunc, error) {
	p, err := modulation.NewPhaser(sampleRate,
		modulation.WithPhaserRateHz(s.RateHz),
		modulation.WithPhaserDepth(s.Depth),
		modulation.WithPhaserCentreHz(s.CentreHz),
		modulation.WithPhaserFeedback(s.Feedback),
		modulation.WithPhaserMix(s.Mix),
	)
	if err != nil {
		return nil, err
	}

	return inPlace(p), nil
}

// ReverbSettings configures KindReverb.
type ReverbSettings struct {
	RoomSize   float64
	Damping    float64
	WetLevel   float64
	DryLevel   float64
	Width      float64
	FreezeMode float64
}

func (ReverbSettings) Kind() Kind { return KindReverb }

func (s ReverbSettings) build(sampleRate float64) (*effects.Reverb, error) {
	return effects.NewReverb(sampleRate,
		effects.WithRoomSize(s.RoomSize),
		effects.WithDamping(s.Damping),
		effects.WithWetLevel(s.WetLevel),
		effects.WithDryLevel(s.DryLevel),
		effects.WithWidth(s.Width),
		effects.WithFreezeMode(s.FreezeMode),
	)
}

func (s ReverbSettings) channel(sampleRate float64) (planeFunc, error) {
	r, err := s.build(sampleRate)
	if err != nil {
		return nil, err
	}

	return inPlace(r), nil
}

func (s ReverbSettings) stereo(sampleRate float64) (stereoFunc, error) {
	r, err := s.build(sampleRate)
	if err != nil {
		return nil, err
	}

	return r.ProcessStereoInPlace, nil
}

// DelaySettings configures KindDelay.
type DelaySettings struct {
	Seconds  float64
	Feedback float64
	Mix      float64
}

func (DelaySettings) Kind() Kind { return KindDelay }

func (s DelaySettings) channel(sampleRate float64) (planeFunc, error) {
	d, err := effects.NewDelay(sampleRate,
		effects.WithDelaySeconds(s.Seconds),
		effects.WithDelayFeedback(s.Feedback),
		effects.WithDelayMix(s.Mix),
	)
	if err != nil {
		return nil, err
	}

	return inPlace(d), nil
}

// CompressorSettings configures KindCompressor.
type CompressorSettings struct {
	ThresholdDB float64
	Ratio       float64
	AttackMs    float64
	ReleaseMs   float64
}

func (CompressorSettings) Kind() Kind { return KindCompressor }

func (s CompressorSettings) channel(sampleRate float64) (planeFunc, error) {
	c, err := dynamics.NewCompressor(sampleRate)
	if err != nil {
		return nil, err
	}

	if err := c.SetThreshold(s.ThresholdDB); err != nil {
		return nil, err
	}

	if err := c.SetRatio(s.Ratio); err != nil {
		return nil, err
	}

	if err := c.SetTimes(s.AttackMs, s.ReleaseMs); err != nil {
		return nil, err
	}

	return inPlace(c), nil
}

// NoiseGateSettings configures KindNoiseGate.
type NoiseGateSettings struct {
	ThresholdDB float64
	Ratio       float64
	AttackMs    float64
	ReleaseMs   float64
}

func (NoiseGateSettings) Kind() Kind { return KindNoiseGate }

func (s NoiseGateSettings) channel(sampleRate float64) (planeFunc, error) {
	g, err := dynamics.NewGate(sampleRate)
	if err != nil {
		return nil, err
	}

	if err := g.SetThreshold(s.ThresholdDB); err != nil {
		return nil, err
	}

	if err := g.SetRatio(s.Ratio); err != nil {
		return nil, err
	}

	if err := g.SetTimes(s.AttackMs, s.ReleaseMs); err != nil {
		return nil, err
	}

	return inPlace(g), nil
}

// LimiterSettings configures KindLimiter.
type LimiterSettings struct {
	ThresholdDB float64
	ReleaseMs   float64
}

func (LimiterSettings) Kind() Kind { return KindLimiter }

func (s LimiterSettings) channel(sampleRate float64) (planeFunc, error) {
	l, err := dynamics.NewLimiter(sampleRate)
	if err != nil {
		return nil, err
	}

	if err := l.SetThreshold(s.ThresholdDB); err != nil {
		return nil, err
	}

	if err := l.SetRelease(s.ReleaseMs); err != nil {
		return nil, err
	}

	return inPlace(l), nil
}

// FilterSettings configures the biquad kinds: highpass, lowpass, both
// shelves and peak. GainDB and Q are ignored by highpass and lowpass.
type FilterSettings struct {
	kind     Kind
	CutoffHz float64
	GainDB   float64
	Q        float64
}

func (s FilterSettings) Kind() Kind { return s.kind }

func (s FilterSettings) channel(sampleRate float64) (planeFunc, error) {
	var bk biquad.Kind

	switch s.kind {
	case KindHighpassFilter:
		bk = biquad.KindHighpass
	case KindLowpassFilter:
		bk = biquad.KindLowpass
	case KindHighShelfFilter:
		bk = biquad.KindHighShelf
	case KindLowShelfFilter:
		bk = biquad.KindLowShelf
	case KindPeakFilter:
		bk = biquad.KindPeak
	default:
		return nil, fmt.Errorf("effectchain: %v is not a biquad kind", s.kind)
	}

	c, err := biquad.Design(bk, s.CutoffHz, s.GainDB, s.Q, sampleRate)
	if err != nil {
		return nil, err
	}

	return inPlace(biquad.NewSection(c)), nil
}

// LadderSettings configures KindLadderFilter.
type LadderSettings struct {
	Mode      ladder.Mode
	CutoffHz  float64
	Resonance float64
	Drive     float64
}

func (LadderSettings) Kind() Kind { return KindLadderFilter }

func (s LadderSettings) channel(sampleRate float64) (planeFunc, error) {
	f, err := ladder.New(sampleRate,
		ladder.WithMode(s.Mode),
		ladder.WithCutoffHz(s.CutoffHz),
		ladder.WithResonance(s.Resonance),
		ladder.WithDrive(s.Drive),
	)
	if err != nil {
		return nil, err
	}

	return inPlace(f), nil
}

// GSMSettings configures KindGSMFullRateCompressor, which has no parameters.
type GSMSettings struct{}

func (GSMSettings) Kind() Kind { return KindGSMFullRateCompressor }

func (GSMSettings) channel(sampleRate float64) (planeFunc, error) {
	g, err := effects.NewGSMEmulator(sampleRate)
	if err != nil {
		return nil, err
	}

	return inPlace(g), nil
}

// MP3Settings configures KindMP3Compressor. VBRQuality runs from 0 (best)
// to 10 (worst).
type MP3Settings struct{ VBRQuality float64 }

func (MP3Settings) Kind() Kind { return KindMP3Compressor }

func (s MP3Settings) channel(sampleRate float64) (planeFunc, error) {
	c, err := effects.NewSpectralCodec(sampleRate, s.VBRQuality)
	if err != nil {
		return nil, err
	}

	return c.Process, nil
}

// ResampleSettings configures KindResample: the signal is converted to
// TargetSampleRate and back, keeping the caller's rate and length.
type ResampleSettings struct {
	TargetSampleRate int
	Quality          resample.Quality
}

func (ResampleSettings) Kind() Kind { return KindResample }

const maxTargetSampleRate = 384000

func (s ResampleSettings) channel(sampleRate float64) (planeFunc, error) {
	err := core.ValidateRange("resample", "target sample rate", float64(s.TargetSampleRate), 1, maxTargetSampleRate)
	if err != nil {
		return nil, err
	}

	if s.Quality < resample.QualityFast || s.Quality > resample.QualityBest {
		return nil, fmt.Errorf("resample quality must be in [%d, %d]: %d",
			resample.QualityFast, resample.QualityBest, s.Quality)
	}

	target := float64(s.TargetSampleRate)

	down, err := resample.NewForRates(sampleRate, target, resample.WithQuality(s.Quality))
	if err != nil {
		return nil, err
	}

	up, err := resample.NewForRates(target, sampleRate, resample.WithQuality(s.Quality))
	if err != nil {
		return nil, err
	}

	return func(plane []float64) error {
		back := up.Process(down.Process(plane))

		n := copy(plane, back)
		clear(plane[n:])

		return nil
	}, nil
}
