package effectchain

import (
	"encoding/json"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// DefaultValidationSampleRate is the rate at which Build instantiates each
// primitive to validate its parameters.
const DefaultValidationSampleRate = 48000.0

// SkipReason classifies why a requested effect left the chain.
type SkipReason string

const (
	SkipUnknownEffect  SkipReason = "unknown_effect"
	SkipUnresolvedKind SkipReason = "unresolved_kind"
	SkipInvalidParams  SkipReason = "invalid_params"
)

// Skipped describes one request that Build dropped.
type Skipped struct {
	Name   string
	Class  string
	Reason SkipReason
	Err    error
}

func (s Skipped) String() string {
	if s.Err != nil {
		return fmt.Sprintf("%s (%s): %v", s.Name, s.Reason, s.Err)
	}

	return fmt.Sprintf("%s (%s)", s.Name, s.Reason)
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger used for skipped effects.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// WithValidationSampleRate overrides DefaultValidationSampleRate.
func WithValidationSampleRate(sr float64) BuilderOption {
	return func(b *Builder) {
		if sr > 0 && !math.IsInf(sr, 0) {
			b.validationRate = sr
		}
	}
}

// Builder resolves configurations against a registry. It holds no
// per-call state and is safe for concurrent use.
type Builder struct {
	defs           *Definitions
	log            *zap.Logger
	validationRate float64
}

// NewBuilder returns a Builder reading from defs.
func NewBuilder(defs *Definitions, opts ...BuilderOption) *Builder {
	if defs == nil {
		defs = &Definitions{byName: map[string]Definition{}}
	}

	b := &Builder{defs: defs, log: zap.NewNop(), validationRate: DefaultValidationSampleRate}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Definitions returns the registry the builder reads from.
func (b *Builder) Definitions() *Definitions { return b.defs }

// Build turns cfg into a chain in request order. Requests that name no
// registry entry or resolve to no known kind are dropped and reported, as
// are requests whose parameters the primitive rejects at the validation
// rate. Build itself never fails.
func (b *Builder) Build(cfg Config) (*Chain, []Skipped) {
	return b.build(cfg, b.validationRate, 0)
}

// BuildFor is Build for a known input layout: every primitive is
// instantiated at sampleRate for the given channel count, and requests
// that cannot be instantiated there are skipped like any other invalid
// parameters. The returned chain carries primitive state and serves one
// pass over one input.
func (b *Builder) BuildFor(cfg Config, sampleRate float64, channels int) (*Chain, []Skipped) {
	return b.build(cfg, sampleRate, max(channels, 1))
}

func (b *Builder) build(cfg Config, sampleRate float64, channels int) (*Chain, []Skipped) {
	chain := &Chain{}

	var skipped []Skipped

	for _, req := range cfg {
		unit, skip := b.buildUnit(req, sampleRate, channels)
		if skip != nil {
			skipped = append(skipped, *skip)
			continue
		}

		chain.units = append(chain.units, unit)
	}

	return chain, skipped
}

// buildUnit resolves one request. With channels > 0 the unit's primitives
// stay bound for that layout; with 0 they are only validated.
func (b *Builder) buildUnit(req Request, sampleRate float64, channels int) (Unit, *Skipped) {
	def, ok := b.defs.Lookup(req.Name)
	if !ok {
		b.log.Debug("effect not in registry", zap.String("effect", req.Name))
		return Unit{}, &Skipped{Name: req.Name, Reason: SkipUnknownEffect}
	}

	kind, ok := ParseKind(def.Class)
	if !ok {
		b.log.Debug("effect class has no implementation",
			zap.String("effect", req.Name), zap.String("class", def.Class))

		return Unit{}, &Skipped{Name: req.Name, Class: def.Class, Reason: SkipUnresolvedKind}
	}

	invalid := func(err error) (Unit, *Skipped) {
		b.log.Warn("unable to add effect", zap.String("effect", req.Name),
			zap.Float64("sample_rate", sampleRate), zap.Error(err))
		return Unit{}, &Skipped{Name: req.Name, Class: def.Class, Reason: SkipInvalidParams, Err: err}
	}

	params, err := resolveParams(def, req.Overrides)
	if err != nil {
		return invalid(err)
	}

	settings, err := decodeSettings(kind, params)
	if err != nil {
		return invalid(err)
	}

	unit := Unit{Name: req.Name, Kind: kind, Params: params, Settings: settings}

	if channels == 0 {
		if err := validateAt(settings, sampleRate); err != nil {
			return invalid(err)
		}

		return unit, nil
	}

	bound, err := bind(settings, sampleRate, channels)
	if err != nil {
		return invalid(err)
	}

	unit.bound, unit.boundRate, unit.boundChannels = bound, sampleRate, channels

	return unit, nil
}

// resolveParams fills every schema parameter from overrides or its
// default. Overrides outside the schema are ignored.
func resolveParams(def Definition, overrides map[string]any) (paramSet, error) {
	params := make(paramSet, len(def.Params))

	for _, spec := range def.Params {
		v := spec.Default

		if raw, ok := overrides[spec.Name]; ok {
			f, err := toFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("param %s: %w", spec.Name, err)
			}

			v = f
		}

		if _, integer := IntegerParams[spec.Name]; integer {
			v = math.Floor(v + 0.5)
		}

		params[spec.Name] = v
	}

	return params, nil
}

func toFloat(raw any) (float64, error) {
	var (
		f   float64
		err error
	)

	switch v := raw.(type) {
	case json.Number:
		f, err = v.Float64()
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		err = fmt.Errorf("value %v (%T) is not numeric", raw, raw)
	}

	if err != nil {
		return 0, err
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("value %v is not finite", f)
	}

	return f, nil
}

func validateAt(s Settings, sampleRate float64) error {
	if _, err := s.channel(sampleRate); err != nil {
		return err
	}

	if st, ok := s.(stereoSettings); ok {
		if _, err := st.stereo(sampleRate); err != nil {
			return err
		}
	}

	return nil
}
