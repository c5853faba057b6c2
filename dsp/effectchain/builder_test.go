package effectchain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dscruggs/lyre-studio/internal/testutil"
)

func mustParse(t *testing.T, s string) Config {
	t.Helper()

	cfg, err := ParseConfig([]byte(s))
	require.NoError(t, err)

	return cfg
}

func TestBuildUnknownEffectGivesEmptyChain(t *testing.T) {
	t.Parallel()

	b := NewBuilder(loadTestRegistry(t))

	chain, skipped := b.Build(mustParse(t, `{"NonexistentEffect": {}}`))
	assert.Zero(t, chain.Len())
	require.Len(t, skipped, 1)
	assert.Equal(t, SkipUnknownEffect, skipped[0].Reason)
	assert.Equal(t, "NonexistentEffect", skipped[0].Name)
}

func TestBuildUnresolvedKindIsSkipped(t *testing.T) {
	t.Parallel()

	b := NewBuilder(loadTestRegistry(t))

	chain, skipped := b.Build(mustParse(t, `{"Theremin": {}, "Gain": {}}`))
	assert.Equal(t, []string{"Gain"}, chain.Names())
	require.Len(t, skipped, 1)
	assert.Equal(t, SkipUnresolvedKind, skipped[0].Reason)
	assert.Equal(t, "Theremin", skipped[0].Class)
}

func TestBuildFillsDefaults(t *testing.T) {
	t.Parallel()

	b := NewBuilder(loadTestRegistry(t))

	chain, skipped := b.Build(mustParse(t, `{"Reverb": {}}`))
	require.Empty(t, skipped)
	require.Equal(t, 1, chain.Len())

	unit := chain.Units()[0]
	assert.Equal(t, KindReverb, unit.Kind)
	assert.Equal(t, map[string]float64{"room_size": 0.5, "damping": 0.5, "wet_level": 0.33}, unit.Params)

	rs, ok := unit.Settings.(ReverbSettings)
	require.True(t, ok)
	assert.InDelta(t, 0.5, rs.RoomSize, 0)
	// Not in the schema: the primitive default applies.
	assert.InDelta(t, 0.4, rs.DryLevel, 0)
}

func TestBuildPartialOverride(t *testing.T) {
	t.Parallel()

	b := NewBuilder(loadTestRegistry(t))

	chain, _ := b.Build(mustParse(t, `{"Reverb": {"room_size": 0.9, "not_a_param": 7}}`))
	require.Equal(t, 1, chain.Len())

	params := chain.Units()[0].Params
	assert.InDelta(t, 0.9, params["room_size"], 1e-12)
	assert.InDelta(t, 0.5, params["damping"], 0)
	assert.NotContains(t, params, "not_a_param")
}

func TestBuildRoundsIntegerParams(t *testing.T) {
	t.Parallel()

	b := NewBuilder(loadTestRegistry(t))

	tests := []struct {
		in   string
		want int
	}{
		{"3.7", 4},
		{"3.2", 3},
		{"2.5", 3},
		{"-2.5", -2},
		{"-3.5", -3},
		{"-3.7", -4},
	}

	for _, tc := range tests {
		chain, skipped := b.Build(Config{{Name: "PitchShift", Overrides: map[string]any{"semitones": json.Number(tc.in)}}})
		require.Empty(t, skipped, tc.in)
		require.Equal(t, 1, chain.Len(), tc.in)

		unit := chain.Units()[0]
		assert.InDelta(t, float64(tc.want), unit.Params["semitones"], 0, tc.in)
		assert.Equal(t, PitchShiftSettings{Semitones: tc.want}, unit.Settings, tc.in)
	}
}

func TestBuildIsolatesBrokenEffect(t *testing.T) {
	t.Parallel()

	defs, err := NewDefinitions(
		Definition{Name: "Gain", Class: "Gain", Params: []ParamSpec{{Name: "gain_db", Default: 0}}},
		Definition{Name: "BrokenEffect", Class: "Gain", Params: []ParamSpec{{Name: "gain_db", Default: 500}}},
		Definition{Name: "Distortion", Class: "Distortion", Params: []ParamSpec{{Name: "drive_db", Default: 10}}},
	)
	require.NoError(t, err)

	core, logs := observer.New(zap.WarnLevel)
	b := NewBuilder(defs, WithLogger(zap.New(core)))

	chain, skipped := b.Build(mustParse(t, `{"Gain": {}, "BrokenEffect": {}, "Distortion": {}}`))
	assert.Equal(t, []string{"Gain", "Distortion"}, chain.Names())
	require.Len(t, skipped, 1)
	assert.Equal(t, "BrokenEffect", skipped[0].Name)
	assert.Equal(t, SkipInvalidParams, skipped[0].Reason)
	require.Error(t, skipped[0].Err)

	entries := logs.FilterMessage("unable to add effect").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "BrokenEffect", entries[0].ContextMap()["effect"])
}

func TestApplyBrokenEffectLeavesOutputUnchanged(t *testing.T) {
	t.Parallel()

	defs, err := NewDefinitions(
		Definition{Name: "Gain", Class: "Gain", Params: []ParamSpec{{Name: "gain_db", Default: 0}}},
		Definition{Name: "BrokenEffect", Class: "Gain", Params: []ParamSpec{{Name: "gain_db", Default: 500}}},
	)
	require.NoError(t, err)

	app := NewApplicator(NewBuilder(defs))
	in := testutil.SineBuffer(t, 2, 22050, 512)

	want, _, err := app.Apply(in, mustParse(t, `{"Gain": {"gain_db": 6}}`))
	require.NoError(t, err)

	got, report, err := app.Apply(in, mustParse(t, `{"Gain": {"gain_db": 6}, "BrokenEffect": {"bad_param": "x"}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Gain"}, report.Applied)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, SkipInvalidParams, report.Skipped[0].Reason)
	assert.True(t, want.Equal(got))
	testutil.RequireBufferNearlyEqual(t, got, want, 0)
}

func TestBuildNonNumericOverrideIsInvalid(t *testing.T) {
	t.Parallel()

	b := NewBuilder(loadTestRegistry(t))

	for _, payload := range []string{
		`{"Gain": {"gain_db": "x"}, "Distortion": {}}`,
		`{"Gain": {"gain_db": null}, "Distortion": {}}`,
		`{"Gain": {"gain_db": true}, "Distortion": {}}`,
		`{"Gain": {"gain_db": {"nested": 1}}, "Distortion": {}}`,
	} {
		chain, skipped := b.Build(mustParse(t, payload))
		assert.Equal(t, []string{"Distortion"}, chain.Names(), payload)
		require.Len(t, skipped, 1, payload)
		assert.Equal(t, SkipInvalidParams, skipped[0].Reason, payload)
	}
}

func TestBuildRejectsFilterAboveValidationNyquist(t *testing.T) {
	t.Parallel()

	defs, err := NewDefinitions(Definition{
		Name:   "HighpassFilter",
		Class:  "HighpassFilter",
		Params: []ParamSpec{{Name: "cutoff_frequency_hz", Default: 50}},
	})
	require.NoError(t, err)

	b := NewBuilder(defs, WithValidationSampleRate(16000))

	chain, _ := b.Build(mustParse(t, `{"HighpassFilter": {"cutoff_frequency_hz": 100}}`))
	assert.Equal(t, 1, chain.Len())

	chain, skipped := b.Build(mustParse(t, `{"HighpassFilter": {"cutoff_frequency_hz": 9000}}`))
	assert.Zero(t, chain.Len())
	require.Len(t, skipped, 1)
	assert.Equal(t, SkipInvalidParams, skipped[0].Reason)
}

func TestBuildEveryKindWithDefaults(t *testing.T) {
	t.Parallel()

	defs := make([]Definition, 0, len(Kinds()))
	for _, k := range Kinds() {
		defs = append(defs, Definition{Name: k.String(), Class: k.String()})
	}

	reg, err := NewDefinitions(defs...)
	require.NoError(t, err)

	cfg := make(Config, 0, reg.Len())
	for _, name := range reg.Names() {
		cfg = append(cfg, Request{Name: name})
	}

	chain, skipped := NewBuilder(reg).Build(cfg)
	assert.Empty(t, skipped)
	assert.Equal(t, reg.Names(), chain.Names())

	for _, u := range chain.Units() {
		assert.Equal(t, u.Kind, u.Settings.Kind(), u.Name)
	}
}
