package effectchain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigPreservesOrder(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte(`{"Reverb": {"room_size": 0.8}, "Gain": {}, "Distortion": {"drive_db": 10}}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"Reverb", "Gain", "Distortion"}, cfg.Names())
	assert.Equal(t, json.Number("0.8"), cfg[0].Overrides["room_size"])
	assert.Empty(t, cfg[1].Overrides)
}

func TestParseConfigEmpty(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "null", "{}"} {
		cfg, err := ParseConfig([]byte(in))
		require.NoError(t, err, in)
		assert.Empty(t, cfg, in)
	}
}

func TestParseConfigMalformed(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"not json",
		"[1, 2]",
		`"Gain"`,
		"42",
		`{"Gain": {"gain_db": 1}`,
		`{"Gain": 5}`,
		`{"Gain": [1]}`,
		`{"Gain": {}} {}`,
	} {
		_, err := ParseConfig([]byte(in))
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, ErrMalformedConfig), in)
	}
}

func TestParseConfigDuplicateKeyKeepsFirstPositionLastValue(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte(`{"Gain": {"gain_db": 1}, "Reverb": {}, "Gain": {"gain_db": 2}}`))
	require.NoError(t, err)

	require.Equal(t, []string{"Gain", "Reverb"}, cfg.Names())
	assert.Equal(t, json.Number("2"), cfg[0].Overrides["gain_db"])
}

func TestParseConfigNullOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte(`{"Gain": null}`))
	require.NoError(t, err)
	require.Len(t, cfg, 1)
	assert.NotNil(t, cfg[0].Overrides)
	assert.Empty(t, cfg[0].Overrides)
}

func TestConfigMarshalJSONRoundTrip(t *testing.T) {
	t.Parallel()

	in := `{"Reverb":{"room_size":0.8},"Gain":{}}`

	cfg, err := ParseConfig([]byte(in))
	require.NoError(t, err)

	out, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))

	again, err := ParseConfig(out)
	require.NoError(t, err)
	assert.Equal(t, cfg.Names(), again.Names())
}
