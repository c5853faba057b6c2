package effectchain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Request asks for one effect by registry name. Overrides holds raw
// decoded values (json.Number for numbers); they are validated when the
// chain is built.
type Request struct {
	Name      string
	Overrides map[string]any
}

// Config is an ordered list of effect requests.
type Config []Request

// Names returns requested effect names in order.
func (c Config) Names() []string {
	out := make([]string, len(c))
	for i, r := range c {
		out[i] = r.Name
	}

	return out
}

// ParseConfig decodes a JSON object mapping effect names to override
// objects, keeping key order. Empty input, null and {} give an empty
// Config. A repeated key keeps its first position and its last value.
func ParseConfig(data []byte) (Config, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Config{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	cfg := Config{}
	index := make(map[string]int)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(err)
		}

		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected token %v", ErrMalformedConfig, tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, malformed(err)
		}

		overrides, err := decodeOverrides(name, raw)
		if err != nil {
			return nil, err
		}

		if i, seen := index[name]; seen {
			cfg[i].Overrides = overrides
			continue
		}

		index[name] = len(cfg)
		cfg = append(cfg, Request{Name: name, Overrides: overrides})
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrMalformedConfig)
	}

	return cfg, nil
}

// MarshalJSON encodes the config back into its object form, keeping order.
func (c Config) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, r := range c {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(r.Name)
		if err != nil {
			return nil, err
		}

		overrides := r.Overrides
		if overrides == nil {
			overrides = map[string]any{}
		}

		val, err := json.Marshal(overrides)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func decodeOverrides(name string, raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}

	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: overrides for %q must be an object", ErrMalformedConfig, name)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	overrides := map[string]any{}
	if err := dec.Decode(&overrides); err != nil {
		return nil, malformed(err)
	}

	return overrides, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return malformed(err)
	}

	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q, got %v", ErrMalformedConfig, want, tok)
	}

	return nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedConfig, err)
}
