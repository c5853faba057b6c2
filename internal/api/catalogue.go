package api

import (
	"bytes"
	"encoding/json"

	"github.com/dscruggs/lyre-studio/dsp/effectchain"
)

// catalogue renders the registry as
// {name: {"params": {param: {"default", "min"?, "max"?}}}} with JSON keys
// in registry order.
type catalogue []effectchain.Definition

type paramView struct {
	Default float64  `json:"default"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
}

func (c catalogue) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, def := range c {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := writeKey(&buf, def.Name); err != nil {
			return nil, err
		}

		buf.WriteString(`{"params":{`)

		for j, p := range def.Params {
			if j > 0 {
				buf.WriteByte(',')
			}

			if err := writeKey(&buf, p.Name); err != nil {
				return nil, err
			}

			v, err := json.Marshal(paramView{Default: p.Default, Min: p.Min, Max: p.Max})
			if err != nil {
				return nil, err
			}

			buf.Write(v)
		}

		buf.WriteString("}}")
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}

	buf.Write(k)
	buf.WriteByte(':')

	return nil
}
