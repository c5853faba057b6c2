package effectchain

import (
	"fmt"
	"maps"
)

// Effect processes channel-major float64 planes at sampleRate and returns
// the processed planes with their sample rate.
type Effect interface {
	Process(planes [][]float64, sampleRate float64) ([][]float64, float64, error)
}

// stage runs instantiated primitives over every plane in place.
type stage func(planes [][]float64) error

// bind instantiates the primitives for s at sampleRate, one per channel,
// or a single stereo primitive for two channels when the kind has one.
func bind(s Settings, sampleRate float64, channels int) (stage, error) {
	if st, ok := s.(stereoSettings); ok && channels == 2 {
		fn, err := st.stereo(sampleRate)
		if err != nil {
			return nil, err
		}

		return func(planes [][]float64) error { return fn(planes[0], planes[1]) }, nil
	}

	fns := make([]planeFunc, channels)
	for ch := range fns {
		fn, err := s.channel(sampleRate)
		if err != nil {
			return nil, err
		}

		fns[ch] = fn
	}

	return func(planes [][]float64) error {
		for ch, plane := range planes {
			if err := fns[ch](plane); err != nil {
				return fmt.Errorf("channel %d: %w", ch, err)
			}
		}

		return nil
	}, nil
}

// Unit is one built effect. Params holds the resolved parameter values,
// Settings their typed form.
type Unit struct {
	Name     string
	Kind     Kind
	Params   map[string]float64
	Settings Settings

	bound         stage
	boundRate     float64
	boundChannels int
}

// Process runs the unit over every plane in place. Primitives bound by
// BuildFor are reused when the layout matches; otherwise fresh ones are
// instantiated at sampleRate.
func (u Unit) Process(planes [][]float64, sampleRate float64) ([][]float64, float64, error) {
	run := u.bound
	if run == nil || u.boundRate != sampleRate || u.boundChannels != len(planes) {
		var err error

		run, err = bind(u.Settings, sampleRate, len(planes))
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", u.Name, err)
		}
	}

	if err := run(planes); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", u.Name, err)
	}

	return planes, sampleRate, nil
}

// Chain is an ordered list of units. It is built per call and not shared.
type Chain struct {
	units []Unit
}

// Len returns the number of units.
func (c *Chain) Len() int { return len(c.units) }

// Units returns a copy of the units in order.
func (c *Chain) Units() []Unit {
	out := make([]Unit, len(c.units))
	for i, u := range c.units {
		u.Params = maps.Clone(u.Params)
		out[i] = u
	}

	return out
}

// Names returns unit names in order.
func (c *Chain) Names() []string {
	out := make([]string, len(c.units))
	for i, u := range c.units {
		out[i] = u.Name
	}

	return out
}

// Process runs every unit in order.
func (c *Chain) Process(planes [][]float64, sampleRate float64) ([][]float64, float64, error) {
	var err error

	for _, u := range c.units {
		planes, sampleRate, err = u.Process(planes, sampleRate)
		if err != nil {
			return nil, 0, err
		}
	}

	return planes, sampleRate, nil
}
