package effects

import (
	"fmt"

	"github.com/dscruggs/lyre-studio/dsp/core"
)

const (
	reverbNumCombs     = 8
	reverbNumAllpasses = 4
	reverbStereoSpread = 23
	reverbTuningRate   = 44100.0

	reverbFixedGain   = 0.015
	reverbScaleWet    = 3.0
	reverbScaleDry    = 2.0
	reverbScaleDamp   = 0.4
	reverbScaleRoom   = 0.28
	reverbOffsetRoom  = 0.7
	reverbFreezeLevel = 0.5
)

var (
	reverbCombTuning    = [reverbNumCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	reverbAllpassTuning = [reverbNumAllpasses]int{556, 441, 341, 225}
)

// ReverbOption mutates reverb construction parameters.
type ReverbOption func(*reverbConfig) error

type reverbConfig struct {
	roomSize float64
	damping  float64
	wetLevel float64
	dryLevel float64
	width    float64
	freeze   float64
}

func unitOption(param string, v float64, set func(*reverbConfig)) ReverbOption {
	return func(cfg *reverbConfig) error {
		if err := core.ValidateRange("reverb", param, v, 0, 1); err != nil {
			return err
		}

		set(cfg)

		return nil
	}
}

// WithRoomSize sets the room size in [0, 1].
func WithRoomSize(v float64) ReverbOption {
	return unitOption("room size", v, func(c *reverbConfig) { c.roomSize = v })
}

// WithDamping sets high-frequency damping in [0, 1].
func WithDamping(v float64) ReverbOption {
	return unitOption("damping", v, func(c *reverbConfig) { c.damping = v })
}

// WithWetLevel sets the wet level in [0, 1].
func WithWetLevel(v float64) ReverbOption {
	return unitOption("wet level", v, func(c *reverbConfig) { c.wetLevel = v })
}

// WithDryLevel sets the dry level in [0, 1].
func WithDryLevel(v float64) ReverbOption {
	return unitOption("dry level", v, func(c *reverbConfig) { c.dryLevel = v })
}

// WithWidth sets the stereo width in [0, 1].
func WithWidth(v float64) ReverbOption {
	return unitOption("width", v, func(c *reverbConfig) { c.width = v })
}

// WithFreezeMode sets freeze mode in [0, 1]; values >= 0.5 hold the tail
// indefinitely and mute new input.
func WithFreezeMode(v float64) ReverbOption {
	return unitOption("freeze mode", v, func(c *reverbConfig) { c.freeze = v })
}

type reverbComb struct {
	feedback    float64
	filterStore float64
	damp1       float64
	damp2       float64
	buffer      []float64
	index       int
}

func (c *reverbComb) process(input float64) float64 {
	output := c.buffer[c.index]
	c.filterStore = core.FlushDenormals(output*c.damp2 + c.filterStore*c.damp1)
	c.buffer[c.index] = input + c.filterStore*c.feedback

	c.index++
	if c.index >= len(c.buffer) {
		c.index = 0
	}

	return output
}

type reverbAllpass struct {
	buffer []float64
	index  int
}

func (a *reverbAllpass) process(input float64) float64 {
	bufOut := a.buffer[a.index]
	a.buffer[a.index] = input + bufOut*0.5

	a.index++
	if a.index >= len(a.buffer) {
		a.index = 0
	}

	return bufOut - input
}

// Reverb is a Freeverb-style stereo reverb: eight damped combs feeding
// four allpasses per side, with the right side detuned by a fixed spread.
type Reverb struct {
	sampleRate float64
	cfg        reverbConfig

	gain, wet1, wet2, dry float64

	combs   [2][reverbNumCombs]reverbComb
	allpass [2][reverbNumAllpasses]reverbAllpass
}

// NewReverb constructs a reverb with delay lines scaled to sampleRate.
func NewReverb(sampleRate float64, opts ...ReverbOption) (*Reverb, error) {
	if err := core.ValidateSampleRate("reverb", sampleRate); err != nil {
		return nil, err
	}

	cfg := reverbConfig{roomSize: 0.5, damping: 0.5, wetLevel: 0.33, dryLevel: 0.4, width: 1}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	r := &Reverb{sampleRate: sampleRate, cfg: cfg}
	scale := sampleRate / reverbTuningRate

	for side := range 2 {
		spread := side * reverbStereoSpread
		for i, n := range reverbCombTuning {
			r.combs[side][i].buffer = make([]float64, scaledLength(n+spread, scale))
		}

		for i, n := range reverbAllpassTuning {
			r.allpass[side][i].buffer = make([]float64, scaledLength(n+spread, scale))
		}
	}

	r.update()

	return r, nil
}

func scaledLength(n int, scale float64) int {
	l := int(float64(n) * scale)
	if l < 1 {
		return 1
	}

	return l
}

func (r *Reverb) update() {
	c := r.cfg
	wet := c.wetLevel * reverbScaleWet
	r.dry = c.dryLevel * reverbScaleDry
	r.wet1 = wet * (c.width/2 + 0.5)
	r.wet2 = wet * (1 - c.width) / 2

	feedback := c.roomSize*reverbScaleRoom + reverbOffsetRoom
	damp := c.damping * reverbScaleDamp
	r.gain = reverbFixedGain

	if c.freeze >= reverbFreezeLevel {
		feedback = 1
		damp = 0
		r.gain = 0
	}

	for side := range r.combs {
		for i := range r.combs[side] {
			r.combs[side][i].feedback = feedback
			r.combs[side][i].damp1 = damp
			r.combs[side][i].damp2 = 1 - damp
		}
	}
}

// RoomSize returns the room size in [0, 1].
func (r *Reverb) RoomSize() float64 { return r.cfg.roomSize }

// Frozen reports whether freeze mode is engaged.
func (r *Reverb) Frozen() bool { return r.cfg.freeze >= reverbFreezeLevel }

// Reset clears all delay/filter state.
func (r *Reverb) Reset() {
	for side := range r.combs {
		for i := range r.combs[side] {
			clear(r.combs[side][i].buffer)
			r.combs[side][i].index = 0
			r.combs[side][i].filterStore = 0
		}

		for i := range r.allpass[side] {
			clear(r.allpass[side][i].buffer)
			r.allpass[side][i].index = 0
		}
	}
}

func (r *Reverb) tank(side int, x float64) float64 {
	var acc float64
	for i := range r.combs[side] {
		acc += r.combs[side][i].process(x)
	}

	for i := range r.allpass[side] {
		acc = r.allpass[side][i].process(acc)
	}

	return acc
}

// ProcessStereo processes one stereo frame.
func (r *Reverb) ProcessStereo(left, right float64) (float64, float64) {
	x := (left + right) * r.gain
	outL := r.tank(0, x)
	outR := r.tank(1, x)

	return outL*r.wet1 + outR*r.wet2 + left*r.dry,
		outR*r.wet1 + outL*r.wet2 + right*r.dry
}

// ProcessSample processes one mono sample through both tanks.
func (r *Reverb) ProcessSample(input float64) float64 {
	l, _ := r.ProcessStereo(input, input)
	return l
}

// ProcessInPlace applies reverb to a mono buffer in place.
func (r *Reverb) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = r.ProcessSample(buf[i])
	}
}

// ProcessStereoInPlace applies reverb to a channel pair in place.
func (r *Reverb) ProcessStereoInPlace(left, right []float64) error {
	if len(left) != len(right) {
		return fmt.Errorf("reverb: channel length mismatch: %d vs %d", len(left), len(right))
	}

	for i := range left {
		left[i], right[i] = r.ProcessStereo(left[i], right[i])
	}

	return nil
}
