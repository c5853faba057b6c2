// Package pitch implements a time-domain pitch shifter.
package pitch

import (
	"fmt"
	"math"

	"github.com/dscruggs/lyre-studio/dsp/core"
	"github.com/dscruggs/lyre-studio/dsp/interp"
)

const (
	// Speech-tuned WSOLA windows.
	sequenceMs = 40.0
	overlapMs  = 10.0
	searchMs   = 15.0

	// MaxSemitones bounds the shift in either direction (two octaves).
	MaxSemitones = 24

	tiny = 1e-12
)

// PitchShifter changes pitch without changing duration: a WSOLA stretch
// lengthens the block by the pitch ratio, then Hermite resampling squeezes
// it back to the original length.
//
// The shifter is mono and block-based; it carries no state between calls.
type PitchShifter struct {
	sampleRate float64
	semitones  int
	ratio      float64

	sequenceLen int
	overlapLen  int
	searchLen   int
	stepOut     int

	fadeIn  []float64
	fadeOut []float64
}

// NewPitchShifter creates a shifter for a whole number of semitones in
// [-24, 24].
func NewPitchShifter(sampleRate float64, semitones int) (*PitchShifter, error) {
	if err := core.ValidateSampleRate("pitch shifter", sampleRate); err != nil {
		return nil, err
	}

	if semitones < -MaxSemitones || semitones > MaxSemitones {
		return nil, fmt.Errorf("pitch shifter semitones must be in [%d, %d]: %d",
			-MaxSemitones, MaxSemitones, semitones)
	}

	p := &PitchShifter{
		sampleRate:  sampleRate,
		semitones:   semitones,
		ratio:       math.Exp2(float64(semitones) / 12),
		sequenceLen: max(32, int(math.Round(sequenceMs*0.001*sampleRate))),
		overlapLen:  max(8, int(math.Round(overlapMs*0.001*sampleRate))),
		searchLen:   max(1, int(math.Round(searchMs*0.001*sampleRate))),
	}

	if p.overlapLen >= p.sequenceLen {
		return nil, fmt.Errorf("pitch shifter overlap too large for sequence: overlap=%d sequence=%d",
			p.overlapLen, p.sequenceLen)
	}

	p.stepOut = p.sequenceLen - p.overlapLen
	p.fadeIn = make([]float64, p.overlapLen)
	p.fadeOut = make([]float64, p.overlapLen)

	for i := range p.overlapLen {
		in := 0.5 - 0.5*math.Cos(math.Pi*float64(i)/float64(p.overlapLen-1))
		p.fadeIn[i] = in
		p.fadeOut[i] = 1 - in
	}

	return p, nil
}

// Semitones returns the shift in semitones.
func (p *PitchShifter) Semitones() int { return p.semitones }

// Ratio returns the frequency ratio 2^(semitones/12).
func (p *PitchShifter) Ratio() float64 { return p.ratio }

// Reset is a no-op; the shifter is stateless.
func (p *PitchShifter) Reset() {}

// Process pitch-shifts input and returns a new block of equal length.
func (p *PitchShifter) Process(input []float64) []float64 {
	if len(input) == 0 {
		return nil
	}

	if p.semitones == 0 {
		return append([]float64(nil), input...)
	}

	return interp.Stretch(p.timeStretch(input), len(input))
}

// ProcessInPlace applies pitch shifting to buf in place.
func (p *PitchShifter) ProcessInPlace(buf []float64) {
	copy(buf, p.Process(buf))
}

func (p *PitchShifter) timeStretch(input []float64) []float64 {
	targetLen := max(1, int(math.Round(float64(len(input))*p.ratio)))
	nominalInStep := math.Max(1, float64(p.stepOut)/p.ratio)

	out := make([]float64, (targetLen/p.stepOut+4)*p.stepOut+p.sequenceLen+1)
	for i := range p.sequenceLen {
		out[i] = sampleZero(input, i)
	}

	outLen := p.sequenceLen
	prevStart := 0
	nextNominal := nominalInStep
	ref := make([]float64, p.overlapLen)

	for outLen < targetLen+p.sequenceLen && outLen-p.overlapLen+p.sequenceLen <= len(out) {
		refStart := prevStart + p.stepOut
		for i := range ref {
			ref[i] = sampleZero(input, refStart+i)
		}

		candStart := p.bestOverlap(ref, input, int(math.Round(nextNominal)))

		outStart := outLen - p.overlapLen
		for i := range p.overlapLen {
			out[outStart+i] = out[outStart+i]*p.fadeOut[i] + sampleZero(input, candStart+i)*p.fadeIn[i]
		}

		for i := p.overlapLen; i < p.sequenceLen; i++ {
			out[outStart+i] = sampleZero(input, candStart+i)
		}

		outLen = outStart + p.sequenceLen
		prevStart = candStart
		nextNominal += nominalInStep
	}

	return out[:targetLen]
}

// bestOverlap searches around predicted for the candidate segment whose
// normalized cross-correlation with ref is highest.
func (p *PitchShifter) bestOverlap(ref, input []float64, predicted int) int {
	best := predicted
	bestScore := math.Inf(-1)

	refEnergy := tiny
	for _, v := range ref {
		refEnergy += v * v
	}

	for cand := predicted - p.searchLen; cand <= predicted+p.searchLen; cand++ {
		dot := 0.0
		candEnergy := tiny

		for i, rv := range ref {
			cv := sampleZero(input, cand+i)
			dot += rv * cv
			candEnergy += cv * cv
		}

		if score := dot / math.Sqrt(refEnergy*candEnergy); score > bestScore {
			bestScore = score
			best = cand
		}
	}

	return best
}

func sampleZero(x []float64, idx int) float64 {
	if idx < 0 || idx >= len(x) {
		return 0
	}

	return x[idx]
}
