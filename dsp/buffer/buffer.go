package buffer

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBuffer reports a malformed channel layout or sample rate.
var ErrInvalidBuffer = errors.New("buffer: invalid audio buffer")

// Buffer is a channel-major block of float32 samples at a fixed sample
// rate. Every channel has the same length.
type Buffer struct {
	channels   [][]float32
	sampleRate float64
}

// New returns a zero-filled buffer with numChannels channels of length
// frames each.
func New(numChannels, frames int, sampleRate float64) (*Buffer, error) {
	if numChannels <= 0 || frames < 0 {
		return nil, fmt.Errorf("%w: %d channels, %d frames", ErrInvalidBuffer, numChannels, frames)
	}

	if err := validateRate(sampleRate); err != nil {
		return nil, err
	}

	channels := make([][]float32, numChannels)
	for i := range channels {
		channels[i] = make([]float32, frames)
	}

	return &Buffer{channels: channels, sampleRate: sampleRate}, nil
}

// FromChannels wraps channels without copying. All channels must have the
// same length and at least one channel must be present.
func FromChannels(channels [][]float32, sampleRate float64) (*Buffer, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidBuffer)
	}

	for i := 1; i < len(channels); i++ {
		if len(channels[i]) != len(channels[0]) {
			return nil, fmt.Errorf("%w: channel %d has %d frames, want %d",
				ErrInvalidBuffer, i, len(channels[i]), len(channels[0]))
		}
	}

	if err := validateRate(sampleRate); err != nil {
		return nil, err
	}

	return &Buffer{channels: channels, sampleRate: sampleRate}, nil
}

// FromMono reshapes a flat sample sequence into a single-channel buffer.
func FromMono(samples []float32, sampleRate float64) (*Buffer, error) {
	return FromChannels([][]float32{samples}, sampleRate)
}

// FromFloat64 copies float64 planes into a new float32 buffer.
func FromFloat64(planes [][]float64, sampleRate float64) (*Buffer, error) {
	channels := make([][]float32, len(planes))
	for i, p := range planes {
		ch := make([]float32, len(p))
		for j, v := range p {
			ch[j] = float32(v)
		}

		channels[i] = ch
	}

	return FromChannels(channels, sampleRate)
}

// Channels returns the underlying channel slices.
func (b *Buffer) Channels() [][]float32 { return b.channels }

// Channel returns channel i.
func (b *Buffer) Channel(i int) []float32 { return b.channels[i] }

// NumChannels returns the number of channels.
func (b *Buffer) NumChannels() int { return len(b.channels) }

// Len returns the number of frames per channel.
func (b *Buffer) Len() int {
	if len(b.channels) == 0 {
		return 0
	}

	return len(b.channels[0])
}

// SampleRate returns the sample rate in Hz.
func (b *Buffer) SampleRate() float64 { return b.sampleRate }

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	return float64(b.Len()) / b.sampleRate
}

// Copy returns a deep copy.
func (b *Buffer) Copy() *Buffer {
	channels := make([][]float32, len(b.channels))
	for i, ch := range b.channels {
		channels[i] = append([]float32(nil), ch...)
	}

	return &Buffer{channels: channels, sampleRate: b.sampleRate}
}

// CopyToFloat64 writes channel i into dst, which must hold Len() samples.
func (b *Buffer) CopyToFloat64(dst []float64, i int) {
	for j, v := range b.channels[i] {
		dst[j] = float64(v)
	}
}

// Equal reports whether both buffers have the same rate, layout and samples.
func (b *Buffer) Equal(other *Buffer) bool {
	if other == nil || b.sampleRate != other.sampleRate || len(b.channels) != len(other.channels) {
		return false
	}

	for i := range b.channels {
		if len(b.channels[i]) != len(other.channels[i]) {
			return false
		}

		for j, v := range b.channels[i] {
			if v != other.channels[i][j] {
				return false
			}
		}
	}

	return true
}

func validateRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: sample rate %f", ErrInvalidBuffer, sampleRate)
	}

	return nil
}
