// Package audio decodes uploaded recordings into sample buffers and
// encodes buffers back to WAV.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"github.com/dscruggs/lyre-studio/dsp/buffer"
)

// ErrUnsupportedFormat reports input that is neither PCM WAV nor MP3.
var ErrUnsupportedFormat = errors.New("audio: unsupported format")

// Format names a recognised container.
type Format string

const (
	FormatUnknown Format = ""
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
)

// Sniff identifies the container from the leading bytes.
func Sniff(head []byte) Format {
	switch {
	case len(head) >= 12 && string(head[0:4]) == "RIFF" && string(head[8:12]) == "WAVE":
		return FormatWAV
	case len(head) >= 3 && string(head[0:3]) == "ID3":
		return FormatMP3
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return FormatMP3
	default:
		return FormatUnknown
	}
}

// DecodeBytes decodes a complete WAV or MP3 file held in memory.
func DecodeBytes(data []byte) (*buffer.Buffer, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a WAV or MP3 stream into a channel-major buffer.
func Decode(r io.ReadSeeker) (*buffer.Buffer, error) {
	head := make([]byte, 12)

	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrUnsupportedFormat)
		}

		return nil, fmt.Errorf("audio: read header: %w", err)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("audio: rewind: %w", err)
	}

	switch Sniff(head[:n]) {
	case FormatWAV:
		return decodeWAV(r)
	case FormatMP3:
		return decodeMP3(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

const wavFormatPCM = 1

func decodeWAV(r io.ReadSeeker) (*buffer.Buffer, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid wav header", ErrUnsupportedFormat)
	}

	if d.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: wav format tag %d", ErrUnsupportedFormat, d.WavAudioFormat)
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audio: decode wav: %w", err)
	}

	channels := int(d.NumChans)
	bitDepth := int(d.BitDepth)

	if channels <= 0 {
		return nil, fmt.Errorf("%w: wav has no channels", ErrUnsupportedFormat)
	}

	if bitDepth != 8 && bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return nil, fmt.Errorf("%w: %d-bit wav", ErrUnsupportedFormat, bitDepth)
	}

	frames := len(pcm.Data) / channels
	planes := make([][]float32, channels)

	for ch := range planes {
		plane := make([]float32, frames)
		for i := range plane {
			plane[i] = IntToFloat32(pcm.Data[i*channels+ch], bitDepth)
		}

		planes[ch] = plane
	}

	return buffer.FromChannels(planes, float64(d.SampleRate))
}

func decodeMP3(r io.Reader) (*buffer.Buffer, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	pcm, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("audio: decode mp3: %w", err)
	}

	// go-mp3 always yields interleaved stereo 16-bit little-endian PCM.
	samples := Int16ToFloat32(BytesToInt16(pcm[:len(pcm)/4*4]))
	frames := len(samples) / 2
	left := make([]float32, frames)
	right := make([]float32, frames)

	for i := range frames {
		left[i], right[i] = samples[2*i], samples[2*i+1]
	}

	return buffer.FromChannels([][]float32{left, right}, float64(d.SampleRate()))
}
