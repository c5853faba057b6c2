package audio

import (
	"errors"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/dscruggs/lyre-studio/dsp/buffer"
)

// DefaultBitDepth is the PCM depth used for encoded responses.
const DefaultBitDepth = 16

// EncodeWAV writes b as integer PCM WAV. Samples are clamped to [-1, 1].
func EncodeWAV(w io.WriteSeeker, b *buffer.Buffer, bitDepth int) error {
	if b == nil {
		return errors.New("audio: nil buffer")
	}

	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("audio: unsupported bit depth %d", bitDepth)
	}

	rate := int(math.Round(b.SampleRate()))
	channels := b.NumChannels()
	frames := b.Len()

	data := make([]int, frames*channels)
	for ch := range channels {
		for i, s := range b.Channel(ch) {
			data[i*channels+ch] = Float32ToInt(s, bitDepth)
		}
	}

	enc := wav.NewEncoder(w, rate, bitDepth, channels, wavFormatPCM)

	err := enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: bitDepth,
	})
	if err != nil {
		return fmt.Errorf("audio: encode wav: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("audio: finish wav: %w", err)
	}

	return nil
}

// EncodeWAVBytes encodes b into an in-memory WAV file.
func EncodeWAVBytes(b *buffer.Buffer, bitDepth int) ([]byte, error) {
	var sb seekBuffer
	if err := EncodeWAV(&sb, b, bitDepth); err != nil {
		return nil, err
	}

	return sb.buf, nil
}

// seekBuffer is an in-memory io.WriteSeeker for the WAV encoder, which
// patches chunk sizes after writing the data.
type seekBuffer struct {
	buf []byte
	pos int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	if end := s.pos + len(p); end > len(s.buf) {
		s.buf = append(s.buf, make([]byte, end-len(s.buf))...)
	}

	n := copy(s.buf[s.pos:], p)
	s.pos += n

	return n, nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int64

	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(s.pos)
	case io.SeekEnd:
		base = int64(len(s.buf))
	default:
		return 0, fmt.Errorf("audio: invalid whence %d", whence)
	}

	next := base + offset
	if next < 0 {
		return 0, errors.New("audio: negative seek position")
	}

	s.pos = int(next)

	return next, nil
}
