// Package voiceref keeps the single voice reference recording used for
// voice cloning, stored as a WAV file at a fixed sample rate.
package voiceref

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dscruggs/lyre-studio/dsp/buffer"
	"github.com/dscruggs/lyre-studio/dsp/resample"
	"github.com/dscruggs/lyre-studio/internal/audio"
)

// DefaultSampleRate is the rate the synthesis model expects.
const DefaultSampleRate = 24000

// Store holds at most one reference file. It is safe for concurrent use.
type Store struct {
	dir        string
	sampleRate float64
	log        *zap.Logger

	mu   sync.Mutex
	path string
}

// NewStore returns a store writing into dir at sampleRate.
func NewStore(dir string, sampleRate int, log *zap.Logger) (*Store, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	if log == nil {
		log = zap.NewNop()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("voiceref: create dir: %w", err)
	}

	return &Store{dir: dir, sampleRate: float64(sampleRate), log: log}, nil
}

// SampleRate returns the stored file's sample rate.
func (s *Store) SampleRate() float64 { return s.sampleRate }

// Set converts b to the store's rate, writes it as a new WAV file and
// removes the previous reference. It returns the new path.
func (s *Store) Set(b *buffer.Buffer) (string, error) {
	converted, err := s.conform(b)
	if err != nil {
		return "", err
	}

	data, err := audio.EncodeWAVBytes(converted, audio.DefaultBitDepth)
	if err != nil {
		return "", fmt.Errorf("voiceref: %w", err)
	}

	path := filepath.Join(s.dir, "voice-ref-"+uuid.NewString()+".wav")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("voiceref: write: %w", err)
	}

	s.mu.Lock()
	prev := s.path
	s.path = path
	s.mu.Unlock()

	s.remove(prev)
	s.log.Info("voice reference stored",
		zap.String("path", path),
		zap.Float64("source_rate", b.SampleRate()),
		zap.Float64("seconds", converted.Duration()))

	return path, nil
}

// Path returns the current reference path, or "" when none is set.
func (s *Store) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.path
}

// Clear removes the current reference, if any.
func (s *Store) Clear() {
	s.mu.Lock()
	prev := s.path
	s.path = ""
	s.mu.Unlock()

	s.remove(prev)
	s.log.Info("voice reference cleared")
}

func (s *Store) remove(path string) {
	if path == "" {
		return
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn("remove voice reference", zap.String("path", path), zap.Error(err))
	}
}

func (s *Store) conform(b *buffer.Buffer) (*buffer.Buffer, error) {
	if b == nil {
		return nil, errors.New("voiceref: nil buffer")
	}

	if b.SampleRate() == s.sampleRate {
		return b, nil
	}

	planes := make([][]float64, b.NumChannels())

	for ch := range planes {
		src := make([]float64, b.Len())
		b.CopyToFloat64(src, ch)

		out, err := resample.Convert(src, b.SampleRate(), s.sampleRate, resample.WithQuality(resample.QualityBest))
		if err != nil {
			return nil, fmt.Errorf("voiceref: resample: %w", err)
		}

		planes[ch] = out
	}

	return buffer.FromFloat64(planes, s.sampleRate)
}
