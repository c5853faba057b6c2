package voiceref

import (
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dscruggs/lyre-studio/dsp/buffer"
	"github.com/dscruggs/lyre-studio/internal/audio"
	"github.com/dscruggs/lyre-studio/internal/testutil"
)

func newBuffer(t *testing.T, rate float64, n int) *buffer.Buffer {
	t.Helper()

	b, err := buffer.FromFloat64([][]float64{testutil.DeterministicSine(300, rate, 0.4, n)}, rate)
	require.NoError(t, err)

	return b
}

func TestSetResamplesTo24k(t *testing.T) {
	s, err := NewStore(t.TempDir(), 0, zap.NewNop())
	require.NoError(t, err)

	path, err := s.Set(newBuffer(t, 48000, 48000))
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	decoded, err := audio.DecodeBytes(data)
	require.NoError(t, err)
	assert.InDelta(t, 24000.0, decoded.SampleRate(), 0)
	assert.Equal(t, 24000, decoded.Len())
}

func TestSetReplacesPrevious(t *testing.T) {
	s, err := NewStore(t.TempDir(), 24000, nil)
	require.NoError(t, err)

	first, err := s.Set(newBuffer(t, 24000, 2400))
	require.NoError(t, err)

	second, err := s.Set(newBuffer(t, 16000, 1600))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = os.Stat(first)
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(second)
	assert.NoError(t, err)
}

func TestClear(t *testing.T) {
	s, err := NewStore(t.TempDir(), 24000, nil)
	require.NoError(t, err)

	s.Clear()
	assert.Empty(t, s.Path())

	path, err := s.Set(newBuffer(t, 24000, 240))
	require.NoError(t, err)

	s.Clear()
	assert.Empty(t, s.Path())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestConcurrentSetKeepsOneFile(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(dir, 24000, nil)
	require.NoError(t, err)

	ref := newBuffer(t, 24000, 240)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := s.Set(ref)
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.FileExists(t, s.Path())
}
