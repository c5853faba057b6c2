package buffer

import (
	"errors"
	"testing"
)

func TestFromChannelsValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels [][]float32
		rate     float64
	}{
		{"no channels", nil, 48000},
		{"ragged", [][]float32{{0, 0}, {0}}, 48000},
		{"zero rate", [][]float32{{0}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := FromChannels(tt.channels, tt.rate)
			if !errors.Is(err, ErrInvalidBuffer) {
				t.Fatalf("err = %v, want ErrInvalidBuffer", err)
			}
		})
	}
}

func TestFromMonoReshapes(t *testing.T) {
	t.Parallel()

	b, err := FromMono([]float32{1, 2, 3}, 16000)
	if err != nil {
		t.Fatalf("FromMono() error = %v", err)
	}

	if b.NumChannels() != 1 || b.Len() != 3 {
		t.Fatalf("shape = (%d, %d), want (1, 3)", b.NumChannels(), b.Len())
	}

	if b.Duration() != 3.0/16000 {
		t.Fatalf("Duration() = %v", b.Duration())
	}
}

func TestCopyIsDeep(t *testing.T) {
	t.Parallel()

	b, err := FromChannels([][]float32{{1, 2}, {3, 4}}, 44100)
	if err != nil {
		t.Fatalf("FromChannels() error = %v", err)
	}

	c := b.Copy()
	if !b.Equal(c) {
		t.Fatal("copy differs from source")
	}

	c.Channel(0)[0] = 9
	if b.Channel(0)[0] != 1 {
		t.Fatal("mutating copy changed source")
	}

	if b.Equal(c) {
		t.Fatal("Equal should report the difference")
	}
}

func TestFromFloat64Casts(t *testing.T) {
	t.Parallel()

	b, err := FromFloat64([][]float64{{0.1, -0.5}}, 8000)
	if err != nil {
		t.Fatalf("FromFloat64() error = %v", err)
	}

	if b.Channel(0)[0] != float32(0.1) || b.Channel(0)[1] != -0.5 {
		t.Fatalf("samples = %v", b.Channel(0))
	}

	dst := make([]float64, 2)
	b.CopyToFloat64(dst, 0)

	if dst[1] != -0.5 {
		t.Fatalf("CopyToFloat64 = %v", dst)
	}
}

func TestPoolZeroesPlanes(t *testing.T) {
	t.Parallel()

	p := NewPool()

	s := p.Get(4)
	for i := range s {
		s[i] = 1
	}

	p.Put(s)

	s2 := p.Get(3)
	if len(s2) != 3 {
		t.Fatalf("len = %d, want 3", len(s2))
	}

	for i, v := range s2 {
		if v != 0 {
			t.Fatalf("index %d not zeroed: %v", i, v)
		}
	}
}
