package effects

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/dscruggs/lyre-studio/dsp/core"
	"github.com/dscruggs/lyre-studio/dsp/window"
)

const (
	codecFrameSize  = 1024
	codecHopSize    = codecFrameSize / 2
	minCodecQuality = 0.0
	maxCodecQuality = 10.0
)

// SpectralCodec emulates the artifacts of a perceptual lossy codec such as
// MP3: the signal is split into overlapping windowed frames, each frame's
// spectrum is band-limited and its bins are quantized relative to the
// frame peak, and the frames are overlap-added back together.
//
// Quality follows the LAME VBR scale: 0 is best, 10 is worst.
type SpectralCodec struct {
	sampleRate float64
	quality    float64

	cutoffBin int
	snrDB     float64

	plan     *algofft.Plan[complex128]
	win      []float64
	frame    []float64
	spectrum []complex128
	scale    float64
}

// NewSpectralCodec creates a codec emulator at the given VBR quality.
func NewSpectralCodec(sampleRate, quality float64) (*SpectralCodec, error) {
	if err := core.ValidateSampleRate("mp3 codec", sampleRate); err != nil {
		return nil, err
	}

	if err := core.ValidateRange("mp3 codec", "vbr quality", quality, minCodecQuality, maxCodecQuality); err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(codecFrameSize)
	if err != nil {
		return nil, fmt.Errorf("mp3 codec: fft plan: %w", err)
	}

	cutoffHz := math.Min(19500-1100*quality, 0.5*sampleRate)
	c := &SpectralCodec{
		sampleRate: sampleRate,
		quality:    quality,
		cutoffBin:  int(cutoffHz / sampleRate * codecFrameSize),
		snrDB:      84 - 5*quality,
		plan:       plan,
		win:        window.Generate(window.TypeSqrtHann, codecFrameSize, window.WithPeriodic()),
		frame:      make([]float64, codecFrameSize),
		spectrum:   make([]complex128, codecFrameSize),
	}

	if err := c.calibrate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Quality returns the VBR quality in [0, 10].
func (c *SpectralCodec) Quality() float64 { return c.quality }

// calibrate measures the forward/inverse round-trip gain so frames come
// back at unit level regardless of the FFT normalization convention.
func (c *SpectralCodec) calibrate() error {
	clear(c.spectrum)
	c.spectrum[0] = 1

	if err := c.plan.Forward(c.spectrum, c.spectrum); err != nil {
		return fmt.Errorf("mp3 codec: forward fft: %w", err)
	}

	if err := c.plan.Inverse(c.spectrum, c.spectrum); err != nil {
		return fmt.Errorf("mp3 codec: inverse fft: %w", err)
	}

	g := real(c.spectrum[0])
	if g == 0 || math.IsNaN(g) {
		return fmt.Errorf("mp3 codec: degenerate fft round trip gain %v", g)
	}

	c.scale = 1 / g

	return nil
}

// Process encodes and decodes buf in place.
func (c *SpectralCodec) Process(buf []float64) error {
	n := len(buf)
	if n == 0 {
		return nil
	}

	// Pad a hop on each side so every sample is covered by two frames.
	padded := make([]float64, n+2*codecHopSize+codecFrameSize)
	copy(padded[codecHopSize:], buf)
	out := make([]float64, len(padded))

	for start := 0; start+codecFrameSize <= len(padded); start += codecHopSize {
		copy(c.frame, padded[start:start+codecFrameSize])

		if err := window.ApplyCoefficientsInPlace(c.frame, c.win); err != nil {
			return err
		}

		if err := c.codeFrame(); err != nil {
			return err
		}

		if err := window.ApplyCoefficientsInPlace(c.frame, c.win); err != nil {
			return err
		}

		for i, v := range c.frame {
			out[start+i] += v
		}
	}

	copy(buf, out[codecHopSize:codecHopSize+n])

	return nil
}

// ProcessInPlace is Process without an error; FFT failures leave buf
// untouched.
func (c *SpectralCodec) ProcessInPlace(buf []float64) {
	work := append([]float64(nil), buf...)
	if err := c.Process(work); err != nil {
		return
	}

	copy(buf, work)
}

func (c *SpectralCodec) codeFrame() error {
	for i, v := range c.frame {
		c.spectrum[i] = complex(v, 0)
	}

	if err := c.plan.Forward(c.spectrum, c.spectrum); err != nil {
		return fmt.Errorf("mp3 codec: forward fft: %w", err)
	}

	var peak float64
	for _, v := range c.spectrum[:codecFrameSize/2+1] {
		peak = math.Max(peak, math.Hypot(real(v), imag(v)))
	}

	step := peak * math.Pow(10, -c.snrDB/20)

	for k := 0; k <= codecFrameSize/2; k++ {
		v := c.spectrum[k]
		if k > c.cutoffBin || step == 0 {
			v = 0
		} else {
			v = complex(math.Round(real(v)/step)*step, math.Round(imag(v)/step)*step)
		}

		c.spectrum[k] = v
		if k > 0 && k < codecFrameSize/2 {
			c.spectrum[codecFrameSize-k] = complex(real(v), -imag(v))
		}
	}

	if err := c.plan.Inverse(c.spectrum, c.spectrum); err != nil {
		return fmt.Errorf("mp3 codec: inverse fft: %w", err)
	}

	for i := range c.frame {
		c.frame[i] = real(c.spectrum[i]) * c.scale
	}

	return nil
}

// Reset is a no-op; each block is processed independently.
func (c *SpectralCodec) Reset() {}
