package effectchain

import (
	"fmt"

	"github.com/dscruggs/lyre-studio/dsp/buffer"
)

// Report summarizes one Apply call.
type Report struct {
	Applied []string
	Skipped []Skipped
}

// Applicator builds and runs chains over audio buffers.
type Applicator struct {
	builder *Builder
	pool    *buffer.Pool
}

// NewApplicator returns an Applicator using builder for every call.
func NewApplicator(builder *Builder) *Applicator {
	return &Applicator{builder: builder, pool: buffer.NewPool()}
}

// Builder returns the builder used by the applicator.
func (a *Applicator) Builder() *Builder { return a.builder }

// Apply builds cfg for the layout of in and runs the chain over it.
// Effects that cannot be instantiated at the input rate are skipped and
// reported; ErrApply covers failures while processing. An empty cfg
// returns in itself. in is never modified; on error no buffer is returned.
func (a *Applicator) Apply(in *buffer.Buffer, cfg Config) (*buffer.Buffer, Report, error) {
	if in == nil {
		return nil, Report{}, fmt.Errorf("%w: %w", ErrApply, buffer.ErrInvalidBuffer)
	}

	if len(cfg) == 0 {
		return in, Report{}, nil
	}

	chain, skipped := a.builder.BuildFor(cfg, in.SampleRate(), in.NumChannels())
	report := Report{Applied: chain.Names(), Skipped: skipped}

	out, err := a.run(chain, in)
	if err != nil {
		return nil, report, err
	}

	return out, report, nil
}

// ApplyMono treats samples as a single channel at sampleRate.
func (a *Applicator) ApplyMono(samples []float32, sampleRate float64, cfg Config) (*buffer.Buffer, Report, error) {
	in, err := buffer.FromMono(samples, sampleRate)
	if err != nil {
		return nil, Report{}, fmt.Errorf("%w: %w", ErrApply, err)
	}

	return a.Apply(in, cfg)
}

func (a *Applicator) run(chain *Chain, in *buffer.Buffer) (*buffer.Buffer, error) {
	if chain.Len() == 0 {
		return in.Copy(), nil
	}

	planes := make([][]float64, in.NumChannels())
	for i := range planes {
		planes[i] = a.pool.Get(in.Len())
		in.CopyToFloat64(planes[i], i)
	}

	defer func() {
		for _, p := range planes {
			a.pool.Put(p)
		}
	}()

	processed, rate, err := chain.Process(planes, in.SampleRate())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrApply, err)
	}

	out, err := buffer.FromFloat64(processed, rate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrApply, err)
	}

	return out, nil
}
