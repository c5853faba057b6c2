// Package effects provides the waveshaping, delay, reverb and codec
// emulation primitives behind the effect chain. Each primitive processes
// one mono channel of float64 samples.
package effects
