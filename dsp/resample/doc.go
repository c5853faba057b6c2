// Package resample converts sample rates with a windowed-sinc polyphase
// FIR. Conversion is offline: each call processes a whole block and the
// output is time-aligned with the input (no filter latency).
package resample
