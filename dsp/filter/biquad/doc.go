// Package biquad implements second-order IIR sections and the cookbook
// designs used by the equalizer effects.
package biquad
