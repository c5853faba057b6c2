// Package modulation provides LFO-driven delay and allpass effects.
package modulation
