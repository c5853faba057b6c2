// Package effectchain turns a declarative effect configuration into an
// ordered chain of DSP primitives and applies it to an audio buffer.
//
// A Definitions registry describes every effect the service exposes: a
// public name, the primitive kind implementing it and a parameter schema
// with defaults. A Builder resolves a user Config against the registry,
// dropping entries it cannot build, and an Applicator runs the resulting
// Chain over a buffer.Buffer.
package effectchain
