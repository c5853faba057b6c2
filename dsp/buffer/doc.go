// Package buffer provides the multi-channel float32 audio buffer passed
// through effect chains, plus a pool of float64 scratch planes used while
// processing.
package buffer
