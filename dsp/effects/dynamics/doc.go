// Package dynamics provides feed-forward level processors: a compressor,
// a brickwall limiter and a downward-expanding noise gate.
//
// All processors follow the same shape: a level detector produces an
// envelope per sample, a gain computer maps it to a linear gain, and
// block processing applies the whole gain curve with one vector multiply.
package dynamics
