package audio

import "math"

// Int16ToFloat32 converts PCM int16 samples to float32 in [-1, 1].
func Int16ToFloat32(in []int16) []float32 {
	out := make([]float32, len(in))
	for i, s := range in {
		out[i] = float32(s) / 32768
	}

	return out
}

// BytesToInt16 decodes little-endian 16-bit PCM.
func BytesToInt16(b []byte) []int16 {
	n := len(b) / 2
	out := make([]int16, n)

	for i := range n {
		out[i] = int16(b[2*i]) | int16(b[2*i+1])<<8
	}

	return out
}

// IntToFloat32 scales integer PCM of the given bit depth into [-1, 1).
// 8-bit PCM is unsigned and centred on 128.
func IntToFloat32(v, bitDepth int) float32 {
	if bitDepth == 8 {
		return float32(v-128) / 128
	}

	return float32(float64(v) / float64(int64(1)<<(bitDepth-1)))
}

// Float32ToInt scales a sample in [-1, 1] to integer PCM of bitDepth.
func Float32ToInt(s float32, bitDepth int) int {
	full := float64(int64(1)<<(bitDepth-1)) - 1
	v := int(math.Round(float64(clampUnit(s)) * full))

	if bitDepth == 8 {
		return v + 128
	}

	return v
}

func clampUnit(s float32) float32 {
	switch {
	case s > 1:
		return 1
	case s < -1:
		return -1
	case s != s: // NaN
		return 0
	default:
		return s
	}
}
