package oto

import "math"

// floatBufferTo16BitLE converts a []float32 buffer to a 16-bit little-endian
// byte buffer, clamping the samples to [-1, 1]. The result is appended to out
// so the caller can reuse its capacity.
func floatBufferTo16BitLE(buffer []float32, out []byte) []byte {
	for _, v := range buffer {
		var uv int16
		if v < -1.0 {
			uv = -math.MaxInt16
		} else if v > 1.0 {
			uv = math.MaxInt16
		} else {
			uv = int16(v * math.MaxInt16)
		}
		out = append(out, byte(uv), byte(uint16(uv)>>8))
	}
	return out
}
