package output

import "math"

// encodeFloat32 packs interleaved float32 samples into little-endian
// bytes, the wire format PortAudio's C callback buffer expects
// regardless of the Go-side representation. Any bytes beyond len(in)*4
// are zeroed (silence), covering short reads at end of stream.
func encodeFloat32(in []float32, out []byte) {
	n := len(in)
	if n*4 > len(out) {
		n = len(out) / 4
	}
	for i := 0; i < n; i++ {
		bits := math.Float32bits(in[i])
		off := i * 4
		out[off] = byte(bits)
		out[off+1] = byte(bits >> 8)
		out[off+2] = byte(bits >> 16)
		out[off+3] = byte(bits >> 24)
	}
	for i := n * 4; i < len(out); i++ {
		out[i] = 0
	}
}
