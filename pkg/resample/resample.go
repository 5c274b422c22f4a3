// Package resample converts interleaved PCM between sample rates for the
// real-time decode pipeline. See DESIGN.md for why this is a hand-written
// interpolator rather than a wrapped third-party resampler: the one
// resampling dependency available (zaf/resample, libsoxr) only exposes a
// whole-file io.Writer-streaming API incompatible with the chunked,
// allocation-free process(in, out) contract the decoder worker needs.
package resample

import (
	"fmt"
)

// Resampler converts interleaved float32 PCM at one rate to another for
// a fixed channel count, using an 8-point (septic, 7th-order) Lagrange
// polynomial interpolator, matching the quality bar of
// original_source/rust/src/audio/resampler.rs's PolynomialDegree::Septic.
// Buffers are pre-allocated at construction time so ProcessInterleaved
// never allocates.
type Resampler struct {
	inputRate   int
	outputRate  int
	channels    int
	chunkFrames int

	passthrough bool
	ratio       float64 // outputRate / inputRate
	invRatio    float64 // inputRate / outputRate

	pos  float64 // fractional input position, carried across calls
	tail [][3]float32
	have bool // tail holds valid carry-over samples

	inBuf  [][]float32 // per-channel deinterleave scratch, len chunkFrames
	outBuf [][]float32 // per-channel scratch, len maxOutFrames
}

// New creates a resampler for converting inputRate to outputRate, for
// channels channels, processing chunkFrames input frames per call.
func New(inputRate, outputRate, channels, chunkFrames int) (*Resampler, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("resample: channels must be positive, got %d", channels)
	}
	if inputRate <= 0 || outputRate <= 0 {
		return nil, fmt.Errorf("resample: rates must be positive (in=%d out=%d)", inputRate, outputRate)
	}
	if chunkFrames <= 0 {
		chunkFrames = 1024
	}

	r := &Resampler{
		inputRate:   inputRate,
		outputRate:  outputRate,
		channels:    channels,
		chunkFrames: chunkFrames,
		passthrough: inputRate == outputRate,
		ratio:       float64(outputRate) / float64(inputRate),
		invRatio:    float64(inputRate) / float64(outputRate),
	}

	maxOutFrames := int(float64(chunkFrames)*r.ratio*1.1) + 10

	r.inBuf = make([][]float32, channels)
	r.outBuf = make([][]float32, channels)
	r.tail = make([][3]float32, channels)
	for c := 0; c < channels; c++ {
		r.inBuf[c] = make([]float32, chunkFrames)
		r.outBuf[c] = make([]float32, maxOutFrames)
	}

	return r, nil
}

// NeedsResampling reports whether input and output rates differ.
func (r *Resampler) NeedsResampling() bool { return !r.passthrough }

func (r *Resampler) InputRate() int  { return r.inputRate }
func (r *Resampler) OutputRate() int { return r.outputRate }
func (r *Resampler) Channels() int   { return r.channels }

// ProcessInterleaved converts a chunk of interleaved input samples,
// writing interleaved output samples into out. Returns the number of
// interleaved samples written (frames * channels).
func (r *Resampler) ProcessInterleaved(in []float32, out []float32) (int, error) {
	if r.passthrough {
		n := len(in)
		if n > len(out) {
			n = len(out)
		}
		copy(out[:n], in[:n])
		return n, nil
	}

	inFrames := len(in) / r.channels
	if inFrames == 0 {
		return 0, nil
	}
	if inFrames > r.chunkFrames {
		inFrames = r.chunkFrames
	}

	for c := 0; c < r.channels; c++ {
		for i := 0; i < inFrames; i++ {
			r.inBuf[c][i] = in[i*r.channels+c]
		}
	}

	sampleAt := func(c, idx int) float32 {
		switch {
		case idx < 0:
			// -1 -> tail[2] (most recent carried sample), -2 -> tail[1], -3 -> tail[0]
			t := idx + 3
			if t < 0 {
				t = 0
			}
			if !r.have {
				return r.inBuf[c][0]
			}
			return r.tail[c][t]
		case idx >= inFrames:
			return r.inBuf[c][inFrames-1]
		default:
			return r.inBuf[c][idx]
		}
	}

	outFrames := 0
	maxOut := len(r.outBuf[0])
	for {
		inPos := r.pos + float64(outFrames)*r.invRatio
		if inPos >= float64(inFrames-1) {
			break
		}
		if outFrames >= maxOut {
			break
		}
		k := int(inPos)
		f := float32(inPos - float64(k))

		for c := 0; c < r.channels; c++ {
			var p [8]float32
			for j := 0; j < 8; j++ {
				p[j] = sampleAt(c, k-3+j)
			}
			r.outBuf[c][outFrames] = lagrange8(p, f)
		}
		outFrames++
	}

	outSamples := outFrames * r.channels
	if outSamples > len(out) {
		return 0, fmt.Errorf("resample: output buffer too small: need %d, have %d", outSamples, len(out))
	}

	for i := 0; i < outFrames; i++ {
		for c := 0; c < r.channels; c++ {
			out[i*r.channels+c] = r.outBuf[c][i]
		}
	}

	// Carry fractional position and last samples forward for the next
	// call, so interpolation stays continuous across chunk boundaries.
	r.pos = r.pos + float64(outFrames)*r.invRatio - float64(inFrames)
	for c := 0; c < r.channels; c++ {
		r.tail[c] = [3]float32{
			sampleAt(c, inFrames-3),
			sampleAt(c, inFrames-2),
			sampleAt(c, inFrames-1),
		}
	}
	r.have = true

	return outSamples, nil
}

// Reset clears carried interpolation state; call between tracks.
func (r *Resampler) Reset() {
	r.pos = 0
	r.have = false
}

// LatencyFrames returns the interpolation kernel's lookahead, in input
// frames. Zero for passthrough.
func (r *Resampler) LatencyFrames() int {
	if r.passthrough {
		return 0
	}
	return 4
}

// lagrangeOffsets are the 8 equally spaced node positions, relative to
// k, that lagrange8 interpolates through: 4 on the left of the segment
// (including k itself) and 4 on the right, giving a 7th-degree (septic)
// polynomial fit.
var lagrangeOffsets = [8]float32{-3, -2, -1, 0, 1, 2, 3, 4}

// lagrange8 evaluates the unique degree-7 polynomial through p[0..8),
// sampled at integer offsets lagrangeOffsets, at fractional position f
// (0 <= f < 1, measured from p[3], the node at offset 0). This is the
// interpolator the original engine calls PolynomialDegree::Septic.
func lagrange8(p [8]float32, f float32) float32 {
	var sum float32
	for j := 0; j < 8; j++ {
		term := p[j]
		for m := 0; m < 8; m++ {
			if m == j {
				continue
			}
			term *= (f - lagrangeOffsets[m]) / (lagrangeOffsets[j] - lagrangeOffsets[m])
		}
		sum += term
	}
	return sum
}
