// Package decoderworker implements the Decoder Worker: a background
// per-track task that probes a file, decodes packets, normalizes to
// interleaved float32, resamples to the output rate, and pushes into a
// Ring Source. Grounded on original_source/rust/src/audio/decoder.rs's
// decode_thread loop and pkg/audioplayer/player.go's producer-goroutine
// idiom (buffer reuse, slog fields on exit).
package decoderworker

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/drgolem/flickplayer/pkg/decoders"
	"github.com/drgolem/flickplayer/pkg/pcm"
	"github.com/drgolem/flickplayer/pkg/resample"
	"github.com/drgolem/flickplayer/pkg/ringsource"
	"github.com/drgolem/flickplayer/pkg/types"
)

const chunkFrames = 4096
const waitForSpaceTimeoutMs = 100

// Worker owns the decoder and producer end for one in-flight track.
type Worker struct {
	path     string
	decoder  types.AudioDecoder
	producer *ringsource.Producer
	src      *ringsource.Source

	done    chan struct{}
	doneOne sync.Once
	lastErr atomic.Value // *types.EngineError
}

// Spawn probes path, constructs a decoder and Ring Source, and starts
// the background decode loop. Returns the consumer-facing Source for
// the Source Provider, and the Worker handle for lifecycle control. On
// probe failure returns synchronously with UnsupportedFormat/NoAudioTrack/IoError.
func Spawn(path string, outputRate int, ringCapacity uint64) (*ringsource.Source, *Worker, error) {
	decoder, err := decoders.NewDecoder(path)
	if err != nil {
		return nil, nil, err
	}

	rate, channels, bits := decoder.GetFormat()
	if channels <= 0 {
		decoder.Close()
		return nil, nil, types.NewError(types.NoAudioTrack, "decoder reports zero channels")
	}

	info := types.SourceInfo{
		Path:         path,
		OriginalRate: rate,
		OutputRate:   outputRate,
		Channels:     channels,
	}

	src, producer := ringsource.New(info, ringCapacity)

	var resampler *resample.Resampler
	if rate != outputRate {
		resampler, err = resample.New(rate, outputRate, channels, chunkFrames)
		if err != nil {
			decoder.Close()
			return nil, nil, types.WrapError(types.ResamplingFailed, "failed to create resampler", err)
		}
	}

	w := &Worker{
		path:     path,
		decoder:  decoder,
		producer: producer,
		src:      src,
		done:     make(chan struct{}),
	}

	go w.run(src, channels, bits, resampler)

	return src, w, nil
}

// Stop signals the decode loop to abort at its next opportunity.
func (w *Worker) Stop() {
	w.src.SignalStop()
}

// Done returns a channel closed when the decode loop exits.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Err returns the terminal error, if the loop exited due to an
// unrecoverable decode failure, or nil on a clean end-of-stream.
func (w *Worker) Err() *types.EngineError {
	if v := w.lastErr.Load(); v != nil {
		return v.(*types.EngineError)
	}
	return nil
}

// selectPCMFormat picks the pcm.Format used to normalize a decoder's
// raw output. Decoders that produce IEEE-754 float32 samples (signaled
// via types.FloatPCMDecoder) are routed to pcm.F32 regardless of what
// bitsPerSample says, since 32-bit float and 32-bit integer PCM share
// the same byte width and FormatFromBits cannot tell them apart.
func selectPCMFormat(decoder types.AudioDecoder, bits int) pcm.Format {
	if fd, ok := decoder.(types.FloatPCMDecoder); ok && fd.DecodesFloat32() {
		return pcm.F32
	}
	return pcm.FormatFromBits(bits)
}

// classifyDecodeError applies spec.md's end-of-stream/reset/soft/fatal
// policy to a non-nil error from DecodeSamples. A decoder that can tell
// these cases apart implements types.DecodeErrorClassifier; one that
// can't (every decoder currently wrapped by pkg/decoders) only ever
// distinguishes a clean io.EOF from everything else, which this falls
// back to as DecodeFatal.
func classifyDecodeError(decoder types.AudioDecoder, err error) types.DecodeErrorKind {
	if c, ok := decoder.(types.DecodeErrorClassifier); ok {
		return c.ClassifyDecodeError(err)
	}
	if errors.Is(err, io.EOF) {
		return types.DecodeEOF
	}
	return types.DecodeFatal
}

func (w *Worker) run(src *ringsource.Source, channels, bits int, resampler *resample.Resampler) {
	defer func() {
		w.producer.Finish()
		w.decoder.Close()
		w.doneOne.Do(func() { close(w.done) })
	}()

	format := selectPCMFormat(w.decoder, bits)
	bytesPerSample := bits / 8
	if bytesPerSample == 0 {
		bytesPerSample = 4
	}

	rawBuf := make([]byte, chunkFrames*channels*bytesPerSample)
	floatBuf := make([]float32, chunkFrames*channels)

	var resampledBuf []float32
	if resampler != nil {
		// Sized the same way the resampler sizes its own internal
		// scratch: ceil(chunk*ratio*1.1)+pad, generous enough that
		// ProcessInterleaved never reports BufferTooSmall here.
		maxOutFrames := int(float64(chunkFrames)*(float64(resampler.OutputRate())/float64(resampler.InputRate()))*1.1) + 256
		resampledBuf = make([]float32, maxOutFrames*channels)
	}

	for {
		if w.producer.Stopped() {
			return
		}

		n, decErr := w.decoder.DecodeSamples(chunkFrames, rawBuf)
		if n > 0 {
			samplesDecoded := n * channels
			pcm.ToFloat32(format, rawBuf[:n*channels*bytesPerSample], floatBuf[:samplesDecoded])

			var out []float32
			if resampler != nil {
				written, rerr := resampler.ProcessInterleaved(floatBuf[:samplesDecoded], resampledBuf)
				if rerr != nil {
					w.fail(src, types.WrapError(types.ResamplingFailed, "resampling failed", rerr))
					return
				}
				out = resampledBuf[:written]
			} else {
				out = floatBuf[:samplesDecoded]
			}

			if !w.push(out) {
				return
			}
		}

		if decErr != nil {
			switch classifyDecodeError(w.decoder, decErr) {
			case types.DecodeEOF:
				slog.Debug("decoder worker reached end of stream",
					"path", filepath.Base(w.path))
				return
			case types.DecodeResetRequired:
				slog.Debug("decoder requested reset, continuing",
					"path", filepath.Base(w.path), "reason", decErr)
				if resetter, ok := w.decoder.(types.DecoderResetter); ok {
					if rerr := resetter.Reset(); rerr != nil {
						w.fail(src, types.WrapError(types.DecodingFailed, "decoder reset failed", rerr))
						return
					}
				}
				continue
			case types.DecodeSoftError:
				slog.Warn("decoder reported a recoverable per-packet error, skipping",
					"path", filepath.Base(w.path), "error", decErr)
				continue
			default:
				w.fail(src, types.WrapError(types.DecodingFailed, "decode failed", decErr))
				return
			}
		}
		if n == 0 {
			return
		}
	}
}

// push writes out to the producer, sleep-waiting on backpressure when
// the FIFO is full. Returns false if the worker should abort (stop
// signal or a backpressure timeout).
func (w *Worker) push(out []float32) bool {
	remaining := out
	for len(remaining) > 0 {
		if w.producer.Stopped() {
			return false
		}
		written := w.producer.Write(remaining)
		remaining = remaining[written:]
		if len(remaining) > 0 {
			if !w.producer.WaitForSpace(len(remaining), waitForSpaceTimeoutMs) {
				return false
			}
		}
	}
	return true
}

func (w *Worker) fail(src *ringsource.Source, err *types.EngineError) {
	w.lastErr.Store(err)
	src.MarkError()
	slog.Warn("decoder worker failed", "path", filepath.Base(w.path), "error", err)
}
