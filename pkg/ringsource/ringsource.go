// Package ringsource implements the Ring Source: a lock-free
// single-producer/single-consumer FIFO of interleaved float32 samples
// wrapping one decoded track, plus the lifecycle state around it.
//
// The atomic read/write-position-plus-power-of-2-mask technique here is
// the same one the teacher's byte-oriented ring buffer used; only the
// element type changed, since the Mixer/Callback and Source Provider
// both need sample-granular (not frame- or chunk-granular) access to
// support gapless handoff and crossfade mixing mid-buffer.
package ringsource

import (
	"sync/atomic"
	"time"

	"github.com/drgolem/flickplayer/pkg/types"
)

// DefaultCapacity is 480,000 interleaved samples, ~5s at 48kHz stereo.
const DefaultCapacity = 480_000

// State is the Ring Source's lifecycle state.
type State int32

const (
	Loading State = iota
	Ready
	Playing
	Finished
	Error
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

type ring struct {
	buf      []float32
	size     uint64
	mask     uint64
	writePos atomic.Uint64
	readPos  atomic.Uint64
}

func newRing(capacity uint64) *ring {
	capacity = nextPowerOf2(capacity)
	return &ring{
		buf:  make([]float32, capacity),
		size: capacity,
		mask: capacity - 1,
	}
}

func (r *ring) availableWrite() uint64 {
	return r.size - (r.writePos.Load() - r.readPos.Load())
}

func (r *ring) availableRead() uint64 {
	return r.writePos.Load() - r.readPos.Load()
}

// write pushes as many samples from data as fit, returning the count
// written. It never blocks and never writes a partial sample.
func (r *ring) write(data []float32) int {
	avail := r.availableWrite()
	n := uint64(len(data))
	if n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}

	writePos := r.writePos.Load()
	start := writePos & r.mask
	end := (writePos + n) & r.mask

	if end > start || n == 0 {
		copy(r.buf[start:start+n], data[:n])
	} else {
		firstChunk := r.size - start
		copy(r.buf[start:], data[:firstChunk])
		copy(r.buf[:end], data[firstChunk:n])
	}

	r.writePos.Store(writePos + n)
	return int(n)
}

// read pops up to len(out) samples into out, returning the count read.
func (r *ring) read(out []float32) int {
	avail := r.availableRead()
	n := uint64(len(out))
	if n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}

	readPos := r.readPos.Load()
	start := readPos & r.mask
	end := (readPos + n) & r.mask

	if end > start || n == 0 {
		copy(out[:n], r.buf[start:start+n])
	} else {
		firstChunk := r.size - start
		copy(out[:firstChunk], r.buf[start:])
		copy(out[firstChunk:n], r.buf[:end])
	}

	r.readPos.Store(readPos + n)
	return int(n)
}

func nextPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}

// Source is the consumer-facing half of a Ring Source, owned
// exclusively by the Source Provider.
type Source struct {
	info  types.SourceInfo
	ring  *ring
	state atomic.Int32

	decoderFinished atomic.Bool
	stopSignal      atomic.Bool
	position        atomic.Uint64
}

// Producer is the producer-facing half, owned exclusively by one
// Decoder Worker.
type Producer struct {
	src *Source
}

// New allocates the FIFO and shared flags, returning the consumer and
// producer ends.
func New(info types.SourceInfo, capacity uint64) (*Source, *Producer) {
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	s := &Source{
		info: info,
		ring: newRing(capacity),
	}
	s.state.Store(int32(Loading))
	return s, &Producer{src: s}
}

func (s *Source) Info() types.SourceInfo { return s.info }
func (s *Source) State() State           { return State(s.state.Load()) }

// Read pops up to len(out) samples, bumps position, and transitions to
// Finished once the producer is done and the FIFO has drained.
func (s *Source) Read(out []float32) int {
	n := s.ring.read(out)
	if n > 0 {
		s.position.Add(uint64(n))
	}
	if s.decoderFinished.Load() && s.ring.availableRead() == 0 {
		s.state.CompareAndSwap(int32(Playing), int32(Finished))
		s.state.CompareAndSwap(int32(Ready), int32(Finished))
		s.state.CompareAndSwap(int32(Loading), int32(Finished))
	}
	return n
}

// MarkPlaying transitions the source to Playing once installed as
// current by the Controller.
func (s *Source) MarkPlaying() {
	s.state.CompareAndSwap(int32(Ready), int32(Playing))
}

// MarkReady transitions the source to Ready once pre-roll completes.
func (s *Source) MarkReady() {
	s.state.CompareAndSwap(int32(Loading), int32(Ready))
}

// MarkError transitions the source to Error on an unrecoverable decode
// failure.
func (s *Source) MarkError() {
	s.state.Store(int32(Error))
}

// BufferLevel returns the fraction of the FIFO currently filled, in [0,1].
func (s *Source) BufferLevel() float64 {
	return float64(s.ring.availableRead()) / float64(s.ring.size)
}

// HasEnoughBuffer is true once at least 0.5s is buffered, or the
// decoder has already finished (so no more will ever arrive).
func (s *Source) HasEnoughBuffer() bool {
	if s.decoderFinished.Load() {
		return true
	}
	threshold := uint64(float64(s.info.OutputRate*s.info.Channels) * 0.5)
	return s.ring.availableRead() >= threshold
}

// PositionSecs returns playback position derived from samples consumed.
func (s *Source) PositionSecs() float64 {
	if s.info.OutputRate == 0 || s.info.Channels == 0 {
		return 0
	}
	frames := s.position.Load() / uint64(s.info.Channels)
	return float64(frames) / float64(s.info.OutputRate)
}

// RemainingSecs returns the estimated time left, clamped to 0.
func (s *Source) RemainingSecs() float64 {
	remaining := s.info.DurationSecs - s.PositionSecs()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SignalStop tells the producer to abort at its next opportunity.
func (s *Source) SignalStop() {
	s.stopSignal.Store(true)
}

// Write pushes as many samples from data as fit, returning the count
// written.
func (p *Producer) Write(data []float32) int {
	return p.src.ring.write(data)
}

// WaitForSpace blocks (sleeping in 1ms increments) until at least min
// samples of space are free, the stop signal fires, or timeoutMs
// elapses. Returns false on timeout or stop. Must never be called from
// the real-time callback.
func (p *Producer) WaitForSpace(min int, timeoutMs int) bool {
	elapsed := 0
	for p.src.ring.availableWrite() < uint64(min) {
		if p.src.stopSignal.Load() {
			return false
		}
		if elapsed >= timeoutMs {
			return false
		}
		time.Sleep(time.Millisecond)
		elapsed++
	}
	return true
}

// Finish marks the producer as done; once the FIFO drains the source
// transitions to Finished.
func (p *Producer) Finish() {
	p.src.decoderFinished.Store(true)
}

// Stopped reports whether the consumer has asked this producer to stop.
func (p *Producer) Stopped() bool {
	return p.src.stopSignal.Load()
}
