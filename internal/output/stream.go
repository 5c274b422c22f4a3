// Package output wraps PortAudio's callback-mode stream. Generalized
// from internal/fileplayer/fileplayer.go: kept the OpenCallback /
// StartStream / StopStream wiring, replaced the file-specific
// AudioFrameRingBuffer+decoder ownership with a caller-supplied
// callback function, since the Mixer owns its own mixing state
// independently of any one stream wrapper.
package output

import (
	"fmt"

	"github.com/drgolem/go-portaudio/portaudio"
)

// Callback fills out with interleaved float32 samples for frameCount
// frames per channel. It runs on PortAudio's real-time thread and must
// not allocate or block.
type Callback func(out []float32, frameCount int)

// Stream is a real-time PortAudio output stream operating in 32-bit
// float interleaved format, the engine's native working format.
type Stream struct {
	stream          *portaudio.PaStream
	deviceIndex     int
	sampleRate      int
	channels        int
	framesPerBuffer int
	callback        Callback

	// scratch is pre-allocated at Open time and reused by every
	// invocation of paCallback, so the real-time path never allocates.
	scratch []float32
}

// New configures (but does not open) a float32 output stream.
func New(deviceIndex, sampleRate, channels, framesPerBuffer int, cb Callback) *Stream {
	return &Stream{
		deviceIndex:     deviceIndex,
		sampleRate:      sampleRate,
		channels:        channels,
		framesPerBuffer: framesPerBuffer,
		callback:        cb,
	}
}

// Open opens the PortAudio stream and starts it.
func (s *Stream) Open() error {
	s.scratch = make([]float32, s.framesPerBuffer*s.channels)

	s.stream = &portaudio.PaStream{
		OutputParameters: &portaudio.PaStreamParameters{
			DeviceIndex:  s.deviceIndex,
			ChannelCount: s.channels,
			SampleFormat: portaudio.SampleFmtFloat32,
		},
		SampleRate: float64(s.sampleRate),
	}

	if err := s.stream.OpenCallback(s.framesPerBuffer, s.paCallback); err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	if err := s.stream.StartStream(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	return nil
}

// Close stops and releases the stream.
func (s *Stream) Close() error {
	if s.stream == nil {
		return nil
	}
	if err := s.stream.StopStream(); err != nil {
		s.stream = nil
		return fmt.Errorf("failed to stop output stream: %w", err)
	}
	if err := s.stream.CloseCallback(); err != nil {
		s.stream = nil
		return fmt.Errorf("failed to close output stream: %w", err)
	}
	s.stream = nil
	return nil
}

func (s *Stream) paCallback(
	input, output []byte,
	frameCount uint,
	timeInfo *portaudio.StreamCallbackTimeInfo,
	statusFlags portaudio.StreamCallbackFlags,
) portaudio.StreamCallbackResult {
	floatsNeeded := int(frameCount) * s.channels
	if floatsNeeded > len(s.scratch) {
		floatsNeeded = len(s.scratch)
	}
	out := s.scratch[:floatsNeeded]

	s.callback(out, floatsNeeded/s.channels)

	encodeFloat32(out, output)

	return portaudio.Continue
}
