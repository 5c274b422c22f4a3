package types

import (
	"errors"
	"fmt"
	"time"
)

// AudioDecoder is the common interface for all audio decoders (MP3, FLAC, WAV).
// All decoders must implement these methods to provide a consistent API
// for decoding audio files into raw PCM samples.
type AudioDecoder interface {
	// Open opens an audio file for decoding
	Open(fileName string) error

	// Close closes the decoder and releases resources
	Close() error

	// GetFormat returns the audio format information
	// Returns: sample rate (Hz), channels (1=mono, 2=stereo), bits per sample (8/16/24/32)
	GetFormat() (rate, channels, bitsPerSample int)

	// DecodeSamples decodes audio samples into the provided buffer
	// Parameters:
	//   samples: number of samples to decode (not bytes!)
	//   audio: buffer to write decoded audio data
	// Returns: number of samples actually decoded, error if decoding failed
	// Note: Buffer must be large enough: samples * channels * (bitsPerSample/8) bytes
	DecodeSamples(samples int, audio []byte) (int, error)
}

// FloatPCMDecoder is an optional interface a decoder implements when
// DecodeSamples writes IEEE-754 float32 samples rather than integer
// PCM. Such a decoder still reports bitsPerSample=32 from GetFormat
// (the byte width matches S32), so callers that need to distinguish
// float from integer output must type-assert for this interface
// instead of inferring the PCM layout from bit width alone.
type FloatPCMDecoder interface {
	DecodesFloat32() bool
}

// DecodeErrorKind classifies a non-nil error returned from
// AudioDecoder.DecodeSamples, mirroring the distinction
// original_source/rust/src/audio/decoder.rs draws between a container
// reader's symphonia::core::errors::Error variants.
type DecodeErrorKind int

const (
	// DecodeEOF is a clean, expected end of stream: the decode loop
	// should stop without marking the source as failed.
	DecodeEOF DecodeErrorKind = iota
	// DecodeResetRequired means the underlying decoder needs to be
	// reset (e.g. a mid-stream format change) and decoding retried; on
	// its own this is not a failure.
	DecodeResetRequired
	// DecodeSoftError is a recoverable per-packet error: log it and
	// skip to the next packet, the stream continues.
	DecodeSoftError
	// DecodeFatal is unrecoverable: end the stream with DecodingFailed.
	DecodeFatal
)

// DecodeErrorClassifier is an optional interface a decoder implements
// to distinguish EOF/reset-required/soft/fatal decode errors. A plain
// AudioDecoder returns only bare errors, so a caller that needs this
// distinction must type-assert for it; decoders that don't implement
// it fall back to a bare EOF-or-fatal classification.
type DecodeErrorClassifier interface {
	ClassifyDecodeError(err error) DecodeErrorKind
}

// DecoderResetter is an optional interface a decoder implements when it
// can reset its internal state in place (used to recover from
// DecodeResetRequired without reopening the file).
type DecoderResetter interface {
	Reset() error
}

// PlaybackStatus holds unified playback information for audio players.
// This struct provides real-time metrics for monitoring audio playback.
type PlaybackStatus struct {
	FileName        string        // Name of the currently playing file
	SampleRate      int           // Audio sample rate in Hz (e.g., 44100, 48000)
	Channels        int           // Number of audio channels (1=mono, 2=stereo)
	BitsPerSample   int           // Bit depth (8, 16, 24, or 32)
	FramesPerBuffer int           // PortAudio frames per buffer (if applicable)
	PlayedSamples   uint64        // Samples actually sent to audio output (played)
	BufferedSamples uint64        // Samples decoded but not yet played (in-flight)
	ElapsedTime     time.Duration // Wall-clock time since playback started
}

// PlaybackMonitor is an interface for types that can report playback status.
// Implementing this interface allows consistent status monitoring across
// different player implementations.
type PlaybackMonitor interface {
	GetPlaybackStatus() PlaybackStatus
}

// Ring buffer errors for comparison using errors.Is(). No package in this
// module returns them; pkg/ringsource reports short writes and reads as
// counts instead.
var (
	// ErrInsufficientSpace indicates the ringbuffer doesn't have enough space for the write operation
	ErrInsufficientSpace = errors.New("insufficient space in ringbuffer")

	// ErrInsufficientData indicates the ringbuffer doesn't have enough data for the read operation
	ErrInsufficientData = errors.New("insufficient data in ringbuffer")
)

// ErrorKind classifies engine-level failures so callers can branch on
// cause without parsing messages.
type ErrorKind int

const (
	IoError ErrorKind = iota
	UnsupportedFormat
	NoAudioTrack
	DecodingFailed
	ResamplingFailed
	NotInitialized
	AlreadyInitialized
	CommandChannelFull
	Unimplemented
)

func (k ErrorKind) String() string {
	switch k {
	case IoError:
		return "IoError"
	case UnsupportedFormat:
		return "UnsupportedFormat"
	case NoAudioTrack:
		return "NoAudioTrack"
	case DecodingFailed:
		return "DecodingFailed"
	case ResamplingFailed:
		return "ResamplingFailed"
	case NotInitialized:
		return "NotInitialized"
	case AlreadyInitialized:
		return "AlreadyInitialized"
	case CommandChannelFull:
		return "CommandChannelFull"
	case Unimplemented:
		return "Unimplemented"
	default:
		return "Unknown"
	}
}

// EngineError wraps a cause with a classification kind. Errors.Is/As
// unwrap through it the usual way.
type EngineError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func NewError(kind ErrorKind, message string) *EngineError {
	return &EngineError{Kind: kind, Message: message}
}

func WrapError(kind ErrorKind, message string, cause error) *EngineError {
	return &EngineError{Kind: kind, Message: message, Cause: cause}
}

func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Cause
}

// SourceInfo is immutable per-track metadata. decoderworker.Spawn fills
// Path, OriginalRate, OutputRate and Channels after probing a file; it
// does not compute TotalSamples or DurationSecs, so both are zero for
// the sources it creates.
type SourceInfo struct {
	Path             string
	OriginalRate     int
	OutputRate       int
	Channels         int
	TotalSamples     uint64 // interleaved sample count at OutputRate
	DurationSecs     float64
}
