package engine

import "github.com/drgolem/flickplayer/pkg/crossfade"

// Command is the command surface from host to Controller, spec.md
// section 6. Each concrete type below is one command variant; the
// Controller type-switches on them.
type Command interface{ isCommand() }

type PlayCmd struct{ Path string }
type QueueNextCmd struct{ Path string }
type PauseCmd struct{}
type ResumeCmd struct{}
type StopCmd struct{}
type SeekCmd struct{ PositionSecs float64 }
type SetVolumeCmd struct{ Volume float32 }
type SetCrossfadeCmd struct {
	Enabled      bool
	DurationSecs float32
}
type SetCrossfadeCurveCmd struct{ Curve crossfade.Curve }
type SetPlaybackSpeedCmd struct{ Speed float32 }
type CrossfadeToNextCmd struct{}
type SkipToNextCmd struct{}
type ShutdownCmd struct{}

func (PlayCmd) isCommand()              {}
func (QueueNextCmd) isCommand()         {}
func (PauseCmd) isCommand()             {}
func (ResumeCmd) isCommand()            {}
func (StopCmd) isCommand()              {}
func (SeekCmd) isCommand()              {}
func (SetVolumeCmd) isCommand()         {}
func (SetCrossfadeCmd) isCommand()      {}
func (SetCrossfadeCurveCmd) isCommand() {}
func (SetPlaybackSpeedCmd) isCommand()  {}
func (CrossfadeToNextCmd) isCommand()   {}
func (SkipToNextCmd) isCommand()        {}
func (ShutdownCmd) isCommand()          {}

// PlaybackState is the tag set from spec.md section 6.
type PlaybackState string

const (
	StateIdle         PlaybackState = "idle"
	StatePlaying      PlaybackState = "playing"
	StatePaused       PlaybackState = "paused"
	StateBuffering    PlaybackState = "buffering"
	StateCrossfading  PlaybackState = "crossfading"
	StateStopped      PlaybackState = "stopped"
	StateUninitialized PlaybackState = "uninitialized"
	StateUnavailable  PlaybackState = "unavailable"
)

// Event is the event surface from Controller to host, spec.md section 6.
type Event interface{ isEvent() }

type StateChangedEvent struct{ State PlaybackState }
type ProgressEvent struct {
	PositionSecs float64
	DurationSecs float64
	HasDuration  bool
	BufferLevel  float64
}
type TrackEndedEvent struct{ Path string }
type CrossfadeStartedEvent struct{ FromPath, ToPath string }
type ErrorEvent struct{ Message string }
type NextTrackReadyEvent struct{ Path string }

func (StateChangedEvent) isEvent()     {}
func (ProgressEvent) isEvent()         {}
func (TrackEndedEvent) isEvent()       {}
func (CrossfadeStartedEvent) isEvent() {}
func (ErrorEvent) isEvent()            {}
func (NextTrackReadyEvent) isEvent()   {}
