// Package engine is the real-time audio playback engine: the command
// protocol, the Controller, and the Mixer/Callback. It is a process-wide
// singleton, mirroring original_source/rust/src/api/audio_api.rs's
// OnceCell<AudioEngineHandle> pattern.
package engine

import (
	"sync"

	"github.com/drgolem/flickplayer/internal/output"
	"github.com/drgolem/flickplayer/pkg/crossfade"
	"github.com/drgolem/flickplayer/pkg/types"
)

var (
	instMu   sync.Mutex
	instance *Engine
)

// Init constructs and starts the engine: opens the real-time output
// stream and starts the Controller goroutine. Fails with
// AlreadyInitialized if called twice without an intervening Shutdown.
func Init(cfg Config) error {
	instMu.Lock()
	defer instMu.Unlock()

	if instance != nil {
		return types.NewError(types.AlreadyInitialized, "engine already initialized")
	}

	e := newEngine(cfg)

	stream := output.New(cfg.DeviceIndex, e.cfg.SampleRate, e.cfg.Channels, e.cfg.FramesPerBuffer, e.mixCallback)
	if err := stream.Open(); err != nil {
		return types.WrapError(types.IoError, "failed to open output stream", err)
	}
	e.stream = stream

	e.controllerWG.Add(1)
	go e.runController()

	instance = e
	return nil
}

// Shutdown stops the Controller, signals every decoder to stop, and
// closes the output stream. Idempotent: safe to call when not
// initialized.
func Shutdown() error {
	instMu.Lock()
	e := instance
	instance = nil
	instMu.Unlock()

	if e == nil {
		return nil
	}

	e.shutdownOnce.Do(func() {
		select {
		case e.commandCh <- ShutdownCmd{}:
		default:
			e.shutdown.Store(true)
		}
	})
	e.controllerWG.Wait()

	if e.stream != nil {
		return e.stream.Close()
	}
	return nil
}

func current() (*Engine, error) {
	instMu.Lock()
	defer instMu.Unlock()
	if instance == nil {
		return nil, types.NewError(types.NotInitialized, "engine not initialized")
	}
	return instance, nil
}

func send(cmd Command) error {
	e, err := current()
	if err != nil {
		return err
	}
	select {
	case e.commandCh <- cmd:
		return nil
	default:
		return types.NewError(types.CommandChannelFull, "command channel full")
	}
}

func Play(path string) error                  { return send(PlayCmd{Path: path}) }
func QueueNext(path string) error             { return send(QueueNextCmd{Path: path}) }
func Pause() error                            { return send(PauseCmd{}) }
func Resume() error                           { return send(ResumeCmd{}) }
func Stop() error                             { return send(StopCmd{}) }
func Seek(positionSecs float64) error         { return send(SeekCmd{PositionSecs: positionSecs}) }
func SetVolume(v float32) error                { return send(SetVolumeCmd{Volume: v}) }
func SetCrossfade(enabled bool, durationSecs float32) error {
	return send(SetCrossfadeCmd{Enabled: enabled, DurationSecs: durationSecs})
}
func SetCrossfadeCurve(curve crossfade.Curve) error { return send(SetCrossfadeCurveCmd{Curve: curve}) }
func SetPlaybackSpeed(speed float32) error          { return send(SetPlaybackSpeedCmd{Speed: speed}) }
func CrossfadeToNext() error                        { return send(CrossfadeToNextCmd{}) }
func SkipToNext() error                             { return send(SkipToNextCmd{}) }

// PollEvent non-blockingly dequeues the next event, if any.
func PollEvent() (Event, bool) {
	e, err := current()
	if err != nil {
		return nil, false
	}
	select {
	case ev := <-e.eventCh:
		return ev, true
	default:
		return nil, false
	}
}

func IsInitialized() bool {
	instMu.Lock()
	defer instMu.Unlock()
	return instance != nil
}

// IsNativeAvailable reports whether a real-time output stream can be
// opened on this platform. This module always answers true: stream
// construction failure surfaces through Init's error return instead,
// since PortAudio availability can only be known by attempting to open
// a stream.
func IsNativeAvailable() bool { return true }

func GetState() (PlaybackState, error) {
	e, err := current()
	if err != nil {
		return StateUninitialized, err
	}
	return e.getState(), nil
}

// Progress is the result of GetProgress.
type Progress struct {
	PositionSecs float64
	DurationSecs float64
	HasDuration  bool
	BufferLevel  float64
}

func GetProgress() (Progress, error) {
	e, err := current()
	if err != nil {
		return Progress{}, err
	}
	e.providerMu.Lock()
	cur := e.provider.Current()
	e.providerMu.Unlock()
	if cur == nil {
		return Progress{}, nil
	}
	info := cur.Info()
	return Progress{
		PositionSecs: cur.PositionSecs(),
		DurationSecs: info.DurationSecs,
		HasDuration:  info.DurationSecs > 0,
		BufferLevel:  cur.BufferLevel(),
	}, nil
}

func GetSampleRate() (int, error) {
	e, err := current()
	if err != nil {
		return 0, err
	}
	return e.cfg.SampleRate, nil
}

func GetChannels() (int, error) {
	e, err := current()
	if err != nil {
		return 0, err
	}
	return e.cfg.Channels, nil
}

func GetPlaybackSpeed() (float32, error) {
	e, err := current()
	if err != nil {
		return 0, err
	}
	return e.speed(), nil
}
