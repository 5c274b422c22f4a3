package engine

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/drgolem/flickplayer/pkg/decoderworker"
	"github.com/drgolem/flickplayer/pkg/ringsource"
	"github.com/drgolem/flickplayer/pkg/types"
)

const commandRecvTimeout = 50 * time.Millisecond
const preRollPollInterval = 10 * time.Millisecond

// runController is the Controller's main loop: a single long-running
// goroutine holding the command channel receiver, the finished-track
// channel receiver, the event sender, and shared state. Grounded on
// original_source/rust/src/audio/engine.rs's command_processing_loop.
func (e *Engine) runController() {
	defer e.controllerWG.Done()

	for {
		e.drainFinishedTracks()

		select {
		case cmd := <-e.commandCh:
			if e.dispatch(cmd) {
				return
			}
		case <-time.After(commandRecvTimeout):
		}

		e.gcWorkers()

		if e.shutdown.Load() {
			return
		}
	}
}

func (e *Engine) drainFinishedTracks() {
	for {
		select {
		case src := <-e.finishedCh:
			if src != nil {
				e.emit(TrackEndedEvent{Path: src.Info().Path})
			}
		default:
			return
		}
	}
}

// dispatch handles one command. Returns true if the Controller loop
// should exit (Shutdown).
func (e *Engine) dispatch(cmd Command) bool {
	switch c := cmd.(type) {
	case PlayCmd:
		e.handlePlay(c.Path)
	case QueueNextCmd:
		e.handleQueueNext(c.Path)
	case PauseCmd:
		e.paused.Store(true)
		e.setState(StatePaused)
		e.emit(StateChangedEvent{State: StatePaused})
	case ResumeCmd:
		e.paused.Store(false)
		e.setState(StatePlaying)
		e.emit(StateChangedEvent{State: StatePlaying})
	case StopCmd:
		e.handleStop()
	case SeekCmd:
		e.emit(ErrorEvent{Message: "Seek not yet implemented"})
	case SetVolumeCmd:
		e.setVolume(c.Volume)
	case SetCrossfadeCmd:
		e.handleSetCrossfade(c)
	case SetCrossfadeCurveCmd:
		e.crossfaderMu.Lock()
		e.crossfader.SetCurve(c.Curve)
		e.crossfaderMu.Unlock()
	case SetPlaybackSpeedCmd:
		e.setSpeed(c.Speed)
		e.speedMu.Lock()
		e.fracPos = 0
		e.speedMu.Unlock()
	case CrossfadeToNextCmd:
		e.handleSkipOrCrossfade()
	case SkipToNextCmd:
		e.handleSkipOrCrossfade()
	case ShutdownCmd:
		e.handleShutdown()
		return true
	}
	return false
}

func (e *Engine) handlePlay(path string) {
	e.setState(StateBuffering)
	e.emit(StateChangedEvent{State: StateBuffering})

	e.providerMu.Lock()
	e.provider.Stop()
	e.providerMu.Unlock()

	e.crossfaderMu.Lock()
	e.crossfader.Reset()
	e.crossfaderMu.Unlock()

	src, worker, err := decoderworker.Spawn(path, e.cfg.SampleRate, e.cfg.RingCapacity)
	if err != nil {
		e.setState(StateIdle)
		e.emit(ErrorEvent{Message: fmt.Sprintf("Failed to decode %s: %v", filepath.Base(path), err)})
		return
	}

	if !e.preRoll(src) {
		worker.Stop()
		e.setState(StateIdle)
		e.emit(ErrorEvent{Message: fmt.Sprintf("Failed to decode %s: pre-roll timed out", filepath.Base(path))})
		return
	}

	src.MarkReady()
	src.MarkPlaying()

	e.providerMu.Lock()
	e.provider.SetCurrent(src)
	e.providerMu.Unlock()

	e.paused.Store(false)

	e.workersMu.Lock()
	e.workers[src] = worker
	e.workersMu.Unlock()

	e.setState(StatePlaying)
	e.emit(StateChangedEvent{State: StatePlaying})
}

func (e *Engine) handleQueueNext(path string) {
	src, worker, err := decoderworker.Spawn(path, e.cfg.SampleRate, e.cfg.RingCapacity)
	if err != nil {
		e.emit(ErrorEvent{Message: fmt.Sprintf("Failed to decode %s: %v", filepath.Base(path), err)})
		return
	}

	if !e.preRoll(src) {
		worker.Stop()
		e.emit(ErrorEvent{Message: fmt.Sprintf("Failed to decode %s: pre-roll timed out", filepath.Base(path))})
		return
	}

	src.MarkReady()

	e.providerMu.Lock()
	e.provider.QueueNext(src)
	e.providerMu.Unlock()

	e.workersMu.Lock()
	e.workers[src] = worker
	e.workersMu.Unlock()

	e.emit(NextTrackReadyEvent{Path: path})
}

// preRoll polls HasEnoughBuffer up to preRollPollMax times, 10ms apart.
func (e *Engine) preRoll(src *ringsource.Source) bool {
	for i := 0; i < preRollPollMax; i++ {
		if src.HasEnoughBuffer() {
			return true
		}
		time.Sleep(preRollPollInterval)
	}
	return src.HasEnoughBuffer()
}

func (e *Engine) handleStop() {
	e.providerMu.Lock()
	e.provider.Stop()
	e.providerMu.Unlock()

	e.crossfaderMu.Lock()
	e.crossfader.Reset()
	e.crossfaderMu.Unlock()

	e.setState(StateStopped)
	e.emit(StateChangedEvent{State: StateStopped})
}

func (e *Engine) handleSetCrossfade(c SetCrossfadeCmd) {
	e.crossfaderMu.Lock()
	e.crossfader.SetEnabled(c.Enabled)
	e.crossfader.SetDurationSecs(float64(c.DurationSecs), e.cfg.SampleRate, e.cfg.Channels)
	e.crossfaderMu.Unlock()
}

// handleSkipOrCrossfade backs both CrossfadeToNext and SkipToNext: per
// the original engine, these are the same handler. See SPEC_FULL.md.
func (e *Engine) handleSkipOrCrossfade() {
	e.providerMu.Lock()
	hasNext := e.provider.HasNext()
	e.providerMu.Unlock()

	if !hasNext {
		return
	}

	e.crossfaderMu.Lock()
	enabled := e.crossfader.IsEnabled()
	if enabled {
		e.crossfader.Start()
		active := e.crossfader.IsActive()
		e.crossfaderMu.Unlock()
		if active {
			e.providerMu.Lock()
			from := e.provider.Current()
			to := e.provider.Next()
			e.providerMu.Unlock()

			var fromPath, toPath string
			if from != nil {
				fromPath = from.Info().Path
			}
			if to != nil {
				toPath = to.Info().Path
			}

			e.setState(StateCrossfading)
			e.emit(CrossfadeStartedEvent{FromPath: fromPath, ToPath: toPath})
			e.emit(StateChangedEvent{State: StateCrossfading})
		}
		return
	}
	e.crossfaderMu.Unlock()

	e.providerMu.Lock()
	evicted := e.provider.AdvanceToNext()
	e.providerMu.Unlock()
	if evicted != nil {
		select {
		case e.finishedCh <- evicted:
		default:
		}
	}
	e.setState(StatePlaying)
}

func (e *Engine) handleShutdown() {
	e.providerMu.Lock()
	e.provider.Stop()
	e.providerMu.Unlock()

	e.workersMu.Lock()
	for _, w := range e.workers {
		w.Stop()
	}
	e.workersMu.Unlock()

	e.shutdown.Store(true)
}

type workerFailure struct {
	src *ringsource.Source
	err *types.EngineError
}

// gcWorkers drops tracked worker handles whose decode loop has finished,
// then surfaces any terminal decode failures to the host.
func (e *Engine) gcWorkers() {
	e.workersMu.Lock()
	var failures []workerFailure
	for src, w := range e.workers {
		select {
		case <-w.Done():
			if err := w.Err(); err != nil {
				failures = append(failures, workerFailure{src: src, err: err})
			}
			delete(e.workers, src)
		default:
		}
	}
	e.workersMu.Unlock()

	for _, f := range failures {
		slog.Warn("decoder worker ended with error", "path", f.src.Info().Path, "error", f.err)
		e.handleWorkerFailure(f.src, f.err)
	}
}

// handleWorkerFailure surfaces a fatal decode failure as an Error event
// and leaves the Source Provider in a defined state: if the failed
// source was current, advance to a queued next track (same as a clean
// track end) or stop entirely if there was none; if it was the queued
// next, just drop it. Per spec.md section 7.
func (e *Engine) handleWorkerFailure(src *ringsource.Source, err *types.EngineError) {
	e.emit(ErrorEvent{Message: fmt.Sprintf("Decoding failed for %s: %v", filepath.Base(src.Info().Path), err)})

	e.providerMu.Lock()
	switch src {
	case e.provider.Current():
		if e.provider.HasNext() {
			e.provider.AdvanceToNext()
			e.providerMu.Unlock()
			e.setState(StatePlaying)
			e.emit(StateChangedEvent{State: StatePlaying})
			return
		}
		e.provider.Stop()
		e.providerMu.Unlock()
		e.setState(StateStopped)
		e.emit(StateChangedEvent{State: StateStopped})
	case e.provider.Next():
		e.provider.QueueNext(nil)
		e.providerMu.Unlock()
	default:
		e.providerMu.Unlock()
	}
}
