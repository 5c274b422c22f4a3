package engine

import (
	"testing"

	"github.com/drgolem/flickplayer/pkg/ringsource"
	"github.com/drgolem/flickplayer/pkg/types"
)

func testEngine() *Engine {
	return newEngine(Config{})
}

func TestNewEngineDefaults(t *testing.T) {
	e := testEngine()
	if e.cfg.SampleRate != defaultOutputRate {
		t.Errorf("expected default sample rate, got %d", e.cfg.SampleRate)
	}
	if e.cfg.Channels != 2 {
		t.Errorf("expected default channels 2, got %d", e.cfg.Channels)
	}
	if e.getState() != StateIdle {
		t.Errorf("expected initial state Idle, got %v", e.getState())
	}
	if e.volume() != 1 {
		t.Errorf("expected initial volume 1, got %v", e.volume())
	}
	if e.speed() != 1 {
		t.Errorf("expected initial speed 1, got %v", e.speed())
	}
}

func TestSetVolumeClampsToUnitRange(t *testing.T) {
	e := testEngine()
	e.setVolume(1.5)
	if e.volume() != 1 {
		t.Errorf("expected volume clamped to 1, got %v", e.volume())
	}
	e.setVolume(-0.5)
	if e.volume() != 0 {
		t.Errorf("expected volume clamped to 0, got %v", e.volume())
	}
	e.setVolume(0.5)
	if e.volume() != 0.5 {
		t.Errorf("expected volume 0.5, got %v", e.volume())
	}
}

func TestSetSpeedClampsToConfiguredRange(t *testing.T) {
	e := testEngine()
	e.setSpeed(10)
	if e.speed() != maxSpeed {
		t.Errorf("expected speed clamped to %v, got %v", maxSpeed, e.speed())
	}
	e.setSpeed(0.01)
	if e.speed() != minSpeed {
		t.Errorf("expected speed clamped to %v, got %v", minSpeed, e.speed())
	}
}

func TestDispatchPauseResume(t *testing.T) {
	e := testEngine()
	e.dispatch(PauseCmd{})
	if !e.paused.Load() {
		t.Error("expected paused after PauseCmd")
	}
	if e.getState() != StatePaused {
		t.Errorf("expected Paused state, got %v", e.getState())
	}

	e.dispatch(ResumeCmd{})
	if e.paused.Load() {
		t.Error("expected not paused after ResumeCmd")
	}
	if e.getState() != StatePlaying {
		t.Errorf("expected Playing state, got %v", e.getState())
	}
}

func TestDispatchShutdownReturnsTrue(t *testing.T) {
	e := testEngine()
	if exit := e.dispatch(ShutdownCmd{}); !exit {
		t.Error("expected dispatch(ShutdownCmd) to signal loop exit")
	}
	if !e.shutdown.Load() {
		t.Error("expected shutdown flag set")
	}
}

func TestDispatchSetCrossfade(t *testing.T) {
	e := testEngine()
	e.dispatch(SetCrossfadeCmd{Enabled: true, DurationSecs: 2})
	if !e.crossfader.IsEnabled() {
		t.Error("expected crossfader enabled")
	}
	got := e.crossfader.DurationSecs(e.cfg.SampleRate, e.cfg.Channels)
	if got < 1.9 || got > 2.1 {
		t.Errorf("expected ~2s duration, got %v", got)
	}
}

func TestDispatchSetCrossfadeAlwaysSetsDurationEvenWhenDisabling(t *testing.T) {
	e := testEngine()
	e.dispatch(SetCrossfadeCmd{Enabled: true, DurationSecs: 3})
	e.dispatch(SetCrossfadeCmd{Enabled: false, DurationSecs: 5})
	if e.crossfader.IsEnabled() {
		t.Error("expected crossfader disabled")
	}
	got := e.crossfader.DurationSecs(e.cfg.SampleRate, e.cfg.Channels)
	if got < 4.9 || got > 5.1 {
		t.Errorf("expected duration to still update to ~5s, got %v", got)
	}
}

func TestEmitAndPollEventNonBlocking(t *testing.T) {
	e := testEngine()
	e.emit(StateChangedEvent{State: StatePlaying})

	select {
	case ev := <-e.eventCh:
		sc, ok := ev.(StateChangedEvent)
		if !ok || sc.State != StatePlaying {
			t.Errorf("unexpected event: %#v", ev)
		}
	default:
		t.Fatal("expected an event to be queued")
	}
}

func TestDrainFinishedTracksEmitsTrackEnded(t *testing.T) {
	e := testEngine()
	src, _ := newTestSourceForEngine(t)
	e.finishedCh <- src

	e.drainFinishedTracks()

	select {
	case ev := <-e.eventCh:
		te, ok := ev.(TrackEndedEvent)
		if !ok {
			t.Fatalf("expected TrackEndedEvent, got %#v", ev)
		}
		if te.Path != src.Info().Path {
			t.Errorf("expected path %q, got %q", src.Info().Path, te.Path)
		}
	default:
		t.Fatal("expected a TrackEndedEvent")
	}
}

func TestHandleSkipOrCrossfadeNoOpWithoutNext(t *testing.T) {
	e := testEngine()
	e.handleSkipOrCrossfade()
	if e.getState() != StateIdle {
		t.Errorf("expected state unchanged (Idle), got %v", e.getState())
	}
}

// drainEvents collects every currently queued event, in order.
func drainEvents(e *Engine) []Event {
	var out []Event
	for {
		select {
		case ev := <-e.eventCh:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestHandleWorkerFailureOnCurrentWithNoNextStopsAndEmitsError(t *testing.T) {
	e := testEngine()
	cur, _ := ringsource.New(types.SourceInfo{Path: "a.wav", OutputRate: 48000, Channels: 2}, 64)
	e.provider.SetCurrent(cur)

	e.handleWorkerFailure(cur, types.NewError(types.DecodingFailed, "bad frame"))

	if e.provider.Current() != nil {
		t.Error("expected current source cleared")
	}
	if e.getState() != StateStopped {
		t.Errorf("expected state Stopped, got %v", e.getState())
	}

	var gotError, gotStopped bool
	for _, ev := range drainEvents(e) {
		switch ev.(type) {
		case ErrorEvent:
			gotError = true
		case StateChangedEvent:
			gotStopped = true
		}
	}
	if !gotError {
		t.Error("expected an ErrorEvent")
	}
	if !gotStopped {
		t.Error("expected a StateChangedEvent")
	}
}

func TestHandleWorkerFailureOnCurrentWithNextAdvances(t *testing.T) {
	e := testEngine()
	cur, _ := ringsource.New(types.SourceInfo{Path: "a.wav", OutputRate: 48000, Channels: 2}, 64)
	nxt, _ := ringsource.New(types.SourceInfo{Path: "b.wav", OutputRate: 48000, Channels: 2}, 64)
	e.provider.SetCurrent(cur)
	e.provider.QueueNext(nxt)

	e.handleWorkerFailure(cur, types.NewError(types.DecodingFailed, "bad frame"))

	if e.provider.Current() != nxt {
		t.Error("expected provider to advance to the queued next source")
	}
	if e.provider.HasNext() {
		t.Error("expected next slot cleared after advancing")
	}
	if e.getState() != StatePlaying {
		t.Errorf("expected state Playing, got %v", e.getState())
	}

	var gotError bool
	for _, ev := range drainEvents(e) {
		if _, ok := ev.(ErrorEvent); ok {
			gotError = true
		}
	}
	if !gotError {
		t.Error("expected an ErrorEvent")
	}
}

func TestHandleWorkerFailureOnNextOnlyClearsNext(t *testing.T) {
	e := testEngine()
	cur, _ := ringsource.New(types.SourceInfo{Path: "a.wav", OutputRate: 48000, Channels: 2}, 64)
	nxt, _ := ringsource.New(types.SourceInfo{Path: "b.wav", OutputRate: 48000, Channels: 2}, 64)
	e.provider.SetCurrent(cur)
	e.provider.QueueNext(nxt)

	e.handleWorkerFailure(nxt, types.NewError(types.DecodingFailed, "bad frame"))

	if e.provider.Current() != cur {
		t.Error("expected current source untouched")
	}
	if e.provider.HasNext() {
		t.Error("expected next source cleared")
	}
}

func TestHandleSkipOrCrossfadeEmitsCrossfadeStarted(t *testing.T) {
	e := testEngine()
	cur, _ := ringsource.New(types.SourceInfo{Path: "a.wav", OutputRate: 48000, Channels: 2}, 64)
	nxt, _ := ringsource.New(types.SourceInfo{Path: "b.wav", OutputRate: 48000, Channels: 2}, 64)
	e.provider.SetCurrent(cur)
	e.provider.QueueNext(nxt)
	e.dispatch(SetCrossfadeCmd{Enabled: true, DurationSecs: 1})

	e.handleSkipOrCrossfade()

	var gotStarted, gotStateChanged bool
	for i := 0; i < 2; i++ {
		select {
		case ev := <-e.eventCh:
			switch x := ev.(type) {
			case CrossfadeStartedEvent:
				gotStarted = true
				if x.FromPath != "a.wav" || x.ToPath != "b.wav" {
					t.Errorf("unexpected paths: %#v", x)
				}
			case StateChangedEvent:
				gotStateChanged = true
				if x.State != StateCrossfading {
					t.Errorf("expected Crossfading, got %v", x.State)
				}
			}
		default:
		}
	}
	if !gotStarted {
		t.Error("expected CrossfadeStartedEvent to be emitted")
	}
	if !gotStateChanged {
		t.Error("expected StateChangedEvent to be emitted")
	}
	if e.getState() != StateCrossfading {
		t.Errorf("expected state Crossfading, got %v", e.getState())
	}
}
