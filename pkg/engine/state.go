package engine

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/drgolem/flickplayer/pkg/crossfade"
	"github.com/drgolem/flickplayer/pkg/decoderworker"
	"github.com/drgolem/flickplayer/pkg/ringsource"
	"github.com/drgolem/flickplayer/pkg/sourceprovider"
)

const (
	defaultOutputRate      = 48000
	defaultFramesPerBuffer = 1024
	commandQueueSize       = 64
	eventQueueSize         = 256
	finishedQueueSize      = 8
	preRollPollMax         = 100
	lookaheadSecs          = 10.0
	minSpeed               = 0.5
	maxSpeed               = 2.0
	speedEpsilon           = 1e-3
)

// Config configures a new Engine at Init time.
type Config struct {
	DeviceIndex     int
	SampleRate      int // output rate; 0 -> defaultOutputRate
	Channels        int // 0 -> 2 (stereo)
	FramesPerBuffer int // 0 -> defaultFramesPerBuffer
	RingCapacity    uint64
}

// Engine is the process-wide playback engine: public API, Controller
// command/event loop, and Mixer/Callback shared state. See
// original_source/rust/src/audio/engine.rs for the control-flow this
// mirrors.
type Engine struct {
	cfg Config

	commandCh  chan Command
	eventCh    chan Event
	finishedCh chan *ringsource.Source

	controllerWG sync.WaitGroup
	shutdownOnce sync.Once
	shutdown     atomic.Bool

	// Atomics readable from the real-time callback without locking.
	volumeBits atomic.Uint32
	speedBits  atomic.Uint32
	paused     atomic.Bool
	state      atomic.Value // PlaybackState

	// Mutex-guarded shared state, touched by both the callback (via
	// TryLock) and the Controller.
	providerMu sync.Mutex
	provider   *sourceprovider.Provider

	crossfaderMu sync.Mutex
	crossfader   *crossfade.Crossfader

	mixMu sync.Mutex
	mixA  []float32
	mixB  []float32

	speedMu sync.Mutex
	speedBuf []float32
	fracPos  float64

	workersMu sync.Mutex
	workers   map[*ringsource.Source]*decoderworker.Worker

	stream streamHandle
}

// streamHandle is the subset of internal/output.Stream the engine
// needs, expressed as an interface so tests can substitute a fake
// output stream without opening real PortAudio hardware.
type streamHandle interface {
	Open() error
	Close() error
}

func newEngine(cfg Config) *Engine {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = defaultOutputRate
	}
	if cfg.Channels == 0 {
		cfg.Channels = 2
	}
	if cfg.FramesPerBuffer == 0 {
		cfg.FramesPerBuffer = defaultFramesPerBuffer
	}
	if cfg.RingCapacity == 0 {
		cfg.RingCapacity = ringsource.DefaultCapacity
	}

	e := &Engine{
		cfg:        cfg,
		commandCh:  make(chan Command, commandQueueSize),
		eventCh:    make(chan Event, eventQueueSize),
		finishedCh: make(chan *ringsource.Source, finishedQueueSize),
		provider:   sourceprovider.New(),
		crossfader: crossfade.New(),
		workers:    make(map[*ringsource.Source]*decoderworker.Worker),
	}
	e.state.Store(StateIdle)
	e.volumeBits.Store(math.Float32bits(1.0))
	e.speedBits.Store(math.Float32bits(1.0))

	bufFrames := cfg.FramesPerBuffer
	e.mixA = make([]float32, bufFrames*cfg.Channels)
	e.mixB = make([]float32, bufFrames*cfg.Channels)
	// Speed path needs up to ceil(frames*maxSpeed)+2 input frames.
	e.speedBuf = make([]float32, (bufFrames*2+4)*cfg.Channels)

	return e
}

func (e *Engine) volume() float32 { return math.Float32frombits(e.volumeBits.Load()) }
func (e *Engine) setVolume(v float32) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	e.volumeBits.Store(math.Float32bits(v))
}

func (e *Engine) speed() float32 { return math.Float32frombits(e.speedBits.Load()) }
func (e *Engine) setSpeed(s float32) {
	if s < minSpeed {
		s = minSpeed
	}
	if s > maxSpeed {
		s = maxSpeed
	}
	e.speedBits.Store(math.Float32bits(s))
}

func (e *Engine) getState() PlaybackState {
	return e.state.Load().(PlaybackState)
}

func (e *Engine) setState(s PlaybackState) {
	e.state.Store(s)
}

// emit is a non-blocking event send, matching the callback's own
// non-blocking try-send discipline (spec.md section 5).
func (e *Engine) emit(ev Event) {
	select {
	case e.eventCh <- ev:
	default:
	}
}
