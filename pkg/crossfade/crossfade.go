// Package crossfade implements the four crossfade curves (two of them,
// EqualPower and SquareRoot, power-preserving) and the Crossfader
// progress state machine. Grounded on
// original_source/rust/src/audio/crossfader.rs.
package crossfade

import "math"

// Curve selects one of the four crossfade gain-pair generators.
// EqualPower is the default.
type Curve int

const (
	EqualPower Curve = iota
	Linear
	SquareRoot
	SCurve
)

func (c Curve) String() string {
	switch c {
	case EqualPower:
		return "EqualPower"
	case Linear:
		return "Linear"
	case SquareRoot:
		return "SquareRoot"
	case SCurve:
		return "SCurve"
	default:
		return "Unknown"
	}
}

// Gains computes the (gainA, gainB) pair for progress p in [0,1] under
// the given curve. At p=0 it returns (1,0); at p=1, (0,1).
func Gains(curve Curve, p float64) (float64, float64) {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	switch curve {
	case Linear:
		return 1 - p, p
	case SquareRoot:
		return math.Sqrt(1 - p), math.Sqrt(p)
	case SCurve:
		s := 3*p*p - 2*p*p*p
		return 1 - s, s
	case EqualPower:
		fallthrough
	default:
		return math.Cos(math.Pi * p / 2), math.Sin(math.Pi * p / 2)
	}
}

// Crossfader holds crossfade configuration and in-progress state. It is
// not internally synchronized: callers that share one instance (the
// Mixer/Callback and Controller) take a mutex around it, per spec.md
// section 3/4.6.
type Crossfader struct {
	enabled  bool
	duration uint64 // samples
	position uint64
	active   bool
	curve    Curve
}

// New creates a disabled crossfader with the EqualPower curve.
func New() *Crossfader {
	return &Crossfader{curve: EqualPower}
}

func (cf *Crossfader) IsEnabled() bool { return cf.enabled }
func (cf *Crossfader) IsActive() bool  { return cf.active }
func (cf *Crossfader) Curve() Curve    { return cf.curve }

// SetEnabled toggles crossfading; disabling clears any in-progress fade.
func (cf *Crossfader) SetEnabled(enabled bool) {
	cf.enabled = enabled
	if !enabled {
		cf.active = false
		cf.position = 0
	}
}

// SetDuration sets the crossfade length in samples (sampleRate * channels * seconds).
func (cf *Crossfader) SetDuration(samples uint64) {
	cf.duration = samples
}

// SetDurationSecs sets the crossfade length from seconds at the given
// sample rate and channel count.
func (cf *Crossfader) SetDurationSecs(seconds float64, sampleRate, channels int) {
	if seconds < 0 {
		seconds = 0
	}
	cf.duration = uint64(seconds * float64(sampleRate) * float64(channels))
}

func (cf *Crossfader) DurationSecs(sampleRate, channels int) float64 {
	if sampleRate == 0 || channels == 0 {
		return 0
	}
	return float64(cf.duration) / float64(sampleRate) / float64(channels)
}

// RemainingSecs returns time left in an active fade.
func (cf *Crossfader) RemainingSecs(sampleRate, channels int) float64 {
	if !cf.active || sampleRate == 0 || channels == 0 {
		return 0
	}
	remaining := cf.duration - cf.position
	return float64(remaining) / float64(sampleRate) / float64(channels)
}

func (cf *Crossfader) SetCurve(curve Curve) {
	cf.curve = curve
}

// Start begins a crossfade. Per spec.md section 4.4: only takes effect
// if enabled and duration>0; otherwise leaves active=false.
func (cf *Crossfader) Start() {
	if cf.enabled && cf.duration > 0 {
		cf.active = true
		cf.position = 0
	}
}

// Reset cancels any in-progress fade unconditionally.
func (cf *Crossfader) Reset() {
	cf.active = false
	cf.position = 0
}

// CurrentGains returns the gain pair for the current position, or
// (1,0) pass-through when inactive or duration is zero.
func (cf *Crossfader) CurrentGains() (float64, float64) {
	if !cf.active || cf.duration == 0 {
		return 1, 0
	}
	return Gains(cf.curve, float64(cf.position)/float64(cf.duration))
}

// Advance moves the fade forward by one sample. Returns true if this
// advance completed the fade (clears active and zeroes position).
func (cf *Crossfader) Advance() bool {
	return cf.AdvanceBy(1)
}

// AdvanceBy moves the fade forward by n samples, completing (and
// resetting) it if it reaches duration.
func (cf *Crossfader) AdvanceBy(n uint64) bool {
	if !cf.active {
		return false
	}
	cf.position += n
	if cf.position >= cf.duration {
		cf.active = false
		cf.position = 0
		return true
	}
	return false
}

// Mix blends equal-length buffers a and b into out, frame by frame,
// advancing the fade by one frame (channels samples) per frame, and
// reports whether the fade completed during this call.
func (cf *Crossfader) Mix(a, b, out []float32, channels int) bool {
	frames := len(out) / channels
	completed := false
	for i := 0; i < frames; i++ {
		gainA, gainB := cf.CurrentGains()
		for c := 0; c < channels; c++ {
			idx := i*channels + c
			var av, bv float32
			if idx < len(a) {
				av = a[idx]
			}
			if idx < len(b) {
				bv = b[idx]
			}
			out[idx] = av*float32(gainA) + bv*float32(gainB)
		}
		if cf.AdvanceBy(uint64(channels)) {
			completed = true
		}
	}
	return completed
}
