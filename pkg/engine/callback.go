package engine

import (
	"math"

	"github.com/drgolem/flickplayer/pkg/ringsource"
)

// mixCallback is the real-time output callback: the only code path that
// runs under the audio device's deadline. It must not allocate,
// perform I/O, or block. Every lock acquisition here is a TryLock;
// failure to acquire is resolved by writing silence for that call,
// except where noted below (see SPEC_FULL.md's "ambiguity resolutions"
// for the one deliberate divergence from spec.md's literal wording).
func (e *Engine) mixCallback(out []float32, frameCount int) {
	channels := e.cfg.Channels

	if e.paused.Load() {
		zero(out)
		return
	}

	vol := e.volume()
	spd := e.speed()

	if !e.providerMu.TryLock() {
		zero(out)
		return
	}
	defer e.providerMu.Unlock()

	if e.tryCrossfadeMix(out, channels) {
		applyVolume(out, vol)
		return
	}

	var evicted = e.mixNormal(out, channels, spd)
	applyVolume(out, vol)
	e.forwardEvicted(evicted)
}

// tryCrossfadeMix attempts the crossfade path. Returns true if it
// produced output (whether or not the fade completed this call); false
// means the caller should fall through to the normal path (crossfade
// not active, or no next source queued).
func (e *Engine) tryCrossfadeMix(out []float32, channels int) bool {
	if !e.crossfaderMu.TryLock() {
		// Contention on the crossfader lock alone does not silence the
		// callback: the Source Provider lock (held by the caller) is
		// what actually gates whether there is audio to read at all.
		// Fall through to the normal path so playback continues
		// uninterrupted; the in-flight crossfade update is simply
		// applied on the next callback instead.
		evicted := e.mixNormal(out, channels, e.speed())
		e.forwardEvicted(evicted)
		return true
	}

	active := e.crossfader.IsActive()
	hasNext := e.provider.HasNext()
	if !active || !hasNext {
		e.crossfaderMu.Unlock()
		return false
	}

	if !e.mixMu.TryLock() {
		e.crossfaderMu.Unlock()
		zero(out)
		return true
	}

	a := e.mixA[:len(out)]
	b := e.mixB[:len(out)]

	cur := e.provider.Current()
	nxt := e.provider.Next()

	na := 0
	if cur != nil {
		na = cur.Read(a)
	}
	for i := na; i < len(a); i++ {
		a[i] = 0
	}

	nb := 0
	if nxt != nil {
		nb = nxt.Read(b)
	}
	for i := nb; i < len(b); i++ {
		b[i] = 0
	}

	completed := e.crossfader.Mix(a, b, out, channels)
	e.mixMu.Unlock()
	e.crossfaderMu.Unlock()

	if completed {
		evicted := e.provider.AdvanceToNext()
		e.forwardEvicted(evicted)
	}
	return true
}

// mixNormal handles the non-crossfade read, direct when speed is ~1
// and speed-interpolated otherwise. Caller holds providerMu.
func (e *Engine) mixNormal(out []float32, channels int, spd float32) *ringsource.Source {
	if absf32(spd-1) < speedEpsilon {
		n, evicted := e.provider.Read(out)
		_ = n
		return evicted
	}
	return e.mixSpeed(out, channels, spd)
}

func (e *Engine) mixSpeed(out []float32, channels int, spd float32) *ringsource.Source {
	if !e.speedMu.TryLock() {
		zero(out)
		return nil
	}
	defer e.speedMu.Unlock()

	outFrames := len(out) / channels
	needFrames := int(math.Ceil(float64(outFrames)*float64(spd))) + 2
	need := needFrames * channels
	if need > len(e.speedBuf) {
		need = len(e.speedBuf)
	}
	buf := e.speedBuf[:need]

	n, evicted := e.provider.Read(buf)
	if n < need {
		zero(out)
		return evicted
	}

	for i := 0; i < outFrames; i++ {
		inPos := e.fracPos + float64(i)*float64(spd)
		k := int(inPos)
		f := float32(inPos - float64(k))
		for c := 0; c < channels; c++ {
			idx0 := k*channels + c
			idx1 := (k+1)*channels + c
			var s0, s1 float32
			if idx0 < len(buf) {
				s0 = buf[idx0]
			}
			if idx1 < len(buf) {
				s1 = buf[idx1]
			}
			out[i*channels+c] = s0 + (s1-s0)*f
		}
	}

	e.fracPos += float64(outFrames) * float64(spd)
	e.fracPos -= math.Floor(e.fracPos)

	return evicted
}

func (e *Engine) forwardEvicted(evicted *ringsource.Source) {
	if evicted == nil {
		return
	}
	select {
	case e.finishedCh <- evicted:
	default:
	}
}

func zero(out []float32) {
	for i := range out {
		out[i] = 0
	}
}

func applyVolume(out []float32, vol float32) {
	for i := range out {
		out[i] *= vol
	}
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
