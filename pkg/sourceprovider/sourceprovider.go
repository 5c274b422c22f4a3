// Package sourceprovider implements the Source Provider: holds the
// {current, next} Ring Sources and performs the gapless handoff that is
// the core of uninterrupted track transitions. Grounded on
// original_source/rust/src/audio/source.rs's SourceProvider.
package sourceprovider

import "github.com/drgolem/flickplayer/pkg/ringsource"

// Provider is NOT internally synchronized; the Mixer/Callback and
// Controller share one instance behind a mutex, matching spec.md
// section 3's "mutex-guarded Source Provider".
type Provider struct {
	current *ringsource.Source
	next    *ringsource.Source
}

func New() *Provider {
	return &Provider{}
}

func (p *Provider) Current() *ringsource.Source { return p.current }
func (p *Provider) Next() *ringsource.Source    { return p.next }
func (p *Provider) HasNext() bool               { return p.next != nil }

// SetCurrent installs src as the current source, replacing (and
// signaling stop to) whatever was current before.
func (p *Provider) SetCurrent(src *ringsource.Source) {
	if p.current != nil {
		p.current.SignalStop()
	}
	p.current = src
}

// QueueNext installs src as the next source, to be promoted when
// current is exhausted or a crossfade completes.
func (p *Provider) QueueNext(src *ringsource.Source) {
	if p.next != nil {
		p.next.SignalStop()
	}
	p.next = src
}

// Stop signals both sources to stop and clears them.
func (p *Provider) Stop() {
	if p.current != nil {
		p.current.SignalStop()
	}
	if p.next != nil {
		p.next.SignalStop()
	}
	p.current = nil
	p.next = nil
}

// ShouldLoadNext reports whether the Controller should start buffering
// a next track: there isn't one queued yet, and current has less than
// lookaheadSecs of audio remaining.
func (p *Provider) ShouldLoadNext(lookaheadSecs float64) bool {
	if p.next != nil || p.current == nil {
		return false
	}
	return p.current.RemainingSecs() < lookaheadSecs
}

// AdvanceToNext promotes next to current immediately (used by the
// immediate skip-to-next path, and internally by Read's gapless
// handoff). Returns the evicted source, or nil if there was none.
func (p *Provider) AdvanceToNext() *ringsource.Source {
	evicted := p.current
	p.current = p.next
	p.next = nil
	if p.current != nil {
		p.current.MarkPlaying()
	}
	return evicted
}

// Read reads from current; if current is exhausted (Finished, drained)
// and next exists, it atomically promotes next to current and reads
// the remainder of out from the new current. This is the gapless
// mechanism: next's FIFO was already pre-filled by the Controller, so
// no glitch occurs at the boundary. Returns samples read and the
// evicted source, if a handoff happened during this call.
func (p *Provider) Read(out []float32) (int, *ringsource.Source) {
	if p.current == nil {
		for i := range out {
			out[i] = 0
		}
		return 0, nil
	}

	n := p.current.Read(out)
	if n < len(out) && p.current.State() == ringsource.Finished && p.next != nil {
		evicted := p.AdvanceToNext()
		rest := p.current.Read(out[n:])
		n += rest
		if n < len(out) {
			for i := n; i < len(out); i++ {
				out[i] = 0
			}
		}
		return n, evicted
	}

	if n < len(out) {
		for i := n; i < len(out); i++ {
			out[i] = 0
		}
	}
	return n, nil
}
