package engine

import "testing"

func TestMixCallbackPausedProducesSilence(t *testing.T) {
	e := testEngine()
	e.paused.Store(true)
	out := make([]float32, 8)
	for i := range out {
		out[i] = 1
	}
	e.mixCallback(out, 4)
	for i, v := range out {
		if v != 0 {
			t.Errorf("index %d: expected silence while paused, got %v", i, v)
		}
	}
}

func TestMixCallbackNoSourceProducesSilence(t *testing.T) {
	e := testEngine()
	out := make([]float32, 8)
	for i := range out {
		out[i] = 1
	}
	e.mixCallback(out, 4)
	for i, v := range out {
		if v != 0 {
			t.Errorf("index %d: expected silence with no current source, got %v", i, v)
		}
	}
}

func TestMixCallbackAppliesVolume(t *testing.T) {
	e := testEngine()
	src, prod := newTestSourceForEngine(t)
	prod.Write([]float32{1, 1, 1, 1})
	src.MarkReady()
	src.MarkPlaying()
	e.provider.SetCurrent(src)
	e.setVolume(0.5)

	out := make([]float32, 4)
	e.mixCallback(out, 2)
	for i, v := range out {
		if v != 0.5 {
			t.Errorf("index %d: expected 0.5 after volume scaling, got %v", i, v)
		}
	}
}
