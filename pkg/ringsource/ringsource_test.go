package ringsource

import (
	"testing"

	"github.com/drgolem/flickplayer/pkg/types"
)

func testInfo() types.SourceInfo {
	return types.SourceInfo{
		Path:         "test.wav",
		OriginalRate: 44100,
		OutputRate:   48000,
		Channels:     2,
		DurationSecs: 10,
	}
}

func TestNewStartsLoading(t *testing.T) {
	src, _ := New(testInfo(), 16)
	if src.State() != Loading {
		t.Errorf("expected Loading, got %v", src.State())
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	src, prod := New(testInfo(), 16)
	data := []float32{1, 2, 3, 4}
	if n := prod.Write(data); n != 4 {
		t.Fatalf("expected to write 4, wrote %d", n)
	}
	out := make([]float32, 4)
	if n := src.Read(out); n != 4 {
		t.Fatalf("expected to read 4, read %d", n)
	}
	for i, v := range out {
		if v != data[i] {
			t.Errorf("index %d: got %v want %v", i, v, data[i])
		}
	}
}

func TestWriteCapsAtCapacity(t *testing.T) {
	src, prod := New(testInfo(), 4) // rounds up to next pow2
	data := make([]float32, 100)
	n := prod.Write(data)
	if n <= 0 || n > 4 {
		t.Errorf("expected write capped at ring capacity (4), got %d", n)
	}
	_ = src
}

func TestPositionIsMonotonic(t *testing.T) {
	src, prod := New(testInfo(), 64)
	prod.Write(make([]float32, 40))

	out := make([]float32, 10)
	var last float64
	for i := 0; i < 4; i++ {
		src.Read(out)
		pos := src.PositionSecs()
		if pos < last {
			t.Fatalf("position went backwards: %v < %v", pos, last)
		}
		last = pos
	}
}

func TestFinishedOnceDrainedAfterProducerFinish(t *testing.T) {
	src, prod := New(testInfo(), 16)
	prod.Write([]float32{1, 2})
	src.MarkReady()
	src.MarkPlaying()
	prod.Finish()

	out := make([]float32, 2)
	src.Read(out)
	if src.State() != Finished {
		t.Errorf("expected Finished after drain+producer-finish, got %v", src.State())
	}
}

func TestNotFinishedWhileDataRemains(t *testing.T) {
	src, prod := New(testInfo(), 16)
	prod.Write([]float32{1, 2, 3, 4})
	prod.Finish()

	out := make([]float32, 2)
	src.Read(out) // only reads half
	if src.State() == Finished {
		t.Error("should not be Finished while ring still has unread data")
	}
}

func TestHasEnoughBufferTrueWhenDecoderFinishedEvenIfEmpty(t *testing.T) {
	src, prod := New(testInfo(), 16)
	prod.Finish()
	if !src.HasEnoughBuffer() {
		t.Error("expected HasEnoughBuffer true once decoder finished, regardless of fill")
	}
}

func TestSignalStopObservedByProducer(t *testing.T) {
	src, prod := New(testInfo(), 16)
	if prod.Stopped() {
		t.Fatal("should not be stopped initially")
	}
	src.SignalStop()
	if !prod.Stopped() {
		t.Error("producer should observe stop signal")
	}
}

func TestWaitForSpaceTimesOutOnStop(t *testing.T) {
	src, prod := New(testInfo(), 4)
	prod.Write(make([]float32, 4)) // fill it
	src.SignalStop()
	if prod.WaitForSpace(4, 50) {
		t.Error("expected WaitForSpace to fail once stop is signaled")
	}
}
