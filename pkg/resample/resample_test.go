package resample

import "testing"

func TestNewRejectsInvalidParams(t *testing.T) {
	if _, err := New(0, 48000, 2, 256); err == nil {
		t.Error("expected error for zero input rate")
	}
	if _, err := New(44100, 48000, 0, 256); err == nil {
		t.Error("expected error for zero channels")
	}
}

func TestIdentityPassthrough(t *testing.T) {
	r, err := New(48000, 48000, 2, 64)
	if err != nil {
		t.Fatal(err)
	}
	if r.NeedsResampling() {
		t.Error("same rate should not need resampling")
	}

	in := []float32{0.1, -0.2, 0.3, -0.4}
	out := make([]float32, len(in))
	n, err := r.ProcessInterleaved(in, out)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(in) {
		t.Fatalf("expected %d samples out, got %d", len(in), n)
	}
	for i, v := range in {
		if out[i] != v {
			t.Errorf("index %d: got %v want %v", i, out[i], v)
		}
	}
	if r.LatencyFrames() != 0 {
		t.Error("passthrough should report zero latency")
	}
}

func TestUpsampleProducesMoreFrames(t *testing.T) {
	r, err := New(24000, 48000, 1, 128)
	if err != nil {
		t.Fatal(err)
	}
	in := make([]float32, 100)
	for i := range in {
		in[i] = float32(i) / 100
	}
	out := make([]float32, 400)
	n, err := r.ProcessInterleaved(in, out)
	if err != nil {
		t.Fatal(err)
	}
	if n <= len(in) {
		t.Errorf("expected upsampling to produce more samples than input, got %d from %d", n, len(in))
	}
}

func TestDownsampleProducesFewerFrames(t *testing.T) {
	r, err := New(48000, 24000, 1, 128)
	if err != nil {
		t.Fatal(err)
	}
	in := make([]float32, 100)
	for i := range in {
		in[i] = float32(i) / 100
	}
	out := make([]float32, 400)
	n, err := r.ProcessInterleaved(in, out)
	if err != nil {
		t.Fatal(err)
	}
	if n >= len(in) {
		t.Errorf("expected downsampling to produce fewer samples than input, got %d from %d", n, len(in))
	}
}

func TestUpsampleReproducesLinearRampExactly(t *testing.T) {
	// A polynomial interpolator of any degree reproduces a linear
	// sequence exactly, since a line is itself a degree-1 polynomial.
	r, err := New(24000, 48000, 1, 256)
	if err != nil {
		t.Fatal(err)
	}
	in := make([]float32, 200)
	for i := range in {
		in[i] = float32(i)
	}
	out := make([]float32, 1000)
	n, err := r.ProcessInterleaved(in, out)
	if err != nil {
		t.Fatal(err)
	}

	// Skip the lead-in samples affected by clamped left-edge lookahead;
	// check the interior of the ramp against the expected input position.
	for i := 10; i < n-10; i++ {
		inPos := float64(i) * r.invRatio
		want := float32(inPos)
		got := out[i]
		if diff := got - want; diff > 1e-3 || diff < -1e-3 {
			t.Errorf("index %d: got %v want %v (diff %v)", i, got, want, diff)
		}
	}
}

func TestResetClearsCarryState(t *testing.T) {
	r, err := New(44100, 48000, 1, 64)
	if err != nil {
		t.Fatal(err)
	}
	in := make([]float32, 50)
	out := make([]float32, 200)
	if _, err := r.ProcessInterleaved(in, out); err != nil {
		t.Fatal(err)
	}
	r.Reset()
	if r.have {
		t.Error("Reset should clear carry-over state")
	}
	if r.pos != 0 {
		t.Error("Reset should zero fractional position")
	}
}
