package crossfade

import (
	"math"
	"testing"
)

func TestEqualPowerPreservesPower(t *testing.T) {
	for p := 0.0; p <= 1.0; p += 0.1 {
		a, b := Gains(EqualPower, p)
		power := a*a + b*b
		if math.Abs(power-1) > 1e-9 {
			t.Errorf("p=%v: a^2+b^2 = %v, want 1", p, power)
		}
	}
}

func TestGainsEndpoints(t *testing.T) {
	for _, curve := range []Curve{EqualPower, Linear, SquareRoot, SCurve} {
		a0, b0 := Gains(curve, 0)
		if a0 != 1 || b0 != 0 {
			t.Errorf("%v at p=0: got (%v,%v), want (1,0)", curve, a0, b0)
		}
		a1, b1 := Gains(curve, 1)
		if math.Abs(a1) > 1e-9 || math.Abs(b1-1) > 1e-9 {
			t.Errorf("%v at p=1: got (%v,%v), want (0,1)", curve, a1, b1)
		}
	}
}

func TestGainsClampsOutOfRange(t *testing.T) {
	aLo, bLo := Gains(Linear, -5)
	if aLo != 1 || bLo != 0 {
		t.Errorf("p<0 should clamp to p=0, got (%v,%v)", aLo, bLo)
	}
	aHi, bHi := Gains(Linear, 5)
	if aHi != 0 || bHi != 1 {
		t.Errorf("p>1 should clamp to p=1, got (%v,%v)", aHi, bHi)
	}
}

func TestStartNoOpWhenDisabled(t *testing.T) {
	cf := New()
	cf.SetDuration(1000)
	cf.Start()
	if cf.IsActive() {
		t.Error("Start() should not activate a disabled crossfader")
	}
}

func TestStartNoOpWhenZeroDuration(t *testing.T) {
	cf := New()
	cf.SetEnabled(true)
	cf.Start()
	if cf.IsActive() {
		t.Error("Start() should not activate with zero duration")
	}
}

func TestStartActivatesWhenEnabledAndDurationSet(t *testing.T) {
	cf := New()
	cf.SetEnabled(true)
	cf.SetDuration(100)
	cf.Start()
	if !cf.IsActive() {
		t.Error("expected crossfader to be active")
	}
}

func TestCurrentGainsPassThroughWhenInactive(t *testing.T) {
	cf := New()
	a, b := cf.CurrentGains()
	if a != 1 || b != 0 {
		t.Errorf("inactive crossfader should pass through (1,0), got (%v,%v)", a, b)
	}
}

func TestAdvanceByCompletesFade(t *testing.T) {
	cf := New()
	cf.SetEnabled(true)
	cf.SetDuration(10)
	cf.Start()

	if cf.AdvanceBy(5) {
		t.Error("should not complete halfway through")
	}
	if !cf.AdvanceBy(5) {
		t.Error("should complete at duration")
	}
	if cf.IsActive() {
		t.Error("fade should be inactive after completing")
	}
}

func TestSetEnabledFalseCancelsFade(t *testing.T) {
	cf := New()
	cf.SetEnabled(true)
	cf.SetDuration(10)
	cf.Start()
	cf.AdvanceBy(3)

	cf.SetEnabled(false)
	if cf.IsActive() {
		t.Error("disabling should cancel an in-progress fade")
	}
}

func TestMixPassThroughInactive(t *testing.T) {
	cf := New()
	a := []float32{1, 1, 1, 1}
	b := []float32{2, 2, 2, 2}
	out := make([]float32, 4)
	cf.Mix(a, b, out, 2)
	for i, v := range out {
		if v != a[i] {
			t.Errorf("index %d: inactive Mix should pass a through, got %v want %v", i, v, a[i])
		}
	}
}

func TestSetDurationSecsRoundTrip(t *testing.T) {
	cf := New()
	cf.SetDurationSecs(2.0, 48000, 2)
	got := cf.DurationSecs(48000, 2)
	if math.Abs(got-2.0) > 1e-6 {
		t.Errorf("expected 2.0s, got %v", got)
	}
}
