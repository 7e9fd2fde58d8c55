package smooth

import (
	"math"
	"testing"
)

func TestOnePole(t *testing.T) {
	tests := []struct {
		name                  string
		current, target, coef float64
		want                  float64
	}{
		{name: "snap", current: 3, target: 10, coef: 1, want: 10},
		{name: "hold", current: 3, target: 10, coef: 0, want: 3},
		{name: "half", current: 0, target: 10, coef: 0.5, want: 5},
		{name: "downwards", current: 10, target: 0, coef: 0.25, want: 7.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OnePole(tt.current, tt.target, tt.coef); got != tt.want {
				t.Fatalf("OnePole() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScalarSnap(t *testing.T) {
	var s Scalar
	s.Snap(24000)
	if s.Value() != 24000 || s.Target() != 24000 {
		t.Fatalf("after Snap: value=%v target=%v", s.Value(), s.Target())
	}
	if !s.Settled(0) {
		t.Fatal("expected settled after Snap")
	}
}

func TestScalarConvergesMonotonically(t *testing.T) {
	const (
		coef = 0.0002
		eps  = 0.5
	)

	for _, target := range []float64{100, 1234.5, 24000, 95996} {
		var s Scalar
		s.Snap(48000)
		s.SetTarget(target)

		bound := StepsToSettle(48000-target, eps, coef)
		// -ln(eps/e0)/coef is the continuous-time estimate; the discrete
		// bound must not exceed it by more than a handful of steps.
		if est := -math.Log(eps/math.Abs(48000-target)) / coef; float64(bound) > est+2 {
			t.Fatalf("target %v: bound %d exceeds estimate %v", target, bound, est)
		}

		prevErr := math.Abs(s.Value() - target)
		for i := 0; i < bound; i++ {
			s.Tick(coef)
			err := math.Abs(s.Value() - target)
			if err > prevErr {
				t.Fatalf("target %v: error grew at step %d (%v > %v)", target, i, err, prevErr)
			}
			prevErr = err
		}
		if !s.Settled(eps) {
			t.Fatalf("target %v: not settled after %d steps, value=%v", target, bound, s.Value())
		}
	}
}

func TestCoefficientForTime(t *testing.T) {
	if got := CoefficientForTime(0, 48000); got != 1 {
		t.Fatalf("zero time: got %v want 1", got)
	}

	coef := CoefficientForTime(1, 48000)
	want := 1 - math.Exp(-1/(0.001*48000))
	if math.Abs(coef-want) > 1e-3 {
		t.Fatalf("got %v want about %v", coef, want)
	}
	if coef <= 0 || coef >= 1 {
		t.Fatalf("coefficient %v out of (0, 1)", coef)
	}
}

func TestStepsToSettle(t *testing.T) {
	if got := StepsToSettle(0.1, 1, 0.5); got != 0 {
		t.Fatalf("already settled: got %d want 0", got)
	}
	// 10 -> 5 -> 2.5 -> 1.25 -> 0.625
	if got := StepsToSettle(10, 1, 0.5); got != 4 {
		t.Fatalf("got %d want 4", got)
	}
	if got := StepsToSettle(8, 1, 1); got != 1 {
		t.Fatalf("snap: got %d want 1", got)
	}
}

func BenchmarkScalarTick(b *testing.B) {
	var s Scalar
	s.SetTarget(24000)
	for i := 0; i < b.N; i++ {
		s.Tick(0.0002)
	}
}
