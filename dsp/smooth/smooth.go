package smooth

import "math"

// OnePole advances current one step towards target.
func OnePole(current, target, coef float64) float64 {
	return current + coef*(target-current)
}

// Scalar is a smoothed value that tracks a target.
// The zero value is ready to use and sits at 0.
type Scalar struct {
	value  float64
	target float64
}

// Snap sets both the value and the target to v.
func (s *Scalar) Snap(v float64) {
	s.target = v
	s.value = OnePole(s.value, v, 1)
}

// SetTarget sets the value the scalar converges to.
func (s *Scalar) SetTarget(target float64) {
	s.target = target
}

// Target returns the current target.
func (s *Scalar) Target() float64 { return s.target }

// Value returns the tracked value.
func (s *Scalar) Value() float64 { return s.value }

// Tick advances the tracked value by one step and returns it.
func (s *Scalar) Tick(coef float64) float64 {
	s.value = OnePole(s.value, s.target, coef)
	return s.value
}

// Settled reports whether the value is within eps of the target.
func (s *Scalar) Settled(eps float64) bool {
	return math.Abs(s.target-s.value) <= eps
}

// CoefficientForTime returns the one-pole coefficient whose time constant is
// ms milliseconds at sampleRate. Non-positive times yield 1 (no smoothing).
func CoefficientForTime(ms, sampleRate float64) float64 {
	if ms <= 0 || sampleRate <= 0 {
		return 1
	}
	tauSeconds := ms / 1000
	coef := 1 - mathExp(-1/(tauSeconds*sampleRate))
	if coef < 0 {
		return 0
	}
	if coef > 1 {
		return 1
	}
	return coef
}

// StepsToSettle returns the number of ticks a one-pole with coefficient coef
// needs to shrink an initial error of e0 below eps.
func StepsToSettle(e0, eps, coef float64) int {
	e0 = math.Abs(e0)
	if e0 <= eps {
		return 0
	}
	if coef >= 1 {
		return 1
	}
	if coef <= 0 || eps <= 0 {
		return math.MaxInt
	}
	return int(math.Ceil(math.Log(eps/e0) / math.Log(1-coef)))
}
