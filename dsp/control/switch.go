package control

import (
	"math"
	"sync/atomic"
	"time"
)

// Switch is a momentary push button debounced with an 8-sample shift register.
//
// A press is reported once the raw contact has read closed for seven
// consecutive Debounce calls after reading open; release needs the same
// stability the other way.
type Switch struct {
	raw   atomic.Bool
	state uint8
}

// NewSwitch returns a released switch.
func NewSwitch() *Switch {
	return &Switch{}
}

// Set changes the raw contact state.
func (s *Switch) Set(pressed bool) {
	s.raw.Store(pressed)
}

// Raw returns the undebounced contact state.
func (s *Switch) Raw() bool {
	return s.raw.Load()
}

// Debounce shifts the raw state into the history register.
func (s *Switch) Debounce() {
	s.state <<= 1
	if s.raw.Load() {
		s.state |= 1
	}
}

// RisingEdge reports whether the switch has just become pressed.
func (s *Switch) RisingEdge() bool {
	return s.state == 0x7f
}

// FallingEdge reports whether the switch has just been released.
func (s *Switch) FallingEdge() bool {
	return s.state == 0x80
}

// Pressed reports whether the switch is held down.
func (s *Switch) Pressed() bool {
	return s.state == 0xff
}

// DebounceDepth is the number of Debounce calls a press must last before
// RisingEdge fires.
const DebounceDepth = 7

// MinPress returns the shortest press, in whole milliseconds, that a switch
// debounced callbackRate times per second reports as Pressed. It is 0 for a
// non-positive rate.
func MinPress(callbackRate float64) time.Duration {
	if callbackRate <= 0 || math.IsNaN(callbackRate) || math.IsInf(callbackRate, 0) {
		return 0
	}
	ms := math.Ceil(float64(DebounceDepth+1) * 1000 / callbackRate)
	return time.Duration(ms) * time.Millisecond
}
