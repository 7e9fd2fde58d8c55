package control

import "sync/atomic"

// Encoder is a detented rotary encoder. Host-side turns accumulate until the
// next Debounce call hands them to the audio side.
type Encoder struct {
	pending atomic.Int64
	inc     int
}

// NewEncoder returns an encoder at rest.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Turn adds signed detent steps; positive is clockwise.
func (e *Encoder) Turn(steps int) {
	e.pending.Add(int64(steps))
}

// Debounce latches the steps turned since the previous call.
func (e *Encoder) Debounce() {
	e.inc = int(e.pending.Swap(0))
}

// Increment returns the steps latched by the last Debounce.
func (e *Encoder) Increment() int {
	return e.inc
}
