package tapdelay

import (
	"sync/atomic"
	"time"
)

// Clock is a monotonic millisecond clock used to time taps.
// Readings may wrap around.
type Clock interface {
	NowMs() uint32
}

// SystemClock counts milliseconds since its creation.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a clock starting at 0.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// NowMs returns the elapsed milliseconds.
func (c *SystemClock) NowMs() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}

// ManualClock is a clock advanced explicitly, for tests and offline renders.
type ManualClock struct {
	ms atomic.Uint32
}

// Set moves the clock to ms.
func (c *ManualClock) Set(ms uint32) { c.ms.Store(ms) }

// Advance moves the clock forward by ms.
func (c *ManualClock) Advance(ms uint32) { c.ms.Add(ms) }

// NowMs returns the current reading.
func (c *ManualClock) NowMs() uint32 { return c.ms.Load() }
