package tapdelay

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-tapdelay/dsp/core"
)

const blinkOnMs = 50

// Snapshot is the engine state published at the end of every block.
// It is safe to read from any goroutine; values may lag one block.
type Snapshot struct {
	DelaySamples float64 // smoothed delay length
	TargetDelay  float64
	Feedback     float64
	Mix          float64
	Level        float64 // RMS of the last output block
	Modulation   Modulation
	Clearing     bool
}

// published holds the Snapshot fields as atomics.
type published struct {
	delay      atomic.Uint64
	target     atomic.Uint64
	feedback   atomic.Uint64
	mix        atomic.Uint64
	level      atomic.Uint64
	modulation atomic.Int32
	clearing   atomic.Bool
}

func (t *TapDelay) publish(level float64) {
	s := &t.status
	s.delay.Store(math.Float64bits(t.delay.Value()))
	s.target.Store(math.Float64bits(t.params.TargetDelay))
	s.feedback.Store(math.Float64bits(t.params.Feedback))
	s.mix.Store(math.Float64bits(t.params.Mix))
	s.level.Store(math.Float64bits(level))
	s.modulation.Store(int32(t.params.Modulation))
	s.clearing.Store(t.params.Clearing)
}

// Snapshot returns the state published by the last block.
func (t *TapDelay) Snapshot() Snapshot {
	s := &t.status
	return Snapshot{
		DelaySamples: math.Float64frombits(s.delay.Load()),
		TargetDelay:  math.Float64frombits(s.target.Load()),
		Feedback:     math.Float64frombits(s.feedback.Load()),
		Mix:          math.Float64frombits(s.mix.Load()),
		Level:        math.Float64frombits(s.level.Load()),
		Modulation:   Modulation(s.modulation.Load()),
		Clearing:     s.clearing.Load(),
	}
}

func blockRMS(left, right []float64) float64 {
	n := len(left) + len(right)
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range left {
		sum += v * v
	}
	for _, v := range right {
		sum += v * v
	}
	return mathSqrt(sum / float64(n))
}

// Status holds the three panel indicator intensities in [0, 1] plus the
// output level.
type Status struct {
	Tempo    float64 // blinks once per repeat
	Feedback float64
	Mix      float64
	Output   float64
}

// SnapshotSource is anything that publishes engine snapshots.
type SnapshotSource interface {
	Snapshot() Snapshot
}

// Indicator derives the panel lights from published snapshots. It runs on
// its own goroutine, outside the audio callback.
type Indicator struct {
	src        SnapshotSource
	sampleRate float64
	lastBlink  uint32
	on         bool
}

// NewIndicator creates an indicator reading from src.
func NewIndicator(src SnapshotSource, sampleRate float64) *Indicator {
	return &Indicator{src: src, sampleRate: sampleRate}
}

// Update computes the light levels at nowMs. The tempo light switches on
// once a full delay period has passed since the previous blink and stays on
// for 50 ms.
func (ind *Indicator) Update(nowMs uint32) Status {
	snap := ind.src.Snapshot()

	var delayMs uint32
	if ind.sampleRate > 0 && snap.DelaySamples > 0 {
		delayMs = uint32(snap.DelaySamples / ind.sampleRate * 1000)
	}
	if delayMs > 0 && nowMs-ind.lastBlink > delayMs {
		ind.lastBlink = nowMs
		ind.on = true
	}
	if ind.on && nowMs-ind.lastBlink > blinkOnMs {
		ind.on = false
	}

	st := Status{
		Feedback: core.Clamp(snap.Feedback, 0, 1),
		Mix:      core.Clamp(snap.Mix, 0, 1),
		Output:   core.Clamp(snap.Level, 0, 1),
	}
	if ind.on {
		st.Tempo = 1
	}
	return st
}
