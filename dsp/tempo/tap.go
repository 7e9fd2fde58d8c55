// Package tempo converts tap-trigger timestamps into delay lengths.
package tempo

import (
	"errors"
	"fmt"
	"math"
)

// DefaultMaxIntervalMs is the longest accepted gap between two taps.
const DefaultMaxIntervalMs = 2000

// ErrInvalidSampleRate is returned for non-positive or non-finite sample rates.
var ErrInvalidSampleRate = errors.New("tempo: sample rate must be > 0 and finite")

// Option configures a TapTempo.
type Option func(*TapTempo) error

// WithMaxInterval sets the tap window in milliseconds. Gaps at or above it are ignored.
func WithMaxInterval(ms uint32) Option {
	return func(t *TapTempo) error {
		if ms == 0 {
			return fmt.Errorf("tempo: max interval must be > 0")
		}
		t.maxInterval = ms
		return nil
	}
}

// TapTempo estimates a delay length from the interval between two taps.
//
// Timestamps come from a millisecond clock that may wrap around; intervals
// are computed with unsigned arithmetic so a wrap between two taps is fine.
// The first tap after construction or Reset only arms the estimator.
type TapTempo struct {
	sampleRate  float64
	maxInterval uint32
	lastTap     uint32
	armed       bool
}

// NewTapTempo creates an estimator for sampleRate.
func NewTapTempo(sampleRate float64, opts ...Option) (*TapTempo, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %f", ErrInvalidSampleRate, sampleRate)
	}
	t := &TapTempo{
		sampleRate:  sampleRate,
		maxInterval: DefaultMaxIntervalMs,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Tap registers a tap at nowMs. When the gap to the previous tap is inside
// the window it returns the matching delay length in samples and true.
// The tap always becomes the new baseline.
func (t *TapTempo) Tap(nowMs uint32) (float64, bool) {
	diff := nowMs - t.lastTap
	accepted := t.armed && diff < t.maxInterval

	t.lastTap = nowMs
	t.armed = true

	if !accepted {
		return 0, false
	}
	return float64(diff) * t.sampleRate / 1000, true
}

// Reset forgets the previous tap, so the next one only arms the estimator.
func (t *TapTempo) Reset() {
	t.lastTap = 0
	t.armed = false
}

// Armed reports whether a baseline tap has been recorded.
func (t *TapTempo) Armed() bool { return t.armed }

// LastTap returns the timestamp of the latest tap.
func (t *TapTempo) LastTap() uint32 { return t.lastTap }

// MaxInterval returns the tap window in milliseconds.
func (t *TapTempo) MaxInterval() uint32 { return t.maxInterval }

// SamplesToMs converts a delay length to milliseconds at sampleRate.
func SamplesToMs(samples, sampleRate float64) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return samples / sampleRate * 1000
}

// SamplesToBPM returns the quarter-note tempo whose beat equals the delay length.
func SamplesToBPM(samples, sampleRate float64) float64 {
	ms := SamplesToMs(samples, sampleRate)
	if ms <= 0 {
		return 0
	}
	return 60000 / ms
}
