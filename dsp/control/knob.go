package control

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-tapdelay/dsp/core"
	"github.com/cwbudde/algo-tapdelay/dsp/smooth"
)

const defaultKnobSlewMs = 2.0

// KnobOption configures a Knob.
type KnobOption func(*Knob)

// WithSlewMs sets the smoothing time constant in milliseconds.
// 0 disables smoothing.
func WithSlewMs(ms float64) KnobOption {
	return func(k *Knob) {
		if ms >= 0 && !math.IsNaN(ms) && !math.IsInf(ms, 0) {
			k.slewMs = ms
		}
	}
}

// WithInitial sets the starting position in [0, 1].
func WithInitial(v float64) KnobOption {
	return func(k *Knob) {
		k.initial = core.Clamp(v, 0, 1)
	}
}

// Knob is a continuous control in [0, 1] smoothed at the block rate,
// like a pot read through an ADC.
type Knob struct {
	raw     atomic.Uint64
	value   float64
	coef    float64
	slewMs  float64
	initial float64
}

// NewKnob creates a knob sampled updateRate times per second.
func NewKnob(updateRate float64, opts ...KnobOption) *Knob {
	k := &Knob{slewMs: defaultKnobSlewMs}
	for _, opt := range opts {
		if opt != nil {
			opt(k)
		}
	}
	k.coef = smooth.CoefficientForTime(k.slewMs, updateRate)
	k.value = k.initial
	k.raw.Store(math.Float64bits(k.initial))
	return k
}

// Set moves the knob. Values are clamped to [0, 1].
func (k *Knob) Set(v float64) {
	k.raw.Store(math.Float64bits(core.Clamp(v, 0, 1)))
}

// Position returns the last position passed to Set.
func (k *Knob) Position() float64 {
	return math.Float64frombits(k.raw.Load())
}

// Process advances the smoothed value one block and returns it.
func (k *Knob) Process() float64 {
	k.value = smooth.OnePole(k.value, k.Position(), k.coef)
	return k.value
}

// Value returns the smoothed value from the last Process call.
func (k *Knob) Value() float64 { return k.value }
