// Package osc provides a phase-accumulating oscillator used as a modulation
// source. Frequency changes only alter the phase increment, so modulation
// rates can follow the delay time without phase jumps.
package osc

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSampleRate is returned for non-positive or non-finite sample rates.
var ErrInvalidSampleRate = errors.New("osc: sample rate must be > 0 and finite")

// Waveform selects the oscillator shape. All shapes are bipolar in [-1, 1].
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSaw
	WaveSquare
)

// String returns the waveform name.
func (w Waveform) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveTriangle:
		return "triangle"
	case WaveSaw:
		return "saw"
	case WaveSquare:
		return "square"
	default:
		return "unknown"
	}
}

// ParseWaveform maps a waveform name to its value.
func ParseWaveform(name string) (Waveform, error) {
	for w := WaveSine; w <= WaveSquare; w++ {
		if w.String() == name {
			return w, nil
		}
	}
	return WaveSine, fmt.Errorf("osc: unknown waveform %q", name)
}

// Option configures an Oscillator.
type Option func(*Oscillator) error

// WithWaveform selects the output shape. Sine is the default.
func WithWaveform(w Waveform) Option {
	return func(o *Oscillator) error {
		if w < WaveSine || w > WaveSquare {
			return fmt.Errorf("osc: unknown waveform %d", w)
		}
		o.waveform = w
		return nil
	}
}

// WithFreq sets the initial frequency in Hz.
func WithFreq(hz float64) Option {
	return func(o *Oscillator) error {
		if math.IsNaN(hz) || math.IsInf(hz, 0) {
			return fmt.Errorf("osc: frequency must be finite: %f", hz)
		}
		o.freq = hz
		return nil
	}
}

// Oscillator generates a periodic waveform, one sample per Process call.
type Oscillator struct {
	sampleRate float64
	waveform   Waveform
	freq       float64
	phase      float64 // [0, 1)
	phaseInc   float64
}

// New creates an oscillator at 100 Hz running at sampleRate.
func New(sampleRate float64, opts ...Option) (*Oscillator, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %f", ErrInvalidSampleRate, sampleRate)
	}
	o := &Oscillator{
		sampleRate: sampleRate,
		waveform:   WaveSine,
		freq:       100,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	o.SetFreq(o.freq)
	return o, nil
}

// SetFreq sets the frequency in Hz. The phase is left untouched.
func (o *Oscillator) SetFreq(hz float64) {
	o.freq = hz
	o.phaseInc = hz / o.sampleRate
}

// Freq returns the frequency in Hz.
func (o *Oscillator) Freq() float64 { return o.freq }

// SampleRate returns the sample rate in Hz.
func (o *Oscillator) SampleRate() float64 { return o.sampleRate }

// Waveform returns the output shape.
func (o *Oscillator) Waveform() Waveform { return o.waveform }

// Phase returns the normalized phase in [0, 1).
func (o *Oscillator) Phase() float64 { return o.phase }

// Reset rewinds the phase to 0.
func (o *Oscillator) Reset() {
	o.phase = 0
}

// Process returns the waveform value at the current phase and advances the
// phase by one sample.
func (o *Oscillator) Process() float64 {
	out := o.value()
	o.phase += o.phaseInc
	if o.phase >= 1 || o.phase < 0 {
		o.phase -= math.Floor(o.phase)
	}
	return out
}

func (o *Oscillator) value() float64 {
	switch o.waveform {
	case WaveTriangle:
		if o.phase < 0.5 {
			return 4*o.phase - 1
		}
		return 3 - 4*o.phase
	case WaveSaw:
		return 2*o.phase - 1
	case WaveSquare:
		if o.phase < 0.5 {
			return 1
		}
		return -1
	default:
		return math.Sin(2 * math.Pi * o.phase)
	}
}
