package delay

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-tapdelay/dsp/interp"
)

// ErrInvalidCapacity is returned when a line is too small for its interpolation mode.
var ErrInvalidCapacity = errors.New("delay: invalid capacity")

// Option configures a Line.
type Option func(*Line)

// WithMode selects the fractional read interpolation. Linear is the default.
func WithMode(mode interp.Mode) Option {
	return func(d *Line) {
		d.mode = mode
	}
}

// Line is a fixed-capacity circular delay line with a fractional read length.
//
// The write cursor always points at the slot the next Write fills. Delay
// lengths are measured back from the most recently written sample, so a
// length of 0 reads what was just written.
type Line struct {
	buffer   []float64
	writePos int
	delay    float64
	maxDelay float64
	mode     interp.Mode
}

// New returns a delay line holding capacity samples. The buffer is allocated
// once here and never resized.
func New(capacity int, opts ...Option) (*Line, error) {
	d := &Line{mode: interp.Linear}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	if capacity < d.mode.Taps() {
		return nil, fmt.Errorf("%w: %d samples for %s reads", ErrInvalidCapacity, capacity, d.mode)
	}
	d.buffer = make([]float64, capacity)
	// Keep every interpolation neighbour inside the ring without touching
	// the newest sample from the far side.
	d.maxDelay = math.Nextafter(float64(capacity-d.mode.Taps()+1), 0)
	return d, nil
}

// Init zeroes the buffer, rewinds the cursor and sets the delay to 0.
func (d *Line) Init() {
	d.Reset()
	d.delay = 0
}

// Len returns the capacity in samples.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Mode returns the interpolation mode.
func (d *Line) Mode() interp.Mode { return d.mode }

// MaxDelay returns the largest accepted delay length.
func (d *Line) MaxDelay() float64 { return d.maxDelay }

// SetDelay sets the read length in samples, clamped to the valid range.
func (d *Line) SetDelay(samples float64) {
	switch {
	case math.IsNaN(samples) || samples < 0:
		samples = 0
	case samples > d.maxDelay:
		samples = d.maxDelay
	}
	d.delay = samples
}

// Delay returns the current read length in samples.
func (d *Line) Delay() float64 { return d.delay }

// Write stores one sample and advances the cursor.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// ReadAt reads the sample written delay samples before the most recent one.
func (d *Line) ReadAt(delay int) float64 {
	size := len(d.buffer)
	if delay < 0 {
		delay = 0
	}
	if delay >= size {
		delay = size - 1
	}
	readPos := d.writePos - 1 - delay
	if readPos < 0 {
		readPos += size
	}
	return d.buffer[readPos]
}

// Read returns the interpolated sample at the current delay length.
func (d *Line) Read() float64 {
	p := int(d.delay)
	t := d.delay - float64(p)

	if d.mode == interp.Hermite {
		xm1 := d.ReadAt(maxInt(0, p-1))
		x0 := d.ReadAt(p)
		x1 := d.ReadAt(p + 1)
		x2 := d.ReadAt(p + 2)
		return interp.Hermite4(t, xm1, x0, x1, x2)
	}

	x0 := d.ReadAt(p)
	if t == 0 {
		return x0
	}
	return interp.Linear2(t, x0, d.ReadAt(p+1))
}

// Reset zero-fills the buffer and rewinds the cursor without reallocating.
// The delay length is kept.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
