package signal

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-tapdelay/dsp/core"
)

var (
	// ErrEmpty is returned when a loop source is built from no samples.
	ErrEmpty = errors.New("signal: empty buffer")
	// ErrLengthMismatch is returned when loop channels differ in length.
	ErrLengthMismatch = errors.New("signal: channel lengths differ")
)

// Generator creates deterministic test material at a shared sample rate.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the seed used by Noise.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a generator from processor options.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return NewGeneratorWithOptions(opts)
}

// NewGeneratorWithOptions creates a generator with processor and
// generator-specific options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Sine generates a sine wave starting at phase zero.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sine samples must be > 0: %d", samples)
	}
	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out, nil
}

// Noise generates seeded white noise in [-amplitude, amplitude].
func (g *Generator) Noise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// Clicks places a single-sample click of the given amplitude every period
// samples, starting at sample 0.
func (g *Generator) Clicks(amplitude float64, period, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("clicks samples must be > 0: %d", samples)
	}
	if period <= 0 {
		return nil, fmt.Errorf("clicks period must be > 0: %d", period)
	}
	out := make([]float64, samples)
	for i := 0; i < samples; i += period {
		out[i] = amplitude
	}
	return out, nil
}

// Pluck writes one exponentially decaying sine burst into dst starting at
// offset. decayMs is the time for the envelope to fall by 1/e.
func (g *Generator) Pluck(dst []float64, offset int, freqHz, amplitude, decayMs float64) {
	if decayMs <= 0 || offset < 0 {
		return
	}
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	tau := decayMs * 0.001 * g.cfg.SampleRate
	for i := offset; i < len(dst); i++ {
		n := float64(i - offset)
		env := math.Exp(-n / tau)
		if env < 1e-6 {
			break
		}
		dst[i] += amplitude * env * math.Sin(step*n)
	}
}

// PluckTrain generates plucks every period samples, cycling through the
// given pitches. It is the built-in source for listening to the delay.
func (g *Generator) PluckTrain(pitchesHz []float64, amplitude float64, period, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("pluck train samples must be > 0: %d", samples)
	}
	if period <= 0 {
		return nil, fmt.Errorf("pluck train period must be > 0: %d", period)
	}
	if len(pitchesHz) == 0 {
		return nil, fmt.Errorf("pluck train needs at least one pitch")
	}
	out := make([]float64, samples)
	decayMs := float64(period) / g.cfg.SampleRate * 1000 / 4
	for k, i := 0, 0; i < samples; k, i = k+1, i+period {
		g.Pluck(out, i, pitchesHz[k%len(pitchesHz)], amplitude, decayMs)
	}
	return out, nil
}

// Normalize scales data to targetPeak and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	maxAbs := 0.0
	for _, v := range data {
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}
	core.CopyInto(out, data)
	scale := targetPeak / maxAbs
	for i := range out {
		out[i] *= scale
	}
	return out, nil
}

// Loop streams a stereo buffer endlessly as the live player's input.
type Loop struct {
	left  []float64
	right []float64
	pos   int
}

// NewLoop creates a loop over left and right. A nil right repeats the left
// channel. The slices are not copied.
func NewLoop(left, right []float64) (*Loop, error) {
	if len(left) == 0 {
		return nil, ErrEmpty
	}
	if right == nil {
		right = left
	}
	if len(right) != len(left) {
		return nil, fmt.Errorf("%w: %d and %d", ErrLengthMismatch, len(left), len(right))
	}
	return &Loop{left: left, right: right}, nil
}

// Fill writes the next len(left) frames, wrapping at the end. right may be
// nil to skip the second channel; otherwise it must be at least as long as
// left.
func (l *Loop) Fill(left, right []float64) {
	for i := range left {
		left[i] = l.left[l.pos]
		if right != nil {
			right[i] = l.right[l.pos]
		}
		l.pos++
		if l.pos == len(l.left) {
			l.pos = 0
		}
	}
}

// Rewind restarts the loop from the first sample.
func (l *Loop) Rewind() { l.pos = 0 }
