package resample

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidRate indicates a non-positive sample rate.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
	// ErrInvalidOption indicates an out of range filter setting.
	ErrInvalidOption = errors.New("resample: invalid option")
)

const (
	defaultTapsPerPhase = 32
	defaultCutoffScale  = 0.92
	defaultKaiserBeta   = 7.5
)

type config struct {
	tapsPerPhase int
	cutoffScale  float64
	kaiserBeta   float64
}

// Option configures a Converter.
type Option func(*config) error

// WithTapsPerPhase sets the filter length, measured in periods of the
// lower of the two rates. Longer filters narrow the transition band.
func WithTapsPerPhase(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return fmt.Errorf("%w: taps per phase %d", ErrInvalidOption, n)
		}
		cfg.tapsPerPhase = n
		return nil
	}
}

// WithCutoffScale scales the anti-aliasing cutoff, in (0, 1]. 1 is the
// Nyquist frequency of the lower rate.
func WithCutoffScale(v float64) Option {
	return func(cfg *config) error {
		if v <= 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("%w: cutoff scale %f", ErrInvalidOption, v)
		}
		cfg.cutoffScale = v
		return nil
	}
}

// WithKaiserBeta sets the Kaiser window shape.
func WithKaiserBeta(beta float64) Option {
	return func(cfg *config) error {
		if beta < 0 || math.IsNaN(beta) || math.IsInf(beta, 0) {
			return fmt.Errorf("%w: kaiser beta %f", ErrInvalidOption, beta)
		}
		cfg.kaiserBeta = beta
		return nil
	}
}

// Converter resamples whole buffers by the ratio up/down.
type Converter struct {
	from, to int
	up, down int
	taps     []float64
	center   int
}

// New creates a converter from one sample rate to another.
func New(from, to int, opts ...Option) (*Converter, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("%w: %d -> %d", ErrInvalidRate, from, to)
	}
	cfg := config{
		tapsPerPhase: defaultTapsPerPhase,
		cutoffScale:  defaultCutoffScale,
		kaiserBeta:   defaultKaiserBeta,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	g := gcd(from, to)
	c := &Converter{from: from, to: to, up: to / g, down: from / g}
	if c.up != c.down {
		c.taps, c.center = design(c.up, c.down, cfg)
	}
	return c, nil
}

// design returns an odd-length lowpass prototype at the upsampled rate,
// scaled so each polyphase branch has unity DC gain.
func design(up, down int, cfg config) ([]float64, int) {
	n := cfg.tapsPerPhase*max(up, down) + 1
	center := n / 2
	fc := 0.5 / float64(max(up, down)) * cfg.cutoffScale

	taps := make([]float64, n)
	var sum float64
	for i := range taps {
		t := float64(i - center)
		taps[i] = 2 * fc * sinc(2*fc*t) * kaiser(i, n, cfg.kaiserBeta)
		sum += taps[i]
	}
	scale := float64(up) / sum
	for i := range taps {
		taps[i] *= scale
	}
	return taps, center
}

// Ratio returns the reduced up/down factors.
func (c *Converter) Ratio() (up, down int) { return c.up, c.down }

// OutputLen returns the number of samples Convert produces for n inputs.
func (c *Converter) OutputLen(n int) int {
	if n <= 0 {
		return 0
	}
	return (n*c.up + c.down - 1) / c.down
}

// Convert resamples in and returns a new slice. Equal rates return a copy.
func (c *Converter) Convert(in []float64) []float64 {
	out := make([]float64, c.OutputLen(len(in)))
	if c.up == c.down {
		copy(out, in)
		return out
	}

	last := len(c.taps) - 1
	for m := range out {
		// Output m sits at m*down on the upsampled grid; input k sits at k*up.
		pos := m*c.down + c.center
		kHi := min(pos/c.up, len(in)-1)
		kLo := max(ceilDiv(pos-last, c.up), 0)

		var y float64
		for k := kLo; k <= kHi; k++ {
			y += c.taps[pos-k*c.up] * in[k]
		}
		out[m] = y
	}
	return out
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return -((-a) / b)
	}
	return (a + b - 1) / b
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}
	pix := math.Pi * x
	return math.Sin(pix) / pix
}

func kaiser(i, n int, beta float64) float64 {
	if n <= 1 || beta == 0 {
		return 1
	}
	t := 2*float64(i)/float64(n-1) - 1
	return besselI0(beta*math.Sqrt(math.Max(0, 1-t*t))) / besselI0(beta)
}

// besselI0 evaluates the zeroth order modified Bessel function by its
// power series.
func besselI0(x float64) float64 {
	sum, term := 1.0, 1.0
	x2 := x * x / 4
	for k := 1; k < 64; k++ {
		term *= x2 / float64(k*k)
		sum += term
		if term < 1e-16*sum {
			break
		}
	}
	return sum
}
