package echo

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by the analyzer.
var (
	ErrEmpty             = errors.New("echo: signal is empty")
	ErrInvalidSampleRate = errors.New("echo: sample rate must be positive")
	ErrSilent            = errors.New("echo: signal is silent")
	ErrNoRepeat          = errors.New("echo: no repeat found")
)

const (
	defaultMinPeriod = 100
	defaultFloorDB   = -60.0
	peakSearch       = 2
)

// Result holds the measured repeat structure.
type Result struct {
	PeriodSamples int     // lag of the strongest autocorrelation peak
	PeriodMs      float64 // PeriodSamples in milliseconds
	Onset         int     // index of the first arrival
	Peaks         []float64
	Gain          float64 // mean ratio between successive repeats
	Repeats       int     // repeats above the floor, the first arrival excluded
	DecayTime     float64 // seconds to fall by 60 dB, 0 when Gain is 0 or >= 1
}

// Analyzer measures echo period and loop gain.
type Analyzer struct {
	SampleRate float64
	MinPeriod  int     // shortest lag considered, in samples
	FloorDB    float64 // peaks below this level relative to the first arrival are ignored
}

// NewAnalyzer creates an analyzer with a 100 sample minimum period and a
// -60 dB floor.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{
		SampleRate: sampleRate,
		MinPeriod:  defaultMinPeriod,
		FloorDB:    defaultFloorDB,
	}
}

// Analyze measures the repeat structure of x.
func (a *Analyzer) Analyze(x []float64) (Result, error) {
	if len(x) == 0 {
		return Result{}, ErrEmpty
	}
	if a.SampleRate <= 0 {
		return Result{}, ErrInvalidSampleRate
	}

	r, err := Autocorrelation(x)
	if err != nil {
		return Result{}, err
	}

	minLag := a.MinPeriod
	if minLag < 1 {
		minLag = 1
	}
	period := -1
	best := 0.0
	for lag := minLag; lag < len(r); lag++ {
		if r[lag] > best {
			best = r[lag]
			period = lag
		}
	}
	if period < 0 {
		return Result{}, ErrNoRepeat
	}

	res := Result{
		PeriodSamples: period,
		PeriodMs:      float64(period) / a.SampleRate * 1000,
		Onset:         onset(x),
	}
	res.Peaks = a.peaks(x, res.Onset, period)
	res.Repeats = len(res.Peaks) - 1
	res.Gain = loopGain(res.Peaks)
	if res.Gain > 0 && res.Gain < 1 {
		periodSec := float64(period) / a.SampleRate
		res.DecayTime = periodSec * -60 / (20 * math.Log10(res.Gain))
	}
	return res, nil
}

// Autocorrelation returns the linear autocorrelation of x for lags
// 0..len(x)-1, normalized so that lag 0 is 1. It is computed as the inverse
// FFT of the power spectrum.
func Autocorrelation(x []float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmpty
	}

	n := len(x)
	size := nextPowerOf2(2 * n)
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("echo: failed to create FFT plan: %w", err)
	}

	padded := make([]complex128, size)
	for i, v := range x {
		padded[i] = complex(v, 0)
	}
	freq := make([]complex128, size)
	if err := plan.Forward(freq, padded); err != nil {
		return nil, fmt.Errorf("echo: forward FFT failed: %w", err)
	}

	re := make([]float64, size)
	im := make([]float64, size)
	for i, c := range freq {
		re[i] = real(c)
		im[i] = imag(c)
	}
	power := make([]float64, size)
	vecmath.Power(power, re, im)

	for i, p := range power {
		freq[i] = complex(p, 0)
	}
	if err := plan.Inverse(padded, freq); err != nil {
		return nil, fmt.Errorf("echo: inverse FFT failed: %w", err)
	}

	zero := real(padded[0])
	if zero <= 0 {
		return nil, ErrSilent
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = real(padded[i]) / zero
	}
	return out, nil
}

// onset returns the first sample within 6 dB of the global peak.
func onset(x []float64) int {
	peak := 0.0
	for _, v := range x {
		peak = math.Max(peak, math.Abs(v))
	}
	limit := peak * 0.5
	for i, v := range x {
		if math.Abs(v) >= limit {
			return i
		}
	}
	return 0
}

// peaks collects the largest magnitude around onset+k*period until the
// level falls below the floor.
func (a *Analyzer) peaks(x []float64, start, period int) []float64 {
	first := windowPeak(x, start)
	if first == 0 {
		return nil
	}
	floor := first * math.Pow(10, a.FloorDB/20)

	out := []float64{first}
	for pos := start + period; pos < len(x); pos += period {
		p := windowPeak(x, pos)
		if p < floor {
			break
		}
		out = append(out, p)
	}
	return out
}

func windowPeak(x []float64, center int) float64 {
	lo := max(center-peakSearch, 0)
	hi := min(center+peakSearch+1, len(x))
	peak := 0.0
	for _, v := range x[lo:hi] {
		peak = math.Max(peak, math.Abs(v))
	}
	return peak
}

// loopGain averages the ratio between successive repeats. The first arrival
// may carry the dry signal, so it only counts when nothing else is known.
func loopGain(peaks []float64) float64 {
	switch len(peaks) {
	case 0, 1:
		return 0
	case 2:
		return peaks[1] / peaks[0]
	}
	var logSum float64
	for i := 2; i < len(peaks); i++ {
		logSum += math.Log(peaks[i] / peaks[i-1])
	}
	return math.Exp(logSum / float64(len(peaks)-2))
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
