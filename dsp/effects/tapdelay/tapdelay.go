package tapdelay

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-tapdelay/dsp/core"
	"github.com/cwbudde/algo-tapdelay/dsp/delay"
	"github.com/cwbudde/algo-tapdelay/dsp/osc"
	"github.com/cwbudde/algo-tapdelay/dsp/smooth"
	"github.com/cwbudde/algo-tapdelay/dsp/tempo"
)

// Errors returned by New.
var (
	ErrInvalidSampleRate = errors.New("tapdelay: sample rate must be > 0 and finite")
	ErrDelayTooShort     = errors.New("tapdelay: delay memory shorter than the minimum delay")
)

// TapDelay is the stereo delay engine. It is not safe for concurrent use:
// one goroutine runs the audio callback. Snapshot may be called from others.
type TapDelay struct {
	sampleRate float64
	cfg        config

	left  *delay.Line
	right *delay.Line
	osc   *osc.Oscillator
	tap   *tempo.TapTempo
	delay smooth.Scalar

	params   Params
	controls Controls
	clock    Clock

	wetL, wetR, dry []float64

	status published
}

// New creates a tap delay running at sampleRate. The delay lines are
// allocated here for the configured maximum delay and never resized.
func New(sampleRate float64, opts ...Option) (*TapDelay, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %f", ErrInvalidSampleRate, sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	capacity := int(sampleRate * cfg.maxDelaySeconds)
	if float64(capacity-defaultGuardSamples) < cfg.minDelay {
		return nil, fmt.Errorf("%w: %d samples, min delay %.0f", ErrDelayTooShort, capacity, cfg.minDelay)
	}

	left, err := delay.New(capacity, delay.WithMode(cfg.interpolation))
	if err != nil {
		return nil, fmt.Errorf("tapdelay: left line: %w", err)
	}
	right, err := delay.New(capacity, delay.WithMode(cfg.interpolation))
	if err != nil {
		return nil, fmt.Errorf("tapdelay: right line: %w", err)
	}

	o, err := osc.New(sampleRate, osc.WithWaveform(cfg.waveform))
	if err != nil {
		return nil, fmt.Errorf("tapdelay: oscillator: %w", err)
	}

	tap, err := tempo.NewTapTempo(sampleRate, tempo.WithMaxInterval(cfg.tapWindowMs))
	if err != nil {
		return nil, fmt.Errorf("tapdelay: tap tempo: %w", err)
	}

	clock := cfg.clock
	if clock == nil {
		clock = NewSystemClock()
	}

	t := &TapDelay{
		sampleRate: sampleRate,
		cfg:        cfg,
		left:       left,
		right:      right,
		osc:        o,
		tap:        tap,
		controls:   cfg.controls,
		clock:      clock,
	}
	if cfg.blockSize > 0 {
		t.wetL = make([]float64, cfg.blockSize)
		t.wetR = make([]float64, cfg.blockSize)
		t.dry = make([]float64, cfg.blockSize)
	}
	t.init()
	return t, nil
}

// init brings every component to its power-up state.
func (t *TapDelay) init() {
	t.left.Init()
	t.right.Init()
	t.osc.Reset()
	t.tap.Reset()

	t.params = Params{
		Feedback:   t.cfg.initialFeedback * t.cfg.feedbackCeiling,
		Mix:        t.cfg.initialMix,
		Modulation: t.cfg.modulation,
	}
	t.setTarget(t.sampleRate * t.cfg.initialDelaySeconds)
	t.delay.Snap(t.params.TargetDelay)
	t.left.SetDelay(t.delay.Value())
	t.right.SetDelay(t.delay.Value())
	t.publish(0)
}

// Reset returns the engine to its power-up state. Buffers are reused.
func (t *TapDelay) Reset() {
	t.init()
}

// AudioCallback is the transport entry point: in and out hold left and
// right channels of at least size samples. A mono input feeds both channels.
// It must not be called concurrently or re-entered.
func (t *TapDelay) AudioCallback(in, out [][]float64, size int) {
	if len(in) == 0 || len(out) < 2 {
		return
	}
	inL, inR := in[0], in[0]
	if len(in) > 1 {
		inR = in[1]
	}
	if size > len(inL) {
		size = len(inL)
	}
	if size > len(inR) {
		size = len(inR)
	}
	if size < 0 {
		size = 0
	}
	t.Process(out[0], out[1], inL[:size], inR[:size])
}

// Process runs the control stage once and the sample pipeline for every
// sample of the block. The number of processed samples is the shortest of
// the four slices. Output may alias input.
func (t *TapDelay) Process(outL, outR, inL, inR []float64) {
	n := minLen(outL, outR, inL, inR)
	outL, outR, inL, inR = outL[:n], outR[:n], inL[:n], inR[:n]

	t.UpdateControls()
	p := &t.params

	if p.Clearing {
		for i := 0; i < n; i++ {
			t.feedSilence()
		}
		copy(outL, inL)
		copy(outR, inR)
		t.publish(blockRMS(outL, outR))
		return
	}

	t.wetL = core.EnsureLen(t.wetL, n)
	t.wetR = core.EnsureLen(t.wetR, n)
	t.dry = core.EnsureLen(t.dry, n)
	for i := 0; i < n; i++ {
		t.wetL[i], t.wetR[i] = t.wet(p, inL[i], inR[i])
	}

	mixBlock(outL, t.wetL, inL, t.dry, p.Mix)
	mixBlock(outR, t.wetR, inR, t.dry, p.Mix)
	t.publish(blockRMS(outL, outR))
}

// ProcessSample runs the sample pipeline once with the current parameter
// snapshot. It does not run the control stage.
func (t *TapDelay) ProcessSample(inL, inR float64) (outL, outR float64) {
	return t.processSample(&t.params, inL, inR)
}

func (t *TapDelay) processSample(p *Params, inL, inR float64) (float64, float64) {
	if p.Clearing {
		t.feedSilence()
		return inL, inR
	}
	wetL, wetR := t.wet(p, inL, inR)
	return wetL*p.Mix + inL*(1-p.Mix), wetR*p.Mix + inR*(1-p.Mix)
}

// wet advances the delay time, reads both lines, applies the tremolo and
// writes the feedback signal. It returns the wet samples.
func (t *TapDelay) wet(p *Params, inL, inR float64) (float64, float64) {
	// The lines are read before this sample is written, so the newest
	// stored sample is already one period old.
	d := t.delay.Tick(t.cfg.smoothing) - 1
	t.left.SetDelay(d)
	t.right.SetDelay(d)

	wetL := t.left.Read()
	wetR := t.right.Read()

	if p.Modulation == ModulationTremolo {
		m := Unipolar(t.osc.Process())
		wetL *= m
		wetR *= m
	}

	t.left.Write(core.FlushDenormals(inL + wetL*p.Feedback))
	t.right.Write(core.FlushDenormals(inR + wetR*p.Feedback))
	return wetL, wetR
}

func (t *TapDelay) feedSilence() {
	t.left.Write(0)
	t.right.Write(0)
}

// mixBlock computes out = wet*mix + dry*(1-mix). scratch must be as long as dry.
// The dry part is scaled first so out may alias dry.
func mixBlock(out, wet, dry, scratch []float64, mix float64) {
	vecmath.ScaleBlock(scratch, dry, 1-mix)
	vecmath.ScaleBlock(out, wet, mix)
	vecmath.AddBlockInPlace(out, scratch)
}

func minLen(bufs ...[]float64) int {
	n := len(bufs[0])
	for _, b := range bufs[1:] {
		if len(b) < n {
			n = len(b)
		}
	}
	return n
}

// Params returns a copy of the current parameter snapshot.
func (t *TapDelay) Params() Params { return t.params }

// CurrentDelay returns the smoothed delay length in samples.
func (t *TapDelay) CurrentDelay() float64 { return t.delay.Value() }

// SampleRate returns the sample rate in Hz.
func (t *TapDelay) SampleRate() float64 { return t.sampleRate }

// Capacity returns the size of each delay line in samples.
func (t *TapDelay) Capacity() int { return t.left.Len() }

// MaxTargetDelay returns the longest delay target, a few samples short of
// the line capacity so interpolated reads stay inside the buffer.
func (t *TapDelay) MaxTargetDelay() float64 {
	return float64(t.left.Len() - defaultGuardSamples)
}

// MinTargetDelay returns the shortest delay target.
func (t *TapDelay) MinTargetDelay() float64 { return t.cfg.minDelay }

// Lines returns the left and right delay lines.
func (t *TapDelay) Lines() (left, right *delay.Line) { return t.left, t.right }
