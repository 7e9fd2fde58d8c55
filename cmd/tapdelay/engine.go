package main

import (
	"flag"
	"fmt"

	"github.com/cwbudde/algo-tapdelay/dsp/core"
	"github.com/cwbudde/algo-tapdelay/dsp/effects/tapdelay"
	"github.com/cwbudde/algo-tapdelay/dsp/interp"
	"github.com/cwbudde/algo-tapdelay/dsp/osc"
	"github.com/cwbudde/algo-tapdelay/internal/host"
)

// engineFlags are the settings shared by render and play.
type engineFlags struct {
	rate      float64
	block     int
	maxDelay  float64
	delay     float64
	feedback  float64
	mix       float64
	tremolo   bool
	waveform  string
	hermite   bool
	smoothing float64
}

func (e *engineFlags) register(fs *flag.FlagSet) {
	def := core.DefaultProcessorConfig()
	fs.Float64Var(&e.rate, "rate", def.SampleRate, "sample rate in Hz (input files are resampled when set, otherwise their rate is used)")
	fs.IntVar(&e.block, "block", def.BlockSize, "callback block size in samples")
	fs.Float64Var(&e.maxDelay, "max-delay", def.MaxDelaySeconds, "delay memory in seconds")
	fs.Float64Var(&e.delay, "delay", 0.5, "initial delay time in seconds")
	fs.Float64Var(&e.feedback, "feedback", 0.5, "feedback knob position in [0, 1]")
	fs.Float64Var(&e.mix, "mix", 0.5, "dry/wet mix in [0, 1]")
	fs.BoolVar(&e.tremolo, "tremolo", false, "start with the tremolo on")
	fs.StringVar(&e.waveform, "waveform", "sine", "tremolo waveform: sine, triangle, saw, square")
	fs.BoolVar(&e.hermite, "hermite", false, "use 4-point Hermite reads instead of linear")
	fs.Float64Var(&e.smoothing, "smoothing", 0.0002, "per-sample delay time glide coefficient")
}

// rateSet reports whether -rate was given explicitly on fs.
func (e *engineFlags) rateSet(fs *flag.FlagSet) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "rate" {
			set = true
		}
	})
	return set
}

func (e *engineFlags) config() core.ProcessorConfig {
	return core.ApplyProcessorOptions(
		core.WithSampleRate(e.rate),
		core.WithBlockSize(e.block),
		core.WithMaxDelaySeconds(e.maxDelay),
	)
}

// build creates the panel and an engine wired to it.
func (e *engineFlags) build(cfg core.ProcessorConfig, clock tapdelay.Clock) (*tapdelay.TapDelay, *host.Panel, error) {
	wf, err := osc.ParseWaveform(e.waveform)
	if err != nil {
		return nil, nil, err
	}
	mode := interp.Linear
	if e.hermite {
		mode = interp.Hermite
	}
	mod := tapdelay.ModulationOff
	if e.tremolo {
		mod = tapdelay.ModulationTremolo
	}

	panel := host.NewPanel(cfg.CallbackRate(), e.feedback, e.mix)
	opts := []tapdelay.Option{
		tapdelay.WithMaxDelaySeconds(cfg.MaxDelaySeconds),
		tapdelay.WithInitialDelaySeconds(e.delay),
		tapdelay.WithInitialFeedback(e.feedback),
		tapdelay.WithInitialMix(e.mix),
		tapdelay.WithModulation(mod),
		tapdelay.WithWaveform(wf),
		tapdelay.WithInterpolation(mode),
		tapdelay.WithSmoothing(e.smoothing),
		tapdelay.WithBlockSize(cfg.BlockSize),
		tapdelay.WithControls(panel.Controls()),
	}
	if clock != nil {
		opts = append(opts, tapdelay.WithClock(clock))
	}

	td, err := tapdelay.New(cfg.SampleRate, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("engine: %w", err)
	}
	return td, panel, nil
}
