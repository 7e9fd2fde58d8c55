package tapdelay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-tapdelay/dsp/interp"
	"github.com/cwbudde/algo-tapdelay/dsp/osc"
)

const (
	defaultMaxDelaySeconds     = 2.0
	defaultInitialDelaySeconds = 0.5
	defaultFeedbackCeiling     = 0.98
	defaultMinDelaySamples     = 100.0
	defaultGuardSamples        = 4
	defaultEncoderStepSamples  = 500.0
	defaultSmoothingCoef       = 0.0002
	defaultModulationRatio     = 4.0
	defaultTapWindowMs         = 2000
	defaultInitialFeedback     = 0.5
	defaultInitialMix          = 0.5
)

// Option mutates tap delay construction parameters.
type Option func(*config) error

type config struct {
	maxDelaySeconds     float64
	initialDelaySeconds float64
	feedbackCeiling     float64
	minDelay            float64
	encoderStep         float64
	smoothing           float64
	modulationRatio     float64
	tapWindowMs         uint32
	initialFeedback     float64
	initialMix          float64
	modulation          Modulation
	waveform            osc.Waveform
	interpolation       interp.Mode
	blockSize           int
	controls            Controls
	clock               Clock
}

func defaultConfig() config {
	return config{
		maxDelaySeconds:     defaultMaxDelaySeconds,
		initialDelaySeconds: defaultInitialDelaySeconds,
		feedbackCeiling:     defaultFeedbackCeiling,
		minDelay:            defaultMinDelaySamples,
		encoderStep:         defaultEncoderStepSamples,
		smoothing:           defaultSmoothingCoef,
		modulationRatio:     defaultModulationRatio,
		tapWindowMs:         defaultTapWindowMs,
		initialFeedback:     defaultInitialFeedback,
		initialMix:          defaultInitialMix,
		modulation:          ModulationOff,
		waveform:            osc.WaveSine,
		interpolation:       interp.Linear,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// WithMaxDelaySeconds sets the delay memory size. The lines are allocated
// once for this length.
func WithMaxDelaySeconds(seconds float64) Option {
	return func(cfg *config) error {
		if seconds <= 0 || !finite(seconds) {
			return fmt.Errorf("tapdelay max delay must be > 0 and finite: %f", seconds)
		}
		cfg.maxDelaySeconds = seconds
		return nil
	}
}

// WithInitialDelaySeconds sets the delay time used before any tap or turn.
func WithInitialDelaySeconds(seconds float64) Option {
	return func(cfg *config) error {
		if seconds <= 0 || !finite(seconds) {
			return fmt.Errorf("tapdelay initial delay must be > 0 and finite: %f", seconds)
		}
		cfg.initialDelaySeconds = seconds
		return nil
	}
}

// WithFeedbackCeiling sets the feedback reached at full knob travel.
// It must stay below 1 so the loop gain is bounded.
func WithFeedbackCeiling(ceiling float64) Option {
	return func(cfg *config) error {
		if ceiling < 0 || ceiling >= 1 || !finite(ceiling) {
			return fmt.Errorf("tapdelay feedback ceiling must be in [0, 1): %f", ceiling)
		}
		cfg.feedbackCeiling = ceiling
		return nil
	}
}

// WithMinDelaySamples sets the shortest delay target.
func WithMinDelaySamples(samples float64) Option {
	return func(cfg *config) error {
		if samples < 1 || !finite(samples) {
			return fmt.Errorf("tapdelay min delay must be >= 1 sample: %f", samples)
		}
		cfg.minDelay = samples
		return nil
	}
}

// WithEncoderStepSamples sets how far one encoder detent moves the delay target.
func WithEncoderStepSamples(samples float64) Option {
	return func(cfg *config) error {
		if samples <= 0 || !finite(samples) {
			return fmt.Errorf("tapdelay encoder step must be > 0: %f", samples)
		}
		cfg.encoderStep = samples
		return nil
	}
}

// WithSmoothing sets the per-sample one-pole coefficient of the delay time.
func WithSmoothing(coef float64) Option {
	return func(cfg *config) error {
		if coef <= 0 || coef > 1 || !finite(coef) {
			return fmt.Errorf("tapdelay smoothing must be in (0, 1]: %f", coef)
		}
		cfg.smoothing = coef
		return nil
	}
}

// WithModulationRatio sets how many tremolo cycles fit into one repeat.
func WithModulationRatio(ratio float64) Option {
	return func(cfg *config) error {
		if ratio <= 0 || !finite(ratio) {
			return fmt.Errorf("tapdelay modulation ratio must be > 0: %f", ratio)
		}
		cfg.modulationRatio = ratio
		return nil
	}
}

// WithTapWindowMs sets the longest accepted gap between two taps.
func WithTapWindowMs(ms uint32) Option {
	return func(cfg *config) error {
		if ms == 0 {
			return fmt.Errorf("tapdelay tap window must be > 0")
		}
		cfg.tapWindowMs = ms
		return nil
	}
}

// WithInitialFeedback sets the feedback knob position used until a feedback
// control is read.
func WithInitialFeedback(position float64) Option {
	return func(cfg *config) error {
		if position < 0 || position > 1 || !finite(position) {
			return fmt.Errorf("tapdelay feedback position must be in [0, 1]: %f", position)
		}
		cfg.initialFeedback = position
		return nil
	}
}

// WithInitialMix sets the mix used until a mix control is read.
func WithInitialMix(mix float64) Option {
	return func(cfg *config) error {
		if mix < 0 || mix > 1 || !finite(mix) {
			return fmt.Errorf("tapdelay mix must be in [0, 1]: %f", mix)
		}
		cfg.initialMix = mix
		return nil
	}
}

// WithModulation sets the starting modulation mode.
func WithModulation(m Modulation) Option {
	return func(cfg *config) error {
		if m != ModulationOff && m != ModulationTremolo {
			return fmt.Errorf("tapdelay unknown modulation mode: %d", m)
		}
		cfg.modulation = m
		return nil
	}
}

// WithWaveform sets the modulation oscillator shape. Sine is the default.
func WithWaveform(w osc.Waveform) Option {
	return func(cfg *config) error {
		cfg.waveform = w
		return nil
	}
}

// WithInterpolation sets the fractional read mode of both lines.
func WithInterpolation(mode interp.Mode) Option {
	return func(cfg *config) error {
		if mode != interp.Linear && mode != interp.Hermite {
			return fmt.Errorf("tapdelay unknown interpolation mode: %d", mode)
		}
		cfg.interpolation = mode
		return nil
	}
}

// WithBlockSize preallocates scratch space for blocks of up to n samples.
func WithBlockSize(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return fmt.Errorf("tapdelay block size must be > 0: %d", n)
		}
		cfg.blockSize = n
		return nil
	}
}

// WithControls attaches the panel read by the control stage.
func WithControls(c Controls) Option {
	return func(cfg *config) error {
		cfg.controls = c
		return nil
	}
}

// WithClock sets the tap timing source. Defaults to a SystemClock.
func WithClock(c Clock) Option {
	return func(cfg *config) error {
		if c == nil {
			return fmt.Errorf("tapdelay clock must not be nil")
		}
		cfg.clock = c
		return nil
	}
}
