package core

import "math"

// ProcessorConfig defines the shared processing settings of the engine.
type ProcessorConfig struct {
	SampleRate      float64
	BlockSize       int
	MaxDelaySeconds float64
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the settings of the reference hardware:
// 48 kHz, 4-sample blocks and a 2 second delay memory.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate:      48000,
		BlockSize:       4,
		MaxDelaySeconds: 2,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 && !math.IsInf(sampleRate, 0) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the processing block size.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithMaxDelaySeconds sets the capacity of the delay memory in seconds.
func WithMaxDelaySeconds(seconds float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if seconds > 0 && !math.IsInf(seconds, 0) {
			cfg.MaxDelaySeconds = seconds
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// MaxDelaySamples returns the delay memory size in samples.
func (c ProcessorConfig) MaxDelaySamples() int {
	return int(c.SampleRate * c.MaxDelaySeconds)
}

// CallbackRate returns how often a block is processed per second.
func (c ProcessorConfig) CallbackRate() float64 {
	if c.BlockSize <= 0 {
		return c.SampleRate
	}
	return c.SampleRate / float64(c.BlockSize)
}
