package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cwbudde/algo-tapdelay/dsp/core"
	"github.com/cwbudde/algo-tapdelay/dsp/effects/tapdelay"
	"github.com/cwbudde/algo-tapdelay/dsp/resample"
	"github.com/cwbudde/algo-tapdelay/dsp/signal"
	"github.com/cwbudde/algo-tapdelay/internal/automation"
	"github.com/cwbudde/algo-tapdelay/internal/wavio"
)

var pluckPitches = []float64{220, 330, 261.63, 392}

func runRender(ctx context.Context, log *slog.Logger, fs *flag.FlagSet, args []string, stdout io.Writer) error {
	var ef engineFlags
	ef.register(fs)
	in := fs.String("in", "", "input WAV or MP3 file (default: built-in pluck train)")
	out := fs.String("out", "tapdelay.wav", "output WAV file")
	script := fs.String("script", "", "Lua automation script")
	seconds := fs.Float64("seconds", 6, "length of the built-in source in seconds")
	tail := fs.Float64("tail", 2, "seconds of silence appended so the repeats ring out")
	bits := fs.Int("bits", 16, "output bit depth: 16 or 24")
	err := fs.Parse(args)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	for _, p := range []*string{in, out, script} {
		if *p, err = expandPath(*p); err != nil {
			return err
		}
	}

	cfg := ef.config()
	src, err := loadSource(*in, cfg, *seconds, ef.rateSet(fs))
	if err != nil {
		return err
	}
	cfg.SampleRate = float64(src.SampleRate)
	log.Debug("source", "path", *in, "rate", src.SampleRate, "frames", src.Frames())

	frames := src.Frames() + int(*tail*cfg.SampleRate)
	inL := make([]float64, frames)
	inR := make([]float64, frames)
	core.CopyInto(inL, src.Left)
	core.CopyInto(inR, src.Right)

	clock := &tapdelay.ManualClock{}
	td, panel, err := ef.build(cfg, clock)
	if err != nil {
		return err
	}

	var timeline *automation.Timeline
	if *script != "" {
		timeline, err = automation.LoadFile(*script, automation.Options{
			SampleRate: cfg.SampleRate,
			Duration:   time.Duration(float64(frames) / cfg.SampleRate * float64(time.Second)),
			Pulse:      panel.Pulse(),
		})
		if err != nil {
			return err
		}
		log.Debug("automation loaded", "script", *script, "events", timeline.Len())
	}

	dst := wavio.NewStereo(src.SampleRate, frames)
	dst.BitDepth = *bits
	if err := render(ctx, td, panel, clock, timeline, cfg, inL, inR, dst.Left, dst.Right); err != nil {
		return err
	}

	if err := wavio.WriteFile(*out, dst); err != nil {
		return err
	}

	snap := td.Snapshot()
	log.Info("rendered",
		"out", *out,
		"frames", frames,
		"seconds", dst.Duration(),
		"target_delay", snap.TargetDelay,
		"delay_samples", snap.DelaySamples,
		"feedback", snap.Feedback,
		"mix", snap.Mix,
		"modulation", snap.Modulation,
	)
	fmt.Fprintf(stdout, "wrote %s (%.2f s)\n", *out, dst.Duration())
	return nil
}

// loadSource reads path, or generates the pluck train when path is empty.
// A file is converted to the configured rate when conform is set.
func loadSource(path string, cfg core.ProcessorConfig, seconds float64, conform bool) (*wavio.Stereo, error) {
	if path != "" {
		s, err := wavio.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if conform {
			return convertRate(s, int(cfg.SampleRate))
		}
		return s, nil
	}

	g := signal.NewGenerator(core.WithSampleRate(cfg.SampleRate))
	period := int(cfg.SampleRate * 1.5)
	mono, err := g.PluckTrain(pluckPitches, 0.5, period, int(seconds*cfg.SampleRate))
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	s := wavio.NewStereo(int(cfg.SampleRate), len(mono))
	copy(s.Left, mono)
	copy(s.Right, mono)
	return s, nil
}

// convertRate resamples both channels of s to rate.
func convertRate(s *wavio.Stereo, rate int) (*wavio.Stereo, error) {
	if s.SampleRate == rate {
		return s, nil
	}
	c, err := resample.New(s.SampleRate, rate)
	if err != nil {
		return nil, err
	}
	out := &wavio.Stereo{
		SampleRate: rate,
		BitDepth:   s.BitDepth,
		Left:       c.Convert(s.Left),
		Right:      c.Convert(s.Right),
	}
	return out, nil
}

// render runs the engine block by block, advancing the clock and applying
// automation at each block start.
func render(ctx context.Context, td *tapdelay.TapDelay, panel automation.Panel, clock *tapdelay.ManualClock,
	timeline *automation.Timeline, cfg core.ProcessorConfig, inL, inR, outL, outR []float64,
) error {
	n := len(inL)
	for start := 0; start < n; start += cfg.BlockSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+cfg.BlockSize, n)

		now := uint32(float64(start) / cfg.SampleRate * 1000)
		clock.Set(now)
		if timeline != nil {
			if err := timeline.Advance(now, panel); err != nil {
				return err
			}
		}
		td.Process(outL[start:end], outR[start:end], inL[start:end], inR[start:end])
	}
	return nil
}
