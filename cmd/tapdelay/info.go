package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/cwbudde/algo-tapdelay/dsp/effects/tapdelay"
	"github.com/cwbudde/algo-tapdelay/dsp/tempo"
	"github.com/cwbudde/algo-tapdelay/internal/cpu"
)

func runInfo(_ context.Context, _ *slog.Logger, fs *flag.FlagSet, args []string, stdout io.Writer) error {
	var ef engineFlags
	ef.register(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	cfg := ef.config()
	td, _, err := ef.build(cfg, &tapdelay.ManualClock{})
	if err != nil {
		return err
	}
	p := td.Params()
	rate := td.SampleRate()

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "cpu\t%s\n", cpu.Detect())
	fmt.Fprintf(tw, "sample rate\t%.0f Hz\n", rate)
	fmt.Fprintf(tw, "block size\t%d samples\t%.0f callbacks/s\n", cfg.BlockSize, cfg.CallbackRate())
	fmt.Fprintf(tw, "delay memory\t%d samples\t%.2f s\n", td.Capacity(), float64(td.Capacity())/rate)
	fmt.Fprintf(tw, "delay range\t%.0f..%.0f samples\t%.1f..%.1f ms\n",
		td.MinTargetDelay(), td.MaxTargetDelay(),
		tempo.SamplesToMs(td.MinTargetDelay(), rate), tempo.SamplesToMs(td.MaxTargetDelay(), rate))
	fmt.Fprintf(tw, "initial delay\t%.0f samples\t%.1f bpm\n", p.TargetDelay, tempo.SamplesToBPM(p.TargetDelay, rate))
	fmt.Fprintf(tw, "tremolo rate\t%.2f Hz\t%s\n", p.OscFreq, p.Modulation)
	fmt.Fprintf(tw, "feedback\t%.3f\n", p.Feedback)
	fmt.Fprintf(tw, "mix\t%.3f\n", p.Mix)
	return tw.Flush()
}
