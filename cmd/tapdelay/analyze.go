package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/cwbudde/algo-tapdelay/dsp/tempo"
	"github.com/cwbudde/algo-tapdelay/internal/wavio"
	"github.com/cwbudde/algo-tapdelay/measure/echo"
)

func runAnalyze(_ context.Context, log *slog.Logger, fs *flag.FlagSet, args []string, stdout io.Writer) error {
	minPeriod := fs.Int("min-period", 100, "shortest repeat period considered, in samples")
	floor := fs.Float64("floor", -60, "repeat detection floor in dB below the first arrival")
	channel := fs.String("channel", "left", "channel to analyze: left or right")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(fs.Output(), "Usage: tapdelay analyze [flags] file.wav")
		return errUsage
	}

	path, err := expandPath(fs.Arg(0))
	if err != nil {
		return err
	}
	s, err := wavio.ReadFile(path)
	if err != nil {
		return err
	}
	data := s.Left
	switch *channel {
	case "left":
	case "right":
		data = s.Right
	default:
		return fmt.Errorf("%w: unknown channel %q", errUsage, *channel)
	}
	log.Debug("analyzing", "path", path, "rate", s.SampleRate, "frames", s.Frames())

	a := echo.NewAnalyzer(float64(s.SampleRate))
	a.MinPeriod = *minPeriod
	a.FloorDB = *floor
	res, err := a.Analyze(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	rate := float64(s.SampleRate)
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "file\t%s\n", path)
	fmt.Fprintf(tw, "period\t%d samples\t%.2f ms\t%.1f bpm\n",
		res.PeriodSamples, res.PeriodMs, tempo.SamplesToBPM(float64(res.PeriodSamples), rate))
	fmt.Fprintf(tw, "onset\t%d samples\n", res.Onset)
	fmt.Fprintf(tw, "gain\t%.4f\n", res.Gain)
	fmt.Fprintf(tw, "repeats\t%d\n", res.Repeats)
	fmt.Fprintf(tw, "decay\t%.2f s\n", res.DecayTime)
	return tw.Flush()
}
