package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cwbudde/algo-tapdelay/dsp/effects/tapdelay"
	"github.com/cwbudde/algo-tapdelay/dsp/signal"
	"github.com/cwbudde/algo-tapdelay/internal/audio"
	"github.com/cwbudde/algo-tapdelay/internal/host"
)

const (
	statusInterval = 25 * time.Millisecond
	keyHelp        = "space tap | t tremolo | c clear | [ ] { } time | - = feedback | , . mix | q quit"
)

func runPlay(ctx context.Context, log *slog.Logger, fs *flag.FlagSet, args []string, stdout io.Writer) error {
	var ef engineFlags
	ef.register(fs)
	in := fs.String("in", "", "WAV or MP3 file to loop as input (default: built-in pluck train)")
	latency := fs.Duration("latency", 20*time.Millisecond, "audio device buffer")
	quiet := fs.Bool("quiet", false, "do not draw the status line")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	path, err := expandPath(*in)
	if err != nil {
		return err
	}
	cfg := ef.config()
	src, err := loadSource(path, cfg, 6, ef.rateSet(fs))
	if err != nil {
		return err
	}
	cfg.SampleRate = float64(src.SampleRate)
	loop, err := signal.NewLoop(src.Left, src.Right)
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}

	clock := tapdelay.NewSystemClock()
	td, panel, err := ef.build(cfg, clock)
	if err != nil {
		return err
	}

	stream, err := audio.NewStream(td, loop, cfg.BlockSize)
	if err != nil {
		return err
	}
	player, err := audio.NewPlayer(src.SampleRate, *latency)
	if err != nil {
		return err
	}
	player.Start(stream)
	defer func() {
		if err := player.Close(); err != nil {
			log.Warn("closing audio device", "err", err)
		}
	}()
	log.Info("playing", "rate", src.SampleRate, "block", cfg.BlockSize, "latency", *latency)

	kb := host.NewKeyboard()
	if err := kb.Start(); err != nil {
		return err
	}
	defer kb.Stop()

	fmt.Fprintf(stdout, "%s\r\n", keyHelp)
	ind := tapdelay.NewIndicator(td, cfg.SampleRate)
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprint(stdout, "\r\n")
			return nil
		case key, ok := <-kb.Keys():
			if !ok {
				return nil
			}
			action := panel.HandleKey(key)
			if action == host.ActionQuit {
				fmt.Fprint(stdout, "\r\n")
				log.Info("stopped", "frames", stream.Frames())
				return nil
			}
			log.Debug("key", "key", string(key), "action", action)
		case <-ticker.C:
			if *quiet {
				continue
			}
			st := ind.Update(clock.NowMs())
			fmt.Fprintf(stdout, "\r%s ", host.StatusLine(st, td.Snapshot(), cfg.SampleRate))
		}
	}
}
