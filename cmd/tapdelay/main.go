// Command tapdelay runs the stereo tap-tempo delay offline or live.
//
// Usage:
//
//	tapdelay <command> [flags]
//
// Commands:
//
//	render   process a WAV or MP3 file (or the built-in pluck train) into a WAV file
//	play     run the delay live on the audio device with keyboard controls
//	analyze  measure echo period and loop gain of a rendered WAV file
//	info     print CPU features and engine defaults
//
// Examples:
//
//	tapdelay render -out echo.wav -seconds 8 -delay 0.375 -feedback 0.6
//	tapdelay render -in ~/takes/guitar.mp3 -rate 48000 -out wet.wav -script taps.lua
//	tapdelay play -tremolo
//	tapdelay analyze echo.wav
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mitchellh/go-homedir"
)

var errUsage = errors.New("usage")

// expandPath resolves a leading ~ and environment variables in a path flag.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	p, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	return os.ExpandEnv(p), nil
}

type command struct {
	name  string
	short string
	run   func(ctx context.Context, log *slog.Logger, fs *flag.FlagSet, args []string, stdout io.Writer) error
}

var commands = []command{
	{"render", "process a WAV or MP3 file into a WAV file", runRender},
	{"play", "run live on the audio device", runPlay},
	{"analyze", "measure echo period and loop gain", runAnalyze},
	{"info", "print CPU features and engine defaults", runInfo},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("tapdelay", flag.ContinueOnError)
	global.SetOutput(stderr)
	verbose := global.Bool("v", false, "log debug messages")
	global.Usage = func() { usage(stderr) }
	if err := global.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	rest := global.Args()
	if len(rest) == 0 {
		usage(stderr)
		return 2
	}
	for _, c := range commands {
		if c.name != rest[0] {
			continue
		}
		fs := flag.NewFlagSet(c.name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		err := c.run(ctx, log.With("cmd", c.name), fs, rest[1:], stdout)
		switch {
		case err == nil:
			return 0
		case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
			return 2
		default:
			log.Error("command failed", "cmd", c.name, "err", err)
			return 1
		}
	}
	fmt.Fprintf(stderr, "tapdelay: unknown command %q\n\n", rest[0])
	usage(stderr)
	return 2
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: tapdelay [-v] <command> [flags]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.short)
	}
	fmt.Fprintf(w, "\nRun 'tapdelay <command> -h' for command flags.\n")
}
