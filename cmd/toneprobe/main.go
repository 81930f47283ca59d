// Command toneprobe looks for a named audio device, checks the default
// input device and plays a stereo sawtooth tone on the default output.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/Station-Manager/baud/internal/logging"
	"github.com/Station-Manager/baud/tone"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("toneprobe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "JSON config file")
	device := fs.String("device", "", "device name to probe for (overrides config)")
	duration := fs.Duration("duration", 0, "how long to play the tone (overrides config)")
	rate := fs.Float64("rate", 0, "sample rate in Hz (overrides config)")
	logLevel := fs.String("log-level", logging.DefaultLevel, "log level")
	logFile := fs.String("log-file", "", "also write logs to this file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	logger, closer, err := logging.New(logging.Options{Level: *logLevel, File: *logFile, Writer: stderr})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() { _ = closer.Close() }()

	cfg := tone.DefaultConfig()
	if *configPath != "" {
		if cfg, err = tone.LoadConfig(*configPath); err != nil {
			logger.Error().Err(err).Msg("config")
			return 1
		}
	}
	applyOverrides(&cfg, *device, *duration, *rate)

	p := tone.NewPlayer(cfg, logger, stdout)
	if err = p.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("PortAudio error")
		return 1
	}
	return 0
}

func applyOverrides(cfg *tone.Config, device string, duration time.Duration, rate float64) {
	if device != "" {
		cfg.DeviceName = device
	}
	if duration != 0 {
		cfg.Duration = duration
	}
	if rate != 0 {
		cfg.SampleRate = rate
	}
}
