// Command setbaud remaps the 38400 speed slot of a Linux serial device to a
// custom divisor, or restores standard speed mode.
//
//	setbaud /dev/ttyS0 31250
//	setbaud /dev/ttyS0 38400
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"

	"github.com/Station-Manager/baud"
	"github.com/Station-Manager/baud/internal/logging"
)

const (
	exitOK = iota
	exitUsage
	exitInvalidInput
	exitOpen
	exitInterface
	exitTolerance
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("setbaud", flag.ContinueOnError)
	fs.SetOutput(stderr)
	list := fs.Bool("list", false, "list serial ports and exit")
	logLevel := fs.String("log-level", logging.DefaultLevel, "log level (trace, debug, info, warn, error)")
	logFile := fs.String("log-file", "", "also write logs to this file")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags] device_filename baud_rate\n", fs.Name())
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	logger, closer, err := logging.New(logging.Options{Level: *logLevel, File: *logFile, Writer: stderr})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	defer func() { _ = closer.Close() }()

	if *list {
		return listPorts(stdout, logger)
	}

	if fs.NArg() < 2 {
		fs.Usage()
		return exitUsage
	}
	device := fs.Arg(0)

	speed, err := baud.ParseSpeed(fs.Arg(1))
	if err != nil {
		logger.Error().Err(err).Msg("set_custom_baud_rate()")
		return exitInvalidInput
	}

	out, err := baud.NewConfigurator(logger).SetCustomBaudRate(ctx, device, speed)
	if err != nil {
		logger.Error().Err(err).Str("device", device).Int("speed", speed).Msg("set_custom_baud_rate()")
		reportTolerance(stderr, err)
		return exitCode(err)
	}

	switch out.Mode {
	case baud.ModeCustom:
		fmt.Fprintf(stdout, "Closest speed is %d (baud_base=%d, custom_divisor=%d)\n", out.Achieved, out.BaudBase, out.Divisor)
	case baud.ModeStandard:
		fmt.Fprintln(stdout, "Disabling custom baud rate")
	}
	return exitOK
}

func exitCode(err error) int {
	var tolErr *baud.ToleranceError
	switch {
	case errors.As(err, &tolErr):
		return exitTolerance
	case errors.Is(err, baud.ErrInvalidSpeed), errors.Is(err, baud.ErrInvalidPortName):
		return exitInvalidInput
	case errors.Is(err, baud.ErrDeviceOpen):
		return exitOpen
	case errors.Is(err, baud.ErrReadConfig), errors.Is(err, baud.ErrWriteConfig), errors.Is(err, baud.ErrUnsupportedPlatform):
		return exitInterface
	default:
		return exitUsage
	}
}

// reportTolerance prints the closest achievable speed when err is a
// tolerance rejection.
func reportTolerance(stderr io.Writer, err error) {
	var tolErr *baud.ToleranceError
	if errors.As(err, &tolErr) {
		fmt.Fprintf(stderr, "Cannot set serial port speed to %d. Closest possible is %d\n", tolErr.Requested, tolErr.Closest)
	}
}

func listPorts(stdout io.Writer, logger zerolog.Logger) int {
	ports, err := baud.DetailedPorts()
	if err != nil {
		logger.Error().Err(err).Msg("listing serial ports")
		return exitInterface
	}
	if len(ports) == 0 {
		logger.Info().Msg("no serial ports found")
		return exitOK
	}
	for _, p := range ports {
		if p.IsUSB {
			fmt.Fprintf(stdout, "%s\tUSB %s:%s serial=%s %s\n", p.Name, p.VID, p.PID, p.SerialNumber, p.Product)
			continue
		}
		fmt.Fprintln(stdout, p.Name)
	}
	return exitOK
}
