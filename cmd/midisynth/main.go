// Command midisynth renders each voice of a Standard MIDI File as a
// square-wave WAV file, or dumps its events.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Station-Manager/baud/internal/logging"
	"github.com/Station-Manager/baud/midi"
	"github.com/Station-Manager/baud/synth"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("midisynth", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: midisynth [-rate hz] [-out dir] [-dump] <file.mid>")
		fs.PrintDefaults()
	}
	cfg := synth.DefaultConfig()
	fs.IntVar(&cfg.SampleRate, "rate", cfg.SampleRate, "output sample rate in Hz")
	fs.StringVar(&cfg.OutDir, "out", cfg.OutDir, "directory for the WAV files")
	dump := fs.Bool("dump", false, "print the decoded events instead of rendering")
	logLevel := fs.String("log-level", logging.DefaultLevel, "log level")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}
	path := fs.Arg(0)

	logger, closer, err := logging.New(logging.Options{Level: *logLevel, Writer: stderr})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() { _ = closer.Close() }()

	if *dump {
		err = dumpFile(stdout, path)
	} else {
		_, err = synth.RenderFile(path, cfg, logger)
	}
	if err != nil {
		logger.Error().Err(err).Str("file", path).Msg("midisynth failed")
		return 1
	}
	return 0
}

func dumpFile(w io.Writer, path string) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := f.Close(); cErr != nil {
			err = errors.Join(err, cErr)
		}
	}()

	chunks, err := midi.ReadChunks(f)
	if err != nil {
		return err
	}
	hdr, err := midi.DecodeHeader(f, chunks)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Format: %d\nTracks: %d\nTime division: %d (%s)\n",
		hdr.Format, hdr.NumTracks, hdr.TimeDivision, hdr.DivisionType)

	for n := 0; n < chunks.Tracks(); n++ {
		events, err := midi.DecodeTrack(f, chunks, n)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\nTrack %d\n", n)
		if err = midi.Dump(w, events); err != nil {
			return err
		}
	}
	return nil
}
