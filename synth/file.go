package synth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Station-Manager/baud/midi"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const DefaultSampleRate = 44100

type Config struct {
	SampleRate int    `validate:"gt=0"`
	OutDir     string `validate:"required"`
}

func DefaultConfig() Config {
	return Config{SampleRate: DefaultSampleRate, OutDir: "."}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("synth: invalid config: %w", err)
	}
	return nil
}

// part is one monophonic voice to render into its own file.
type part struct {
	name   string
	events []midi.TimedEvent
}

// RenderFile renders every voice of the MIDI file at path into a WAV file
// in cfg.OutDir and returns the paths written. A format 0 file yields one
// channelN.wav per MIDI channel; other formats yield one trackN.wav per
// track after the first, which only carries the tempo map.
func RenderFile(path string, cfg Config, logger zerolog.Logger) (written []string, err error) {
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cErr := f.Close(); cErr != nil {
			err = errors.Join(err, cErr)
		}
	}()

	chunks, err := midi.ReadChunks(f)
	if err != nil {
		return nil, err
	}
	hdr, err := midi.DecodeHeader(f, chunks)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Int("format", hdr.Format).
		Int("tracks", hdr.NumTracks).
		Int("division", hdr.TimeDivision).
		Stringer("division_type", hdr.DivisionType).
		Msg("MIDI header")

	track0, err := midi.DecodeTrack(f, chunks, 0)
	if err != nil {
		return nil, err
	}
	tempos := midi.TempoChanges(track0)

	var parts []part
	if hdr.Format == 0 {
		byChannel := midi.ByChannel(track0)
		channels := make([]int, 0, len(byChannel))
		for ch := range byChannel {
			channels = append(channels, ch)
		}
		sort.Ints(channels)
		for _, ch := range channels {
			parts = append(parts, part{name: fmt.Sprintf("channel%d.wav", ch), events: byChannel[ch]})
		}
	} else {
		for n := 1; n < chunks.Tracks(); n++ {
			events, err := midi.DecodeTrack(f, chunks, n)
			if err != nil {
				return written, err
			}
			parts = append(parts, part{name: fmt.Sprintf("track%d.wav", n), events: events})
		}
	}

	for _, p := range parts {
		out := filepath.Join(cfg.OutDir, p.name)
		if err = renderPart(out, hdr, p.events, tempos, cfg.SampleRate); err != nil {
			return written, fmt.Errorf("synth: %s: %w", p.name, err)
		}
		logger.Info().Str("file", out).Msg("wrote")
		written = append(written, out)
	}
	return written, nil
}

func renderPart(path string, hdr midi.Header, events []midi.TimedEvent, tempos []midi.TempoChange, sampleRate int) (err error) {
	timed, err := TicksToMillis(hdr, events, tempos)
	if err != nil {
		return err
	}
	notes, err := MonophonicNotes(timed)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := f.Close(); cErr != nil {
			err = errors.Join(err, cErr)
		}
	}()
	return WriteWAV(f, Render(notes, sampleRate), sampleRate)
}
