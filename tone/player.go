package tone

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

const outputChannels = 2

type stream interface {
	Start() error
	Stop() error
	Close() error
}

// allow tests to override external dependencies
var (
	paInitialize         = portaudio.Initialize
	paTerminate          = portaudio.Terminate
	paDevices            = portaudio.Devices
	paDefaultInputDevice = portaudio.DefaultInputDevice

	openOutputStream = func(rate float64, process func([]float32)) (stream, error) {
		return portaudio.OpenDefaultStream(0, outputChannels, rate, portaudio.FramesPerBufferUnspecified, process)
	}
	openBlockingStream = func(p portaudio.StreamParameters, buf []int16) (stream, error) {
		return portaudio.OpenStream(p, buf)
	}
)

// Player runs the probe and plays the sawtooth tone on the default output
// device for Config.Duration.
type Player struct {
	Config Config
	Logger zerolog.Logger
	// Stdout receives the probe result; nil discards it.
	Stdout io.Writer

	tone    Sawtooth
	running atomic.Bool
}

func NewPlayer(cfg Config, logger zerolog.Logger, stdout io.Writer) *Player {
	return &Player{Config: cfg, Logger: logger, Stdout: stdout}
}

// Running reports whether the output stream is started.
func (p *Player) Running() bool {
	return p.running.Load()
}

// Frames returns the number of frames rendered so far.
func (p *Player) Frames() uint64 {
	return p.tone.Frames()
}

// Run initializes PortAudio, probes for the configured device, checks the
// default input device, plays the tone and tears everything down again.
// Cancelling ctx ends playback early without an error.
func (p *Player) Run(ctx context.Context) (err error) {
	if err = p.Config.Validate(); err != nil {
		return err
	}

	if err = paInitialize(); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer func() {
		if e := paTerminate(); e != nil {
			err = errors.Join(err, fmt.Errorf("terminate: %w", e))
		}
	}()

	index, err := Probe(p.Config.DeviceName)
	if err != nil {
		return err
	}
	p.Logger.Info().Str("device", p.Config.DeviceName).Int("index", index).Msg("probe")
	if p.Stdout != nil {
		fmt.Fprintf(p.Stdout, "%d\n", index)
	}

	if e := SetupInput(p.Config.SampleRate); e != nil {
		p.Logger.Warn().Err(e).Msg("input setup")
	}

	s, err := openOutputStream(p.Config.SampleRate, p.tone.Process)
	if err != nil {
		return fmt.Errorf("open output stream: %w", err)
	}
	defer func() {
		if e := s.Close(); e != nil {
			err = errors.Join(err, fmt.Errorf("close output stream: %w", e))
		}
	}()

	if err = s.Start(); err != nil {
		return fmt.Errorf("start output stream: %w", err)
	}
	p.running.Store(true)

	p.wait(ctx)

	err = s.Stop()
	p.running.Store(false)
	if err != nil {
		return fmt.Errorf("stop output stream: %w", err)
	}

	p.Logger.Debug().Uint64("frames", p.Frames()).Msg("tone finished")
	return nil
}

func (p *Player) wait(ctx context.Context) {
	timer := time.NewTimer(p.Config.Duration)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		p.Logger.Info().Msg("playback interrupted")
	}
}
