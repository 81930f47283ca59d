package tone

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

const (
	inputChannels       = 1
	inputBufferFrames   = 512
	probeInputChannels  = 0
	probeOutputChannels = 2
)

// FindDevice returns the index in devices of the first device named name
// with no input channels and exactly two output channels, or -1.
func FindDevice(devices []*portaudio.DeviceInfo, name string) int {
	for i, d := range devices {
		if d == nil {
			continue
		}
		if d.Name == name &&
			d.MaxInputChannels == probeInputChannels &&
			d.MaxOutputChannels == probeOutputChannels {
			return i
		}
	}
	return -1
}

// Probe enumerates the PortAudio devices and looks for name.
// PortAudio must be initialized.
func Probe(name string) (int, error) {
	devices, err := paDevices()
	if err != nil {
		return -1, fmt.Errorf("enumerating devices: %w", err)
	}
	return FindDevice(devices, name), nil
}

// SetupInput checks that a blocking 16-bit mono input stream can be opened
// on the default input device, then releases it. Nothing is recorded.
func SetupInput(sampleRate float64) (err error) {
	dev, err := paDefaultInputDevice()
	if err != nil {
		return fmt.Errorf("default input device: %w", err)
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: inputChannels,
			Latency:  dev.DefaultHighInputLatency,
		},
		SampleRate:      sampleRate,
		FramesPerBuffer: inputBufferFrames,
		Flags:           portaudio.ClipOff,
	}

	buf := make([]int16, inputBufferFrames*inputChannels)
	s, err := openBlockingStream(params, buf)
	if err != nil {
		return fmt.Errorf("opening input stream on %q: %w", dev.Name, err)
	}
	if err = s.Close(); err != nil {
		return fmt.Errorf("closing input stream: %w", err)
	}
	return nil
}
