// Package tone plays a stereo test tone through PortAudio and probes the
// device list for a named device.
package tone

import "go.uber.org/atomic"

const (
	leftStep  = 0.01
	leftTop   = 0.5
	leftSpan  = 1.0
	rightStep = 0.0075
	rightTop  = 0.3
	rightSpan = 0.6
)

// Sawtooth generates two independent sawtooth waves, the right channel at a
// higher pitch so the two sides can be told apart.
type Sawtooth struct {
	left   float32
	right  float32
	frames atomic.Uint64
}

// Process fills out with interleaved stereo frames. It is the PortAudio
// stream callback and must not allocate, block or log.
func (s *Sawtooth) Process(out []float32) {
	n := len(out) / 2
	for i := 0; i < n; i++ {
		out[2*i] = s.left
		out[2*i+1] = s.right

		s.left += leftStep
		if s.left >= leftTop {
			s.left -= leftSpan
		}
		s.right += rightStep
		if s.right >= rightTop {
			s.right -= rightSpan
		}
	}
	s.frames.Add(uint64(n))
}

// Frames returns how many frames Process has produced so far.
// Safe to call from any goroutine.
func (s *Sawtooth) Frames() uint64 {
	return s.frames.Load()
}
