package synth

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth    = 16
	numChannels = 1
	pcmFormat   = 1

	high = 32767
	low  = -32768
)

// Render produces a square wave for notes at sampleRate. Each note starts
// on the high half-cycle; rests are silent. Rendering stops at the last
// transition, so a trailing rest only marks the end.
func Render(notes []NoteSpan, sampleRate int) []int {
	if len(notes) == 0 || sampleRate <= 0 {
		return nil
	}

	dt := 1000.0 / float64(sampleRate)
	out := make([]int, 0, int(notes[len(notes)-1].Millis/dt)+1)

	var (
		t, osc, halfWave float64
		amplitude        int
		i                int
	)
	for {
		for t >= notes[i].Millis {
			if notes[i].Rest {
				amplitude = 0
			} else {
				amplitude = 1
				halfWave = 500.0 / NoteFrequency(notes[i].Note)
				osc = 0
			}
			i++
			if i == len(notes) {
				return out
			}
		}

		osc += dt
		if osc >= halfWave {
			amplitude = -amplitude
			osc -= halfWave
		}
		out = append(out, pcm16(amplitude))
		t += dt
	}
}

func pcm16(amplitude int) int {
	switch {
	case amplitude > 0:
		return high
	case amplitude < 0:
		return low
	default:
		return 0
	}
}

// WriteWAV writes samples as 16-bit mono PCM.
func WriteWAV(w io.WriteSeeker, samples []int, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, bitDepth, numChannels, pcmFormat)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  sampleRate,
		},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
