// Package synth renders the notes of a MIDI track as a square wave.
package synth

import (
	"errors"
	"fmt"
	"math"

	"github.com/Station-Manager/baud/midi"
)

var (
	ErrUnsupportedDivision = errors.New("synth: only ticks-per-beat time division is supported")
	ErrNoEndOfTrack        = errors.New("synth: end of track expected")
)

// NoteFrequency returns the frequency in Hz of MIDI note 0-127.
func NoteFrequency(note int) float64 {
	if note < 0 || note > 127 {
		panic(fmt.Sprintf("synth: MIDI note %d out of range", note))
	}
	return 440.0 * math.Pow(2, float64(note-69)/12.0)
}

// TimedEvent is a MIDI event placed in milliseconds from the track start.
type TimedEvent struct {
	Millis float64
	Event  midi.Event
}

// TicksToMillis converts absolute tick times to milliseconds, following the
// tempo changes. Before the first tempo change midi.DefaultTempo applies.
func TicksToMillis(hdr midi.Header, events []midi.TimedEvent, tempos []midi.TempoChange) ([]TimedEvent, error) {
	if hdr.DivisionType != midi.TicksPerBeat || hdr.TimeDivision == 0 {
		return nil, ErrUnsupportedDivision
	}
	ticksPerBeat := float64(hdr.TimeDivision)
	msPerTick := func(mpqn int) float64 {
		return 0.001 * float64(mpqn) / ticksPerBeat
	}

	out := make([]TimedEvent, 0, len(events))
	var (
		baseMillis float64
		baseTick   uint32
		rate       = msPerTick(midi.DefaultTempo)
		next       int
	)
	for _, te := range events {
		for next < len(tempos) && tempos[next].Time <= te.Time {
			baseMillis += float64(tempos[next].Time-baseTick) * rate
			baseTick = tempos[next].Time
			rate = msPerTick(tempos[next].MicrosecondsPerQuarterNote)
			next++
		}
		out = append(out, TimedEvent{
			Millis: baseMillis + float64(te.Time-baseTick)*rate,
			Event:  te.Event,
		})
	}
	return out, nil
}

// NoteSpan starts a note, or silence when Rest is set, at Millis.
type NoteSpan struct {
	Millis float64
	Note   int
	Rest   bool
}

// MonophonicNotes reduces a track to one note at a time. A new note
// replaces the sounding one; releasing the sounding note starts a rest.
// The list ends with a rest at the End Of Track event.
func MonophonicNotes(events []TimedEvent) ([]NoteSpan, error) {
	var (
		out     []NoteSpan
		current = -1
	)
	for _, te := range events {
		ev := te.Event
		switch {
		case ev.IsNoteOff():
			if ev.Param1() == current {
				current = -1
				out = append(out, NoteSpan{Millis: te.Millis, Rest: true})
			}
		case ev.IsNoteOn():
			current = ev.Param1()
			out = append(out, NoteSpan{Millis: te.Millis, Note: current})
		case ev.IsMeta(midi.MetaEndOfTrack):
			out = append(out, NoteSpan{Millis: te.Millis, Rest: true})
			return out, nil
		}
	}
	return nil, ErrNoEndOfTrack
}
