// Package midi decodes Standard MIDI Files.
package midi

import "fmt"

// Channel event types, the high nibble of the status byte.
const (
	NoteOff           = 0x8
	NoteOn            = 0x9
	NoteAftertouch    = 0xA
	Controller        = 0xB
	ProgramChange     = 0xC
	ChannelAftertouch = 0xD
	PitchBend         = 0xE
)

// Status bytes of the non-channel events.
const (
	SysExEvent       = 0xF0
	SysExEscapeEvent = 0xF7
	MetaEvent        = 0xFF
)

// Meta event types.
const (
	MetaText           = 0x01
	MetaCopyright      = 0x02
	MetaTrackName      = 0x03
	MetaInstrumentName = 0x04
	MetaLyrics         = 0x05
	MetaMarker         = 0x06
	MetaCuePoint       = 0x07
	MetaPortPrefix     = 0x21
	MetaEndOfTrack     = 0x2F
	MetaSetTempo       = 0x51
	MetaSMPTEOffset    = 0x54
	MetaTimeSignature  = 0x58
	MetaKeySignature   = 0x59
	MetaSequencer      = 0x7F
)

var eventTypeNames = map[int]string{
	NoteOff:           "Note Off",
	NoteOn:            "Note On",
	NoteAftertouch:    "Note Aftertouch",
	Controller:        "Controller",
	ProgramChange:     "Program Change",
	ChannelAftertouch: "Channel Aftertouch",
	PitchBend:         "Pitch Bend",
	SysExEvent:        "SysEx",
	SysExEscapeEvent:  "SysEx",
	MetaEvent:         "Meta",
}

var metaTypeNames = map[int]string{
	MetaText:           "Text",
	MetaCopyright:      "Copyright Notice",
	MetaTrackName:      "Sequence/Track Name",
	MetaInstrumentName: "Instrument Name",
	MetaLyrics:         "Lyrics",
	MetaMarker:         "Marker",
	MetaCuePoint:       "Cue Point",
	MetaPortPrefix:     "Port Prefix",
	MetaEndOfTrack:     "End Of Track",
	MetaSetTempo:       "Set Tempo",
	MetaSMPTEOffset:    "SMPTE Offset",
	MetaTimeSignature:  "Time Signature",
	MetaKeySignature:   "Key Signature",
	MetaSequencer:      "Sequencer Specific",
}

// DefaultTempo is the tempo assumed when a file sets none: 120 BPM.
const DefaultTempo = 500000

// Event is one complete MIDI message. Running status is already resolved,
// so Status always holds the real status byte.
type Event struct {
	Status byte
	// MetaType is set for meta events only.
	MetaType byte
	// Data holds the channel event parameters, or the meta / sysex payload.
	Data []byte
}

// TimedEvent is an event with its delta time and absolute time in ticks.
type TimedEvent struct {
	Delta uint32
	Time  uint32
	Event Event
}

// Type returns the channel event type (0x8-0xE), MetaEvent or SysExEvent.
func (e Event) Type() int {
	switch e.Status {
	case MetaEvent:
		return MetaEvent
	case SysExEvent, SysExEscapeEvent:
		return SysExEvent
	default:
		return int(e.Status >> 4)
	}
}

func (e Event) IsChannel() bool {
	t := e.Type()
	return t >= NoteOff && t <= PitchBend
}

func (e Event) IsMeta(metaType int) bool {
	return e.Status == MetaEvent && int(e.MetaType) == metaType
}

// Channel returns the channel 0-15 of a channel event, -1 otherwise.
func (e Event) Channel() int {
	if !e.IsChannel() {
		return -1
	}
	return int(e.Status & 0x0F)
}

func (e Event) Param1() int {
	if !e.IsChannel() || len(e.Data) < 1 {
		return 0
	}
	return int(e.Data[0])
}

// Param2 returns the second parameter; ok is false for program change and
// channel aftertouch, which carry only one.
func (e Event) Param2() (v int, ok bool) {
	if !e.IsChannel() || len(e.Data) < 2 {
		return 0, false
	}
	return int(e.Data[1]), true
}

// IsNoteOff treats a note on with velocity 0 as a note off.
func (e Event) IsNoteOff() bool {
	switch e.Type() {
	case NoteOff:
		return true
	case NoteOn:
		v, _ := e.Param2()
		return v == 0
	}
	return false
}

func (e Event) IsNoteOn() bool {
	return e.Type() == NoteOn && !e.IsNoteOff()
}

// MetaText returns the payload of the text-like meta events (types 1-7).
func (e Event) MetaText() (string, bool) {
	if e.Status != MetaEvent || e.MetaType < MetaText || e.MetaType > MetaCuePoint {
		return "", false
	}
	return string(e.Data), true
}

func (e Event) SysExLength() int {
	if e.Type() != SysExEvent {
		return 0
	}
	return len(e.Data)
}

// MicrosecondsPerQuarterNote returns the tempo of a Set Tempo event.
func (e Event) MicrosecondsPerQuarterNote() (int, bool) {
	if !e.IsMeta(MetaSetTempo) || len(e.Data) != 3 {
		return 0, false
	}
	return int(e.Data[0])<<16 | int(e.Data[1])<<8 | int(e.Data[2]), true
}

func (e Event) TypeName() string {
	if name, ok := eventTypeNames[e.Type()]; ok {
		return name
	}
	return fmt.Sprintf("Unknown 0x%02X", e.Status)
}

func (e Event) MetaTypeName() string {
	if name, ok := metaTypeNames[int(e.MetaType)]; ok {
		return name
	}
	return fmt.Sprintf("Meta 0x%02X", e.MetaType)
}

// TempoChange is a Set Tempo event at an absolute tick.
type TempoChange struct {
	Time                       uint32
	MicrosecondsPerQuarterNote int
}

// TempoChanges collects the Set Tempo events of a track. A track without
// any yields DefaultTempo from tick 0.
func TempoChanges(events []TimedEvent) []TempoChange {
	var out []TempoChange
	for _, te := range events {
		if mpqn, ok := te.Event.MicrosecondsPerQuarterNote(); ok {
			out = append(out, TempoChange{Time: te.Time, MicrosecondsPerQuarterNote: mpqn})
		}
	}
	if len(out) == 0 {
		out = []TempoChange{{Time: 0, MicrosecondsPerQuarterNote: DefaultTempo}}
	}
	return out
}

// ByChannel splits the channel events of a track per channel. Each channel
// list is closed with the track's End Of Track event, if it has one.
func ByChannel(events []TimedEvent) map[int][]TimedEvent {
	out := make(map[int][]TimedEvent)
	var end *TimedEvent
	for i, te := range events {
		if te.Event.IsMeta(MetaEndOfTrack) {
			end = &events[i]
			continue
		}
		if ch := te.Event.Channel(); ch >= 0 {
			out[ch] = append(out[ch], te)
		}
	}
	if end != nil {
		for ch := range out {
			out[ch] = append(out[ch], *end)
		}
	}
	return out
}
