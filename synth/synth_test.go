package synth

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/Station-Manager/baud/midi"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteFrequency(t *testing.T) {
	assert.InDelta(t, 440.0, NoteFrequency(69), 1e-9)
	assert.InDelta(t, 880.0, NoteFrequency(81), 1e-9)
	assert.InDelta(t, 220.0, NoteFrequency(57), 1e-9)
	assert.InDelta(t, 261.6256, NoteFrequency(60), 1e-4)

	assert.Panics(t, func() { NoteFrequency(-1) })
	assert.Panics(t, func() { NoteFrequency(128) })
	assert.NotPanics(t, func() { NoteFrequency(127) })
}

func at(ticks ...uint32) []midi.TimedEvent {
	out := make([]midi.TimedEvent, len(ticks))
	for i, tk := range ticks {
		out[i] = midi.TimedEvent{Time: tk}
	}
	return out
}

func millis(events []TimedEvent) []float64 {
	out := make([]float64, len(events))
	for i, e := range events {
		out[i] = e.Millis
	}
	return out
}

func TestTicksToMillis(t *testing.T) {
	hdr := midi.Header{TimeDivision: 96, DivisionType: midi.TicksPerBeat}

	got, err := TicksToMillis(hdr, at(0, 96, 192), []midi.TempoChange{{Time: 0, MicrosecondsPerQuarterNote: 500000}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 500, 1000}, millis(got), 1e-9)

	tempos := []midi.TempoChange{
		{Time: 0, MicrosecondsPerQuarterNote: 1000000},
		{Time: 384, MicrosecondsPerQuarterNote: 250000},
	}
	got, err = TicksToMillis(hdr, at(0, 384, 480), tempos)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 4000, 4250}, millis(got), 1e-9)
}

func TestTicksToMillis_DefaultTempoFirst(t *testing.T) {
	hdr := midi.Header{TimeDivision: 96, DivisionType: midi.TicksPerBeat}
	tempos := []midi.TempoChange{{Time: 96, MicrosecondsPerQuarterNote: 1000000}}

	got, err := TicksToMillis(hdr, at(0, 96, 192), tempos)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 500, 1500}, millis(got), 1e-9)
}

func TestTicksToMillis_UnsupportedDivision(t *testing.T) {
	_, err := TicksToMillis(midi.Header{TimeDivision: 0x6728, DivisionType: midi.FramesPerSecond}, at(0), nil)
	assert.ErrorIs(t, err, ErrUnsupportedDivision)

	_, err = TicksToMillis(midi.Header{DivisionType: midi.TicksPerBeat}, at(0), nil)
	assert.ErrorIs(t, err, ErrUnsupportedDivision)
}

func noteOn(ms float64, note, vel byte) TimedEvent {
	return TimedEvent{Millis: ms, Event: midi.Event{Status: 0x90, Data: []byte{note, vel}}}
}

func noteOff(ms float64, note byte) TimedEvent {
	return TimedEvent{Millis: ms, Event: midi.Event{Status: 0x80, Data: []byte{note, 0}}}
}

func endOfTrack(ms float64) TimedEvent {
	return TimedEvent{Millis: ms, Event: midi.Event{Status: midi.MetaEvent, MetaType: midi.MetaEndOfTrack}}
}

func TestMonophonicNotes(t *testing.T) {
	events := []TimedEvent{
		noteOn(0, 60, 100),
		noteOn(100, 64, 100), // replaces 60
		noteOff(150, 60),     // not sounding, ignored
		noteOff(200, 64),
		noteOn(300, 67, 100),
		noteOn(400, 67, 0), // velocity 0 releases
		{Millis: 450, Event: midi.Event{Status: 0xC0, Data: []byte{3}}},
		endOfTrack(500),
		noteOn(600, 70, 100),
	}

	notes, err := MonophonicNotes(events)
	require.NoError(t, err)
	assert.Equal(t, []NoteSpan{
		{Millis: 0, Note: 60},
		{Millis: 100, Note: 64},
		{Millis: 200, Rest: true},
		{Millis: 300, Note: 67},
		{Millis: 400, Rest: true},
		{Millis: 500, Rest: true},
	}, notes)
}

func TestMonophonicNotes_NoEndOfTrack(t *testing.T) {
	_, err := MonophonicNotes([]TimedEvent{noteOn(0, 60, 100), noteOff(10, 60)})
	assert.ErrorIs(t, err, ErrNoEndOfTrack)
}

func TestRender(t *testing.T) {
	assert.Nil(t, Render(nil, 1000))

	// 1 kHz sampling: a 440 Hz half wave is about 1.14 samples
	out := Render([]NoteSpan{{Millis: 0, Note: 69}, {Millis: 10, Rest: true}}, 1000)
	require.Len(t, out, 10)
	assert.Equal(t, high, out[0])
	assert.Equal(t, low, out[1])
	for i, s := range out {
		assert.Contains(t, []int{high, low}, s, "sample %d", i)
	}
}

func TestRender_Rest(t *testing.T) {
	notes := []NoteSpan{
		{Millis: 0, Note: 69},
		{Millis: 5, Rest: true},
		{Millis: 8, Note: 69},
		{Millis: 10, Rest: true},
	}
	out := Render(notes, 1000)
	require.Len(t, out, 10)
	assert.Equal(t, []int{0, 0, 0}, out[5:8])
	assert.Equal(t, high, out[8], "a note restarts on the high half-cycle")
}

func TestWriteWAV(t *testing.T) {
	samples := []int{0, high, low, 1000, -1000, 0}
	path := filepath.Join(t.TempDir(), "out.wav")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteWAV(f, samples, 8000))
	require.NoError(t, f.Close())

	decoded, dec := decodeWAV(t, path)
	assert.Equal(t, uint32(8000), dec.SampleRate)
	assert.Equal(t, uint16(16), dec.BitDepth)
	assert.Equal(t, uint16(1), dec.NumChans)
	assert.Equal(t, samples, decoded)
}

func decodeWAV(t *testing.T, path string) ([]int, *wav.Decoder) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile(), "%s is not a WAV file", path)
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	return buf.Data, dec
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{SampleRate: 0, OutDir: "."}.Validate())
	assert.Error(t, Config{SampleRate: 8000}.Validate())
}

func chunk(typ string, payload []byte) []byte {
	b := make([]byte, 8, 8+len(payload))
	copy(b, typ)
	binary.BigEndian.PutUint32(b[4:], uint32(len(payload)))
	return append(b, payload...)
}

func writeSMF(t *testing.T, format int, tracks ...[]byte) string {
	t.Helper()
	hdr := make([]byte, 6)
	binary.BigEndian.PutUint16(hdr[0:], uint16(format))
	binary.BigEndian.PutUint16(hdr[2:], uint16(len(tracks)))
	binary.BigEndian.PutUint16(hdr[4:], 96)
	data := chunk("MThd", hdr)
	for _, tr := range tracks {
		data = append(data, chunk("MTrk", tr)...)
	}
	path := filepath.Join(t.TempDir(), "song.mid")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

var (
	tempoTrack = []byte{
		0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20,
		0x00, 0xFF, 0x2F, 0x00,
	}
	// A4 for one beat, a beat of rest, then end of track
	melodyTrack = []byte{
		0x00, 0x90, 0x45, 0x64,
		0x60, 0x80, 0x45, 0x00,
		0x60, 0xFF, 0x2F, 0x00,
	}
)

func TestRenderFile_MultiTrack(t *testing.T) {
	in := writeSMF(t, 1, tempoTrack, melodyTrack, melodyTrack)
	cfg := Config{SampleRate: 8000, OutDir: t.TempDir()}

	written, err := RenderFile(in, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(cfg.OutDir, "track1.wav"),
		filepath.Join(cfg.OutDir, "track2.wav"),
	}, written)

	samples, _ := decodeWAV(t, written[0])
	require.Len(t, samples, 8000, "one second at 120 BPM and 96 ticks per beat")
	assert.Equal(t, high, samples[0])
	assert.Equal(t, 0, samples[len(samples)-1])
}

func TestRenderFile_SingleTrack(t *testing.T) {
	track := []byte{
		0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20,
		0x00, 0x90, 0x45, 0x64,
		0x00, 0x92, 0x48, 0x64,
		0x60, 0x80, 0x45, 0x00,
		0x00, 0x82, 0x48, 0x00,
		0x60, 0xFF, 0x2F, 0x00,
	}
	in := writeSMF(t, 0, track)
	cfg := Config{SampleRate: 8000, OutDir: t.TempDir()}

	written, err := RenderFile(in, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(cfg.OutDir, "channel0.wav"),
		filepath.Join(cfg.OutDir, "channel2.wav"),
	}, written)
}

func TestRenderFile_Errors(t *testing.T) {
	_, err := RenderFile("unused.mid", Config{}, zerolog.Nop())
	assert.Error(t, err)

	cfg := Config{SampleRate: 8000, OutDir: t.TempDir()}
	_, err = RenderFile(filepath.Join(t.TempDir(), "missing.mid"), cfg, zerolog.Nop())
	assert.ErrorIs(t, err, os.ErrNotExist)

	noEnd := []byte{0x00, 0x90, 0x45, 0x64, 0x60, 0x80, 0x45, 0x00}
	in := writeSMF(t, 1, tempoTrack, noEnd)
	_, err = RenderFile(in, cfg, zerolog.Nop())
	assert.ErrorIs(t, err, ErrNoEndOfTrack)

	badNote := []byte{0x00, 0x90, 0xC8, 0x40, 0x60, 0xFF, 0x2F, 0x00}
	in = writeSMF(t, 1, tempoTrack, badNote)
	assert.NotPanics(t, func() {
		_, err = RenderFile(in, cfg, zerolog.Nop())
	})
	assert.ErrorIs(t, err, midi.ErrBadDataByte)
}
