package midi

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	ErrNotMIDI        = errors.New("midi: not a MIDI header")
	ErrVarLenTooLong  = errors.New("midi: variable length number longer than 4 bytes")
	ErrNoStatus       = errors.New("midi: data byte without running status")
	ErrTrackOverrun   = errors.New("midi: event runs past end of track")
	ErrNoSuchTrack    = errors.New("midi: no such track")
	ErrUnexpectedType = errors.New("midi: unexpected status byte")
	ErrBadDataByte    = errors.New("midi: data byte with high bit set")
)

const (
	chunkHeaderLen = 8
	headerLen      = 6
)

type DivisionType int

const (
	TicksPerBeat DivisionType = iota
	FramesPerSecond
)

func (d DivisionType) String() string {
	if d == FramesPerSecond {
		return "FRAMES_PER_SECOND"
	}
	return "TICKS_PER_BEAT"
}

// ChunkRef locates a chunk payload in the file.
type ChunkRef struct {
	Offset int64
	Length uint32
}

// Chunks indexes chunk payloads by their four character type.
type Chunks map[string][]ChunkRef

// Tracks returns the number of MTrk chunks.
func (c Chunks) Tracks() int {
	return len(c["MTrk"])
}

type Header struct {
	Format       int
	NumTracks    int
	TimeDivision int
	DivisionType DivisionType
}

// ReadChunks walks the chunk headers of r from the start.
func ReadChunks(r io.ReadSeeker) (Chunks, error) {
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err = r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	chunks := make(Chunks)
	var hdr [chunkHeaderLen]byte
	for offset := int64(0); offset < end; {
		if _, err = io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("midi: chunk header at %d: %w", offset, err)
		}
		offset += chunkHeaderLen
		typ := string(hdr[:4])
		length := binary.BigEndian.Uint32(hdr[4:])
		if offset+int64(length) > end {
			return nil, fmt.Errorf("midi: %s chunk at %d claims %d bytes, %d left: %w",
				typ, offset-chunkHeaderLen, length, end-offset, io.ErrUnexpectedEOF)
		}
		chunks[typ] = append(chunks[typ], ChunkRef{Offset: offset, Length: length})
		offset += int64(length)
		if _, err = r.Seek(offset, io.SeekStart); err != nil {
			return nil, err
		}
	}
	return chunks, nil
}

// DecodeHeader reads the MThd chunk, which must be the first chunk of the
// file and exactly six bytes long.
func DecodeHeader(r io.ReadSeeker, chunks Chunks) (Header, error) {
	refs := chunks["MThd"]
	if len(refs) != 1 || refs[0].Offset != chunkHeaderLen || refs[0].Length != headerLen {
		return Header{}, ErrNotMIDI
	}
	if _, err := r.Seek(refs[0].Offset, io.SeekStart); err != nil {
		return Header{}, err
	}
	var b [headerLen]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Header{}, fmt.Errorf("midi: header: %w", err)
	}

	hdr := Header{
		Format:       int(binary.BigEndian.Uint16(b[0:])),
		NumTracks:    int(binary.BigEndian.Uint16(b[2:])),
		TimeDivision: int(binary.BigEndian.Uint16(b[4:])),
	}
	if hdr.TimeDivision&0x8000 != 0 {
		hdr.TimeDivision &= 0x7FFF
		hdr.DivisionType = FramesPerSecond
	}
	return hdr, nil
}

// DecodeTrack decodes the n-th MTrk chunk.
func DecodeTrack(r io.ReadSeeker, chunks Chunks, n int) ([]TimedEvent, error) {
	refs := chunks["MTrk"]
	if n < 0 || n >= len(refs) {
		return nil, fmt.Errorf("%w: %d of %d", ErrNoSuchTrack, n, len(refs))
	}
	if _, err := r.Seek(refs[n].Offset, io.SeekStart); err != nil {
		return nil, err
	}
	data := make([]byte, refs[n].Length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("midi: track %d: %w", n, err)
	}
	events, err := ParseTrack(data)
	if err != nil {
		return nil, fmt.Errorf("midi: track %d: %w", n, err)
	}
	return events, nil
}

// ParseTrack decodes the payload of an MTrk chunk. The last event must end
// exactly at the end of data.
func ParseTrack(data []byte) ([]TimedEvent, error) {
	tr := trackReader{data: data}
	var (
		events  []TimedEvent
		running byte
		now     uint32
	)

	for tr.pos < len(data) {
		delta, err := tr.varLen()
		if err != nil {
			return nil, err
		}
		now += delta

		status, err := tr.ReadByte()
		if err != nil {
			return nil, err
		}

		var ev Event
		switch {
		case status == MetaEvent:
			metaType, err := tr.ReadByte()
			if err != nil {
				return nil, err
			}
			payload, err := tr.lengthPrefixed()
			if err != nil {
				return nil, err
			}
			ev = Event{Status: status, MetaType: metaType, Data: payload}
			running = 0

		case status == SysExEvent || status == SysExEscapeEvent:
			payload, err := tr.lengthPrefixed()
			if err != nil {
				return nil, err
			}
			ev = Event{Status: status, Data: payload}
			running = 0

		default:
			first := -1
			if status < 0x80 {
				// running status: this byte is already the first data byte
				if running == 0 {
					return nil, fmt.Errorf("%w at offset %d", ErrNoStatus, tr.pos-1)
				}
				first = int(status)
				status = running
			}
			typ := int(status >> 4)
			if typ < NoteOff || typ > PitchBend {
				return nil, fmt.Errorf("%w 0x%02X at offset %d", ErrUnexpectedType, status, tr.pos-1)
			}

			n := 2
			if typ == ProgramChange || typ == ChannelAftertouch {
				n = 1
			}
			params := make([]byte, 0, n)
			if first >= 0 {
				params = append(params, byte(first))
			}
			for len(params) < n {
				b, err := tr.ReadByte()
				if err != nil {
					return nil, err
				}
				if b&0x80 != 0 {
					return nil, fmt.Errorf("%w: 0x%02X at offset %d", ErrBadDataByte, b, tr.pos-1)
				}
				params = append(params, b)
			}
			ev = Event{Status: status, Data: params}
			running = status
		}

		events = append(events, TimedEvent{Delta: delta, Time: now, Event: ev})
	}

	return events, nil
}

// ReadVarLen reads a variable length quantity of at most four bytes.
func ReadVarLen(r io.ByteReader) (uint32, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v = v<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, ErrVarLenTooLong
}

type trackReader struct {
	data []byte
	pos  int
}

func (t *trackReader) ReadByte() (byte, error) {
	if t.pos >= len(t.data) {
		return 0, ErrTrackOverrun
	}
	b := t.data[t.pos]
	t.pos++
	return b, nil
}

func (t *trackReader) varLen() (uint32, error) {
	return ReadVarLen(t)
}

func (t *trackReader) lengthPrefixed() ([]byte, error) {
	n, err := t.varLen()
	if err != nil {
		return nil, err
	}
	if uint64(t.pos)+uint64(n) > uint64(len(t.data)) {
		return nil, ErrTrackOverrun
	}
	b := t.data[t.pos : t.pos+int(n)]
	t.pos += int(n)
	return b, nil
}
