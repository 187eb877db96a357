package store

import (
	"encoding/binary"
	"fmt"

	"housecraft/internal/sim/house"
	"housecraft/internal/sim/multi"
)

// FormatVersion is the current on-disk encoding of a foundation record.
// Older versions remain readable; the decoder follows a fall-through
// chain so each version only describes what it added.
const FormatVersion = 5

const stateFormatVersion = 0

// legacySignpostGraphic is assumed for records older than version 4.
const legacySignpostGraphic = 9

type encoder struct {
	buf []byte
}

func (e *encoder) i32(v int32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(v))
}

func (e *encoder) u32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *encoder) u16(v uint16) {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
}

func (e *encoder) i16(v int16) {
	e.u16(uint16(v))
}

type decoder struct {
	buf []byte
	pos int
	err error
}

func (d *decoder) fail(n int) bool {
	if d.err != nil {
		return true
	}
	if d.pos+n > len(d.buf) {
		d.err = fmt.Errorf("store: truncated record at offset %d", d.pos)
		return true
	}
	return false
}

func (d *decoder) u32() uint32 {
	if d.fail(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v
}

func (d *decoder) i32() int32 { return int32(d.u32()) }

func (d *decoder) u16() uint16 {
	if d.fail(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(d.buf[d.pos:])
	d.pos += 2
	return v
}

func (d *decoder) i16() int16 { return int16(d.u16()) }

// Encode serializes a foundation snapshot.
func Encode(s house.Snapshot) []byte {
	e := &encoder{buf: make([]byte, 0, 512)}

	e.i32(FormatVersion)

	e.u32(s.Serial)
	e.i32(int32(s.Location.X))
	e.i32(int32(s.Location.Y))
	e.i32(int32(s.Location.Z))
	e.i32(int32(s.Width))
	e.i32(int32(s.Height))

	e.i32(int32(s.SignpostGraphic))
	e.i32(int32(s.Style))
	e.i32(int32(s.Price))
	e.i32(s.LastRevision)

	encodeState(e, s.Current)
	encodeState(e, s.Design)
	encodeState(e, s.Backup)

	return e.buf
}

func encodeState(e *encoder, st house.StateSnapshot) {
	e.i32(stateFormatVersion)

	mcl := st.Components
	e.i32(int32(mcl.Width()))
	e.i32(int32(mcl.Height()))
	e.i32(int32(mcl.Center().X))
	e.i32(int32(mcl.Center().Y))

	entries := mcl.Entries()
	e.i32(int32(len(entries)))
	for _, ent := range entries {
		encodeEntry(e, ent)
	}

	e.i32(int32(len(st.Fixtures)))
	for _, ent := range st.Fixtures {
		encodeEntry(e, ent)
	}

	e.i32(st.Revision)
}

func encodeEntry(e *encoder, ent multi.Entry) {
	e.u16(ent.ItemID)
	e.i16(ent.OffsetX)
	e.i16(ent.OffsetY)
	e.i16(ent.OffsetZ)
	e.i32(ent.Flags)
}

// Decode parses a foundation record of any known format version. The
// version chain falls through so old records pick up defaults for fields
// they predate: style defaults to stone before version 3, the signpost
// graphic before version 4, and versions 1 through 4 carried a default
// price that version 5 folded into the price field.
func Decode(b []byte) (house.Snapshot, error) {
	d := &decoder{buf: b}

	version := d.i32()
	if d.err != nil {
		return house.Snapshot{}, d.err
	}
	if version < 0 || version > FormatVersion {
		return house.Snapshot{}, fmt.Errorf("store: unknown record version %d", version)
	}

	var s house.Snapshot

	s.Serial = d.u32()
	s.Location = house.Point3D{X: int(d.i32()), Y: int(d.i32()), Z: int(d.i32())}
	s.Width = int(d.i32())
	s.Height = int(d.i32())

	if version >= 4 {
		s.SignpostGraphic = int(d.i32())
	} else {
		s.SignpostGraphic = legacySignpostGraphic
	}

	if version >= 3 {
		s.Style = house.Style(d.i32())
	} else {
		s.Style = house.StyleStone
	}

	s.Price = int(d.i32())
	if version >= 1 && version < 5 {
		// Obsolete default price, folded into Price since version 5.
		_ = d.i32()
	}

	s.LastRevision = d.i32()

	s.Current = decodeState(d)
	s.Design = decodeState(d)
	s.Backup = decodeState(d)

	if d.err != nil {
		return house.Snapshot{}, d.err
	}
	return s, nil
}

func decodeState(d *decoder) house.StateSnapshot {
	if v := d.i32(); d.err == nil && v != stateFormatVersion {
		d.err = fmt.Errorf("store: unknown state version %d", v)
		return house.StateSnapshot{}
	}

	width := int(d.i32())
	height := int(d.i32())
	center := multi.Point{X: int(d.i32()), Y: int(d.i32())}

	n := int(d.i32())
	if d.err != nil || n < 0 || n > len(d.buf)/12 {
		if d.err == nil {
			d.err = fmt.Errorf("store: implausible entry count %d", n)
		}
		return house.StateSnapshot{}
	}
	entries := make([]multi.Entry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, decodeEntry(d))
	}

	fn := int(d.i32())
	if d.err != nil || fn < 0 || fn > len(d.buf)/12 {
		if d.err == nil {
			d.err = fmt.Errorf("store: implausible fixture count %d", fn)
		}
		return house.StateSnapshot{}
	}
	var fixtures []multi.Entry
	for i := 0; i < fn; i++ {
		fixtures = append(fixtures, decodeEntry(d))
	}

	return house.StateSnapshot{
		Components: multi.NewFromEntries(width, height, center, entries),
		Fixtures:   fixtures,
		Revision:   d.i32(),
	}
}

func decodeEntry(d *decoder) multi.Entry {
	return multi.Entry{
		ItemID:  d.u16(),
		OffsetX: d.i16(),
		OffsetY: d.i16(),
		OffsetZ: d.i16(),
		Flags:   d.i32(),
	}
}
