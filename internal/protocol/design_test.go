package protocol

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/zlib"

	"housecraft/internal/sim/multi"
)

func TestBeginEndCustomization_Layout(t *testing.T) {
	p := BeginCustomization(0x40000001)

	if len(p) != 17 {
		t.Fatalf("packet length: got %d want 17", len(p))
	}
	want := []byte{
		0xBF, 0x00, 0x11,
		0x00, 0x20,
		0x40, 0x00, 0x00, 0x01,
		0x04,
		0x00, 0x00,
		0xFF, 0xFF,
		0xFF, 0xFF,
		0xFF,
	}
	if !bytes.Equal(p, want) {
		t.Fatalf("begin packet:\n got %x\nwant %x", p, want)
	}

	e := EndCustomization(0x40000001)
	if len(e) != 17 || e[9] != 0x05 {
		t.Fatalf("end packet mode byte: got %#x want 0x05", e[9])
	}
}

func TestDesignGeneral_Layout(t *testing.T) {
	p := DesignGeneral(0x40000002, 9)

	want := []byte{
		0xBF, 0x00, 0x0D,
		0x00, 0x1D,
		0x40, 0x00, 0x00, 0x02,
		0x00, 0x00, 0x00, 0x09,
	}
	if !bytes.Equal(p, want) {
		t.Fatalf("general packet:\n got %x\nwant %x", p, want)
	}
}

func inflate(t *testing.T, b []byte, rawSize int) []byte {
	t.Helper()
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("zlib reader: %v", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	if len(out) != rawSize {
		t.Fatalf("inflated size: got %d want %d", len(out), rawSize)
	}
	return out
}

// One ground tile, one floor tile at z=7 and one tile at an odd elevation
// must produce exactly plane 0, plane 1 and a single stair chunk.
func TestDesignDetails_PlaneSplit(t *testing.T) {
	tiles := []multi.Entry{
		{ItemID: 0x0063, OffsetX: -3, OffsetY: -3, OffsetZ: 0},
		{ItemID: 0x31F4, OffsetX: 0, OffsetY: 0, OffsetZ: 7},
		{ItemID: 0x0751, OffsetX: 1, OffsetY: 2, OffsetZ: 12},
	}
	isFloor := func(id uint16) bool { return id != 0x0063 }

	p := DesignDetails(0x40000003, 5, -3, -3, 3, 4, tiles, isFloor, nil)

	if p[0] != 0xD8 {
		t.Fatalf("opcode: got %#x", p[0])
	}
	if got := int(p[1])<<8 | int(p[2]); got != len(p) {
		t.Fatalf("framed length: got %d want %d", got, len(p))
	}
	if p[3] != 0x03 {
		t.Fatalf("compression type: got %#x want 0x03", p[3])
	}
	if got := int(int16(uint16(p[13])<<8 | uint16(p[14]))); got != 3 {
		t.Fatalf("tile count: got %d want 3", got)
	}
	if planes := int(p[17]); planes != 3 {
		t.Fatalf("plane count: got %d want 3", planes)
	}

	width, height := 7, 8

	// Walk the plane records.
	at := 18
	readRecord := func() (marker byte, raw []byte) {
		t.Helper()
		marker = p[at]
		size := int(p[at+1]) | int(p[at+3]&0xF0)<<4
		deflated := int(p[at+2]) | int(p[at+3]&0x0F)<<8
		body := p[at+4 : at+4+deflated]
		at += 4 + deflated
		return marker, inflate(t, body, size)
	}

	marker, raw := readRecord()
	if marker != 0x20 {
		t.Fatalf("first record marker: got %#x want 0x20", marker)
	}
	if len(raw) != width*height*2 {
		t.Fatalf("plane 0 size: got %d", len(raw))
	}
	// Ground tile at local (0,0) -> index 0.
	if got := uint16(raw[0])<<8 | uint16(raw[1]); got != 0x0063 {
		t.Fatalf("plane 0 cell: got %#x want 0x63", got)
	}

	marker, raw = readRecord()
	if marker != 0x21 {
		t.Fatalf("second record marker: got %#x want 0x21", marker)
	}
	size := height - 2
	if len(raw) != (width-1)*size*2 {
		t.Fatalf("plane 1 size: got %d", len(raw))
	}
	// Floor tile at offset (0,0): local (3,3) shifted by -1 -> (2,2).
	idx := (2*size + 2) * 2
	if got := uint16(raw[idx])<<8 | uint16(raw[idx+1]); got != 0x31F4 {
		t.Fatalf("plane 1 cell: got %#x want 0x31f4", got)
	}

	marker, raw = readRecord()
	if marker != 9 {
		t.Fatalf("stair record marker: got %d want 9", marker)
	}
	want := []byte{0x07, 0x51, 0x01, 0x02, 0x0C}
	if !bytes.Equal(raw, want) {
		t.Fatalf("stair record: got %x want %x", raw, want)
	}

	if at != len(p) {
		t.Fatalf("trailing bytes after last record: %d", len(p)-at)
	}

	// Back-patched buffer length covers records plus the plane count byte.
	if got := int(uint16(p[15])<<8 | uint16(p[16])); got != at-18+1 {
		t.Fatalf("buffer length: got %d want %d", got, at-18+1)
	}
}

func TestDesignDetails_OverflowFallsBackToStairs(t *testing.T) {
	// A wall tile far outside the plane bounds must spill to the stair
	// side-channel instead of corrupting a plane buffer.
	tiles := []multi.Entry{
		{ItemID: 0x0063, OffsetX: 100, OffsetY: 100, OffsetZ: 7},
	}
	p := DesignDetails(1, 1, -3, -3, 3, 3, tiles, func(uint16) bool { return false }, nil)
	if planes := int(p[17]); planes != 1 {
		t.Fatalf("plane count: got %d want 1 (single stair chunk)", planes)
	}
	if p[18] != 9 {
		t.Fatalf("marker: got %d want 9", p[18])
	}
}

func TestDecodeInbound(t *testing.T) {
	// Query design details.
	q := []byte{0xBF, 0x00, 0x09, 0x00, 0x1E, 0x40, 0x00, 0x00, 0x07}
	m, err := DecodeInbound(q)
	if err != nil {
		t.Fatalf("DecodeInbound: %v", err)
	}
	qd, ok := m.(QueryDesignDetails)
	if !ok || qd.Serial != 0x40000007 {
		t.Fatalf("query decode: %+v", m)
	}

	// Encoded build command: serial, sub-command, three int32 args.
	w := NewVariableWriter(0xD7, 32)
	w.WriteUint32(0x40000007)
	w.WriteUint16(CmdBuild)
	w.WriteInt32(0x3EE)
	w.WriteInt32(2)
	w.WriteInt32(3)
	m, err = DecodeInbound(w.Bytes())
	if err != nil {
		t.Fatalf("DecodeInbound encoded: %v", err)
	}
	ec, ok := m.(EncodedCommand)
	if !ok || ec.Command != CmdBuild {
		t.Fatalf("encoded decode: %+v", m)
	}
	if id := ec.Args.ReadInt32(); id != 0x3EE {
		t.Fatalf("arg 1: got %#x", id)
	}
	if x, y := ec.Args.ReadInt32(), ec.Args.ReadInt32(); x != 2 || y != 3 {
		t.Fatalf("args: got (%d,%d)", x, y)
	}
	if ec.Args.Err() != nil {
		t.Fatalf("args err: %v", ec.Args.Err())
	}

	// Truncated packet.
	if _, err := DecodeInbound([]byte{0xBF, 0x00}); err == nil {
		t.Fatalf("expected error for truncated packet")
	}
}
