package protocol

import "errors"

// ErrShortPacket reports a read past the end of an inbound payload.
var ErrShortPacket = errors.New("protocol: short packet")

// Reader consumes a big-endian inbound payload. Reads past the end return
// zero values and latch an error, so handlers can decode unconditionally
// and check once.
type Reader struct {
	buf []byte
	pos int
	err error
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

func (r *Reader) Err() error   { return r.err }
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) ReadByte() byte {
	if r.pos+1 > len(r.buf) {
		r.err = ErrShortPacket
		return 0
	}
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *Reader) ReadUint16() uint16 {
	if r.pos+2 > len(r.buf) {
		r.err = ErrShortPacket
		return 0
	}
	v := uint16(r.buf[r.pos])<<8 | uint16(r.buf[r.pos+1])
	r.pos += 2
	return v
}

func (r *Reader) ReadUint32() uint32 {
	if r.pos+4 > len(r.buf) {
		r.err = ErrShortPacket
		return 0
	}
	v := uint32(r.buf[r.pos])<<24 | uint32(r.buf[r.pos+1])<<16 |
		uint32(r.buf[r.pos+2])<<8 | uint32(r.buf[r.pos+3])
	r.pos += 4
	return v
}

func (r *Reader) ReadInt32() int32 {
	return int32(r.ReadUint32())
}
