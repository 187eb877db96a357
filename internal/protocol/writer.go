package protocol

// Writer builds a big-endian packet. Variable-length packets carry a 2-byte
// length field right after the opcode which is back-patched on Bytes().
type Writer struct {
	buf     []byte
	lenAt   int // offset of the length field, -1 for fixed-size packets
	patched bool
}

// NewWriter starts a fixed-size packet.
func NewWriter(opcode byte, capacity int) *Writer {
	w := &Writer{buf: make([]byte, 0, capacity), lenAt: -1}
	w.WriteByte(opcode)
	return w
}

// NewVariableWriter starts a variable-length packet: opcode, then a 2-byte
// length placeholder covering the whole packet.
func NewVariableWriter(opcode byte, capacity int) *Writer {
	w := &Writer{buf: make([]byte, 0, capacity)}
	w.WriteByte(opcode)
	w.lenAt = len(w.buf)
	w.WriteUint16(0)
	return w
}

func (w *Writer) WriteByte(v byte) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteUint16(v uint16) {
	w.buf = append(w.buf, byte(v>>8), byte(v))
}

func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

func (w *Writer) WriteUint32(v uint32) {
	w.buf = append(w.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) Write(b []byte) {
	w.buf = append(w.buf, b...)
}

// Len is the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// PatchUint16 overwrites a previously written 16-bit field.
func (w *Writer) PatchUint16(offset int, v uint16) {
	w.buf[offset] = byte(v >> 8)
	w.buf[offset+1] = byte(v)
}

// PatchByte overwrites a previously written byte.
func (w *Writer) PatchByte(offset int, v byte) {
	w.buf[offset] = v
}

// Bytes finalizes the packet, patching the length field if present.
func (w *Writer) Bytes() []byte {
	if w.lenAt >= 0 && !w.patched {
		w.PatchUint16(w.lenAt, uint16(len(w.buf)))
		w.patched = true
	}
	return w.buf
}
