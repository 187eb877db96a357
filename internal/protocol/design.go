package protocol

import (
	"bytes"
	"log"

	"github.com/klauspost/compress/zlib"

	"housecraft/internal/sim/multi"
)

// Outbound opcodes.
const (
	OpExtended      = 0xBF
	OpDesignDetails = 0xD8
)

// 0xBF extended subtypes.
const (
	ExtCustomize     = 0x20
	ExtDesignGeneral = 0x1D
)

// Customization mode bytes inside the ExtCustomize packet.
const (
	customizeBegin = 0x04
	customizeEnd   = 0x05
)

// MaxItemsPerStairBuffer bounds one stair side-channel chunk of the
// detailed design packet.
const MaxItemsPerStairBuffer = 750

const planeBufferSize = 0x400

// BeginCustomization is the fixed 17-byte packet that switches the client
// into house design mode.
func BeginCustomization(serial uint32) []byte {
	return customization(serial, customizeBegin)
}

// EndCustomization switches the client back out of design mode.
func EndCustomization(serial uint32) []byte {
	return customization(serial, customizeEnd)
}

func customization(serial uint32, mode byte) []byte {
	w := NewVariableWriter(OpExtended, 17)
	w.WriteUint16(ExtCustomize)
	w.WriteUint32(serial)
	w.WriteByte(mode)
	w.WriteUint16(0x0000)
	w.WriteUint16(0xFFFF)
	w.WriteUint16(0xFFFF)
	w.WriteByte(0xFF)
	return w.Bytes()
}

// DesignGeneral carries a structure's serial and current design revision;
// clients compare the revision against their cache and query details on
// mismatch.
func DesignGeneral(serial uint32, revision int32) []byte {
	w := NewVariableWriter(OpExtended, 13)
	w.WriteUint16(ExtDesignGeneral)
	w.WriteUint32(serial)
	w.WriteInt32(revision)
	return w.Bytes()
}

// DesignDetails serializes a tile set into the legacy compressed
// multi-plane 0xD8 packet. Tiles bucket by elevation into up to nine
// planes (ground, four floor levels, four wall levels); anything at an odd
// elevation, or whose packed index would overflow the 1024-byte working
// buffer, spills into 5-byte stair records chunked at 750 per buffer. Each
// used plane is deflated independently. The layout is byte-for-byte what
// the legacy client expects; a failed deflate degrades that plane to empty
// content rather than aborting the packet.
func DesignDetails(serial uint32, revision int32, xMin, yMin, xMax, yMax int,
	tiles []multi.Entry, isFloor func(uint16) bool, logger *log.Logger) []byte {

	w := NewVariableWriter(OpDesignDetails, 17+len(tiles)*5)
	w.WriteByte(0x03) // compression type
	w.WriteByte(0x00)
	w.WriteUint32(serial)
	w.WriteInt32(revision)
	w.WriteInt16(int16(len(tiles)))
	lengthAt := w.Len()
	w.WriteInt16(0) // buffer length, patched below
	planeCountAt := w.Len()
	w.WriteByte(0) // plane count, patched below

	totalLength := 1 // includes the plane count byte

	width := xMax - xMin + 1
	height := yMax - yMin + 1

	planeBuffers := make([][]byte, 9)
	planeUsed := make([]bool, 9)
	for i := range planeBuffers {
		planeBuffers[i] = make([]byte, planeBufferSize)
	}

	stairBuffers := make([][]byte, 6)
	for i := range stairBuffers {
		stairBuffers[i] = make([]byte, MaxItemsPerStairBuffer*5)
	}
	totalStairsUsed := 0

	putStair := func(e multi.Entry) {
		buf := stairBuffers[totalStairsUsed/MaxItemsPerStairBuffer]
		at := totalStairsUsed % MaxItemsPerStairBuffer * 5
		buf[at] = byte(e.ItemID >> 8)
		buf[at+1] = byte(e.ItemID)
		buf[at+2] = byte(e.OffsetX)
		buf[at+3] = byte(e.OffsetY)
		buf[at+4] = byte(e.OffsetZ)
		totalStairsUsed++
	}

	for _, e := range tiles {
		x := int(e.OffsetX) - xMin
		y := int(e.OffsetY) - yMin

		var plane int
		switch e.OffsetZ {
		case 0:
			plane = 0
		case 7:
			plane = 1
		case 27:
			plane = 2
		case 47:
			plane = 3
		case 67:
			plane = 4
		default:
			putStair(e)
			continue
		}

		var size int
		switch {
		case plane == 0:
			size = height
		case isFloor(e.ItemID):
			size = height - 2
			x--
			y--
		default:
			size = height - 1
			plane += 4
		}

		index := (x*size + y) * 2
		if x < 0 || y < 0 || y >= size || index+1 >= planeBufferSize {
			putStair(e)
			continue
		}

		planeUsed[plane] = true
		planeBuffers[plane][index] = byte(e.ItemID >> 8)
		planeBuffers[plane][index+1] = byte(e.ItemID)
	}

	planeCount := 0

	emit := func(marker byte, raw []byte) {
		size := len(raw)
		deflated, err := deflate(raw)
		if err != nil {
			if logger != nil {
				logger.Printf("deflate error: %v", err)
			}
			deflated = nil
			size = 0
		}
		w.WriteByte(marker)
		w.WriteByte(byte(size))
		w.WriteByte(byte(len(deflated)))
		w.WriteByte(byte(size>>4&0xF0 | len(deflated)>>8&0xF))
		w.Write(deflated)
		totalLength += 4 + len(deflated)
	}

	for i := range planeBuffers {
		if !planeUsed[i] {
			continue
		}
		planeCount++

		var size int
		switch {
		case i == 0:
			size = width * height * 2
		case i < 5:
			size = (width - 1) * (height - 2) * 2
		default:
			size = width * (height - 1) * 2
		}
		if size > planeBufferSize {
			size = planeBufferSize
		}
		emit(byte(0x20|i), planeBuffers[i][:size])
	}

	stairBuffersUsed := (totalStairsUsed + MaxItemsPerStairBuffer - 1) / MaxItemsPerStairBuffer
	for i := 0; i < stairBuffersUsed; i++ {
		planeCount++

		count := totalStairsUsed - i*MaxItemsPerStairBuffer
		if count > MaxItemsPerStairBuffer {
			count = MaxItemsPerStairBuffer
		}
		emit(byte(9+i), stairBuffers[i][:count*5])
	}

	w.PatchUint16(lengthAt, uint16(totalLength))
	w.PatchByte(planeCountAt, byte(planeCount))
	return w.Bytes()
}

func deflate(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
