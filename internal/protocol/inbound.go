package protocol

import "fmt"

// Inbound opcodes.
const (
	OpEncodedCommand = 0xD7
)

// 0xBF extended inbound subtypes.
const ExtQueryDesignDetails = 0x1E

// Encoded designer sub-commands carried in 0xD7 packets.
const (
	CmdBackup     = 0x02
	CmdRestore    = 0x03
	CmdCommit     = 0x04
	CmdDelete     = 0x05
	CmdBuild      = 0x06
	CmdClose      = 0x0C
	CmdStairs     = 0x0D
	CmdSync       = 0x0E
	CmdClear      = 0x10
	CmdLevel      = 0x12
	CmdRoof       = 0x13
	CmdRoofDelete = 0x14
	CmdRevert     = 0x1A
)

// QueryDesignDetails asks for the full compressed state of one structure.
type QueryDesignDetails struct {
	Serial uint32
}

// EncodedCommand is one designer edit operation. Fields beyond what the
// sub-command consumes are zero.
type EncodedCommand struct {
	Serial  uint32
	Command uint16
	Args    *Reader
}

// DecodeInbound parses one framed inbound packet (opcode byte, 2-byte
// length, payload) into a typed message. Unknown opcodes and subtypes are
// an error; the transport drops them.
func DecodeInbound(b []byte) (any, error) {
	if len(b) < 3 {
		return nil, ErrShortPacket
	}
	opcode := b[0]
	length := int(b[1])<<8 | int(b[2])
	if length != len(b) {
		return nil, fmt.Errorf("protocol: framed length %d != packet length %d", length, len(b))
	}
	r := NewReader(b[3:])

	switch opcode {
	case OpExtended:
		sub := r.ReadUint16()
		if sub != ExtQueryDesignDetails {
			return nil, fmt.Errorf("protocol: unknown extended subtype %#x", sub)
		}
		q := QueryDesignDetails{Serial: r.ReadUint32()}
		if err := r.Err(); err != nil {
			return nil, err
		}
		return q, nil

	case OpEncodedCommand:
		c := EncodedCommand{
			Serial:  r.ReadUint32(),
			Command: r.ReadUint16(),
		}
		if err := r.Err(); err != nil {
			return nil, err
		}
		c.Args = r
		return c, nil

	default:
		return nil, fmt.Errorf("protocol: unknown opcode %#x", opcode)
	}
}
