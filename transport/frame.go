package transport

import (
	"encoding/binary"
	"fmt"
)

// FrameMagic is the two-byte magic that opens every wire frame.
const FrameMagic = 0xce93

// AckBit, set in a response frame's code byte, marks it as an
// acknowledgement of the request with the same code (bit 7 cleared).
const AckBit = 0x80

// Frame is one CE93-framed transport message: a one-byte code, a payload,
// and a trailing CRC-16/CCITT computed over magic+code+length+payload.
type Frame struct {
	Code    byte
	Payload []byte
}

// Encode serialises f to wire bytes: magic, code, length, payload, then a
// big-endian CRC-16/CCITT over everything preceding it.
func (f Frame) Encode() ([]byte, error) {
	if len(f.Payload) > 255 {
		return nil, fmt.Errorf("transport: payload too long (%d bytes)", len(f.Payload))
	}
	buf := make([]byte, 0, 5+len(f.Payload))
	buf = binary.BigEndian.AppendUint16(buf, FrameMagic)
	buf = append(buf, f.Code, byte(len(f.Payload)))
	buf = append(buf, f.Payload...)
	crc := CRC16(buf)
	buf = binary.BigEndian.AppendUint16(buf, crc)
	return buf, nil
}

// DecodeFrame parses one frame from the front of data, returning the frame
// and the number of bytes consumed. Returns an error if data does not yet
// contain a complete, CRC-valid frame.
func DecodeFrame(data []byte) (Frame, int, error) {
	if len(data) < 4 {
		return Frame{}, 0, fmt.Errorf("transport: short frame header")
	}
	if binary.BigEndian.Uint16(data[0:2]) != FrameMagic {
		return Frame{}, 0, fmt.Errorf("transport: bad frame magic")
	}
	code := data[2]
	length := int(data[3])
	total := 4 + length + 2
	if len(data) < total {
		return Frame{}, 0, fmt.Errorf("transport: incomplete frame body")
	}
	gotCRC := binary.BigEndian.Uint16(data[4+length : total])
	wantCRC := CRC16(data[:4+length])
	if gotCRC != wantCRC {
		return Frame{}, 0, fmt.Errorf("transport: frame CRC mismatch")
	}
	payload := make([]byte, length)
	copy(payload, data[4:4+length])
	return Frame{Code: code, Payload: payload}, total, nil
}

// IsAck reports whether code has the acknowledgement bit set.
func IsAck(code byte) bool { return code&AckBit != 0 }
