package persist

import (
	"encoding/binary"

	"github.com/rcls/gpsfreak/regs"
	"github.com/rcls/gpsfreak/transport"
)

// Message categories a framed blob entry can fall into, used to decide
// what gets preserved verbatim from a prior blob versus rebuilt fresh.
type Category int

const (
	CategoryLMK Category = iota
	CategoryUBX
	CategoryUnknown
)

// categoryOf classifies a frame by its wire code. LMK writes use
// transport.CodeLMKWrite; everything in the 0x10..0x1f range is a GPS
// baud-rate/CFG-VALSET message (the UBX codec itself is an external
// collaborator — this package only needs to recognise and
// preserve those frames, not interpret them).
func categoryOf(code byte) Category {
	switch {
	case code&0x7f == transport.CodeLMKWrite:
		return CategoryLMK
	case code&0x7f >= 0x10 && code&0x7f <= 0x1f:
		return CategoryUBX
	default:
		return CategoryUnknown
	}
}

// DecodeMessages splits body into its sequence of complete framed
// messages.
func DecodeMessages(body []byte) ([]transport.Frame, error) {
	var out []transport.Frame
	for len(body) > 0 {
		f, n, err := transport.DecodeFrame(body)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
		body = body[n:]
	}
	return out, nil
}

// EncodeMessages re-serialises a frame sequence back to bytes.
func EncodeMessages(frames []transport.Frame) ([]byte, error) {
	var out []byte
	for _, f := range frames {
		wire, err := f.Encode()
		if err != nil {
			return nil, err
		}
		out = append(out, wire...)
	}
	return out, nil
}

func filterCategory(frames []transport.Frame, want Category) []transport.Frame {
	var out []transport.Frame
	for _, f := range frames {
		if categoryOf(f.Code) == want {
			out = append(out, f)
		}
	}
	return out
}

// BuildLMKWriteFrame wraps one masked-bytes write range as a framed LMK
// write message: a 2-byte big-endian address prefix followed by the range
// data.
func BuildLMKWriteFrame(address uint16, data []byte) transport.Frame {
	payload := make([]byte, 2+len(data))
	binary.BigEndian.PutUint16(payload, address)
	copy(payload[2:], data)
	return transport.Frame{Code: transport.CodeLMKWrite, Payload: payload}
}

// ResetSoftwareFrame builds the RESET_SW register write used to bracket a
// full LMK configuration replay.
func ResetSoftwareFrame(value byte) transport.Frame {
	return BuildLMKWriteFrame(regs.Registers["RESET_SW"].Base, []byte{value})
}

// MakeConfigInput assembles everything MakeConfig needs to build a new
// blob.
type MakeConfigInput struct {
	Generation uint32

	SaveLMK   bool
	LMKWrites []transport.Frame // pre-built, in write order; RESET_SW framing is the caller's responsibility (it depends on live device state this package has no access to)

	SaveGPS   bool
	GPSWrites []transport.Frame

	// Prior is the previously active blob's full bytes (header through
	// CRC), or nil if there is none.
	Prior []byte
}

// MakeConfig assembles a candidate blob: a fresh header, followed by LMK
// writes (fresh if SaveLMK, else copied verbatim from Prior), GPS writes
// (fresh if SaveGPS, else copied verbatim from Prior), and any
// unrecognised-category messages from Prior preserved for forward
// compatibility. The header's length is patched, a big-endian CRC-32 is
// appended, and the result is 0xff-padded to a 32-byte boundary.
func MakeConfig(in MakeConfigInput) ([]byte, error) {
	var priorFrames []transport.Frame
	if len(in.Prior) > HeaderSize {
		ph, err := DecodeHeader(in.Prior)
		if err != nil {
			return nil, err
		}
		end := ph.Length
		if int(end) > len(in.Prior) {
			end = uint32(len(in.Prior))
		}
		if end > HeaderSize+4 {
			priorFrames, err = DecodeMessages(in.Prior[HeaderSize : end-4])
			if err != nil {
				return nil, err
			}
		}
	}

	var body []transport.Frame
	if in.SaveLMK {
		body = append(body, in.LMKWrites...)
	} else {
		body = append(body, filterCategory(priorFrames, CategoryLMK)...)
	}
	if in.SaveGPS {
		body = append(body, in.GPSWrites...)
	} else {
		body = append(body, filterCategory(priorFrames, CategoryUBX)...)
	}
	body = append(body, filterCategory(priorFrames, CategoryUnknown)...)

	encoded, err := EncodeMessages(body)
	if err != nil {
		return nil, err
	}

	h := Header{Magic: HeaderMagic, Version: HeaderVersion, Generation: in.Generation}
	blob := append(h.Encode(), encoded...)
	h.Length = uint32(len(blob) + 4)
	copy(blob[0:HeaderSize], h.Encode())
	blob = appendCRC(blob)
	return padTo32(blob), nil
}
