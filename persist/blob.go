// Package persist reads, compares, and writes generation-numbered
// configuration blobs to one of sixteen fixed flash slots, via the
// transport capability (it performs no I/O of its own; every function here
// that touches flash takes a transport.Transport explicitly).
package persist

import (
	"encoding/binary"
	"fmt"

	"github.com/rcls/gpsfreak/transport"
)

const (
	// HeaderMagic opens every config blob.
	HeaderMagic = 0x4b72a6ce
	// HeaderVersion is the only blob format version this package writes
	// or accepts.
	HeaderVersion = 1
	// HeaderSize is the length of the little-endian blob header.
	HeaderSize = 16
	// SlotSize is the size of one flash slot.
	SlotSize = 2048
	// PadByte right-pads a blob to a 32-byte boundary.
	PadByte = 0xff
	// PadBoundary is the alignment every written blob is padded to.
	PadBoundary = 32

	// VerifyMagicCRC32 is the CRC-32 of an all-0xff blob of SlotSize bytes,
	// i.e. the CRC an empty slot must report.
	VerifyMagicCRC32 = 0xfe8baafc
	// CRCCheckMagic is the value a blob's CRC-32, computed including its
	// own trailing CRC field, must equal when it verifies.
	CRCCheckMagic = 0x38fb2284
)

// Bank A and B's flash address ranges; sixteen 2KiB slots total.
var (
	BankAStart = uint32(0x0800c000)
	BankAEnd   = uint32(0x08010000)
	BankBStart = uint32(0x0801c000)
	BankBEnd   = uint32(0x08020000)
)

// Slots returns the addresses of all sixteen flash slots in address order.
func Slots() []uint32 {
	var out []uint32
	for a := BankAStart; a < BankAEnd; a += SlotSize {
		out = append(out, a)
	}
	for a := BankBStart; a < BankBEnd; a += SlotSize {
		out = append(out, a)
	}
	return out
}

// Bank reports which bank (0 or 1) a slot address falls in.
func Bank(addr uint32) int {
	if addr >= BankAStart && addr < BankAEnd {
		return 0
	}
	return 1
}

// Header is the 16-byte little-endian prefix of every config blob.
type Header struct {
	Magic      uint32
	Version    uint32
	Generation uint32
	Length     uint32
}

// SlotHeader is a Header read back from a specific flash slot.
type SlotHeader struct {
	Header
	Address uint32
}

// DecodeHeader parses the first HeaderSize bytes of data.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("persist: short header (%d bytes)", len(data))
	}
	return Header{
		Magic:      binary.LittleEndian.Uint32(data[0:4]),
		Version:    binary.LittleEndian.Uint32(data[4:8]),
		Generation: binary.LittleEndian.Uint32(data[8:12]),
		Length:     binary.LittleEndian.Uint32(data[12:16]),
	}, nil
}

// Encode serialises h as the 16-byte little-endian header.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.Generation)
	binary.LittleEndian.PutUint32(buf[12:16], h.Length)
	return buf
}

// Valid reports whether h looks like a real header (right magic/version,
// plausible length), independent of whether its CRC verifies.
func (h Header) Valid() bool {
	return h.Magic == HeaderMagic && h.Version == HeaderVersion &&
		h.Length >= 20 && h.Length <= SlotSize
}

// verifyBlobCRC reports whether the big-endian CRC-32 in the last four
// bytes of blob (the whole blob from its header through the trailing CRC)
// reproduces CRCCheckMagic when computed over the whole slice including
// that trailing CRC.
func verifyBlobCRC(blob []byte) bool {
	if len(blob) < 4 {
		return false
	}
	return transport.CRC32(blob) == CRCCheckMagic
}

// appendCRC appends the big-endian CRC-32 of blob to itself.
func appendCRC(blob []byte) []byte {
	crc := transport.CRC32(blob)
	out := append(blob, byte(crc>>24), byte(crc>>16), byte(crc>>8), byte(crc))
	return out
}

// padTo32 right-pads data with 0xff to the next PadBoundary-byte boundary.
func padTo32(data []byte) []byte {
	rem := len(data) % PadBoundary
	if rem == 0 {
		return data
	}
	pad := make([]byte, PadBoundary-rem)
	for i := range pad {
		pad[i] = PadByte
	}
	return append(data, pad...)
}
