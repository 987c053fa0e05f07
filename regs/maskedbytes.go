package regs

import "fmt"

// ImageSize is the size of a chip register image: enough to cover every
// address the static field table ever uses.
const ImageSize = 500

// MaskedBytes overlays a fixed-size byte image with a per-byte "which bits
// have been written" mask, so a caller can build up a sparse set of
// register writes and later flush only the touched bytes.
type MaskedBytes struct {
	Data [ImageSize]byte
	Mask [ImageSize]byte
}

// Insert writes value into the byte image at reg's address range, masked
// to reg.Width bits and shifted by reg.Shift, in big-endian order, OR-ing
// the corresponding bits into Mask.
func (m *MaskedBytes) Insert(reg Register, value uint64) {
	maskBits := widthMask(reg.Width) << uint(reg.Shift)
	composed := readComposed(m.Data[:], reg.Base, reg.Bytes)
	composed = (composed &^ maskBits) | ((value << uint(reg.Shift)) & maskBits)
	writeComposed(m.Data[:], reg.Base, reg.Bytes, composed)

	maskComposed := readComposed(m.Mask[:], reg.Base, reg.Bytes)
	maskComposed |= maskBits
	writeComposed(m.Mask[:], reg.Base, reg.Bytes, maskComposed)
}

// Extract reads back the value last written to reg (undefined for bits
// never inserted).
func (m *MaskedBytes) Extract(reg Register) uint64 {
	composed := readComposed(m.Data[:], reg.Base, reg.Bytes)
	return (composed >> uint(reg.Shift)) & widthMask(reg.Width)
}

// ExtractMask reads the "written-ness" of reg: equals (1<<width)-1 iff
// every bit of reg has been Inserted.
func (m *MaskedBytes) ExtractMask(reg Register) uint64 {
	composed := readComposed(m.Mask[:], reg.Base, reg.Bytes)
	return (composed >> uint(reg.Shift)) & widthMask(reg.Width)
}

// ByteRange is a contiguous run of touched byte indices, [Start, Start+Len).
type ByteRange struct {
	Start, Len int
}

// Ranges enumerates maximal contiguous spans of byte indices for which
// select(Mask[i]) holds, each no longer than maxBlock.
func (m *MaskedBytes) Ranges(select_ func(mask byte) bool, maxBlock int) []ByteRange {
	var out []ByteRange
	i := 0
	for i < ImageSize {
		if !select_(m.Mask[i]) {
			i++
			continue
		}
		start := i
		for i < ImageSize && select_(m.Mask[i]) && i-start < maxBlock {
			i++
		}
		out = append(out, ByteRange{start, i - start})
	}
	return out
}

// Bundle is like Ranges (selecting any touched byte) but returns the byte
// data for each range, filling any byte whose mask isn't fully-written
// (0xff) with the corresponding byte from defaults.
func (m *MaskedBytes) Bundle(maxBlock int, defaults [ImageSize]byte) []struct {
	Addr int
	Data []byte
} {
	ranges := m.Ranges(func(b byte) bool { return b != 0 }, maxBlock)
	out := make([]struct {
		Addr int
		Data []byte
	}, 0, len(ranges))
	for _, r := range ranges {
		data := make([]byte, r.Len)
		for i := 0; i < r.Len; i++ {
			idx := r.Start + i
			if m.Mask[idx] == 0xff {
				data[i] = m.Data[idx]
			} else {
				data[i] = defaults[idx]
			}
		}
		out = append(out, struct {
			Addr int
			Data []byte
		}{r.Start, data})
	}
	return out
}

// NeverWritten reports whether addr is one of the addresses that must
// never be included in a masked-write flush (they hold non-idempotent
// device state).
func NeverWritten(addr int) bool {
	if addr >= 0 && addr <= 11 {
		return true
	}
	return addr == 13 || addr == 14
}

// ReadFunc reads length bytes starting at addr from the live device.
type ReadFunc func(addr int, length int) ([]byte, error)

// CompletePartials back-fills any byte that is partially but not fully
// masked (0 < mask < 0xff) from the live device via read, so a subsequent
// flush never clobbers bits the caller didn't explicitly set. Addresses in
// NeverWritten are skipped entirely rather than read back.
func (m *MaskedBytes) CompletePartials(read ReadFunc) error {
	for i := 0; i < ImageSize; {
		if m.Mask[i] == 0 || m.Mask[i] == 0xff || NeverWritten(i) {
			i++
			continue
		}
		start := i
		for i < ImageSize && m.Mask[i] != 0 && m.Mask[i] != 0xff && !NeverWritten(i) {
			i++
		}
		live, err := read(start, i-start)
		if err != nil {
			return fmt.Errorf("regs: completing partial bytes [%d,%d): %w", start, i, err)
		}
		for j, addr := 0, start; addr < i; j, addr = j+1, addr+1 {
			m.Data[addr] = (m.Data[addr] & m.Mask[addr]) | (live[j] &^ m.Mask[addr])
			m.Mask[addr] = 0xff
		}
	}
	return nil
}

func widthMask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}

func readComposed(data []byte, base uint16, n int) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		v = (v << 8) | uint64(data[int(base)+i])
	}
	return v
}

func writeComposed(data []byte, base uint16, n int, v uint64) {
	for i := n - 1; i >= 0; i-- {
		data[int(base)+i] = byte(v & 0xff)
		v >>= 8
	}
}
