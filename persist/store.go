package persist

import (
	"context"
	"sort"

	"github.com/rcls/gpsfreak/transport"
)

// GetHeaders reads the 16-byte header of every flash slot.
func GetHeaders(ctx context.Context, t transport.Transport) ([]SlotHeader, error) {
	addrs := Slots()
	out := make([]SlotHeader, 0, len(addrs))
	for _, addr := range addrs {
		raw, err := t.Peek(ctx, addr, HeaderSize)
		if err != nil {
			return nil, err
		}
		h, err := DecodeHeader(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, SlotHeader{Header: h, Address: addr})
	}
	return out, nil
}

// ActiveHeader sorts valid headers by (generation, address) ascending and
// returns the last whose full-length CRC-32 verifies, or false if none do.
func ActiveHeader(ctx context.Context, t transport.Transport, headers []SlotHeader) (SlotHeader, bool, error) {
	candidates := make([]SlotHeader, 0, len(headers))
	for _, h := range headers {
		if h.Valid() {
			candidates = append(candidates, h)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Generation != candidates[j].Generation {
			return candidates[i].Generation < candidates[j].Generation
		}
		return candidates[i].Address < candidates[j].Address
	})

	for i := len(candidates) - 1; i >= 0; i-- {
		h := candidates[i]
		blob, err := t.Peek(ctx, h.Address, h.Length)
		if err != nil {
			return SlotHeader{}, false, err
		}
		if verifyBlobCRC(blob) {
			return h, true, nil
		}
	}
	return SlotHeader{}, false, nil
}

// ReadBlob reads the full blob (header through trailing CRC) for a slot.
func ReadBlob(ctx context.Context, t transport.Transport, h SlotHeader) ([]byte, error) {
	return t.Peek(ctx, h.Address, h.Length)
}

// NextHeader picks the slot to write the next generation into: the first
// "empty" slot (header and body all 0xff, CRC equal to VerifyMagicCRC32),
// preferring slots in the same bank as current when current is in bank 1;
// if no empty slot exists in the preferred group, erases one flash sector
// and returns its first slot.
func NextHeader(ctx context.Context, t transport.Transport, current *SlotHeader) (uint32, error) {
	order := Slots()
	if current != nil && Bank(current.Address) == 1 {
		order = reorderPreferBank(order, 1)
	}

	for _, addr := range order {
		blob, err := t.Peek(ctx, addr, SlotSize)
		if err != nil {
			return 0, err
		}
		if isEmptySlot(blob) {
			return addr, nil
		}
	}

	// No empty slot: erase the first slot of the preferred group and use it.
	target := order[0]
	if err := t.FlashErase(ctx, target); err != nil {
		return 0, err
	}
	return target, nil
}

func isEmptySlot(blob []byte) bool {
	if len(blob) != SlotSize {
		return false
	}
	for _, b := range blob {
		if b != 0xff {
			return false
		}
	}
	return transport.CRC32(blob) == VerifyMagicCRC32
}

func reorderPreferBank(addrs []uint32, bank int) []uint32 {
	var preferred, rest []uint32
	for _, a := range addrs {
		if Bank(a) == bank {
			preferred = append(preferred, a)
		} else {
			rest = append(rest, a)
		}
	}
	return append(preferred, rest...)
}

// WriteConfig writes blob to the slot named by NextHeader, chunked at 32
// bytes per request.
func WriteConfig(ctx context.Context, t transport.Transport, current *SlotHeader, blob []byte) error {
	addr, err := NextHeader(ctx, t, current)
	if err != nil {
		return err
	}
	for off := 0; off < len(blob); off += 32 {
		end := off + 32
		if end > len(blob) {
			end = len(blob)
		}
		if err := t.Poke(ctx, addr+uint32(off), blob[off:end]); err != nil {
			return err
		}
	}
	return nil
}
