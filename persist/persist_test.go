package persist

import (
	"context"
	"testing"

	"github.com/rcls/gpsfreak/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport is an in-memory transport.Transport backed by a flat byte
// array, standing in for flash, used only by this package's tests.
type fakeTransport struct {
	mem [0x08020000 - 0x0800c000 + 0x10000]byte
}

func newFakeTransport() *fakeTransport {
	ft := &fakeTransport{}
	for i := range ft.mem {
		ft.mem[i] = 0xff
	}
	return ft
}

func (f *fakeTransport) offset(addr uint32) uint32 { return addr - 0x0800c000 }

func (f *fakeTransport) LMKWrite(ctx context.Context, address uint16, data []byte) error {
	return nil
}
func (f *fakeTransport) LMKRead(ctx context.Context, address uint16, length uint8) ([]byte, error) {
	return nil, nil
}
func (f *fakeTransport) Peek(ctx context.Context, address uint32, length uint32) ([]byte, error) {
	off := f.offset(address)
	return append([]byte(nil), f.mem[off:off+length]...), nil
}
func (f *fakeTransport) Poke(ctx context.Context, address uint32, data []byte) error {
	off := f.offset(address)
	copy(f.mem[off:], data)
	return nil
}
func (f *fakeTransport) FlashErase(ctx context.Context, address uint32) error {
	off := f.offset(address)
	for i := uint32(0); i < SlotSize; i++ {
		f.mem[off+i] = 0xff
	}
	return nil
}
func (f *fakeTransport) CRC(ctx context.Context, address uint32, length uint32) (uint32, error) {
	data, _ := f.Peek(ctx, address, length)
	return transport.CRC32(data), nil
}

func TestEmptySlotDetection(t *testing.T) {
	ft := newFakeTransport()
	headers, err := GetHeaders(context.Background(), ft)
	require.NoError(t, err)
	assert.Len(t, headers, 16)
	for _, h := range headers {
		assert.False(t, h.Valid())
	}
}

func TestMakeWriteReadRoundTrip(t *testing.T) {
	ft := newFakeTransport()
	ctx := context.Background()

	lmk := []transport.Frame{BuildLMKWriteFrame(20, []byte{1, 2, 3})}
	blob, err := MakeConfig(MakeConfigInput{Generation: 1, SaveLMK: true, LMKWrites: lmk, SaveGPS: false})
	require.NoError(t, err)

	require.NoError(t, WriteConfig(ctx, ft, nil, blob))

	headers, err := GetHeaders(ctx, ft)
	require.NoError(t, err)
	active, ok, err := ActiveHeader(ctx, ft, headers)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(1), active.Generation)

	readBack, err := ReadBlob(ctx, ft, active)
	require.NoError(t, err)
	assert.Equal(t, blob[:active.Length], readBack)
}

func TestCompareConfigIdentical(t *testing.T) {
	blob, err := MakeConfig(MakeConfigInput{Generation: 1, SaveLMK: true,
		LMKWrites: []transport.Frame{BuildLMKWriteFrame(20, []byte{9})}})
	require.NoError(t, err)

	same, err := CompareConfig(blob, blob)
	require.NoError(t, err)
	assert.True(t, same)
}

func TestCompareConfigDiffers(t *testing.T) {
	a, err := MakeConfig(MakeConfigInput{Generation: 1, SaveLMK: true,
		LMKWrites: []transport.Frame{BuildLMKWriteFrame(20, []byte{9})}})
	require.NoError(t, err)
	b, err := MakeConfig(MakeConfigInput{Generation: 1, SaveLMK: true,
		LMKWrites: []transport.Frame{BuildLMKWriteFrame(20, []byte{10})}})
	require.NoError(t, err)

	same, err := CompareConfig(a, b)
	require.NoError(t, err)
	assert.False(t, same)
}

func TestPriorCategoriesPreserved(t *testing.T) {
	prior, err := MakeConfig(MakeConfigInput{
		Generation: 1, SaveLMK: true, SaveGPS: true,
		LMKWrites: []transport.Frame{BuildLMKWriteFrame(20, []byte{1})},
		GPSWrites: []transport.Frame{{Code: 0x10, Payload: []byte{7}}},
	})
	require.NoError(t, err)

	next, err := MakeConfig(MakeConfigInput{
		Generation: 2, SaveLMK: true, SaveGPS: false,
		LMKWrites: []transport.Frame{BuildLMKWriteFrame(20, []byte{2})},
		Prior:     prior,
	})
	require.NoError(t, err)

	h, err := DecodeHeader(next)
	require.NoError(t, err)
	msgs, err := DecodeMessages(next[HeaderSize : h.Length-4])
	require.NoError(t, err)

	var sawUBX bool
	for _, m := range msgs {
		if categoryOf(m.Code) == CategoryUBX {
			sawUBX = true
		}
	}
	assert.True(t, sawUBX, "GPS messages from the prior blob should be preserved when SaveGPS is false")
}
