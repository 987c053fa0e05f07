package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Property 5: CRC constants.
func TestCRC16KnownVector(t *testing.T) {
	assert.Equal(t, uint16(0x31C3), CRC16([]byte("123456789")))
}

func TestCRC32KnownVectors(t *testing.T) {
	blank := make([]byte, 2048)
	for i := range blank {
		blank[i] = 0xff
	}
	assert.Equal(t, uint32(0xfe8baafc), CRC32(blank))
}

func TestFrameRoundTrip(t *testing.T) {
	f := Frame{Code: CodeLMKWrite, Payload: []byte{1, 2, 3, 4}}
	wire, err := f.Encode()
	require.NoError(t, err)

	got, n, err := DecodeFrame(wire)
	require.NoError(t, err)
	assert.Equal(t, len(wire), n)
	assert.Equal(t, f.Code, got.Code)
	assert.Equal(t, f.Payload, got.Payload)
}

func TestFrameRejectsBadCRC(t *testing.T) {
	f := Frame{Code: CodeLMKWrite, Payload: []byte{1, 2, 3}}
	wire, err := f.Encode()
	require.NoError(t, err)
	wire[len(wire)-1] ^= 0xff

	_, _, err = DecodeFrame(wire)
	assert.Error(t, err)
}

func TestFrameTooLong(t *testing.T) {
	f := Frame{Code: CodeLMKWrite, Payload: make([]byte, 256)}
	_, err := f.Encode()
	assert.Error(t, err)
}

func TestIsAck(t *testing.T) {
	assert.True(t, IsAck(CodeLMKWrite|AckBit))
	assert.False(t, IsAck(CodeLMKWrite))
}
