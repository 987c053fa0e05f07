package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/rcls/gpsfreak/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDevice answers exactly one framed request on master with a canned
// response frame, standing in for the instrument's firmware.
func fakeDevice(master *os.File, respond func(req transport.Frame) transport.Frame) {
	go func() {
		buf := make([]byte, 0, 64)
		one := make([]byte, 1)
		for {
			n, err := master.Read(one)
			if err != nil {
				return
			}
			if n != 1 {
				continue
			}
			buf = append(buf, one[0])
			req, _, derr := transport.DecodeFrame(buf)
			if derr != nil {
				continue
			}
			resp := respond(req)
			wire, err := resp.Encode()
			if err != nil {
				return
			}
			master.Write(wire)
			return
		}
	}()
}

func TestSerialTransportLMKWriteRoundTrip(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	defer master.Close()

	var gotAddress uint16
	var gotData []byte
	fakeDevice(master, func(req transport.Frame) transport.Frame {
		gotAddress = uint16(req.Payload[0])<<8 | uint16(req.Payload[1])
		gotData = append([]byte(nil), req.Payload[2:]...)
		return transport.Frame{Code: transport.CodeLMKWrite | transport.AckBit}
	})

	st, err := openSerial(slave.Name(), time.Second)
	require.NoError(t, err)
	defer st.Close()

	err = st.LMKWrite(context.Background(), 20, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, uint16(20), gotAddress)
	assert.Equal(t, []byte{1, 2, 3}, gotData)
}

func TestSerialTransportCRCRoundTrip(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	defer master.Close()

	fakeDevice(master, func(req transport.Frame) transport.Frame {
		return transport.Frame{Code: transport.CodeCRC | transport.AckBit, Payload: encodeU32(0xdeadbeef)}
	})

	st, err := openSerial(slave.Name(), time.Second)
	require.NoError(t, err)
	defer st.Close()

	crc, err := st.CRC(context.Background(), 0, 100)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), crc)
}

func TestSerialTransportTimesOutWithNoResponse(t *testing.T) {
	_, slave, err := pty.Open()
	require.NoError(t, err)

	st, err := openSerial(slave.Name(), 50*time.Millisecond)
	require.NoError(t, err)
	defer st.Close()

	_, err = st.LMKRead(context.Background(), 0, 4)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
