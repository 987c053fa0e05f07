package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/term"
	"github.com/rcls/gpsfreak/transport"
	"golang.org/x/sys/unix"
)

// serialBaud is the line rate freakctl speaks to the instrument's USB-serial
// bridge at, independent of whatever baud rate a save command later asks the
// GPS receiver itself to switch to.
const serialBaud = 115200

// serialTransport implements transport.Transport by framing each request as
// a ce93-magic Frame (see the transport package) over a single serial line
// shared between reads and writes, the way serial_port_open/_write/_get1
// share one *term.Term handle in the teacher.
type serialTransport struct {
	mu      sync.Mutex
	fd      *term.Term
	timeout time.Duration
}

func openSerial(device string, timeout time.Duration) (*serialTransport, error) {
	if device == "" {
		return nil, fmt.Errorf("serial: no device given (set --device or config's serial-device)")
	}
	fd, err := term.Open(device, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("serial: opening %s: %w", device, err)
	}
	if err := fd.SetSpeed(serialBaud); err != nil {
		fd.Close()
		return nil, fmt.Errorf("serial: setting speed on %s: %w", device, err)
	}
	return &serialTransport{fd: fd, timeout: timeout}, nil
}

func (s *serialTransport) Close() error {
	return s.fd.Close()
}

// roundTrip sends one framed request and waits for its response, honoring
// ctx's deadline via a poll(2) on the underlying file descriptor so a
// wedged device doesn't hang the command forever.
func (s *serialTransport) roundTrip(ctx context.Context, req transport.Frame) (transport.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	wire, err := req.Encode()
	if err != nil {
		return transport.Frame{}, err
	}
	if _, err := s.fd.Write(wire); err != nil {
		return transport.Frame{}, fmt.Errorf("serial: write: %w", err)
	}

	var buf []byte
	one := make([]byte, 1)
	for {
		if err := s.waitReadable(ctx); err != nil {
			return transport.Frame{}, err
		}
		n, err := s.fd.Read(one)
		if n == 1 {
			buf = append(buf, one[0])
			if resp, _, derr := transport.DecodeFrame(buf); derr == nil {
				return resp, nil
			}
			// Resync on a bad magic or a CRC failure on a full-length frame,
			// rather than wedging on a corrupted byte forever.
			if len(buf) >= 2 && binary.BigEndian.Uint16(buf[:2]) != transport.FrameMagic {
				buf = buf[1:]
			} else if len(buf) >= 4 && len(buf) >= 4+int(buf[3])+2 {
				buf = buf[1:]
			}
		}
		if err != nil && err != io.EOF {
			return transport.Frame{}, fmt.Errorf("serial: read: %w", err)
		}
	}
}

// waitReadable blocks until the serial fd has data available or ctx is
// done, using poll(2) so a context timeout actually interrupts the wait.
func (s *serialTransport) waitReadable(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pollTimeout := -1
	if dl, ok := ctx.Deadline(); ok {
		pollTimeout = int(time.Until(dl) / time.Millisecond)
		if pollTimeout < 0 {
			pollTimeout = 0
		}
	}
	fds := []unix.PollFd{{Fd: int32(s.fd.Fd()), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, pollTimeout)
	if err != nil {
		return fmt.Errorf("serial: poll: %w", err)
	}
	if n == 0 {
		return context.DeadlineExceeded
	}
	return nil
}

func (s *serialTransport) LMKWrite(ctx context.Context, address uint16, data []byte) error {
	payload := append([]byte{byte(address >> 8), byte(address)}, data...)
	_, err := s.roundTrip(ctx, transport.Frame{Code: transport.CodeLMKWrite, Payload: payload})
	return err
}

func (s *serialTransport) LMKRead(ctx context.Context, address uint16, length uint8) ([]byte, error) {
	payload := []byte{byte(address >> 8), byte(address), length}
	resp, err := s.roundTrip(ctx, transport.Frame{Code: transport.CodeLMKRead, Payload: payload})
	if err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

func (s *serialTransport) Peek(ctx context.Context, address uint32, length uint32) ([]byte, error) {
	payload := append(encodeU32(address), encodeU32(length)...)
	resp, err := s.roundTrip(ctx, transport.Frame{Code: transport.CodePeek, Payload: payload})
	if err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

func (s *serialTransport) Poke(ctx context.Context, address uint32, data []byte) error {
	payload := append(encodeU32(address), data...)
	_, err := s.roundTrip(ctx, transport.Frame{Code: transport.CodePoke, Payload: payload})
	return err
}

func (s *serialTransport) FlashErase(ctx context.Context, address uint32) error {
	_, err := s.roundTrip(ctx, transport.Frame{Code: transport.CodeFlashErase, Payload: encodeU32(address)})
	return err
}

func (s *serialTransport) CRC(ctx context.Context, address uint32, length uint32) (uint32, error) {
	payload := append(encodeU32(address), encodeU32(length)...)
	resp, err := s.roundTrip(ctx, transport.Frame{Code: transport.CodeCRC, Payload: payload})
	if err != nil {
		return 0, err
	}
	if len(resp.Payload) != 4 {
		return 0, fmt.Errorf("serial: short crc response (%d bytes)", len(resp.Payload))
	}
	return decodeU32(resp.Payload), nil
}

func encodeU32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func decodeU32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
