package persist

import (
	"bytes"

	"github.com/rcls/gpsfreak/transport"
)

// CompareConfig reports whether old and new are "identical" configuration
// blobs: short-circuits on mismatched (magic, version, length), otherwise
// compares the CRCs of their header-less, CRC-less bodies before falling
// back to a byte comparison.
func CompareConfig(old, new []byte) (bool, error) {
	oh, err := DecodeHeader(old)
	if err != nil {
		return false, err
	}
	nh, err := DecodeHeader(new)
	if err != nil {
		return false, err
	}
	if oh.Magic != nh.Magic || oh.Version != nh.Version || oh.Length != nh.Length {
		return false, nil
	}
	if int(oh.Length) > len(old) || int(nh.Length) > len(new) {
		return false, nil
	}
	oldBody := old[HeaderSize : oh.Length-4]
	newBody := new[HeaderSize : nh.Length-4]
	if transport.CRC32(oldBody) == transport.CRC32(newBody) {
		return true, nil
	}
	return bytes.Equal(oldBody, newBody), nil
}
