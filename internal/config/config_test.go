package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesFields(t *testing.T) {
	path := writeProfile(t, "reference: 10MHz\npll1-pfd: 1MHz\nserial-device: /dev/ttyUSB0\ndrives:\n  0: lvds\n  1: cmos-low\n")
	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "10MHz", p.Reference)
	assert.Equal(t, "/dev/ttyUSB0", p.SerialDevice)

	ref, err := p.ReferenceFrequency()
	require.NoError(t, err)
	assert.Equal(t, int64(10000000), ref.Int64())

	pfd, err := p.PLL1PFDFrequency()
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), pfd.Int64())
}

func TestReferenceIsZeroWhenUnset(t *testing.T) {
	path := writeProfile(t, "serial-device: /dev/ttyUSB0\n")
	p, err := Load(path)
	require.NoError(t, err)
	ref, err := p.ReferenceFrequency()
	require.NoError(t, err)
	assert.True(t, ref.IsZero())
}

func TestResolveDrivesRejectsUnknown(t *testing.T) {
	path := writeProfile(t, "drives:\n  0: not-a-real-drive\n")
	p, err := Load(path)
	require.NoError(t, err)
	_, err = p.ResolveDrives()
	assert.Error(t, err)
}

func TestResolveDrivesRejectsOutOfRangeChannel(t *testing.T) {
	path := writeProfile(t, "drives:\n  9: lvds\n")
	p, err := Load(path)
	require.NoError(t, err)
	_, err = p.ResolveDrives()
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
