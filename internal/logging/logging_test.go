package logging

import (
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestInitLevels(t *testing.T) {
	Init(0, 0)
	assert.Equal(t, log.WarnLevel, L.GetLevel())

	Init(1, 0)
	assert.Equal(t, log.InfoLevel, L.GetLevel())

	Init(2, 0)
	assert.Equal(t, log.DebugLevel, L.GetLevel())

	Init(0, 1)
	assert.Equal(t, log.ErrorLevel, L.GetLevel())

	Init(5, 1)
	assert.Equal(t, log.ErrorLevel, L.GetLevel(), "quiet should win over verbose")
}

func TestDiagFilePathIsStable(t *testing.T) {
	at := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	path, err := DiagFilePath("/tmp/diag", at)
	assert.NoError(t, err)
	assert.Equal(t, "/tmp/diag/gpsfreak-20260731-120000.diag", path)
}

func TestWriteDiagCreatesFile(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	path, err := WriteDiag(dir, at, []byte("hello"))
	assert.NoError(t, err)
	assert.FileExists(t, path)
}
