package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lestrrat-go/strftime"
)

// diagPattern names a diagnostic dump after the moment it was taken, the
// same way a long-running capture tool timestamps its rotated output files.
const diagPattern = "gpsfreak-%Y%m%d-%H%M%S.diag"

// DiagFilePath returns the path a new diagnostic dump (a register readback
// plus the plan that produced it) should be written to under dir.
func DiagFilePath(dir string, at time.Time) (string, error) {
	f, err := strftime.New(diagPattern)
	if err != nil {
		return "", fmt.Errorf("diag filename pattern: %w", err)
	}
	name := f.FormatString(at)
	return filepath.Join(dir, name), nil
}

// WriteDiag writes data to a freshly named diagnostic file under dir,
// creating dir if necessary, and returns the path written.
func WriteDiag(dir string, at time.Time, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path, err := DiagFilePath(dir, at)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
