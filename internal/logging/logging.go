// Package logging wires up a single process-wide logger, the way
// cmd/direwolf's -d/-q flags tune its own textcolor-based console output.
// The core packages (rational, plan, regs, persist) never import this
// package; only cmd/freakctl and its transport implementations log.
package logging

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// L is the process-wide logger, configured once by Init. charmbracelet/log
// decides colorization on its own by checking whether its writer is a
// terminal, so there is nothing to wire up here beyond level and timestamps.
var L = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.TimeOnly,
})

// Init sets the logger's level from the CLI's -v/-q counts.
func Init(verbose, quiet int) {
	switch {
	case quiet > 0:
		L.SetLevel(log.ErrorLevel)
	case verbose >= 2:
		L.SetLevel(log.DebugLevel)
	case verbose == 1:
		L.SetLevel(log.InfoLevel)
	default:
		L.SetLevel(log.WarnLevel)
	}
}
