// Package config loads a device profile: the reference oscillator
// frequency, PLL1 phase-detector default, output drive presets, and
// default serial device path that together parameterise a planning run,
// generalising the way config.go's units_s table drives unit lookups in
// the teacher with a small declarative table of its own, just backed by
// YAML instead of a flat text config file.
package config

import (
	"fmt"
	"os"

	"github.com/rcls/gpsfreak/rational"
	"github.com/rcls/gpsfreak/regs"
	"gopkg.in/yaml.v3"
)

// Profile is a device's planning defaults and output wiring, read from a
// YAML file such as:
//
//	reference: 10MHz
//	pll1-pfd: 1MHz
//	serial-device: /dev/ttyUSB0
//	drives:
//	  0: lvds
//	  1: lvds6
//	  5: cmos-low-normal
type Profile struct {
	Reference    string         `yaml:"reference"`
	PLL1PFD      string         `yaml:"pll1-pfd"`
	SerialDevice string         `yaml:"serial-device"`
	Drives       map[int]string `yaml:"drives"`
}

// Load reads and parses a profile from path.
func Load(path string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Profile{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return p, nil
}

// ReferenceFrequency parses the profile's reference field, or the zero
// Frequency (meaning "use the planner's vendor default") when unset.
func (p Profile) ReferenceFrequency() (rational.Frequency, error) {
	if p.Reference == "" {
		return rational.Frequency{}, nil
	}
	return rational.ParseFrequency(p.Reference)
}

// PLL1PFDFrequency parses the profile's pll1-pfd field, or the zero
// Frequency (meaning "let the planner choose") when unset.
func (p Profile) PLL1PFDFrequency() (rational.Frequency, error) {
	if p.PLL1PFD == "" {
		return rational.Frequency{}, nil
	}
	return rational.ParseFrequency(p.PLL1PFD)
}

// ResolveDrives looks up every named drive preset in the profile, erroring
// on the first unknown name or out-of-range channel.
func (p Profile) ResolveDrives() (map[int]regs.Drive, error) {
	out := make(map[int]regs.Drive, len(p.Drives))
	for ch, name := range p.Drives {
		if ch < 0 || ch >= 6 {
			return nil, fmt.Errorf("config: channel %d out of range", ch)
		}
		d, err := regs.LookupDrive(name)
		if err != nil {
			return nil, fmt.Errorf("config: channel %d: %w", ch, err)
		}
		out[ch] = d
	}
	return out, nil
}
