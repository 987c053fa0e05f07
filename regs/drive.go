package regs

import (
	"fmt"
	"strings"
)

// Drive names one of the chip's output drive-strength presets: the
// (sel, mode1, mode2) triple written to an output's three per-channel
// drive-select/mode register fields, given a symbolic name instead of raw
// field values.
//
// Grounded on the vendor tool's DRIVES table (lvds/lvdsN, and the
// cmos{hi-z,low} x {normal,inverted} combinations this package models): sel
// picks the driver family (1 = LVDS, 3 = CMOS), mode1/mode2 the per-family
// sub-option (drive current for LVDS; output level and polarity for CMOS).
type Drive struct {
	Name               string
	Sel, Mode1, Mode2  uint64
}

// drives is the symbolic preset table.
var drives = map[string]Drive{
	"lvds":              {"lvds", 1, 0, 0},
	"lvds6":             {"lvds6", 1, 1, 0},
	"lvds8":             {"lvds8", 1, 2, 0},
	"cmos-hiz-normal":   {"cmos-hiz-normal", 3, 0, 3},
	"cmos-hiz-inverted": {"cmos-hiz-inverted", 3, 0, 2},
	"cmos-low-normal":   {"cmos-low-normal", 3, 1, 3},
	"cmos-low-inverted": {"cmos-low-inverted", 3, 1, 2},
}

// LookupDrive resolves a symbolic drive-strength name, canonicalised
// uppercase with '-' folded to '_', following this project's name-normalisation
// decision, against the preset table.
func LookupDrive(name string) (Drive, error) {
	canon := func(s string) string { return strings.ToUpper(strings.ReplaceAll(s, "-", "_")) }
	for key, d := range drives {
		if canon(key) == canon(name) {
			return d, nil
		}
	}
	return Drive{}, fmt.Errorf("regs: unknown drive preset %q", name)
}

// ApplyDrive writes a Drive preset's sel/mode1/mode2 fields for output
// channel t into the image. These are independent of CH{t}_MUX, which
// selects the output's PLL-routing source rather than its drive strength.
func ApplyDrive(m *MaskedBytes, t int, d Drive) {
	m.Insert(Registers[outName(t, "SEL")], d.Sel)
	m.Insert(Registers[outName(t, "MODE1")], d.Mode1)
	m.Insert(Registers[outName(t, "MODE2")], d.Mode2)
}
