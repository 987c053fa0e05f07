package plan

import "github.com/rcls/gpsfreak/rational"

// Target names the frequencies the caller wants on each of the six output
// slots, plus the reference-chain parameters the DPLL/PLL2 planners need.
// The zero value is not useful; construct with NewTarget.
type Target struct {
	// Freqs holds up to NumOutputs target frequencies; a zero entry means
	// "output disabled". Slot BigDivideIndex is the only one that may carry
	// a stage2 divider.
	Freqs [NumOutputs]rational.Frequency

	// Reference is the DPLL's external reference input.
	Reference rational.Frequency

	// PLL1PFD is PLL1's phase-frequency-detector frequency.
	PLL1PFD rational.Frequency

	// PLL1Base, if non-zero, constrains BAW to an integer multiple of it.
	PLL1Base rational.Frequency

	// PLL2Base, if non-zero, constrains PLL2 to an integer multiple of it,
	// and forces any frequency that exactly divides it through PLL2 (see
	// ForcePLL2).
	PLL2Base rational.Frequency
}

// NewTarget builds a Target with the vendor-default reference chain.
func NewTarget(freqs [NumOutputs]rational.Frequency) Target {
	return Target{
		Freqs:     freqs,
		Reference: RefFreqDef,
		PLL1PFD:   XOFreq.MulInt64(2),
	}
}

// ForcePLL2 reports whether f must route through PLL2 rather than PLL1,
// because PLL2Base is set and f exactly divides it.
func (t Target) ForcePLL2(f rational.Frequency) bool {
	if t.PLL2Base.IsZero() || f.IsZero() {
		return false
	}
	return rational.IsMultipleOf(t.PLL2Base, f)
}
