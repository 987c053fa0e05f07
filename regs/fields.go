package regs

// Field is one physical (address, bit-range) entry from the chip's static
// register description: a byte address, a bit offset/width within that
// byte, an access mode, and a reset value. Registers wider than one byte
// are described by several same-basename Fields at consecutive addresses,
// one per byte (no intra-byte shift is present on multi-byte
// registers).
//
// In the original tool this table is scraped from the vendor's TICS export
// (explicitly out of scope here); this is a representative
// static table covering every register name the codec in this package
// actually reads or writes.
type Field struct {
	Name     string
	Address  uint16
	BitLo    int
	BitWidth int
	Access   string
	Reset    uint8
}

// fieldSpec is the compact per-register declaration consumed by
// buildFields: a name, a bit width, and an access mode. buildFields lays
// consecutive fields out byte-aligned, splitting anything wider than a
// byte into one Field per byte.
type fieldSpec struct {
	name   string
	width  int
	access string
}

// channelTags maps the six logical plan slots onto the chip's physical
// output-channel numbering; slot BigDivideIndex is physical channel 7 (the
// only output with a stage2 divider), the rest are channels 0..4.
var channelTags = [6]int{0, 1, 2, 3, 4, 7}

// CookedChannelName returns the front-panel output name for a logical plan
// slot (0..5), e.g. "OUT4" or "OUT7", for display purposes only; the
// planner and codec both work exclusively in slot numbering.
func CookedChannelName(slot int) string {
	if slot < 0 || slot >= len(channelTags) {
		return "OUT?"
	}
	return "OUT" + itoa(channelTags[slot])
}

func registerSpecs() []fieldSpec {
	specs := []fieldSpec{
		{"PLL2_P1", 3, "RW"},
		{"PLL2_P2", 3, "RW"},
	}
	for _, t := range channelTags {
		specs = append(specs,
			fieldSpec{chName(t, "PD"), 1, "RW"},
			fieldSpec{chName(t, "MUX"), 2, "RW"},
			fieldSpec{outName(t, "DIV"), 8, "RW"},
			fieldSpec{outName(t, "SEL"), 8, "RW"},
			fieldSpec{outName(t, "MODE1"), 8, "RW"},
			fieldSpec{outName(t, "MODE2"), 8, "RW"},
		)
	}
	specs = append(specs,
		fieldSpec{"OUT7_STG2_DIV", 24, "RW"},
		fieldSpec{"DPLL_PRIREF_RDIV", 8, "RW"},
		fieldSpec{"DPLL_REF_FB_PRE_DIV", 4, "RW"},
		fieldSpec{"DPLL_REF_DIV", 8, "RW"},
		fieldSpec{"DPLL_REF_NUM", 40, "RW"},
		fieldSpec{"DPLL_REF_DEN", 40, "RW"},
		fieldSpec{"PLL1_NDIV", 8, "RW"},
		fieldSpec{"PLL1_NUM", 40, "RW"},
		fieldSpec{"BAW_LOCK_CNTSTRT", 24, "RW"},
		fieldSpec{"BAW_LOCK_VCO_CNTSTRT", 24, "RW"},
		fieldSpec{"BAW_UNLK_CNTSTRT", 24, "RW"},
		fieldSpec{"BAW_UNLK_VCO_CNTSTRT", 24, "RW"},
		fieldSpec{"DPLL_REF_LOCKDET_CNTSTRT", 24, "RW"},
		fieldSpec{"DPLL_REF_LOCKDET_VCO_CNTSTRT", 24, "RW"},
		fieldSpec{"DPLL_REF_UNLOCKDET_VCO_CNTSTRT", 24, "RW"},
		fieldSpec{"LOL_PLL2_MASK", 1, "RW"},
		fieldSpec{"MUTE_APLL2_LOCK", 1, "RW"},
		fieldSpec{"PLL2_PDN", 1, "RW"},
		fieldSpec{"APLL2_DEN_MODE", 1, "RW"},
		fieldSpec{"PLL2_DEN", 24, "RW"},
		fieldSpec{"PLL2_NDIV", 8, "RW"},
		fieldSpec{"PLL2_NUM", 24, "RW"},
		fieldSpec{"PLL2_RCLK_SEL", 2, "RW"},
		fieldSpec{"PLL2_RDIV_PRE", 3, "RW"},
		fieldSpec{"PLL2_RDIV_SEC", 3, "RW"},
		fieldSpec{"PLL2_DISABLE_3RD4TH", 4, "RW"},
		fieldSpec{"PLL2_CP", 3, "RW"},
		fieldSpec{"PLL2_LF_R2", 8, "RW"},
		fieldSpec{"PLL2_LF_R3", 8, "RW"},
		fieldSpec{"PLL2_LF_R4", 8, "RW"},
		fieldSpec{"PLL2_LF_C3", 8, "RW"},
		fieldSpec{"PLL2_LF_C4", 8, "RW"},
		fieldSpec{"PLL2_LF_C5", 8, "RW"},
		fieldSpec{"RESET_SW", 1, "RW"},
	)
	return specs
}

func chName(t int, suffix string) string {
	return "CH" + itoa(t) + "_" + suffix
}

func outName(t int, suffix string) string {
	return "OUT" + itoa(t) + "_" + suffix
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := [20]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[i:])
}

// buildFields lays out registerSpecs byte-aligned starting at address 20,
// clear of the masked-write skip range (addresses 0..=11, 13, 14), one
// field per byte for anything wider than a byte.
func buildFields() []Field {
	var fields []Field
	addr := uint16(20)
	for _, s := range registerSpecs() {
		if s.width <= 8 {
			fields = append(fields, Field{s.name, addr, 0, s.width, s.access, 0})
			addr++
			continue
		}
		remaining := s.width
		for remaining > 0 {
			fields = append(fields, Field{s.name, addr, 0, 8, s.access, 0})
			addr++
			remaining -= 8
		}
	}
	return fields
}

// Fields is the static register description loaded once at package
// initialisation and treated as read-only shared data thereafter.
var Fields = buildFields()
