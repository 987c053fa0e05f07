package regs

import (
	"testing"

	"github.com/rcls/gpsfreak/plan"
	"github.com/rcls/gpsfreak/rational"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDeriveRegistersSingleByte(t *testing.T) {
	reg := Registers["DPLL_PRIREF_RDIV"]
	assert.Equal(t, 1, reg.Bytes)
	assert.Equal(t, 8, reg.Width)
}

func TestDeriveRegistersMultiByte(t *testing.T) {
	reg := Registers["DPLL_REF_NUM"]
	assert.Equal(t, 5, reg.Bytes)
	assert.Equal(t, 40, reg.Width)
}

// Property 4: insert then extract round-trips any value within a
// register's width, and extract_mask reports every bit written.
func TestMaskedBytesLaws(t *testing.T) {
	rapid.Check(t, func(tt *rapid.T) {
		names := make([]string, 0, len(Registers))
		for n := range Registers {
			names = append(names, n)
		}
		name := rapid.SampledFrom(names).Draw(tt, "register")
		reg := Registers[name]
		maxVal := uint64(1)<<uint(reg.Width) - 1
		v := rapid.Uint64Range(0, maxVal).Draw(tt, "value")

		var m MaskedBytes
		m.Insert(reg, v)
		assert.Equal(tt, v, m.Extract(reg))
		assert.Equal(tt, maxVal, m.ExtractMask(reg))
	})
}

func TestNeverWrittenSkipList(t *testing.T) {
	for addr := 0; addr <= 11; addr++ {
		assert.True(t, NeverWritten(addr))
	}
	assert.True(t, NeverWritten(13))
	assert.True(t, NeverWritten(14))
	assert.False(t, NeverWritten(12))
	assert.False(t, NeverWritten(20))
}

func TestRangesRespectsMaxBlock(t *testing.T) {
	var m MaskedBytes
	for i := 20; i < 30; i++ {
		m.Mask[i] = 0xff
	}
	ranges := m.Ranges(func(b byte) bool { return b != 0 }, 4)
	for _, r := range ranges {
		assert.LessOrEqual(t, r.Len, 4)
	}
	total := 0
	for _, r := range ranges {
		total += r.Len
	}
	assert.Equal(t, 10, total)
}

func TestCompletePartialsBackfillsFromDevice(t *testing.T) {
	var m MaskedBytes
	reg := Registers["DPLL_REF_FB_PRE_DIV"] // 4-bit field, 1 byte
	m.Insert(reg, 5)

	err := m.CompletePartials(func(addr, length int) ([]byte, error) {
		live := make([]byte, length)
		for i := range live {
			live[i] = 0xff
		}
		return live, nil
	})
	require.NoError(t, err)
	assert.Equal(t, byte(0xff), m.Mask[reg.Base])
}

// Property 3 (codec round-trip), simplified to the fields this package
// reconstructs: BAW and per-output frequencies agree exactly after a
// FreqMakeData/ReversePlan round trip.
func TestCodecRoundTrip(t *testing.T) {
	target := plan.NewTarget([plan.NumOutputs]rational.Frequency{
		rational.FromInt64(11_000_000),
	})
	p, err := plan.Plan(target)
	require.NoError(t, err)

	img := FreqMakeData(p)
	got, freqs := ReversePlan(img, p.DPLL.Reference)

	assert.True(t, got.DPLL.BAW.Equal(p.DPLL.BAW))
	assert.True(t, got.PLL2.Equal(p.PLL2))
	for i, f := range target.Freqs {
		if f.IsZero() {
			continue
		}
		assert.True(t, freqs[i].Equal(f), "output %d: got %v want %v", i, freqs[i], f)
	}
}

func TestLookupDriveUnknown(t *testing.T) {
	_, err := LookupDrive("not-a-drive")
	assert.Error(t, err)
}

func TestLookupDriveKnown(t *testing.T) {
	d, err := LookupDrive("lvds")
	require.NoError(t, err)
	assert.Equal(t, "lvds", d.Name)
}

// ApplyDrive must never touch CH{t}_MUX: that field selects an output's
// PLL-routing source, a concern FreqMakeData owns, not drive strength.
func TestApplyDriveDoesNotTouchRoutingMux(t *testing.T) {
	tag := channelTags[0]
	var m MaskedBytes
	m.Insert(Registers[chName(tag, "MUX")], 3)

	d, err := LookupDrive("cmos-low-inverted")
	require.NoError(t, err)
	ApplyDrive(&m, tag, d)

	assert.Equal(t, uint64(3), m.Extract(Registers[chName(tag, "MUX")]))
	assert.Equal(t, d.Sel, m.Extract(Registers[outName(tag, "SEL")]))
	assert.Equal(t, d.Mode1, m.Extract(Registers[outName(tag, "MODE1")]))
	assert.Equal(t, d.Mode2, m.Extract(Registers[outName(tag, "MODE2")]))
}
