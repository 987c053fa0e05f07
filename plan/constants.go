// Package plan implements the frequency planner: given a Target (up to six
// output frequencies plus reference constraints) it chooses a BAW frequency,
// a PLL2 frequency and feedback multiplier, shared PLL2 post-dividers, and
// per-output divider triples that realise the targets exactly when possible.
//
// The planner performs no I/O and holds no state across calls; every
// function here is a pure transform from a Target to a PLLPlan or an error.
package plan

import "github.com/rcls/gpsfreak/rational"

// Canonical numeric constants from the chip's data sheet and the vendor
// tool's own planner, carried over unchanged.
var (
	BAWFreq = rational.FromInt64(2_500_000_000)
	// BAWLow/BAWHigh bound BAW to within 50ppm of nominal.
	BAWLow  = BAWFreq.Mul(rational.FromFraction(999_950, 1_000_000))
	BAWHigh = BAWFreq.Mul(rational.FromFraction(1_000_050, 1_000_000))

	XOFreq     = rational.FromInt64(30_720_000)
	RefFreqDef = rational.FromInt64(8_844_582)

	// FPDivide is the fixed PLL2-feedback-predivide that always separates
	// BAW from PLL2's phase-frequency detector.
	FPDivide = int64(18)

	PLL2Low  = rational.FromInt64(5_340_000_000)
	PLL2High = rational.FromInt64(6_410_000_000)

	// PLL2OfficialLow/High is the vendor-documented window; PLL2Low/High
	// extend it, but plans inside the official window are preferred.
	PLL2OfficialLow  = rational.FromInt64(5_500_000_000)
	PLL2OfficialHigh = rational.FromInt64(6_250_000_000)
	PLL2Mid          = PLL2Low.Add(PLL2High).DivInt64(2)

	Small = rational.FromInt64(50_000)
)

const (
	// FBPredivMin/Max bound the DPLL reference-feedback predivider.
	FBPredivMin = int64(2)
	FBPredivMax = int64(17)

	// FBDivDenBits is the bit width of fb_div's denominator register field.
	FBDivDenBits = 40

	// MultDenBits is the bit width of PLL2's multiplier denominator.
	MultDenBits = 24

	// Stage1Min/Max and Stage2Max bound the per-output divider stages.
	Stage1Min = int64(1)
	Stage1Max = int64(256)
	Stage2Max = int64(1) << 24

	// Stage1MinWithStage2 is the stricter stage1 floor required whenever a
	// stage2 greater than one is in play.
	Stage1MinWithStage2 = int64(6)

	// BigDivideIndex is the only output slot permitted a stage2 != 1.
	BigDivideIndex = 5

	// NumOutputs is the number of output slots a Target carries.
	NumOutputs = 6

	// PostDivMin/Max bound PLL2's two shared post-dividers.
	PostDivMin = int64(2)
	PostDivMax = int64(7)

	// MaxHalfRange bounds the candidate-multiplier search window used by
	// both the small-LCM PLL2 path and the approximate low-BAW search.
	MaxHalfRange = int64(10_700)
)
