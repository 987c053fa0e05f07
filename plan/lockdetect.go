package plan

import "github.com/rcls/gpsfreak/rational"

// BAWLockWindow and DPLLLockWindow are measurement-window durations in seconds, expressed
// exactly, used to derive frequency-lock-detect counters.
var (
	BAWLockWindow  = rational.FromFraction(192, 10000)  // ~19.2ms
	DPLLLockWindow = rational.FromFraction(96, 1000)     // 96ms
)

// LockDetectCounters is the (n_low, n_high) pair the chip's lock-detect
// state machine counts against fLow and fHigh respectively.
type LockDetectCounters struct {
	NLow, NHigh int64
}

// PlanLockDetect chooses (n_low, n_high) such that n_low/fLow approximates
// window and n_high = round(n_low * fHigh / fLow), searching +-10 on n_low
// around round(window*fLow) and minimising the lexicographic tuple
// (|n_high/(n_low*fHigh/fLow) - 1|, |n_low - round(window*fLow)|), per
// the lock-detect counter derivation below.
//
// Grounded on the BAW and DPLL freq-lock-detect machinery description: the
// same search shape serves both the ~19.2ms BAW/XO comparison and the 96ms
// DPLL/reference comparison, parameterised only by fLow, fHigh and window.
func PlanLockDetect(fLow, fHigh, window rational.Frequency) LockDetectCounters {
	nominal := window.Mul(fLow)
	nominalInt := roundRat(nominal)

	var best LockDetectCounters
	var bestRatioErr, bestCenterErr rational.Frequency
	found := false

	for delta := int64(-10); delta <= 10; delta++ {
		nLow := nominalInt + delta
		if nLow <= 0 {
			continue
		}
		ratio := fHigh.Mul(rational.FromInt64(nLow)).Div(fLow)
		nHigh := roundRat(ratio)
		if nHigh <= 0 {
			continue
		}
		achieved := rational.FromInt64(nHigh).Div(rational.FromInt64(nLow)).Mul(fLow).Div(fHigh)
		ratioErr := achieved.Sub(rational.FromInt64(1)).Abs()
		centerErr := rational.FromInt64(nLow - nominalInt).Abs()

		better := !found
		if found {
			if !ratioErr.Equal(bestRatioErr) {
				better = ratioErr.Less(bestRatioErr)
			} else {
				better = centerErr.Less(bestCenterErr)
			}
		}
		if better {
			best = LockDetectCounters{NLow: nLow, NHigh: nHigh}
			bestRatioErr, bestCenterErr, found = ratioErr, centerErr, true
		}
	}

	// Post-condition: the chosen VCO count lies within 1% of nominal.
	nominalHigh := roundRat(window.Mul(fHigh))
	onePercent := rational.FromFraction(1, 100)
	dev := rational.FromInt64(best.NHigh - nominalHigh).Abs().Div(rational.FromInt64(nominalHigh)).Abs()
	if nominalHigh > 0 && onePercent.Less(dev) {
		panic("plan: lock-detect counter strayed more than 1% from nominal")
	}
	return best
}

// roundRat rounds a non-negative rational to the nearest integer, ties away
// from zero.
func roundRat(f rational.Frequency) int64 {
	n := f.Num().Int64()
	d := f.Den().Int64()
	if d == 1 {
		return n
	}
	half := n*2 + d
	return half / (2 * d)
}
