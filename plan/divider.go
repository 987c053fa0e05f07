package plan

import "github.com/rcls/gpsfreak/rational"

// Divider is one output's (post-divider, stage1, stage2) triple. Pre == 0
// marks a PLL1/BAW-fed output; otherwise pre selects one of PLL2's two live
// shared post-dividers.
type Divider struct {
	Pre, Stage1, Stage2 int64
}

// outputDivide splits an integer ratio r == pre*stage1*stage2 for output
// index idx, preferring an even stage2 and, among ties, the largest stage1.
// Only BigDivideIndex may use stage2 > 1; every other output must fully
// decompose into stage1 alone (after dividing out the caller-supplied pre).
//
// A small enumeration over at most 257 stage1 candidates.
func outputDivide(idx int, r int64) (stage1, stage2 int64, ok bool) {
	if r <= 0 {
		return 0, 0, false
	}
	if idx != BigDivideIndex {
		if r >= Stage1Min && r <= Stage1Max {
			return r, 1, true
		}
		return 0, 0, false
	}

	bestStage1 := int64(-1)
	bestStage2 := int64(-1)
	for s1 := Stage1Max; s1 >= Stage1Min; s1-- {
		if r%s1 != 0 {
			continue
		}
		s2 := r / s1
		if s2 == 1 {
			if betterOutputSplit(s1, s2, bestStage1, bestStage2) {
				bestStage1, bestStage2 = s1, s2
			}
			continue
		}
		if s2 > Stage2Max {
			continue
		}
		if s1 < Stage1MinWithStage2 {
			continue
		}
		if betterOutputSplit(s1, s2, bestStage1, bestStage2) {
			bestStage1, bestStage2 = s1, s2
		}
	}
	if bestStage1 < 0 {
		return 0, 0, false
	}
	return bestStage1, bestStage2, true
}

// betterOutputSplit reports whether (s1, s2) is preferred over the current
// best (bs1, bs2): even stage2 wins, then larger stage1.
func betterOutputSplit(s1, s2, bs1, bs2 int64) bool {
	if bs1 < 0 {
		return true
	}
	sEven := s2%2 == 0
	bEven := bs2%2 == 0
	if sEven != bEven {
		return sEven
	}
	return s1 > bs1
}

// ratioDivides reports whether f*r == target for some positive integer r,
// returning r when so.
func ratioDivides(target, f rational.Frequency) (int64, bool) {
	if f.IsZero() || target.IsZero() {
		return 0, false
	}
	q := target.Div(f)
	if !q.IsInteger() {
		return 0, false
	}
	return q.Int64(), true
}
