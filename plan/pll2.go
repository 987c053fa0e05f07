package plan

import "github.com/rcls/gpsfreak/rational"

// PLLPlan is the fully specified output of the planner: a DPLLPlan plus
// PLL2's realised frequency, feedback multiplier, and a divider triple per
// output slot.
type PLLPlan struct {
	DPLL DPLLPlan

	PLL2       rational.Frequency
	PLL2Target rational.Frequency
	Multiplier rational.Frequency

	Dividers [NumOutputs]Divider
}

// Validate checks every PLLPlan invariant, panicking on
// violation.
func (p PLLPlan) Validate() {
	p.DPLL.Validate()
	if !p.PLL2.IsZero() {
		if p.PLL2.Less(PLL2Low) || PLL2High.Less(p.PLL2) {
			panic("plan: pll2 out of range")
		}
		if p.Multiplier.Den().BitLen() > MultDenBits+1 {
			panic("plan: multiplier denominator too wide")
		}
		want := p.DPLL.BAW.DivInt64(FPDivide).Mul(p.Multiplier)
		if !want.Equal(p.PLL2) {
			panic("plan: pll2 does not match baw/18*multiplier")
		}
	}
	postDivs := map[int64]bool{}
	for i, d := range p.Dividers {
		if d == (Divider{}) {
			continue
		}
		if d.Pre != 0 {
			if d.Pre < PostDivMin || d.Pre > PostDivMax {
				panic("plan: post-divider out of range")
			}
			postDivs[d.Pre] = true
		}
		if d.Stage1 < 1 || d.Stage1 > Stage1Max {
			if d.Stage1 != 0 {
				panic("plan: stage1 out of range")
			}
		}
		if d.Stage2 != 1 && i != BigDivideIndex {
			panic("plan: stage2 != 1 on a non-big-divide output")
		}
		if d.Stage2 < 1 || d.Stage2 > Stage2Max {
			panic("plan: stage2 out of range")
		}
	}
	if len(postDivs) > 2 {
		panic("plan: more than two live post-dividers")
	}
}

// lessPLL2 implements the seven-criterion quality ordering.
func lessPLL2(a, b PLLPlan) bool {
	aExact := a.PLL2Target.IsZero() || a.PLL2.Equal(a.PLL2Target)
	bExact := b.PLL2Target.IsZero() || b.PLL2.Equal(b.PLL2Target)
	if aExact != bExact {
		return aExact
	}
	aOfficial := inOfficialWindow(a.PLL2)
	bOfficial := inOfficialWindow(b.PLL2)
	if aOfficial != bOfficial {
		return aOfficial
	}
	if !aExact {
		ea := relErr(a.PLL2, a.PLL2Target)
		eb := relErr(b.PLL2, b.PLL2Target)
		if !ea.Equal(eb) {
			return ea.Less(eb)
		}
	}
	aEven := evenStage2(a)
	bEven := evenStage2(b)
	if aEven != bEven {
		return aEven
	}
	aFixed := fixedDenominator(a.Multiplier)
	bFixed := fixedDenominator(b.Multiplier)
	if aFixed != bFixed {
		return aFixed
	}
	ca := a.PLL2.Sub(PLL2Mid).Abs()
	cb := b.PLL2.Sub(PLL2Mid).Abs()
	if !ca.Equal(cb) {
		return ca.Less(cb)
	}
	return a.PLL2.Less(b.PLL2)
}

func inOfficialWindow(f rational.Frequency) bool {
	if f.IsZero() {
		return true
	}
	return !f.Less(PLL2OfficialLow) && !PLL2OfficialHigh.Less(f)
}

func relErr(pll2, target rational.Frequency) rational.Frequency {
	if target.IsZero() {
		return rational.Zero
	}
	return pll2.Div(target).Sub(rational.FromInt64(1)).Abs()
}

func evenStage2(p PLLPlan) bool {
	s2 := p.Dividers[BigDivideIndex].Stage2
	return s2 == 1 || s2%2 == 0
}

func fixedDenominator(mult rational.Frequency) bool {
	den := mult.Den().Int64()
	return (int64(1)<<MultDenBits)%den == 0
}

// PLL2LowBound is the floor below which a frequency cannot be realised on
// any non-big-divide output through PLL2 (the maximum total divide is
// 7*256).
var PLL2LowBound = PLL2Low.DivInt64(PostDivMax * Stage1Max)

// routeClassify decides, for target frequency f at output index idx,
// whether it should be realised on the PLL1 (BAW) path or the PLL2 path.
func routeClassify(t Target, dpll DPLLPlan, idx int, f rational.Frequency) (pll2 bool, err error) {
	if f.IsZero() {
		return false, nil
	}
	if !t.ForcePLL2(f) {
		if _, ok := dpll.PLL1Divider(idx, f); ok {
			return false, nil
		}
	}
	if idx == BigDivideIndex || !f.Less(PLL2LowBound) {
		return true, nil
	}
	return false, failf("frequency %v not achievable on output %d", f, idx)
}

// PlanPLL2 implements the §4.C contract: given a DPLLPlan, classify every
// output onto PLL1 or PLL2, pick a PLL2 frequency and multiplier, and
// decompose every divider.
func PlanPLL2(t Target, dpll DPLLPlan) (PLLPlan, error) {
	var pll2Freqs [NumOutputs]rational.Frequency
	var onPLL2 [NumOutputs]bool
	anyPLL2 := false
	for i, f := range t.Freqs {
		route, err := routeClassify(t, dpll, i, f)
		if err != nil {
			return PLLPlan{}, err
		}
		if route {
			onPLL2[i] = true
			pll2Freqs[i] = f
			anyPLL2 = true
		}
	}

	plan := PLLPlan{DPLL: dpll}
	if !anyPLL2 {
		fillPLL1Dividers(&plan, t, dpll)
		return plan, nil
	}

	lcm := rational.Zero
	haveLCM := false
	for _, f := range pll2Freqs {
		if f.IsZero() {
			continue
		}
		if !haveLCM {
			lcm, haveLCM = f, true
		} else {
			lcm = rational.FractLCM(lcm, f)
		}
	}
	if !t.PLL2Base.IsZero() {
		if !haveLCM {
			lcm, haveLCM = t.PLL2Base, true
		} else {
			lcm = rational.FractLCM(lcm, t.PLL2Base)
		}
	}

	var best PLLPlan
	found := false

	onlyBigDivide := true
	for i, f := range onPLL2 {
		if f && i != BigDivideIndex {
			onlyBigDivide = false
		}
	}

	if onlyBigDivide && pll2Freqs[BigDivideIndex].Less(PLL2LowBound) {
		if p, ok := planPLL2LowLCM(t, dpll, pll2Freqs[BigDivideIndex]); ok {
			best, found = p, true
		}
	}

	if !found {
		if !haveLCM || lcm.Less(Small) {
			return PLLPlan{}, failf("LCM not in range")
		}
		p, ok, err := planPLL2SmallLCM(t, dpll, pll2Freqs, lcm)
		if err != nil {
			return PLLPlan{}, err
		}
		if ok {
			best, found = p, true
		}
	}
	if !found {
		return PLLPlan{}, failf("no feasible PLL2 plan")
	}

	if reconciled, ok := rejigPLL2(t, best); ok {
		best = reconciled
	}

	fillPLL1Dividers(&best, t, dpll)
	return best, nil
}

// planPLL2SmallLCM implements the §4.C "Small-LCM normal path".
func planPLL2SmallLCM(t Target, dpll DPLLPlan, pll2Freqs [NumOutputs]rational.Frequency, lcm rational.Frequency) (PLLPlan, bool, error) {
	loM := PLL2Low.Div(lcm)
	hiM := PLL2High.Div(lcm)
	loInt := ceilInt(loM)
	hiInt := floorInt(hiM)
	if loInt > hiInt {
		return PLLPlan{}, false, failf("LCM not in range")
	}
	mid := (loInt + hiInt) / 2
	if hiInt-loInt > 2*MaxHalfRange {
		if mid-MaxHalfRange > loInt {
			loInt = mid - MaxHalfRange
		}
		if mid+MaxHalfRange < hiInt {
			hiInt = mid + MaxHalfRange
		}
	}

	var best PLLPlan
	found := false
	for m := loInt; m <= hiInt; m++ {
		pll2Freq := lcm.MulInt64(m)
		p, ok := assignSharedPostDividers(t, dpll, pll2Freqs, pll2Freq, lcm)
		if !ok {
			continue
		}
		if !found || lessPLL2(p, best) {
			best, found = p, true
		}
	}
	if !found {
		return PLLPlan{}, false, failf("max frequency too high")
	}
	return best, true, nil
}

// assignSharedPostDividers tries to decompose every PLL2-path output's
// ratio pll2Freq/f using at most two distinct shared post-dividers.
func assignSharedPostDividers(t Target, dpll DPLLPlan, pll2Freqs [NumOutputs]rational.Frequency, pll2Freq, lcm rational.Frequency) (PLLPlan, bool) {
	mult := pll2Freq.Div(dpll.BAW.DivInt64(FPDivide))
	if mult.Den().BitLen() > MultDenBits+1 {
		return PLLPlan{}, false
	}

	var dividers [NumOutputs]Divider
	var posts []int64
	for i, f := range pll2Freqs {
		if f.IsZero() {
			continue
		}
		r, ok := ratioDivides(pll2Freq, f)
		if !ok {
			return PLLPlan{}, false
		}
		d, ok := tryAssignDivider(i, r, &posts)
		if !ok {
			return PLLPlan{}, false
		}
		dividers[i] = d
	}

	_ = lcm
	return PLLPlan{
		DPLL: dpll, PLL2: pll2Freq, PLL2Target: pll2Freq,
		Multiplier: mult, Dividers: dividers,
	}, true
}

func tryAssignDivider(idx int, r int64, posts *[]int64) (Divider, bool) {
	for _, p := range *posts {
		if r%p == 0 {
			if s1, s2, ok := outputDivide(idx, r/p); ok {
				return Divider{Pre: p, Stage1: s1, Stage2: s2}, true
			}
		}
	}
	for p := PostDivMin; p <= PostDivMax; p++ {
		if len(*posts) >= 2 && !contains(*posts, p) {
			continue
		}
		if r%p != 0 {
			continue
		}
		if s1, s2, ok := outputDivide(idx, r/p); ok {
			if !contains(*posts, p) {
				*posts = append(*posts, p)
			}
			return Divider{Pre: p, Stage1: s1, Stage2: s2}, true
		}
	}
	return Divider{}, false
}

func contains(s []int64, v int64) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// planPLL2LowLCM implements a bounded version of the §4.C "Low-LCM path":
// when only the big-divide output is live and its frequency is below the
// PLL2 floor, search post_div/stage1_div combinations directly against the
// PLL2 window rather than materialising the full factor-splitting search.
// This covers the common case (single very-low-frequency output) without
// the two-pass fast/slow factor enumeration of the original; see DESIGN.md.
func planPLL2LowLCM(t Target, dpll DPLLPlan, f rational.Frequency) (PLLPlan, bool) {
	var best PLLPlan
	found := false
	for postDiv := PostDivMin; postDiv <= PostDivMax; postDiv++ {
		for stage1 := Stage1MinWithStage2; stage1 <= Stage1Max; stage1++ {
			base := f.MulInt64(postDiv).MulInt64(stage1)
			rational.SymRange(base, PLL2Low, PLL2High, Stage2Max, func(stage2 int64) bool {
				pll2Freq := base.MulInt64(stage2)
				mult := pll2Freq.Div(dpll.BAW.DivInt64(FPDivide))
				if mult.Den().BitLen() > MultDenBits+1 {
					return true
				}
				p := PLLPlan{
					DPLL: dpll, PLL2: pll2Freq, PLL2Target: pll2Freq,
					Multiplier: mult,
				}
				p.Dividers[BigDivideIndex] = Divider{Pre: postDiv, Stage1: stage1, Stage2: stage2}
				if !found || lessPLL2(p, best) {
					best, found = p, true
				}
				return true
			})
		}
	}
	if found {
		return best, true
	}
	// Fall back to the small-LCM path with LCM set to f itself.
	var pll2Freqs [NumOutputs]rational.Frequency
	pll2Freqs[BigDivideIndex] = f
	p, ok, _ := planPLL2SmallLCM(t, dpll, pll2Freqs, f)
	return p, ok
}

// rejigPLL2 implements plan reconciliation: when PLL2's
// realised frequency misses its target, retry DPLL planning at each
// continued-fraction convergent of the multiplier, adopting any strictly
// better result.
func rejigPLL2(t Target, p PLLPlan) (PLLPlan, bool) {
	if p.PLL2Target.IsZero() || p.PLL2.Equal(p.PLL2Target) {
		return p, false
	}
	best := p
	found := false
	rational.ContinuedFraction(p.Multiplier, func(c rational.Convergent) bool {
		mult := rational.FromFraction(c.Num, c.Den)
		if mult.IsZero() {
			return true
		}
		bawTarget := p.PLL2Target.MulInt64(FPDivide).Div(mult)
		newDPLL, err := PlanDPLL(targetWithPLL1Base(t, bawTarget))
		if err != nil {
			return true
		}
		newPLL2 := newDPLL.BAW.DivInt64(FPDivide).Mul(mult)
		if newPLL2.Less(PLL2Low) || PLL2High.Less(newPLL2) {
			return true
		}
		cand := p
		cand.DPLL = newDPLL
		cand.PLL2 = newPLL2
		cand.Multiplier = mult
		if lessPLL2(cand, best) {
			best, found = cand, true
		}
		return true
	})
	return best, found
}

// targetWithPLL1Base rewrites a Target so PlanDPLL aims directly at bawTarget.
func targetWithPLL1Base(t Target, bawTarget rational.Frequency) Target {
	t2 := t
	t2.PLL1Base = bawTarget
	return t2
}

// fillPLL1Dividers back-fills dividers[i] = (0, stage1, stage2) for every
// remaining PLL1-path, non-zero target.
func fillPLL1Dividers(p *PLLPlan, t Target, dpll DPLLPlan) {
	for i, f := range t.Freqs {
		if f.IsZero() || p.Dividers[i] != (Divider{}) {
			continue
		}
		if d, ok := dpll.PLL1Divider(i, f); ok {
			p.Dividers[i] = d
		}
	}
}

func ceilInt(f rational.Frequency) int64 {
	if f.IsInteger() {
		return f.Int64()
	}
	n, d := f.Num().Int64(), f.Den().Int64()
	q := n / d
	if n > 0 {
		q++
	}
	return q
}

func floorInt(f rational.Frequency) int64 {
	if f.IsInteger() {
		return f.Int64()
	}
	n, d := f.Num().Int64(), f.Den().Int64()
	q := n / d
	if n < 0 {
		q--
	}
	return q
}
