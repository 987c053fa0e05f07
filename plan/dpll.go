package plan

import "github.com/rcls/gpsfreak/rational"

// DPLLPlan describes how the DPLL disciplines the BAW oscillator to the
// external reference: a reference predivider, a feedback predivider, and a
// rational feedback divider.
//
// Invariant: baw == reference/refDiv * 2 * fbPrediv * fbDiv. RefDiv is
// always 1 in this planner — the register codec always emits
// DPLL_PRIREF_RDIV = 1 in the register layout — so it is carried as a field only
// to keep the invariant explicit, not as a search dimension.
type DPLLPlan struct {
	BAW       rational.Frequency
	BAWTarget rational.Frequency
	Reference rational.Frequency
	PLL1PFD   rational.Frequency

	RefDiv   int64
	FBPrediv int64
	FBDiv    rational.Frequency
}

// Validate checks every DPLLPlan invariant, panicking on
// violation: these are programmer errors, never surfaced to a caller.
func (p DPLLPlan) Validate() {
	if p.BAW.Less(BAWLow) || BAWHigh.Less(p.BAW) {
		panic("plan: baw out of range")
	}
	if p.FBDiv.Den().BitLen() > FBDivDenBits {
		panic("plan: fb_div denominator too wide")
	}
	if p.FBPrediv < FBPredivMin || p.FBPrediv > FBPredivMax {
		panic("plan: fb_prediv out of range")
	}
	want := p.Reference.DivInt64(p.RefDiv).MulInt64(2).MulInt64(p.FBPrediv).Mul(p.FBDiv)
	if !want.Equal(p.BAW) {
		panic("plan: baw does not match reference/prediv/fbdiv product")
	}
	diff := p.BAW.Sub(p.BAWTarget).Abs()
	if !diff.Less(rational.FromInt64(1)) {
		panic("plan: baw strayed more than 1Hz from its target")
	}
}

// PLL1Ratio returns PLL1's feedback ratio baw/pll1_pfd split into an integer
// part (constrained to lie strictly between 40 and 41) and a fractional
// part with a 40-bit-wide denominator.
func (p DPLLPlan) PLL1Ratio() (intPart int64, frac rational.Frequency) {
	ratio := p.BAW.Div(p.PLL1PFD)
	whole := ratio.Num().Int64() / ratio.Den().Int64()
	rem := ratio.Sub(rational.FromInt64(whole))
	return whole, rem.LimitDenominator((1 << FBDivDenBits) - 1)
}

// PLL1Divider computes the (stage1, stage2) split for a PLL1-path output
// realising frequency f from this plan's BAW.
func (p DPLLPlan) PLL1Divider(idx int, f rational.Frequency) (Divider, bool) {
	r, ok := ratioDivides(p.BAW, f)
	if !ok {
		return Divider{}, false
	}
	s1, s2, ok := outputDivide(idx, r)
	if !ok {
		return Divider{}, false
	}
	return Divider{Pre: 0, Stage1: s1, Stage2: s2}, true
}

// lessDPLL implements the five-criterion quality ordering:
// less-is-better on (|baw-target|, |baw-2500MHz|, fb_prediv, den(fb_div),
// fb_div).
func lessDPLL(a, b DPLLPlan) bool {
	da := a.BAW.Sub(a.BAWTarget).Abs()
	db := b.BAW.Sub(b.BAWTarget).Abs()
	if !da.Equal(db) {
		return da.Less(db)
	}
	ca := a.BAW.Sub(BAWFreq).Abs()
	cb := b.BAW.Sub(BAWFreq).Abs()
	if !ca.Equal(cb) {
		return ca.Less(cb)
	}
	if a.FBPrediv != b.FBPrediv {
		return a.FBPrediv < b.FBPrediv
	}
	adn := a.FBDiv.Den().Int64()
	bdn := b.FBDiv.Den().Int64()
	if adn != bdn {
		return adn < bdn
	}
	return a.FBDiv.Less(b.FBDiv)
}

// degenerateSigmaDelta reports whether fbDiv's fractional part, rounded,
// lies within 1/8 of zero: a heuristic filter avoiding degenerate
// sigma-delta operation on the feedback divider, unless the plan realises
// its target exactly.
func degenerateSigmaDelta(fbDiv rational.Frequency, exact bool) bool {
	if exact {
		return false
	}
	whole := fbDiv.Num().Int64() / fbDiv.Den().Int64()
	frac := fbDiv.Sub(rational.FromInt64(whole)).Abs()
	eighth := rational.FromFraction(1, 8)
	return frac.Less(eighth) || frac.Equal(eighth)
}

// bawPlanForFreq sweeps fb_prediv in [FBPredivMin, FBPredivMax], rationally
// approximating fb_div to FBDivDenBits bits, and returns the best plan
// aiming baw at exactly bawTarget.
func bawPlanForFreq(t Target, bawTarget rational.Frequency) (DPLLPlan, bool) {
	var best DPLLPlan
	found := false
	for prediv := FBPredivMin; prediv <= FBPredivMax; prediv++ {
		denom := t.Reference.MulInt64(2).MulInt64(prediv)
		fbDiv := bawTarget.Div(denom).LimitDenominator((1 << FBDivDenBits) - 1)
		baw := denom.Mul(fbDiv)
		exact := baw.Equal(bawTarget)
		if degenerateSigmaDelta(fbDiv, exact) {
			continue
		}
		cand := DPLLPlan{
			BAW: baw, BAWTarget: bawTarget,
			Reference: t.Reference, PLL1PFD: t.PLL1PFD,
			RefDiv: 1, FBPrediv: prediv, FBDiv: fbDiv,
		}
		if cand.BAW.Less(BAWLow) || BAWHigh.Less(cand.BAW) {
			continue
		}
		if !found || lessDPLL(cand, best) {
			best, found = cand, true
		}
	}
	return best, found
}

// defaultDPLLPlan aims BAW at exactly the nominal 2500MHz centre frequency.
func defaultDPLLPlan(t Target) (DPLLPlan, bool) {
	return bawPlanForFreq(t, BAWFreq)
}

// bawLowFreqSearch runs the exact brute force, then the bounded approximate
// brute force, for a single low (big-divide) target frequency f, per
// the exact and approximate low-BAW searches below.
func bawLowFreqSearch(t Target, f rational.Frequency) (DPLLPlan, bool) {
	if p, ok := bawLowFreqExact(t, f); ok {
		return p, true
	}
	return bawLowFreqApprox(t, f)
}

func bawLowFreqExact(t Target, f rational.Frequency) (DPLLPlan, bool) {
	for s1 := Stage1MinWithStage2; s1 <= Stage1Max; s1++ {
		fs1 := f.MulInt64(s1)
		for prediv := FBPredivMin; prediv <= FBPredivMax; prediv++ {
			var result DPLLPlan
			ok := false
			rational.SymRange(fs1, BAWLow, BAWHigh, Stage2Max, func(s2 int64) bool {
				baw := fs1.MulInt64(s2)
				denom := t.Reference.MulInt64(2).MulInt64(prediv)
				fbDiv := baw.Div(denom)
				if fbDiv.Den().BitLen() > FBDivDenBits {
					return true
				}
				result = DPLLPlan{
					BAW: baw, BAWTarget: baw,
					Reference: t.Reference, PLL1PFD: t.PLL1PFD,
					RefDiv: 1, FBPrediv: prediv, FBDiv: fbDiv,
				}
				ok = true
				return false
			})
			if ok {
				return result, true
			}
		}
	}
	return DPLLPlan{}, false
}

func bawLowFreqApprox(t Target, f rational.Frequency) (DPLLPlan, bool) {
	mid := BAWFreq
	midM := mid.Div(f)
	var midInt int64
	if midM.IsInteger() {
		midInt = midM.Int64()
	} else {
		midInt = midM.Num().Int64() / midM.Den().Int64()
	}
	loM := midInt - 1000
	hiM := midInt + 1000
	if loM < 1 {
		loM = 1
	}
	maxM := int64(1) << 32
	if hiM > maxM {
		hiM = maxM
	}

	var best DPLLPlan
	found := false
	var bestErr rational.Frequency
	for m := loM; m <= hiM; m++ {
		baw := f.MulInt64(m)
		if baw.Less(BAWLow) || BAWHigh.Less(baw) {
			continue
		}
		if _, _, ok := outputDivide(BigDivideIndex, m); !ok {
			continue
		}
		for prediv := FBPredivMin; prediv <= FBPredivMax; prediv++ {
			denom := t.Reference.MulInt64(2).MulInt64(prediv)
			fbDiv := baw.Div(denom).LimitDenominator((1 << FBDivDenBits) - 1)
			realBAW := denom.Mul(fbDiv)
			errv := realBAW.Sub(f.MulInt64(m)).Abs().Div(f)
			cand := DPLLPlan{
				BAW: realBAW, BAWTarget: f.MulInt64(m),
				Reference: t.Reference, PLL1PFD: t.PLL1PFD,
				RefDiv: 1, FBPrediv: prediv, FBDiv: fbDiv,
			}
			if cand.BAW.Less(BAWLow) || BAWHigh.Less(cand.BAW) {
				continue
			}
			if !found || errv.Less(bestErr) {
				best, bestErr, found = cand, errv, true
			}
		}
	}
	return best, found
}

// dpllCandidate is a candidate BAW frequency accumulated with votes during
// the decision procedure.
type dpllCandidate struct {
	baw   rational.Frequency
	votes int
}

// PlanDPLL implements the DPLL candidate decision procedure.
func PlanDPLL(t Target) (DPLLPlan, error) {
	// 1. pll1_base forces a unique multiple into the BAW window.
	if !t.PLL1Base.IsZero() {
		if m, ok := uniqueMultipleInWindow(t.PLL1Base, BAWLow, BAWHigh); ok {
			if p, ok := bawPlanForFreq(t, m); ok {
				return p, nil
			}
		}
	}

	// 2. default plan (aim exactly at 2500MHz); short-circuit when every
	// non-zero target that integer-divides it also has a valid divider.
	def, defOK := defaultDPLLPlan(t)
	if defOK {
		allSatisfied := true
		anyNonzero := false
		for i, f := range t.Freqs {
			if f.IsZero() {
				continue
			}
			anyNonzero = true
			r, divides := ratioDivides(BAWFreq, f)
			if !divides {
				allSatisfied = false
				break
			}
			if _, _, ok := outputDivide(i, r); !ok {
				allSatisfied = false
				break
			}
		}
		if anyNonzero && allSatisfied {
			return def, nil
		}
	}

	// 3/4. vote for candidate BAW frequencies.
	var candidates []dpllCandidate
	addVote := func(baw rational.Frequency) {
		for i := range candidates {
			if candidates[i].baw.Equal(baw) {
				candidates[i].votes++
				return
			}
		}
		candidates = append(candidates, dpllCandidate{baw, 1})
	}
	for i, f := range t.Freqs {
		if f.IsZero() || t.ForcePLL2(f) {
			continue
		}
		if m, ok := uniqueMultipleInWindow(f, BAWLow, BAWHigh); ok {
			addVote(m)
		}
		_ = i
	}
	big := t.Freqs[BigDivideIndex]
	if !big.IsZero() {
		for i := range candidates {
			if r, ok := ratioDivides(candidates[i].baw, big); ok {
				if _, _, ok := outputDivide(BigDivideIndex, r); ok {
					candidates[i].votes++
				}
			}
		}
	}

	if len(candidates) == 0 {
		if defOK && (big.IsZero() || t.ForcePLL2(big) || !bigFreqIsLow(big)) {
			return def, nil
		}
		if !big.IsZero() && !t.ForcePLL2(big) {
			if p, ok := bawLowFreqSearch(t, big); ok {
				return p, nil
			}
		}
		if defOK {
			return def, nil
		}
		return DPLLPlan{}, failf("no feasible BAW frequency for target")
	}

	// 5. sort candidates by votes desc (stable on insertion order).
	sortCandidatesByVotes(candidates)

	var best DPLLPlan
	found := false
	for _, c := range candidates {
		p, ok := bawPlanForFreq(t, c.baw)
		if !ok {
			continue
		}
		if !found || lessDPLL(p, best) {
			best, found = p, true
		}
	}
	if found {
		return best, nil
	}
	if defOK {
		return def, nil
	}
	return DPLLPlan{}, failf("no feasible BAW frequency for target")
}

func sortCandidatesByVotes(c []dpllCandidate) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && c[j-1].votes < c[j].votes; j-- {
			c[j-1], c[j] = c[j], c[j-1]
		}
	}
}

// bigFreqIsLow reports whether f is low enough that a direct BAW search is
// worth attempting rather than always deferring to PLL2.
func bigFreqIsLow(f rational.Frequency) bool {
	threshold := BAWLow.DivInt64(Stage1Max * FBPredivMax)
	return f.Less(threshold) || f.Equal(threshold)
}

// uniqueMultipleInWindow returns the unique integer multiple of f lying in
// [low, high], if exactly one exists.
func uniqueMultipleInWindow(f, low, high rational.Frequency) (rational.Frequency, bool) {
	if f.IsZero() {
		return rational.Zero, false
	}
	loM := low.Div(f)
	hiM := high.Div(f)
	loInt := loM.Num().Int64() / loM.Den().Int64()
	if loInt == 0 || f.MulInt64(loInt).Less(low) {
		loInt++
	}
	hiInt := hiM.Num().Int64() / hiM.Den().Int64()
	if high.Less(f.MulInt64(hiInt)) {
		hiInt--
	}
	if loInt != hiInt {
		return rational.Zero, false
	}
	return f.MulInt64(loInt), true
}
