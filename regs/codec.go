package regs

import (
	"github.com/rcls/gpsfreak/plan"
	"github.com/rcls/gpsfreak/rational"
)

// FreqMakeData translates a finished PLLPlan into a masked byte image
// ready to flush to the chip.
func FreqMakeData(p plan.PLLPlan) *MaskedBytes {
	m := &MaskedBytes{}

	p1, p2 := livePostDividers(p)
	m.Insert(Registers["PLL2_P1"], uint64(p1-1))
	m.Insert(Registers["PLL2_P2"], uint64(p2-1))

	for i, d := range p.Dividers {
		t := channelTags[i]
		if d.Stage1 == 0 {
			m.Insert(Registers[chName(t, "PD")], 1)
			continue
		}
		m.Insert(Registers[chName(t, "PD")], 0)
		mux := uint64(1)
		switch d.Pre {
		case 0:
			mux = 1
		case p1:
			mux = 2
		case p2:
			mux = 3
		}
		m.Insert(Registers[chName(t, "MUX")], mux)
		m.Insert(Registers[outName(t, "DIV")], uint64(d.Stage1-1))
		if i == plan.BigDivideIndex {
			m.Insert(Registers["OUT7_STG2_DIV"], uint64(d.Stage2-1))
		}
	}

	m.Insert(Registers["DPLL_PRIREF_RDIV"], 1)
	m.Insert(Registers["DPLL_REF_FB_PRE_DIV"], uint64(p.DPLL.FBPrediv-2))
	whole, num, den := decomposeFraction(p.DPLL.FBDiv)
	scale := ((uint64(1) << 40) - 1) / uint64(den)
	m.Insert(Registers["DPLL_REF_DIV"], uint64(whole))
	m.Insert(Registers["DPLL_REF_NUM"], num*scale)
	m.Insert(Registers["DPLL_REF_DEN"], uint64(den)*scale)

	pll1NDiv, pll1Frac := p.DPLL.PLL1Ratio()
	_, fNum, fDen := decomposeFraction(pll1Frac)
	m.Insert(Registers["PLL1_NDIV"], uint64(pll1NDiv))
	m.Insert(Registers["PLL1_NUM"], fNum*(((uint64(1)<<40)-1)/uint64(fDen)))

	emitLockDetect(m, p.DPLL)

	if p.PLL2.IsZero() {
		m.Insert(Registers["LOL_PLL2_MASK"], 1)
		m.Insert(Registers["MUTE_APLL2_LOCK"], 0)
		m.Insert(Registers["PLL2_PDN"], 1)
		return m
	}

	m.Insert(Registers["PLL2_PDN"], 0)
	m.Insert(Registers["LOL_PLL2_MASK"], 0)
	m.Insert(Registers["MUTE_APLL2_LOCK"], 1)

	mWhole, mNum, mDen := decomposeFraction(p.Multiplier)
	const fixedDen = uint64(1) << plan.MultDenBits
	if fixedDen%mDen == 0 {
		m.Insert(Registers["APLL2_DEN_MODE"], 0)
		m.Insert(Registers["PLL2_NUM"], mNum*(fixedDen/mDen))
	} else {
		m.Insert(Registers["APLL2_DEN_MODE"], 1)
		m.Insert(Registers["PLL2_DEN"], mDen)
		m.Insert(Registers["PLL2_NUM"], mNum)
	}
	m.Insert(Registers["PLL2_NDIV"], uint64(mWhole))

	m.Insert(Registers["PLL2_RCLK_SEL"], 0)
	m.Insert(Registers["PLL2_RDIV_PRE"], 0)
	m.Insert(Registers["PLL2_RDIV_SEC"], 5)
	m.Insert(Registers["PLL2_DISABLE_3RD4TH"], 15)
	m.Insert(Registers["PLL2_CP"], 1)
	m.Insert(Registers["PLL2_LF_R2"], 0x22)
	m.Insert(Registers["PLL2_LF_R3"], 0x22)
	m.Insert(Registers["PLL2_LF_R4"], 0x22)
	m.Insert(Registers["PLL2_LF_C3"], 0x04)
	m.Insert(Registers["PLL2_LF_C4"], 0x04)
	m.Insert(Registers["PLL2_LF_C5"], 0x04)
	return m
}

// ReversePlan reconstructs a PLLPlan (and per-output realised frequencies)
// from a byte image previously produced by FreqMakeData, given the DPLL's
// external reference frequency. It is the inverse transform exercised by
// the codec round-trip property.
func ReversePlan(m *MaskedBytes, reference rational.Frequency) (plan.PLLPlan, [plan.NumOutputs]rational.Frequency) {
	fbPrediv := int64(m.Extract(Registers["DPLL_REF_FB_PRE_DIV"])) + 2
	whole := int64(m.Extract(Registers["DPLL_REF_DIV"]))
	num := m.Extract(Registers["DPLL_REF_NUM"])
	den := m.Extract(Registers["DPLL_REF_DEN"])
	fbDiv := rational.FromFraction(whole*int64(den)+int64(num), int64(den))

	pll1PFD := plan.XOFreq.MulInt64(2)
	baw := reference.MulInt64(2).MulInt64(fbPrediv).Mul(fbDiv)

	dpll := plan.DPLLPlan{
		BAW: baw, BAWTarget: baw,
		Reference: reference, PLL1PFD: pll1PFD,
		RefDiv: 1, FBPrediv: fbPrediv, FBDiv: fbDiv,
	}

	p := plan.PLLPlan{DPLL: dpll}
	if m.Extract(Registers["PLL2_PDN"]) == 0 {
		mWhole := int64(m.Extract(Registers["PLL2_NDIV"]))
		mNum := int64(m.Extract(Registers["PLL2_NUM"]))
		var mult rational.Frequency
		if m.Extract(Registers["APLL2_DEN_MODE"]) == 0 {
			mult = rational.FromFraction((mWhole<<plan.MultDenBits)+mNum, int64(1)<<plan.MultDenBits)
		} else {
			mDen := int64(m.Extract(Registers["PLL2_DEN"]))
			mult = rational.FromFraction(mWhole*mDen+mNum, mDen)
		}
		p.Multiplier = mult
		p.PLL2 = baw.DivInt64(plan.FPDivide).Mul(mult)
		p.PLL2Target = p.PLL2
	}

	p1 := int64(m.Extract(Registers["PLL2_P1"])) + 1
	p2 := int64(m.Extract(Registers["PLL2_P2"])) + 1

	var freqs [plan.NumOutputs]rational.Frequency
	for i := range p.Dividers {
		t := channelTags[i]
		if m.Extract(Registers[chName(t, "PD")]) == 1 {
			continue
		}
		mux := m.Extract(Registers[chName(t, "MUX")])
		stage1 := int64(m.Extract(Registers[outName(t, "DIV")])) + 1
		stage2 := int64(1)
		if i == plan.BigDivideIndex {
			stage2 = int64(m.Extract(Registers["OUT7_STG2_DIV"])) + 1
		}
		var pre int64
		var vco rational.Frequency
		switch mux {
		case 1:
			pre, vco = 0, baw
		case 2:
			pre, vco = p1, p.PLL2
		case 3:
			pre, vco = p2, p.PLL2
		}
		p.Dividers[i] = plan.Divider{Pre: pre, Stage1: stage1, Stage2: stage2}
		freqs[i] = vco.DivInt64(stage1).DivInt64(stage2)
		if pre != 0 {
			freqs[i] = freqs[i].DivInt64(pre)
		}
	}
	return p, freqs
}

func livePostDividers(p plan.PLLPlan) (p1, p2 int64) {
	p1, p2 = 2, 2
	seen := map[int64]bool{}
	var order []int64
	for _, d := range p.Dividers {
		if d.Pre != 0 && !seen[d.Pre] {
			seen[d.Pre] = true
			order = append(order, d.Pre)
		}
	}
	if len(order) > 0 {
		p1 = order[0]
	}
	if len(order) > 1 {
		p2 = order[1]
	}
	return p1, p2
}

// decomposeFraction splits f into an integer whole part and a reduced
// num/den remainder.
func decomposeFraction(f rational.Frequency) (whole int64, num, den uint64) {
	if f.IsZero() {
		return 0, 0, 1
	}
	n, d := f.Num().Int64(), f.Den().Int64()
	whole = n / d
	remNum := n - whole*d
	if remNum == 0 {
		return whole, 0, 1
	}
	return whole, uint64(remNum), uint64(d)
}

func emitLockDetect(m *MaskedBytes, dpll plan.DPLLPlan) {
	vco := dpll.BAW.DivInt64(24)

	baw := plan.PlanLockDetect(dpll.PLL1PFD, vco, plan.BAWLockWindow)
	m.Insert(Registers["BAW_LOCK_CNTSTRT"], uint64(baw.NLow))
	m.Insert(Registers["BAW_LOCK_VCO_CNTSTRT"], uint64(baw.NHigh))
	m.Insert(Registers["BAW_UNLK_CNTSTRT"], uint64(baw.NLow))
	m.Insert(Registers["BAW_UNLK_VCO_CNTSTRT"], uint64(baw.NHigh))

	dref := plan.PlanLockDetect(dpll.Reference, vco, plan.DPLLLockWindow)
	m.Insert(Registers["DPLL_REF_LOCKDET_CNTSTRT"], uint64(dref.NLow))
	m.Insert(Registers["DPLL_REF_LOCKDET_VCO_CNTSTRT"], uint64(dref.NHigh))
	m.Insert(Registers["DPLL_REF_UNLOCKDET_VCO_CNTSTRT"], uint64(dref.NHigh))
}
