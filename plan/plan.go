package plan

// Plan is the planner's single entry point: given a Target it produces a
// fully specified PLLPlan or a PlanningError naming the infeasibility.
func Plan(t Target) (PLLPlan, error) {
	if t.Reference.IsZero() {
		t.Reference = RefFreqDef
	}
	if t.PLL1PFD.IsZero() {
		t.PLL1PFD = XOFreq.MulInt64(2)
	}

	dpll, err := PlanDPLL(t)
	if err != nil {
		return PLLPlan{}, err
	}
	p, err := PlanPLL2(t, dpll)
	if err != nil {
		return PLLPlan{}, err
	}
	p.Validate()
	return p, nil
}
