package main

import (
	"fmt"

	"github.com/rcls/gpsfreak/internal/config"
	"github.com/rcls/gpsfreak/plan"
	"github.com/rcls/gpsfreak/rational"
	"github.com/rcls/gpsfreak/regs"
)

// parseTargetFreqs parses up to plan.NumOutputs frequency strings into a
// Target, using profile's reference and PLL1 PFD defaults where set.
func parseTargetFreqs(profile config.Profile, args []string) (plan.Target, error) {
	if len(args) > plan.NumOutputs {
		return plan.Target{}, fmt.Errorf("at most %d output frequencies, got %d", plan.NumOutputs, len(args))
	}
	var freqs [plan.NumOutputs]rational.Frequency
	for i, a := range args {
		f, err := rational.ParseFrequency(a)
		if err != nil {
			return plan.Target{}, fmt.Errorf("output %d: %w", i, err)
		}
		freqs[i] = f
	}
	t := plan.NewTarget(freqs)
	if ref, err := profile.ReferenceFrequency(); err == nil && !ref.IsZero() {
		t.Reference = ref
	}
	if pfd, err := profile.PLL1PFDFrequency(); err == nil && !pfd.IsZero() {
		t.PLL1PFD = pfd
	}
	return t, nil
}

// runPlan computes a plan for the given frequencies and prints it, without
// touching any device.
func runPlan(profile config.Profile, args []string) error {
	t, err := parseTargetFreqs(profile, args)
	if err != nil {
		return err
	}
	p, err := plan.Plan(t)
	if err != nil {
		return err
	}
	p.Validate()
	printPlan(p)
	return nil
}

func printPlan(p plan.PLLPlan) {
	fmt.Printf("BAW:        %s\n", p.DPLL.BAW)
	whole, frac := p.DPLL.PLL1Ratio()
	fmt.Printf("PLL1 ratio: %d + %s\n", whole, frac)
	if !p.PLL2.IsZero() {
		fmt.Printf("PLL2:       %s (target %s, multiplier %s)\n", p.PLL2, p.PLL2Target, p.Multiplier)
	}
	for i, d := range p.Dividers {
		if d.Pre == 0 && d.Stage1 == 0 && d.Stage2 == 0 {
			continue
		}
		fmt.Printf("%-5s (slot %d):  pre=%d stage1=%d stage2=%d\n", regs.CookedChannelName(i), i, d.Pre, d.Stage1, d.Stage2)
	}
}
