package plan

import "fmt"

// PlanningError reports that no feasible plan exists for a Target, naming
// the infeasibility the way the original tool's fail() calls do. It is the
// only error the planner's entry points return; internal invariant
// violations panic instead (see doc comment on Validate).
type PlanningError struct {
	Reason string
}

func (e *PlanningError) Error() string { return e.Reason }

func failf(format string, args ...any) error {
	return &PlanningError{Reason: fmt.Sprintf(format, args...)}
}
