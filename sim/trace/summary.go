package trace

import "github.com/inference-sim/clinic-sim/sim"

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalTransitions   int
	UniquePatients     int
	DroppedCount       int
	RetriedCount       int
	UrgentDirectCount  int            // urgent patients sent straight to an idle office
	KindDistribution   map[string]int // event kind → transitions
	OfficeDistribution map[string]int // office ID → patients placed there (queued or routed)
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		KindDistribution:   make(map[string]int),
		OfficeDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	patients := make(map[string]bool)
	summary.TotalTransitions = len(st.Transitions)
	for _, r := range st.Transitions {
		patients[r.PatientID] = true
		summary.KindDistribution[r.Kind]++
		switch sim.Outcome(r.Outcome) {
		case sim.OutcomeDropped:
			summary.DroppedCount++
		case sim.OutcomeRetried:
			summary.RetriedCount++
		case sim.OutcomeRouted:
			summary.UrgentDirectCount++
			summary.OfficeDistribution[r.OfficeID]++
		case sim.OutcomeQueued:
			if r.OfficeID != "" {
				summary.OfficeDistribution[r.OfficeID]++
			}
		}
	}
	summary.UniquePatients = len(patients)

	return summary
}
