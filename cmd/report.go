package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/inference-sim/clinic-sim/sim"
	"github.com/inference-sim/clinic-sim/sim/trace"
)

// printSnapshot writes the end-of-run statistics in a fixed plain-text layout.
func printSnapshot(w io.Writer, s *sim.Snapshot) {
	fmt.Fprintln(w, "=== Clinic Simulation ===")
	fmt.Fprintf(w, "End Time             : %.2f\n", s.EndTime)
	fmt.Fprintf(w, "Events Dispatched    : %d\n", s.Dispatched)
	fmt.Fprintf(w, "Arrivals             : %d\n", s.Arrivals)
	fmt.Fprintf(w, "Served               : %d\n", s.Served)
	fmt.Fprintf(w, "Dropped (reception)  : %d\n", s.DroppedAtReception)
	fmt.Fprintf(w, "Dropped (office)     : %d\n", s.DroppedAtOffice)
	if s.Retried > 0 {
		fmt.Fprintf(w, "Retries              : %d\n", s.Retried)
	}
	fmt.Fprintf(w, "Avg Triage Wait      : %.2f\n", s.AverageTriageWait)
	if s.ConsultationsBegun > 0 {
		fmt.Fprintf(w, "Avg Waiting Time     : %.2f (sd %.2f)\n", s.AverageWaitingTime, s.WaitingTimeStdDev)
	}
	if s.Served > 0 {
		fmt.Fprintf(w, "Avg System Time      : %.2f (sd %.2f)\n", s.AverageSystemTime, s.SystemTimeStdDev)
		fmt.Fprintf(w, "System Time p50/p95  : %.2f / %.2f\n", s.SystemTimeP50, s.SystemTimeP95)
	}
	fmt.Fprintf(w, "Reception Queue      : avg %.2f, max %d\n", s.ReceptionAvgQueue, s.ReceptionMaxQueue)

	fmt.Fprintln(w, "--- Offices ---")
	for _, o := range s.Offices {
		fmt.Fprintf(w, "%-10s served=%d occupied=%.2f util=%.1f%% avgQueue=%.2f maxQueue=%d\n",
			o.ID, o.Served, o.OccupiedTime, o.Utilization*100, o.AverageQueueLength, o.MaxQueueLength)
	}
	fmt.Fprintln(w, "--- Receptionists ---")
	for _, r := range s.Receptionists {
		fmt.Fprintf(w, "%-16s served=%d\n", r.ID, r.Served)
	}
	c := s.Census
	fmt.Fprintf(w, "Census at end        : waiting=%d triage=%d consultation=%d departed=%d dropped=%d\n",
		c.Waiting, c.InTriage, c.InConsultation, c.Departed, c.Dropped)
}

// printTraceSummary writes the aggregate view of a transition trace.
func printTraceSummary(w io.Writer, ts *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Trace Summary ===")
	fmt.Fprintf(w, "Transitions          : %d\n", ts.TotalTransitions)
	fmt.Fprintf(w, "Patients             : %d\n", ts.UniquePatients)
	fmt.Fprintf(w, "Urgent Direct        : %d\n", ts.UrgentDirectCount)
	fmt.Fprintf(w, "Retried / Dropped    : %d / %d\n", ts.RetriedCount, ts.DroppedCount)
	for _, id := range slices.Sorted(maps.Keys(ts.OfficeDistribution)) {
		fmt.Fprintf(w, "  %s: %d\n", id, ts.OfficeDistribution[id])
	}
}
