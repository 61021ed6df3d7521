// Package trace records the patient transitions a clinic run reports through
// sim.Hook and aggregates them for reporting.
package trace

// TransitionRecord captures one patient state change.
type TransitionRecord struct {
	Time           float64
	Kind           string // event kind, e.g. "TriageEnd"
	Outcome        string // "queued", "started", "dropped", ...
	PatientID      string
	ReceptionistID string // empty unless a receptionist was involved
	OfficeID       string // empty unless an office was involved
}
