package trace

import "github.com/inference-sim/clinic-sim/sim"

// TraceLevel controls the verbosity of transition tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelTransitions captures every patient transition.
	TraceLevelTransitions TraceLevel = "transitions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:        true,
	TraceLevelTransitions: true,
	"":                    true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects transition records during a clinic run. It
// implements sim.Hook.
type SimulationTrace struct {
	Config      TraceConfig
	Transitions []TransitionRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:      config,
		Transitions: make([]TransitionRecord, 0),
	}
}

// Enabled reports whether records are kept.
func (st *SimulationTrace) Enabled() bool {
	return st.Config.Level == TraceLevelTransitions
}

// Record appends a transition record.
func (st *SimulationTrace) Record(record TransitionRecord) {
	st.Transitions = append(st.Transitions, record)
}

// OnTransition converts tr into a TransitionRecord. Nothing is kept when
// tracing is disabled.
func (st *SimulationTrace) OnTransition(tr sim.Transition) {
	if !st.Enabled() {
		return
	}
	st.Record(TransitionRecord{
		Time:           tr.Time,
		Kind:           tr.Kind.String(),
		Outcome:        string(tr.Outcome),
		PatientID:      tr.PatientID,
		ReceptionistID: tr.ReceptionistID,
		OfficeID:       tr.OfficeID,
	})
}

// ForPatient returns the records of one patient in recording order.
func (st *SimulationTrace) ForPatient(id string) []TransitionRecord {
	var out []TransitionRecord
	for _, r := range st.Transitions {
		if r.PatientID == id {
			out = append(out, r)
		}
	}
	return out
}
