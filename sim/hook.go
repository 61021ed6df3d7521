package sim

// Outcome describes what a transition did to the patient.
type Outcome string

const (
	OutcomeArrived   Outcome = "arrived"   // patient created
	OutcomeQueued    Outcome = "queued"    // placed in the reception or an office line
	OutcomeStarted   Outcome = "started"   // triage or consultation began
	OutcomeCompleted Outcome = "completed" // triage or consultation ended
	OutcomeRouted    Outcome = "routed"    // urgent patient sent straight to an idle office
	OutcomeDropped   Outcome = "dropped"   // rejected and discarded
	OutcomeRetried   Outcome = "retried"   // rejected, another attempt is scheduled
)

// Transition is what the network reports on every state change. IDs are
// empty when the entity is not involved.
type Transition struct {
	Time           float64
	Kind           EventKind
	Outcome        Outcome
	PatientID      string
	ReceptionistID string
	OfficeID       string
}

// Hook observes transitions. Implementations must not mutate simulation
// state; the core never formats or prints transitions itself.
type Hook interface {
	OnTransition(tr Transition)
}

// HookFunc adapts a function to Hook.
type HookFunc func(tr Transition)

// OnTransition calls f(tr).
func (f HookFunc) OnTransition(tr Transition) { f(tr) }
