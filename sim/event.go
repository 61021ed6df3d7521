package sim

import "fmt"

// EventKind tags the closed set of events the clinic network handles.
type EventKind int

const (
	// EventArrival creates a patient and feeds the reception queue.
	EventArrival EventKind = iota
	// EventTriageStart takes the reception head into triage.
	EventTriageStart
	// EventTriageEnd releases the receptionist and routes the patient.
	EventTriageEnd
	// EventConsultationStart begins service at an office.
	EventConsultationStart
	// EventConsultationEnd discharges the patient from an office.
	EventConsultationEnd
	// EventRetry re-attempts a stage that previously rejected the patient.
	EventRetry
)

var eventKindNames = map[EventKind]string{
	EventArrival:           "Arrival",
	EventTriageStart:       "TriageStart",
	EventTriageEnd:         "TriageEnd",
	EventConsultationStart: "ConsultationStart",
	EventConsultationEnd:   "ConsultationEnd",
	EventRetry:             "Retry",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// RetryStage names the stage a Retry event re-attempts.
type RetryStage int

const (
	// RetryReception re-inserts the patient into the reception queue.
	RetryReception RetryStage = iota
	// RetryOffice re-runs office assignment.
	RetryOffice
)

func (s RetryStage) String() string {
	switch s {
	case RetryReception:
		return "reception"
	case RetryOffice:
		return "office"
	default:
		return fmt.Sprintf("RetryStage(%d)", int(s))
	}
}

// Event is a scheduled occurrence. Fields are set by the constructor helpers
// and never modified after Schedule.
type Event struct {
	time float64
	seq  uint64

	Kind         EventKind
	Patient      *Patient
	Receptionist *Receptionist
	Office       *Office
	Stage        RetryStage // EventRetry only
}

// Timestamp returns the virtual time the event fires at. Zero until scheduled.
func (e *Event) Timestamp() float64 { return e.time }

// Seq returns the insertion sequence number used to break timestamp ties.
func (e *Event) Seq() uint64 { return e.seq }

func (e *Event) String() string {
	return fmt.Sprintf("%s@%.4f#%d", e.Kind, e.time, e.seq)
}

// NewArrivalEvent creates the arrival event that spawns the next patient.
func NewArrivalEvent() *Event {
	return &Event{Kind: EventArrival}
}

// NewTriageStartEvent assigns the reception head to r.
func NewTriageStartEvent(r *Receptionist) *Event {
	return &Event{Kind: EventTriageStart, Receptionist: r}
}

// NewTriageEndEvent finishes triage of p at r.
func NewTriageEndEvent(p *Patient, r *Receptionist) *Event {
	return &Event{Kind: EventTriageEnd, Patient: p, Receptionist: r}
}

// NewConsultationStartEvent begins service at o. A nil p means "take the
// head of o's queue"; a non-nil p is an urgent patient routed directly.
func NewConsultationStartEvent(p *Patient, o *Office) *Event {
	return &Event{Kind: EventConsultationStart, Patient: p, Office: o}
}

// NewConsultationEndEvent finishes service of p at o.
func NewConsultationEndEvent(p *Patient, o *Office) *Event {
	return &Event{Kind: EventConsultationEnd, Patient: p, Office: o}
}

// NewRetryEvent re-attempts stage for a previously rejected patient.
func NewRetryEvent(p *Patient, stage RetryStage) *Event {
	return &Event{Kind: EventRetry, Patient: p, Stage: stage}
}
