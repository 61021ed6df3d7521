// Patient, Receptionist and Office: the entities the clinic network moves
// patients between. Entities hold state only; every transition is driven by
// the Network from inside an event handler.

package sim

import "fmt"

// PatientState tracks where a patient is in the clinic.
type PatientState string

const (
	StateArrived          PatientState = "arrived"
	StateWaitingReception PatientState = "waiting_reception"
	StateInTriage         PatientState = "in_triage"
	StateWaitingOffice    PatientState = "waiting_office"
	StateDirectToOffice   PatientState = "direct_to_office"
	StateInConsultation   PatientState = "in_consultation"
	StateDeparted         PatientState = "departed"
	StateDropped          PatientState = "dropped"
	// StateAwaitingRetry marks a rejected patient scheduled to try again.
	StateAwaitingRetry PatientState = "awaiting_retry"
)

// stamp is an optional timestamp.
type stamp struct {
	t   float64
	set bool
}

// Patient is created at an Arrival event and discarded once it departs or is
// dropped. Only aggregate statistics outlive it.
type Patient struct {
	ID      string
	State   PatientState
	Urgent  bool
	Retries int

	arrival           stamp
	triageStart       stamp
	triageEnd         stamp
	consultationStart stamp
	consultationEnd   stamp
}

// NewPatient creates a patient that arrived at now.
func NewPatient(id string, now float64) *Patient {
	return &Patient{
		ID:      id,
		State:   StateArrived,
		arrival: stamp{t: now, set: true},
	}
}

func (p *Patient) String() string { return p.ID }

// ArrivalTime returns when the patient entered the clinic.
func (p *Patient) ArrivalTime() float64 { return p.arrival.t }

// TriageStartTime returns the triage start and whether it is set.
func (p *Patient) TriageStartTime() (float64, bool) { return p.triageStart.t, p.triageStart.set }

// TriageEndTime returns the triage end and whether it is set.
func (p *Patient) TriageEndTime() (float64, bool) { return p.triageEnd.t, p.triageEnd.set }

// ConsultationStartTime returns the consultation start and whether it is set.
func (p *Patient) ConsultationStartTime() (float64, bool) {
	return p.consultationStart.t, p.consultationStart.set
}

// ConsultationEndTime returns the departure time and whether it is set.
func (p *Patient) ConsultationEndTime() (float64, bool) {
	return p.consultationEnd.t, p.consultationEnd.set
}

// lastStamp returns the latest timestamp recorded so far.
func (p *Patient) lastStamp() float64 {
	last := p.arrival.t
	for _, s := range []stamp{p.triageStart, p.triageEnd, p.consultationStart, p.consultationEnd} {
		if s.set {
			last = s.t
		}
	}
	return last
}

func (p *Patient) setStamp(dst *stamp, name string, t float64) error {
	if dst.set {
		return fmt.Errorf("%w: %s %s already set to %v", ErrTimestampOrder, p.ID, name, dst.t)
	}
	if last := p.lastStamp(); t < last {
		return fmt.Errorf("%w: %s %s=%v precedes %v", ErrTimestampOrder, p.ID, name, t, last)
	}
	*dst = stamp{t: t, set: true}
	return nil
}

// MarkTriageStart records the triage start.
func (p *Patient) MarkTriageStart(t float64) error {
	return p.setStamp(&p.triageStart, "triage-start", t)
}

// MarkTriageEnd records the triage end. Triage must have started.
func (p *Patient) MarkTriageEnd(t float64) error {
	if !p.triageStart.set {
		return fmt.Errorf("%w: %s triage-end before triage-start", ErrTimestampOrder, p.ID)
	}
	return p.setStamp(&p.triageEnd, "triage-end", t)
}

// MarkConsultationStart records the consultation start. Triage must be done.
func (p *Patient) MarkConsultationStart(t float64) error {
	if !p.triageEnd.set {
		return fmt.Errorf("%w: %s consultation-start before triage-end", ErrTimestampOrder, p.ID)
	}
	return p.setStamp(&p.consultationStart, "consultation-start", t)
}

// MarkConsultationEnd records the departure. Consultation must have started.
func (p *Patient) MarkConsultationEnd(t float64) error {
	if !p.consultationStart.set {
		return fmt.Errorf("%w: %s consultation-end before consultation-start", ErrTimestampOrder, p.ID)
	}
	return p.setStamp(&p.consultationEnd, "consultation-end", t)
}

// WaitingTime is consultation start minus arrival; ok is false until the
// consultation starts.
func (p *Patient) WaitingTime() (float64, bool) {
	if !p.consultationStart.set {
		return 0, false
	}
	return p.consultationStart.t - p.arrival.t, true
}

// SystemTime is departure minus arrival; ok is false until departure.
func (p *Patient) SystemTime() (float64, bool) {
	if !p.consultationEnd.set {
		return 0, false
	}
	return p.consultationEnd.t - p.arrival.t, true
}

// Receptionist triages one patient at a time.
type Receptionist struct {
	ID    string
	Index int

	current  *Patient
	reserved bool // a TriageStart is pending for this receptionist
	served   *Count
}

// NewReceptionist creates an idle receptionist.
func NewReceptionist(index int) *Receptionist {
	id := fmt.Sprintf("receptionist-%d", index+1)
	return &Receptionist{
		ID:     id,
		Index:  index,
		served: NewCount(id + " served"),
	}
}

// Available reports whether the receptionist can take a patient now.
func (r *Receptionist) Available() bool { return r.current == nil && !r.reserved }

// Current returns the patient in triage, or nil.
func (r *Receptionist) Current() *Patient { return r.current }

// Served returns the number of completed triages.
func (r *Receptionist) Served() int64 { return int64(r.served.Value()) }

// Office serves one patient at a time and owns a bounded line of waiting
// patients.
type Office struct {
	ID    string
	Index int
	Queue *BoundedQueue[*Patient]

	current   *Patient
	reserved  bool // a ConsultationStart is pending for this office
	busySince float64
	served    *Count
	occupied  *Count
}

// NewOffice creates an idle office whose line holds at most capacity patients.
func NewOffice(index, capacity int, clock Clock) (*Office, error) {
	id := fmt.Sprintf("office-%d", index+1)
	q, err := NewBoundedQueue[*Patient](id+" queue", capacity, clock)
	if err != nil {
		return nil, err
	}
	return &Office{
		ID:       id,
		Index:    index,
		Queue:    q,
		served:   NewCount(id + " served"),
		occupied: NewCount(id + " occupied time"),
	}, nil
}

// Available reports whether a consultation could start right now.
func (o *Office) Available() bool { return o.current == nil && !o.reserved }

// Current returns the patient in consultation, or nil.
func (o *Office) Current() *Patient { return o.current }

// Served returns the number of completed consultations.
func (o *Office) Served() int64 { return int64(o.served.Value()) }

// OccupiedTime returns the total time spent in completed consultations.
func (o *Office) OccupiedTime() float64 { return o.occupied.Value() }
