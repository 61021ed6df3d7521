package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/clinic-sim/sim/idgen"
)

// Network owns the clinic: the reception queue, receptionists, offices,
// samplers and statistics. All of its state is mutated from Handle, which
// the Scheduler calls one event at a time.
type Network struct {
	cfg   Config
	sched *Scheduler
	rng   *PartitionedRNG
	ids   idgen.Generator
	hook  Hook

	arrival      *NonNegativeSampler
	triage       *NonNegativeSampler
	consultation *NonNegativeSampler
	urgency      *UrgencySampler
	routing      RoutingPolicy

	reception     *BoundedQueue[*Patient]
	receptionists []*Receptionist
	offices       []*Office

	arrivals         *Count
	served           *Count
	droppedReception *Count
	droppedOffice    *Count
	retried          *Count
	triageWait       *Tally // arrival → triage start
	waiting          *Tally // arrival → consultation start
	system           *Tally // arrival → departure
	systemTimes      []float64

	pendingTriage int // TriageStart events scheduled but not yet fired
	pendingDirect int // urgent patients routed to an idle office, not yet started
	pendingRetry  int // rejected patients waiting for their retry event

	started bool
}

// Option customizes a Network.
type Option func(*Network)

// WithHook installs the observability hook.
func WithHook(h Hook) Option {
	return func(n *Network) { n.hook = h }
}

// WithIDGenerator overrides the patient ID generator chosen by the config.
func WithIDGenerator(g idgen.Generator) Option {
	return func(n *Network) { n.ids = g }
}

// NewNetwork validates cfg and builds the clinic. Construction failures wrap
// ErrInvalidConfiguration.
func NewNetwork(cfg Config, opts ...Option) (*Network, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := &Network{
		cfg:              cfg,
		sched:            NewScheduler(),
		rng:              NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
		arrivals:         NewCount("arrivals"),
		served:           NewCount("served"),
		droppedReception: NewCount("dropped at reception"),
		droppedOffice:    NewCount("dropped at office assignment"),
		retried:          NewCount("retries"),
		triageWait:       NewTally("triage waiting time"),
		waiting:          NewTally("waiting time"),
		system:           NewTally("system time"),
	}
	if cfg.IDGenerator == IDXid {
		n.ids = idgen.NewXid("patient")
	} else {
		n.ids = idgen.NewSequential("patient")
	}
	for _, opt := range opts {
		opt(n)
	}

	var err error
	if n.arrival, err = n.nonNegative("arrival", cfg.Arrival, SubsystemArrival); err != nil {
		return nil, err
	}
	if n.triage, err = n.nonNegative("triage", cfg.Triage, SubsystemTriage); err != nil {
		return nil, err
	}
	if n.consultation, err = n.nonNegative("consultation", cfg.Consultation, SubsystemConsultation); err != nil {
		return nil, err
	}
	if n.urgency, err = NewUrgencySampler(cfg.UrgencyProbability, n.rng.ForSubsystem(SubsystemUrgency)); err != nil {
		return nil, err
	}
	if n.routing, err = NewRoutingPolicy(cfg.Routing, n.rng.ForSubsystem(SubsystemRouter)); err != nil {
		return nil, err
	}

	if n.reception, err = NewBoundedQueue[*Patient]("reception queue", cfg.ReceptionCapacity, n.sched); err != nil {
		return nil, err
	}
	for i := 0; i < cfg.NumReceptionists; i++ {
		n.receptionists = append(n.receptionists, NewReceptionist(i))
	}
	for i := 0; i < cfg.NumOffices; i++ {
		o, err := NewOffice(i, cfg.QueueCapacity, n.sched)
		if err != nil {
			return nil, err
		}
		n.offices = append(n.offices, o)
	}
	return n, nil
}

func (n *Network) nonNegative(name string, spec DistSpec, subsystem string) (*NonNegativeSampler, error) {
	s, err := NewSampler(spec, n.rng.ForSubsystem(subsystem))
	if err != nil {
		return nil, fmt.Errorf("%s distribution: %w", name, err)
	}
	return NewNonNegativeSampler(s), nil
}

// Now returns the current virtual time.
func (n *Network) Now() float64 { return n.sched.Now() }

// Offices returns the offices in index order. Callers must treat them as
// read-only.
func (n *Network) Offices() []*Office { return n.offices }

// Receptionists returns the receptionists in index order. Callers must treat
// them as read-only.
func (n *Network) Receptionists() []*Receptionist { return n.receptionists }

// ReceptionQueue returns the central reception queue. Read-only for callers.
func (n *Network) ReceptionQueue() *BoundedQueue[*Patient] { return n.reception }

// Start schedules the first arrival at time zero. Run calls it; it is
// exported for callers that drive the scheduler themselves.
func (n *Network) Start() error {
	if n.started {
		return fmt.Errorf("%w: network already started", ErrInvalidConfiguration)
	}
	n.started = true
	return n.sched.Schedule(NewArrivalEvent(), 0)
}

// Run simulates up to the configured horizon and returns the statistics
// snapshot. A network runs once.
func (n *Network) Run() (*Snapshot, error) {
	if err := n.Start(); err != nil {
		return nil, err
	}
	logrus.Infof("Starting clinic simulation: horizon=%v seed=%d receptionists=%d offices=%d capacity=%d",
		n.cfg.Horizon, n.cfg.Seed, n.cfg.NumReceptionists, n.cfg.NumOffices, n.cfg.QueueCapacity)
	if err := n.sched.Run(n.cfg.Horizon, n); err != nil {
		return nil, err
	}
	snap := n.Snapshot()
	if dropped := snap.DroppedAtReception + snap.DroppedAtOffice; dropped > 0 {
		logrus.Warnf("%d of %d patients were dropped", dropped, snap.Arrivals)
	}
	logrus.Infof("[t=%.4f] Simulation ended after %d events", n.sched.Now(), n.sched.Dispatched())
	return snap, nil
}

// Handle dispatches ev to the handler for its kind. It implements Handler.
func (n *Network) Handle(ev *Event) error {
	switch ev.Kind {
	case EventArrival:
		return n.handleArrival()
	case EventTriageStart:
		return n.handleTriageStart(ev)
	case EventTriageEnd:
		return n.handleTriageEnd(ev)
	case EventConsultationStart:
		return n.handleConsultationStart(ev)
	case EventConsultationEnd:
		return n.handleConsultationEnd(ev)
	case EventRetry:
		return n.handleRetry(ev)
	default:
		return fmt.Errorf("%w: unhandled event kind %s", ErrInvalidConfiguration, ev.Kind)
	}
}

func (n *Network) handleArrival() error {
	now := n.sched.Now()
	p := NewPatient(n.ids.Generate(), now)
	n.arrivals.Incr()
	n.emit(EventArrival, OutcomeArrived, p, nil, nil)
	logrus.Debugf("<< Arrival: %s at %.4f", p.ID, now)

	if err := n.admitToReception(EventArrival, p); err != nil {
		return err
	}

	// Arrivals stop at the horizon; patients already inside keep flowing
	// until the scheduler stops.
	gap, err := n.arrival.Sample()
	if err != nil {
		return err
	}
	if now+gap < n.cfg.Horizon {
		return n.sched.Schedule(NewArrivalEvent(), gap)
	}
	return nil
}

// admitToReception puts p in the reception queue, or rejects it when full.
func (n *Network) admitToReception(kind EventKind, p *Patient) error {
	if err := n.reception.Insert(p); err != nil {
		if errors.Is(err, ErrQueueFull) {
			return n.reject(kind, p, RetryReception)
		}
		return err
	}
	p.State = StateWaitingReception
	n.emit(kind, OutcomeQueued, p, nil, nil)
	return n.dispatchTriage()
}

// dispatchTriage reserves idle receptionists for queued patients that no
// pending TriageStart already covers.
func (n *Network) dispatchTriage() error {
	for _, r := range n.receptionists {
		if n.pendingTriage >= n.reception.Len() {
			return nil
		}
		if !r.Available() {
			continue
		}
		r.reserved = true
		n.pendingTriage++
		if err := n.sched.Schedule(NewTriageStartEvent(r), 0); err != nil {
			return err
		}
	}
	return nil
}

func (n *Network) handleTriageStart(ev *Event) error {
	r := ev.Receptionist
	if r == nil {
		return fmt.Errorf("%w: %s without receptionist", ErrNullEntityReference, ev.Kind)
	}
	r.reserved = false
	n.pendingTriage--
	if r.current != nil {
		return fmt.Errorf("%w: %s is triaging %s", ErrResourceBusy, r.ID, r.current.ID)
	}
	p, err := n.reception.RemoveFirst()
	if err != nil {
		return err
	}
	if err := p.MarkTriageStart(n.sched.Now()); err != nil {
		return err
	}
	r.current = p
	p.State = StateInTriage
	n.triageWait.Update(n.sched.Now() - p.ArrivalTime())
	n.emit(ev.Kind, OutcomeStarted, p, r, nil)

	d, err := n.triage.Sample()
	if err != nil {
		return err
	}
	return n.sched.Schedule(NewTriageEndEvent(p, r), d)
}

func (n *Network) handleTriageEnd(ev *Event) error {
	p, r := ev.Patient, ev.Receptionist
	if p == nil || r == nil {
		return fmt.Errorf("%w: %s requires patient and receptionist", ErrNullEntityReference, ev.Kind)
	}
	if r.current != p {
		return fmt.Errorf("%w: %s is not triaging %s", ErrNullEntityReference, r.ID, p.ID)
	}
	if err := p.MarkTriageEnd(n.sched.Now()); err != nil {
		return err
	}
	r.current = nil
	r.served.Incr()
	p.Urgent = n.urgency.IsUrgent()
	n.emit(ev.Kind, OutcomeCompleted, p, r, nil)
	logrus.Debugf("<< TriageEnd: %s at %s, urgent=%v", p.ID, r.ID, p.Urgent)

	if err := n.assignOffice(ev.Kind, p); err != nil {
		return err
	}
	return n.dispatchTriage()
}

// assignOffice routes a triaged patient. Urgent patients bypass line
// ordering; everyone else goes through the routing policy.
func (n *Network) assignOffice(kind EventKind, p *Patient) error {
	if p.Urgent {
		o, direct := urgentTarget(n.offices)
		switch {
		case o == nil:
			return n.reject(kind, p, RetryOffice)
		case direct:
			o.reserved = true
			n.pendingDirect++
			p.State = StateDirectToOffice
			n.emit(kind, OutcomeRouted, p, nil, o)
			return n.sched.Schedule(NewConsultationStartEvent(p, o), 0)
		default:
			// behind urgent patients already waiting, ahead of everyone else
			if err := o.Queue.InsertBefore(p, func(q *Patient) bool { return !q.Urgent }); err != nil {
				return err
			}
			p.State = StateWaitingOffice
			n.emit(kind, OutcomeQueued, p, nil, o)
			return nil
		}
	}

	decision := n.routing.Route(p, n.offices)
	if decision.Office == nil {
		logrus.Debugf("%s: no office for %s", decision.Reason, p.ID)
		return n.reject(kind, p, RetryOffice)
	}
	o := decision.Office
	if err := o.Queue.Insert(p); err != nil {
		return fmt.Errorf("routing chose %s: %w", o.ID, err)
	}
	p.State = StateWaitingOffice
	n.emit(kind, OutcomeQueued, p, nil, o)
	logrus.Debugf("%s -> %s: %s", p.ID, o.ID, decision.Reason)
	return n.startNextConsultation(o)
}

// startNextConsultation schedules an immediate ConsultationStart for the
// head of o's line when o is idle.
func (n *Network) startNextConsultation(o *Office) error {
	if !o.Available() || o.Queue.IsEmpty() {
		return nil
	}
	o.reserved = true
	return n.sched.Schedule(NewConsultationStartEvent(nil, o), 0)
}

func (n *Network) handleConsultationStart(ev *Event) error {
	o := ev.Office
	if o == nil {
		return fmt.Errorf("%w: %s without office", ErrNullEntityReference, ev.Kind)
	}
	o.reserved = false
	if o.current != nil {
		return fmt.Errorf("%w: %s is seeing %s", ErrResourceBusy, o.ID, o.current.ID)
	}
	p := ev.Patient
	if p != nil {
		n.pendingDirect--
	} else {
		var err error
		if p, err = o.Queue.RemoveFirst(); err != nil {
			return err
		}
	}
	now := n.sched.Now()
	if err := p.MarkConsultationStart(now); err != nil {
		return err
	}
	o.current = p
	o.busySince = now
	p.State = StateInConsultation
	wait, _ := p.WaitingTime()
	n.waiting.Update(wait)
	n.emit(ev.Kind, OutcomeStarted, p, nil, o)

	d, err := n.consultation.Sample()
	if err != nil {
		return err
	}
	return n.sched.Schedule(NewConsultationEndEvent(p, o), d)
}

func (n *Network) handleConsultationEnd(ev *Event) error {
	p, o := ev.Patient, ev.Office
	if p == nil || o == nil {
		return fmt.Errorf("%w: %s requires patient and office", ErrNullEntityReference, ev.Kind)
	}
	if o.current != p {
		return fmt.Errorf("%w: %s is not seeing %s", ErrNullEntityReference, o.ID, p.ID)
	}
	now := n.sched.Now()
	if err := p.MarkConsultationEnd(now); err != nil {
		return err
	}
	o.served.Incr()
	o.occupied.Update(now - o.busySince)
	n.served.Incr()
	sys, _ := p.SystemTime()
	n.system.Update(sys)
	n.systemTimes = append(n.systemTimes, sys)
	p.State = StateDeparted
	o.current = nil
	n.emit(ev.Kind, OutcomeCompleted, p, nil, o)
	logrus.Debugf("<< Departure: %s from %s, system time %.4f", p.ID, o.ID, sys)

	return n.startNextConsultation(o)
}

func (n *Network) handleRetry(ev *Event) error {
	p := ev.Patient
	if p == nil {
		return fmt.Errorf("%w: %s without patient", ErrNullEntityReference, ev.Kind)
	}
	n.pendingRetry--
	switch ev.Stage {
	case RetryReception:
		return n.admitToReception(ev.Kind, p)
	case RetryOffice:
		return n.assignOffice(ev.Kind, p)
	default:
		return fmt.Errorf("%w: unknown retry stage %s", ErrInvalidConfiguration, ev.Stage)
	}
}

// reject applies the drop policy to a patient no queue could take.
func (n *Network) reject(kind EventKind, p *Patient, stage RetryStage) error {
	if n.cfg.Drop.Policy == DropRetry && p.Retries < n.cfg.Drop.MaxRetries {
		p.Retries++
		p.State = StateAwaitingRetry
		n.retried.Incr()
		n.pendingRetry++
		n.emit(kind, OutcomeRetried, p, nil, nil)
		logrus.Debugf("%s rejected at %s, retry %d/%d", p.ID, stage, p.Retries, n.cfg.Drop.MaxRetries)
		return n.sched.Schedule(NewRetryEvent(p, stage), n.cfg.Drop.RetryDelay)
	}
	p.State = StateDropped
	if stage == RetryReception {
		n.droppedReception.Incr()
	} else {
		n.droppedOffice.Incr()
	}
	n.emit(kind, OutcomeDropped, p, nil, nil)
	logrus.Debugf("%s dropped at %s", p.ID, stage)
	return nil
}

func (n *Network) emit(kind EventKind, outcome Outcome, p *Patient, r *Receptionist, o *Office) {
	if n.hook == nil {
		return
	}
	tr := Transition{Time: n.sched.Now(), Kind: kind, Outcome: outcome}
	if p != nil {
		tr.PatientID = p.ID
	}
	if r != nil {
		tr.ReceptionistID = r.ID
	}
	if o != nil {
		tr.OfficeID = o.ID
	}
	n.hook.OnTransition(tr)
}
