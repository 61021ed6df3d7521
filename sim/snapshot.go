package sim

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// OfficeStats is the per-office part of a Snapshot.
type OfficeStats struct {
	ID                 string
	Served             int64
	OccupiedTime       float64 // sum of completed consultation durations
	Utilization        float64 // OccupiedTime / EndTime
	AverageQueueLength float64
	MaxQueueLength     int
	QueueLength        int // at EndTime
}

// ReceptionistStats is the per-receptionist part of a Snapshot.
type ReceptionistStats struct {
	ID     string
	Served int64
}

// Snapshot is a read-only copy of the run statistics.
type Snapshot struct {
	EndTime    float64
	Dispatched int64

	Arrivals           int64
	Served             int64
	DroppedAtReception int64
	DroppedAtOffice    int64
	Retried            int64

	AverageTriageWait  float64 // arrival to triage start
	AverageWaitingTime float64 // arrival to consultation start
	WaitingTimeStdDev  float64
	AverageSystemTime  float64 // arrival to departure
	SystemTimeStdDev   float64
	SystemTimeP50      float64
	SystemTimeP95      float64
	ConsultationsBegun int64

	ReceptionAvgQueue float64
	ReceptionMaxQueue int
	Offices           []OfficeStats
	Receptionists     []ReceptionistStats
	Census            Census
}

// Census counts where every arrived patient is at one instant.
type Census struct {
	Arrived        int64
	Waiting        int64 // reception queue, office lines, routed or awaiting retry
	InTriage       int64
	InConsultation int64
	Departed       int64
	Dropped        int64
}

// Balanced reports whether every arrival is accounted for exactly once.
func (c Census) Balanced() bool {
	return c.Arrived == c.Waiting+c.InTriage+c.InConsultation+c.Departed+c.Dropped
}

// Census returns the current patient census.
func (n *Network) Census() Census {
	c := Census{
		Arrived:  int64(n.arrivals.Value()),
		Departed: int64(n.served.Value()),
		Dropped:  int64(n.droppedReception.Value() + n.droppedOffice.Value()),
		Waiting:  int64(n.reception.Len() + n.pendingDirect + n.pendingRetry),
	}
	for _, r := range n.receptionists {
		if r.current != nil {
			c.InTriage++
		}
	}
	for _, o := range n.offices {
		c.Waiting += int64(o.Queue.Len())
		if o.current != nil {
			c.InConsultation++
		}
	}
	return c
}

// Snapshot copies the current statistics. It may be called mid-run from a
// hook or after Run returns.
func (n *Network) Snapshot() *Snapshot {
	now := n.sched.Now()
	s := &Snapshot{
		EndTime:            now,
		Dispatched:         n.sched.Dispatched(),
		Arrivals:           int64(n.arrivals.Value()),
		Served:             int64(n.served.Value()),
		DroppedAtReception: int64(n.droppedReception.Value()),
		DroppedAtOffice:    int64(n.droppedOffice.Value()),
		Retried:            int64(n.retried.Value()),
		AverageTriageWait:  n.triageWait.Mean(),
		AverageWaitingTime: n.waiting.Mean(),
		WaitingTimeStdDev:  n.waiting.StdDev(),
		AverageSystemTime:  n.system.Mean(),
		SystemTimeStdDev:   n.system.StdDev(),
		ConsultationsBegun: n.waiting.Count(),
		ReceptionAvgQueue:  n.reception.AverageLength(),
		ReceptionMaxQueue:  n.reception.MaxLength(),
		Census:             n.Census(),
	}
	if len(n.systemTimes) > 0 {
		sorted := slices.Clone(n.systemTimes)
		slices.Sort(sorted)
		s.SystemTimeP50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		s.SystemTimeP95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	}
	for _, o := range n.offices {
		st := OfficeStats{
			ID:                 o.ID,
			Served:             o.Served(),
			OccupiedTime:       o.OccupiedTime(),
			AverageQueueLength: o.Queue.AverageLength(),
			MaxQueueLength:     o.Queue.MaxLength(),
			QueueLength:        o.Queue.Len(),
		}
		if now > 0 {
			st.Utilization = st.OccupiedTime / now
		}
		s.Offices = append(s.Offices, st)
	}
	for _, r := range n.receptionists {
		s.Receptionists = append(s.Receptionists, ReceptionistStats{ID: r.ID, Served: r.Served()})
	}
	return s
}
