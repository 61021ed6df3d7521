package sim

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Handler processes a dispatched event. A non-nil error aborts the run.
type Handler interface {
	Handle(ev *Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev *Event) error

// Handle calls f(ev).
func (f HandlerFunc) Handle(ev *Event) error { return f(ev) }

// EventQueue implements heap.Interface and orders events by (timestamp, seq).
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type EventQueue []*Event

func (eq EventQueue) Len() int { return len(eq) }

func (eq EventQueue) Less(i, j int) bool {
	if eq[i].time != eq[j].time {
		return eq[i].time < eq[j].time
	}
	return eq[i].seq < eq[j].seq
}

func (eq EventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(*Event))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*eq = old[0 : n-1]
	return item
}

// Scheduler is the future-event list and virtual clock. It is single
// threaded: a handler runs to completion before the next event is popped.
type Scheduler struct {
	clock      float64
	nextSeq    uint64
	events     EventQueue
	dispatched int64
}

// NewScheduler creates a Scheduler with its clock at zero.
func NewScheduler() *Scheduler {
	s := &Scheduler{events: make(EventQueue, 0)}
	heap.Init(&s.events)
	return s
}

// Now returns the current virtual time.
func (s *Scheduler) Now() float64 { return s.clock }

// Pending returns the number of events in the future-event list.
func (s *Scheduler) Pending() int { return len(s.events) }

// Dispatched returns how many events have been handled.
func (s *Scheduler) Dispatched() int64 { return s.dispatched }

// Schedule inserts ev at Now()+delay. A negative or non-finite delay is a
// configuration error and is never clamped.
func (s *Scheduler) Schedule(ev *Event, delay float64) error {
	if ev == nil {
		return fmt.Errorf("%w: cannot schedule nil event", ErrNullEntityReference)
	}
	if delay < 0 || math.IsNaN(delay) || math.IsInf(delay, 0) {
		return fmt.Errorf("%w: %s scheduled with delay %v", ErrInvalidConfiguration, ev.Kind, delay)
	}
	if ev.seq != 0 {
		return fmt.Errorf("%w: %s is already scheduled", ErrInvalidConfiguration, ev)
	}
	s.nextSeq++
	ev.time = s.clock + delay
	ev.seq = s.nextSeq
	heap.Push(&s.events, ev)
	return nil
}

// Peek returns the next event without removing it, or nil.
func (s *Scheduler) Peek() *Event {
	if len(s.events) == 0 {
		return nil
	}
	return s.events[0]
}

// Run dispatches events in (timestamp, insertion) order until the list is
// empty or the next event lies beyond stopTime. When stopping on the horizon
// the clock is advanced to stopTime so time-weighted statistics cover the
// whole window.
func (s *Scheduler) Run(stopTime float64, h Handler) error {
	if h == nil {
		return fmt.Errorf("%w: scheduler requires a handler", ErrNullEntityReference)
	}
	if stopTime < s.clock || math.IsNaN(stopTime) {
		return fmt.Errorf("%w: stop time %v before current time %v", ErrInvalidConfiguration, stopTime, s.clock)
	}
	for len(s.events) > 0 {
		if s.events[0].time > stopTime {
			s.clock = stopTime
			logrus.Debugf("[t=%.4f] Horizon reached, %d events pending", s.clock, len(s.events))
			return nil
		}
		ev := heap.Pop(&s.events).(*Event)
		s.clock = ev.time
		s.dispatched++
		logrus.Debugf("[t=%.4f] Executing %s", s.clock, ev)
		if err := h.Handle(ev); err != nil {
			return fmt.Errorf("handling %s: %w", ev, err)
		}
	}
	logrus.Debugf("[t=%.4f] Future-event list exhausted", s.clock)
	return nil
}
