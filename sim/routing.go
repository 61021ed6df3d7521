package sim

import (
	"fmt"
	"math/rand/v2"
)

// Routing policy names accepted in Config.Routing.
const (
	RoutingShortestQueue = "shortest-queue"
	RoutingRoundRobin    = "round-robin"
	RoutingRandom        = "random"
)

var validRoutingPolicies = map[string]bool{
	"":                   true, // empty defaults to shortest-queue
	RoutingShortestQueue: true,
	RoutingRoundRobin:    true,
	RoutingRandom:        true,
}

// IsValidRoutingPolicy returns true if name is a recognized routing policy.
func IsValidRoutingPolicy(name string) bool {
	return validRoutingPolicies[name]
}

// RoutingDecision is the office chosen for a non-urgent patient.
type RoutingDecision struct {
	Office *Office // nil when no office qualifies
	Reason string  // human-readable explanation
}

// RoutingPolicy picks an office for a non-urgent patient after triage.
// Only offices whose line is strictly below capacity are eligible; a policy
// never returns an office that would be forced over capacity.
type RoutingPolicy interface {
	Route(p *Patient, offices []*Office) RoutingDecision
}

// eligible returns offices whose line can take one more patient.
func eligible(offices []*Office) []*Office {
	out := make([]*Office, 0, len(offices))
	for _, o := range offices {
		if !o.Queue.IsFull() {
			out = append(out, o)
		}
	}
	return out
}

// ShortestQueue routes to the office with the shortest line among eligible
// offices. Ties are broken by first occurrence in office order (lowest index).
type ShortestQueue struct{}

// Route implements RoutingPolicy for ShortestQueue.
func (ShortestQueue) Route(_ *Patient, offices []*Office) RoutingDecision {
	var target *Office
	for _, o := range offices {
		if o.Queue.IsFull() {
			continue
		}
		if target == nil || o.Queue.Len() < target.Queue.Len() {
			target = o
		}
	}
	if target == nil {
		return RoutingDecision{Reason: "shortest-queue (all lines full)"}
	}
	return RoutingDecision{
		Office: target,
		Reason: fmt.Sprintf("shortest-queue (len=%d)", target.Queue.Len()),
	}
}

// RoundRobin cycles through offices, skipping full lines.
type RoundRobin struct {
	counter int
}

// Route implements RoutingPolicy for RoundRobin.
func (rr *RoundRobin) Route(_ *Patient, offices []*Office) RoutingDecision {
	n := len(offices)
	for i := 0; i < n; i++ {
		o := offices[(rr.counter+i)%n]
		if !o.Queue.IsFull() {
			rr.counter = (rr.counter + i + 1) % n
			return RoutingDecision{Office: o, Reason: fmt.Sprintf("round-robin[%d]", o.Index)}
		}
	}
	return RoutingDecision{Reason: "round-robin (all lines full)"}
}

// RandomEligible picks uniformly among eligible offices using the router
// RNG stream.
type RandomEligible struct {
	rng *rand.Rand
}

// Route implements RoutingPolicy for RandomEligible.
func (r *RandomEligible) Route(_ *Patient, offices []*Office) RoutingDecision {
	candidates := eligible(offices)
	if len(candidates) == 0 {
		return RoutingDecision{Reason: "random (all lines full)"}
	}
	o := candidates[r.rng.IntN(len(candidates))]
	return RoutingDecision{
		Office: o,
		Reason: fmt.Sprintf("random (1 of %d)", len(candidates)),
	}
}

// NewRoutingPolicy creates a routing policy by name. Empty string defaults
// to shortest-queue. rng is only used by the random policy.
func NewRoutingPolicy(name string, rng *rand.Rand) (RoutingPolicy, error) {
	switch name {
	case "", RoutingShortestQueue:
		return ShortestQueue{}, nil
	case RoutingRoundRobin:
		return &RoundRobin{}, nil
	case RoutingRandom:
		if rng == nil {
			return nil, fmt.Errorf("%w: random routing requires an RNG", ErrInvalidConfiguration)
		}
		return &RandomEligible{rng: rng}, nil
	default:
		return nil, fmt.Errorf("%w: unknown routing policy %q", ErrInvalidConfiguration, name)
	}
}

// urgentTarget picks an office for an urgent patient, bypassing line
// ordering: the first idle office starts immediately; otherwise the first
// office with room takes the patient at the head of its line. direct is true
// in the first case. A nil office means no office can take the patient.
func urgentTarget(offices []*Office) (target *Office, direct bool) {
	for _, o := range offices {
		if o.Available() {
			return o, true
		}
	}
	for _, o := range offices {
		if !o.Queue.IsFull() {
			return o, false
		}
	}
	return nil, false
}
