package sim

import (
	"fmt"
	"math"
)

// Drop policies for patients rejected by a full reception queue or by office
// assignment when no office qualifies.
const (
	// DropDiscard counts the rejection and discards the patient.
	DropDiscard = "discard"
	// DropRetry counts the rejection and re-attempts the same stage after
	// RetryDelay, up to MaxRetries times, before discarding.
	DropRetry = "retry"
)

// Patient ID generators.
const (
	IDSequential = "sequential"
	IDXid        = "xid"
)

// DropConfig groups the rejection policy.
type DropConfig struct {
	Policy     string  `yaml:"policy"`      // "discard" (default) or "retry"
	RetryDelay float64 `yaml:"retry_delay"` // virtual time before a retry (retry only)
	MaxRetries int     `yaml:"max_retries"` // retries per patient before discarding
}

// Config describes one clinic simulation run.
type Config struct {
	Horizon float64 `yaml:"horizon"` // stop time in virtual time units
	Seed    int64   `yaml:"seed"`

	NumReceptionists  int `yaml:"num_receptionists"`
	NumOffices        int `yaml:"num_offices"`
	QueueCapacity     int `yaml:"queue_capacity"`     // per-office line capacity
	ReceptionCapacity int `yaml:"reception_capacity"` // central reception queue capacity

	Arrival      DistSpec `yaml:"arrival"`      // inter-arrival time
	Triage       DistSpec `yaml:"triage"`       // reception service time
	Consultation DistSpec `yaml:"consultation"` // office service time

	UrgencyProbability float64 `yaml:"urgency_probability"`

	Routing     string     `yaml:"routing"`      // "shortest-queue" (default), "round-robin" or "random"
	Drop        DropConfig `yaml:"drop"`         // rejection handling
	IDGenerator string     `yaml:"id_generator"` // "sequential" (default) or "xid"
}

// DefaultConfig mirrors the reference clinic: exponential arrivals with mean
// 15, normal consultations N(20, 5), triage N(5, 1), one receptionist, five
// offices with lines of five, 30% urgent patients, horizon 500.
func DefaultConfig() Config {
	return Config{
		Horizon:            500,
		Seed:               42,
		NumReceptionists:   1,
		NumOffices:         5,
		QueueCapacity:      5,
		ReceptionCapacity:  50,
		Arrival:            DistSpec{Type: DistExponential, Params: map[string]float64{"rate": 1.0 / 15}},
		Triage:             DistSpec{Type: DistNormal, Params: map[string]float64{"mean": 5, "std_dev": 1}},
		Consultation:       DistSpec{Type: DistNormal, Params: map[string]float64{"mean": 20, "std_dev": 5}},
		UrgencyProbability: 0.3,
		Routing:            RoutingShortestQueue,
		Drop:               DropConfig{Policy: DropDiscard},
		IDGenerator:        IDSequential,
	}
}

// Validate rejects configurations the network cannot run. Every failure
// wraps ErrInvalidConfiguration.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
	}
	if math.IsNaN(c.Horizon) || math.IsInf(c.Horizon, 0) || c.Horizon < 0 {
		return invalid("horizon must be finite and >= 0, got %v", c.Horizon)
	}
	if c.NumReceptionists < 1 {
		return invalid("num_receptionists must be >= 1, got %d", c.NumReceptionists)
	}
	if c.NumOffices < 1 {
		return invalid("num_offices must be >= 1, got %d", c.NumOffices)
	}
	if c.QueueCapacity < 0 {
		return invalid("queue_capacity must be >= 0, got %d", c.QueueCapacity)
	}
	if c.ReceptionCapacity < 0 {
		return invalid("reception_capacity must be >= 0, got %d", c.ReceptionCapacity)
	}
	if math.IsNaN(c.UrgencyProbability) || c.UrgencyProbability < 0 || c.UrgencyProbability > 1 {
		return invalid("urgency_probability must be in [0, 1], got %v", c.UrgencyProbability)
	}
	if alwaysZero(c.Arrival) {
		return invalid("inter-arrival distribution %s never advances the clock", c.Arrival)
	}
	if !IsValidRoutingPolicy(c.Routing) {
		return invalid("unknown routing policy %q", c.Routing)
	}
	switch c.Drop.Policy {
	case "", DropDiscard:
	case DropRetry:
		if math.IsNaN(c.Drop.RetryDelay) || math.IsInf(c.Drop.RetryDelay, 0) || c.Drop.RetryDelay <= 0 {
			return invalid("drop.retry_delay must be > 0, got %v", c.Drop.RetryDelay)
		}
		if c.Drop.MaxRetries < 1 {
			return invalid("drop.max_retries must be >= 1, got %d", c.Drop.MaxRetries)
		}
	default:
		return invalid("unknown drop policy %q", c.Drop.Policy)
	}
	switch c.IDGenerator {
	case "", IDSequential, IDXid:
	default:
		return invalid("unknown id generator %q", c.IDGenerator)
	}
	return nil
}

// alwaysZero reports specs whose every non-negative draw is exactly zero.
// Used as an inter-arrival distribution they would stall the clock.
func alwaysZero(d DistSpec) bool {
	switch d.Type {
	case DistConstant:
		return d.Params["value"] <= 0
	case DistUniform:
		return d.Params["max"] <= 0
	case DistNormal:
		return d.Params["std_dev"] == 0 && d.Params["mean"] <= 0
	}
	return false
}
