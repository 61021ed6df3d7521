package sim

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
	"gopkg.in/yaml.v3"
)

// Distribution kinds accepted in DistSpec.Type.
const (
	DistExponential = "exponential"
	DistNormal      = "normal"
	DistUniform     = "uniform"
	DistConstant    = "constant"
)

// maxResampleAttempts bounds rejection sampling for a single draw.
const maxResampleAttempts = 10000

// DistSpec describes a distribution in configuration files.
//
//	type: normal
//	params: {mean: 20, std_dev: 5}
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params"`
}

// UnmarshalYAML replaces the whole spec so parameters of a default
// distribution never survive into one read from a file.
func (d *DistSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: distribution must be a mapping", value.Line)
	}
	for i := 0; i < len(value.Content); i += 2 {
		switch key := value.Content[i]; key.Value {
		case "type", "params":
		default:
			return fmt.Errorf("line %d: field %s not found in distribution", key.Line, key.Value)
		}
	}
	type plain DistSpec
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*d = DistSpec(p)
	return nil
}

func (d DistSpec) String() string {
	return fmt.Sprintf("%s%v", d.Type, d.Params)
}

// Sampler draws one value from a distribution bound to its own random source.
type Sampler interface {
	Sample() float64
}

type distuvSampler struct {
	rander interface{ Rand() float64 }
}

func (s *distuvSampler) Sample() float64 {
	return s.rander.Rand()
}

// ConstantSampler always returns the same value. Used for fixed service
// times and deterministic arrival streams.
type ConstantSampler struct {
	value float64
}

func (s *ConstantSampler) Sample() float64 {
	return s.value
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		v, ok := params[k]
		if !ok {
			return fmt.Errorf("%w: distribution requires parameter %q", ErrInvalidConfiguration, k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: parameter %q must be finite, got %v", ErrInvalidConfiguration, k, v)
		}
	}
	return nil
}

// NewSampler creates a Sampler from a DistSpec drawing from src.
// It rejects specs whose support has no non-negative values, since every
// sample feeds the scheduler as a delay.
func NewSampler(spec DistSpec, src rand.Source) (Sampler, error) {
	switch spec.Type {
	case DistExponential:
		if err := requireParam(spec.Params, "rate"); err != nil {
			return nil, err
		}
		rate := spec.Params["rate"]
		if rate <= 0 {
			return nil, fmt.Errorf("%w: exponential rate must be > 0, got %v", ErrInvalidConfiguration, rate)
		}
		return &distuvSampler{rander: distuv.Exponential{Rate: rate, Src: src}}, nil

	case DistNormal:
		if err := requireParam(spec.Params, "mean", "std_dev"); err != nil {
			return nil, err
		}
		mean, sd := spec.Params["mean"], spec.Params["std_dev"]
		if sd < 0 {
			return nil, fmt.Errorf("%w: normal std_dev must be >= 0, got %v", ErrInvalidConfiguration, sd)
		}
		if sd == 0 && mean < 0 {
			return nil, fmt.Errorf("%w: degenerate normal at %v has no non-negative support", ErrInvalidConfiguration, mean)
		}
		return &distuvSampler{rander: distuv.Normal{Mu: mean, Sigma: sd, Src: src}}, nil

	case DistUniform:
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		lo, hi := spec.Params["min"], spec.Params["max"]
		if lo > hi {
			return nil, fmt.Errorf("%w: uniform min %v > max %v", ErrInvalidConfiguration, lo, hi)
		}
		// [lo, 0] with lo < 0 only reaches zero with probability zero
		if hi < 0 || (hi == 0 && lo < 0) {
			return nil, fmt.Errorf("%w: uniform [%v, %v] has no non-negative support", ErrInvalidConfiguration, lo, hi)
		}
		return &distuvSampler{rander: distuv.Uniform{Min: lo, Max: hi, Src: src}}, nil

	case DistConstant:
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		v := spec.Params["value"]
		if v < 0 {
			return nil, fmt.Errorf("%w: constant value must be >= 0, got %v", ErrInvalidConfiguration, v)
		}
		return &ConstantSampler{value: v}, nil

	default:
		return nil, fmt.Errorf("%w: unknown distribution type %q", ErrInvalidConfiguration, spec.Type)
	}
}

// NonNegativeSampler resamples its inner distribution until the draw is
// non-negative, preserving the distribution's shape on [0, +inf).
type NonNegativeSampler struct {
	inner Sampler
}

// NewNonNegativeSampler wraps inner with rejection sampling.
func NewNonNegativeSampler(inner Sampler) *NonNegativeSampler {
	return &NonNegativeSampler{inner: inner}
}

// Sample returns the first non-negative draw. It fails instead of spinning
// forever when the admissible mass is vanishingly small.
func (s *NonNegativeSampler) Sample() (float64, error) {
	for i := 0; i < maxResampleAttempts; i++ {
		v := s.inner.Sample()
		if v >= 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: no non-negative sample after %d draws", ErrInvalidConfiguration, maxResampleAttempts)
}

// UrgencySampler decides whether a patient is urgent: a Uniform(0,1) draw
// at or below the configured probability.
type UrgencySampler struct {
	u           distuv.Uniform
	probability float64
}

// NewUrgencySampler builds an UrgencySampler. probability must be in [0, 1].
func NewUrgencySampler(probability float64, src rand.Source) (*UrgencySampler, error) {
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return nil, fmt.Errorf("%w: urgency probability must be in [0, 1], got %v", ErrInvalidConfiguration, probability)
	}
	return &UrgencySampler{
		u:           distuv.Uniform{Min: 0, Max: 1, Src: src},
		probability: probability,
	}, nil
}

// IsUrgent consumes one draw from the urgency stream. A zero probability
// never yields an urgent patient, even on an exact 0 draw.
func (s *UrgencySampler) IsUrgent() bool {
	v := s.u.Rand()
	return s.probability > 0 && v <= s.probability
}
