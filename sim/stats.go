package sim

import (
	"fmt"
	"math"
)

// Count is a monotonic total such as patients served or time occupied.
type Count struct {
	Name  string
	value float64
}

// NewCount creates a zeroed Count.
func NewCount(name string) *Count {
	return &Count{Name: name}
}

// Update adds n. Counts never decrease, so a negative n is a programming error.
func (c *Count) Update(n float64) {
	if n < 0 || math.IsNaN(n) {
		panic(fmt.Sprintf("Count %q: increment must be >= 0, got %v", c.Name, n))
	}
	c.value += n
}

// Incr adds one.
func (c *Count) Incr() { c.value++ }

// Value returns the running total.
func (c *Count) Value() float64 { return c.value }

// Tally accumulates count, mean and variance of a sampled quantity using
// Welford's online algorithm.
type Tally struct {
	Name  string
	n     int64
	mean  float64
	m2    float64
	min   float64
	max   float64
	total float64
}

// NewTally creates an empty Tally.
func NewTally(name string) *Tally {
	return &Tally{Name: name}
}

// Update records one observation.
func (t *Tally) Update(x float64) {
	t.n++
	if t.n == 1 {
		t.min, t.max = x, x
	} else {
		t.min = math.Min(t.min, x)
		t.max = math.Max(t.max, x)
	}
	t.total += x
	delta := x - t.mean
	t.mean += delta / float64(t.n)
	t.m2 += delta * (x - t.mean)
}

// Count returns the number of observations.
func (t *Tally) Count() int64 { return t.n }

// Mean returns the sample mean, 0 when empty.
func (t *Tally) Mean() float64 { return t.mean }

// Sum returns the sum of all observations.
func (t *Tally) Sum() float64 { return t.total }

// Variance returns the unbiased sample variance, 0 with fewer than two
// observations.
func (t *Tally) Variance() float64 {
	if t.n < 2 {
		return 0
	}
	return t.m2 / float64(t.n-1)
}

// StdDev returns the sample standard deviation.
func (t *Tally) StdDev() float64 { return math.Sqrt(t.Variance()) }

// Min returns the smallest observation, 0 when empty.
func (t *Tally) Min() float64 { return t.min }

// Max returns the largest observation, 0 when empty.
func (t *Tally) Max() float64 { return t.max }
