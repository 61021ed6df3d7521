package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat"
)

func TestTally_MatchesGonum(t *testing.T) {
	// GIVEN a set of observations
	xs := []float64{5, 15, 25, 7.5, 30, 0, 12}
	tally := NewTally("waiting")

	// WHEN each is recorded
	for _, x := range xs {
		tally.Update(x)
	}

	// THEN count, mean and variance agree with gonum
	mean, variance := stat.MeanVariance(xs, nil)
	assert.Equal(t, int64(len(xs)), tally.Count())
	assert.InDelta(t, mean, tally.Mean(), 1e-12)
	assert.InDelta(t, variance, tally.Variance(), 1e-9)
	assert.InDelta(t, math.Sqrt(variance), tally.StdDev(), 1e-9)
	assert.Equal(t, 0.0, tally.Min())
	assert.Equal(t, 30.0, tally.Max())
	assert.InDelta(t, 94.5, tally.Sum(), 1e-12)
}

func TestTally_Empty(t *testing.T) {
	tally := NewTally("empty")

	assert.Equal(t, int64(0), tally.Count())
	assert.Equal(t, 0.0, tally.Mean())
	assert.Equal(t, 0.0, tally.Variance())
}

func TestTally_SingleObservation_ZeroVariance(t *testing.T) {
	tally := NewTally("one")
	tally.Update(-4)

	assert.Equal(t, -4.0, tally.Mean())
	assert.Equal(t, 0.0, tally.Variance())
	assert.Equal(t, -4.0, tally.Min())
	assert.Equal(t, -4.0, tally.Max())
}

func TestCount_Accumulates(t *testing.T) {
	c := NewCount("occupied")
	c.Update(20)
	c.Update(2.5)
	c.Incr()

	assert.Equal(t, 23.5, c.Value())
}

func TestCount_NegativeIncrement_Panics(t *testing.T) {
	c := NewCount("served")

	assert.Panics(t, func() { c.Update(-1) })
	assert.Panics(t, func() { c.Update(math.NaN()) })
	assert.Equal(t, 0.0, c.Value())
}
