package idgen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inference-sim/clinic-sim/sim/idgen"
)

func TestSequentialDeterministic(t *testing.T) {
	g := idgen.NewSequential("patient")

	for _, want := range []string{"patient-1", "patient-2", "patient-3"} {
		assert.Equal(t, want, g.Generate())
	}
}

func TestIndependentGenerators(t *testing.T) {
	g1 := idgen.NewSequential("p")
	g2 := idgen.NewSequential("p")

	assert.Equal(t, "p-1", g1.Generate())
	assert.Equal(t, "p-1", g2.Generate())
	assert.Equal(t, "p-2", g1.Generate())
}

func TestXidUnique(t *testing.T) {
	g := idgen.NewXid("patient")
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.Generate()
		assert.True(t, strings.HasPrefix(id, "patient-"), "id %q lacks prefix", id)
		assert.False(t, seen[id], "duplicate id %q", id)
		seen[id] = true
	}
}
