// Package idgen hands out patient identifiers. Every call returns a fresh
// value; no two entities ever share an identifier.
package idgen

import (
	"fmt"

	"github.com/rs/xid"
)

// Generator produces unique identifiers.
type Generator interface {
	Generate() string
}

// NewSequential returns a deterministic generator emitting prefix-1,
// prefix-2, ... Two generators with the same prefix produce the same
// sequence, which keeps seeded runs reproducible.
func NewSequential(prefix string) Generator {
	return &sequentialGenerator{prefix: prefix}
}

type sequentialGenerator struct {
	prefix string
	next   uint64
}

func (g *sequentialGenerator) Generate() string {
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next)
}

// NewXid returns a generator of globally unique, sortable xid strings.
// IDs differ between runs, so traces are not byte-for-byte comparable.
func NewXid(prefix string) Generator {
	return &xidGenerator{prefix: prefix}
}

type xidGenerator struct {
	prefix string
}

func (g *xidGenerator) Generate() string {
	return g.prefix + "-" + xid.New().String()
}
