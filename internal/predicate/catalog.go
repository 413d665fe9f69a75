package predicate

import (
	"fmt"

	"github.com/kozaktomas/picasso-kb/internal/constants"
)

// Catalog is the ordered set of predicates a knowledge base is built from.
// The order is the order of the header declarations.
type Catalog struct {
	predicates []Predicate
}

// NewCatalog creates a catalog from the given predicates. Exactly one unary
// predicate (the target) is required and names must be unique.
func NewCatalog(predicates ...Predicate) (*Catalog, error) {
	seen := make(map[string]bool, len(predicates))
	targets := 0
	for _, p := range predicates {
		if seen[p.Name()] {
			return nil, fmt.Errorf("predicate %q registered twice", p.Name())
		}
		seen[p.Name()] = true
		if p.Arity() == Unary {
			targets++
		}
	}
	if targets != 1 {
		return nil, fmt.Errorf("catalog needs exactly one target predicate, got %d", targets)
	}
	return &Catalog{predicates: predicates}, nil
}

// Default returns the full catalog with the given centroid tolerance in pixels
// for the ordering predicates.
func Default(tolerance float64) *Catalog {
	c, err := NewCatalog(
		Face(),
		HasA(),
		IsA(),
		Contains(),
		Intersects(),
		Disjoint(),
		Overlaps(),
		LeftOf(tolerance),
		TopOf(tolerance),
	)
	if err != nil {
		panic(fmt.Sprintf("default predicate catalog: %v", err))
	}
	return c
}

// Standard returns the default catalog with the standard tolerance.
func Standard() *Catalog {
	return Default(constants.DefaultTolerance)
}

// All returns every predicate in catalog order.
func (c *Catalog) All() []Predicate {
	return c.predicates
}

// Target returns the unary head predicate.
func (c *Catalog) Target() Predicate {
	for _, p := range c.predicates {
		if p.Arity() == Unary {
			return p
		}
	}
	return nil
}

// Meta returns the per-feature predicates in catalog order.
func (c *Catalog) Meta() []Predicate {
	return c.byArity(Meta)
}

// Binary returns the pairwise predicates in catalog order.
func (c *Catalog) Binary() []Predicate {
	return c.byArity(Binary)
}

// Lookup finds a predicate by name.
func (c *Catalog) Lookup(name string) (Predicate, bool) {
	for _, p := range c.predicates {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

func (c *Catalog) byArity(a Arity) []Predicate {
	var out []Predicate
	for _, p := range c.predicates {
		if p.Arity() == a {
			out = append(out, p)
		}
	}
	return out
}
