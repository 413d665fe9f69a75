// Package predicate defines the relations written to the knowledge base.
//
// Terminology used in mode declarations:
//
//	example: one sample (image)
//	organ:   a feature type, e.g. nose
//	part:    an organ in a specific example, e.g. pic_00046nose
package predicate

import (
	"fmt"
	"strings"

	"github.com/kozaktomas/picasso-kb/internal/sample"
)

// Arity classifies how a predicate is evaluated.
type Arity int

const (
	// Unary predicates are evaluated once per sample. The target is unary.
	Unary Arity = iota
	// Meta predicates are evaluated once per feature of a sample.
	Meta
	// Binary predicates are evaluated for every ordered pair of distinct features.
	Binary
)

func (a Arity) String() string {
	switch a {
	case Unary:
		return "unary"
	case Meta:
		return "meta"
	case Binary:
		return "binary"
	default:
		return fmt.Sprintf("Arity(%d)", int(a))
	}
}

// Target is the head predicate hypotheses are learned for.
const Target = "face/1"

// Predicate is one named relation of the knowledge base.
type Predicate interface {
	Name() string
	Arity() Arity
	// Compute returns the fact for the sample identifier and the features
	// the arity requires (none, one, or an ordered pair). The boolean is
	// false when the relation does not hold.
	Compute(id string, features ...sample.Feature) (string, bool)
	// Mode returns the mode declaration.
	Mode() string
	// Determination returns the determination declaration, false for the target.
	Determination() (string, bool)
}

func modeb(name, args string) string {
	return fmt.Sprintf(":- modeb(*, %s(%s)).", name, args)
}

func determination(name string, arity int) (string, bool) {
	return fmt.Sprintf(":- determination(%s, %s/%d).", Target, name, arity), true
}

func fact(name string, args ...string) string {
	return name + "(" + strings.Join(args, ", ") + ")."
}

type face struct{}

// Face marks a sample as an example of the target.
func Face() Predicate { return face{} }

func (face) Name() string { return "face" }
func (face) Arity() Arity { return Unary }

func (p face) Compute(id string, _ ...sample.Feature) (string, bool) {
	return fact(p.Name(), id), true
}

func (p face) Mode() string {
	return fmt.Sprintf(":- modeh(1, %s(+example)).", p.Name())
}

func (face) Determination() (string, bool) {
	return "", false
}

type hasA struct{}

// HasA states that an example has some part.
func HasA() Predicate { return hasA{} }

func (hasA) Name() string { return "has_a" }
func (hasA) Arity() Arity { return Meta }

func (p hasA) Compute(id string, features ...sample.Feature) (string, bool) {
	if len(features) != 1 {
		return "", false
	}
	return fact(p.Name(), id, sample.PartID(id, features[0].Kind)), true
}

func (p hasA) Mode() string {
	return modeb(p.Name(), "+example, -part")
}

func (p hasA) Determination() (string, bool) {
	return determination(p.Name(), 2)
}

type isA struct{}

// IsA classifies a part of an example as some organ.
func IsA() Predicate { return isA{} }

func (isA) Name() string { return "is_a" }
func (isA) Arity() Arity { return Meta }

func (p isA) Compute(id string, features ...sample.Feature) (string, bool) {
	if len(features) != 1 {
		return "", false
	}
	kind := features[0].Kind
	return fact(p.Name(), sample.PartID(id, kind), kind.String()), true
}

func (p isA) Mode() string {
	return modeb(p.Name(), "+part, #organ")
}

func (p isA) Determination() (string, bool) {
	return determination(p.Name(), 2)
}
