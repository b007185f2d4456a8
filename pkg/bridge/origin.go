package bridge

import (
	"fmt"

	"github.com/chazu/meshbool/pkg/kernel"
)

// Side names the input mesh an element came from.
type Side int8

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideNone:
		return "none"
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// OrigIndex is an origin tag: the input mesh and the element's index in it.
type OrigIndex struct {
	Side  Side
	Index int
}

// NoOrigin tags elements synthesised by the kernel.
var NoOrigin = OrigIndex{Side: SideNone, Index: -1}

// IsNone reports whether o carries no provenance.
func (o OrigIndex) IsNone() bool {
	return o.Side == SideNone
}

func (o OrigIndex) String() string {
	if o.IsNone() {
		return "none"
	}
	return fmt.Sprintf("%s:%d", o.Side, o.Index)
}

// OrigPair is the provenance of one half-edge: the host edge it lies on and
// the host loop (face corner) it descends from.
type OrigPair struct {
	Edge OrigIndex
	Loop OrigIndex
}

// NoOrigPair tags half-edges created by cuts.
var NoOrigPair = OrigPair{Edge: NoOrigin, Loop: NoOrigin}

// Op selects a boolean operation.
type Op int

const (
	OpUnion Op = iota
	OpIntersection
	OpDifference // left minus right
)

func (o Op) String() string {
	switch o {
	case OpUnion:
		return "union"
	case OpIntersection:
		return "intersection"
	case OpDifference:
		return "difference"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// ParseOp maps an operator name to an Op.
func ParseOp(name string) (Op, error) {
	switch name {
	case "union":
		return OpUnion, nil
	case "intersection", "intersect":
		return OpIntersection, nil
	case "difference", "subtract":
		return OpDifference, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidOperator, name)
}

func (o Op) kernelOp() (kernel.Op, bool) {
	switch o {
	case OpUnion:
		return kernel.OpUnion, true
	case OpIntersection:
		return kernel.OpIntersection, true
	case OpDifference:
		return kernel.OpAMinusB, true
	}
	return 0, false
}
