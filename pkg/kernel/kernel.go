// Package kernel defines the abstract CSG kernel interface consumed by the
// mesh boolean bridge. Implementations (bsp, manifold) build solids from flat polygon
// arrays and compute boolean operations behind this interface. The kernel
// abstraction allows swapping backends without changing the bridge.
package kernel

import (
	"errors"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Op is a boolean operator understood by the kernel.
type Op int

const (
	OpUnion        Op = iota // a ∪ b
	OpIntersection           // a ∩ b
	OpAMinusB                // a − b
)

func (o Op) String() string {
	switch o {
	case OpUnion:
		return "union"
	case OpIntersection:
		return "intersection"
	case OpAMinusB:
		return "a-minus-b"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Valid reports whether o is one of the defined operators.
func (o Op) Valid() bool {
	return o >= OpUnion && o <= OpAMinusB
}

// Classify selects how the kernel resolves ambiguous coincident geometry.
type Classify int

const (
	// ClassifyNormal classifies whole faces.
	ClassifyNormal Classify = iota
	// ClassifyEdge classifies along edges, which resolves faces that share
	// a boundary with the other operand.
	ClassifyEdge
)

// Operand names one of the two inputs of a Compute call.
type Operand int8

const (
	OperandA Operand = iota
	OperandB
)

func (o Operand) String() string {
	if o == OperandA {
		return "A"
	}
	return "B"
}

// FaceOrigin names the operand face a result face was derived from.
type FaceOrigin struct {
	Operand Operand
	Face    int
}

// EdgeOrigin names the operand half-edge a result half-edge lies on.
// Half-edges created by cutting a face have Valid == false.
type EdgeOrigin struct {
	Operand Operand
	Edge    HalfEdge
	Valid   bool
}

// NoEdgeOrigin is the ancestry of a half-edge created by the kernel.
var NoEdgeOrigin = EdgeOrigin{}

// Ancestry maps every element of a result solid to the operand element it
// descends from. Faces[f] describes result face f; Edges[f][i] describes
// half-edge i of result face f.
type Ancestry struct {
	Faces []FaceOrigin
	Edges [][]EdgeOrigin
}

// Result is the output of a boolean computation.
type Result struct {
	Solid    *Solid
	Ancestry Ancestry
}

// Kernel is the abstract CSG kernel interface.
type Kernel interface {
	// NewSolid builds a solid from a shared vertex pool and a
	// run-length-prefixed face index array: [n, i0 .. in-1, m, j0 ..].
	// Vertex pool positions are preserved.
	NewSolid(verts []v3.Vec, numFaces int, faceIndices []int) (*Solid, error)

	// Compute evaluates op on a and b and returns a freshly allocated
	// solid together with its ancestry table. Inputs are not modified.
	Compute(a, b *Solid, op Op, mode Classify) (*Result, error)
}

// GeometryError reports input the kernel cannot classify: degenerate,
// non-manifold or otherwise ill-formed geometry. It is recoverable.
type GeometryError struct {
	Op     string
	Reason string
}

func (e *GeometryError) Error() string {
	if e.Op == "" {
		return "kernel: " + e.Reason
	}
	return fmt.Sprintf("kernel: %s: %s", e.Op, e.Reason)
}

// Geometryf returns a *GeometryError with a formatted reason.
func Geometryf(op, format string, args ...any) error {
	return &GeometryError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// IsGeometry reports whether err is, or wraps, a *GeometryError.
func IsGeometry(err error) bool {
	var g *GeometryError
	return errors.As(err, &g)
}
