// Package bsp is a pure-Go CSG kernel built on binary space partitioning
// trees. It tracks, for every output face and half-edge, the operand element
// it was cut from, and stitches the clipped fragments back into a closed
// solid with shared vertices.
package bsp

import (
	"fmt"

	"github.com/chazu/meshbool/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultEpsilon is the plane classification and vertex weld tolerance.
// Operands are expected to be normalised to roughly unit size.
const DefaultEpsilon = 1e-5

// Kernel implements kernel.Kernel.
type Kernel struct {
	eps float64
}

var _ kernel.Kernel = (*Kernel)(nil)

// Option configures a Kernel.
type Option func(*Kernel)

// WithEpsilon overrides DefaultEpsilon. Non-positive values are ignored.
func WithEpsilon(eps float64) Option {
	return func(k *Kernel) {
		if eps > 0 {
			k.eps = eps
		}
	}
}

// New returns a BSP kernel.
func New(opts ...Option) *Kernel {
	k := &Kernel{eps: DefaultEpsilon}
	for _, o := range opts {
		o(k)
	}
	return k
}

// Epsilon returns the tolerance in use.
func (k *Kernel) Epsilon() float64 {
	return k.eps
}

// NewSolid builds a solid from flat polygon arrays.
func (k *Kernel) NewSolid(verts []v3.Vec, numFaces int, faceIndices []int) (*kernel.Solid, error) {
	return kernel.NewSolid(verts, numFaces, faceIndices)
}

// Compute evaluates op on a and b. Both operands must be closed. The mode
// is accepted for interface compatibility; BSP clipping always resolves
// coincident faces by their orientation, which matches edge classification.
func (k *Kernel) Compute(a, b *kernel.Solid, op kernel.Op, mode kernel.Classify) (*kernel.Result, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("bsp: unknown operator %s", op)
	}
	if mode != kernel.ClassifyNormal && mode != kernel.ClassifyEdge {
		return nil, fmt.Errorf("bsp: unknown classification mode %d", int(mode))
	}
	if a == nil || b == nil {
		return nil, fmt.Errorf("bsp: nil operand")
	}
	if !a.IsClosed() {
		return nil, kernel.Geometryf("compute", "operand A is not closed")
	}
	if !b.IsClosed() {
		return nil, kernel.Geometryf("compute", "operand B is not closed")
	}

	if len(a.Faces) == 0 || len(b.Faces) == 0 {
		return emptyOperand(a, b, op), nil
	}

	pa, err := toPolygons(a, kernel.OperandA, k.eps)
	if err != nil {
		return nil, err
	}
	pb, err := toPolygons(b, kernel.OperandB, k.eps)
	if err != nil {
		return nil, err
	}

	ta := newNode(pa, k.eps)
	tb := newNode(pb, k.eps)
	switch op {
	case kernel.OpUnion:
		ta.clipTo(tb)
		tb.clipTo(ta)
		tb.invert()
		tb.clipTo(ta)
		tb.invert()
		ta.build(tb.allPolygons())
	case kernel.OpIntersection:
		ta.invert()
		tb.clipTo(ta)
		tb.invert()
		ta.clipTo(tb)
		tb.clipTo(ta)
		ta.build(tb.allPolygons())
		ta.invert()
	case kernel.OpAMinusB:
		ta.invert()
		ta.clipTo(tb)
		tb.clipTo(ta)
		tb.invert()
		tb.clipTo(ta)
		tb.invert()
		ta.build(tb.allPolygons())
		ta.invert()
	}

	return rebuild(ta.allPolygons(), k.eps), nil
}

// emptyOperand resolves op when at least one operand has no faces. An empty
// BSP tree clips nothing, so the general path would get intersection wrong.
func emptyOperand(a, b *kernel.Solid, op kernel.Op) *kernel.Result {
	switch {
	case op == kernel.OpUnion && len(a.Faces) == 0:
		return passThrough(b, kernel.OperandB)
	case op == kernel.OpUnion, op == kernel.OpAMinusB:
		return passThrough(a, kernel.OperandA)
	default:
		return &kernel.Result{Solid: &kernel.Solid{}}
	}
}

// passThrough copies s and maps every element onto itself.
func passThrough(s *kernel.Solid, which kernel.Operand) *kernel.Result {
	out := s.Extract(allFaces(s))
	anc := kernel.Ancestry{
		Faces: make([]kernel.FaceOrigin, len(out.Faces)),
		Edges: make([][]kernel.EdgeOrigin, len(out.Faces)),
	}
	for fi, f := range out.Faces {
		anc.Faces[fi] = kernel.FaceOrigin{Operand: which, Face: fi}
		anc.Edges[fi] = make([]kernel.EdgeOrigin, f.Len())
		for i := range f.Verts {
			anc.Edges[fi][i] = kernel.EdgeOrigin{Operand: which, Edge: kernel.HalfEdge{Face: fi, Index: i}, Valid: true}
		}
	}
	return &kernel.Result{Solid: out, Ancestry: anc}
}

func allFaces(s *kernel.Solid) []int {
	out := make([]int, len(s.Faces))
	for i := range out {
		out[i] = i
	}
	return out
}
