package bridge

import (
	"math"

	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Rescale maps a bounding box into the cube [-1, 1] around the origin and
// back. The scale factor is a power of two, so scaling is exact and only
// the centring translation can round.
type Rescale struct {
	Scale  float64
	Center v3.Vec
	fwd    sdf.M44
	rev    sdf.M44
}

// NewRescale returns the normalisation for bb.
func NewRescale(bb sdf.Box3) Rescale {
	center := bb.Min.Add(bb.Max).MulScalar(0.5)
	half := bb.Max.Sub(bb.Min).MulScalar(0.5)
	extent := math.Max(half.X, math.Max(half.Y, half.Z))
	scale := 1.0
	if extent > 0 && !math.IsInf(extent, 0) {
		scale = math.Exp2(math.Ceil(math.Log2(extent)))
	}
	inv := 1 / scale
	return Rescale{
		Scale:  scale,
		Center: center,
		fwd:    sdf.Scale3d(v3.Vec{X: inv, Y: inv, Z: inv}).Mul(sdf.Translate3d(center.MulScalar(-1))),
		rev:    sdf.Translate3d(center).Mul(sdf.Scale3d(v3.Vec{X: scale, Y: scale, Z: scale})),
	}
}

// Forward maps a world position into the normalised frame.
func (r Rescale) Forward(p v3.Vec) v3.Vec {
	return r.fwd.MulPosition(p)
}

// Reverse maps a normalised position back to world space.
func (r Rescale) Reverse(p v3.Vec) v3.Vec {
	return r.rev.MulPosition(p)
}

// Apply normalises s in place.
func (r Rescale) Apply(s *kernel.Solid) {
	if s != nil {
		s.Transform(r.fwd)
	}
}

// Undo reverts Apply in place.
func (r Rescale) Undo(s *kernel.Solid) {
	if s != nil {
		s.Transform(r.rev)
	}
}

// combinedBounds returns the box enclosing every non-empty solid.
func combinedBounds(solids ...*kernel.Solid) sdf.Box3 {
	var bb sdf.Box3
	first := true
	for _, s := range solids {
		if s == nil || len(s.Faces) == 0 {
			continue
		}
		b := s.BoundingBox()
		if first {
			bb, first = b, false
			continue
		}
		bb = sdf.Box3{
			Min: v3.Vec{X: math.Min(bb.Min.X, b.Min.X), Y: math.Min(bb.Min.Y, b.Min.Y), Z: math.Min(bb.Min.Z, b.Min.Z)},
			Max: v3.Vec{X: math.Max(bb.Max.X, b.Max.X), Y: math.Max(bb.Max.Y, b.Max.Y), Z: math.Max(bb.Max.Z, b.Max.Z)},
		}
	}
	return bb
}

// overlaps reports whether two boxes share any point, allowing eps slack.
func overlaps(a, b sdf.Box3, eps float64) bool {
	return a.Min.X <= b.Max.X+eps && b.Min.X <= a.Max.X+eps &&
		a.Min.Y <= b.Max.Y+eps && b.Min.Y <= a.Max.Y+eps &&
		a.Min.Z <= b.Max.Z+eps && b.Min.Z <= a.Max.Z+eps
}
