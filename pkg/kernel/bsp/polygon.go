package bsp

import (
	"math"

	"github.com/chazu/meshbool/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// plane is the set of points p with normal·p == w.
type plane struct {
	normal v3.Vec
	w      float64
}

func (pl *plane) flip() {
	pl.normal = pl.normal.MulScalar(-1)
	pl.w = -pl.w
}

// polygon is a convex or concave planar fragment of an operand face.
// edges[i] is the ancestry of the edge from verts[i] to verts[i+1].
type polygon struct {
	verts  []v3.Vec
	edges  []kernel.EdgeOrigin
	plane  plane
	origin kernel.FaceOrigin
}

// flip reverses the winding. The edge from verts[k] to verts[k+1] after
// reversal is the edge that ran verts[n-2-k] -> verts[n-1-k] before.
func (p *polygon) flip() {
	n := len(p.verts)
	verts := make([]v3.Vec, n)
	edges := make([]kernel.EdgeOrigin, n)
	for k := 0; k < n; k++ {
		verts[k] = p.verts[n-1-k]
		edges[k] = p.edges[((n-2-k)%n+n)%n]
	}
	p.verts = verts
	p.edges = edges
	p.plane.flip()
}

// newell returns the unnormalised Newell normal of a vertex loop. Its
// length is twice the loop's area.
func newell(verts []v3.Vec) v3.Vec {
	var n v3.Vec
	for i, cur := range verts {
		next := verts[(i+1)%len(verts)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n
}

// planeOf fits a plane through verts. ok is false for loops with no area.
func planeOf(verts []v3.Vec, eps float64) (plane, bool) {
	n := newell(verts)
	l := n.Length()
	if l < eps*eps || math.IsNaN(l) {
		return plane{}, false
	}
	n = n.DivScalar(l)
	var c v3.Vec
	for _, v := range verts {
		c = c.Add(v)
	}
	c = c.DivScalar(float64(len(verts)))
	return plane{normal: n, w: n.Dot(c)}, true
}

const (
	coplanar = 0
	front    = 1
	back     = 2
	spanning = 3
)

// split files p into one of the four lists according to its position
// relative to pl, cutting it in two when it spans the plane. Pieces of an
// operand edge keep that edge's ancestry; the cut edge has none.
func (pl *plane) split(p *polygon, coplanarFront, coplanarBack, fronts, backs *[]*polygon, eps float64) {
	polyType := coplanar
	types := make([]int, len(p.verts))
	for i, v := range p.verts {
		t := pl.normal.Dot(v) - pl.w
		ty := coplanar
		if t < -eps {
			ty = back
		} else if t > eps {
			ty = front
		}
		polyType |= ty
		types[i] = ty
	}

	switch polyType {
	case coplanar:
		if pl.normal.Dot(p.plane.normal) > 0 {
			*coplanarFront = append(*coplanarFront, p)
		} else {
			*coplanarBack = append(*coplanarBack, p)
		}
	case front:
		*fronts = append(*fronts, p)
	case back:
		*backs = append(*backs, p)
	case spanning:
		n := len(p.verts)
		var fv, bv []v3.Vec
		var fe, be []kernel.EdgeOrigin
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			ti, tj := types[i], types[j]
			vi, vj := p.verts[i], p.verts[j]
			e := p.edges[i]

			if ti != back {
				fv = append(fv, vi)
				if ti == front || tj != back {
					fe = append(fe, e)
				} else {
					fe = append(fe, kernel.NoEdgeOrigin)
				}
			}
			if ti != front {
				bv = append(bv, vi)
				if ti == back || tj != front {
					be = append(be, e)
				} else {
					be = append(be, kernel.NoEdgeOrigin)
				}
			}
			if ti|tj == spanning {
				d := vj.Sub(vi)
				t := (pl.w - pl.normal.Dot(vi)) / pl.normal.Dot(d)
				v := vi.Add(d.MulScalar(t))
				fv = append(fv, v)
				bv = append(bv, v)
				if ti == back {
					fe = append(fe, e)
					be = append(be, kernel.NoEdgeOrigin)
				} else {
					fe = append(fe, kernel.NoEdgeOrigin)
					be = append(be, e)
				}
			}
		}
		if len(fv) >= 3 {
			*fronts = append(*fronts, &polygon{verts: fv, edges: fe, plane: p.plane, origin: p.origin})
		}
		if len(bv) >= 3 {
			*backs = append(*backs, &polygon{verts: bv, edges: be, plane: p.plane, origin: p.origin})
		}
	}
}

// toPolygons converts every face of s into a polygon tagged with its
// operand position. Non-planar faces are fanned into triangles; diagonals
// carry no edge ancestry.
func toPolygons(s *kernel.Solid, which kernel.Operand, eps float64) ([]*polygon, error) {
	out := make([]*polygon, 0, len(s.Faces))
	for fi, f := range s.Faces {
		verts := make([]v3.Vec, f.Len())
		edges := make([]kernel.EdgeOrigin, f.Len())
		for i, vi := range f.Verts {
			v := s.Verts[vi]
			if !finite(v) {
				return nil, kernel.Geometryf("compute", "operand %s vertex %d is not finite", which, vi)
			}
			verts[i] = v
			edges[i] = kernel.EdgeOrigin{Operand: which, Edge: kernel.HalfEdge{Face: fi, Index: i}, Valid: true}
		}
		origin := kernel.FaceOrigin{Operand: which, Face: fi}

		pl, ok := planeOf(verts, eps)
		if !ok {
			return nil, kernel.Geometryf("compute", "operand %s face %d is degenerate", which, fi)
		}
		if isPlanar(verts, pl, eps) {
			out = append(out, &polygon{verts: verts, edges: edges, plane: pl, origin: origin})
			continue
		}

		n := len(verts)
		for j := 1; j+1 < n; j++ {
			tri := []v3.Vec{verts[0], verts[j], verts[j+1]}
			tpl, ok := planeOf(tri, eps)
			if !ok {
				continue
			}
			te := []kernel.EdgeOrigin{kernel.NoEdgeOrigin, edges[j], kernel.NoEdgeOrigin}
			if j == 1 {
				te[0] = edges[0]
			}
			if j+1 == n-1 {
				te[2] = edges[n-1]
			}
			out = append(out, &polygon{verts: tri, edges: te, plane: tpl, origin: origin})
		}
	}
	return out, nil
}

func isPlanar(verts []v3.Vec, pl plane, eps float64) bool {
	for _, v := range verts {
		if math.Abs(pl.normal.Dot(v)-pl.w) > eps {
			return false
		}
	}
	return true
}

func finite(v v3.Vec) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
