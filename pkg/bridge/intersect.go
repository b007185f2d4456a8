package bridge

import (
	"math"

	"github.com/chazu/meshbool/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// crossSlack is the distance in the normalised frame below which a point
// counts as lying on a plane or on a polygon boundary.
const crossSlack = 1e-9

// surfacesCross reports whether the surfaces of a and b intersect: some
// edge of one passes through the plane of a face of the other at a point
// inside or on the boundary of that face. Components that only touch, or
// sit nested inside one another, do not cross.
func surfacesCross(a, b *kernel.Solid) bool {
	return edgesPierce(a, b) || edgesPierce(b, a)
}

// edgesPierce reports whether an edge of a strictly crosses a face of b.
func edgesPierce(a, b *kernel.Solid) bool {
	planes := make([]facePlane, 0, len(b.Faces))
	for fi := range b.Faces {
		if p, ok := newFacePlane(b, fi); ok {
			planes = append(planes, p)
		}
	}
	for fi, f := range a.Faces {
		for i := range f.Verts {
			v1, v2 := a.EdgeVerts(kernel.HalfEdge{Face: fi, Index: i})
			p, q := a.Verts[v1], a.Verts[v2]
			for _, pl := range planes {
				if pl.pierced(p, q) {
					return true
				}
			}
		}
	}
	return false
}

// facePlane is a face of a solid prepared for segment tests: its unit
// normal, plane offset and outline projected onto the two axes its normal
// is least aligned with.
type facePlane struct {
	n    v3.Vec
	d    float64
	drop int
	poly [][2]float64
}

func newFacePlane(s *kernel.Solid, fi int) (facePlane, bool) {
	loop := s.Faces[fi].Verts
	var n, c v3.Vec
	for i, vi := range loop {
		a, b := s.Verts[vi], s.Verts[loop[(i+1)%len(loop)]]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
		c = c.Add(a)
	}
	l := n.Length()
	if l < crossSlack {
		return facePlane{}, false
	}
	n = n.DivScalar(l)
	c = c.DivScalar(float64(len(loop)))

	p := facePlane{n: n, d: n.Dot(c), drop: 2}
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case ax >= ay && ax >= az:
		p.drop = 0
	case ay >= az:
		p.drop = 1
	}
	p.poly = make([][2]float64, len(loop))
	for i, vi := range loop {
		p.poly[i] = p.project(s.Verts[vi])
	}
	return p, true
}

func (p facePlane) project(v v3.Vec) [2]float64 {
	switch p.drop {
	case 0:
		return [2]float64{v.Y, v.Z}
	case 1:
		return [2]float64{v.Z, v.X}
	}
	return [2]float64{v.X, v.Y}
}

// pierced reports whether segment pq has its ends strictly on opposite
// sides of the plane and crosses it inside the face.
func (p facePlane) pierced(a, b v3.Vec) bool {
	da, db := p.n.Dot(a)-p.d, p.n.Dot(b)-p.d
	if !(da > crossSlack && db < -crossSlack) && !(da < -crossSlack && db > crossSlack) {
		return false
	}
	x := a.Add(b.Sub(a).MulScalar(da / (da - db)))
	return p.contains(p.project(x))
}

// contains reports whether q lies inside the projected outline or within
// crossSlack of its boundary.
func (p facePlane) contains(q [2]float64) bool {
	in := false
	for i, a := range p.poly {
		b := p.poly[(i+1)%len(p.poly)]
		if segmentDist(q, a, b) <= crossSlack {
			return true
		}
		if (a[1] > q[1]) != (b[1] > q[1]) {
			x := a[0] + (q[1]-a[1])*(b[0]-a[0])/(b[1]-a[1])
			if q[0] < x {
				in = !in
			}
		}
	}
	return in
}

func segmentDist(q, a, b [2]float64) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	t := 0.0
	if l := dx*dx + dy*dy; l > 0 {
		t = math.Max(0, math.Min(1, ((q[0]-a[0])*dx+(q[1]-a[1])*dy)/l))
	}
	return math.Hypot(q[0]-a[0]-t*dx, q[1]-a[1]-t*dy)
}
