// Package manifold is a kernel.Kernel backed by the Manifold C library
// (https://github.com/elalish/manifold). Operands are ear-clipped into
// triangles, and ancestry is recovered from the run and face IDs Manifold
// keeps for every output triangle.
//
// The binding requires manifoldc. Build with: go build -tags=manifold
package manifold

import (
	"fmt"
	"math"

	"github.com/chazu/meshbool/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// triangulation is a solid flattened into the MeshGL layout: xyz float32
// positions and triangle corner indices. face maps each triangle back to
// the solid face it was cut from.
type triangulation struct {
	props []float32
	tris  []uint32
	face  []int
}

func triangulate(s *kernel.Solid) triangulation {
	t := triangulation{props: make([]float32, 0, 3*len(s.Verts))}
	for _, v := range s.Verts {
		t.props = append(t.props, float32(v.X), float32(v.Y), float32(v.Z))
	}
	for fi, f := range s.Faces {
		for _, c := range kernel.Triangulate(s.Verts, f.Verts) {
			t.tris = append(t.tris, uint32(c[0]), uint32(c[1]), uint32(c[2]))
			t.face = append(t.face, fi)
		}
	}
	return t
}

// meshResult is a boolean result as Manifold reports it. Triangles
// runIndex[r]/3 up to runIndex[r+1]/3 descend from the mesh with ID
// runOriginalID[r]; faceID[t] names the input triangle t was cut from.
type meshResult struct {
	props         []float32
	numProp       int
	tris          []uint32
	runIndex      []uint32
	runOriginalID []uint32
	faceID        []uint32
}

// operand is one input of a Compute call as seen by buildResult.
type operand struct {
	id    uint32
	solid *kernel.Solid
	tri   triangulation
	which kernel.Operand
}

// buildResult turns a Manifold result back into a solid of triangles with
// ancestry. A half-edge is traced to an operand half-edge when both of its
// ends lie on that edge of the ancestor face, within tol.
func buildResult(m meshResult, a, b operand, tol float64) (*kernel.Result, error) {
	if len(m.tris) == 0 {
		return &kernel.Result{Solid: &kernel.Solid{}}, nil
	}
	if m.numProp < 3 {
		return nil, fmt.Errorf("manifold: %d vertex properties, need positions", m.numProp)
	}
	if len(m.tris)%3 != 0 || len(m.props)%m.numProp != 0 {
		return nil, fmt.Errorf("manifold: ragged mesh: %d corners, %d properties", len(m.tris), len(m.props))
	}
	if len(m.runIndex) != len(m.runOriginalID)+1 {
		return nil, fmt.Errorf("manifold: %d run indices for %d runs", len(m.runIndex), len(m.runOriginalID))
	}

	nv := len(m.props) / m.numProp
	verts := make([]v3.Vec, nv)
	for i := range verts {
		p := m.props[i*m.numProp:]
		verts[i] = v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
	}

	res := &kernel.Result{Solid: &kernel.Solid{Verts: verts}}
	run := 0
	for t := 0; 3*t < len(m.tris); t++ {
		c := m.tris[3*t : 3*t+3]
		if int(max(c[0], c[1], c[2])) >= nv {
			return nil, fmt.Errorf("manifold: triangle %d references vertex past %d", t, nv)
		}
		if c[0] == c[1] || c[1] == c[2] || c[2] == c[0] {
			continue
		}
		for run+1 < len(m.runIndex)-1 && m.runIndex[run+1] <= uint32(3*t) {
			run++
		}

		face := kernel.Face{Verts: []int{int(c[0]), int(c[1]), int(c[2])}}
		origin := kernel.FaceOrigin{Face: -1}
		var src *operand
		if run < len(m.runOriginalID) {
			switch m.runOriginalID[run] {
			case a.id:
				src = &a
			case b.id:
				src = &b
			}
		}
		if src != nil {
			origin.Operand = src.which
			if t < len(m.faceID) && int(m.faceID[t]) < len(src.tri.face) {
				origin.Face = src.tri.face[m.faceID[t]]
			}
		}

		edges := make([]kernel.EdgeOrigin, 3)
		for i := range edges {
			edges[i] = kernel.NoEdgeOrigin
			if src == nil || origin.Face < 0 {
				continue
			}
			p, q := verts[face.Verts[i]], verts[face.Verts[(i+1)%3]]
			if j := onEdge(src.solid, origin.Face, p, q, tol); j >= 0 {
				edges[i] = kernel.EdgeOrigin{
					Operand: src.which,
					Edge:    kernel.HalfEdge{Face: origin.Face, Index: j},
					Valid:   true,
				}
			}
		}

		res.Solid.Faces = append(res.Solid.Faces, face)
		res.Ancestry.Faces = append(res.Ancestry.Faces, origin)
		res.Ancestry.Edges = append(res.Ancestry.Edges, edges)
	}
	return res, nil
}

// onEdge returns the index of the half-edge of face fi that runs through p
// then q in the same direction, or -1.
func onEdge(s *kernel.Solid, fi int, p, q v3.Vec, tol float64) int {
	f := s.Faces[fi]
	for j := range f.Verts {
		u, v := s.Verts[f.Verts[j]], s.Verts[f.Verts[(j+1)%f.Len()]]
		d := v.Sub(u)
		if d.Dot(q.Sub(p)) <= 0 {
			continue
		}
		if onSegment(p, u, v, tol) && onSegment(q, u, v, tol) {
			return j
		}
	}
	return -1
}

// onSegment reports whether p lies within tol of segment uv.
func onSegment(p, u, v v3.Vec, tol float64) bool {
	d := v.Sub(u)
	l2 := d.Dot(d)
	if l2 == 0 {
		return p.Sub(u).Length() <= tol
	}
	t := math.Max(0, math.Min(1, p.Sub(u).Dot(d)/l2))
	return p.Sub(u.Add(d.MulScalar(t))).Length() <= tol
}
