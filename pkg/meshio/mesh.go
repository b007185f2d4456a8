// Package meshio provides an in-memory host polygon mesh that can be fed to
// the bridge importer and receive the exporter's output, plus OBJ and STL
// file support.
package meshio

import (
	"fmt"
	"math"

	"github.com/chazu/meshbool/pkg/bridge"
	"github.com/chazu/meshbool/pkg/ledger"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Edge joins two vertices.
type Edge struct {
	V1, V2 int
	Origin bridge.OrigIndex
}

// Loop is one corner of a polygon: the vertex it starts at and the edge
// leaving it.
type Loop struct {
	Vert, Edge int
	Origin     bridge.OrigIndex
}

// Poly is a run of LoopCount loops starting at FirstLoop.
type Poly struct {
	FirstLoop, LoopCount int
	Material             string
	Origin               bridge.OrigIndex
}

// Mesh is a polygon mesh in vertex / edge / loop / polygon form.
type Mesh struct {
	Name  string
	Verts []v3.Vec
	Edges []Edge
	Loops []Loop
	Polys []Poly

	// Left and Right are the inputs of the operation that produced this
	// mesh. InterpolatePoly copies polygon attributes from them.
	Left, Right *Mesh
}

var (
	_ bridge.MeshSource = (*Mesh)(nil)
	_ bridge.MeshSink   = (*Mesh)(nil)
)

// New builds a mesh from vertex positions and polygon vertex loops. Edges
// are derived from the polygons in first-use order. All origins are
// NoOrigin.
func New(verts []v3.Vec, polys [][]int) (*Mesh, error) {
	m := &Mesh{Verts: verts}
	edges := ledger.New[int](len(polys) * 2)
	for pi, p := range polys {
		if len(p) < 3 {
			return nil, fmt.Errorf("meshio: polygon %d has %d vertices", pi, len(p))
		}
		m.Polys = append(m.Polys, Poly{FirstLoop: len(m.Loops), LoopCount: len(p), Origin: bridge.NoOrigin})
		for i, v := range p {
			next := p[(i+1)%len(p)]
			if v < 0 || v >= len(verts) || next < 0 || next >= len(verts) {
				return nil, fmt.Errorf("meshio: polygon %d references vertex outside [0, %d)", pi, len(verts))
			}
			ei, ok := edges.Lookup(v, next)
			if !ok {
				ei = len(m.Edges)
				edges.Put(v, next, ei)
				m.Edges = append(m.Edges, Edge{V1: v, V2: next, Origin: bridge.NoOrigin})
			}
			m.Loops = append(m.Loops, Loop{Vert: v, Edge: ei, Origin: bridge.NoOrigin})
		}
	}
	return m, nil
}

// MustNew is New for static geometry; it panics on error.
func MustNew(verts []v3.Vec, polys [][]int) *Mesh {
	m, err := New(verts, polys)
	if err != nil {
		panic(err)
	}
	return m
}

// NewResult returns an empty mesh ready to receive the export of an
// operation on left and right.
func NewResult(left, right *Mesh) *Mesh {
	return &Mesh{Left: left, Right: right}
}

// PolyLoop returns the vertex loop of polygon i.
func (m *Mesh) PolyLoop(i int) []int {
	p := m.Polys[i]
	out := make([]int, p.LoopCount)
	for j := range out {
		out[j] = m.Loops[p.FirstLoop+j].Vert
	}
	return out
}

// SetMaterial assigns mat to every polygon and returns m.
func (m *Mesh) SetMaterial(mat string) *Mesh {
	for i := range m.Polys {
		m.Polys[i].Material = mat
	}
	return m
}

// Transform returns a copy of m with every vertex mapped through mat.
func (m *Mesh) Transform(mat sdf.M44) *Mesh {
	c := *m
	c.Verts = make([]v3.Vec, len(m.Verts))
	for i, v := range m.Verts {
		c.Verts[i] = mat.MulPosition(v)
	}
	c.Edges = append([]Edge(nil), m.Edges...)
	c.Loops = append([]Loop(nil), m.Loops...)
	c.Polys = append([]Poly(nil), m.Polys...)
	return &c
}

// Bounds returns the bounding box of all vertices.
func (m *Mesh) Bounds() sdf.Box3 {
	if len(m.Verts) == 0 {
		return sdf.Box3{}
	}
	bb := sdf.Box3{Min: m.Verts[0], Max: m.Verts[0]}
	for _, v := range m.Verts[1:] {
		bb.Min = v3.Vec{X: math.Min(bb.Min.X, v.X), Y: math.Min(bb.Min.Y, v.Y), Z: math.Min(bb.Min.Z, v.Z)}
		bb.Max = v3.Vec{X: math.Max(bb.Max.X, v.X), Y: math.Max(bb.Max.Y, v.Y), Z: math.Max(bb.Max.Z, v.Z)}
	}
	return bb
}

// Volume returns the signed enclosed volume of a closed, outward-wound mesh.
func (m *Mesh) Volume() float64 {
	var vol float64
	for i := range m.Polys {
		loop := m.PolyLoop(i)
		p0 := m.Verts[loop[0]]
		for j := 1; j+1 < len(loop); j++ {
			vol += p0.Dot(m.Verts[loop[j]].Cross(m.Verts[loop[j+1]]))
		}
	}
	return vol / 6
}

// Validate checks that every index is in range and that each loop's edge
// joins the loop's vertex to the next corner.
func (m *Mesh) Validate() error {
	for i, e := range m.Edges {
		if e.V1 < 0 || e.V1 >= len(m.Verts) || e.V2 < 0 || e.V2 >= len(m.Verts) {
			return fmt.Errorf("meshio: edge %d references vertex outside [0, %d)", i, len(m.Verts))
		}
	}
	for pi, p := range m.Polys {
		if p.LoopCount < 3 || p.FirstLoop < 0 || p.FirstLoop+p.LoopCount > len(m.Loops) {
			return fmt.Errorf("meshio: polygon %d has loop range [%d, +%d) outside %d loops",
				pi, p.FirstLoop, p.LoopCount, len(m.Loops))
		}
		for j := 0; j < p.LoopCount; j++ {
			l := m.Loops[p.FirstLoop+j]
			next := m.Loops[p.FirstLoop+(j+1)%p.LoopCount].Vert
			if l.Edge < 0 || l.Edge >= len(m.Edges) {
				return fmt.Errorf("meshio: polygon %d loop %d references edge %d", pi, j, l.Edge)
			}
			e := m.Edges[l.Edge]
			if !(e.V1 == l.Vert && e.V2 == next) && !(e.V2 == l.Vert && e.V1 == next) {
				return fmt.Errorf("meshio: polygon %d loop %d edge %d does not join %d and %d",
					pi, j, l.Edge, l.Vert, next)
			}
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// bridge.MeshSource
// ---------------------------------------------------------------------------

func (m *Mesh) VertexCount() int           { return len(m.Verts) }
func (m *Mesh) VertexCoord(i int) v3.Vec   { return m.Verts[i] }
func (m *Mesh) EdgeCount() int             { return len(m.Edges) }
func (m *Mesh) EdgeVerts(i int) (int, int) { return m.Edges[i].V1, m.Edges[i].V2 }
func (m *Mesh) PolyCount() int             { return len(m.Polys) }
func (m *Mesh) PolyVertCount(i int) int    { return m.Polys[i].LoopCount }

func (m *Mesh) PolyVerts(i int, dst []int) {
	p := m.Polys[i]
	for j := 0; j < p.LoopCount; j++ {
		dst[j] = m.Loops[p.FirstLoop+j].Vert
	}
}

// ---------------------------------------------------------------------------
// bridge.MeshSink
// ---------------------------------------------------------------------------

func (m *Mesh) InitArrays(verts, edges, loops, polys int) {
	m.Verts = make([]v3.Vec, verts)
	m.Edges = make([]Edge, edges)
	m.Loops = make([]Loop, loops)
	m.Polys = make([]Poly, polys)
}

func (m *Mesh) SetVert(i int, co v3.Vec) {
	m.Verts[i] = co
}

func (m *Mesh) SetEdge(i, v1, v2 int, origin bridge.OrigIndex) {
	m.Edges[i] = Edge{V1: v1, V2: v2, Origin: origin}
}

func (m *Mesh) SetPoly(i, firstLoop, loopCount int, origin bridge.OrigIndex) {
	m.Polys[i] = Poly{FirstLoop: firstLoop, LoopCount: loopCount, Origin: origin}
}

func (m *Mesh) SetLoop(i, vert, edge int, origin bridge.OrigIndex) {
	m.Loops[i] = Loop{Vert: vert, Edge: edge, Origin: origin}
}

// InterpolatePoly copies the material of the source polygon named by
// origin. Polygons without an origin keep the empty material.
func (m *Mesh) InterpolatePoly(i int, origin bridge.OrigIndex) {
	var src *Mesh
	switch origin.Side {
	case bridge.SideLeft:
		src = m.Left
	case bridge.SideRight:
		src = m.Right
	}
	if src == nil || origin.Index < 0 || origin.Index >= len(src.Polys) {
		return
	}
	m.Polys[i].Material = src.Polys[origin.Index].Material
}
