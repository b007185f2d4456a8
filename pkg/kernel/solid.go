package kernel

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Face is a planar polygon given as a cyclic loop of vertex pool indices.
// Half-edge i runs from Verts[i] to Verts[(i+1)%len(Verts)].
type Face struct {
	Verts []int
}

// Len returns the number of half-edges (and vertices) of the face.
func (f Face) Len() int {
	return len(f.Verts)
}

// HalfEdge addresses one directed edge of one face by position.
type HalfEdge struct {
	Face  int
	Index int
}

// Manifold is one connected component of a solid. ClosedEdges holds one
// representative half-edge per edge shared by two faces; OpenEdges holds
// half-edges without a reverse twin.
type Manifold struct {
	Faces       []int
	ClosedEdges []HalfEdge
	OpenEdges   []HalfEdge
}

// Solid is a set of polygonal faces over a shared vertex pool.
// Faces and half-edges are identified by index; nothing holds pointers
// into the arrays, so they can be rebuilt freely by the kernel.
type Solid struct {
	Verts []v3.Vec
	Faces []Face
}

// NewSolid builds a solid from a vertex pool and a run-length-prefixed face
// index array. The vertex pool is used as given.
func NewSolid(verts []v3.Vec, numFaces int, faceIndices []int) (*Solid, error) {
	s := &Solid{
		Verts: verts,
		Faces: make([]Face, 0, numFaces),
	}
	pos := 0
	for f := 0; f < numFaces; f++ {
		if pos >= len(faceIndices) {
			return nil, fmt.Errorf("kernel: face index array truncated at face %d", f)
		}
		n := faceIndices[pos]
		pos++
		if n < 3 {
			return nil, Geometryf("build", "face %d has %d vertices, need at least 3", f, n)
		}
		if pos+n > len(faceIndices) {
			return nil, fmt.Errorf("kernel: face %d declares %d vertices, only %d indices remain",
				f, n, len(faceIndices)-pos)
		}
		loop := make([]int, n)
		for j := 0; j < n; j++ {
			vi := faceIndices[pos+j]
			if vi < 0 || vi >= len(verts) {
				return nil, fmt.Errorf("kernel: face %d references vertex %d, pool has %d", f, vi, len(verts))
			}
			loop[j] = vi
		}
		for j := 0; j < n; j++ {
			if loop[j] == loop[(j+1)%n] {
				return nil, Geometryf("build", "face %d repeats vertex %d on consecutive corners", f, loop[j])
			}
		}
		pos += n
		s.Faces = append(s.Faces, Face{Verts: loop})
	}
	if pos != len(faceIndices) {
		return nil, fmt.Errorf("kernel: %d trailing entries after %d faces", len(faceIndices)-pos, numFaces)
	}
	return s, nil
}

// NumFaces returns the number of faces.
func (s *Solid) NumFaces() int {
	return len(s.Faces)
}

// NumHalfEdges returns the total number of half-edges over all faces.
func (s *Solid) NumHalfEdges() int {
	n := 0
	for _, f := range s.Faces {
		n += f.Len()
	}
	return n
}

// EdgeVerts returns the start and end vertex of a half-edge.
func (s *Solid) EdgeVerts(he HalfEdge) (int, int) {
	f := s.Faces[he.Face]
	return f.Verts[he.Index], f.Verts[(he.Index+1)%f.Len()]
}

// Manifolds splits the solid into connected components. Components are
// ordered by their lowest face index; edges follow face order.
func (s *Solid) Manifolds() []Manifold {
	if len(s.Faces) == 0 {
		return nil
	}

	parent := make([]int, len(s.Verts))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for _, f := range s.Faces {
		r0 := find(f.Verts[0])
		for _, v := range f.Verts[1:] {
			if r := find(v); r != r0 {
				parent[r] = r0
			}
		}
	}

	index := make(map[int]int)
	var out []Manifold
	for fi, f := range s.Faces {
		root := find(f.Verts[0])
		mi, ok := index[root]
		if !ok {
			mi = len(out)
			index[root] = mi
			out = append(out, Manifold{})
		}
		out[mi].Faces = append(out[mi].Faces, fi)
	}

	directed := make(map[[2]int]bool, s.NumHalfEdges())
	for _, f := range s.Faces {
		for i := range f.Verts {
			directed[[2]int{f.Verts[i], f.Verts[(i+1)%f.Len()]}] = true
		}
	}

	seen := make(map[[2]int]bool, s.NumHalfEdges())
	for mi := range out {
		m := &out[mi]
		for _, fi := range m.Faces {
			f := s.Faces[fi]
			for i := range f.Verts {
				a, b := f.Verts[i], f.Verts[(i+1)%f.Len()]
				key := [2]int{max(a, b), min(a, b)}
				if seen[key] {
					continue
				}
				seen[key] = true
				he := HalfEdge{Face: fi, Index: i}
				if directed[[2]int{b, a}] {
					m.ClosedEdges = append(m.ClosedEdges, he)
				} else {
					m.OpenEdges = append(m.OpenEdges, he)
				}
			}
		}
	}
	return out
}

// IsClosed reports whether every edge of the solid is shared by two faces.
func (s *Solid) IsClosed() bool {
	for _, m := range s.Manifolds() {
		if len(m.OpenEdges) > 0 {
			return false
		}
	}
	return true
}

// BoundingBox returns the axis-aligned bounding box of the referenced
// vertices. An empty solid has a zero box.
func (s *Solid) BoundingBox() sdf.Box3 {
	first := true
	var bb sdf.Box3
	for _, f := range s.Faces {
		for _, vi := range f.Verts {
			v := s.Verts[vi]
			if first {
				bb = sdf.Box3{Min: v, Max: v}
				first = false
				continue
			}
			bb.Min = v3.Vec{X: math.Min(bb.Min.X, v.X), Y: math.Min(bb.Min.Y, v.Y), Z: math.Min(bb.Min.Z, v.Z)}
			bb.Max = v3.Vec{X: math.Max(bb.Max.X, v.X), Y: math.Max(bb.Max.Y, v.Y), Z: math.Max(bb.Max.Z, v.Z)}
		}
	}
	return bb
}

// Transform applies m to every vertex in place.
func (s *Solid) Transform(m sdf.M44) {
	for i, v := range s.Verts {
		s.Verts[i] = m.MulPosition(v)
	}
}

// Clone returns a deep copy.
func (s *Solid) Clone() *Solid {
	c := &Solid{
		Verts: append([]v3.Vec(nil), s.Verts...),
		Faces: make([]Face, len(s.Faces)),
	}
	for i, f := range s.Faces {
		c.Faces[i] = Face{Verts: append([]int(nil), f.Verts...)}
	}
	return c
}

// Extract returns a new solid holding the given faces, in the given order,
// over a compacted vertex pool.
func (s *Solid) Extract(faces []int) *Solid {
	remap := make(map[int]int)
	out := &Solid{Faces: make([]Face, 0, len(faces))}
	for _, fi := range faces {
		src := s.Faces[fi]
		loop := make([]int, src.Len())
		for j, vi := range src.Verts {
			ni, ok := remap[vi]
			if !ok {
				ni = len(out.Verts)
				remap[vi] = ni
				out.Verts = append(out.Verts, s.Verts[vi])
			}
			loop[j] = ni
		}
		out.Faces = append(out.Faces, Face{Verts: loop})
	}
	return out
}

// Concat joins solids into one without merging vertices. Faces keep their
// order: all faces of parts[0], then parts[1], and so on.
func Concat(parts ...*Solid) *Solid {
	out := &Solid{}
	for _, p := range parts {
		base := len(out.Verts)
		out.Verts = append(out.Verts, p.Verts...)
		for _, f := range p.Faces {
			loop := make([]int, f.Len())
			for j, vi := range f.Verts {
				loop[j] = vi + base
			}
			out.Faces = append(out.Faces, Face{Verts: loop})
		}
	}
	return out
}

// Volume returns the signed enclosed volume. Outward-facing closed solids
// have a positive volume.
func (s *Solid) Volume() float64 {
	var vol float64
	for _, f := range s.Faces {
		p0 := s.Verts[f.Verts[0]]
		for j := 1; j+1 < f.Len(); j++ {
			p1 := s.Verts[f.Verts[j]]
			p2 := s.Verts[f.Verts[j+1]]
			vol += p0.Dot(p1.Cross(p2))
		}
	}
	return vol / 6
}
