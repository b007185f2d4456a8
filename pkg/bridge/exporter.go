package bridge

import (
	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/ledger"
)

// ExportStats summarises one Export call. The Untagged counters count
// elements written with NoOrigin.
type ExportStats struct {
	Verts, Edges, Loops, Polys int
	OpenEdges                  int

	UntaggedPolys int
	UntaggedEdges int
	UntaggedLoops int
}

// Untagged returns the total number of elements without provenance.
func (s ExportStats) Untagged() int {
	return s.UntaggedPolys + s.UntaggedEdges + s.UntaggedLoops
}

// Export writes h's solid into sink.
//
// The solid only knows half-edges, so edges are rebuilt: first every
// half-edge's edge tag is collected per vertex pair, then one edge record
// is written per distinct edge (closed edges first, then open ones) with a
// fresh index, and loops resolve their edge through that index. The two
// numberings never mix.
func Export(h *Handle, sink MeshSink) (ExportStats, error) {
	if h == nil || h.released {
		return ExportStats{}, ErrReleased
	}
	s := h.solid
	if s == nil {
		return ExportStats{}, ErrNoSolid
	}

	origins := ledger.New[OrigIndex](s.NumHalfEdges())
	for fi, f := range s.Faces {
		for i := range f.Verts {
			v1, v2 := s.EdgeVerts(kernel.HalfEdge{Face: fi, Index: i})
			tag := h.tags.edge(fi, i).Edge
			if cur, ok := origins.Lookup(v1, v2); ok && !cur.IsNone() && tag.IsNone() {
				continue
			}
			origins.Put(v1, v2, tag)
		}
	}

	order, open := edgeOrder(s)
	st := ExportStats{
		Verts:     len(s.Verts),
		Edges:     len(order),
		Loops:     s.NumHalfEdges(),
		Polys:     len(s.Faces),
		OpenEdges: open,
	}
	sink.InitArrays(st.Verts, st.Edges, st.Loops, st.Polys)

	for i, v := range s.Verts {
		sink.SetVert(i, v)
	}

	index := ledger.New[int](st.Edges)
	for i, he := range order {
		v1, v2 := s.EdgeVerts(he)
		tag := origins.Get(v1, v2)
		if tag.IsNone() {
			st.UntaggedEdges++
		}
		sink.SetEdge(i, v1, v2, tag)
		index.Put(v1, v2, i)
	}

	loop := 0
	for fi, f := range s.Faces {
		tag := h.tags.face(fi)
		if tag.IsNone() {
			st.UntaggedPolys++
		}
		sink.SetPoly(fi, loop, f.Len(), tag)
		for i, v := range f.Verts {
			next := f.Verts[(i+1)%f.Len()]
			lt := h.tags.edge(fi, i).Loop
			if lt.IsNone() {
				st.UntaggedLoops++
			}
			sink.SetLoop(loop, v, index.Get(v, next), lt)
			loop++
		}
		sink.InterpolatePoly(fi, tag)
	}
	return st, nil
}

// edgeOrder lists one half-edge per edge of s in the order Export writes
// edges: the closed edges of every component, then the open ones. It also
// returns the number of open edges.
func edgeOrder(s *kernel.Solid) ([]kernel.HalfEdge, int) {
	var closed, open []kernel.HalfEdge
	for _, m := range s.Manifolds() {
		closed = append(closed, m.ClosedEdges...)
		open = append(open, m.OpenEdges...)
	}
	return append(closed, open...), len(open)
}

// exportLedger maps every edge of s to the index Export gives it.
func exportLedger(s *kernel.Solid) *ledger.Ledger[int] {
	order, _ := edgeOrder(s)
	l := ledger.New[int](len(order))
	for i, he := range order {
		v1, v2 := s.EdgeVerts(he)
		l.Put(v1, v2, i)
	}
	return l
}
