package bridge

import v3 "github.com/deadsy/sdfx/vec/v3"

// MeshSource is the read side of a host mesh.
type MeshSource interface {
	VertexCount() int
	VertexCoord(i int) v3.Vec
	EdgeCount() int
	EdgeVerts(i int) (v1, v2 int)
	PolyCount() int
	PolyVertCount(i int) int
	// PolyVerts writes the vertex loop of polygon i into dst, which holds
	// at least PolyVertCount(i) entries.
	PolyVerts(i int, dst []int)
}

// MeshSink receives an exported mesh. InitArrays is called once before any
// setter; indices passed to the setters are dense and in range.
type MeshSink interface {
	InitArrays(verts, edges, loops, polys int)
	SetVert(i int, co v3.Vec)
	SetEdge(i, v1, v2 int, origin OrigIndex)
	SetPoly(i, firstLoop, loopCount int, origin OrigIndex)
	SetLoop(i, vert, edge int, origin OrigIndex)
	// InterpolatePoly lets the host carry per-polygon attributes over from
	// the input polygon named by origin. It is called after the polygon's
	// loops have been set.
	InterpolatePoly(i int, origin OrigIndex)
}
