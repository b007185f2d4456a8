package bridge

import (
	"fmt"

	"github.com/chazu/meshbool/pkg/kernel"
)

// propagate resolves the tags of a kernel result from its ancestry table
// and the tags of the two operands. Faces and half-edges whose ancestor is
// missing get NoOrigin; the counts of those are returned.
func propagate(res *kernel.Result, a, b tagSet) (out tagSet, untaggedFaces, untaggedEdges int, err error) {
	s := res.Solid
	anc := res.Ancestry
	if len(anc.Faces) != len(s.Faces) || len(anc.Edges) != len(s.Faces) {
		return tagSet{}, 0, 0, fmt.Errorf("bridge: kernel ancestry covers %d/%d of %d faces",
			len(anc.Faces), len(anc.Edges), len(s.Faces))
	}

	pick := func(o kernel.Operand) tagSet {
		if o == kernel.OperandB {
			return b
		}
		return a
	}

	out = tagSet{
		faces: make([]OrigIndex, len(s.Faces)),
		edges: make([][]OrigPair, len(s.Faces)),
	}
	for fi, f := range s.Faces {
		fo := anc.Faces[fi]
		out.faces[fi] = pick(fo.Operand).face(fo.Face)
		if out.faces[fi].IsNone() {
			untaggedFaces++
		}

		if len(anc.Edges[fi]) != f.Len() {
			return tagSet{}, 0, 0, fmt.Errorf("bridge: kernel ancestry has %d half-edges for face %d of %d",
				len(anc.Edges[fi]), fi, f.Len())
		}
		pairs := make([]OrigPair, f.Len())
		for i, eo := range anc.Edges[fi] {
			pairs[i] = NoOrigPair
			if eo.Valid {
				pairs[i] = pick(eo.Operand).edge(eo.Edge.Face, eo.Edge.Index)
			}
			if pairs[i].Edge.IsNone() {
				untaggedEdges++
			}
		}
		out.edges[fi] = pairs
	}
	return out, untaggedFaces, untaggedEdges, nil
}

// extract returns the tags of the given faces, in order, matching
// kernel.Solid.Extract.
func (t tagSet) extract(faces []int) tagSet {
	out := tagSet{
		faces: make([]OrigIndex, len(faces)),
		edges: make([][]OrigPair, len(faces)),
	}
	for i, fi := range faces {
		out.faces[i] = t.face(fi)
		if fi < len(t.edges) {
			out.edges[i] = append([]OrigPair(nil), t.edges[fi]...)
		}
	}
	return out
}

// concatTags joins tag sets in the order of kernel.Concat.
func concatTags(parts ...tagSet) tagSet {
	var out tagSet
	for _, p := range parts {
		out.faces = append(out.faces, p.faces...)
		out.edges = append(out.edges, p.edges...)
	}
	return out
}
