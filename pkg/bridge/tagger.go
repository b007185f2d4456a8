package bridge

import (
	"fmt"

	"github.com/chazu/meshbool/pkg/kernel"
)

// Tag stamps every face of h's solid with (side, face index) and every
// half-edge with (side, host edge index) and (side, loop index). Loops are
// numbered once across the whole solid in face order.
//
// Host edge indices come from the import ledger, which panics with
// *ledger.MissingEdgeError if a polygon uses an edge the host did not list.
//
// A handle returned by Compute has no host mesh. The first time it is
// tagged, its solid stands in for one: indices are those Export would
// write for it at that point, and the provenance it carried from its own
// operands is dropped.
//
// A handle that is already tagged, for example one whose solid a previous
// Compute replaced, keeps its indices and only takes the new side.
func Tag(h *Handle, side Side) error {
	if err := h.usable(); err != nil {
		return err
	}
	if side != SideLeft && side != SideRight {
		return fmt.Errorf("bridge: tag: invalid side %s", side)
	}
	if h.edges == nil {
		h.edges = exportLedger(h.solid)
		h.tags = tagSet{}
	}
	if h.Tagged() {
		h.tags.restamp(side)
		return nil
	}

	s := h.solid
	h.tags = tagSet{
		faces: make([]OrigIndex, len(s.Faces)),
		edges: make([][]OrigPair, len(s.Faces)),
	}
	loop := 0
	for fi, f := range s.Faces {
		h.tags.faces[fi] = OrigIndex{Side: side, Index: fi}
		pairs := make([]OrigPair, f.Len())
		for i := range f.Verts {
			v1, v2 := s.EdgeVerts(kernel.HalfEdge{Face: fi, Index: i})
			pairs[i] = OrigPair{
				Edge: OrigIndex{Side: side, Index: h.edges.Get(v1, v2)},
				Loop: OrigIndex{Side: side, Index: loop},
			}
			loop++
		}
		h.tags.edges[fi] = pairs
	}
	return nil
}

func (t tagSet) restamp(side Side) {
	for i := range t.faces {
		if !t.faces[i].IsNone() {
			t.faces[i].Side = side
		}
	}
	for _, pairs := range t.edges {
		for i := range pairs {
			if !pairs[i].Edge.IsNone() {
				pairs[i].Edge.Side = side
			}
			if !pairs[i].Loop.IsNone() {
				pairs[i].Loop.Side = side
			}
		}
	}
}
