package bridge

import (
	"fmt"

	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/ledger"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// maxStaticVerts is the polygon size served from the fixed loop buffer.
const maxStaticVerts = 64

// Import copies a host mesh into a new kernel solid. Every host edge is
// recorded in the handle's ledger under its vertex pair so the tagger can
// recover host edge indices from kernel half-edges. The returned handle is
// untagged.
func Import(k kernel.Kernel, src MeshSource) (*Handle, error) {
	nv := src.VertexCount()
	verts := make([]v3.Vec, nv)
	for i := range verts {
		verts[i] = src.VertexCoord(i)
	}

	ne := src.EdgeCount()
	edges := ledger.New[int](ne)
	for i := 0; i < ne; i++ {
		v1, v2 := src.EdgeVerts(i)
		edges.Put(v1, v2, i)
	}

	np := src.PolyCount()
	faceIndices := make([]int, 0, np*5)
	var static [maxStaticVerts]int
	var dynamic []int
	for i := 0; i < np; i++ {
		n := max(src.PolyVertCount(i), 0)
		var loop []int
		if n <= maxStaticVerts {
			loop = static[:n]
		} else {
			if n > len(dynamic) {
				dynamic = make([]int, n)
			}
			loop = dynamic[:n]
		}
		src.PolyVerts(i, loop)
		faceIndices = append(faceIndices, n)
		faceIndices = append(faceIndices, loop...)
	}

	s, err := k.NewSolid(verts, np, faceIndices)
	if err != nil {
		return nil, fmt.Errorf("bridge: import: %w", err)
	}
	return newHandle(s, edges), nil
}
