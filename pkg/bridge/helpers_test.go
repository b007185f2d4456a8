package bridge

import (
	"errors"
	"testing"

	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/kernel/bsp"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/require"
)

// testMesh is a minimal host mesh implementing both MeshSource and
// MeshSink.
type testMesh struct {
	verts []v3.Vec
	edges [][2]int
	polys [][]int

	edgeOrigins  []OrigIndex
	polyOrigins  []OrigIndex
	polyStart    []int
	polyLen      []int
	loopVerts    []int
	loopEdges    []int
	loopOrigins  []OrigIndex
	interpolated []OrigIndex
}

var (
	_ MeshSource = (*testMesh)(nil)
	_ MeshSink   = (*testMesh)(nil)
)

func newTestMesh(verts []v3.Vec, polys [][]int) *testMesh {
	m := &testMesh{verts: verts, polys: polys}
	seen := make(map[[2]int]bool)
	for _, p := range polys {
		for i := range p {
			a, b := p[i], p[(i+1)%len(p)]
			k := [2]int{max(a, b), min(a, b)}
			if !seen[k] {
				seen[k] = true
				m.edges = append(m.edges, [2]int{a, b})
			}
		}
	}
	return m
}

func (m *testMesh) VertexCount() int { return len(m.verts) }
func (m *testMesh) VertexCoord(i int) v3.Vec { return m.verts[i] }
func (m *testMesh) EdgeCount() int { return len(m.edges) }
func (m *testMesh) EdgeVerts(i int) (int, int) { return m.edges[i][0], m.edges[i][1] }
func (m *testMesh) PolyCount() int { return len(m.polys) }
func (m *testMesh) PolyVertCount(i int) int { return len(m.polys[i]) }
func (m *testMesh) PolyVerts(i int, dst []int) { copy(dst, m.polys[i]) }
func (m *testMesh) SetVert(i int, co v3.Vec) { m.verts[i] = co }
func (m *testMesh) InterpolatePoly(i int, o OrigIndex) { m.interpolated[i] = o }

func (m *testMesh) InitArrays(verts, edges, loops, polys int) {
	m.verts = make([]v3.Vec, verts)
	m.edges = make([][2]int, edges)
	m.edgeOrigins = make([]OrigIndex, edges)
	m.polys = make([][]int, polys)
	m.polyOrigins = make([]OrigIndex, polys)
	m.polyStart = make([]int, polys)
	m.polyLen = make([]int, polys)
	m.interpolated = make([]OrigIndex, polys)
	m.loopVerts = make([]int, loops)
	m.loopEdges = make([]int, loops)
	m.loopOrigins = make([]OrigIndex, loops)
}

func (m *testMesh) SetEdge(i, v1, v2 int, origin OrigIndex) {
	m.edges[i] = [2]int{v1, v2}
	m.edgeOrigins[i] = origin
}

func (m *testMesh) SetPoly(i, firstLoop, loopCount int, origin OrigIndex) {
	m.polyStart[i] = firstLoop
	m.polyLen[i] = loopCount
	m.polyOrigins[i] = origin
}

func (m *testMesh) SetLoop(i, vert, edge int, origin OrigIndex) {
	m.loopVerts[i] = vert
	m.loopEdges[i] = edge
	m.loopOrigins[i] = origin
}

// cubeMesh is a unit cube with its minimum corner at (dx, 0, 0): 8
// vertices, 12 edges, 6 quads wound outwards.
func cubeMesh(dx float64) *testMesh {
	return boxMesh(v3.Vec{X: dx}, v3.Vec{X: dx + 1, Y: 1, Z: 1})
}

func boxMesh(lo, hi v3.Vec) *testMesh {
	verts := []v3.Vec{
		{X: lo.X, Y: lo.Y, Z: lo.Z}, {X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z}, {X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z}, {X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z}, {X: lo.X, Y: hi.Y, Z: hi.Z},
	}
	polys := [][]int{
		{0, 3, 2, 1}, // -z
		{4, 5, 6, 7}, // +z
		{0, 1, 5, 4}, // -y
		{2, 3, 7, 6}, // +y
		{0, 4, 7, 3}, // -x
		{1, 2, 6, 5}, // +x
	}
	return newTestMesh(verts, polys)
}

// flipped returns m with every polygon wound the other way, turning a
// solid into a cavity.
func flipped(m *testMesh) *testMesh {
	polys := make([][]int, len(m.polys))
	for i, p := range m.polys {
		q := make([]int, len(p))
		for j, v := range p {
			q[len(p)-1-j] = v
		}
		polys[i] = q
	}
	return newTestMesh(append([]v3.Vec(nil), m.verts...), polys)
}

// joinMeshes merges host meshes into one with separate components.
func joinMeshes(parts ...*testMesh) *testMesh {
	var verts []v3.Vec
	var polys [][]int
	for _, p := range parts {
		base := len(verts)
		verts = append(verts, p.verts...)
		for _, poly := range p.polys {
			q := make([]int, len(poly))
			for i, v := range poly {
				q[i] = v + base
			}
			polys = append(polys, q)
		}
	}
	return newTestMesh(verts, polys)
}

func mustImport(t *testing.T, m *testMesh) *Handle {
	t.Helper()
	h, err := Import(bsp.New(), m)
	require.NoError(t, err)
	return h
}

// stubKernel builds solids normally and returns a fixed outcome from
// Compute.
type stubKernel struct {
	err   error
	panicVal any
}

func (k *stubKernel) NewSolid(verts []v3.Vec, numFaces int, faceIndices []int) (*kernel.Solid, error) {
	return kernel.NewSolid(verts, numFaces, faceIndices)
}

func (k *stubKernel) Compute(a, b *kernel.Solid, op kernel.Op, mode kernel.Classify) (*kernel.Result, error) {
	if k.panicVal != nil {
		panic(k.panicVal)
	}
	if k.err != nil {
		return nil, k.err
	}
	return nil, errors.New("stub: no result configured")
}
