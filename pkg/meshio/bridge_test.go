package meshio_test

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/chazu/meshbool/pkg/bridge"
	"github.com/chazu/meshbool/pkg/kernel/bsp"
	"github.com/chazu/meshbool/pkg/meshio"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cube(dx float64, material string) *meshio.Mesh {
	verts := []v3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	}
	m := meshio.MustNew(verts, [][]int{
		{0, 3, 2, 1}, {4, 5, 6, 7},
		{0, 1, 5, 4}, {3, 7, 6, 2},
		{0, 4, 7, 3}, {1, 2, 6, 5},
	})
	return m.Transform(sdf.Translate3d(v3.Vec{X: dx})).SetMaterial(material)
}

func run(t *testing.T, left, right *meshio.Mesh, op bridge.Op) (*meshio.Mesh, bridge.ExportStats) {
	t.Helper()
	k := bsp.New()
	a, err := bridge.Import(k, left)
	require.NoError(t, err)
	b, err := bridge.Import(k, right)
	require.NoError(t, err)

	d := bridge.NewDriver(k, bridge.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	res, ok, err := d.Compute(a, b, op)
	require.NoError(t, err)
	require.True(t, ok)
	defer res.Release()

	out := meshio.NewResult(left, right)
	st, err := bridge.Export(res, out)
	require.NoError(t, err)
	require.NoError(t, out.Validate())
	return out, st
}

func TestUnionCarriesMaterials(t *testing.T) {
	out, st := run(t, cube(0, "red"), cube(0.5, "blue"), bridge.OpUnion)
	assert.InDelta(t, 1.5, out.Volume(), 1e-9)
	assert.Equal(t, 0, st.UntaggedPolys)
	assert.Equal(t, 0, st.OpenEdges)

	seen := map[string]int{}
	for _, p := range out.Polys {
		seen[p.Material]++
		switch p.Origin.Side {
		case bridge.SideLeft:
			assert.Equal(t, "red", p.Material)
		case bridge.SideRight:
			assert.Equal(t, "blue", p.Material)
		default:
			t.Errorf("polygon without origin: %+v", p)
		}
	}
	assert.Len(t, seen, 2)
}

func TestDifferenceWritesOBJ(t *testing.T) {
	out, _ := run(t, cube(0, "red"), cube(0.5, "blue"), bridge.OpDifference)
	assert.InDelta(t, 0.5, out.Volume(), 1e-9)
	bb := out.Bounds()
	assert.InDelta(t, 0, bb.Min.X, 1e-12)
	assert.InDelta(t, 0.5, bb.Max.X, 1e-12)

	blue := 0
	for _, p := range out.Polys {
		if p.Material == "blue" {
			blue++
		}
	}
	assert.Equal(t, 1, blue, "only the cut face comes from the subtracted cube")

	var buf bytes.Buffer
	require.NoError(t, meshio.WriteOBJ(&buf, out))
	back, err := meshio.ReadOBJ(&buf)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, back.Volume(), 1e-9)
	assert.Len(t, back.Polys, len(out.Polys))
}

func TestCombine(t *testing.T) {
	d := bridge.NewDriver(bsp.New(), bridge.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	left, right := cube(0, "red"), cube(0.5, "blue")

	out, st, err := meshio.Combine(d, left, right, bridge.OpIntersection)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, out.Volume(), 1e-9)
	assert.Equal(t, len(out.Polys), st.Polys)
	assert.Equal(t, len(out.Verts), st.Verts)
	assert.Nil(t, out.Left)
	assert.Nil(t, out.Right)
	assert.InDelta(t, 1.0, left.Volume(), 1e-12, "operands are not modified")
	assert.InDelta(t, 0.5, right.Bounds().Min.X, 1e-12)

	_, _, err = meshio.Combine(d, left, right, bridge.Op(7))
	assert.ErrorIs(t, err, bridge.ErrInvalidOperator)
}
