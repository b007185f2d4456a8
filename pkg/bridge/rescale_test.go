package bridge

import (
	"math"
	"math/rand"
	"testing"

	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRescaleRoundTrip(t *testing.T) {
	boxes := []sdf.Box3{
		{Min: v3.Vec{X: -1000, Y: 5, Z: 3}, Max: v3.Vec{X: 3000, Y: 7, Z: 4}},
		{Min: v3.Vec{X: 1e-6, Y: 1e-6, Z: 1e-6}, Max: v3.Vec{X: 2e-6, Y: 3e-6, Z: 2e-6}},
		{Min: v3.Vec{X: 1e5, Y: 1e5, Z: 1e5}, Max: v3.Vec{X: 1e5 + 1, Y: 1e5 + 2, Z: 1e5 + 3}},
	}
	rng := rand.New(rand.NewSource(1))
	for _, bb := range boxes {
		r := NewRescale(bb)
		for i := 0; i < 200; i++ {
			p := v3.Vec{
				X: bb.Min.X + rng.Float64()*(bb.Max.X-bb.Min.X),
				Y: bb.Min.Y + rng.Float64()*(bb.Max.Y-bb.Min.Y),
				Z: bb.Min.Z + rng.Float64()*(bb.Max.Z-bb.Min.Z),
			}
			q := r.Forward(p)
			assert.LessOrEqual(t, math.Abs(q.X), 1.0)
			assert.LessOrEqual(t, math.Abs(q.Y), 1.0)
			assert.LessOrEqual(t, math.Abs(q.Z), 1.0)
			assert.InDelta(t, 0, r.Reverse(q).Sub(p).Length(), 1e-5)
		}
	}
}

func TestRescaleIsPowerOfTwo(t *testing.T) {
	r := NewRescale(sdf.Box3{Min: v3.Vec{X: -3}, Max: v3.Vec{X: 3, Y: 1, Z: 1}})
	assert.Equal(t, 4.0, r.Scale)
	assert.Equal(t, v3.Vec{Y: 0.5, Z: 0.5}, r.Center)

	frac, _ := math.Frexp(NewRescale(sdf.Box3{Max: v3.Vec{X: 0.3, Y: 0.1, Z: 0.2}}).Scale)
	assert.Equal(t, 0.5, frac)
}

func TestRescaleDegenerateBox(t *testing.T) {
	r := NewRescale(sdf.Box3{})
	assert.Equal(t, 1.0, r.Scale)
	p := v3.Vec{X: 1, Y: 2, Z: 3}
	assert.Equal(t, p, r.Forward(p))
}

func TestRescaleSolid(t *testing.T) {
	h := mustImport(t, boxMesh(v3.Vec{X: 100, Y: 100, Z: 100}, v3.Vec{X: 300, Y: 200, Z: 150}))
	s := h.Solid()
	orig := append([]v3.Vec(nil), s.Verts...)

	r := NewRescale(s.BoundingBox())
	r.Apply(s)
	bb := s.BoundingBox()
	assert.InDelta(t, -100.0/128, bb.Min.X, 1e-12)
	assert.InDelta(t, 100.0/128, bb.Max.X, 1e-12)

	r.Undo(s)
	for i, v := range s.Verts {
		assert.InDelta(t, 0, v.Sub(orig[i]).Length(), 1e-9)
	}
}

func TestCombinedBoundsSkipsEmpty(t *testing.T) {
	a := mustImport(t, cubeMesh(2)).Solid()
	b := mustImport(t, cubeMesh(-3)).Solid()
	bb := combinedBounds(a, &kernel.Solid{}, nil, b)
	assert.Equal(t, v3.Vec{X: -3}, bb.Min)
	assert.Equal(t, v3.Vec{X: 3, Y: 1, Z: 1}, bb.Max)

	require.Equal(t, sdf.Box3{}, combinedBounds(&kernel.Solid{}))
}

func TestOverlaps(t *testing.T) {
	a := sdf.Box3{Max: v3.Vec{X: 1, Y: 1, Z: 1}}
	b := sdf.Box3{Min: v3.Vec{X: 1}, Max: v3.Vec{X: 2, Y: 1, Z: 1}}
	c := sdf.Box3{Min: v3.Vec{X: 1.5}, Max: v3.Vec{X: 2, Y: 1, Z: 1}}
	assert.True(t, overlaps(a, b, 0))
	assert.False(t, overlaps(a, c, 0))
	assert.True(t, overlaps(a, c, 0.6))
}
