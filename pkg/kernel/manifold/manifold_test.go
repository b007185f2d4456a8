//go:build manifold

package manifold

import (
	"math"
	"testing"

	"github.com/chazu/meshbool/pkg/bridge"
	"github.com/chazu/meshbool/pkg/meshio"
	"github.com/chazu/meshbool/pkg/shape"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func mustDriver(t *testing.T) *bridge.Driver {
	t.Helper()
	k, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return bridge.NewDriver(k)
}

// operands returns a red unit cube and a blue one shifted half a unit
// along X.
func operands(t *testing.T) (*meshio.Mesh, *meshio.Mesh) {
	t.Helper()
	a, err := shape.Box(1, 1, 1)
	if err != nil {
		t.Fatalf("Box() error = %v", err)
	}
	b := a.Transform(sdf.Translate3d(v3.Vec{X: 0.5})).SetMaterial("blue")
	return a.SetMaterial("red"), b
}

func TestBooleans(t *testing.T) {
	tests := []struct {
		op     bridge.Op
		volume float64
	}{
		{bridge.OpUnion, 1.5},
		{bridge.OpIntersection, 0.5},
		{bridge.OpDifference, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			a, b := operands(t)
			res, stats, err := meshio.Combine(mustDriver(t), a, b, tt.op)
			if err != nil {
				t.Fatalf("Combine() error = %v", err)
			}
			if v := res.Volume(); math.Abs(v-tt.volume) > 1e-5 {
				t.Errorf("volume = %f, want %f", v, tt.volume)
			}
			if stats.UntaggedPolys != 0 {
				t.Errorf("%d polygons lost their origin", stats.UntaggedPolys)
			}
		})
	}
}

func TestUnionKeepsMaterials(t *testing.T) {
	a, b := operands(t)
	res, _, err := meshio.Combine(mustDriver(t), a, b, bridge.OpUnion)
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}
	seen := map[string]bool{}
	for _, p := range res.Polys {
		seen[p.Material] = true
	}
	if len(seen) != 2 || !seen["red"] || !seen["blue"] {
		t.Errorf("materials = %v, want red and blue", seen)
	}
}

func TestDisjointIntersectionIsEmpty(t *testing.T) {
	a, _ := operands(t)
	far := a.Transform(sdf.Translate3d(v3.Vec{X: 5}))
	res, _, err := meshio.Combine(mustDriver(t), a, far, bridge.OpIntersection)
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}
	if len(res.Polys) != 0 {
		t.Errorf("got %d polygons, want none", len(res.Polys))
	}
}
