package tessellate_test

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/chazu/meshbool/pkg/bridge"
	"github.com/chazu/meshbool/pkg/engine"
	"github.com/chazu/meshbool/pkg/graph"
	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/kernel/bsp"
	"github.com/chazu/meshbool/pkg/meshio"
	"github.com/chazu/meshbool/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const tol = 1e-6

func newDriver(k kernel.Kernel) *bridge.Driver {
	return bridge.NewDriver(k, bridge.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

// evaluate runs source through the engine and fails on any error.
func evaluate(t *testing.T, source string) *graph.Scene {
	t.Helper()
	g, evalErrs, err := engine.NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	return g
}

// build evaluates source and tessellates every output with the BSP kernel.
func build(t *testing.T, source string) map[string]*meshio.Mesh {
	t.Helper()
	meshes, err := tessellate.Tessellate(evaluate(t, source), newDriver(bsp.New()))
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	out := make(map[string]*meshio.Mesh, len(meshes))
	for _, m := range meshes {
		if err := m.Validate(); err != nil {
			t.Errorf("mesh %q: %v", m.Name, err)
		}
		out[m.Name] = m
	}
	return out
}

func near(a, b float64) bool { return math.Abs(a-b) < tol }

func checkBounds(t *testing.T, m *meshio.Mesh, min, max v3.Vec) {
	t.Helper()
	bb := m.Bounds()
	if !near(bb.Min.X, min.X) || !near(bb.Min.Y, min.Y) || !near(bb.Min.Z, min.Z) ||
		!near(bb.Max.X, max.X) || !near(bb.Max.Y, max.Y) || !near(bb.Max.Z, max.Z) {
		t.Errorf("%q bounds = %v..%v, want %v..%v", m.Name, bb.Min, bb.Max, min, max)
	}
}

func TestSingleBox(t *testing.T) {
	meshes := build(t, `(output "plate" (box 4 2 0.5 :material "oak"))`)
	m := meshes["plate"]
	if m == nil {
		t.Fatal("missing mesh for plate")
	}
	if len(m.Polys) != 6 || len(m.Verts) != 8 {
		t.Errorf("got %d polys and %d verts, want 6 and 8", len(m.Polys), len(m.Verts))
	}
	if !near(m.Volume(), 4) {
		t.Errorf("volume = %g, want 4", m.Volume())
	}
	for i, p := range m.Polys {
		if p.Material != "oak" {
			t.Errorf("poly %d material = %q, want oak", i, p.Material)
		}
	}
}

func TestOutputsInRootOrder(t *testing.T) {
	g := evaluate(t, `
(output "second" (box 1 1 1))
(output "first" (sphere :radius 1 :cells 16))
`)
	meshes, err := tessellate.Tessellate(g, newDriver(bsp.New()))
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	if meshes[0].Name != "second" || meshes[1].Name != "first" {
		t.Errorf("names = %q, %q", meshes[0].Name, meshes[1].Name)
	}
}

func TestTransforms(t *testing.T) {
	meshes := build(t, `
(output "turned" (translate (rotate (box 2 1 1) (vec3 0 0 90)) (vec3 5 0 0)))
(output "stretched" (scale (box 1 1 1) (vec3 2 3 4)))
`)
	checkBounds(t, meshes["turned"], v3.Vec{X: 4}, v3.Vec{X: 5, Y: 2, Z: 1})
	if v := meshes["turned"].Volume(); !near(v, 2) {
		t.Errorf("turned volume = %g, want 2", v)
	}
	checkBounds(t, meshes["stretched"], v3.Vec{}, v3.Vec{X: 2, Y: 3, Z: 4})
	if v := meshes["stretched"].Volume(); !near(v, 24) {
		t.Errorf("stretched volume = %g, want 24", v)
	}
}

func TestBooleans(t *testing.T) {
	meshes := build(t, `
(def a (box 1 1 1 :material "red"))
(def b (translate (box 1 1 1 :material "blue") (vec3 0.5 0 0)))
(output "u" (union a b))
(output "i" (intersection a b))
(output "d" (difference a b))
`)
	tests := []struct {
		name     string
		volume   float64
		min, max v3.Vec
	}{
		{"u", 1.5, v3.Vec{}, v3.Vec{X: 1.5, Y: 1, Z: 1}},
		{"i", 0.5, v3.Vec{X: 0.5}, v3.Vec{X: 1, Y: 1, Z: 1}},
		{"d", 0.5, v3.Vec{}, v3.Vec{X: 0.5, Y: 1, Z: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := meshes[tt.name]
			if m == nil {
				t.Fatalf("missing mesh %q", tt.name)
			}
			if !near(m.Volume(), tt.volume) {
				t.Errorf("volume = %g, want %g", m.Volume(), tt.volume)
			}
			checkBounds(t, m, tt.min, tt.max)
		})
	}

	colours := map[string]int{}
	for _, p := range meshes["u"].Polys {
		colours[p.Material]++
	}
	if colours["red"] == 0 || colours["blue"] == 0 || colours[""] != 0 {
		t.Errorf("union materials = %v, want red and blue only", colours)
	}
}

func TestDifferenceFoldsLeft(t *testing.T) {
	meshes := build(t, `
(def bar (box 3 1 1))
(def cutter (box 1 3 3))
(output "trimmed"
  (difference bar
    (translate cutter (vec3 -0.5 -1 -1))
    (translate cutter (vec3 2.5 -1 -1))))
`)
	m := meshes["trimmed"]
	if !near(m.Volume(), 2) {
		t.Errorf("volume = %g, want 2", m.Volume())
	}
	checkBounds(t, m, v3.Vec{X: 0.5}, v3.Vec{X: 2.5, Y: 1, Z: 1})
}

func TestDrilledPlate(t *testing.T) {
	meshes := build(t, `
(output "drilled"
  (difference
    (box 2 2 1)
    (translate (cylinder :height 3 :radius 0.5 :segments 32) (vec3 1 1 0.5))))
`)
	hole := 0.5 * 32 * 0.25 * math.Sin(2*math.Pi/32)
	if v := meshes["drilled"].Volume(); !near(v, 4-hole) {
		t.Errorf("volume = %g, want %g", v, 4-hole)
	}
}

func TestSharedSubtreesAreIndependent(t *testing.T) {
	meshes := build(t, `
(def a (box 1 1 1))
(output "left" a)
(output "right" (translate a (vec3 3 0 0)))
`)
	checkBounds(t, meshes["left"], v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})
	checkBounds(t, meshes["right"], v3.Vec{X: 3}, v3.Vec{X: 4, Y: 1, Z: 1})
	if meshes["left"] == meshes["right"] {
		t.Error("outputs should not share a mesh")
	}
}

func TestEmptyScene(t *testing.T) {
	meshes, err := tessellate.Tessellate(graph.New(), newDriver(bsp.New()))
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 0 {
		t.Fatalf("expected 0 meshes, got %d", len(meshes))
	}
}

// geometryKernel builds solids but cannot classify any operation.
type geometryKernel struct{}

func (geometryKernel) NewSolid(verts []v3.Vec, numFaces int, faceIndices []int) (*kernel.Solid, error) {
	return kernel.NewSolid(verts, numFaces, faceIndices)
}

func (geometryKernel) Compute(a, b *kernel.Solid, op kernel.Op, mode kernel.Classify) (*kernel.Result, error) {
	return nil, kernel.Geometryf(op.String(), "degenerate input")
}

func TestBooleanFailure(t *testing.T) {
	g := evaluate(t, `(output "u" (union (box 1 1 1) (translate (box 1 1 1) (vec3 0.5 0 0))))`)
	_, err := tessellate.Tessellate(g, newDriver(geometryKernel{}))
	if !errors.Is(err, meshio.ErrOperationFailed) {
		t.Fatalf("expected ErrOperationFailed, got %v", err)
	}
}

func TestMatrix(t *testing.T) {
	tests := []struct {
		name string
		td   graph.TransformData
		in   v3.Vec
		want v3.Vec
	}{
		{"translate", graph.TransformData{Kind: graph.TransformTranslate, Vector: graph.Vec3{X: 1, Y: 2, Z: 3}}, v3.Vec{X: 1}, v3.Vec{X: 2, Y: 2, Z: 3}},
		{"rotate x", graph.TransformData{Kind: graph.TransformRotate, Vector: graph.Vec3{X: 90}}, v3.Vec{Y: 1}, v3.Vec{Z: 1}},
		{"rotate z", graph.TransformData{Kind: graph.TransformRotate, Vector: graph.Vec3{Z: 90}}, v3.Vec{X: 1}, v3.Vec{Y: 1}},
		{"rotate x then z", graph.TransformData{Kind: graph.TransformRotate, Vector: graph.Vec3{X: 90, Z: 90}}, v3.Vec{Y: 1}, v3.Vec{Z: 1}},
		{"scale", graph.TransformData{Kind: graph.TransformScale, Vector: graph.Vec3{X: 2, Y: 3, Z: 4}}, v3.Vec{X: 1, Y: 1, Z: 1}, v3.Vec{X: 2, Y: 3, Z: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tessellate.Matrix(tt.td).MulPosition(tt.in)
			if got.Sub(tt.want).Length() > tol {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
