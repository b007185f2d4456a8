// Package shape builds closed primitive meshes. Box and Cylinder are exact
// polyhedra; Sphere and FromSDF tessellate a signed distance function with
// sdfx marching cubes.
package shape

import (
	"fmt"
	"math"

	"github.com/chazu/meshbool/pkg/meshio"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultCells is the marching cubes resolution along the longest axis.
const DefaultCells = 64

// DefaultSegments is the number of sides of a cylinder prism.
const DefaultSegments = 32

// Box returns an x by y by z box with its minimum corner at the origin, so
// that a translation places the corner.
func Box(x, y, z float64) (*meshio.Mesh, error) {
	if !(x > 0 && y > 0 && z > 0) {
		return nil, fmt.Errorf("shape: box dimensions must be positive, got %g %g %g", x, y, z)
	}
	verts := []v3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: x, Y: 0, Z: 0}, {X: x, Y: y, Z: 0}, {X: 0, Y: y, Z: 0},
		{X: 0, Y: 0, Z: z}, {X: x, Y: 0, Z: z}, {X: x, Y: y, Z: z}, {X: 0, Y: y, Z: z},
	}
	return meshio.New(verts, [][]int{
		{0, 3, 2, 1}, {4, 5, 6, 7},
		{0, 1, 5, 4}, {3, 7, 6, 2},
		{0, 4, 7, 3}, {1, 2, 6, 5},
	})
}

// Cylinder returns a prism approximating a cylinder of the given height and
// radius, centred on the origin with its axis along Z. The caps are single
// polygons with segments corners.
func Cylinder(height, radius float64, segments int) (*meshio.Mesh, error) {
	if !(height > 0 && radius > 0) {
		return nil, fmt.Errorf("shape: cylinder height and radius must be positive, got %g %g", height, radius)
	}
	if segments < 3 {
		return nil, fmt.Errorf("shape: cylinder needs at least 3 segments, got %d", segments)
	}
	h := height / 2
	verts := make([]v3.Vec, 0, 2*segments)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		x, y := radius*math.Cos(a), radius*math.Sin(a)
		verts = append(verts, v3.Vec{X: x, Y: y, Z: -h}, v3.Vec{X: x, Y: y, Z: h})
	}

	bottom := make([]int, segments)
	top := make([]int, segments)
	polys := make([][]int, 0, segments+2)
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		bottom[i] = 2 * (segments - 1 - i)
		top[i] = 2*i + 1
		polys = append(polys, []int{2 * i, 2 * j, 2*j + 1, 2*i + 1})
	}
	polys = append(polys, bottom, top)
	return meshio.New(verts, polys)
}

// Sphere returns a tessellated sphere of the given radius centred on the
// origin.
func Sphere(radius float64, cells int) (*meshio.Mesh, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("shape: sphere: %w", err)
	}
	return FromSDF(s, cells)
}

// FromSDF tessellates s with uniform marching cubes. Corners that land on
// the same point are shared and triangles that collapse are dropped, so a
// well-behaved surface yields a closed mesh. cells <= 0 selects
// DefaultCells.
func FromSDF(s sdf.SDF3, cells int) (*meshio.Mesh, error) {
	if cells <= 0 {
		cells = DefaultCells
	}
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))
	if len(triangles) == 0 {
		return nil, fmt.Errorf("shape: sdf produced no surface at %d cells", cells)
	}

	bb := s.BoundingBox()
	quantum := bb.Max.Sub(bb.Min).Length() * 1e-9
	if quantum == 0 {
		quantum = 1e-12
	}

	index := make(map[[3]int64]int)
	var verts []v3.Vec
	var polys [][]int
	for _, tri := range triangles {
		var poly [3]int
		for j := 0; j < 3; j++ {
			v := tri[j]
			key := [3]int64{
				int64(math.Round(v.X / quantum)),
				int64(math.Round(v.Y / quantum)),
				int64(math.Round(v.Z / quantum)),
			}
			vi, ok := index[key]
			if !ok {
				vi = len(verts)
				index[key] = vi
				verts = append(verts, v)
			}
			poly[j] = vi
		}
		if poly[0] == poly[1] || poly[1] == poly[2] || poly[2] == poly[0] {
			continue
		}
		polys = append(polys, poly[:])
	}
	return meshio.New(verts, polys)
}
