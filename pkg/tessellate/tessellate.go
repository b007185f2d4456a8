// Package tessellate evaluates a scene graph into polygon meshes. Each
// output root yields one mesh; boolean nodes run through the bridge driver.
package tessellate

import (
	"fmt"
	"math"

	"github.com/chazu/meshbool/pkg/bridge"
	"github.com/chazu/meshbool/pkg/graph"
	"github.com/chazu/meshbool/pkg/meshio"
	"github.com/chazu/meshbool/pkg/shape"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// walker memoises node meshes so shared subtrees are built once.
type walker struct {
	g        *graph.Scene
	d        *bridge.Driver
	done     map[graph.NodeID]*meshio.Mesh
	visiting map[graph.NodeID]bool
}

// Tessellate builds one mesh per output root, in root order, named after
// the output. The scene is never mutated.
func Tessellate(g *graph.Scene, d *bridge.Driver) ([]*meshio.Mesh, error) {
	if g == nil {
		return nil, nil
	}
	w := &walker{
		g:        g,
		d:        d,
		done:     make(map[graph.NodeID]*meshio.Mesh),
		visiting: make(map[graph.NodeID]bool),
	}

	var meshes []*meshio.Mesh
	for _, out := range g.Outputs() {
		m, err := w.mesh(out)
		if err != nil {
			return nil, fmt.Errorf("tessellate: output %q: %w", out.Name, err)
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

func (w *walker) mesh(n *graph.Node) (*meshio.Mesh, error) {
	if m, ok := w.done[n.ID]; ok {
		return m, nil
	}
	if w.visiting[n.ID] {
		return nil, fmt.Errorf("cycle at node %s", n.ID.Short())
	}
	w.visiting[n.ID] = true
	defer delete(w.visiting, n.ID)

	var (
		m   *meshio.Mesh
		err error
	)
	switch n.Kind {
	case graph.NodePrimitive:
		m, err = primitive(n)
	case graph.NodeTransform:
		m, err = w.transform(n)
	case graph.NodeBoolean:
		m, err = w.boolean(n)
	case graph.NodeOutput:
		m, err = w.output(n)
	default:
		err = fmt.Errorf("unknown node kind: %v", n.Kind)
	}
	if err != nil {
		return nil, err
	}
	w.done[n.ID] = m
	return m, nil
}

// children resolves every child of n, failing on dangling references.
func (w *walker) children(n *graph.Node) ([]*meshio.Mesh, error) {
	out := make([]*meshio.Mesh, 0, len(n.Children))
	for _, id := range n.Children {
		c := w.g.Get(id)
		if c == nil {
			return nil, fmt.Errorf("node %s references missing child %s", n.ID.Short(), id.Short())
		}
		m, err := w.mesh(c)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func primitive(n *graph.Node) (*meshio.Mesh, error) {
	var (
		m   *meshio.Mesh
		mat string
		err error
	)
	switch data := n.Data.(type) {
	case graph.BoxData:
		m, err = shape.Box(data.Dimensions.X, data.Dimensions.Y, data.Dimensions.Z)
		mat = data.Material
	case graph.CylinderData:
		m, err = shape.Cylinder(data.Height, data.Radius, data.Segments)
		mat = data.Material
	case graph.SphereData:
		m, err = shape.Sphere(data.Radius, data.Cells)
		mat = data.Material
	default:
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", n.ID.Short(), err)
	}
	m.Name = n.Name
	return m.SetMaterial(mat), nil
}

func (w *walker) transform(n *graph.Node) (*meshio.Mesh, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	in, err := w.children(n)
	if err != nil {
		return nil, err
	}
	if len(in) != 1 {
		return nil, fmt.Errorf("transform node %s has %d children", n.ID.Short(), len(in))
	}
	return in[0].Transform(Matrix(td)), nil
}

// Matrix returns the affine matrix of a transform node. Rotation angles are
// in degrees and applied about X, then Y, then Z.
func Matrix(td graph.TransformData) sdf.M44 {
	v := v3.Vec{X: td.Vector.X, Y: td.Vector.Y, Z: td.Vector.Z}
	switch td.Kind {
	case graph.TransformTranslate:
		return sdf.Translate3d(v)
	case graph.TransformRotate:
		rx := sdf.RotateX(radians(v.X))
		ry := sdf.RotateY(radians(v.Y))
		rz := sdf.RotateZ(radians(v.Z))
		return rz.Mul(ry).Mul(rx)
	case graph.TransformScale:
		return sdf.Scale3d(v)
	default:
		return sdf.Identity3d()
	}
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func (w *walker) boolean(n *graph.Node) (*meshio.Mesh, error) {
	bd, ok := n.Data.(graph.BooleanData)
	if !ok {
		return nil, fmt.Errorf("boolean node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	op, err := bridgeOp(bd.Op)
	if err != nil {
		return nil, err
	}
	in, err := w.children(n)
	if err != nil {
		return nil, err
	}
	if len(in) < 2 {
		return nil, fmt.Errorf("boolean node %s has %d operands", n.ID.Short(), len(in))
	}

	acc := in[0]
	for _, next := range in[1:] {
		acc, _, err = meshio.Combine(w.d, acc, next, op)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID.Short(), err)
		}
	}
	acc.Name = n.Name
	return acc, nil
}

func bridgeOp(op graph.BoolOp) (bridge.Op, error) {
	switch op {
	case graph.BoolUnion:
		return bridge.OpUnion, nil
	case graph.BoolIntersection:
		return bridge.OpIntersection, nil
	case graph.BoolDifference:
		return bridge.OpDifference, nil
	default:
		return 0, fmt.Errorf("unknown boolean op %v", op)
	}
}

func (w *walker) output(n *graph.Node) (*meshio.Mesh, error) {
	in, err := w.children(n)
	if err != nil {
		return nil, err
	}
	if len(in) != 1 {
		return nil, fmt.Errorf("output node %s has %d children", n.ID.Short(), len(in))
	}
	m := in[0].Transform(sdf.Identity3d())
	m.Name = n.Name
	return m, nil
}
