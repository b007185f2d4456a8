package graph

import (
	"fmt"
	"math"
)

// MaxSphereCells is the marching cubes resolution above which a sphere
// draws a warning.
const MaxSphereCells = 256

// validateGeometry checks node payloads: dimensions must be positive and
// finite, transforms finite, scale factors positive, and each payload must
// match its node kind.
func validateGeometry(g *Scene) []ValidationError {
	var errs []ValidationError

	bad := func(n *Node, format string, args ...any) {
		errs = append(errs, ValidationError{
			NodeID:   n.ID,
			Message:  fmt.Sprintf(format, args...),
			Severity: SeverityError,
		})
	}

	for _, node := range g.Nodes {
		switch d := node.Data.(type) {
		case BoxData:
			if node.Kind != NodePrimitive {
				bad(node, "box data on %s node", node.Kind)
			}
			for axis, v := range map[string]float64{"X": d.Dimensions.X, "Y": d.Dimensions.Y, "Z": d.Dimensions.Z} {
				if !positive(v) {
					bad(node, "box dimension %s is %.4f, must be positive", axis, v)
				}
			}
		case CylinderData:
			if node.Kind != NodePrimitive {
				bad(node, "cylinder data on %s node", node.Kind)
			}
			if !positive(d.Height) {
				bad(node, "cylinder height is %.4f, must be positive", d.Height)
			}
			if !positive(d.Radius) {
				bad(node, "cylinder radius is %.4f, must be positive", d.Radius)
			}
			if d.Segments < 3 {
				bad(node, "cylinder has %d segments, needs at least 3", d.Segments)
			}
		case SphereData:
			if node.Kind != NodePrimitive {
				bad(node, "sphere data on %s node", node.Kind)
			}
			if !positive(d.Radius) {
				bad(node, "sphere radius is %.4f, must be positive", d.Radius)
			}
			if d.Cells < 0 {
				bad(node, "sphere cells is %d, must not be negative", d.Cells)
			}
			if d.Cells > MaxSphereCells {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("sphere cells %d exceeds %d; tessellation will be slow", d.Cells, MaxSphereCells),
					Severity: SeverityWarning,
				})
			}
		case TransformData:
			if node.Kind != NodeTransform {
				bad(node, "transform data on %s node", node.Kind)
			}
			if !finite(d.Vector) {
				bad(node, "%s vector %s is not finite", d.Kind, d.Vector)
			}
			if d.Kind == TransformScale && !(positive(d.Vector.X) && positive(d.Vector.Y) && positive(d.Vector.Z)) {
				bad(node, "scale factors %s must be positive", d.Vector)
			}
		case BooleanData:
			if node.Kind != NodeBoolean {
				bad(node, "boolean data on %s node", node.Kind)
			}
		case OutputData:
			if node.Kind != NodeOutput {
				bad(node, "output data on %s node", node.Kind)
			}
		case nil:
			bad(node, "%s node has no data", node.Kind)
		}
	}

	return errs
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func finite(v Vec3) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
