package graph

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// BoxData is an axis-aligned box with its minimum corner at the origin.
type BoxData struct {
	Dimensions Vec3   `json:"dimensions"`
	Material   string `json:"material,omitempty"`
}

func (BoxData) nodeData() {}

// CylinderData is a prism around the Z axis, centred on the origin.
type CylinderData struct {
	Height   float64 `json:"height"`
	Radius   float64 `json:"radius"`
	Segments int     `json:"segments"`
	Material string  `json:"material,omitempty"`
}

func (CylinderData) nodeData() {}

// SphereData is a tessellated sphere centred on the origin. Cells is the
// marching cubes resolution; 0 selects the default.
type SphereData struct {
	Radius   float64 `json:"radius"`
	Cells    int     `json:"cells,omitempty"`
	Material string  `json:"material,omitempty"`
}

func (SphereData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformKind distinguishes the transform builtins.
type TransformKind int

const (
	TransformTranslate TransformKind = iota
	TransformRotate                  // Euler angles in degrees, applied X then Y then Z
	TransformScale
)

func (k TransformKind) String() string {
	switch k {
	case TransformTranslate:
		return "translate"
	case TransformRotate:
		return "rotate"
	case TransformScale:
		return "scale"
	default:
		return "unknown"
	}
}

// TransformData applies one affine transform to the single child.
type TransformData struct {
	Kind   TransformKind `json:"kind"`
	Vector Vec3          `json:"vector"`
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Boolean
// ---------------------------------------------------------------------------

// BoolOp enumerates boolean operations. Children are folded left to right:
// (difference a b c) is (a - b) - c.
type BoolOp int

const (
	BoolUnion BoolOp = iota
	BoolIntersection
	BoolDifference
)

func (o BoolOp) String() string {
	switch o {
	case BoolUnion:
		return "union"
	case BoolIntersection:
		return "intersection"
	case BoolDifference:
		return "difference"
	default:
		return "unknown"
	}
}

// BooleanData combines two or more children.
type BooleanData struct {
	Op BoolOp `json:"op"`
}

func (BooleanData) nodeData() {}

// ---------------------------------------------------------------------------
// Output
// ---------------------------------------------------------------------------

// OutputData marks a root. The output name is the node's Name.
type OutputData struct{}

func (OutputData) nodeData() {}
