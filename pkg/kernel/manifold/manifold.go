//go:build manifold

package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"math"
	"unsafe"

	"github.com/chazu/meshbool/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var _ kernel.Kernel = (*Kernel)(nil)

// relTol scales the bounding box diagonal into the tolerance used to match
// result edges against operand edges. Manifold works in float32.
const relTol = 1e-5

// Kernel computes booleans with Manifold. It holds no state.
type Kernel struct{}

// New returns a Manifold kernel.
func New() (kernel.Kernel, error) {
	return &Kernel{}, nil
}

// NewSolid builds a solid in the shared polygon representation; the
// Manifold object is only created for the duration of Compute.
func (k *Kernel) NewSolid(verts []v3.Vec, numFaces int, faceIndices []int) (*kernel.Solid, error) {
	return kernel.NewSolid(verts, numFaces, faceIndices)
}

// Compute runs op through Manifold and rebuilds ancestry for the result.
func (k *Kernel) Compute(a, b *kernel.Solid, op kernel.Op, mode kernel.Classify) (*kernel.Result, error) {
	var cop C.ManifoldOpType
	switch op {
	case kernel.OpUnion:
		cop = C.MANIFOLD_ADD
	case kernel.OpIntersection:
		cop = C.MANIFOLD_INTERSECT
	case kernel.OpAMinusB:
		cop = C.MANIFOLD_SUBTRACT
	default:
		return nil, kernel.Geometryf(op.String(), "unsupported operator")
	}

	ta, tb := triangulate(a), triangulate(b)
	ma, err := toManifold(ta, op)
	if err != nil {
		return nil, err
	}
	defer C.manifold_delete_manifold(ma)
	mb, err := toManifold(tb, op)
	if err != nil {
		return nil, err
	}
	defer C.manifold_delete_manifold(mb)

	out := C.manifold_boolean(C.manifold_alloc_manifold(), ma, mb, cop)
	defer C.manifold_delete_manifold(out)
	if st := C.manifold_status(out); st != C.MANIFOLD_NO_ERROR {
		return nil, kernel.Geometryf(op.String(), "manifold status %d", int(st))
	}

	gl := C.manifold_get_meshgl(C.manifold_alloc_meshgl(), out)
	defer C.manifold_delete_meshgl(gl)

	ba, bb := a.BoundingBox(), b.BoundingBox()
	tol := relTol * math.Max(ba.Max.Sub(ba.Min).Length(), bb.Max.Sub(bb.Min).Length())
	return buildResult(readMesh(gl),
		operand{id: uint32(C.manifold_original_id(ma)), solid: a, tri: ta, which: kernel.OperandA},
		operand{id: uint32(C.manifold_original_id(mb)), solid: b, tri: tb, which: kernel.OperandB},
		tol)
}

// toManifold uploads t and marks it as an original mesh so its triangles
// carry their own run ID through the boolean.
func toManifold(t triangulation, op kernel.Op) (*C.ManifoldManifold, error) {
	if len(t.tris) == 0 {
		return nil, kernel.Geometryf(op.String(), "operand has no faces")
	}
	gl := C.manifold_meshgl(C.manifold_alloc_meshgl(),
		(*C.float)(unsafe.Pointer(&t.props[0])), C.size_t(len(t.props)/3), 3,
		(*C.uint32_t)(unsafe.Pointer(&t.tris[0])), C.size_t(len(t.tris)/3))
	defer C.manifold_delete_meshgl(gl)

	m := C.manifold_of_meshgl(C.manifold_alloc_manifold(), gl)
	if st := C.manifold_status(m); st != C.MANIFOLD_NO_ERROR {
		C.manifold_delete_manifold(m)
		return nil, kernel.Geometryf(op.String(), "operand rejected: manifold status %d", int(st))
	}
	orig := C.manifold_as_original(C.manifold_alloc_manifold(), m)
	C.manifold_delete_manifold(m)
	return orig, nil
}

func readMesh(gl *C.ManifoldMeshGL) meshResult {
	m := meshResult{numProp: int(C.manifold_meshgl_num_prop(gl))}
	if n := int(C.manifold_meshgl_num_vert(gl)) * m.numProp; n > 0 {
		m.props = make([]float32, n)
		C.manifold_meshgl_vert_properties(unsafe.Pointer(&m.props[0]), gl)
	}
	if n := 3 * int(C.manifold_meshgl_num_tri(gl)); n > 0 {
		m.tris = make([]uint32, n)
		C.manifold_meshgl_tri_verts(unsafe.Pointer(&m.tris[0]), gl)
	}
	if n := int(C.manifold_meshgl_run_index_length(gl)); n > 0 {
		m.runIndex = make([]uint32, n)
		C.manifold_meshgl_run_index(unsafe.Pointer(&m.runIndex[0]), gl)
	}
	if n := int(C.manifold_meshgl_run_original_id_length(gl)); n > 0 {
		m.runOriginalID = make([]uint32, n)
		C.manifold_meshgl_run_original_id(unsafe.Pointer(&m.runOriginalID[0]), gl)
	}
	if n := int(C.manifold_meshgl_face_id_length(gl)); n > 0 {
		m.faceID = make([]uint32, n)
		C.manifold_meshgl_face_id(unsafe.Pointer(&m.faceID[0]), gl)
	}
	return m
}
