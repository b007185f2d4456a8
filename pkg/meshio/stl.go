package meshio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/chazu/meshbool/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const stlHeaderSize = 80

// stlTriangle is the 50-byte binary STL facet record.
type stlTriangle struct {
	Normal [3]float32
	V      [3][3]float32
	Attr   uint16
}

// WriteSTL writes m as binary STL. Polygons are split by ear clipping, so
// non-convex faces stay inside their outline.
func WriteSTL(w io.Writer, m *Mesh) error {
	var tris []stlTriangle
	for i := range m.Polys {
		for _, t := range kernel.Triangulate(m.Verts, m.PolyLoop(i)) {
			p0, p1, p2 := m.Verts[t[0]], m.Verts[t[1]], m.Verts[t[2]]
			n := p1.Sub(p0).Cross(p2.Sub(p0))
			if l := n.Length(); l > 0 {
				n = n.DivScalar(l)
			}
			tris = append(tris, stlTriangle{
				Normal: stlVec(n),
				V:      [3][3]float32{stlVec(p0), stlVec(p1), stlVec(p2)},
			})
		}
	}
	if uint64(len(tris)) > math.MaxUint32 {
		return fmt.Errorf("meshio: %d triangles exceed binary stl limit", len(tris))
	}

	bw := bufio.NewWriter(w)
	var header [stlHeaderSize]byte
	copy(header[:], "meshbool "+m.Name)
	if _, err := bw.Write(header[:]); err != nil {
		return fmt.Errorf("meshio: write stl: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(tris))); err != nil {
		return fmt.Errorf("meshio: write stl: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, tris); err != nil {
		return fmt.Errorf("meshio: write stl: %w", err)
	}
	return bw.Flush()
}

// ReadSTL parses binary STL. Coincident corners are merged so the result
// has shared vertices and edges.
func ReadSTL(r io.Reader) (*Mesh, error) {
	br := bufio.NewReader(r)
	var header [stlHeaderSize]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, fmt.Errorf("meshio: read stl header: %w", err)
	}
	var count uint32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("meshio: read stl count: %w", err)
	}

	index := make(map[[3]float32]int)
	var verts []v3.Vec
	polys := make([][]int, 0, count)
	var t stlTriangle
	for i := uint32(0); i < count; i++ {
		if err := binary.Read(br, binary.LittleEndian, &t); err != nil {
			return nil, fmt.Errorf("meshio: read stl triangle %d: %w", i, err)
		}
		poly := make([]int, 3)
		for j, c := range t.V {
			vi, ok := index[c]
			if !ok {
				vi = len(verts)
				index[c] = vi
				verts = append(verts, v3.Vec{X: float64(c[0]), Y: float64(c[1]), Z: float64(c[2])})
			}
			poly[j] = vi
		}
		if poly[0] == poly[1] || poly[1] == poly[2] || poly[2] == poly[0] {
			continue
		}
		polys = append(polys, poly)
	}
	return New(verts, polys)
}

func stlVec(v v3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
