package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ReadOBJ parses a Wavefront OBJ stream. Only positions ("v"), faces ("f"),
// object names ("o") and material switches ("usemtl") are kept; texture
// coordinates and normals are ignored. Face indices may be negative.
func ReadOBJ(r io.Reader) (*Mesh, error) {
	var (
		name     string
		verts    []v3.Vec
		polys    [][]int
		mats     []string
		material string
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("meshio: obj line %d: vertex needs 3 coordinates", line)
			}
			var c [3]float64
			for i := range c {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("meshio: obj line %d: %w", line, err)
				}
				c[i] = f
			}
			verts = append(verts, v3.Vec{X: c[0], Y: c[1], Z: c[2]})
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("meshio: obj line %d: face needs at least 3 vertices", line)
			}
			poly := make([]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				idx, err := objIndex(tok, len(verts))
				if err != nil {
					return nil, fmt.Errorf("meshio: obj line %d: %w", line, err)
				}
				poly = append(poly, idx)
			}
			polys = append(polys, poly)
			mats = append(mats, material)
		case "o":
			if len(fields) > 1 && name == "" {
				name = strings.Join(fields[1:], " ")
			}
		case "usemtl":
			material = ""
			if len(fields) > 1 {
				material = fields[1]
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("meshio: read obj: %w", err)
	}

	m, err := New(verts, polys)
	if err != nil {
		return nil, err
	}
	m.Name = name
	for i, mat := range mats {
		m.Polys[i].Material = mat
	}
	return m, nil
}

// objIndex resolves one face token ("7", "7/1", "7//3", "-1") to a zero-based
// vertex index.
func objIndex(tok string, nverts int) (int, error) {
	if i := strings.IndexByte(tok, '/'); i >= 0 {
		tok = tok[:i]
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", tok)
	}
	switch {
	case n > 0 && n <= nverts:
		return n - 1, nil
	case n < 0 && -n <= nverts:
		return nverts + n, nil
	}
	return 0, fmt.Errorf("face index %d outside %d vertices", n, nverts)
}

// WriteOBJ writes m as a Wavefront OBJ stream. A "usemtl" line is emitted
// whenever the polygon material changes.
func WriteOBJ(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	if m.Name != "" {
		fmt.Fprintf(bw, "o %s\n", m.Name)
	}
	for _, v := range m.Verts {
		fmt.Fprintf(bw, "v %s %s %s\n", objFloat(v.X), objFloat(v.Y), objFloat(v.Z))
	}
	material := ""
	for i, p := range m.Polys {
		if p.Material != material {
			material = p.Material
			fmt.Fprintf(bw, "usemtl %s\n", material)
		}
		bw.WriteString("f")
		for _, v := range m.PolyLoop(i) {
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(v + 1))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func objFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
