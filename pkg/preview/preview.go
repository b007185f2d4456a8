// Package preview evaluates scene scripts into flat-shaded triangle buffers
// for viewers. Triangles are grouped by material and every material gets a
// display colour.
package preview

import (
	"log/slog"
	"math"

	"github.com/chazu/meshbool/pkg/bridge"
	"github.com/chazu/meshbool/pkg/engine"
	"github.com/chazu/meshbool/pkg/graph"
	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/meshio"
	"github.com/chazu/meshbool/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// colorPalette is assigned to materials in order of first appearance.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// MeshData is one output as indexed triangles. Vertices and Normals hold
// xyz triples; corners are not shared between polygons so normals stay
// flat.
type MeshData struct {
	Name     string    `json:"name"`
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Groups   []Group   `json:"groups"`
}

// Group is a run of Count indices starting at Start that share a material.
type Group struct {
	Material string `json:"material"`
	Color    string `json:"color"`
	Start    int    `json:"start"`
	Count    int    `json:"count"`
}

// Message is an error or warning tied to a source position when known.
type Message struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// Result is everything a viewer needs after one evaluation. The slices are
// never nil so they encode as JSON arrays.
type Result struct {
	Meshes   []MeshData `json:"meshes"`
	Errors   []Message  `json:"errors"`
	Warnings []Message  `json:"warnings"`
}

// Previewer runs scripts through the engine and the boolean driver.
type Previewer struct {
	engine *engine.Engine
	driver *bridge.Driver
	logger *slog.Logger
}

// New returns a Previewer that evaluates booleans with d. A nil logger
// selects slog.Default(). opts configure the script engine.
func New(d *bridge.Driver, logger *slog.Logger, opts ...engine.Option) *Previewer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Previewer{engine: engine.NewEngine(opts...), driver: d, logger: logger}
}

// Evaluate takes script source and returns mesh data plus diagnostics.
// Failures never panic or return an error; they are reported in
// Result.Errors with no meshes.
func (p *Previewer) Evaluate(source string) Result {
	result := Result{
		Meshes:   []MeshData{},
		Errors:   []Message{},
		Warnings: []Message{},
	}

	g, evalErrs, err := p.engine.Evaluate(source)
	if err != nil {
		p.logger.Error("evaluation failed", "error", err)
		result.Errors = append(result.Errors, Message{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, Message{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}
	for _, f := range graph.Validate(g) {
		result.Warnings = append(result.Warnings, Message{Message: f.Error()})
	}

	meshes, err := tessellate.Tessellate(g, p.driver)
	if err != nil {
		p.logger.Warn("tessellation failed", "error", err)
		result.Errors = append(result.Errors, Message{Message: "tessellation failed: " + err.Error()})
		return result
	}

	pal := newPalette()
	for _, m := range meshes {
		result.Meshes = append(result.Meshes, Triangulate(m, pal.color))
	}
	return result
}

// palette hands out colours to materials in first-seen order, wrapping
// around when it runs out.
type palette struct {
	assigned map[string]string
}

func newPalette() *palette {
	return &palette{assigned: make(map[string]string)}
}

func (p *palette) color(material string) string {
	if c, ok := p.assigned[material]; ok {
		return c
	}
	c := colorPalette[len(p.assigned)%len(colorPalette)]
	p.assigned[material] = c
	return c
}

// Triangulate ear-clips every polygon of m into triangles, grouped by
// material in order of first appearance. color maps a material to its
// display colour.
func Triangulate(m *meshio.Mesh, color func(material string) string) MeshData {
	var order []string
	byMaterial := make(map[string][]int)
	for i, p := range m.Polys {
		if _, ok := byMaterial[p.Material]; !ok {
			order = append(order, p.Material)
		}
		byMaterial[p.Material] = append(byMaterial[p.Material], i)
	}

	out := MeshData{
		Name:     m.Name,
		Vertices: []float32{},
		Normals:  []float32{},
		Indices:  []uint32{},
		Groups:   []Group{},
	}
	for _, mat := range order {
		g := Group{Material: mat, Color: color(mat), Start: len(out.Indices)}
		for _, pi := range byMaterial[mat] {
			loop := m.PolyLoop(pi)
			n := newell(m.Verts, loop)
			base := uint32(len(out.Vertices) / 3)
			for _, vi := range loop {
				v := m.Verts[vi]
				out.Vertices = append(out.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
				out.Normals = append(out.Normals, float32(n.X), float32(n.Y), float32(n.Z))
			}
			at := make(map[int]uint32, len(loop))
			for j, vi := range loop {
				at[vi] = base + uint32(j)
			}
			for _, t := range kernel.Triangulate(m.Verts, loop) {
				out.Indices = append(out.Indices, at[t[0]], at[t[1]], at[t[2]])
			}
		}
		g.Count = len(out.Indices) - g.Start
		out.Groups = append(out.Groups, g)
	}
	return out
}

// newell returns the unit normal of a planar polygon, or zero for a
// degenerate one.
func newell(verts []v3.Vec, loop []int) v3.Vec {
	var n v3.Vec
	for i, vi := range loop {
		a, b := verts[vi], verts[loop[(i+1)%len(loop)]]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	l := n.Length()
	if l == 0 || math.IsNaN(l) {
		return v3.Vec{}
	}
	return n.DivScalar(l)
}
