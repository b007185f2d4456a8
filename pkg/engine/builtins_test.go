package engine

import (
	"strings"
	"testing"

	"github.com/chazu/meshbool/pkg/graph"
	"github.com/chazu/meshbool/pkg/shape"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(sphere :radius 2)`,
			expect: `(sphere "__kw_radius" 2)`,
		},
		{
			name:   "multiple keywords",
			input:  `(cylinder :height 4 :radius 1)`,
			expect: `(cylinder "__kw_height" 4 "__kw_radius" 1)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def my-part :some-key)`,
			expect: `(def my_part "__kw_some-key")`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(vec3 -1 0 -2.5)`,
			expect: `(vec3 -1 0 -2.5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "backtick string preserved",
			input:  "`raw :kw`",
			expect: "`raw :kw`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Builtin tests
// ---------------------------------------------------------------------------

// mustEvaluate evaluates source and fails the test on any error.
func mustEvaluate(t *testing.T, source string) *graph.Scene {
	t.Helper()
	g, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if g == nil {
		t.Fatal("expected non-nil scene")
	}
	return g
}

// outputChild returns the node an output points at.
func outputChild(t *testing.T, g *graph.Scene, name string) *graph.Node {
	t.Helper()
	out := g.Lookup(name)
	if out == nil {
		t.Fatalf("no output named %q", name)
	}
	if out.Kind != graph.NodeOutput {
		t.Fatalf("%q is %s, not output", name, out.Kind)
	}
	children := g.Children(out)
	if len(children) != 1 {
		t.Fatalf("output %q has %d children", name, len(children))
	}
	return children[0]
}

func TestBox(t *testing.T) {
	g := mustEvaluate(t, `(output "cube" (box 1 2 3.5 :material "red"))`)
	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 nodes, got %d", g.NodeCount())
	}
	if len(g.Roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(g.Roots))
	}

	n := outputChild(t, g, "cube")
	bd, ok := n.Data.(graph.BoxData)
	if !ok {
		t.Fatalf("expected BoxData, got %T", n.Data)
	}
	if bd.Dimensions != (graph.Vec3{X: 1, Y: 2, Z: 3.5}) {
		t.Errorf("dimensions = %v", bd.Dimensions)
	}
	if bd.Material != "red" {
		t.Errorf("material = %q, want red", bd.Material)
	}
}

func TestCylinderAndSphere(t *testing.T) {
	g := mustEvaluate(t, `
(output "rod" (cylinder :height 10 :radius 0.5 :material :steel))
(output "hex" (cylinder :height 1 :radius 2 :segments 6))
(output "ball" (sphere :radius 3 :cells 24))
`)
	rod := outputChild(t, g, "rod").Data.(graph.CylinderData)
	if rod.Height != 10 || rod.Radius != 0.5 || rod.Segments != shape.DefaultSegments {
		t.Errorf("rod = %+v", rod)
	}
	if rod.Material != "steel" {
		t.Errorf("rod material = %q, want steel", rod.Material)
	}
	if hex := outputChild(t, g, "hex").Data.(graph.CylinderData); hex.Segments != 6 {
		t.Errorf("hex segments = %d, want 6", hex.Segments)
	}
	ball := outputChild(t, g, "ball").Data.(graph.SphereData)
	if ball.Radius != 3 || ball.Cells != 24 {
		t.Errorf("ball = %+v", ball)
	}
}

func TestTransforms(t *testing.T) {
	g := mustEvaluate(t, `
(output "moved"
  (scale (rotate (translate (box 1 1 1) (vec3 1 -2 3)) (vec3 0 0 90)) 2))
`)
	n := outputChild(t, g, "moved")
	want := []graph.TransformData{
		{Kind: graph.TransformScale, Vector: graph.Vec3{X: 2, Y: 2, Z: 2}},
		{Kind: graph.TransformRotate, Vector: graph.Vec3{Z: 90}},
		{Kind: graph.TransformTranslate, Vector: graph.Vec3{X: 1, Y: -2, Z: 3}},
	}
	for i, w := range want {
		if n.Kind != graph.NodeTransform {
			t.Fatalf("level %d: kind %s, want transform", i, n.Kind)
		}
		if td := n.Data.(graph.TransformData); td != w {
			t.Errorf("level %d: %+v, want %+v", i, td, w)
		}
		n = g.Children(n)[0]
	}
	if _, ok := n.Data.(graph.BoxData); !ok {
		t.Errorf("innermost node is %T, want BoxData", n.Data)
	}
}

func TestBooleans(t *testing.T) {
	g := mustEvaluate(t, `
; two overlapping cubes
(def a (box 1 1 1))
(def b (translate a (vec3 0.5 0 0)))
(output "u" (union a b))
(output "i" (intersection a b))
(output "d" (difference a b (box 0.1 0.1 0.1)))
`)
	for name, op := range map[string]graph.BoolOp{
		"u": graph.BoolUnion,
		"i": graph.BoolIntersection,
		"d": graph.BoolDifference,
	} {
		n := outputChild(t, g, name)
		bd, ok := n.Data.(graph.BooleanData)
		if !ok || bd.Op != op {
			t.Errorf("%s: data %+v, want op %s", name, n.Data, op)
		}
	}

	d := outputChild(t, g, "d")
	if len(d.Children) != 3 {
		t.Fatalf("difference has %d children, want 3", len(d.Children))
	}
	u := outputChild(t, g, "u")
	if d.Children[0] != u.Children[0] || d.Children[1] != u.Children[1] {
		t.Error("shared operands should resolve to the same nodes")
	}
}

func TestIdenticalExpressionsShareNodes(t *testing.T) {
	g := mustEvaluate(t, `(output "self" (union (box 1 1 1) (box 1 1 1)))`)
	if g.NodeCount() != 3 {
		t.Fatalf("expected box, union and output nodes, got %d", g.NodeCount())
	}
	u := outputChild(t, g, "self")
	if u.Children[0] != u.Children[1] {
		t.Error("identical boxes should share a node")
	}
}

func TestDefshapeAndShape(t *testing.T) {
	g := mustEvaluate(t, `
(defshape "bolt" (cylinder :height 2 :radius 0.1))
(def my-copy (shape "bolt"))
(output "o" my-copy)
`)
	bolt := g.Lookup("bolt")
	if bolt == nil || bolt.Kind != graph.NodePrimitive {
		t.Fatalf("bolt = %+v", bolt)
	}
	if outputChild(t, g, "o").ID != bolt.ID {
		t.Error("output should reference the named shape")
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"unknown shape", `(shape "nope")`, "no shape named"},
		{"box arity", `(box 1 2)`, "box requires 3 dimensions"},
		{"box type", `(box 1 "a" 2)`, "expected number"},
		{"union arity", `(union (box 1 1 1))`, "at least 2 shapes"},
		{"transform operand", `(translate 5 (vec3 1 1 1))`, "expected shape"},
		{"transform vector", `(rotate (box 1 1 1) 5)`, "expected vec3"},
		{"cylinder height", `(cylinder :radius 1)`, "requires :height"},
		{"sphere radius", `(sphere :cells 4)`, "requires :radius"},
		{"segments integer", `(cylinder :height 1 :radius 1 :segments 2.5)`, "expected integer"},
		{"vec3 arity", `(vec3 1 2)`, "exactly 3 arguments"},
		{"defshape twice", `(defshape "x" (box 1 1 1)) (defshape "x" (box 2 2 2))`, "already bound"},
		{"output twice", `(output "o" (box 1 1 1)) (output "o" (box 2 2 2))`, "already defined"},
		{"validation", `(output "o" (box 0 1 1))`, "box dimension X"},
		{"validation segments", `(output "o" (cylinder :height 1 :radius 1 :segments 2))`, "needs at least 3"},
		{"validation scale", `(output "o" (scale (box 1 1 1) (vec3 1 -1 1)))`, "scale factors"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal error, got fatal: %v", err)
			}
			if g != nil {
				t.Error("expected nil scene on error")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected eval errors")
			}
			found := false
			for _, e := range evalErrs {
				if strings.Contains(e.Message, tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not mention %q", evalErrs, tt.want)
			}
		})
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	g := mustEvaluate(t, `
(def w (* 2 1.5))
(output "plate" (box w (+ w 1) 0.25))
`)
	bd := outputChild(t, g, "plate").Data.(graph.BoxData)
	if bd.Dimensions != (graph.Vec3{X: 3, Y: 4, Z: 0.25}) {
		t.Errorf("dimensions = %v, want (3, 4, 0.25)", bd.Dimensions)
	}
}

func TestScriptWithoutOutputsWarnsOnly(t *testing.T) {
	g := mustEvaluate(t, `(defshape "spare" (box 1 1 1))`)
	if len(g.Roots) != 0 {
		t.Fatalf("expected no roots, got %d", len(g.Roots))
	}
	findings := graph.Validate(g)
	if graph.HasErrors(findings) || len(findings) != 1 {
		t.Fatalf("expected a single orphan warning, got %v", findings)
	}
}
