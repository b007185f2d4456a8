package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/meshbool/pkg/graph"
	"github.com/chazu/meshbool/pkg/shape"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms meshbool Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: make-part -> make_part
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator).
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// zygomys uses // for line comments, not ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Only when the hyphen sits between identifier characters; a minus
		// operator or negative literal is left alone.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(shape %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer; floats are accepted when integral.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_red) and plain strings ("red").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return graph.ZeroID, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Node construction
// ---------------------------------------------------------------------------

// addNode inserts a node whose ID is derived from its kind, payload and
// children. Structurally identical expressions share one node.
func addNode(g *graph.Scene, kind graph.NodeKind, data graph.NodeData, children ...graph.NodeID) *sexpNodeRef {
	var path strings.Builder
	fmt.Fprintf(&path, "%s/%T%+v", kind, data, data)
	for _, c := range children {
		path.WriteByte('/')
		path.WriteString(c.String())
	}
	id := graph.NewNodeID(path.String())
	if g.Get(id) == nil {
		g.AddNode(&graph.Node{ID: id, Kind: kind, Children: children, Data: data})
	}
	return &sexpNodeRef{id: id}
}

// material reads the optional :material keyword.
func material(fn string, pa kwArgs) (string, error) {
	v, ok := pa.kw["material"]
	if !ok {
		return "", nil
	}
	m, err := toKeywordString(v)
	if err != nil {
		return "", fmt.Errorf("%s: material: %w", fn, err)
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all meshbool DSL builtins into a zygomys
// environment. The builtins populate g during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.Scene) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: graph.Vec3{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (box 10 20 5 :material "steel")
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("box requires 3 dimensions, got %d", len(pa.positional))
		}
		var c [3]float64
		for i := range c {
			f, err := toFloat64(pa.positional[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: dimension %d: %w", i+1, err)
			}
			c[i] = f
		}
		mat, err := material("box", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		return addNode(g, graph.NodePrimitive, graph.BoxData{
			Dimensions: graph.Vec3{X: c[0], Y: c[1], Z: c[2]},
			Material:   mat,
		}), nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 10 :radius 2 :segments 24)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		cd := graph.CylinderData{Segments: shape.DefaultSegments}

		v, ok := pa.kw["height"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("cylinder requires :height")
		}
		f, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
		}
		cd.Height = f

		v, ok = pa.kw["radius"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("cylinder requires :radius")
		}
		if cd.Radius, err = toFloat64(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
		}

		if v, ok := pa.kw["segments"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: segments: %w", err)
			}
			cd.Segments = n
		}
		if cd.Material, err = material("cylinder", pa); err != nil {
			return zygo.SexpNull, err
		}
		return addNode(g, graph.NodePrimitive, cd), nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 5 :cells 48)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		sd := graph.SphereData{}

		v, ok := pa.kw["radius"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("sphere requires :radius")
		}
		f, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
		}
		sd.Radius = f

		if v, ok := pa.kw["cells"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: cells: %w", err)
			}
			sd.Cells = n
		}
		if sd.Material, err = material("sphere", pa); err != nil {
			return zygo.SexpNull, err
		}
		return addNode(g, graph.NodePrimitive, sd), nil
	})

	// -----------------------------------------------------------------------
	// (translate s (vec3 1 0 0)), (rotate s (vec3 0 0 90)), (scale s 2)
	// -----------------------------------------------------------------------
	transforms := map[string]graph.TransformKind{
		"translate": graph.TransformTranslate,
		"rotate":    graph.TransformRotate,
		"scale":     graph.TransformScale,
	}
	for fn, kind := range transforms {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires a shape and a vec3, got %d arguments", fn, len(args))
			}
			child, err := toNodeRef(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			vec, err := toVec3(args[1])
			if err != nil && kind == graph.TransformScale {
				// (scale s 2) scales uniformly.
				if f, ferr := toFloat64(args[1]); ferr == nil {
					vec, err = graph.Vec3{X: f, Y: f, Z: f}, nil
				}
			}
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			return addNode(g, graph.NodeTransform, graph.TransformData{Kind: kind, Vector: vec}, child), nil
		})
	}

	// -----------------------------------------------------------------------
	// (union a b ...), (intersection a b ...), (difference a b ...)
	// -----------------------------------------------------------------------
	booleans := map[string]graph.BoolOp{
		"union":        graph.BoolUnion,
		"intersection": graph.BoolIntersection,
		"difference":   graph.BoolDifference,
	}
	for fn, op := range booleans {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) < 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires at least 2 shapes, got %d", fn, len(args))
			}
			children := make([]graph.NodeID, 0, len(args))
			for i, a := range args {
				id, err := toNodeRef(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: operand %d: %w", fn, i+1, err)
				}
				children = append(children, id)
			}
			return addNode(g, graph.NodeBoolean, graph.BooleanData{Op: op}, children...), nil
		})
	}

	// -----------------------------------------------------------------------
	// (defshape "name" s)
	// -----------------------------------------------------------------------
	env.AddFunction("defshape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defshape requires a name and a shape")
		}
		shapeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: name: %w", err)
		}
		id, err := toNodeRef(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: %w", err)
		}
		if err := g.Name(shapeName, id); err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: %w", err)
		}
		return &sexpNodeRef{id: id, name: shapeName}, nil
	})

	// -----------------------------------------------------------------------
	// (shape "name")
	// -----------------------------------------------------------------------
	env.AddFunction("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("shape requires a name argument")
		}
		shapeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: name: %w", err)
		}
		n := g.Lookup(shapeName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("shape: no shape named %q", shapeName)
		}
		return &sexpNodeRef{id: n.ID, name: shapeName}, nil
	})

	// -----------------------------------------------------------------------
	// (output "name" s)
	// -----------------------------------------------------------------------
	env.AddFunction("output", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("output requires a name and a shape")
		}
		outName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("output: name: %w", err)
		}
		if outName == "" {
			return zygo.SexpNull, fmt.Errorf("output: empty name")
		}
		child, err := toNodeRef(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("output: %w", err)
		}
		if g.Lookup(outName) != nil {
			return zygo.SexpNull, fmt.Errorf("output: name %q already defined", outName)
		}

		id := graph.NewNodeID("output/" + outName)
		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeOutput,
			Name:     outName,
			Children: []graph.NodeID{child},
			Data:     graph.OutputData{},
		})
		g.AddRoot(id)
		return &sexpNodeRef{id: id, name: outName}, nil
	})
}
