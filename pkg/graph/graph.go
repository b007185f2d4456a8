package graph

import "fmt"

// Scene is the top-level immutable data structure produced by script
// evaluation. It is never mutated in place; each evaluation produces a new
// scene.
type Scene struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
}

// New creates an empty Scene.
func New() *Scene {
	return &Scene{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
	}
}

// AddNode adds a node to the scene. A node with the same ID is replaced.
func (g *Scene) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the scene.
func (g *Scene) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// Name binds name to an existing node. Names are unique.
func (g *Scene) Name(name string, id NodeID) error {
	if name == "" {
		return fmt.Errorf("graph: empty name")
	}
	if prev, ok := g.NameIndex[name]; ok {
		return fmt.Errorf("graph: name %q already bound to node %s", name, prev.Short())
	}
	n, ok := g.Nodes[id]
	if !ok {
		return fmt.Errorf("graph: no node %s", id.Short())
	}
	g.NameIndex[name] = id
	if n.Name == "" {
		n.Name = name
	}
	return nil
}

// Lookup returns the node bound to name, or nil.
func (g *Scene) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node bound to name, or panics.
func (g *Scene) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *Scene) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Outputs returns the root nodes in registration order.
func (g *Scene) Outputs() []*Node {
	out := make([]*Node, 0, len(g.Roots))
	for _, id := range g.Roots {
		if n := g.Nodes[id]; n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Children returns the child nodes of the given node.
func (g *Scene) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *Scene) NodeCount() int {
	return len(g.Nodes)
}
