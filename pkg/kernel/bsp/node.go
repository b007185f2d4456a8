package bsp

// node is one level of a BSP tree. Polygons coplanar with the node's plane
// are stored on the node; the rest live in the front and back subtrees.
type node struct {
	plane    plane
	hasPlane bool
	front    *node
	back     *node
	polygons []*polygon
	eps      float64
}

func newNode(polys []*polygon, eps float64) *node {
	n := &node{eps: eps}
	n.build(polys)
	return n
}

// invert turns solid space into empty space and back.
func (n *node) invert() {
	for _, p := range n.polygons {
		p.flip()
	}
	if n.hasPlane {
		n.plane.flip()
	}
	if n.front != nil {
		n.front.invert()
	}
	if n.back != nil {
		n.back.invert()
	}
	n.front, n.back = n.back, n.front
}

// clipPolygons removes the parts of polys that lie inside the solid this
// tree represents.
func (n *node) clipPolygons(polys []*polygon) []*polygon {
	if !n.hasPlane {
		return append([]*polygon(nil), polys...)
	}
	var fronts, backs []*polygon
	for _, p := range polys {
		n.plane.split(p, &fronts, &backs, &fronts, &backs, n.eps)
	}
	if n.front != nil {
		fronts = n.front.clipPolygons(fronts)
	}
	if n.back != nil {
		backs = n.back.clipPolygons(backs)
	} else {
		backs = nil
	}
	return append(fronts, backs...)
}

// clipTo removes every polygon of n that lies inside other.
func (n *node) clipTo(other *node) {
	n.polygons = other.clipPolygons(n.polygons)
	if n.front != nil {
		n.front.clipTo(other)
	}
	if n.back != nil {
		n.back.clipTo(other)
	}
}

func (n *node) allPolygons() []*polygon {
	out := append([]*polygon(nil), n.polygons...)
	if n.front != nil {
		out = append(out, n.front.allPolygons()...)
	}
	if n.back != nil {
		out = append(out, n.back.allPolygons()...)
	}
	return out
}

// build inserts polys into the tree, splitting them along existing planes.
// The first polygon to reach an empty node donates its plane.
func (n *node) build(polys []*polygon) {
	if len(polys) == 0 {
		return
	}
	if !n.hasPlane {
		n.plane = polys[0].plane
		n.hasPlane = true
	}
	var fronts, backs []*polygon
	for _, p := range polys {
		n.plane.split(p, &n.polygons, &n.polygons, &fronts, &backs, n.eps)
	}
	if len(fronts) > 0 {
		if n.front == nil {
			n.front = &node{eps: n.eps}
		}
		n.front.build(fronts)
	}
	if len(backs) > 0 {
		if n.back == nil {
			n.back = &node{eps: n.eps}
		}
		n.back.build(backs)
	}
}
