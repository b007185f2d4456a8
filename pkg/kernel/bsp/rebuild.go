package bsp

import (
	"math"
	"sort"

	"github.com/chazu/meshbool/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// loop is a clipped polygon over the welded vertex pool.
type loop struct {
	idx    []int
	edges  []kernel.EdgeOrigin
	origin kernel.FaceOrigin
}

func (l *loop) positions(verts []v3.Vec) []v3.Vec {
	out := make([]v3.Vec, len(l.idx))
	for i, vi := range l.idx {
		out[i] = verts[vi]
	}
	return out
}

func (l *loop) removeAt(i int) {
	l.idx = append(l.idx[:i], l.idx[i+1:]...)
	l.edges = append(l.edges[:i], l.edges[i+1:]...)
}

// clean drops zero-length edges and back-and-forth spikes. It reports
// whether a proper polygon is left.
func (l *loop) clean() bool {
	for changed := true; changed && len(l.idx) >= 3; {
		changed = false
		n := len(l.idx)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			if l.idx[i] == l.idx[j] {
				l.edges[i] = l.edges[j]
				l.removeAt(j)
				changed = true
				break
			}
			k := (i + 2) % n
			if l.idx[i] == l.idx[k] {
				l.edges[i] = l.edges[k]
				hi, lo := max(j, k), min(j, k)
				l.removeAt(hi)
				l.removeAt(lo)
				changed = true
				break
			}
		}
	}
	return len(l.idx) >= 3
}

// welder snaps positions closer than eps onto one pool entry using a
// uniform spatial hash.
type welder struct {
	eps   float64
	cell  float64
	grid  map[[3]int64][]int
	verts []v3.Vec
}

func newWelder(eps float64) *welder {
	return &welder{eps: eps, cell: 2 * eps, grid: make(map[[3]int64][]int)}
}

func (w *welder) key(v v3.Vec) [3]int64 {
	return [3]int64{
		int64(math.Floor(v.X / w.cell)),
		int64(math.Floor(v.Y / w.cell)),
		int64(math.Floor(v.Z / w.cell)),
	}
}

func (w *welder) add(v v3.Vec) int {
	k := w.key(v)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, i := range w.grid[[3]int64{k[0] + dx, k[1] + dy, k[2] + dz}] {
					if w.verts[i].Sub(v).Length() <= w.eps {
						return i
					}
				}
			}
		}
	}
	i := len(w.verts)
	w.verts = append(w.verts, v)
	w.grid[k] = append(w.grid[k], i)
	return i
}

// rebuild turns the clipped polygon soup back into a solid and its
// ancestry table.
func rebuild(polys []*polygon, eps float64) *kernel.Result {
	w := newWelder(eps)
	loops := make([]*loop, 0, len(polys))
	for _, p := range polys {
		l := &loop{
			idx:    make([]int, len(p.verts)),
			edges:  append([]kernel.EdgeOrigin(nil), p.edges...),
			origin: p.origin,
		}
		for i, v := range p.verts {
			l.idx[i] = w.add(v)
		}
		if !l.clean() {
			continue
		}
		if newell(l.positions(w.verts)).Length() <= eps*eps {
			continue
		}
		loops = append(loops, l)
	}

	loops = splitTJunctions(loops, w.verts, eps)
	loops = mergeCoplanar(loops, w.verts)
	dropCollinear(loops, w.verts, eps)
	return compact(loops, w.verts)
}

// splitTJunctions inserts every pool vertex that lies on the interior of a
// polygon edge into that edge. The pieces inherit the edge's ancestry.
func splitTJunctions(loops []*loop, verts []v3.Vec, eps float64) []*loop {
	used := make(map[int]bool)
	for _, l := range loops {
		for _, vi := range l.idx {
			used[vi] = true
		}
	}
	byX := make([]int, 0, len(used))
	for vi := range used {
		byX = append(byX, vi)
	}
	sort.Slice(byX, func(i, j int) bool {
		if verts[byX[i]].X != verts[byX[j]].X {
			return verts[byX[i]].X < verts[byX[j]].X
		}
		return byX[i] < byX[j]
	})

	type hit struct {
		t  float64
		vi int
	}
	for _, l := range loops {
		own := make(map[int]bool, len(l.idx))
		for _, vi := range l.idx {
			own[vi] = true
		}
		n := len(l.idx)
		idx := make([]int, 0, n)
		edges := make([]kernel.EdgeOrigin, 0, n)
		for i := 0; i < n; i++ {
			a, b := verts[l.idx[i]], verts[l.idx[(i+1)%n]]
			idx = append(idx, l.idx[i])
			edges = append(edges, l.edges[i])

			d := b.Sub(a)
			len2 := d.Dot(d)
			lo, hi := math.Min(a.X, b.X)-eps, math.Max(a.X, b.X)+eps
			start := sort.Search(len(byX), func(k int) bool { return verts[byX[k]].X >= lo })
			var hits []hit
			for _, vi := range byX[start:] {
				p := verts[vi]
				if p.X > hi {
					break
				}
				if own[vi] {
					continue
				}
				t := p.Sub(a).Dot(d) / len2
				if t <= 0 || t >= 1 {
					continue
				}
				if p.Sub(a.Add(d.MulScalar(t))).Length() > eps {
					continue
				}
				hits = append(hits, hit{t: t, vi: vi})
			}
			sort.Slice(hits, func(x, y int) bool { return hits[x].t < hits[y].t })
			for _, h := range hits {
				idx = append(idx, h.vi)
				edges = append(edges, l.edges[i])
				own[h.vi] = true
			}
		}
		l.idx, l.edges = idx, edges
	}
	return loops
}

type dirEdge struct {
	a, b int
}

// mergeCoplanar fuses fragments of the same operand face back into as few
// loops as possible. A group whose outline cannot be traced into simple,
// consistently wound loops is left as it was.
func mergeCoplanar(loops []*loop, verts []v3.Vec) []*loop {
	groups := make(map[kernel.FaceOrigin][]*loop)
	var order []kernel.FaceOrigin
	for _, l := range loops {
		if _, ok := groups[l.origin]; !ok {
			order = append(order, l.origin)
		}
		groups[l.origin] = append(groups[l.origin], l)
	}

	out := make([]*loop, 0, len(loops))
	for _, key := range order {
		g := groups[key]
		if len(g) > 1 {
			if merged, ok := mergeGroup(g, verts); ok {
				g = merged
			}
		}
		out = append(out, g...)
	}
	return out
}

func mergeGroup(group []*loop, verts []v3.Vec) ([]*loop, bool) {
	count := make(map[dirEdge]int)
	anc := make(map[dirEdge]kernel.EdgeOrigin)
	var all []dirEdge
	for _, l := range group {
		n := len(l.idx)
		for i := range l.idx {
			e := dirEdge{l.idx[i], l.idx[(i+1)%n]}
			count[e]++
			if count[e] > 1 {
				return nil, false
			}
			anc[e] = l.edges[i]
			all = append(all, e)
		}
	}

	next := make(map[int]dirEdge)
	var boundary []dirEdge
	for _, e := range all {
		if count[dirEdge{e.b, e.a}] > 0 {
			continue
		}
		if _, pinch := next[e.a]; pinch {
			return nil, false
		}
		next[e.a] = e
		boundary = append(boundary, e)
	}

	normal := newell(group[0].positions(verts))
	visited := make(map[dirEdge]bool)
	var out []*loop
	for _, start := range boundary {
		if visited[start] {
			continue
		}
		l := &loop{origin: group[0].origin}
		for cur := start; ; {
			visited[cur] = true
			l.idx = append(l.idx, cur.a)
			l.edges = append(l.edges, anc[cur])
			nxt, ok := next[cur.b]
			if !ok {
				return nil, false
			}
			if nxt == start {
				break
			}
			if visited[nxt] {
				return nil, false
			}
			cur = nxt
		}
		if len(l.idx) < 3 || newell(l.positions(verts)).Dot(normal) <= 0 {
			return nil, false
		}
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// dropCollinear removes vertices shared by exactly two polygons that sit
// in the middle of a straight run with the same ancestry on both sides.
func dropCollinear(loops []*loop, verts []v3.Vec, eps float64) {
	for changed := true; changed; {
		changed = false
		uses := make(map[int][]*loop)
		for _, l := range loops {
			for _, vi := range l.idx {
				uses[vi] = append(uses[vi], l)
			}
		}
		cand := make([]int, 0, len(uses))
		for vi, ls := range uses {
			if len(ls) == 2 && ls[0] != ls[1] {
				cand = append(cand, vi)
			}
		}
		sort.Ints(cand)

		for _, vi := range cand {
			ls := uses[vi]
			p0, ok0 := removable(ls[0], vi, verts, eps)
			p1, ok1 := removable(ls[1], vi, verts, eps)
			if !ok0 || !ok1 {
				continue
			}
			ls[0].removeAt(p0)
			ls[1].removeAt(p1)
			changed = true
		}
	}
}

func removable(l *loop, vi int, verts []v3.Vec, eps float64) (int, bool) {
	n := len(l.idx)
	if n <= 3 {
		return 0, false
	}
	pos := -1
	for i, x := range l.idx {
		if x == vi {
			pos = i
			break
		}
	}
	if pos < 0 {
		return 0, false
	}
	prev := (pos + n - 1) % n
	if l.edges[prev] != l.edges[pos] {
		return 0, false
	}
	a, b, p := verts[l.idx[prev]], verts[l.idx[(pos+1)%n]], verts[vi]
	d := b.Sub(a)
	t := p.Sub(a).Dot(d) / d.Dot(d)
	if t <= 0 || t >= 1 {
		return 0, false
	}
	if p.Sub(a.Add(d.MulScalar(t))).Length() > eps {
		return 0, false
	}
	return pos, true
}

// compact drops unused pool entries and emits the solid with its ancestry.
func compact(loops []*loop, verts []v3.Vec) *kernel.Result {
	remap := make(map[int]int)
	s := &kernel.Solid{Faces: make([]kernel.Face, 0, len(loops))}
	anc := kernel.Ancestry{
		Faces: make([]kernel.FaceOrigin, 0, len(loops)),
		Edges: make([][]kernel.EdgeOrigin, 0, len(loops)),
	}
	for _, l := range loops {
		f := kernel.Face{Verts: make([]int, len(l.idx))}
		for i, vi := range l.idx {
			ni, ok := remap[vi]
			if !ok {
				ni = len(s.Verts)
				remap[vi] = ni
				s.Verts = append(s.Verts, verts[vi])
			}
			f.Verts[i] = ni
		}
		s.Faces = append(s.Faces, f)
		anc.Faces = append(anc.Faces, l.origin)
		anc.Edges = append(anc.Edges, l.edges)
	}
	return &kernel.Result{Solid: s, Ancestry: anc}
}
