package kernel

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangulate splits a planar polygon, given as a loop of indices into
// verts, into len(loop)-2 triangles by ear clipping in the plane of its
// Newell normal. Triangles keep the winding of the loop and hold indices
// into verts. Convex loops come out as a fan from loop[0]. When no ear can
// be found, as for a degenerate loop, the next corner is cut anyway.
func Triangulate(verts []v3.Vec, loop []int) [][3]int {
	n := len(loop)
	if n < 3 {
		return nil
	}
	if n == 3 {
		return [][3]int{{loop[0], loop[1], loop[2]}}
	}

	pts := project(verts, loop)
	rem := make([]int, n)
	for i := range rem {
		rem[i] = i
	}
	tris := make([][3]int, 0, n-2)
	for len(rem) > 3 {
		m := len(rem)
		ear := 1
		for k := 0; k < m; k++ {
			if i := (k + 1) % m; isEar(pts, rem, i) {
				ear = i
				break
			}
		}
		a, b, c := rem[(ear+m-1)%m], rem[ear], rem[(ear+1)%m]
		tris = append(tris, [3]int{loop[a], loop[b], loop[c]})
		rem = append(rem[:ear], rem[ear+1:]...)
	}
	return append(tris, [3]int{loop[rem[0]], loop[rem[1]], loop[rem[2]]})
}

// project maps the loop into 2D by dropping the dominant axis of its
// normal, so a loop wound counter-clockwise about the normal stays
// counter-clockwise.
func project(verts []v3.Vec, loop []int) [][2]float64 {
	var nrm v3.Vec
	for i, vi := range loop {
		a, b := verts[vi], verts[loop[(i+1)%len(loop)]]
		nrm.X += (a.Y - b.Y) * (a.Z + b.Z)
		nrm.Y += (a.Z - b.Z) * (a.X + b.X)
		nrm.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	ax, ay, az := math.Abs(nrm.X), math.Abs(nrm.Y), math.Abs(nrm.Z)

	pts := make([][2]float64, len(loop))
	for i, vi := range loop {
		v := verts[vi]
		switch {
		case ax >= ay && ax >= az:
			pts[i] = [2]float64{v.Y, v.Z}
			if nrm.X < 0 {
				pts[i][0] = -pts[i][0]
			}
		case ay >= az:
			pts[i] = [2]float64{v.Z, v.X}
			if nrm.Y < 0 {
				pts[i][0] = -pts[i][0]
			}
		default:
			pts[i] = [2]float64{v.X, v.Y}
			if nrm.Z < 0 {
				pts[i][0] = -pts[i][0]
			}
		}
	}
	return pts
}

// isEar reports whether the corner at rem[i] is convex and its triangle
// holds no other remaining corner.
func isEar(pts [][2]float64, rem []int, i int) bool {
	m := len(rem)
	ip, in := (i+m-1)%m, (i+1)%m
	a, b, c := pts[rem[ip]], pts[rem[i]], pts[rem[in]]
	if cross2(a, b, c) <= 0 {
		return false
	}
	for j := range rem {
		if j == i || j == ip || j == in {
			continue
		}
		p := pts[rem[j]]
		if p == a || p == b || p == c {
			continue
		}
		if cross2(a, b, p) >= 0 && cross2(b, c, p) >= 0 && cross2(c, a, p) >= 0 {
			return false
		}
	}
	return true
}

// cross2 is twice the signed area of triangle abc.
func cross2(a, b, c [2]float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}
