package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Polygon is a planar convex loop of vertices, wound counter-clockwise as
// seen from the front side of its plane.
type Polygon []v3.Vec

// Clone returns an independent copy of the polygon.
func (p Polygon) Clone() Polygon {
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// Center returns the vertex average.
func (p Polygon) Center() v3.Vec {
	var c v3.Vec
	if len(p) == 0 {
		return c
	}
	for _, v := range p {
		c = c.Add(v)
	}
	return c.DivScalar(float64(len(p)))
}

// Contains reports whether pt is one of the polygon's vertices, within
// PointEpsilon.
func (p Polygon) Contains(pt v3.Vec) bool {
	for _, v := range p {
		if v.Sub(pt).Length() < PointEpsilon {
			return true
		}
	}
	return false
}

// Area returns the polygon area via the fan decomposition around the first
// vertex.
func (p Polygon) Area() float64 {
	if len(p) < 3 {
		return 0
	}
	var sum v3.Vec
	for i := 1; i < len(p)-1; i++ {
		sum = sum.Add(p[i].Sub(p[0]).Cross(p[i+1].Sub(p[0])))
	}
	return sum.Length() / 2
}

// BasePolygon builds a large quad lying on the plane, big enough to cover
// bounds. The quad is wound counter-clockwise as seen from the plane front.
// It is the seed polygon for the topology rebuild: clipping it against the
// other faces of a brush yields the face's boundary polygon.
func BasePolygon(pl Plane, bounds sdf.Box3) Polygon {
	// Pick the coordinate axis least aligned with the normal to derive a
	// stable in-plane basis.
	ax := v3.Vec{X: 1}
	nx, ny, nz := math.Abs(pl.Normal.X), math.Abs(pl.Normal.Y), math.Abs(pl.Normal.Z)
	if ny <= nx && ny <= nz {
		ax = v3.Vec{Y: 1}
	} else if nz <= nx && nz <= ny {
		ax = v3.Vec{Z: 1}
	}
	u := pl.Normal.Cross(ax).Normalize()
	v := pl.Normal.Cross(u)

	half := bounds.Size().Length() * 2
	center := pl.Project(bounds.Center())
	uu := u.MulScalar(half)
	vv := v.MulScalar(half)
	// u × v == normal, so this order is counter-clockwise from the front.
	return Polygon{
		center.Sub(uu).Sub(vv),
		center.Add(uu).Sub(vv),
		center.Add(uu).Add(vv),
		center.Sub(uu).Add(vv),
	}
}

// ClipPolygon cuts away the part of the polygon in front of pl, keeping the
// back side. On-plane vertices are kept. Returns nil when fewer than three
// vertices survive or the remainder has collapsed to a sliver.
func ClipPolygon(p Polygon, pl Plane) Polygon {
	if len(p) < 3 {
		return nil
	}
	sides := make([]Side, len(p))
	front := 0
	back := 0
	for i, v := range p {
		sides[i] = pl.Classify(v)
		switch sides[i] {
		case SideFront:
			front++
		case SideBack:
			back++
		}
	}
	if front == 0 {
		return p
	}
	if back == 0 {
		return nil
	}

	var out Polygon
	for i := range p {
		j := (i + 1) % len(p)
		vi, vj := p[i], p[j]
		if sides[i] != SideFront {
			out = append(out, vi)
		}
		// Edge crosses the plane: insert the crossing point.
		if (sides[i] == SideFront && sides[j] == SideBack) ||
			(sides[i] == SideBack && sides[j] == SideFront) {
			dir := vj.Sub(vi)
			t := -pl.DistanceTo(vi) / pl.Normal.Dot(dir)
			out = append(out, vi.Add(dir.MulScalar(t)))
		}
	}
	out = dedupeLoop(out)
	if len(out) < 3 || out.Area() < PointEpsilon*PointEpsilon {
		return nil
	}
	return out
}

// dedupeLoop removes consecutive duplicate vertices, treating the loop as
// closed.
func dedupeLoop(p Polygon) Polygon {
	if len(p) == 0 {
		return p
	}
	var out Polygon
	for i, v := range p {
		prev := p[(i+len(p)-1)%len(p)]
		if i == 0 || v.Sub(prev).Length() >= PointEpsilon {
			out = append(out, v)
		}
	}
	if len(out) > 1 && out[0].Sub(out[len(out)-1]).Length() < PointEpsilon {
		out = out[:len(out)-1]
	}
	return out
}
