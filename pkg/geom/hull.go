package geom

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Hull is the convex hull of a point set, reduced to its supporting planes.
// Coplanar hull triangles are merged, so Planes holds one entry per
// polygonal facet.
type Hull struct {
	Planes []Plane
	Points []v3.Vec // the input points that lie on the hull boundary
}

// hullTri is one triangle of the working hull, normal pointing outward.
type hullTri struct {
	a, b, c v3.Vec
	plane   Plane
}

// hullEdge tracks edge occurrence counts while removing visible triangles.
// An edge seen exactly once is on the horizon loop.
type hullEdge struct {
	a, b  v3.Vec
	count int
}

// ConvexHull computes the convex hull of the given points using incremental
// insertion: each point outside the current hull removes the triangles that
// can see it and is reconnected to the horizon loop. Fails with
// ErrDegenerate when the points span fewer than three dimensions.
func ConvexHull(points []v3.Vec) (*Hull, error) {
	pts := dedupePoints(points)
	if len(pts) < 4 {
		return nil, fmt.Errorf("convex hull of %d distinct points: %w", len(pts), ErrDegenerate)
	}

	tris, rest, err := initialTetrahedron(pts)
	if err != nil {
		return nil, err
	}

	for _, p := range rest {
		tris = insertPoint(tris, p)
	}

	h := &Hull{Planes: mergeFacetPlanes(tris)}
	for _, p := range pts {
		if hullBoundaryPoint(h.Planes, p) {
			h.Points = append(h.Points, p)
		}
	}
	return h, nil
}

// dedupePoints removes points within PointEpsilon of an earlier point,
// preserving order.
func dedupePoints(points []v3.Vec) []v3.Vec {
	var out []v3.Vec
	for _, p := range points {
		dup := false
		for _, q := range out {
			if p.Sub(q).Length() < PointEpsilon {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// initialTetrahedron finds four non-coplanar points and returns the four
// outward-facing triangles they span, plus the remaining points.
func initialTetrahedron(pts []v3.Vec) ([]hullTri, []v3.Vec, error) {
	// Widest pair.
	i0, i1 := 0, 1
	best := -1.0
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			if d := pts[i].Sub(pts[j]).Length(); d > best {
				best, i0, i1 = d, i, j
			}
		}
	}
	if best < PointEpsilon {
		return nil, nil, ErrDegenerate
	}

	// Farthest from the line i0-i1.
	dir := pts[i1].Sub(pts[i0]).Normalize()
	i2 := -1
	best = DistanceEpsilon
	for i := range pts {
		off := pts[i].Sub(pts[i0])
		if d := off.Sub(dir.MulScalar(off.Dot(dir))).Length(); d > best {
			best, i2 = d, i
		}
	}
	if i2 < 0 {
		return nil, nil, fmt.Errorf("collinear point set: %w", ErrDegenerate)
	}

	base, err := PlaneFromPoints(pts[i0], pts[i1], pts[i2])
	if err != nil {
		return nil, nil, err
	}

	// Farthest from the base plane.
	i3 := -1
	best = DistanceEpsilon
	for i := range pts {
		if d := math.Abs(base.DistanceTo(pts[i])); d > best {
			best, i3 = d, i
		}
	}
	if i3 < 0 {
		return nil, nil, fmt.Errorf("coplanar point set: %w", ErrDegenerate)
	}

	p0, p1, p2, p3 := pts[i0], pts[i1], pts[i2], pts[i3]
	centroid := p0.Add(p1).Add(p2).Add(p3).DivScalar(4)
	tris := []hullTri{
		newHullTri(p0, p1, p2, centroid),
		newHullTri(p0, p1, p3, centroid),
		newHullTri(p0, p2, p3, centroid),
		newHullTri(p1, p2, p3, centroid),
	}

	used := map[int]bool{i0: true, i1: true, i2: true, i3: true}
	var rest []v3.Vec
	for i, p := range pts {
		if !used[i] {
			rest = append(rest, p)
		}
	}
	return tris, rest, nil
}

// newHullTri builds a triangle whose normal points away from interior.
func newHullTri(a, b, c, interior v3.Vec) hullTri {
	pl, _ := PlaneFromPoints(a, b, c)
	if pl.DistanceTo(interior) > 0 {
		b, c = c, b
		pl = pl.Flipped()
	}
	return hullTri{a: a, b: b, c: c, plane: pl}
}

// insertPoint expands the hull to include p. If p is inside the current
// hull it is dropped.
func insertPoint(tris []hullTri, p v3.Vec) []hullTri {
	var kept []hullTri
	var edges []hullEdge
	visible := 0
	for _, t := range tris {
		if t.plane.DistanceTo(p) > DistanceEpsilon {
			visible++
			edges = countEdge(edges, t.a, t.b)
			edges = countEdge(edges, t.b, t.c)
			edges = countEdge(edges, t.c, t.a)
		} else {
			kept = append(kept, t)
		}
	}
	if visible == 0 || len(kept) == 0 {
		return tris
	}

	// Interior reference for orienting the new fan.
	var interior v3.Vec
	for _, t := range kept {
		interior = interior.Add(t.a).Add(t.b).Add(t.c)
	}
	interior = interior.DivScalar(float64(3 * len(kept)))

	for _, e := range edges {
		if e.count != 1 {
			continue // internal edge of the visible region
		}
		if degenerateTri(e.a, e.b, p) {
			continue
		}
		kept = append(kept, newHullTri(e.a, e.b, p, interior))
	}
	return kept
}

// countEdge increments the occurrence count of the undirected edge (a, b).
func countEdge(edges []hullEdge, a, b v3.Vec) []hullEdge {
	for i := range edges {
		if (sameVec(edges[i].a, a) && sameVec(edges[i].b, b)) ||
			(sameVec(edges[i].a, b) && sameVec(edges[i].b, a)) {
			edges[i].count++
			return edges
		}
	}
	return append(edges, hullEdge{a: a, b: b, count: 1})
}

func sameVec(a, b v3.Vec) bool {
	return a.Sub(b).Length() < PointEpsilon
}

func degenerateTri(a, b, c v3.Vec) bool {
	return b.Sub(a).Cross(c.Sub(a)).Length() < DistanceEpsilon
}

// mergeFacetPlanes reduces hull triangles to their distinct supporting
// planes, merging coplanar triangles into one facet.
func mergeFacetPlanes(tris []hullTri) []Plane {
	var planes []Plane
	for _, t := range tris {
		found := false
		for _, pl := range planes {
			if pl.Equals(t.plane, PlaneEpsilon) {
				found = true
				break
			}
		}
		if !found {
			planes = append(planes, t.plane)
		}
	}
	return planes
}

// hullBoundaryPoint reports whether p lies on the hull boundary: inside or
// on every supporting plane, and on at least one.
func hullBoundaryPoint(planes []Plane, p v3.Vec) bool {
	on := false
	for _, pl := range planes {
		switch pl.Classify(p) {
		case SideFront:
			return false
		case SideOn:
			on = true
		}
	}
	return on
}
