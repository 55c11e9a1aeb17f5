// Package geom is the plane/vertex geometry kernel: planes, point
// classification, plane intersection, convex polygon clipping and 3D convex
// hulls. It is pure math with no state; all tolerances are centralized in
// tolerance.go.
package geom

import (
	"errors"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrDegenerate reports geometry that has collapsed: collinear plane points,
// a polygon reduced to a line, a solid with too few faces or no volume.
var ErrDegenerate = errors.New("degenerate geometry")

// ErrNoIntersection reports that three planes have no single intersection
// point within tolerance.
var ErrNoIntersection = errors.New("planes do not intersect in a point")

// Side is the result of classifying a point against a plane.
type Side int

const (
	SideFront Side = iota // in front of the plane, along the normal
	SideBack              // behind the plane
	SideOn                // within PlaneEpsilon of the plane
)

func (s Side) String() string {
	switch s {
	case SideFront:
		return "front"
	case SideBack:
		return "back"
	default:
		return "on"
	}
}

// Plane is an oriented plane in Hesse normal form: points p on the plane
// satisfy Normal·p == Dist. The normal is unit length. For a brush face the
// normal points out of the solid, so the interior is on the back side.
type Plane struct {
	Normal v3.Vec
	Dist   float64
}

// PlaneFromPoints derives a plane from three points in counter-clockwise
// order as seen from the front side. Fails with ErrDegenerate when the
// points are collinear or coincident.
func PlaneFromPoints(p1, p2, p3 v3.Vec) (Plane, error) {
	n := p2.Sub(p1).Cross(p3.Sub(p1))
	if n.Length() < DistanceEpsilon {
		return Plane{}, ErrDegenerate
	}
	n = n.Normalize()
	return Plane{Normal: n, Dist: n.Dot(p1)}, nil
}

// DistanceTo returns the signed distance from p to the plane. Positive is
// in front.
func (pl Plane) DistanceTo(p v3.Vec) float64 {
	return pl.Normal.Dot(p) - pl.Dist
}

// Classify places p on one side of the plane using PlaneEpsilon.
func (pl Plane) Classify(p v3.Vec) Side {
	d := pl.DistanceTo(p)
	switch {
	case d > PlaneEpsilon:
		return SideFront
	case d < -PlaneEpsilon:
		return SideBack
	default:
		return SideOn
	}
}

// Flipped returns the plane with its orientation reversed.
func (pl Plane) Flipped() Plane {
	return Plane{Normal: pl.Normal.Neg(), Dist: -pl.Dist}
}

// Translated returns the plane moved by delta. Only the component of delta
// along the normal changes the plane.
func (pl Plane) Translated(delta v3.Vec) Plane {
	return Plane{Normal: pl.Normal, Dist: pl.Dist + pl.Normal.Dot(delta)}
}

// Offset returns the plane moved by dist along its own normal.
func (pl Plane) Offset(dist float64) Plane {
	return Plane{Normal: pl.Normal, Dist: pl.Dist + dist}
}

// Project returns the orthogonal projection of p onto the plane.
func (pl Plane) Project(p v3.Vec) v3.Vec {
	return p.Sub(pl.Normal.MulScalar(pl.DistanceTo(p)))
}

// Equals reports whether two planes coincide with the same orientation,
// within tolerance.
func (pl Plane) Equals(other Plane, tolerance float64) bool {
	return pl.Normal.Dot(other.Normal) > 1-tolerance &&
		math.Abs(pl.Dist-other.Dist) < tolerance
}

// IntersectPlanes returns the point common to three planes. It fails with
// ErrNoIntersection when any two of the planes are near-parallel.
func IntersectPlanes(a, b, c Plane) (v3.Vec, error) {
	bc := b.Normal.Cross(c.Normal)
	denom := a.Normal.Dot(bc)
	if math.Abs(denom) < DistanceEpsilon {
		return v3.Vec{}, ErrNoIntersection
	}
	ca := c.Normal.Cross(a.Normal)
	ab := a.Normal.Cross(b.Normal)
	p := bc.MulScalar(a.Dist).Add(ca.MulScalar(b.Dist)).Add(ab.MulScalar(c.Dist)).DivScalar(denom)
	return p, nil
}

// Ray is a half-line used for picking.
type Ray struct {
	Origin v3.Vec
	Dir    v3.Vec // unit length
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) v3.Vec {
	return r.Origin.Add(r.Dir.MulScalar(t))
}

// IntersectRay returns the ray parameter where the ray crosses the plane.
// ok is false when the ray is parallel to the plane or the crossing is
// behind the ray origin.
func (pl Plane) IntersectRay(r Ray) (t float64, ok bool) {
	denom := pl.Normal.Dot(r.Dir)
	if math.Abs(denom) < DistanceEpsilon {
		return 0, false
	}
	t = -pl.DistanceTo(r.Origin) / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}
