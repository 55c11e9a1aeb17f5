// Package picker resolves pick rays to handle hits on the selected
// brushes. Vertex and edge handles pick within a world-space radius;
// faces pick by ray-polygon intersection. The nearest hit along the ray
// wins.
package picker

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/quarry3d/quarry/pkg/brush"
	"github.com/quarry3d/quarry/pkg/geom"
	"github.com/quarry3d/quarry/pkg/tool"
)

// DefaultHandleRadius is the pick radius for vertex and edge handles in
// world units.
const DefaultHandleRadius = 0.25

// Source provides the brushes eligible for picking.
type Source interface {
	SelectedBrushes() []*brush.Brush
}

// Picker finds the handle nearest along a pick ray.
type Picker struct {
	src    Source
	radius float64
}

// New returns a picker over src. radius <= 0 selects DefaultHandleRadius.
func New(src Source, radius float64) *Picker {
	if radius <= 0 {
		radius = DefaultHandleRadius
	}
	return &Picker{src: src, radius: radius}
}

var _ tool.Picker = (*Picker)(nil)

// First returns the nearest handle of the given kind along the ray.
// With occludedAllowed false, vertex and edge handles behind the
// nearest front face are skipped; face picks are unaffected since the
// nearest front face wins anyway.
func (p *Picker) First(ray geom.Ray, kind tool.HandleKind, occludedAllowed bool) (tool.Hit, bool) {
	best := tool.Hit{Index: -1}
	bestT := math.Inf(1)

	horizon := math.Inf(1)
	if !occludedAllowed && kind != tool.KindFace {
		horizon = p.nearestFaceT(ray) + geom.PointEpsilon
	}

	for _, b := range p.src.SelectedBrushes() {
		switch kind {
		case tool.KindVertex:
			for i, v := range b.Vertices() {
				if t, ok := raySphere(ray, v, p.radius); ok && t < bestT && t <= horizon {
					bestT = t
					best = tool.Hit{Brush: b, Kind: kind, Index: i, Point: v}
				}
			}
		case tool.KindEdge:
			for i, e := range b.Edges() {
				p0 := b.Vertices()[e.V0]
				p1 := b.Vertices()[e.V1]
				t, closest, dist := raySegment(ray, p0, p1)
				if dist <= p.radius && t >= 0 && t < bestT && t <= horizon {
					bestT = t
					best = tool.Hit{Brush: b, Kind: kind, Index: i, Point: closest}
				}
			}
		case tool.KindFace:
			for i := range b.Faces() {
				f := &b.Faces()[i]
				// Front faces only: back faces of a convex solid are
				// always occluded.
				if ray.Dir.Dot(f.Plane.Normal) >= 0 {
					continue
				}
				t, ok := f.Plane.IntersectRay(ray)
				if !ok || t >= bestT {
					continue
				}
				q := ray.At(t)
				if insidePolygon(f.Polygon(), f.Plane.Normal, q) {
					bestT = t
					best = tool.Hit{Brush: b, Kind: kind, Index: i, Point: q}
				}
			}
		}
	}
	return best, best.Brush != nil
}

// nearestFaceT returns the smallest ray parameter at which the ray
// enters any selected brush through a front face.
func (p *Picker) nearestFaceT(ray geom.Ray) float64 {
	nearest := math.Inf(1)
	for _, b := range p.src.SelectedBrushes() {
		for i := range b.Faces() {
			f := &b.Faces()[i]
			if ray.Dir.Dot(f.Plane.Normal) >= 0 {
				continue
			}
			t, ok := f.Plane.IntersectRay(ray)
			if !ok || t >= nearest {
				continue
			}
			if insidePolygon(f.Polygon(), f.Plane.Normal, ray.At(t)) {
				nearest = t
			}
		}
	}
	return nearest
}

// raySphere returns the smallest non-negative ray parameter where the
// ray enters the sphere.
func raySphere(ray geom.Ray, center v3.Vec, radius float64) (float64, bool) {
	oc := ray.Origin.Sub(center)
	a := ray.Dir.Dot(ray.Dir)
	half := oc.Dot(ray.Dir)
	c := oc.Dot(oc) - radius*radius
	disc := half*half - a*c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := (-half - sq) / a
	if t < 0 {
		t = (-half + sq) / a
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// raySegment returns the ray parameter and segment point of the closest
// approach between the ray and segment p0-p1, plus their distance.
func raySegment(ray geom.Ray, p0, p1 v3.Vec) (rayT float64, onSegment v3.Vec, dist float64) {
	u := ray.Dir
	v := p1.Sub(p0)
	w := ray.Origin.Sub(p0)

	a := u.Dot(u)
	b := u.Dot(v)
	c := v.Dot(v)
	d := u.Dot(w)
	e := v.Dot(w)

	denom := a*c - b*b
	var s, t float64
	if denom < 1e-12 {
		// Parallel: clamp the segment end nearest the ray origin.
		s = 0
		t = clamp01(e / c)
	} else {
		s = (b*e - c*d) / denom
		t = clamp01((a*e - b*d) / denom)
	}
	if s < 0 {
		s = 0
		t = clamp01(e / c)
	}

	pr := ray.At(s)
	ps := p0.Add(v.MulScalar(t))
	return s, ps, pr.Sub(ps).Length()
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// insidePolygon reports whether q, already on the polygon's plane, lies
// inside the convex loop.
func insidePolygon(poly geom.Polygon, normal, q v3.Vec) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		edge := b.Sub(a)
		if normal.Dot(edge.Cross(q.Sub(a))) < -geom.PointEpsilon {
			return false
		}
	}
	return true
}
