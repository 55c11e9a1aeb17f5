package brush

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/quarry3d/quarry/pkg/geom"
)

// Face is one planar boundary piece of a brush: the half-space plane whose
// back side contains the solid, the polygon where the plane bounds it, and
// the texture projection. The polygon is derived state, recomputed by the
// owning brush whenever topology changes.
type Face struct {
	Plane geom.Plane
	Tex   TexInfo

	polygon geom.Polygon
}

// NewFace creates a face for a plane. The boundary polygon is empty until
// the owning brush rebuilds its topology.
func NewFace(plane geom.Plane, tex TexInfo) Face {
	return Face{Plane: plane, Tex: tex}
}

// FaceFromPoints creates a face from three counter-clockwise points.
func FaceFromPoints(p1, p2, p3 v3.Vec, tex TexInfo) (Face, error) {
	pl, err := geom.PlaneFromPoints(p1, p2, p3)
	if err != nil {
		return Face{}, err
	}
	return NewFace(pl, tex), nil
}

// Polygon returns the face's boundary polygon. The returned slice is owned
// by the face and must not be modified.
func (f *Face) Polygon() geom.Polygon {
	return f.polygon
}

// Center returns the centroid of the boundary polygon.
func (f *Face) Center() v3.Vec {
	return f.polygon.Center()
}

// clone returns a copy with an independent polygon.
func (f *Face) clone() Face {
	out := *f
	out.polygon = f.polygon.Clone()
	return out
}

// translate moves the face plane by delta and, when lock is set,
// compensates the texture offsets so the texture stays put in the world.
func (f *Face) translate(delta v3.Vec, lock bool) {
	f.Plane = f.Plane.Translated(delta)
	if lock {
		f.Tex.lock(f.Plane.Normal, delta)
	}
}
