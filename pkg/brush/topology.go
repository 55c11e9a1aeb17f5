package brush

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/quarry3d/quarry/pkg/geom"
)

// topology is a candidate brush state. It is built completely and validated
// before being swapped into a brush, so a failed rebuild never leaves a
// partially updated solid behind.
type topology struct {
	faces []Face
	verts []v3.Vec
	edges []Edge
}

// buildTopology derives each face's boundary polygon by seeding a large
// polygon on the face plane and clipping it by every other face's
// half-space. Redundant faces (empty polygons) are dropped; duplicate
// planes are collapsed to the first occurrence. Fails with
// geom.ErrDegenerate when fewer than four faces survive, the volume is at
// or below the minimum, or the solid leaves the world bounds.
func buildTopology(faces []Face, world sdf.Box3) (topology, error) {
	var t topology

	// Collapse duplicate planes, keeping face order.
	var unique []Face
	for i := range faces {
		dup := false
		for j := range unique {
			if faces[i].Plane.Equals(unique[j].Plane, geom.PlaneEpsilon) {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, faces[i])
		}
	}

	for i := range unique {
		poly := geom.BasePolygon(unique[i].Plane, world)
		for j := range unique {
			if i == j {
				continue
			}
			poly = geom.ClipPolygon(poly, unique[j].Plane)
			if poly == nil {
				break
			}
		}
		if poly == nil {
			continue // redundant face, does not bound the solid
		}
		f := unique[i].clone()
		f.polygon = poly
		t.faces = append(t.faces, f)
	}

	if len(t.faces) < 4 {
		return topology{}, fmt.Errorf("%d bounding faces: %w", len(t.faces), geom.ErrDegenerate)
	}

	// Snap polygon corners to canonical shared vertices.
	for i := range t.faces {
		poly := t.faces[i].polygon
		for j, p := range poly {
			idx := t.vertexIndex(p)
			if idx < 0 {
				t.verts = append(t.verts, p)
			} else {
				poly[j] = t.verts[idx]
			}
		}
	}

	if len(t.verts) < 4 {
		return topology{}, fmt.Errorf("%d vertices: %w", len(t.verts), geom.ErrDegenerate)
	}
	for _, v := range t.verts {
		if !containsLoose(world, v) {
			return topology{}, fmt.Errorf("vertex %v outside world bounds: %w", v, geom.ErrDegenerate)
		}
	}

	t.buildEdges()

	var volume float64
	for i := range t.faces {
		volume += t.faces[i].polygon.Area() * t.faces[i].Plane.Dist
	}
	volume /= 3
	if volume <= geom.MinVolume {
		return topology{}, fmt.Errorf("volume %g: %w", volume, geom.ErrDegenerate)
	}

	return t, nil
}

// vertexIndex finds the canonical vertex within PointEpsilon of p, or -1.
func (t *topology) vertexIndex(p v3.Vec) int {
	for i, v := range t.verts {
		if v.Sub(p).Length() < geom.PointEpsilon {
			return i
		}
	}
	return -1
}

// buildEdges collects the unique edges from the face polygons. Every edge
// of a closed solid is shared by exactly two faces, so each pair appears
// twice and is recorded once.
func (t *topology) buildEdges() {
	seen := make(map[Edge]bool)
	for i := range t.faces {
		poly := t.faces[i].polygon
		for j := range poly {
			a := t.vertexIndex(poly[j])
			b := t.vertexIndex(poly[(j+1)%len(poly)])
			if a < 0 || b < 0 || a == b {
				continue
			}
			e := Edge{V0: a, V1: b}
			if e.V0 > e.V1 {
				e.V0, e.V1 = e.V1, e.V0
			}
			if !seen[e] {
				seen[e] = true
				t.edges = append(t.edges, e)
			}
		}
	}
}

// containsLoose is a world-bounds check with epsilon slack, so geometry
// exactly on the boundary is not rejected for rounding error.
func containsLoose(box sdf.Box3, v v3.Vec) bool {
	return v.X >= box.Min.X-geom.PointEpsilon && v.X <= box.Max.X+geom.PointEpsilon &&
		v.Y >= box.Min.Y-geom.PointEpsilon && v.Y <= box.Max.Y+geom.PointEpsilon &&
		v.Z >= box.Min.Z-geom.PointEpsilon && v.Z <= box.Max.Z+geom.PointEpsilon
}
