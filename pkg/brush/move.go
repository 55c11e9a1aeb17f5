package brush

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/quarry3d/quarry/pkg/geom"
)

// MoveResult reports the outcome of a vertex/edge/face move. When the
// requested displacement would produce an invalid solid the move is a
// no-op: Moved is false and Index is unchanged. Interactive drags pass
// through invalid configurations all the time, so this is not an error.
// Index is -1 when the moved feature merged into a neighbor and is no
// longer independently addressable.
type MoveResult struct {
	Index int
	Moved bool
}

// noMove is the no-op result for a rejected or empty displacement.
func noMove(index int) MoveResult {
	return MoveResult{Index: index, Moved: false}
}

// MoveVertex displaces one vertex by delta, rebuilding the solid from the
// perturbed vertex set. The move is rejected as a no-op when the target
// position crosses a face not touching the vertex (the drag would push the
// vertex through the opposite side) or when the rebuilt solid is
// degenerate.
func (b *Brush) MoveVertex(index int, delta v3.Vec) (MoveResult, error) {
	if index < 0 || index >= len(b.verts) {
		return noMove(index), fmt.Errorf("move vertex %d of %d: %w", index, len(b.verts), ErrInvalidHandle)
	}
	if delta.Length() < geom.PointEpsilon {
		return noMove(index), nil
	}

	origin := b.verts[index]
	target := origin.Add(delta)
	if b.crossesNonAdjacentFace(origin, target) {
		return noMove(index), nil
	}

	points := make([]v3.Vec, len(b.verts))
	copy(points, b.verts)
	points[index] = target

	merged := false
	for i, p := range points {
		if i != index && p.Sub(target).Length() < geom.PointEpsilon {
			merged = true
			break
		}
	}

	cand, ok := b.rebuildFromPoints(points)
	if !ok {
		return noMove(index), nil
	}
	b.swap(cand)

	if merged {
		return MoveResult{Index: -1, Moved: true}, nil
	}
	if idx := b.findVertex(target); idx >= 0 {
		return MoveResult{Index: idx, Moved: true}, nil
	}
	// The vertex was absorbed into the hull (dragged inside a neighboring
	// feature); it is gone as an addressable handle.
	return MoveResult{Index: -1, Moved: true}, nil
}

// MoveEdge displaces an edge by delta, moving both endpoints together.
// Same no-op contract as MoveVertex.
func (b *Brush) MoveEdge(index int, delta v3.Vec) (MoveResult, error) {
	if index < 0 || index >= len(b.edges) {
		return noMove(index), fmt.Errorf("move edge %d of %d: %w", index, len(b.edges), ErrInvalidHandle)
	}
	if delta.Length() < geom.PointEpsilon {
		return noMove(index), nil
	}

	e := b.edges[index]
	o0, o1 := b.verts[e.V0], b.verts[e.V1]
	t0, t1 := o0.Add(delta), o1.Add(delta)
	if b.crossesNonAdjacentFace(o0, t0) || b.crossesNonAdjacentFace(o1, t1) {
		return noMove(index), nil
	}

	points := make([]v3.Vec, len(b.verts))
	copy(points, b.verts)
	points[e.V0] = t0
	points[e.V1] = t1

	cand, ok := b.rebuildFromPoints(points)
	if !ok {
		return noMove(index), nil
	}
	b.swap(cand)

	if idx := b.findEdge(t0, t1); idx >= 0 {
		return MoveResult{Index: idx, Moved: true}, nil
	}
	return MoveResult{Index: -1, Moved: true}, nil
}

// MoveFace displaces a face by delta, dragging its whole boundary polygon.
// Same no-op contract as MoveVertex.
func (b *Brush) MoveFace(index int, delta v3.Vec) (MoveResult, error) {
	if index < 0 || index >= len(b.faces) {
		return noMove(index), fmt.Errorf("move face %d of %d: %w", index, len(b.faces), ErrInvalidHandle)
	}
	if delta.Length() < geom.PointEpsilon {
		return noMove(index), nil
	}

	moved := b.faces[index].polygon
	points := make([]v3.Vec, len(b.verts))
	copy(points, b.verts)
	for i, v := range b.verts {
		if !moved.Contains(v) {
			continue
		}
		target := v.Add(delta)
		if b.crossesNonAdjacentFace(v, target) {
			return noMove(index), nil
		}
		points[i] = target
	}

	wantPlane := b.faces[index].Plane.Translated(delta)

	cand, ok := b.rebuildFromPoints(points)
	if !ok {
		return noMove(index), nil
	}
	b.swap(cand)

	for i := range b.faces {
		if b.faces[i].Plane.Equals(wantPlane, geom.PlaneEpsilon) {
			return MoveResult{Index: i, Moved: true}, nil
		}
	}
	return MoveResult{Index: -1, Moved: true}, nil
}

// Resize translates the named faces' planes along their normals by delta.
// When lockTextures is set the moved faces' texture offsets are recomputed
// so the textures stay visually stationary. On failure the brush is
// untouched and geom.ErrDegenerate is returned.
func (b *Brush) Resize(faceIndexes []int, delta float64, lockTextures bool) error {
	faces := make([]Face, len(b.faces))
	for i := range b.faces {
		faces[i] = b.faces[i].clone()
	}
	for _, idx := range faceIndexes {
		if idx < 0 || idx >= len(faces) {
			return fmt.Errorf("resize face %d of %d: %w", idx, len(faces), ErrInvalidHandle)
		}
		shift := faces[idx].Plane.Normal.MulScalar(delta)
		faces[idx].translate(shift, lockTextures)
	}
	cand, err := buildTopology(faces, b.world)
	if err != nil {
		return err
	}
	b.swap(cand)
	return nil
}

// crossesNonAdjacentFace reports whether target lies in front of a face
// whose boundary polygon does not touch origin. Such a move would push the
// feature through the far side of the solid and invert it.
func (b *Brush) crossesNonAdjacentFace(origin, target v3.Vec) bool {
	for i := range b.faces {
		if b.faces[i].polygon.Contains(origin) {
			continue
		}
		if b.faces[i].Plane.Classify(target) == geom.SideFront {
			return true
		}
	}
	return false
}

// rebuildFromPoints computes the convex hull of the perturbed vertex set
// and derives a candidate topology from the hull facets, carrying texture
// state over from the nearest existing face.
func (b *Brush) rebuildFromPoints(points []v3.Vec) (topology, bool) {
	hull, err := geom.ConvexHull(points)
	if err != nil {
		return topology{}, false
	}
	faces := facesFromPlanes(hull.Planes, b.faces)
	cand, err := buildTopology(faces, b.world)
	if err != nil {
		return topology{}, false
	}
	return cand, true
}

// facesFromPlanes builds faces for a set of planes, adopting the texture
// projection of the donor face whose plane is most similar. New planes
// created by a move inherit the texture of their closest neighbor, which
// matches what a mapper expects when a drag splits a face.
func facesFromPlanes(planes []geom.Plane, donors []Face) []Face {
	faces := make([]Face, len(planes))
	for i, pl := range planes {
		tex := DefaultTexInfo("")
		bestDot := -2.0
		for j := range donors {
			if d := pl.Normal.Dot(donors[j].Plane.Normal); d > bestDot {
				bestDot = d
				tex = donors[j].Tex
			}
		}
		faces[i] = NewFace(pl, tex)
	}
	return faces
}

// FromHull builds a brush from hull facets, taking texture projections
// from the donor faces. Used by the CSG merge operation.
func FromHull(h *geom.Hull, donors []Face, world sdf.Box3) (*Brush, error) {
	return New(facesFromPlanes(h.Planes, donors), world)
}

// findVertex returns the index of the vertex at p, or -1.
func (b *Brush) findVertex(p v3.Vec) int {
	for i, v := range b.verts {
		if v.Sub(p).Length() < geom.PointEpsilon {
			return i
		}
	}
	return -1
}

// findEdge returns the index of the edge with the given endpoints in
// either order, or -1.
func (b *Brush) findEdge(p0, p1 v3.Vec) int {
	for i, e := range b.edges {
		a, bb := b.verts[e.V0], b.verts[e.V1]
		if (a.Sub(p0).Length() < geom.PointEpsilon && bb.Sub(p1).Length() < geom.PointEpsilon) ||
			(a.Sub(p1).Length() < geom.PointEpsilon && bb.Sub(p0).Length() < geom.PointEpsilon) {
			return i
		}
	}
	return -1
}
