// Package brush implements the convex solid at the heart of the editor: a
// closed brush represented as an ordered set of planar faces. Vertices and
// edges are derived from the face planes, never stored independently, so
// every topology change regenerates them and invalidates previously
// obtained handle indices.
package brush

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/quarry3d/quarry/pkg/geom"
)

// ErrInvalidHandle reports a vertex/edge/face index that does not resolve
// against the brush's current topology.
var ErrInvalidHandle = errors.New("invalid handle index")

// Edge is the intersection of two adjacent faces, bounded by two derived
// vertices. V0 and V1 index into the brush's vertex list, V0 < V1.
type Edge struct {
	V0, V1 int
}

// Brush is a bounded convex solid: the intersection of its faces'
// half-spaces. All faces' normals point out of the solid. The vertex and
// edge lists are caches derived from the face planes.
type Brush struct {
	faces []Face
	world sdf.Box3

	verts []v3.Vec
	edges []Edge
}

// New creates a brush from a set of faces and validates it. The world box
// bounds all brush geometry; a solid reaching outside it is rejected.
func New(faces []Face, world sdf.Box3) (*Brush, error) {
	b := &Brush{faces: faces, world: world}
	if err := b.Rebuild(); err != nil {
		return nil, err
	}
	return b, nil
}

// Cuboid creates an axis-aligned box brush covering box.
func Cuboid(box sdf.Box3, world sdf.Box3, tex TexInfo) (*Brush, error) {
	normals := []v3.Vec{
		{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
	}
	dists := []float64{
		box.Max.X, -box.Min.X, box.Max.Y, -box.Min.Y, box.Max.Z, -box.Min.Z,
	}
	faces := make([]Face, len(normals))
	for i := range normals {
		faces[i] = NewFace(geom.Plane{Normal: normals[i], Dist: dists[i]}, tex)
	}
	return New(faces, world)
}

// Faces returns the brush's faces. The slice is owned by the brush; callers
// must treat it as read-only.
func (b *Brush) Faces() []Face {
	return b.faces
}

// Vertices returns the derived unique vertex positions.
func (b *Brush) Vertices() []v3.Vec {
	return b.verts
}

// Edges returns the derived unique edges.
func (b *Brush) Edges() []Edge {
	return b.edges
}

// VertexPosition resolves a vertex handle index.
func (b *Brush) VertexPosition(index int) (v3.Vec, error) {
	if index < 0 || index >= len(b.verts) {
		return v3.Vec{}, fmt.Errorf("vertex %d of %d: %w", index, len(b.verts), ErrInvalidHandle)
	}
	return b.verts[index], nil
}

// EdgeMidpoint resolves an edge handle index to the edge's midpoint, the
// natural grab position for dragging.
func (b *Brush) EdgeMidpoint(index int) (v3.Vec, error) {
	if index < 0 || index >= len(b.edges) {
		return v3.Vec{}, fmt.Errorf("edge %d of %d: %w", index, len(b.edges), ErrInvalidHandle)
	}
	e := b.edges[index]
	return b.verts[e.V0].Add(b.verts[e.V1]).DivScalar(2), nil
}

// FaceCenter resolves a face handle index to the face polygon's centroid.
func (b *Brush) FaceCenter(index int) (v3.Vec, error) {
	if index < 0 || index >= len(b.faces) {
		return v3.Vec{}, fmt.Errorf("face %d of %d: %w", index, len(b.faces), ErrInvalidHandle)
	}
	return b.faces[index].Center(), nil
}

// WorldBounds returns the world box the brush is constrained to.
func (b *Brush) WorldBounds() sdf.Box3 {
	return b.world
}

// BoundingBox returns the axis-aligned bounds of the brush's vertices.
func (b *Brush) BoundingBox() sdf.Box3 {
	if len(b.verts) == 0 {
		return sdf.Box3{}
	}
	box := sdf.Box3{Min: b.verts[0], Max: b.verts[0]}
	for _, v := range b.verts[1:] {
		box.Min = box.Min.Min(v)
		box.Max = box.Max.Max(v)
	}
	return box
}

// Volume returns the enclosed volume via the divergence theorem: each face
// contributes area times plane distance over three.
func (b *Brush) Volume() float64 {
	var sum float64
	for i := range b.faces {
		sum += b.faces[i].polygon.Area() * b.faces[i].Plane.Dist
	}
	return sum / 3
}

// ContainsPoint reports whether p is inside the solid or on its boundary.
func (b *Brush) ContainsPoint(p v3.Vec) bool {
	for i := range b.faces {
		if b.faces[i].Plane.Classify(p) == geom.SideFront {
			return false
		}
	}
	return true
}

// Duplicate returns a deep copy, independent of the original. Texture
// projections are copied verbatim.
func (b *Brush) Duplicate() *Brush {
	out := &Brush{world: b.world}
	out.faces = make([]Face, len(b.faces))
	for i := range b.faces {
		out.faces[i] = b.faces[i].clone()
	}
	out.verts = make([]v3.Vec, len(b.verts))
	copy(out.verts, b.verts)
	out.edges = make([]Edge, len(b.edges))
	copy(out.edges, b.edges)
	return out
}

// Snapshot returns a deep copy of the face set, suitable for restoring
// later with SetFaces. Used by the undo log.
func (b *Brush) Snapshot() []Face {
	out := make([]Face, len(b.faces))
	for i := range b.faces {
		out[i] = b.faces[i].clone()
	}
	return out
}

// SetFaces replaces the face set and rebuilds the topology. On failure the
// brush is left untouched.
func (b *Brush) SetFaces(faces []Face) error {
	cand, err := buildTopology(faces, b.world)
	if err != nil {
		return err
	}
	b.swap(cand)
	return nil
}

// Rebuild recomputes the face polygons, vertices and edges from the
// current face planes. On failure the prior state is untouched.
func (b *Brush) Rebuild() error {
	cand, err := buildTopology(b.faces, b.world)
	if err != nil {
		return err
	}
	b.swap(cand)
	return nil
}

func (b *Brush) swap(t topology) {
	b.faces = t.faces
	b.verts = t.verts
	b.edges = t.edges
}
