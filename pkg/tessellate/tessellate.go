// Package tessellate converts brush boundary polygons into triangle meshes
// for rendering and export. Brushes are convex, so every face polygon
// fan-triangulates without clipping.
package tessellate

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"

	"github.com/quarry3d/quarry/pkg/brush"
	"github.com/quarry3d/quarry/pkg/mesh"
)

// Triangles fan-triangulates every face polygon of the brush. The winding
// follows the face polygons, so each triangle's normal points out of the
// solid.
func Triangles(b *brush.Brush) []sdf.Triangle3 {
	var tris []sdf.Triangle3
	for i := range b.Faces() {
		poly := b.Faces()[i].Polygon()
		for j := 1; j+1 < len(poly); j++ {
			tris = append(tris, sdf.Triangle3{poly[0], poly[j], poly[j+1]})
		}
	}
	return tris
}

// Brush converts a brush into a flat triangle mesh with per-face normals.
// The normals come from the face planes rather than the triangles, so
// coplanar fans shade as one flat facet.
func Brush(b *brush.Brush, name string) *mesh.Mesh {
	numTri := 0
	for i := range b.Faces() {
		if n := len(b.Faces()[i].Polygon()); n > 2 {
			numTri += n - 2
		}
	}
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	idx := uint32(0)
	for i := range b.Faces() {
		f := &b.Faces()[i]
		poly := f.Polygon()
		nx := float32(f.Plane.Normal.X)
		ny := float32(f.Plane.Normal.Y)
		nz := float32(f.Plane.Normal.Z)

		for j := 1; j+1 < len(poly); j++ {
			for _, v := range []int{0, j, j + 1} {
				p := poly[v]
				vertices = append(vertices, float32(p.X), float32(p.Y), float32(p.Z))
				normals = append(normals, nx, ny, nz)
				indices = append(indices, idx)
				idx++
			}
		}
	}

	return &mesh.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
		Name:     name,
	}
}

// Brushes converts a list of brushes, one mesh per brush, named by index.
func Brushes(brushes []*brush.Brush) []*mesh.Mesh {
	meshes := make([]*mesh.Mesh, len(brushes))
	for i, b := range brushes {
		meshes[i] = Brush(b, fmt.Sprintf("brush-%d", i))
	}
	return meshes
}
