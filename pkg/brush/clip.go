package brush

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/quarry3d/quarry/pkg/geom"
)

// Clip splits the brush by a plane into the part in front of it and the
// part behind it. Either result is nil when that side is empty or
// degenerate. The cut faces inherit the texture of the nearest original
// face. The receiver is not modified.
func (b *Brush) Clip(pl geom.Plane) (front, back *Brush) {
	back = b.clipHalf(pl)
	front = b.clipHalf(pl.Flipped())
	return front, back
}

// clipHalf returns the part of the brush behind pl, or nil.
func (b *Brush) clipHalf(pl geom.Plane) *Brush {
	faces := make([]Face, 0, len(b.faces)+1)
	for i := range b.faces {
		faces = append(faces, b.faces[i].clone())
	}
	faces = append(faces, NewFace(pl, b.nearestTex(pl.Normal)))
	out, err := New(faces, b.world)
	if err != nil {
		return nil
	}
	return out
}

// nearestTex returns the texture of the face whose normal best matches dir.
func (b *Brush) nearestTex(dir v3.Vec) TexInfo {
	tex := DefaultTexInfo("")
	bestDot := -2.0
	for i := range b.faces {
		if d := dir.Dot(b.faces[i].Plane.Normal); d > bestDot {
			bestDot = d
			tex = b.faces[i].Tex
		}
	}
	return tex
}

// Intersects reports whether the two brushes share interior volume. Brushes
// that merely touch at a face, edge or vertex do not intersect.
func (b *Brush) Intersects(other *Brush) bool {
	// Quick reject on bounding boxes.
	ab, ob := b.BoundingBox(), other.BoundingBox()
	if ab.Min.X > ob.Max.X || ab.Max.X < ob.Min.X ||
		ab.Min.Y > ob.Max.Y || ab.Max.Y < ob.Min.Y ||
		ab.Min.Z > ob.Max.Z || ab.Max.Z < ob.Min.Z {
		return false
	}
	faces := make([]Face, 0, len(b.faces)+len(other.faces))
	for i := range b.faces {
		faces = append(faces, b.faces[i].clone())
	}
	for i := range other.faces {
		faces = append(faces, other.faces[i].clone())
	}
	_, err := New(faces, b.world)
	return err == nil
}
