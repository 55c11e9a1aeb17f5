package brush

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// brushSDF adapts a brush to the sdf.SDF3 interface so brushes can feed
// sdfx tooling (marching-cubes rendering, STL export and the like). A
// convex solid's distance field is the maximum of its plane distances,
// which is exact outside the solid near faces and a conservative bound at
// edges and corners.
type brushSDF struct {
	b *Brush
}

// SDF3 returns a signed distance field view of the brush. The field reads
// the brush live; rebuild the view after mutating the brush is not needed,
// but the brush must not be mutated concurrently with evaluation.
func (b *Brush) SDF3() sdf.SDF3 {
	return &brushSDF{b: b}
}

// Evaluate returns the signed distance from p to the brush surface,
// negative inside.
func (s *brushSDF) Evaluate(p v3.Vec) float64 {
	d := math.Inf(-1)
	for i := range s.b.faces {
		if fd := s.b.faces[i].Plane.DistanceTo(p); fd > d {
			d = fd
		}
	}
	return d
}

// BoundingBox returns the brush's axis-aligned bounds.
func (s *brushSDF) BoundingBox() sdf.Box3 {
	return s.b.BoundingBox()
}
