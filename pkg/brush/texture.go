package brush

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// TexInfo holds a face's texture projection: name, offsets, scale and
// rotation. It is independent of the face's topology; geometry edits leave
// it untouched unless the caller asks for texture lock.
type TexInfo struct {
	Name     string
	OffsetU  float64
	OffsetV  float64
	ScaleU   float64
	ScaleV   float64
	Rotation float64 // degrees
}

// DefaultTexInfo returns a unit-scale projection with no offset.
func DefaultTexInfo(name string) TexInfo {
	return TexInfo{Name: name, ScaleU: 1, ScaleV: 1}
}

// paraxial projection axis table: for each dominant normal direction, the
// texture U and V axes. This is the classic six-way axial projection, so
// textures stay upright on walls and aligned on floors and ceilings.
var texAxisTable = [6][3]v3.Vec{
	{{Z: 1}, {X: 1}, {Y: -1}},  // floor
	{{Z: -1}, {X: 1}, {Y: -1}}, // ceiling
	{{X: 1}, {Y: 1}, {Z: -1}},  // east wall
	{{X: -1}, {Y: 1}, {Z: -1}}, // west wall
	{{Y: 1}, {X: 1}, {Z: -1}},  // north wall
	{{Y: -1}, {X: 1}, {Z: -1}}, // south wall
}

// TexAxes returns the paraxial texture projection axes for a face normal:
// the axis pair whose projection direction best matches the normal.
func TexAxes(normal v3.Vec) (u, v v3.Vec) {
	best := 0
	bestDot := math.Inf(-1)
	for i, axes := range texAxisTable {
		if d := normal.Dot(axes[0]); d > bestDot {
			bestDot = d
			best = i
		}
	}
	return texAxisTable[best][1], texAxisTable[best][2]
}

// rotatedTexAxes applies the TexInfo rotation to the projection axes,
// spinning them around the projection direction.
func rotatedTexAxes(normal v3.Vec, rotation float64) (u, v v3.Vec) {
	u, v = TexAxes(normal)
	if rotation == 0 {
		return u, v
	}
	rad := rotation * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	ru := u.MulScalar(cos).Add(v.MulScalar(sin))
	rv := u.MulScalar(-sin).Add(v.MulScalar(cos))
	return ru, rv
}

// UV returns the texture coordinates of a world point under this
// projection.
func (t TexInfo) UV(normal, point v3.Vec) (float64, float64) {
	u, v := rotatedTexAxes(normal, t.Rotation)
	su, sv := t.ScaleU, t.ScaleV
	if su == 0 {
		su = 1
	}
	if sv == 0 {
		sv = 1
	}
	return point.Dot(u)/su + t.OffsetU, point.Dot(v)/sv + t.OffsetV
}

// lock compensates the offsets for a translation of the face geometry by
// delta, so the texture appears stationary in the world.
func (t *TexInfo) lock(normal, delta v3.Vec) {
	u, v := rotatedTexAxes(normal, t.Rotation)
	su, sv := t.ScaleU, t.ScaleV
	if su == 0 {
		su = 1
	}
	if sv == 0 {
		sv = 1
	}
	t.OffsetU -= delta.Dot(u) / su
	t.OffsetV -= delta.Dot(v) / sv
}
