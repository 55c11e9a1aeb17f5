// Package grid implements the editing grid: snapping points and drag
// deltas to a uniform spacing and clamping them to the world bounds.
package grid

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Grid is a uniform axis-aligned snapping grid. A Size of zero or less
// disables snapping entirely.
type Grid struct {
	Size float64
}

// New returns a grid with the given spacing.
func New(size float64) *Grid {
	return &Grid{Size: size}
}

// Enabled reports whether snapping is active.
func (g *Grid) Enabled() bool {
	return g.Size > 0
}

// SnapScalar snaps a single coordinate to the nearest grid line.
func (g *Grid) SnapScalar(x float64) float64 {
	if !g.Enabled() {
		return x
	}
	return math.Round(x/g.Size) * g.Size
}

// Snap snaps a point to the nearest grid intersection on all axes.
func (g *Grid) Snap(p v3.Vec) v3.Vec {
	return v3.Vec{
		X: g.SnapScalar(p.X),
		Y: g.SnapScalar(p.Y),
		Z: g.SnapScalar(p.Z),
	}
}

// MoveDelta converts a raw drag delta for a handle at pos into a snapped
// delta. Each axis with movement snaps the handle's destination to the
// grid; axes without movement stay untouched, so a horizontal drag never
// disturbs a vertex that sits off-grid vertically. The destination is
// clamped into the world bounds. The result may be zero.
func (g *Grid) MoveDelta(pos v3.Vec, world sdf.Box3, raw v3.Vec) v3.Vec {
	target := pos.Add(raw)

	snapped := pos
	if raw.X != 0 {
		snapped.X = clamp(g.SnapScalar(target.X), world.Min.X, world.Max.X)
	}
	if raw.Y != 0 {
		snapped.Y = clamp(g.SnapScalar(target.Y), world.Min.Y, world.Max.Y)
	}
	if raw.Z != 0 {
		snapped.Z = clamp(g.SnapScalar(target.Z), world.Min.Z, world.Max.Z)
	}
	return snapped.Sub(pos)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
