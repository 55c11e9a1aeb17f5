// Package csg implements constructive solid geometry over convex brushes:
// convex merge, subtraction, intersection and hollowing. All operations are
// non-destructive; inputs are never modified and results are freshly built
// brushes.
package csg

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/quarry3d/quarry/pkg/brush"
	"github.com/quarry3d/quarry/pkg/geom"
)

// ErrTooFewBrushes reports a merge with fewer than two inputs.
var ErrTooFewBrushes = errors.New("convex merge needs at least two brushes")

// ErrEmptyIntersection reports two brushes with no common volume.
var ErrEmptyIntersection = errors.New("brushes do not intersect")

// ErrInvalidThickness reports a hollow wall thickness that is non-positive
// or too large for the brush.
var ErrInvalidThickness = errors.New("invalid wall thickness")

// Merge combines two or more brushes into their convex hull. The inputs
// need not touch; any gap between them is swallowed by the hull. Face
// textures are taken from the input face whose plane best matches each
// hull facet.
func Merge(brushes []*brush.Brush) (*brush.Brush, error) {
	if len(brushes) < 2 {
		return nil, fmt.Errorf("%d brushes: %w", len(brushes), ErrTooFewBrushes)
	}

	var points []v3.Vec
	var donors []brush.Face
	for _, b := range brushes {
		points = append(points, b.Vertices()...)
		donors = append(donors, b.Faces()...)
	}

	hull, err := geom.ConvexHull(points)
	if err != nil {
		return nil, fmt.Errorf("merge hull: %w", err)
	}
	merged, err := brush.FromHull(hull, donors, brushes[0].WorldBounds())
	if err != nil {
		return nil, fmt.Errorf("merge rebuild: %w", err)
	}
	return merged, nil
}

// Subtract removes the union of the subtrahends from the minuend,
// returning the remainder as a list of convex fragments. Degenerate
// fragments are dropped silently; subtracting a brush from itself yields
// an empty list. The inputs are not modified.
func Subtract(minuend *brush.Brush, subtrahends []*brush.Brush) []*brush.Brush {
	fragments := []*brush.Brush{minuend.Duplicate()}
	for _, sub := range subtrahends {
		var next []*brush.Brush
		for _, frag := range fragments {
			if !frag.Intersects(sub) {
				next = append(next, frag)
				continue
			}
			next = append(next, carve(frag, sub)...)
		}
		fragments = next
	}
	return fragments
}

// carve splits frag by each face plane of sub, collecting the pieces that
// fall outside sub. The piece remaining after all planes lies inside sub
// and is discarded.
func carve(frag *brush.Brush, sub *brush.Brush) []*brush.Brush {
	var out []*brush.Brush
	remainder := frag
	for i := range sub.Faces() {
		front, back := remainder.Clip(sub.Faces()[i].Plane)
		if front != nil {
			out = append(out, front)
		}
		if back == nil {
			return out // nothing left inside this plane's half-space
		}
		remainder = back
	}
	// remainder is inside sub; drop it.
	return out
}

// Intersect returns the common volume of two brushes: the intersection of
// both half-space sets. Fails with ErrEmptyIntersection when the brushes
// do not overlap or the overlap is degenerate.
func Intersect(a, b *brush.Brush) (*brush.Brush, error) {
	faces := make([]brush.Face, 0, len(a.Faces())+len(b.Faces()))
	for i := range a.Faces() {
		faces = append(faces, brush.NewFace(a.Faces()[i].Plane, a.Faces()[i].Tex))
	}
	for i := range b.Faces() {
		faces = append(faces, brush.NewFace(b.Faces()[i].Plane, b.Faces()[i].Tex))
	}
	out, err := brush.New(faces, a.WorldBounds())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyIntersection, err)
	}
	return out, nil
}

// Hollow turns a brush into a shell of the given wall thickness by
// subtracting an inward-offset copy from it. Fails with
// ErrInvalidThickness when the thickness is non-positive or at least half
// the brush's smallest extent, which would leave no interior to carve out.
func Hollow(b *brush.Brush, wallThickness float64) ([]*brush.Brush, error) {
	if wallThickness <= 0 {
		return nil, fmt.Errorf("thickness %g: %w", wallThickness, ErrInvalidThickness)
	}
	size := b.BoundingBox().Size()
	minExtent := math.Min(size.X, math.Min(size.Y, size.Z))
	if wallThickness >= minExtent/2 {
		return nil, fmt.Errorf("thickness %g exceeds half extent %g: %w",
			wallThickness, minExtent/2, ErrInvalidThickness)
	}

	faces := make([]brush.Face, len(b.Faces()))
	for i := range b.Faces() {
		f := b.Faces()[i]
		faces[i] = brush.NewFace(f.Plane.Offset(-wallThickness), f.Tex)
	}
	inner, err := brush.New(faces, b.WorldBounds())
	if err != nil {
		return nil, fmt.Errorf("inner shell: %w", ErrInvalidThickness)
	}
	return Subtract(b, []*brush.Brush{inner}), nil
}
