package brush

import (
	"errors"
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/quarry3d/quarry/pkg/geom"
)

func world() sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: -1024, Y: -1024, Z: -1024},
		Max: v3.Vec{X: 1024, Y: 1024, Z: 1024},
	}
}

// unitCube returns the axis-aligned cube with vertices at +-1 on each axis.
func unitCube(t *testing.T) *Brush {
	t.Helper()
	b, err := Cuboid(sdf.Box3{
		Min: v3.Vec{X: -1, Y: -1, Z: -1},
		Max: v3.Vec{X: 1, Y: 1, Z: 1},
	}, world(), DefaultTexInfo("base"))
	if err != nil {
		t.Fatalf("Cuboid() error: %v", err)
	}
	return b
}

func cubeAt(t *testing.T, center v3.Vec, side float64) *Brush {
	t.Helper()
	h := side / 2
	b, err := Cuboid(sdf.Box3{
		Min: center.Sub(v3.Vec{X: h, Y: h, Z: h}),
		Max: center.Add(v3.Vec{X: h, Y: h, Z: h}),
	}, world(), DefaultTexInfo("base"))
	if err != nil {
		t.Fatalf("Cuboid() error: %v", err)
	}
	return b
}

func TestCuboidTopology(t *testing.T) {
	b := unitCube(t)

	if got := len(b.Faces()); got != 6 {
		t.Errorf("faces = %d, want 6", got)
	}
	if got := len(b.Vertices()); got != 8 {
		t.Errorf("vertices = %d, want 8", got)
	}
	if got := len(b.Edges()); got != 12 {
		t.Errorf("edges = %d, want 12", got)
	}
	if got := b.Volume(); math.Abs(got-8) > 1e-6 {
		t.Errorf("volume = %v, want 8", got)
	}

	// Every face polygon must lie exactly on its plane.
	for i := range b.Faces() {
		f := &b.Faces()[i]
		for _, v := range f.Polygon() {
			if d := math.Abs(f.Plane.DistanceTo(v)); d > 1e-6 {
				t.Errorf("face %d vertex %v off plane by %v", i, v, d)
			}
		}
	}
}

func TestRebuildIdempotent(t *testing.T) {
	b := unitCube(t)

	before := make([]geom.Plane, len(b.Faces()))
	for i := range b.Faces() {
		before[i] = b.Faces()[i].Plane
	}

	if err := b.Rebuild(); err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}
	if err := b.Rebuild(); err != nil {
		t.Fatalf("second Rebuild() error: %v", err)
	}

	after := b.Faces()
	if len(after) != len(before) {
		t.Fatalf("face count changed: %d -> %d", len(before), len(after))
	}
	for i := range after {
		// Bit-identical: rebuild derives polygons but never touches planes.
		if after[i].Plane != before[i] {
			t.Errorf("face %d plane changed: %+v -> %+v", i, before[i], after[i].Plane)
		}
	}
}

func TestNewRejectsDegenerate(t *testing.T) {
	tex := DefaultTexInfo("")

	t.Run("too few faces", func(t *testing.T) {
		faces := []Face{
			NewFace(geom.Plane{Normal: v3.Vec{X: 1}, Dist: 1}, tex),
			NewFace(geom.Plane{Normal: v3.Vec{X: -1}, Dist: 1}, tex),
			NewFace(geom.Plane{Normal: v3.Vec{Y: 1}, Dist: 1}, tex),
		}
		if _, err := New(faces, world()); !errors.Is(err, geom.ErrDegenerate) {
			t.Errorf("New() error = %v, want ErrDegenerate", err)
		}
	})

	t.Run("unbounded", func(t *testing.T) {
		// Four planes forming an infinite wedge: bounded only by the
		// world box check.
		faces := []Face{
			NewFace(geom.Plane{Normal: v3.Vec{X: 1}, Dist: 2048}, tex),
			NewFace(geom.Plane{Normal: v3.Vec{X: -1}, Dist: 2048}, tex),
			NewFace(geom.Plane{Normal: v3.Vec{Y: 1}, Dist: 2048}, tex),
			NewFace(geom.Plane{Normal: v3.Vec{Y: -1}, Dist: 2048}, tex),
		}
		if _, err := New(faces, world()); !errors.Is(err, geom.ErrDegenerate) {
			t.Errorf("New() error = %v, want ErrDegenerate", err)
		}
	})

	t.Run("inverted volume", func(t *testing.T) {
		// Opposing half-spaces with no overlap.
		faces := []Face{
			NewFace(geom.Plane{Normal: v3.Vec{X: 1}, Dist: -1}, tex),
			NewFace(geom.Plane{Normal: v3.Vec{X: -1}, Dist: -1}, tex),
			NewFace(geom.Plane{Normal: v3.Vec{Y: 1}, Dist: 1}, tex),
			NewFace(geom.Plane{Normal: v3.Vec{Y: -1}, Dist: 1}, tex),
			NewFace(geom.Plane{Normal: v3.Vec{Z: 1}, Dist: 1}, tex),
			NewFace(geom.Plane{Normal: v3.Vec{Z: -1}, Dist: 1}, tex),
		}
		if _, err := New(faces, world()); !errors.Is(err, geom.ErrDegenerate) {
			t.Errorf("New() error = %v, want ErrDegenerate", err)
		}
	})
}

func TestRebuildDropsRedundantFace(t *testing.T) {
	tex := DefaultTexInfo("")
	faces := []Face{
		NewFace(geom.Plane{Normal: v3.Vec{X: 1}, Dist: 1}, tex),
		NewFace(geom.Plane{Normal: v3.Vec{X: -1}, Dist: 1}, tex),
		NewFace(geom.Plane{Normal: v3.Vec{Y: 1}, Dist: 1}, tex),
		NewFace(geom.Plane{Normal: v3.Vec{Y: -1}, Dist: 1}, tex),
		NewFace(geom.Plane{Normal: v3.Vec{Z: 1}, Dist: 1}, tex),
		NewFace(geom.Plane{Normal: v3.Vec{Z: -1}, Dist: 1}, tex),
		// A plane far outside the cube never bounds the solid.
		NewFace(geom.Plane{Normal: v3.Vec{X: 1}, Dist: 100}, tex),
	}
	b, err := New(faces, world())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if got := len(b.Faces()); got != 6 {
		t.Errorf("faces = %d, want 6 (redundant face must be dropped)", got)
	}
}

func TestDuplicateIsIndependent(t *testing.T) {
	b := unitCube(t)
	b.Faces()[0].Tex = TexInfo{Name: "wall", OffsetU: 3, ScaleU: 2, ScaleV: 2, Rotation: 90}

	d := b.Duplicate()
	if len(d.Faces()) != len(b.Faces()) {
		t.Fatalf("duplicate has %d faces, want %d", len(d.Faces()), len(b.Faces()))
	}
	if d.Faces()[0].Tex != b.Faces()[0].Tex {
		t.Errorf("texture not copied verbatim: %+v vs %+v", d.Faces()[0].Tex, b.Faces()[0].Tex)
	}

	// Mutating the duplicate must not touch the original.
	if _, err := d.MoveFace(0, v3.Vec{X: 0.5}); err != nil {
		t.Fatalf("MoveFace() on duplicate: %v", err)
	}
	if got := b.Volume(); math.Abs(got-8) > 1e-6 {
		t.Errorf("original volume changed to %v after mutating duplicate", got)
	}
}

func TestContainsPoint(t *testing.T) {
	b := unitCube(t)
	tests := []struct {
		name  string
		point v3.Vec
		want  bool
	}{
		{"center", v3.Vec{}, true},
		{"on face", v3.Vec{X: 1}, true},
		{"on corner", v3.Vec{X: 1, Y: 1, Z: 1}, true},
		{"outside", v3.Vec{X: 1.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.ContainsPoint(tt.point); got != tt.want {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestBoundingBoxAndHandles(t *testing.T) {
	b := unitCube(t)

	box := b.BoundingBox()
	if !box.Min.Equals(v3.Vec{X: -1, Y: -1, Z: -1}, 1e-6) || !box.Max.Equals(v3.Vec{X: 1, Y: 1, Z: 1}, 1e-6) {
		t.Errorf("BoundingBox() = %+v", box)
	}

	if _, err := b.VertexPosition(99); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("VertexPosition(99) error = %v, want ErrInvalidHandle", err)
	}
	mid, err := b.EdgeMidpoint(0)
	if err != nil {
		t.Fatalf("EdgeMidpoint(0) error: %v", err)
	}
	if !b.ContainsPoint(mid) {
		t.Errorf("edge midpoint %v not on the brush", mid)
	}
	c, err := b.FaceCenter(0)
	if err != nil {
		t.Fatalf("FaceCenter(0) error: %v", err)
	}
	if d := math.Abs(b.Faces()[0].Plane.DistanceTo(c)); d > 1e-6 {
		t.Errorf("face center off its plane by %v", d)
	}
}

func TestSDF3(t *testing.T) {
	b := unitCube(t)
	s := b.SDF3()

	if d := s.Evaluate(v3.Vec{}); d >= 0 {
		t.Errorf("center distance = %v, want negative", d)
	}
	if d := s.Evaluate(v3.Vec{X: 3}); math.Abs(d-2) > 1e-9 {
		t.Errorf("outside distance = %v, want 2", d)
	}
	if d := s.Evaluate(v3.Vec{X: 1, Y: 0.5}); math.Abs(d) > 1e-9 {
		t.Errorf("surface distance = %v, want 0", d)
	}
}
