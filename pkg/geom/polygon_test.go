package geom

import (
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func testBounds() sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: -1024, Y: -1024, Z: -1024},
		Max: v3.Vec{X: 1024, Y: 1024, Z: 1024},
	}
}

func TestBasePolygonLiesOnPlane(t *testing.T) {
	planes := []Plane{
		{Normal: v3.Vec{Z: 1}, Dist: 4},
		{Normal: v3.Vec{X: 1}, Dist: -7},
		{Normal: v3.Vec{X: 1, Y: 1, Z: 1}.Normalize(), Dist: 2},
	}
	for _, pl := range planes {
		poly := BasePolygon(pl, testBounds())
		if len(poly) != 4 {
			t.Fatalf("BasePolygon returned %d vertices, want 4", len(poly))
		}
		for _, v := range poly {
			if math.Abs(pl.DistanceTo(v)) > 1e-6 {
				t.Errorf("vertex %v is off plane by %v", v, pl.DistanceTo(v))
			}
		}
		// Winding must agree with the plane normal.
		derived, err := PlaneFromPoints(poly[0], poly[1], poly[2])
		if err != nil {
			t.Fatalf("degenerate base polygon: %v", err)
		}
		if derived.Normal.Dot(pl.Normal) < 0.999 {
			t.Errorf("winding normal %v disagrees with plane normal %v", derived.Normal, pl.Normal)
		}
	}
}

func TestClipPolygon(t *testing.T) {
	// Unit square on the xy plane.
	square := Polygon{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	}

	t.Run("keeps back side", func(t *testing.T) {
		half := ClipPolygon(square, Plane{Normal: v3.Vec{X: 1}, Dist: 0.5})
		if half == nil {
			t.Fatal("clip returned nil")
		}
		if got := half.Area(); math.Abs(got-0.5) > 1e-9 {
			t.Errorf("area after clip = %v, want 0.5", got)
		}
		for _, v := range half {
			if v.X > 0.5+PlaneEpsilon {
				t.Errorf("vertex %v survived on the front side", v)
			}
		}
	})

	t.Run("entirely behind is untouched", func(t *testing.T) {
		got := ClipPolygon(square, Plane{Normal: v3.Vec{X: 1}, Dist: 5})
		if len(got) != len(square) {
			t.Errorf("polygon changed: %d vertices, want %d", len(got), len(square))
		}
	})

	t.Run("entirely in front vanishes", func(t *testing.T) {
		if got := ClipPolygon(square, Plane{Normal: v3.Vec{X: -1}, Dist: 5}); got != nil {
			t.Errorf("polygon survived a clip that covers it: %v", got)
		}
	})

	t.Run("sliver is rejected", func(t *testing.T) {
		if got := ClipPolygon(square, Plane{Normal: v3.Vec{X: 1}, Dist: 1e-9}); got != nil {
			t.Errorf("sliver polygon survived: %v", got)
		}
	})

	t.Run("diagonal clip", func(t *testing.T) {
		pl := Plane{Normal: v3.Vec{X: 1, Y: 1}.Normalize(), Dist: math.Sqrt2 / 2}
		tri := ClipPolygon(square, pl)
		if tri == nil {
			t.Fatal("diagonal clip returned nil")
		}
		if got := tri.Area(); math.Abs(got-0.5) > 1e-9 {
			t.Errorf("area after diagonal clip = %v, want 0.5", got)
		}
	})
}

func TestPolygonCenterAndContains(t *testing.T) {
	square := Polygon{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2},
	}
	if c := square.Center(); !c.Equals(v3.Vec{X: 1, Y: 1}, 1e-9) {
		t.Errorf("Center() = %v, want (1,1,0)", c)
	}
	if !square.Contains(v3.Vec{X: 2, Y: 2}) {
		t.Error("Contains() missed an exact vertex")
	}
	if square.Contains(v3.Vec{X: 1, Y: 1}) {
		t.Error("Contains() accepted the centroid, which is not a vertex")
	}
}
