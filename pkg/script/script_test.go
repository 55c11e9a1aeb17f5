package script

import (
	"math"
	"strings"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func worldBox() sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: -1024, Y: -1024, Z: -1024},
		Max: v3.Vec{X: 1024, Y: 1024, Z: 1024},
	}
}

// eval evaluates source and fails the test on fatal or eval errors.
func eval(t *testing.T, source string) []*testingBrush {
	t.Helper()
	e := NewEngine(worldBox())
	brushes, evalErrs, err := e.Evaluate(source)
	if err != nil {
		t.Fatalf("Evaluate() fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("Evaluate() eval errors: %v", evalErrs)
	}
	out := make([]*testingBrush, len(brushes))
	for i, b := range brushes {
		out[i] = &testingBrush{volume: b.Volume(), faces: len(b.Faces()), tex: b.Faces()[0].Tex.Name}
	}
	return out
}

type testingBrush struct {
	volume float64
	faces  int
	tex    string
}

func TestEmptySource(t *testing.T) {
	e := NewEngine(worldBox())
	brushes, evalErrs, err := e.Evaluate("   \n\t  ")
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("Evaluate() = %v, %v", evalErrs, err)
	}
	if len(brushes) != 0 {
		t.Errorf("brushes = %d, want 0", len(brushes))
	}
}

func TestCuboidMinMax(t *testing.T) {
	got := eval(t, `(emit (cuboid :min (vec3 0 0 0) :max (vec3 2 2 2) :texture "stone"))`)
	if len(got) != 1 {
		t.Fatalf("brushes = %d, want 1", len(got))
	}
	if math.Abs(got[0].volume-8) > 1e-6 {
		t.Errorf("volume = %v, want 8", got[0].volume)
	}
	if got[0].faces != 6 {
		t.Errorf("faces = %d, want 6", got[0].faces)
	}
	if got[0].tex != "stone" {
		t.Errorf("texture = %q, want %q", got[0].tex, "stone")
	}
}

func TestCuboidAtSize(t *testing.T) {
	got := eval(t, `(emit (cuboid :at (vec3 0 0 0) :size (vec3 4 2 1)))`)
	if len(got) != 1 {
		t.Fatalf("brushes = %d, want 1", len(got))
	}
	if math.Abs(got[0].volume-8) > 1e-6 {
		t.Errorf("volume = %v, want 8", got[0].volume)
	}
	if got[0].tex != "default" {
		t.Errorf("texture = %q, want %q", got[0].tex, "default")
	}
}

func TestMerge(t *testing.T) {
	got := eval(t, `
		; two unit cubes four apart merge into a 5x1x1 bar
		(emit (merge
			(cuboid :at (vec3 0 0 0) :size (vec3 1 1 1))
			(cuboid :at (vec3 4 0 0) :size (vec3 1 1 1))))`)
	if len(got) != 1 {
		t.Fatalf("brushes = %d, want 1", len(got))
	}
	if math.Abs(got[0].volume-5) > 1e-6 {
		t.Errorf("volume = %v, want 5", got[0].volume)
	}
}

func TestSubtract(t *testing.T) {
	got := eval(t, `
		(emit (subtract
			(cuboid :at (vec3 0 0 0) :size (vec3 2 2 2))
			(cuboid :at (vec3 1 0 0) :size (vec3 2 2 2))))`)
	var total float64
	for _, b := range got {
		total += b.volume
	}
	if math.Abs(total-4) > 1e-6 {
		t.Errorf("remaining volume = %v, want 4", total)
	}
}

func TestIntersect(t *testing.T) {
	got := eval(t, `
		(emit (intersect
			(cuboid :at (vec3 0 0 0) :size (vec3 2 2 2))
			(cuboid :at (vec3 1 0 0) :size (vec3 2 2 2))))`)
	if len(got) != 1 {
		t.Fatalf("brushes = %d, want 1", len(got))
	}
	if math.Abs(got[0].volume-4) > 1e-6 {
		t.Errorf("volume = %v, want 4", got[0].volume)
	}
}

func TestHollow(t *testing.T) {
	got := eval(t, `
		(emit (hollow
			(cuboid :at (vec3 0 0 0) :size (vec3 10 10 10))
			:thickness 1))`)
	var total float64
	for _, b := range got {
		total += b.volume
	}
	if math.Abs(total-488) > 1e-6 {
		t.Errorf("shell volume = %v, want 488", total)
	}
}

func TestWedge(t *testing.T) {
	got := eval(t, `(emit (wedge :min (vec3 0 0 0) :max (vec3 2 2 2) :texture "ramp"))`)
	if len(got) != 1 {
		t.Fatalf("brushes = %d, want 1", len(got))
	}
	// Half the enclosing box.
	if math.Abs(got[0].volume-4) > 1e-6 {
		t.Errorf("volume = %v, want 4", got[0].volume)
	}
	if got[0].faces != 5 {
		t.Errorf("faces = %d, want 5", got[0].faces)
	}
	if got[0].tex != "ramp" {
		t.Errorf("texture = %q, want %q", got[0].tex, "ramp")
	}
}

func TestBrushFromPlanes(t *testing.T) {
	got := eval(t, `
		(emit (brush
			(plane (vec3 1 0 0) 1)
			(plane (vec3 -1 0 0) 1)
			(plane (vec3 0 1 0) 1)
			(plane (vec3 0 -1 0) 1)
			(plane (vec3 0 0 1) 1)
			(plane (vec3 0 0 -1) 1)))`)
	if len(got) != 1 {
		t.Fatalf("brushes = %d, want 1", len(got))
	}
	if math.Abs(got[0].volume-8) > 1e-6 {
		t.Errorf("volume = %v, want 8", got[0].volume)
	}
}

func TestBrushTooFewPlanes(t *testing.T) {
	e := NewEngine(worldBox())
	_, evalErrs, err := e.Evaluate(`
		(emit (brush
			(plane (vec3 1 0 0) 1)
			(plane (vec3 -1 0 0) 1)))`)
	if err != nil {
		t.Fatalf("too few planes must not be fatal: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("brush with 2 planes must produce an eval error")
	}
}

func TestTexture(t *testing.T) {
	got := eval(t, `
		(emit (texture
			(cuboid :at (vec3 0 0 0) :size (vec3 2 2 2))
			"brick"))`)
	if len(got) != 1 {
		t.Fatalf("brushes = %d, want 1", len(got))
	}
	if got[0].tex != "brick" {
		t.Errorf("texture = %q, want %q", got[0].tex, "brick")
	}
}

func TestVariablesAndMultipleEmits(t *testing.T) {
	got := eval(t, `
		(def room (cuboid :at (vec3 0 0 0) :size (vec3 4 4 4)))
		(def pillar (cuboid :at (vec3 10 0 0) :size (vec3 1 1 4)))
		(emit room)
		(emit pillar)`)
	if len(got) != 2 {
		t.Fatalf("brushes = %d, want 2", len(got))
	}
}

func TestParseErrorHasNoFatal(t *testing.T) {
	e := NewEngine(worldBox())
	brushes, evalErrs, err := e.Evaluate(`(emit (cuboid :at (vec3 0 0 0)`)
	if err != nil {
		t.Fatalf("parse failure must not be fatal: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("no eval errors for unbalanced parens")
	}
	if brushes != nil {
		t.Errorf("brushes = %v, want nil on failure", brushes)
	}
}

func TestRuntimeErrorReported(t *testing.T) {
	e := NewEngine(worldBox())
	_, evalErrs, err := e.Evaluate(`(emit (cuboid :at (vec3 0 0 0)))`)
	if err != nil {
		t.Fatalf("runtime failure must not be fatal: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("missing :size must produce an eval error")
	}
	if !strings.Contains(evalErrs[0].Message, "cuboid") {
		t.Errorf("error %q does not mention the failing builtin", evalErrs[0].Message)
	}
}

func TestDegenerateCuboidReported(t *testing.T) {
	e := NewEngine(worldBox())
	_, evalErrs, err := e.Evaluate(`(emit (cuboid :at (vec3 0 0 0) :size (vec3 0 0 0)))`)
	if err != nil {
		t.Fatalf("degenerate cuboid must not be fatal: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("zero-size cuboid must produce an eval error")
	}
}

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"keyword", `(cuboid :min x)`, `(cuboid "__kw_min" x)`},
		{"keyword in string kept", `(f ":min")`, `(f ":min")`},
		{"assignment kept", `(x := 1)`, `(x := 1)`},
		{"comment", "; hello\n(f)", "// hello\n(f)"},
		{"double semicolon", ";; hello\n(f)", "// hello\n(f)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preprocessSource(tt.in); got != tt.want {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEvalErrorString(t *testing.T) {
	e := EvalError{Line: 3, Message: "boom"}
	if e.Error() != "line 3: boom" {
		t.Errorf("Error() = %q", e.Error())
	}
	e = EvalError{Message: "boom"}
	if e.Error() != "boom" {
		t.Errorf("Error() = %q", e.Error())
	}
}
