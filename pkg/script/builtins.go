package script

import (
	"fmt"
	"strings"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/quarry3d/quarry/pkg/brush"
	"github.com/quarry3d/quarry/pkg/csg"
	"github.com/quarry3d/quarry/pkg/geom"
)

// preprocessSource transforms scene Lisp source before passing it to
// zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal),
//     avoiding global symbol registration that would collide with user
//     variables.
//
//  2. Line comments: ; comments become // comments, which is what
//     zygomys expects.
//
// Both transformations respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// sexpBrushes wraps a set of brushes so it can be passed between
// builtins. Most operations produce a single brush; subtract and hollow
// produce fragments, which flow through as one value.
type sexpBrushes struct {
	brushes []*brush.Brush
}

func (s *sexpBrushes) SexpString(ps *zygo.PrintState) string {
	if len(s.brushes) == 1 {
		return fmt.Sprintf("(brush %d-faces)", len(s.brushes[0].Faces()))
	}
	return fmt.Sprintf("(brushes %d)", len(s.brushes))
}
func (s *sexpBrushes) Type() *zygo.RegisteredType { return nil }

// sexpFace wraps a textured half-space for the brush builtin.
type sexpFace struct {
	face brush.Face
}

func (f *sexpFace) SexpString(ps *zygo.PrintState) string {
	n := f.face.Plane.Normal
	return fmt.Sprintf("(plane (vec3 %.1f %.1f %.1f) %.1f)", n.X, n.Y, n.Z, f.face.Plane.Dist)
}
func (f *sexpFace) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a point or size vector.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string, returning the
// bare keyword name when it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument
// list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toBrushes(s zygo.Sexp) ([]*brush.Brush, error) {
	if b, ok := s.(*sexpBrushes); ok {
		return b.brushes, nil
	}
	return nil, fmt.Errorf("expected brushes, got %T (%s)", s, s.SexpString(nil))
}

func toSingleBrush(s zygo.Sexp) (*brush.Brush, error) {
	bs, err := toBrushes(s)
	if err != nil {
		return nil, err
	}
	if len(bs) != 1 {
		return nil, fmt.Errorf("expected a single brush, got %d", len(bs))
	}
	return bs[0], nil
}

// emitted collects the brushes a script hands to the document.
type emitted struct {
	brushes []*brush.Brush
}

// registerBuiltins installs the scene DSL into a zygomys environment.
// The builtins build brushes inside world and append emitted results to
// out.
//
// Source code must be preprocessed with preprocessSource() so that
// :keyword tokens arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, world sdf.Box3, out *emitted) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}
		return &sexpVec3{vec: v3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (cuboid :min (vec3 0 0 0) :max (vec3 64 64 16) :texture "stone")
	// (cuboid :at (vec3 32 32 8) :size (vec3 64 64 16))
	// -----------------------------------------------------------------------
	env.AddFunction("cuboid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		texName := "default"
		if v, ok := pa.kw["texture"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cuboid: texture: %w", err)
			}
			texName = s
		}

		var box sdf.Box3
		switch {
		case pa.kw["min"] != nil && pa.kw["max"] != nil:
			min, err := toVec3(pa.kw["min"])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cuboid: min: %w", err)
			}
			max, err := toVec3(pa.kw["max"])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cuboid: max: %w", err)
			}
			box = sdf.Box3{Min: min, Max: max}
		case pa.kw["at"] != nil && pa.kw["size"] != nil:
			at, err := toVec3(pa.kw["at"])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cuboid: at: %w", err)
			}
			size, err := toVec3(pa.kw["size"])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cuboid: size: %w", err)
			}
			half := size.MulScalar(0.5)
			box = sdf.Box3{Min: at.Sub(half), Max: at.Add(half)}
		default:
			return zygo.SexpNull, fmt.Errorf("cuboid requires :min/:max or :at/:size")
		}

		b, err := brush.Cuboid(box, world, brush.DefaultTexInfo(texName))
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cuboid: %w", err)
		}
		return &sexpBrushes{brushes: []*brush.Brush{b}}, nil
	})

	// -----------------------------------------------------------------------
	// (wedge :min (vec3 0 0 0) :max (vec3 64 64 32) :texture "stone")
	//
	// A ramp: the cuboid's top face replaced with a slope rising along x,
	// from min.z at max.x to max.z at min.x.
	// -----------------------------------------------------------------------
	env.AddFunction("wedge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		texName := "default"
		if v, ok := pa.kw["texture"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("wedge: texture: %w", err)
			}
			texName = s
		}
		if pa.kw["min"] == nil || pa.kw["max"] == nil {
			return zygo.SexpNull, fmt.Errorf("wedge requires :min and :max")
		}
		min, err := toVec3(pa.kw["min"])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("wedge: min: %w", err)
		}
		max, err := toVec3(pa.kw["max"])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("wedge: max: %w", err)
		}

		dx := max.X - min.X
		dz := max.Z - min.Z
		if dx <= 0 || dz <= 0 || max.Y <= min.Y {
			return zygo.SexpNull, fmt.Errorf("wedge requires max > min on every axis")
		}
		// Slope through (max.x, *, min.z) and (min.x, *, max.z).
		slope := v3.Vec{X: dz, Z: dx}.Normalize()
		tex := brush.DefaultTexInfo(texName)
		faces := []brush.Face{
			brush.NewFace(geom.Plane{Normal: v3.Vec{X: -1}, Dist: -min.X}, tex),
			brush.NewFace(geom.Plane{Normal: v3.Vec{Y: 1}, Dist: max.Y}, tex),
			brush.NewFace(geom.Plane{Normal: v3.Vec{Y: -1}, Dist: -min.Y}, tex),
			brush.NewFace(geom.Plane{Normal: v3.Vec{Z: -1}, Dist: -min.Z}, tex),
			brush.NewFace(geom.Plane{Normal: slope, Dist: slope.Dot(v3.Vec{X: max.X, Z: min.Z})}, tex),
		}
		b, err := brush.New(faces, world)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("wedge: %w", err)
		}
		return &sexpBrushes{brushes: []*brush.Brush{b}}, nil
	})

	// -----------------------------------------------------------------------
	// (plane (vec3 0 0 1) 32 :texture "stone")
	// -----------------------------------------------------------------------
	env.AddFunction("plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("plane requires a normal and a distance")
		}
		n, err := toVec3(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: normal: %w", err)
		}
		dist, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: distance: %w", err)
		}
		length := n.Length()
		if length < 1e-9 {
			return zygo.SexpNull, fmt.Errorf("plane: zero-length normal")
		}
		texName := "default"
		if v, ok := pa.kw["texture"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("plane: texture: %w", err)
			}
			texName = s
		}
		f := brush.NewFace(geom.Plane{
			Normal: n.MulScalar(1 / length),
			Dist:   dist / length,
		}, brush.DefaultTexInfo(texName))
		return &sexpFace{face: f}, nil
	})

	// -----------------------------------------------------------------------
	// (brush (plane ...) (plane ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("brush", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 4 {
			return zygo.SexpNull, fmt.Errorf("brush requires at least 4 planes, got %d", len(args))
		}
		faces := make([]brush.Face, len(args))
		for i, a := range args {
			f, ok := a.(*sexpFace)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("brush: argument %d: expected plane, got %T", i+1, a)
			}
			faces[i] = f.face
		}
		b, err := brush.New(faces, world)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("brush: %w", err)
		}
		return &sexpBrushes{brushes: []*brush.Brush{b}}, nil
	})

	// -----------------------------------------------------------------------
	// (merge b1 b2 ...)
	// -----------------------------------------------------------------------
	env.AddFunction("merge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var inputs []*brush.Brush
		for i, a := range args {
			bs, err := toBrushes(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("merge: argument %d: %w", i+1, err)
			}
			inputs = append(inputs, bs...)
		}
		merged, err := csg.Merge(inputs)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("merge: %w", err)
		}
		return &sexpBrushes{brushes: []*brush.Brush{merged}}, nil
	})

	// -----------------------------------------------------------------------
	// (subtract minuend sub1 sub2 ...)
	// -----------------------------------------------------------------------
	env.AddFunction("subtract", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("subtract requires a minuend and at least one subtrahend")
		}
		minuends, err := toBrushes(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("subtract: minuend: %w", err)
		}
		var subs []*brush.Brush
		for i, a := range args[1:] {
			bs, err := toBrushes(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("subtract: argument %d: %w", i+2, err)
			}
			subs = append(subs, bs...)
		}
		var result []*brush.Brush
		for _, m := range minuends {
			result = append(result, csg.Subtract(m, subs)...)
		}
		return &sexpBrushes{brushes: result}, nil
	})

	// -----------------------------------------------------------------------
	// (intersect a b)
	// -----------------------------------------------------------------------
	env.AddFunction("intersect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("intersect requires exactly 2 arguments, got %d", len(args))
		}
		a, err := toSingleBrush(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersect: first: %w", err)
		}
		b, err := toSingleBrush(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersect: second: %w", err)
		}
		result, err := csg.Intersect(a, b)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersect: %w", err)
		}
		return &sexpBrushes{brushes: []*brush.Brush{result}}, nil
	})

	// -----------------------------------------------------------------------
	// (hollow b :thickness 16)
	// -----------------------------------------------------------------------
	env.AddFunction("hollow", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("hollow requires one brush argument")
		}
		b, err := toSingleBrush(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("hollow: %w", err)
		}
		v, ok := pa.kw["thickness"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("hollow requires :thickness")
		}
		thickness, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("hollow: thickness: %w", err)
		}
		shell, err := csg.Hollow(b, thickness)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("hollow: %w", err)
		}
		return &sexpBrushes{brushes: shell}, nil
	})

	// -----------------------------------------------------------------------
	// (texture b "stone")
	// -----------------------------------------------------------------------
	env.AddFunction("texture", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("texture requires a brush and a name")
		}
		bs, err := toBrushes(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("texture: %w", err)
		}
		texName, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("texture: name: %w", err)
		}
		out := make([]*brush.Brush, len(bs))
		for i, b := range bs {
			d := b.Duplicate()
			for j := range d.Faces() {
				d.Faces()[j].Tex.Name = texName
			}
			out[i] = d
		}
		return &sexpBrushes{brushes: out}, nil
	})

	// -----------------------------------------------------------------------
	// (emit b1 b2 ...)
	// -----------------------------------------------------------------------
	env.AddFunction("emit", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		for i, a := range args {
			bs, err := toBrushes(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("emit: argument %d: %w", i+1, err)
			}
			out.brushes = append(out.brushes, bs...)
		}
		return zygo.SexpNull, nil
	})
}
