package tool

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/quarry3d/quarry/pkg/brush"
)

type vertexOps struct{}

func (vertexOps) kind() HandleKind { return KindVertex }

func (vertexOps) positions(b *brush.Brush) []v3.Vec {
	out := make([]v3.Vec, len(b.Vertices()))
	copy(out, b.Vertices())
	return out
}

func (vertexOps) position(b *brush.Brush, index int) (v3.Vec, error) {
	return b.VertexPosition(index)
}

func (vertexOps) move(ed Editor, b *brush.Brush, index int, delta v3.Vec) (brush.MoveResult, error) {
	return ed.MoveVertex(b, index, delta)
}

func (vertexOps) undoName() string { return "move vertices" }

type edgeOps struct{}

func (edgeOps) kind() HandleKind { return KindEdge }

func (edgeOps) positions(b *brush.Brush) []v3.Vec {
	out := make([]v3.Vec, 0, len(b.Edges()))
	for i := range b.Edges() {
		m, err := b.EdgeMidpoint(i)
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (edgeOps) position(b *brush.Brush, index int) (v3.Vec, error) {
	return b.EdgeMidpoint(index)
}

func (edgeOps) move(ed Editor, b *brush.Brush, index int, delta v3.Vec) (brush.MoveResult, error) {
	return ed.MoveEdge(b, index, delta)
}

func (edgeOps) undoName() string { return "move edges" }

type faceOps struct{}

func (faceOps) kind() HandleKind { return KindFace }

func (faceOps) positions(b *brush.Brush) []v3.Vec {
	out := make([]v3.Vec, 0, len(b.Faces()))
	for i := range b.Faces() {
		c, err := b.FaceCenter(i)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (faceOps) position(b *brush.Brush, index int) (v3.Vec, error) {
	return b.FaceCenter(index)
}

func (faceOps) move(ed Editor, b *brush.Brush, index int, delta v3.Vec) (brush.MoveResult, error) {
	return ed.MoveFace(b, index, delta)
}

func (faceOps) undoName() string { return "move faces" }
