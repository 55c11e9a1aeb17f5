// Package tool implements the interactive handle-editing tools: picking
// vertex, edge and face handles and dragging them with grid snapping.
// Every drag runs inside one undo transaction, so a finished drag undoes
// as a single step and a cancelled drag leaves no trace.
package tool

import (
	"errors"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/quarry3d/quarry/pkg/brush"
	"github.com/quarry3d/quarry/pkg/geom"
)

var (
	// ErrWrongState reports a tool call that its current state forbids.
	ErrWrongState = errors.New("tool is in the wrong state")

	// ErrNoActiveHandle reports a drag without a usable handle.
	ErrNoActiveHandle = errors.New("no active handle")
)

// HandleKind distinguishes the three draggable handle types.
type HandleKind int

const (
	KindVertex HandleKind = iota
	KindEdge
	KindFace
)

func (k HandleKind) String() string {
	switch k {
	case KindVertex:
		return "vertex"
	case KindEdge:
		return "edge"
	case KindFace:
		return "face"
	default:
		return "unknown"
	}
}

// Hit identifies a picked handle and where the pick ray touched it.
type Hit struct {
	Brush *brush.Brush
	Kind  HandleKind
	Index int
	Point v3.Vec
}

// State is the tool lifecycle state.
type State int

const (
	// Inactive tools ignore all input.
	Inactive State = iota
	// Active tools show handles and accept picks.
	Active
	// Selected tools have at least one highlighted handle.
	Selected
	// Dragging tools are mid-drag with an open transaction.
	Dragging
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Active:
		return "active"
	case Selected:
		return "selected"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// DragStatus tells the caller whether a drag may continue.
type DragStatus int

const (
	// DragContinue keeps the drag alive.
	DragContinue DragStatus = iota
	// DragAbort asks the caller to end the drag: the dragged handle
	// merged away and can no longer follow the pointer.
	DragAbort
)

// Editor is the document surface the tools edit through. All moves are
// recorded against its undo history.
type Editor interface {
	WorldBounds() sdf.Box3
	SelectedBrushes() []*brush.Brush

	MoveVertex(b *brush.Brush, index int, delta v3.Vec) (brush.MoveResult, error)
	MoveEdge(b *brush.Brush, index int, delta v3.Vec) (brush.MoveResult, error)
	MoveFace(b *brush.Brush, index int, delta v3.Vec) (brush.MoveResult, error)

	Begin(name string) error
	End() error
	Cancel() error

	SubscribeBrushesChanged(fn func()) func()
	SubscribeSelectionChanged(fn func()) func()
}

// Grid converts raw drag deltas into snapped ones.
type Grid interface {
	MoveDelta(pos v3.Vec, world sdf.Box3, raw v3.Vec) v3.Vec
}

// Picker resolves pick rays to handle hits. With occludedAllowed false,
// vertex and edge handles hidden behind the solid's front faces are
// skipped.
type Picker interface {
	First(ray geom.Ray, kind HandleKind, occludedAllowed bool) (Hit, bool)
}

// VisualSink receives the handle positions a tool wants rendered.
// Implementations are renderers; a nil sink disables visuals.
type VisualSink interface {
	SetHandles(kind HandleKind, positions []v3.Vec)
	SetHighlight(kind HandleKind, positions []v3.Vec)
	Clear(kind HandleKind)
}
