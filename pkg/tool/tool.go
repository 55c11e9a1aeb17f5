package tool

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/quarry3d/quarry/pkg/brush"
)

// handleOps is the per-kind behavior behind the shared tool machinery.
type handleOps interface {
	kind() HandleKind
	positions(b *brush.Brush) []v3.Vec
	position(b *brush.Brush, index int) (v3.Vec, error)
	move(ed Editor, b *brush.Brush, index int, delta v3.Vec) (brush.MoveResult, error)
	undoName() string
}

// Tool is the shared handle-editing state machine. Construct one with
// NewVertexTool, NewEdgeTool or NewFaceTool.
type Tool struct {
	ed   Editor
	grid Grid
	sink VisualSink
	ops  handleOps

	state    State
	selected []Hit

	dragBrush  *brush.Brush
	dragIndex  int
	startIndex int
	refPoint   v3.Vec

	unsubBrushes   func()
	unsubSelection func()
}

// NewVertexTool returns a tool that drags brush corners.
func NewVertexTool(ed Editor, grid Grid, sink VisualSink) *Tool {
	return newTool(ed, grid, sink, vertexOps{})
}

// NewEdgeTool returns a tool that drags whole edges by their midpoints.
func NewEdgeTool(ed Editor, grid Grid, sink VisualSink) *Tool {
	return newTool(ed, grid, sink, edgeOps{})
}

// NewFaceTool returns a tool that drags whole faces by their centers.
func NewFaceTool(ed Editor, grid Grid, sink VisualSink) *Tool {
	return newTool(ed, grid, sink, faceOps{})
}

func newTool(ed Editor, grid Grid, sink VisualSink, ops handleOps) *Tool {
	return &Tool{
		ed:    ed,
		grid:  grid,
		sink:  sink,
		ops:   ops,
		state: Inactive,
	}
}

// State returns the current lifecycle state.
func (t *Tool) State() State {
	return t.state
}

// Kind returns the handle kind this tool edits.
func (t *Tool) Kind() HandleKind {
	return t.ops.kind()
}

// Activate starts showing handles and accepting input. The tool follows
// document changes until deactivated.
func (t *Tool) Activate() error {
	if t.state != Inactive {
		return fmt.Errorf("activate in state %v: %w", t.state, ErrWrongState)
	}
	t.state = Active
	t.unsubBrushes = t.ed.SubscribeBrushesChanged(t.refreshVisuals)
	t.unsubSelection = t.ed.SubscribeSelectionChanged(t.onSelectionChanged)
	t.refreshVisuals()
	return nil
}

// Deactivate stops the tool. An in-flight drag is cancelled first.
func (t *Tool) Deactivate() error {
	switch t.state {
	case Inactive:
		return fmt.Errorf("deactivate in state %v: %w", t.state, ErrWrongState)
	case Dragging:
		if err := t.CancelDrag(); err != nil {
			return err
		}
	}
	t.unsubBrushes()
	t.unsubSelection()
	t.unsubBrushes = nil
	t.unsubSelection = nil
	t.selected = nil
	t.state = Inactive
	if t.sink != nil {
		t.sink.Clear(t.ops.kind())
	}
	return nil
}

// PointerDown picks the handle under the pointer. A hit of the tool's
// kind is handled: it replaces the highlighted handle set, or toggles
// membership when additive. A nil or foreign-kind hit is reported not
// handled and leaves the tool untouched, so the caller can route the
// event to another tool.
func (t *Tool) PointerDown(hit *Hit, additive bool) (bool, error) {
	switch t.state {
	case Active, Selected:
	default:
		return false, fmt.Errorf("pointer down in state %v: %w", t.state, ErrWrongState)
	}

	if hit == nil || hit.Kind != t.ops.kind() {
		return false, nil
	}
	if additive {
		t.toggleSelected(*hit)
	} else {
		t.selected = []Hit{*hit}
	}
	if len(t.selected) == 0 {
		t.state = Active
	} else {
		t.state = Selected
	}
	t.refreshVisuals()
	return true, nil
}

// PointerUp releases the pointer. From Selected it clears the
// highlighted handles and returns to Active; from Active it is a no-op.
func (t *Tool) PointerUp() error {
	switch t.state {
	case Active:
		return nil
	case Selected:
	default:
		return fmt.Errorf("pointer up in state %v: %w", t.state, ErrWrongState)
	}
	t.selected = nil
	t.state = Active
	t.refreshVisuals()
	return nil
}

func (t *Tool) toggleSelected(hit Hit) {
	for i, h := range t.selected {
		if h.Brush == hit.Brush && h.Index == hit.Index {
			t.selected = append(t.selected[:i], t.selected[i+1:]...)
			return
		}
	}
	t.selected = append(t.selected, hit)
}

// SelectedHandles returns the highlighted handle set.
func (t *Tool) SelectedHandles() []Hit {
	return t.selected
}

// BeginDrag opens the drag transaction for the handle under the pointer.
// The hit point becomes the drag reference from which deltas are
// measured.
func (t *Tool) BeginDrag(hit Hit) error {
	switch t.state {
	case Active, Selected:
	default:
		return fmt.Errorf("begin drag in state %v: %w", t.state, ErrWrongState)
	}
	if hit.Brush == nil || hit.Kind != t.ops.kind() {
		return ErrNoActiveHandle
	}
	if _, err := t.ops.position(hit.Brush, hit.Index); err != nil {
		return fmt.Errorf("%w: %v", ErrNoActiveHandle, err)
	}
	if err := t.ed.Begin(t.ops.undoName()); err != nil {
		return err
	}
	t.dragBrush = hit.Brush
	t.dragIndex = hit.Index
	t.startIndex = hit.Index
	t.refPoint = hit.Point
	t.state = Dragging
	return nil
}

// Drag moves the dragged handle toward cur. The raw delta from the
// reference point is grid-snapped against the handle's true position; a
// refused move is a silent no-op and the drag continues. DragAbort means
// the handle merged away and the caller should end or cancel the drag.
func (t *Tool) Drag(cur v3.Vec) (DragStatus, error) {
	if t.state != Dragging {
		return DragAbort, fmt.Errorf("drag in state %v: %w", t.state, ErrWrongState)
	}

	pos, err := t.ops.position(t.dragBrush, t.dragIndex)
	if err != nil {
		return DragAbort, fmt.Errorf("%w: %v", ErrNoActiveHandle, err)
	}
	delta := t.grid.MoveDelta(pos, t.ed.WorldBounds(), cur.Sub(t.refPoint))
	if delta == (v3.Vec{}) {
		return DragContinue, nil
	}

	res, err := t.ops.move(t.ed, t.dragBrush, t.dragIndex, delta)
	if err != nil {
		return DragAbort, err
	}
	if !res.Moved {
		return DragContinue, nil
	}
	if res.Index < 0 {
		// The handle merged into a neighbor; its index died with the
		// rebuild and must not be resolved against the new topology.
		t.dragIndex = -1
		return DragAbort, nil
	}
	t.dragIndex = res.Index
	t.refPoint = t.refPoint.Add(delta)
	return DragContinue, nil
}

// EndDrag commits the drag transaction as one undoable step.
func (t *Tool) EndDrag() error {
	if t.state != Dragging {
		return fmt.Errorf("end drag in state %v: %w", t.state, ErrWrongState)
	}
	if err := t.ed.End(); err != nil {
		return err
	}
	t.finishDrag()
	return nil
}

// CancelDrag rolls the brush back to its pre-drag shape and discards the
// transaction.
func (t *Tool) CancelDrag() error {
	if t.state != Dragging {
		return fmt.Errorf("cancel drag in state %v: %w", t.state, ErrWrongState)
	}
	if err := t.ed.Cancel(); err != nil {
		return err
	}
	t.dragIndex = t.startIndex
	t.finishDrag()
	return nil
}

func (t *Tool) finishDrag() {
	if t.dragIndex < 0 {
		t.selected = nil
		t.state = Active
	} else {
		t.selected = []Hit{{
			Brush: t.dragBrush,
			Kind:  t.ops.kind(),
			Index: t.dragIndex,
		}}
		t.state = Selected
	}
	t.dragBrush = nil
	t.refreshVisuals()
}

// onSelectionChanged drops highlighted handles whose brushes left the
// document selection. Mid-drag the handle set is pinned, but the
// visuals still follow the new selection.
func (t *Tool) onSelectionChanged() {
	if t.state == Inactive {
		return
	}
	if t.state == Dragging {
		t.refreshVisuals()
		return
	}
	live := make(map[*brush.Brush]bool)
	for _, b := range t.ed.SelectedBrushes() {
		live[b] = true
	}
	kept := t.selected[:0]
	for _, h := range t.selected {
		if live[h.Brush] {
			kept = append(kept, h)
		}
	}
	t.selected = kept
	if len(t.selected) == 0 && t.state == Selected {
		t.state = Active
	}
	t.refreshVisuals()
}

// refreshVisuals pushes the current handle and highlight positions to
// the sink.
func (t *Tool) refreshVisuals() {
	if t.sink == nil || t.state == Inactive {
		return
	}
	var all []v3.Vec
	for _, b := range t.ed.SelectedBrushes() {
		all = append(all, t.ops.positions(b)...)
	}
	t.sink.SetHandles(t.ops.kind(), all)

	var hot []v3.Vec
	for _, h := range t.selected {
		if p, err := t.ops.position(h.Brush, h.Index); err == nil {
			hot = append(hot, p)
		}
	}
	t.sink.SetHighlight(t.ops.kind(), hot)
}
