// Package document holds the editable map state: the brush list, the
// selection, the undo history and the change notifications that editing
// tools subscribe to. All mutation funnels through the document so every
// edit is undoable and every listener stays current.
package document

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"

	"github.com/quarry3d/quarry/pkg/brush"
	"github.com/quarry3d/quarry/pkg/csg"
	"github.com/quarry3d/quarry/pkg/undo"
)

// ErrUnknownBrush reports an operation on a brush the document does not
// hold.
var ErrUnknownBrush = errors.New("brush not in document")

// ErrTooFewSelected reports a CSG operation with too small a selection.
var ErrTooFewSelected = errors.New("too few brushes selected")

// Document is the root of the editable map. It is not safe for
// concurrent use; all access happens on the editor loop.
type Document struct {
	world    sdf.Box3
	brushes  []*brush.Brush
	selected map[*brush.Brush]bool
	log      *undo.Log
	logger   *zap.Logger

	brushListeners map[int]func()
	selListeners   map[int]func()
	nextListener   int
}

// Option configures a Document.
type Option func(*Document)

// WithLogger installs a logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(d *Document) { d.logger = l }
}

// New returns an empty document spanning the given world bounds.
func New(world sdf.Box3, opts ...Option) *Document {
	d := &Document{
		world:          world,
		selected:       make(map[*brush.Brush]bool),
		log:            undo.NewLog(),
		logger:         zap.NewNop(),
		brushListeners: make(map[int]func()),
		selListeners:   make(map[int]func()),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WorldBounds returns the world box all brushes must stay inside.
func (d *Document) WorldBounds() sdf.Box3 {
	return d.world
}

// Brushes returns the document's brushes in insertion order. The slice
// is shared; callers must not modify it.
func (d *Document) Brushes() []*brush.Brush {
	return d.brushes
}

// Contains reports whether the document holds b.
func (d *Document) Contains(b *brush.Brush) bool {
	return d.indexOf(b) >= 0
}

func (d *Document) indexOf(b *brush.Brush) int {
	for i, cur := range d.brushes {
		if cur == b {
			return i
		}
	}
	return -1
}

// SubscribeBrushesChanged registers a callback fired after any brush
// geometry or the brush list changes. The returned func unsubscribes.
func (d *Document) SubscribeBrushesChanged(fn func()) func() {
	id := d.nextListener
	d.nextListener++
	d.brushListeners[id] = fn
	return func() { delete(d.brushListeners, id) }
}

// SubscribeSelectionChanged registers a callback fired after the
// selection changes. The returned func unsubscribes.
func (d *Document) SubscribeSelectionChanged(fn func()) func() {
	id := d.nextListener
	d.nextListener++
	d.selListeners[id] = fn
	return func() { delete(d.selListeners, id) }
}

func (d *Document) notifyBrushes() {
	for _, fn := range d.brushListeners {
		fn()
	}
}

func (d *Document) notifySelection() {
	for _, fn := range d.selListeners {
		fn()
	}
}

// Begin opens a named undo transaction.
func (d *Document) Begin(name string) error { return d.log.Begin(name) }

// End commits the open undo transaction.
func (d *Document) End() error { return d.log.End() }

// Cancel rolls back and discards the open undo transaction.
func (d *Document) Cancel() error {
	if err := d.log.Cancel(); err != nil {
		return err
	}
	d.notifyBrushes()
	return nil
}

// Undo rolls back the latest committed transaction and returns its name.
func (d *Document) Undo() (string, error) {
	name, err := d.log.Undo()
	if err != nil {
		return "", err
	}
	d.logger.Debug("undo", zap.String("transaction", name))
	d.notifyBrushes()
	d.notifySelection()
	return name, nil
}

// Redo reapplies the latest undone transaction and returns its name.
func (d *Document) Redo() (string, error) {
	name, err := d.log.Redo()
	if err != nil {
		return "", err
	}
	d.logger.Debug("redo", zap.String("transaction", name))
	d.notifyBrushes()
	d.notifySelection()
	return name, nil
}

// CanUndo reports whether an undo entry exists.
func (d *Document) CanUndo() bool { return d.log.CanUndo() }

// CanRedo reports whether a redo entry exists.
func (d *Document) CanRedo() bool { return d.log.CanRedo() }

// UndoName returns the name of the transaction Undo would roll back.
func (d *Document) UndoName() string { return d.log.UndoName() }

// RedoName returns the name of the transaction Redo would reapply.
func (d *Document) RedoName() string { return d.log.RedoName() }

// transact runs fn inside the open transaction when one exists, or wraps
// it in its own named transaction otherwise. A failing fn cancels the
// owned transaction so refused edits leave no history.
func (d *Document) transact(name string, fn func() error) error {
	if err := d.log.Begin(name); err != nil {
		if errors.Is(err, undo.ErrNestedTransaction) {
			return fn()
		}
		return err
	}
	if err := fn(); err != nil {
		_ = d.log.Cancel()
		return err
	}
	return d.log.End()
}

// AddBrush adds a brush to the document as an undoable edit.
func (d *Document) AddBrush(b *brush.Brush) error {
	if d.Contains(b) {
		return fmt.Errorf("add brush: already present")
	}
	return d.transact("add brush", func() error {
		d.attach(b)
		return d.log.Record(
			func() { d.detach(b) },
			func() { d.attach(b) },
		)
	})
}

// RemoveBrush removes a brush from the document and the selection as an
// undoable edit.
func (d *Document) RemoveBrush(b *brush.Brush) error {
	if !d.Contains(b) {
		return ErrUnknownBrush
	}
	return d.transact("remove brush", func() error {
		wasSelected := d.selected[b]
		d.detach(b)
		if wasSelected {
			d.notifySelection()
		}
		return d.log.Record(
			func() {
				d.attach(b)
				if wasSelected {
					d.selected[b] = true
					d.notifySelection()
				}
			},
			func() { d.detach(b) },
		)
	})
}

func (d *Document) attach(b *brush.Brush) {
	d.brushes = append(d.brushes, b)
	d.notifyBrushes()
}

func (d *Document) detach(b *brush.Brush) {
	if i := d.indexOf(b); i >= 0 {
		d.brushes = append(d.brushes[:i], d.brushes[i+1:]...)
	}
	delete(d.selected, b)
	d.notifyBrushes()
}

// Select adds brushes to the selection.
func (d *Document) Select(brushes ...*brush.Brush) error {
	changed := false
	for _, b := range brushes {
		if !d.Contains(b) {
			return ErrUnknownBrush
		}
		if !d.selected[b] {
			d.selected[b] = true
			changed = true
		}
	}
	if changed {
		d.notifySelection()
	}
	return nil
}

// Deselect removes brushes from the selection.
func (d *Document) Deselect(brushes ...*brush.Brush) {
	changed := false
	for _, b := range brushes {
		if d.selected[b] {
			delete(d.selected, b)
			changed = true
		}
	}
	if changed {
		d.notifySelection()
	}
}

// ClearSelection empties the selection.
func (d *Document) ClearSelection() {
	if len(d.selected) == 0 {
		return
	}
	d.selected = make(map[*brush.Brush]bool)
	d.notifySelection()
}

// SelectedBrushes returns the selected brushes in document order.
func (d *Document) SelectedBrushes() []*brush.Brush {
	var out []*brush.Brush
	for _, b := range d.brushes {
		if d.selected[b] {
			out = append(out, b)
		}
	}
	return out
}

// MoveVertex moves one vertex of a brush by delta, recording the edit.
// A refused move returns MoveResult{Moved: false} and records nothing.
func (d *Document) MoveVertex(b *brush.Brush, index int, delta v3.Vec) (brush.MoveResult, error) {
	return d.moveHandle(b, "move vertex", func() (brush.MoveResult, error) {
		return b.MoveVertex(index, delta)
	})
}

// MoveEdge moves one edge of a brush by delta, recording the edit.
func (d *Document) MoveEdge(b *brush.Brush, index int, delta v3.Vec) (brush.MoveResult, error) {
	return d.moveHandle(b, "move edge", func() (brush.MoveResult, error) {
		return b.MoveEdge(index, delta)
	})
}

// MoveFace moves one face of a brush by delta, recording the edit.
func (d *Document) MoveFace(b *brush.Brush, index int, delta v3.Vec) (brush.MoveResult, error) {
	return d.moveHandle(b, "move face", func() (brush.MoveResult, error) {
		return b.MoveFace(index, delta)
	})
}

func (d *Document) moveHandle(b *brush.Brush, name string, move func() (brush.MoveResult, error)) (brush.MoveResult, error) {
	if !d.Contains(b) {
		return brush.MoveResult{}, ErrUnknownBrush
	}
	before := b.Snapshot()
	res, err := move()
	if err != nil || !res.Moved {
		return res, err
	}
	after := b.Snapshot()
	err = d.transact(name, func() error {
		return d.log.Record(
			func() { _ = b.SetFaces(before); d.notifyBrushes() },
			func() { _ = b.SetFaces(after); d.notifyBrushes() },
		)
	})
	if err != nil {
		return res, err
	}
	d.logger.Debug("handle moved", zap.String("edit", name),
		zap.Bool("merged", res.Index < 0))
	d.notifyBrushes()
	return res, nil
}

// Resize translates the given faces of a brush along their normals,
// recording the edit. lockTextures keeps texture coordinates stationary.
func (d *Document) Resize(b *brush.Brush, faceIndexes []int, delta float64, lockTextures bool) error {
	if !d.Contains(b) {
		return ErrUnknownBrush
	}
	before := b.Snapshot()
	if err := b.Resize(faceIndexes, delta, lockTextures); err != nil {
		return err
	}
	after := b.Snapshot()
	err := d.transact("resize brush", func() error {
		return d.log.Record(
			func() { _ = b.SetFaces(before); d.notifyBrushes() },
			func() { _ = b.SetFaces(after); d.notifyBrushes() },
		)
	})
	if err != nil {
		return err
	}
	d.notifyBrushes()
	return nil
}

// Merge replaces the selected brushes with their convex hull. Fails
// without touching the document or the history when fewer than two
// brushes are selected or the hull cannot be built.
func (d *Document) Merge() (*brush.Brush, error) {
	sel := d.SelectedBrushes()
	if len(sel) < 2 {
		return nil, fmt.Errorf("%d selected: %w", len(sel), ErrTooFewSelected)
	}
	merged, err := csg.Merge(sel)
	if err != nil {
		return nil, err
	}
	err = d.transact("merge brushes", func() error {
		return d.replaceBrushes(sel, []*brush.Brush{merged})
	})
	if err != nil {
		return nil, err
	}
	d.logger.Info("brushes merged", zap.Int("inputs", len(sel)))
	return merged, nil
}

// Subtract carves the selected brushes out of every unselected brush
// they intersect, then deletes the selection. Unaffected brushes are
// left alone.
func (d *Document) Subtract() error {
	sel := d.SelectedBrushes()
	if len(sel) == 0 {
		return fmt.Errorf("0 selected: %w", ErrTooFewSelected)
	}
	return d.transact("subtract brushes", func() error {
		for _, target := range d.unselected() {
			touched := false
			for _, s := range sel {
				if target.Intersects(s) {
					touched = true
					break
				}
			}
			if !touched {
				continue
			}
			fragments := csg.Subtract(target, sel)
			if err := d.replaceBrushes([]*brush.Brush{target}, fragments); err != nil {
				return err
			}
		}
		return d.replaceBrushes(sel, nil)
	})
}

// Intersect replaces the selected brushes with their common volume.
// Fails without touching the document when the selection has no common
// volume.
func (d *Document) Intersect() (*brush.Brush, error) {
	sel := d.SelectedBrushes()
	if len(sel) < 2 {
		return nil, fmt.Errorf("%d selected: %w", len(sel), ErrTooFewSelected)
	}
	result := sel[0]
	for _, b := range sel[1:] {
		var err error
		result, err = csg.Intersect(result, b)
		if err != nil {
			return nil, err
		}
	}
	err := d.transact("intersect brushes", func() error {
		return d.replaceBrushes(sel, []*brush.Brush{result})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Hollow replaces each selected brush with a shell of the given wall
// thickness. The precondition check covers the whole selection before
// any brush is touched, so a single refusal leaves the document alone.
func (d *Document) Hollow(wallThickness float64) error {
	sel := d.SelectedBrushes()
	if len(sel) == 0 {
		return fmt.Errorf("0 selected: %w", ErrTooFewSelected)
	}
	shells := make([][]*brush.Brush, len(sel))
	for i, b := range sel {
		shell, err := csg.Hollow(b, wallThickness)
		if err != nil {
			return err
		}
		shells[i] = shell
	}
	return d.transact("hollow brushes", func() error {
		for i, b := range sel {
			if err := d.replaceBrushes([]*brush.Brush{b}, shells[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *Document) unselected() []*brush.Brush {
	var out []*brush.Brush
	for _, b := range d.brushes {
		if !d.selected[b] {
			out = append(out, b)
		}
	}
	return out
}

// replaceBrushes removes old brushes and adds their replacements as one
// recorded step. Replacements inherit the selection state of the removed
// set.
func (d *Document) replaceBrushes(old, repl []*brush.Brush) error {
	wasSelected := false
	for _, b := range old {
		if d.selected[b] {
			wasSelected = true
			break
		}
	}
	apply := func() {
		for _, b := range old {
			d.detach(b)
		}
		for _, b := range repl {
			d.attach(b)
			if wasSelected {
				d.selected[b] = true
			}
		}
		d.notifySelection()
	}
	revert := func() {
		for _, b := range repl {
			d.detach(b)
		}
		for _, b := range old {
			d.attach(b)
			if wasSelected {
				d.selected[b] = true
			}
		}
		d.notifySelection()
	}
	apply()
	return d.log.Record(revert, apply)
}
