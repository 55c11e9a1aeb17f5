package undo

import (
	"errors"
	"testing"
)

// counter is a tiny piece of state whose changes are recorded the way
// document edits are: apply first, then record both directions.
type counter struct {
	log   *Log
	value int
}

func (c *counter) add(t *testing.T, n int) {
	t.Helper()
	c.value += n
	err := c.log.Record(
		func() { c.value -= n },
		func() { c.value += n },
	)
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}
}

func TestCommitUndoRedo(t *testing.T) {
	c := &counter{log: NewLog()}

	if err := c.log.Begin("add five"); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	c.add(t, 2)
	c.add(t, 3)
	if err := c.log.End(); err != nil {
		t.Fatalf("End() error: %v", err)
	}
	if c.value != 5 {
		t.Fatalf("value = %d, want 5", c.value)
	}

	name, err := c.log.Undo()
	if err != nil {
		t.Fatalf("Undo() error: %v", err)
	}
	if name != "add five" {
		t.Errorf("undone %q, want %q", name, "add five")
	}
	if c.value != 0 {
		t.Errorf("value after undo = %d, want 0", c.value)
	}

	name, err = c.log.Redo()
	if err != nil {
		t.Fatalf("Redo() error: %v", err)
	}
	if name != "add five" || c.value != 5 {
		t.Errorf("redo %q, value %d, want %q, 5", name, c.value, "add five")
	}
}

func TestCancelRollsBackInReverse(t *testing.T) {
	c := &counter{log: NewLog()}
	var order []int

	if err := c.log.Begin("edit"); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	for i := 1; i <= 3; i++ {
		i := i
		c.value += i
		if err := c.log.Record(func() {
			c.value -= i
			order = append(order, i)
		}, func() { c.value += i }); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}

	if err := c.log.Cancel(); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	if c.value != 0 {
		t.Errorf("value after cancel = %d, want 0", c.value)
	}
	if len(order) != 3 || order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Errorf("rollback order = %v, want [3 2 1]", order)
	}
	if c.log.CanUndo() {
		t.Error("cancelled transaction left an undo entry")
	}
}

func TestEmptyTransactionLeavesNoHistory(t *testing.T) {
	l := NewLog()
	if err := l.Begin("noop"); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if err := l.End(); err != nil {
		t.Fatalf("End() error: %v", err)
	}
	if l.CanUndo() {
		t.Error("empty transaction committed to history")
	}
}

func TestCommitClearsRedo(t *testing.T) {
	c := &counter{log: NewLog()}

	for _, name := range []string{"first", "second"} {
		if err := c.log.Begin(name); err != nil {
			t.Fatalf("Begin(%q) error: %v", name, err)
		}
		c.add(t, 1)
		if err := c.log.End(); err != nil {
			t.Fatalf("End() error: %v", err)
		}
	}
	if _, err := c.log.Undo(); err != nil {
		t.Fatalf("Undo() error: %v", err)
	}
	if !c.log.CanRedo() {
		t.Fatal("redo stack empty after undo")
	}

	if err := c.log.Begin("third"); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	c.add(t, 10)
	if err := c.log.End(); err != nil {
		t.Fatalf("End() error: %v", err)
	}
	if c.log.CanRedo() {
		t.Error("redo stack survived a new commit")
	}
	if c.value != 11 {
		t.Errorf("value = %d, want 11", c.value)
	}
}

func TestStateErrors(t *testing.T) {
	l := NewLog()

	if err := l.Record(func() {}, func() {}); !errors.Is(err, ErrNoTransaction) {
		t.Errorf("Record() error = %v, want ErrNoTransaction", err)
	}
	if err := l.End(); !errors.Is(err, ErrNoTransaction) {
		t.Errorf("End() error = %v, want ErrNoTransaction", err)
	}
	if err := l.Cancel(); !errors.Is(err, ErrNoTransaction) {
		t.Errorf("Cancel() error = %v, want ErrNoTransaction", err)
	}
	if _, err := l.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo() error = %v, want ErrNothingToUndo", err)
	}
	if _, err := l.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo() error = %v, want ErrNothingToRedo", err)
	}

	if err := l.Begin("open"); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if err := l.Begin("nested"); !errors.Is(err, ErrNestedTransaction) {
		t.Errorf("nested Begin() error = %v, want ErrNestedTransaction", err)
	}
	if _, err := l.Undo(); !errors.Is(err, ErrNestedTransaction) {
		t.Errorf("Undo() with open transaction error = %v, want ErrNestedTransaction", err)
	}
	if l.UndoName() != "" || l.RedoName() != "" {
		t.Errorf("names = %q/%q, want empty", l.UndoName(), l.RedoName())
	}
}
