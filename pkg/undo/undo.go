// Package undo provides a transactional command log. Edits group their
// state changes into named transactions; a committed transaction undoes
// and redoes as one unit, and a cancelled transaction rolls the state back
// immediately.
package undo

import "errors"

var (
	// ErrNestedTransaction reports a Begin while a transaction is open.
	ErrNestedTransaction = errors.New("transaction already open")

	// ErrNoTransaction reports a Record, End or Cancel without an open
	// transaction.
	ErrNoTransaction = errors.New("no open transaction")

	// ErrNothingToUndo reports an empty undo stack.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo reports an empty redo stack.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Restorer applies one direction of a recorded state change.
type Restorer func()

type record struct {
	undo Restorer
	redo Restorer
}

type transaction struct {
	name    string
	records []record
}

// Log is a linear undo/redo history of committed transactions. A new
// commit discards the redo stack. Log is not safe for concurrent use.
type Log struct {
	open *transaction
	done []transaction
	redo []transaction
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Begin opens a named transaction. Transactions do not nest.
func (l *Log) Begin(name string) error {
	if l.open != nil {
		return ErrNestedTransaction
	}
	l.open = &transaction{name: name}
	return nil
}

// Record adds a state change to the open transaction. The change itself
// has already been applied by the caller; undo and redo replay it in
// either direction.
func (l *Log) Record(undo, redo Restorer) error {
	if l.open == nil {
		return ErrNoTransaction
	}
	l.open.records = append(l.open.records, record{undo: undo, redo: redo})
	return nil
}

// End commits the open transaction. A transaction that recorded nothing
// is discarded rather than committed, so refused edits leave no history
// entry.
func (l *Log) End() error {
	if l.open == nil {
		return ErrNoTransaction
	}
	tx := *l.open
	l.open = nil
	if len(tx.records) == 0 {
		return nil
	}
	l.done = append(l.done, tx)
	l.redo = nil
	return nil
}

// Cancel rolls back the open transaction, running its undo restorers in
// reverse order, and discards it.
func (l *Log) Cancel() error {
	if l.open == nil {
		return ErrNoTransaction
	}
	tx := l.open
	l.open = nil
	for i := len(tx.records) - 1; i >= 0; i-- {
		tx.records[i].undo()
	}
	return nil
}

// Undo rolls back the most recent committed transaction and returns its
// name. Fails while a transaction is open.
func (l *Log) Undo() (string, error) {
	if l.open != nil {
		return "", ErrNestedTransaction
	}
	if len(l.done) == 0 {
		return "", ErrNothingToUndo
	}
	tx := l.done[len(l.done)-1]
	l.done = l.done[:len(l.done)-1]
	for i := len(tx.records) - 1; i >= 0; i-- {
		tx.records[i].undo()
	}
	l.redo = append(l.redo, tx)
	return tx.name, nil
}

// Redo reapplies the most recently undone transaction and returns its
// name.
func (l *Log) Redo() (string, error) {
	if l.open != nil {
		return "", ErrNestedTransaction
	}
	if len(l.redo) == 0 {
		return "", ErrNothingToRedo
	}
	tx := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	for i := range tx.records {
		tx.records[i].redo()
	}
	l.done = append(l.done, tx)
	return tx.name, nil
}

// CanUndo reports whether the undo stack is non-empty.
func (l *Log) CanUndo() bool { return len(l.done) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (l *Log) CanRedo() bool { return len(l.redo) > 0 }

// UndoName returns the name of the transaction Undo would roll back, or
// "" when there is none.
func (l *Log) UndoName() string {
	if len(l.done) == 0 {
		return ""
	}
	return l.done[len(l.done)-1].name
}

// RedoName returns the name of the transaction Redo would reapply, or ""
// when there is none.
func (l *Log) RedoName() string {
	if len(l.redo) == 0 {
		return ""
	}
	return l.redo[len(l.redo)-1].name
}
