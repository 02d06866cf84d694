package history

import (
	"fmt"
	"time"

	"github.com/dshills/bbuf/internal/engine/buffer"
)

// Operation represents a single undoable line edit.
// Old is nil for an insertion and New is nil for a deletion.
type Operation struct {
	Line int          // line number the edit applies to
	Old  *buffer.Line // record removed or replaced
	New  *buffer.Line // record inserted or substituted

	Timestamp time.Time // When the operation occurred
}

// NewInsertOperation creates an operation for an insertion.
func NewInsertOperation(n int, l buffer.Line) *Operation {
	return &Operation{Line: n, New: &l, Timestamp: time.Now()}
}

// NewDeleteOperation creates an operation for a deletion.
func NewDeleteOperation(n int, removed buffer.Line) *Operation {
	return &Operation{Line: n, Old: &removed, Timestamp: time.Now()}
}

// NewReplaceOperation creates an operation for a replacement.
func NewReplaceOperation(n int, old, repl buffer.Line) *Operation {
	return &Operation{Line: n, Old: &old, New: &repl, Timestamp: time.Now()}
}

// IsInsert returns true if this operation adds a line.
func (op *Operation) IsInsert() bool {
	return op.Old == nil && op.New != nil
}

// IsDelete returns true if this operation removes a line.
func (op *Operation) IsDelete() bool {
	return op.Old != nil && op.New == nil
}

// IsReplace returns true if this operation swaps one line for another.
func (op *Operation) IsReplace() bool {
	return op.Old != nil && op.New != nil
}

// BytesDelta returns the change in document length.
func (op *Operation) BytesDelta() int {
	delta := 0
	if op.New != nil {
		delta += op.New.Length
	}
	if op.Old != nil {
		delta -= op.Old.Length
	}
	return delta
}

// Invert returns an operation that undoes this one.
func (op *Operation) Invert() *Operation {
	return &Operation{
		Line:      op.Line,
		Old:       op.New,
		New:       op.Old,
		Timestamp: time.Now(),
	}
}

// Apply performs the operation on buf.
func (op *Operation) Apply(buf *buffer.Buffer) error {
	switch {
	case op.IsInsert():
		return buf.InsertRecord(op.Line, *op.New)
	case op.IsDelete():
		_, err := buf.DeleteLine(op.Line)
		return err
	case op.IsReplace():
		_, err := buf.ReplaceRecord(op.Line, *op.New)
		return err
	default:
		return fmt.Errorf("empty operation on line %d", op.Line)
	}
}

// OperationInfo provides read-only info about an operation.
// Used for listing undo/redo history.
type OperationInfo struct {
	Description string    // Human-readable description
	Timestamp   time.Time // When the operation occurred
}

// OperationList is a collection of operations that can be applied together.
type OperationList []*Operation

// Invert returns a list of inverse operations in reverse order.
func (ops OperationList) Invert() OperationList {
	result := make(OperationList, len(ops))
	for i, op := range ops {
		result[len(ops)-1-i] = op.Invert()
	}
	return result
}

// Apply applies every operation in order, stopping at the first failure.
func (ops OperationList) Apply(buf *buffer.Buffer) error {
	for _, op := range ops {
		if err := op.Apply(buf); err != nil {
			return err
		}
	}
	return nil
}

// TotalBytesDelta returns the total change in document length.
func (ops OperationList) TotalBytesDelta() int {
	total := 0
	for _, op := range ops {
		total += op.BytesDelta()
	}
	return total
}
