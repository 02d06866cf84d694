package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/bbuf/internal/engine/buffer"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries bounds a history created with a non-positive limit.
const DefaultMaxEntries = 1000

// record is one entry of the undo log.
type record struct {
	cmd Command
	at  time.Time
	seq uint64
}

func (r record) info() OperationInfo {
	return OperationInfo{Description: r.cmd.Description(), Timestamp: r.at}
}

// pendingGroup collects commands between BeginGroup and EndGroup.
type pendingGroup struct {
	name string
	cmds []Command
}

// History is the undo log of one buffer.
//
// Records are kept in a single slice in the order they were applied.
// log[:pos] are applied and can be undone, newest last; log[pos:] were
// undone and can be redone, the next redo first. Pushing a new record
// discards everything from pos onward.
type History struct {
	mu sync.Mutex

	log   []record
	pos   int
	group *pendingGroup
	max   int

	// seq numbers records so checkpoints survive trimming; floor is the
	// seq of the newest record dropped off the front of the log.
	seq   uint64
	floor uint64
}

// NewHistory creates a history keeping at most maxEntries undoable
// records.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{max: maxEntries}
}

// Execute applies cmd to buf and records it.
func (h *History) Execute(cmd Command, buf *buffer.Buffer) error {
	if err := cmd.Execute(buf); err != nil {
		return err
	}
	h.Push(cmd)
	return nil
}

// Push records a command that has already been applied. Any undone
// records are discarded.
func (h *History) Push(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.group != nil {
		h.group.cmds = append(h.group.cmds, cmd)
		return
	}
	h.appendLocked(cmd)
}

func (h *History) appendLocked(cmd Command) {
	h.seq++
	h.log = append(h.log[:h.pos], record{cmd: cmd, at: time.Now(), seq: h.seq})
	h.pos = len(h.log)
	h.trimLocked()
}

// trimLocked drops the oldest applied records beyond the limit.
func (h *History) trimLocked() {
	excess := h.pos - h.max
	if excess <= 0 {
		return
	}
	h.floor = h.log[excess-1].seq
	clear(h.log[:excess])
	h.log = h.log[excess:]
	h.pos -= excess
}

// Undo reverts the newest applied record. If the command fails the log
// is left unchanged.
func (h *History) Undo(buf *buffer.Buffer) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pos == 0 {
		return ErrNothingToUndo
	}
	if err := h.log[h.pos-1].cmd.Undo(buf); err != nil {
		return err
	}
	h.pos--
	return nil
}

// Redo re-applies the most recently undone record. If the command fails
// the log is left unchanged.
func (h *History) Redo(buf *buffer.Buffer) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pos == len(h.log) {
		return ErrNothingToRedo
	}
	if err := h.log[h.pos].cmd.Execute(buf); err != nil {
		return err
	}
	h.pos++
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return h.UndoCount() > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return h.RedoCount() > 0
}

// UndoCount returns the number of records that can be undone.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pos
}

// RedoCount returns the number of records that can be redone.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.log) - h.pos
}

// BeginGroup starts collecting pushed commands into one record named
// name. Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.group == nil {
		h.group = &pendingGroup{name: name}
	}
}

// EndGroup records the commands pushed since BeginGroup as a single
// CompoundCommand. An empty group records nothing.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	g := h.group
	h.group = nil
	if g == nil || len(g.cmds) == 0 {
		return
	}
	h.appendLocked(&CompoundCommand{Name: g.name, Commands: g.cmds})
}

// CancelGroup drops the pending group without recording it. Commands
// already applied stay applied.
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.group = nil
}

// IsGrouping returns true if currently in a command group.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.group != nil
}

// Clear empties the log. Records made before Clear refer to lines that
// may no longer exist, so no checkpoint taken before it matches again.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clear(h.log)
	h.log = h.log[:0]
	h.pos = 0
	h.group = nil
	h.floor = h.seq
}

// UndoInfo describes the undoable records, oldest first.
func (h *History) UndoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]OperationInfo, 0, h.pos)
	for _, r := range h.log[:h.pos] {
		out = append(out, r.info())
	}
	return out
}

// RedoInfo describes the redoable records, next redo last.
func (h *History) RedoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]OperationInfo, 0, len(h.log)-h.pos)
	for i := len(h.log) - 1; i >= h.pos; i-- {
		out = append(out, h.log[i].info())
	}
	return out
}

// PeekUndo describes the record Undo would revert.
func (h *History) PeekUndo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pos == 0 {
		return OperationInfo{}, false
	}
	return h.log[h.pos-1].info(), true
}

// PeekRedo describes the record Redo would re-apply.
func (h *History) PeekRedo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pos == len(h.log) {
		return OperationInfo{}, false
	}
	return h.log[h.pos].info(), true
}

// SetMaxEntries changes the limit, dropping the oldest records if the
// log holds more.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.max = max
	h.trimLocked()
}

// MaxEntries returns the maximum number of undoable records.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.max
}
