package buffer

import (
	"errors"
	"iter"
)

// errStop ends an iteration early.
var errStop = errors.New("stop")

// InsertLine inserts a copy of text as a new in-memory line before line n.
// n may equal LineCount to append. text must be canonical UTF-8 and carry
// its own line terminator if it should have one. The cursor is left on
// the new line.
func (b *Buffer) InsertLine(n int, text []byte) error {
	return b.InsertRecord(n, NewMemoryLine(text, true))
}

// InsertRecord inserts l before line n. In-memory records are owned by
// the buffer afterwards. It is used to restore lines removed by
// DeleteLine, including file lines that still refer to the source.
func (b *Buffer) InsertRecord(n int, l Line) error {
	if b.closed {
		return ErrClosed
	}
	if l.Location == InMemory {
		l.Length = len(l.Data)
	}
	if err := b.lines.insert(n, l); err != nil {
		return opErr("insert", n, err)
	}
	return nil
}

// DeleteLine removes line n and returns its record.
func (b *Buffer) DeleteLine(n int) (Line, error) {
	if b.closed {
		return Line{}, ErrClosed
	}
	l, err := b.lines.remove(n)
	if err != nil {
		return Line{}, opErr("delete", n, err)
	}
	return l, nil
}

// ReplaceLine replaces line n with a copy of text and returns the record
// it replaced.
func (b *Buffer) ReplaceLine(n int, text []byte) (Line, error) {
	return b.ReplaceRecord(n, NewMemoryLine(text, true))
}

// ReplaceRecord swaps line n's record for l, keeping its position in the
// list, and returns the previous record.
func (b *Buffer) ReplaceRecord(n int, l Line) (Line, error) {
	if b.closed {
		return Line{}, ErrClosed
	}
	ref, err := b.lines.seek(n)
	if err != nil {
		return Line{}, opErr("replace", n, err)
	}
	if l.Location == InMemory {
		l.Length = len(l.Data)
	}
	cur := b.lines.line(ref)
	old := *cur
	*cur = l
	return old, nil
}

// SetAttributes replaces line n's attribute mask.
func (b *Buffer) SetAttributes(n int, attr Attribute) error {
	if b.closed {
		return ErrClosed
	}
	ref, err := b.lines.seek(n)
	if err != nil {
		return opErr("attributes", n, err)
	}
	b.lines.line(ref).Attributes = attr
	return nil
}

// Lines iterates over the line records in order without moving the
// cursor. Use Each to learn about index corruption.
func (b *Buffer) Lines() iter.Seq2[int, Line] {
	return func(yield func(int, Line) bool) {
		_ = b.lines.each(func(n int, l *Line) error {
			if !yield(n, *l) {
				return errStop
			}
			return nil
		})
	}
}

// Each calls fn for every line in order, stopping at the first error.
// The cursor is not moved.
func (b *Buffer) Each(fn func(n int, l Line) error) error {
	if b.closed {
		return ErrClosed
	}
	err := b.lines.each(func(n int, l *Line) error {
		return fn(n, *l)
	})
	if errors.Is(err, ErrIndexCorruption) {
		return opErr("each", -1, err)
	}
	return err
}
