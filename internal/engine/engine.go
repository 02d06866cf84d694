package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/bbuf/internal/engine/buffer"
	"github.com/dshills/bbuf/internal/engine/history"
	"github.com/dshills/bbuf/internal/engine/textenc"
	"github.com/dshills/bbuf/internal/project/vfs"
	"github.com/dshills/bbuf/internal/project/watcher"
)

// Re-export commonly used types for convenience.
type (
	// Encoding identifies the character encoding of a source.
	Encoding = textenc.Encoding

	// LineEnding is the line terminator convention of a source.
	LineEnding = textenc.LineEnding

	// Command is an undoable edit command.
	Command = history.Command
)

// Info summarizes an open document.
type Info struct {
	ID          uuid.UUID
	Path        string
	Encoding    Encoding
	LineEnding  LineEnding
	Lines       int
	Size        int64
	Fingerprint uint64
	Modified    bool
}

// Change describes a modification of the document's file made outside
// the engine.
type Change struct {
	Path string
	Op   watcher.Op

	// Removed is set when the file could not be found.
	Removed bool

	// Fingerprint of the file's new content. Zero when Removed.
	Fingerprint uint64
}

// Engine is a document: one file read into a buffer, with undo history.
//
// All operations are safe for concurrent use. Reads move the buffer's
// window, so every call is serialized.
type Engine struct {
	mu sync.Mutex

	id   uuid.UUID
	fs   vfs.VFS
	path string

	file        vfs.File
	buf         *buffer.Buffer
	history     *history.History
	clean       history.Checkpoint
	fingerprint uint64

	// Configuration
	maxUndoEntries int
	readOnly       bool
	bufOpts        []buffer.Option
	watchDelay     time.Duration
	log            zerolog.Logger

	closed bool
}

// Open reads the file at path into a new engine.
func Open(fsys vfs.VFS, path string, opts ...Option) (*Engine, error) {
	e := &Engine{
		id:             uuid.New(),
		fs:             fsys,
		maxUndoEntries: DefaultMaxUndoEntries,
		watchDelay:     DefaultWatchDelay,
		log:            zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With().Str("component", "engine").Str("doc", e.id.String()).Logger()
	e.history = history.NewHistory(e.maxUndoEntries)

	if err := e.load(path); err != nil {
		return nil, err
	}
	e.log.Debug().
		Str("path", path).
		Stringer("encoding", e.buf.Encoding()).
		Int("lines", e.buf.LineCount()).
		Msg("opened")
	return e, nil
}

// load reads path into a fresh buffer and makes it current, clearing the
// undo history. On failure the current state is untouched.
func (e *Engine) load(path string) error {
	f, err := e.fs.OpenFile(path, vfs.OpenRead)
	if err != nil {
		return err
	}

	sum, err := fingerprint(f)
	if err != nil {
		f.Close()
		return err
	}

	opts := append([]buffer.Option{buffer.WithLogger(e.log)}, e.bufOpts...)
	buf, err := buffer.New(f, opts...)
	if err != nil {
		f.Close()
		return err
	}
	if err := buf.Read(); err != nil {
		buf.Close()
		f.Close()
		return err
	}

	if e.buf != nil {
		e.release()
	}
	e.file, e.buf, e.path, e.fingerprint = f, buf, path, sum
	e.history.Clear()
	e.clean = e.history.CreateCheckpoint()
	return nil
}

// release closes the current buffer and its file.
func (e *Engine) release() error {
	return errors.Join(e.buf.Close(), e.file.Close())
}

func fingerprint(r io.Reader) (uint64, error) {
	d := xxhash.New()
	if _, err := io.Copy(d, r); err != nil {
		return 0, err
	}
	return d.Sum64(), nil
}

// currentFingerprint hashes the file as it is now.
func (e *Engine) currentFingerprint() (uint64, error) {
	f, err := e.fs.OpenFile(e.path, vfs.OpenRead)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return fingerprint(f)
}

func (e *Engine) checkOpen() error {
	if e.closed {
		return ErrClosed
	}
	return nil
}

func (e *Engine) checkWritable() error {
	if e.closed {
		return ErrClosed
	}
	if e.readOnly {
		return ErrReadOnly
	}
	return nil
}

// ID returns the engine's unique identifier.
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// Path returns the path the document was last read from.
func (e *Engine) Path() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path
}

// Encoding returns the encoding detected when the document was read.
func (e *Engine) Encoding() Encoding {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Encoding()
}

// LineEnding returns the line ending detected when the document was read.
func (e *Engine) LineEnding() LineEnding {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.LineEnding()
}

// LineCount returns the number of lines.
func (e *Engine) LineCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.LineCount()
}

// Fingerprint returns the xxhash of the file content last read or saved.
func (e *Engine) Fingerprint() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fingerprint
}

// Modified reports whether the document differs from the file, that is,
// whether edits were made that have not all been undone.
func (e *Engine) Modified() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.history.AtCheckpoint(e.clean)
}

// Info returns a summary of the document.
func (e *Engine) Info() Info {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Info{
		ID:          e.id,
		Path:        e.path,
		Encoding:    e.buf.Encoding(),
		LineEnding:  e.buf.LineEnding(),
		Lines:       e.buf.LineCount(),
		Size:        e.buf.Size(),
		Fingerprint: e.fingerprint,
		Modified:    !e.history.AtCheckpoint(e.clean),
	}
}

// Line returns line n decoded to UTF-8, without its terminator.
func (e *Engine) Line(n int) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return "", err
	}
	text, err := e.buf.DecodeLine(n)
	if err != nil {
		return "", err
	}
	return string(text[:len(text)-len(terminator(text))]), nil
}

// RawLine returns line n in the source encoding, terminator included.
func (e *Engine) RawLine(n int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	raw, err := e.buf.LineContent(n)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(raw), nil
}

// terminator returns the line terminator text ends with, if any.
func terminator(text []byte) string {
	switch {
	case bytes.HasSuffix(text, []byte("\r\n")):
		return "\r\n"
	case bytes.HasSuffix(text, []byte("\n")):
		return "\n"
	}
	return ""
}

// Insert inserts text as a new line before line n, terminated with the
// document's line ending. n may equal LineCount to append; a final line
// without a terminator is given one in the same undo step.
func (e *Engine) Insert(n int, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(); err != nil {
		return err
	}
	eol := e.buf.LineEnding().Sequence()
	var cmd Command = history.NewInsertLineCommand(n, []byte(text+eol))

	if count := e.buf.LineCount(); n > 0 && n == count {
		last, err := e.buf.DecodeLine(n - 1)
		if err != nil {
			return err
		}
		if terminator(last) == "" {
			fixed := append(bytes.Clone(last), eol...)
			cmd = history.NewCompoundCommand("Append line",
				history.NewReplaceLineCommand(n-1, fixed), cmd)
		}
	}
	return e.history.Execute(cmd, e.buf)
}

// Delete removes line n.
func (e *Engine) Delete(n int) error {
	return e.Execute(history.NewDeleteLineCommand(n))
}

// Replace replaces the content of line n, keeping its terminator.
func (e *Engine) Replace(n int, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(); err != nil {
		return err
	}
	old, err := e.buf.DecodeLine(n)
	if err != nil {
		return err
	}
	cmd := history.NewReplaceLineCommand(n, []byte(text+terminator(old)))
	return e.history.Execute(cmd, e.buf)
}

// Execute runs a command and records it for undo. Commands see raw
// lines, terminators included.
func (e *Engine) Execute(cmd Command) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(); err != nil {
		return err
	}
	return e.history.Execute(cmd, e.buf)
}

// Undo reverts the last edit.
func (e *Engine) Undo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return err
	}
	return e.history.Undo(e.buf)
}

// Redo reapplies the last undone edit.
func (e *Engine) Redo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return err
	}
	return e.history.Redo(e.buf)
}

// CanUndo returns true if there are edits to undo.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanUndo()
}

// CanRedo returns true if there are edits to redo.
func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanRedo()
}

// BeginUndoGroup starts grouping edits into a single undo step.
func (e *Engine) BeginUndoGroup(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history.BeginGroup(name)
}

// EndUndoGroup ends the current undo group.
func (e *Engine) EndUndoGroup() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history.EndGroup()
}

// CancelUndoGroup ends the current group without recording it.
// Edits already made stay applied.
func (e *Engine) CancelUndoGroup() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history.CancelGroup()
}

// Export writes the document to w in encoding enc.
func (e *Engine) Export(w io.Writer, enc Encoding) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return err
	}
	return e.buf.Write(w, enc)
}

// Save writes the document back to its file in encoding enc.
func (e *Engine) Save(enc Encoding) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saveLocked(e.path, enc)
}

// SaveAs writes the document to path in encoding enc. The document is
// then read back from path, which becomes its file.
func (e *Engine) SaveAs(path string, enc Encoding) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saveLocked(path, enc)
}

// saveLocked writes to a temporary file next to path and renames it over
// path, so readers never see a partial file. The buffer's file lines
// still point into the old source, so the result is read back.
func (e *Engine) saveLocked(path string, enc Encoding) error {
	if err := e.checkWritable(); err != nil {
		return err
	}

	tmp, err := e.fs.TempFile(e.fs.Dir(path), filepath.Base(path))
	if err != nil {
		return err
	}
	name := tmp.Name()

	if err := e.buf.Write(tmp, enc); err != nil {
		tmp.Close()
		e.fs.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		e.fs.Remove(name)
		return err
	}
	if err := e.fs.Rename(name, path); err != nil {
		e.fs.Remove(name)
		return err
	}

	if err := e.load(path); err != nil {
		return err
	}
	e.log.Info().
		Str("path", path).
		Stringer("encoding", enc).
		Int("lines", e.buf.LineCount()).
		Msg("saved")
	return nil
}

// Reload discards all edits and reads the file again.
func (e *Engine) Reload() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return err
	}
	return e.load(e.path)
}

// Watch calls fn each time the document's file is changed by someone
// else, until ctx is cancelled. Saves made through the engine are not
// reported, and neither is a change back to the content last read.
// The file must be on the operating system's file system.
func (e *Engine) Watch(ctx context.Context, fn func(Change)) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	path, delay := e.path, e.watchDelay
	e.mu.Unlock()

	w, err := watcher.NewFSNotifyWatcher(
		watcher.WithDebounceDelay(delay),
		watcher.WithEventFilter(watcher.SkipChmod),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(path); err != nil {
		return err
	}

	var last watchState
	d := watcher.NewEventDispatcher()
	d.OnEvent(func(ev watcher.Event) {
		if ch, ok := e.external(ev, &last); ok {
			fn(ch)
		}
	})
	d.OnError(func(err error) {
		e.log.Warn().Err(err).Str("path", path).Msg("watch error")
	})

	e.log.Debug().Str("path", path).Msg("watching")
	d.Run(ctx, w)

	st := w.Stats()
	e.log.Debug().
		Str("path", path).
		Int64("delivered", st.Delivered).
		Int64("filtered", st.Filtered).
		Int64("dropped", st.Dropped).
		Int64("errors", st.Errors).
		AnErr("last_error", st.LastError).
		Dur("elapsed", time.Since(st.Since)).
		Msg("watch stopped")
	return nil
}

// watchState remembers the last change reported so repeated events for
// the same content are reported once.
type watchState struct {
	reported bool
	removed  bool
	sum      uint64
}

// external decides whether ev changed the file relative to the content
// the engine last read.
func (e *Engine) external(ev watcher.Event, last *watchState) (Change, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return Change{}, false
	}

	ch := Change{Path: e.path, Op: ev.Op}
	sum, err := e.currentFingerprint()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		ch.Removed = true
	case err != nil:
		e.log.Warn().Err(err).Str("path", e.path).Msg("fingerprint failed")
		return Change{}, false
	case sum == e.fingerprint:
		last.reported = false
		return Change{}, false
	default:
		ch.Fingerprint = sum
	}

	if last.reported && last.removed == ch.Removed && last.sum == ch.Fingerprint {
		return Change{}, false
	}
	*last = watchState{reported: true, removed: ch.Removed, sum: ch.Fingerprint}
	e.log.Debug().Str("path", e.path).Stringer("op", ev.Op).Bool("removed", ch.Removed).Msg("external change")
	return ch, true
}

// Close releases the buffer and closes the file. It is safe to call more
// than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.history.Clear()
	return e.release()
}
