package buffer

import (
	"fmt"
	"io"
	"reflect"

	"github.com/dshills/bbuf/internal/engine/textenc"
)

// Write writes every line, in order, to dst encoded as enc, preceded by
// enc's byte order mark. The line index, the cursor and any editing state
// are left untouched. dst must not be the buffer's own source.
//
// When enc matches the source encoding, file lines are copied without
// decoding. Otherwise each line is decoded to UTF-8 and re-encoded.
func (b *Buffer) Write(dst io.Writer, enc textenc.Encoding) error {
	if b.closed {
		return ErrClosed
	}
	if !enc.Valid() {
		return opErr("write", -1, fmt.Errorf("unsupported encoding %d", enc))
	}
	if b.isSource(dst) {
		return opErr("write", -1, ErrSameSource)
	}
	if err := writeAll(dst, textenc.BOM(enc)); err != nil {
		return opErr("write", -1, err)
	}

	same := enc == b.codec.Encoding
	out := b.outCodec(enc)
	var written int64
	err := b.lines.each(func(n int, l *Line) error {
		data, err := b.render(l, out, same)
		if err != nil {
			return opErr("write", n, err)
		}
		if err := writeAll(dst, data); err != nil {
			return opErr("write", n, err)
		}
		written += int64(len(data))
		return nil
	})
	if err != nil {
		return err
	}

	b.log.Debug().
		Str("encoding", enc.String()).
		Bool("fast_path", same).
		Int("lines", b.lines.count).
		Int64("bytes", written).
		Msg("buffer written")
	return nil
}

// render produces l's bytes in the output encoding.
func (b *Buffer) render(l *Line, out textenc.Codec, same bool) ([]byte, error) {
	switch {
	case same && l.Location == InFile:
		return b.content(l)
	case same:
		return b.sandbox.encode(out, l.Data)
	default:
		text, err := b.decode(l)
		if err != nil {
			return nil, err
		}
		return b.outbox.encode(out, text)
	}
}

// isSource reports whether dst is the buffer's own source. Sources of a
// non-comparable type are never considered equal.
func (b *Buffer) isSource(dst io.Writer) bool {
	s, ok := dst.(Source)
	if !ok {
		return false
	}
	t := reflect.TypeOf(s)
	if t != reflect.TypeOf(b.src) || !t.Comparable() {
		return false
	}
	return s == b.src
}

// writeAll writes p in a single call; a short count is ErrShortWrite.
func writeAll(w io.Writer, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	n, err := w.Write(p)
	if err != nil {
		return ioErr(err)
	}
	if n != len(p) {
		return ErrShortWrite
	}
	return nil
}
