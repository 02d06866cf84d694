package buffer

import (
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/dshills/bbuf/internal/engine/textenc"
)

// Source is the byte stream behind a buffer. Seek is only ever called with
// io.SeekStart. *os.File satisfies it.
type Source interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
	Name() string
}

// Buffer represents the contents of one source as a list of lines.
type Buffer struct {
	name   string
	src    Source
	codec  textenc.Codec
	ending textenc.LineEnding

	lines index
	size  int64 // bytes scanned by the last Read
	read  bool

	windowSize int
	win        window
	sandbox    Scratch
	outbox     Scratch

	log    zerolog.Logger
	closed bool
}

// New creates a buffer backed by src. The source is not read until Read
// is called and is never closed by the buffer.
func New(src Source, opts ...Option) (*Buffer, error) {
	if src == nil {
		return nil, errors.New("buffer: nil source")
	}
	b := &Buffer{
		src:        src,
		lines:      newIndex(),
		windowSize: DefaultWindowSize,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.name == "" {
		b.name = src.Name()
	}
	if b.win.buf == nil {
		b.win.buf = make([]byte, b.windowSize)
		b.win.owned = true
	}
	b.log = b.log.With().Str("buffer", b.name).Logger()
	return b, nil
}

// Name returns the buffer's name.
func (b *Buffer) Name() string {
	return b.name
}

// Source returns the backing source.
func (b *Buffer) Source() Source {
	return b.src
}

// Encoding returns the encoding detected by the last Read.
func (b *Buffer) Encoding() textenc.Encoding {
	return b.codec.Encoding
}

// LineEnding returns the line-ending style detected by the last Read.
func (b *Buffer) LineEnding() textenc.LineEnding {
	return b.ending
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	return b.lines.count
}

// Size returns the number of source bytes scanned by the last Read.
func (b *Buffer) Size() int64 {
	return b.size
}

// Current returns the line number under the cursor.
func (b *Buffer) Current() int {
	return b.lines.curNum
}

// WindowSize returns the window capacity in bytes.
func (b *Buffer) WindowSize() int {
	return b.win.capacity()
}

// Generation returns a counter that changes whenever the window is
// repositioned, invalidating previously returned raw slices.
func (b *Buffer) Generation() uint64 {
	return b.win.gen
}

// Read scans the whole source and rebuilds the line index, discarding any
// previous lines. Encoding and line endings are sniffed from the first
// window of data. The cursor is left at line 0.
func (b *Buffer) Read() error {
	if b.closed {
		return ErrClosed
	}
	b.lines.reset()
	b.read = false
	b.size = 0

	if err := b.win.fill(b.src, 0); err != nil {
		return opErr("read", -1, err)
	}
	head := b.win.avail()
	b.codec.Encoding = textenc.SniffEncoding(head)
	skip := textenc.BOMLength(b.codec.Encoding, head)
	skip = min(skip, len(head))
	b.ending = textenc.SniffLineEnding(head[skip:], b.codec.Encoding)
	b.logSniff(head)
	b.win.tail = skip

	start := b.win.pos()
	for {
		r, err := b.nextChar()
		if err != nil {
			if errors.Is(err, ErrEndOfData) || errors.Is(err, ErrTruncated) {
				break
			}
			line := b.lines.count
			b.lines.reset()
			return opErr("read", line, err)
		}
		if r == '\n' {
			pos := b.win.pos()
			b.lines.append(NewFileLine(start, int(pos-start)))
			start = pos
		}
	}
	if pos := b.win.pos(); pos > start {
		b.lines.append(NewFileLine(start, int(pos-start)))
	}
	b.size = b.win.pos()
	b.read = true
	if b.lines.count > 0 {
		b.lines.cur, b.lines.curNum = b.lines.head, 0
	}

	b.log.Debug().
		Int("lines", b.lines.count).
		Int64("bytes", b.size).
		Msg("buffer read")
	return nil
}

// nextChar decodes one character at the window's read cursor, refilling
// the window first when fewer than textenc.MaxCharLen bytes remain. A
// dangling partial character is consumed before ErrTruncated is returned.
func (b *Buffer) nextChar() (rune, error) {
	if len(b.win.avail()) < textenc.MaxCharLen {
		if err := b.win.refill(b.src); err != nil {
			return 0, err
		}
	}
	r, n, err := b.codec.DecodeChar(b.win.avail())
	b.win.tail += n
	return r, err
}

func (b *Buffer) logSniff(head []byte) {
	enc := b.codec.Encoding
	if ev := b.log.Debug(); ev.Enabled() {
		stats := textenc.Analyze(head)
		ev.Str("encoding", enc.String()).
			Str("line_ending", b.ending.String()).
			Int("seq2", stats.Seq2).
			Int("seq3", stats.Seq3).
			Int("seq4", stats.Seq4).
			Int("bad", stats.Bad).
			Int("low_binary", stats.LowBinary).
			Msg("sniffed source")
	}
	if enc == textenc.Binary {
		b.log.Warn().Msg("source does not look like text, treating as binary")
	}
}

// Select moves the cursor to line n and returns a copy of its record.
func (b *Buffer) Select(n int) (Line, error) {
	if b.closed {
		return Line{}, ErrClosed
	}
	ref, err := b.lines.seek(n)
	if err != nil {
		if errors.Is(err, ErrIndexCorruption) {
			b.log.Error().Int("line", n).Int("cursor", b.lines.curNum).Msg("line index corrupt")
		}
		return Line{}, opErr("select", n, err)
	}
	return *b.lines.line(ref), nil
}

// LineContent returns line n's raw bytes in the source encoding, or its
// canonical text for an in-memory line. The slice aliases the window or
// the line and is only valid until the next fetch.
func (b *Buffer) LineContent(n int) ([]byte, error) {
	if b.closed {
		return nil, ErrClosed
	}
	ref, err := b.lines.seek(n)
	if err != nil {
		return nil, opErr("fetch", n, err)
	}
	data, err := b.content(b.lines.line(ref))
	if err != nil {
		return nil, opErr("fetch", n, err)
	}
	return data, nil
}

// content returns l's bytes, bringing them into the window if needed.
func (b *Buffer) content(l *Line) ([]byte, error) {
	if l.Location == InMemory {
		return l.Data, nil
	}
	if err := b.win.ensureResident(b.src, l.Offset, l.Length); err != nil {
		if errors.Is(err, ErrLineTooLarge) {
			b.log.Warn().
				Int64("offset", l.Offset).
				Int("length", l.Length).
				Int("window", b.win.capacity()).
				Msg("line does not fit in window")
		}
		return nil, err
	}
	b.win.tail = int(l.Offset - b.win.offset)
	return b.win.slice(l.Offset, l.Length), nil
}

// decode places the canonical text of l in the sandbox.
func (b *Buffer) decode(l *Line) ([]byte, error) {
	raw, err := b.content(l)
	if err != nil {
		return nil, err
	}
	c := b.codec
	if l.Location == InMemory {
		c = textenc.Codec{Encoding: textenc.UTF8}
	}
	return b.sandbox.decode(c, raw)
}

// DecodeLine returns line n as canonical UTF-8. The text lives in the
// sandbox and is only valid until the next decode.
func (b *Buffer) DecodeLine(n int) ([]byte, error) {
	if b.closed {
		return nil, ErrClosed
	}
	ref, err := b.lines.seek(n)
	if err != nil {
		return nil, opErr("decode", n, err)
	}
	text, err := b.decode(b.lines.line(ref))
	if err != nil {
		return nil, opErr("decode", n, err)
	}
	return text, nil
}

// EncodeLine returns line n encoded in enc. The bytes live in the output
// scratch buffer and are only valid until the next encode.
func (b *Buffer) EncodeLine(n int, enc textenc.Encoding) ([]byte, error) {
	text, err := b.DecodeLine(n)
	if err != nil {
		return nil, err
	}
	out, err := b.outbox.encode(b.outCodec(enc), text)
	if err != nil {
		return nil, opErr("encode", n, err)
	}
	return out, nil
}

func (b *Buffer) outCodec(enc textenc.Encoding) textenc.Codec {
	return textenc.Codec{Encoding: enc}
}

// Close releases the window, if owned, and the scratch buffers. The
// source is left open.
func (b *Buffer) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if b.win.owned {
		b.win.buf = nil
	}
	b.win.count, b.win.tail = 0, 0
	b.sandbox.Release()
	b.outbox.Release()
	b.lines.reset()
	return nil
}
