package buffer

import (
	"errors"
	"io"
)

// windowAlign is the boundary re-centered windows start on.
const windowAlign = 32

// window is a fixed-capacity view of source bytes [offset, offset+count)
// with a read cursor tail used during sequential decoding.
//
// Slices handed out by slice are only valid until the next fill or refill;
// gen is bumped on every reposition so callers can detect staleness.
type window struct {
	buf    []byte
	owned  bool
	offset int64
	count  int
	tail   int
	eof    bool
	gen    uint64
}

func (w *window) capacity() int {
	return len(w.buf)
}

// pos returns the source offset of the read cursor.
func (w *window) pos() int64 {
	return w.offset + int64(w.tail)
}

// avail returns the unread resident bytes.
func (w *window) avail() []byte {
	return w.buf[w.tail:w.count]
}

// end returns the source offset just past the resident bytes.
func (w *window) end() int64 {
	return w.offset + int64(w.count)
}

func (w *window) contains(off int64, n int) bool {
	return off >= w.offset && off+int64(n) <= w.end()
}

// slice returns the resident bytes for [off, off+n). The range must be
// resident.
func (w *window) slice(off int64, n int) []byte {
	start := int(off - w.offset)
	return w.buf[start : start+n]
}

// fill repositions the source at off and reads a full window.
func (w *window) fill(src io.ReadSeeker, off int64) error {
	w.gen++
	w.offset, w.count, w.tail, w.eof = off, 0, 0, false
	if _, err := src.Seek(off, io.SeekStart); err != nil {
		return ioErr(err)
	}
	n, err := readFull(src, w.buf)
	w.count = n
	if err == io.EOF {
		w.eof = true
		return nil
	}
	return err
}

// refill moves the unread bytes to the front of the window, advances the
// offset past the consumed bytes and reads more from the source.
func (w *window) refill(src io.Reader) error {
	if w.eof {
		return nil
	}
	w.gen++
	rest := copy(w.buf, w.buf[w.tail:w.count])
	w.offset += int64(w.tail)
	w.tail = 0
	w.count = rest

	n, err := readFull(src, w.buf[rest:])
	w.count += n
	if err == io.EOF {
		w.eof = true
		return nil
	}
	return err
}

// ensureResident makes [off, off+n) resident, re-centering the window
// around it when it is not. No I/O happens when it already is.
func (w *window) ensureResident(src io.ReadSeeker, off int64, n int) error {
	if n > w.capacity() {
		return ErrLineTooLarge
	}
	if w.contains(off, n) {
		return nil
	}
	margin := int64(w.capacity()-n) / 2
	start := off - margin
	if start < 0 {
		start = 0
	}
	start &^= windowAlign - 1
	if off+int64(n) > start+int64(w.capacity()) {
		start = off
	}
	if err := w.fill(src, start); err != nil {
		return err
	}
	if !w.contains(off, n) {
		return ioErr(io.ErrUnexpectedEOF)
	}
	return nil
}

// readFull reads until p is full or the source ends. A read returning no
// bytes and no error counts as the end of the source. io.EOF is returned
// when the source ended before p was filled.
func readFull(r io.Reader, p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := r.Read(p[total:])
		total += n
		if errors.Is(err, io.EOF) || (n == 0 && err == nil) {
			return total, io.EOF
		}
		if err != nil {
			return total, ioErr(err)
		}
	}
	return total, nil
}
