package buffer

import (
	"errors"
	"fmt"

	"github.com/dshills/bbuf/internal/engine/textenc"
)

// Errors returned by buffer operations.
var (
	// ErrAllocation indicates a scratch buffer could not be sized for a line.
	ErrAllocation = errors.New("scratch allocation failed")

	// ErrEndOfData indicates the source has no more bytes to decode.
	ErrEndOfData = textenc.ErrEndOfData

	// ErrTruncated indicates a partial character at the end of the source.
	ErrTruncated = textenc.ErrTruncated

	// ErrOutOfRange indicates a line number at or beyond the line count.
	ErrOutOfRange = errors.New("line out of range")

	// ErrLineTooLarge indicates a line does not fit in the window.
	ErrLineTooLarge = errors.New("line larger than window")

	// ErrShortWrite indicates a sink accepted fewer bytes than requested.
	ErrShortWrite = errors.New("short write")

	// ErrIO indicates a read, write or seek on the source or sink failed.
	ErrIO = errors.New("i/o error")

	// ErrIndexCorruption indicates the line list is missing a link.
	ErrIndexCorruption = errors.New("line index corrupt")

	// ErrSameSource indicates a write was aimed at the buffer's own source.
	ErrSameSource = errors.New("cannot write buffer to its own source")

	// ErrClosed indicates the buffer has been closed.
	ErrClosed = errors.New("buffer closed")
)

// OpError records a failed buffer operation and the line it concerned.
type OpError struct {
	Op   string // operation, such as "read" or "fetch"
	Line int    // line number, or -1 when not line specific
	Err  error
}

func (e *OpError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("%s line %d: %v", e.Op, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func opErr(op string, line int, err error) error {
	return &OpError{Op: op, Line: line, Err: err}
}

// ioErr tags err as ErrIO while keeping the cause matchable.
func ioErr(err error) error {
	if err == nil || errors.Is(err, ErrIO) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}
