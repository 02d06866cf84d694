package buffer

import (
	"math"

	"github.com/dshills/bbuf/internal/engine/textenc"
)

// scratchAlign is the boundary scratch capacities are rounded up to.
const scratchAlign = 32

// Scratch is a growable transcoding buffer holding one line at a time.
// Its capacity only grows; growing discards the previous contents. The
// valid length is kept separately from the capacity and the text is
// always followed by a zero byte.
type Scratch struct {
	buf []byte
	n   int
	max int // capacity ceiling, 0 for none
}

// Grow ensures capacity for size bytes, rounded up to a 32-byte boundary.
func (s *Scratch) Grow(size int) error {
	if size < 0 || size > math.MaxInt-scratchAlign {
		return ErrAllocation
	}
	want := (size + scratchAlign - 1) &^ (scratchAlign - 1)
	if s.max > 0 && want > s.max {
		return ErrAllocation
	}
	if want > len(s.buf) || s.buf == nil {
		s.buf = make([]byte, want)
	}
	s.n = 0
	return nil
}

// Bytes returns the valid contents.
func (s *Scratch) Bytes() []byte {
	return s.buf[:s.n]
}

// Len returns the number of valid bytes.
func (s *Scratch) Len() int {
	return s.n
}

// Cap returns the allocated capacity.
func (s *Scratch) Cap() int {
	return len(s.buf)
}

// Release frees the backing storage.
func (s *Scratch) Release() {
	s.buf = nil
	s.n = 0
}

// decode fills the scratch with the canonical form of raw.
func (s *Scratch) decode(c textenc.Codec, raw []byte) ([]byte, error) {
	return s.transcode(raw, func(dst []byte) []byte { return c.Decode(dst, raw) })
}

// encode fills the scratch with canonical text encoded by c.
func (s *Scratch) encode(c textenc.Codec, text []byte) ([]byte, error) {
	return s.transcode(text, func(dst []byte) []byte { return c.Encode(dst, text) })
}

func (s *Scratch) transcode(in []byte, fn func(dst []byte) []byte) ([]byte, error) {
	if len(in) > (math.MaxInt-4)/4 {
		return nil, ErrAllocation
	}
	if err := s.Grow(textenc.DecodedCap(len(in))); err != nil {
		return nil, err
	}
	out := fn(s.buf[:0])
	if len(out) >= len(s.buf) {
		s.buf = append(out, 0)
		s.buf = s.buf[:cap(s.buf)]
	}
	s.n = len(out)
	s.buf[s.n] = 0
	return s.buf[:s.n], nil
}
