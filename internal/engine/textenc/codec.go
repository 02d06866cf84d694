package textenc

import (
	"encoding/binary"
	"errors"
	"unicode/utf16"
	"unicode/utf8"
)

// Errors returned by Codec.DecodeChar.
var (
	// ErrEndOfData indicates there are no bytes left to decode.
	ErrEndOfData = errors.New("end of data")

	// ErrTruncated indicates the remaining bytes are too few to form a
	// complete character, a dangling partial sequence at the end of data.
	ErrTruncated = errors.New("truncated character")
)

// Codec decodes and encodes characters for one source encoding.
// The zero value decodes Binary.
type Codec struct {
	Encoding Encoding

	// Narrow truncates characters decoded from UTF-8 and UCS-4 to 16 bits,
	// matching the historical 16-bit code unit. UCS-2 units already fit and
	// are unaffected. Narrow has no effect on encoding.
	Narrow bool
}

// DecodeChar decodes the character at the start of p and returns it with
// the number of bytes it occupies. When p holds only part of a character
// ErrTruncated is returned along with len(p), the count of dangling bytes.
// Malformed UTF-8 yields utf8.RuneError consuming one byte. An unpaired
// UCS-2 surrogate is returned as its own code unit.
func (c Codec) DecodeChar(p []byte) (rune, int, error) {
	if len(p) == 0 {
		return 0, 0, ErrEndOfData
	}
	switch c.Encoding {
	case UTF8:
		if !utf8.FullRune(p) {
			return 0, len(p), ErrTruncated
		}
		r, n := utf8.DecodeRune(p)
		return c.narrow(r), n, nil

	case UCS2LE, UCS2BE:
		if len(p) < 2 {
			return 0, len(p), ErrTruncated
		}
		order := c.order()
		r := rune(order.Uint16(p))
		if utf16.IsSurrogate(r) && len(p) >= 4 {
			if pair := utf16.DecodeRune(r, rune(order.Uint16(p[2:]))); pair != utf8.RuneError {
				return pair, 4, nil
			}
		}
		return r, 2, nil

	case UCS4LE, UCS4BE:
		if len(p) < 4 {
			return 0, len(p), ErrTruncated
		}
		return c.narrow(rune(c.order().Uint32(p))), 4, nil

	default:
		return rune(p[0]), 1, nil
	}
}

// AppendChar appends r encoded in the codec's encoding to dst. Binary,
// ASCII and UTF-8 targets receive UTF-8, with surrogate code units in
// their generalized three byte form.
func (c Codec) AppendChar(dst []byte, r rune) []byte {
	switch c.Encoding {
	case UCS2LE, UCS2BE:
		order := c.order()
		if r > 0xFFFF && r <= utf8.MaxRune {
			hi, lo := utf16.EncodeRune(r)
			dst = appendUint16(dst, order, uint16(hi))
			return appendUint16(dst, order, uint16(lo))
		}
		return appendUint16(dst, order, uint16(r))

	case UCS4LE, UCS4BE:
		var b [4]byte
		c.order().PutUint32(b[:], uint32(r))
		return append(dst, b[:]...)

	default:
		return appendCanonical(dst, r)
	}
}

// Decode appends the canonical UTF-8 form of raw to dst. A dangling
// partial character at the end of raw becomes U+FFFD. Unpaired surrogates
// are kept as generalized UTF-8 (ED A0 80 through ED BF BF) so that Encode
// restores the original units.
func (c Codec) Decode(dst, raw []byte) []byte {
	if c.Encoding.Passthrough() {
		return append(dst, raw...)
	}
	for len(raw) > 0 {
		r, n, err := c.DecodeChar(raw)
		if err != nil {
			dst = utf8.AppendRune(dst, utf8.RuneError)
			break
		}
		dst = appendCanonical(dst, r)
		raw = raw[n:]
	}
	return dst
}

// Encode appends canonical UTF-8 text, encoded in the codec's encoding, to
// dst. Passthrough encodings copy the text unchanged.
func (c Codec) Encode(dst, text []byte) []byte {
	if c.Encoding.Passthrough() {
		return append(dst, text...)
	}
	for len(text) > 0 {
		r, n := decodeCanonical(text)
		dst = c.AppendChar(dst, r)
		text = text[n:]
	}
	return dst
}

// appendCanonical appends r as UTF-8, writing surrogate code units in the
// three byte form utf8.AppendRune refuses.
func appendCanonical(dst []byte, r rune) []byte {
	if utf16.IsSurrogate(r) {
		return append(dst, 0xE0|byte(r>>12), 0x80|byte(r>>6)&0x3F, 0x80|byte(r)&0x3F)
	}
	return utf8.AppendRune(dst, r)
}

// decodeCanonical is utf8.DecodeRune extended to the generalized surrogate
// sequences written by appendCanonical.
func decodeCanonical(p []byte) (rune, int) {
	if len(p) >= 3 && p[0] == 0xED && p[1]&0xE0 == 0xA0 && p[2]&0xC0 == 0x80 {
		return rune(p[0]&0x0F)<<12 | rune(p[1]&0x3F)<<6 | rune(p[2]&0x3F), 3
	}
	return utf8.DecodeRune(p)
}

// DecodedCap returns a capacity sufficient to hold the canonical form of
// n raw bytes, 4 bytes of UTF-8 per source unit plus a terminator.
func DecodedCap(n int) int {
	return 4*n + 4
}

func (c Codec) narrow(r rune) rune {
	if c.Narrow {
		return rune(uint16(r))
	}
	return r
}

func (c Codec) order() binary.ByteOrder {
	if c.Encoding == UCS2BE || c.Encoding == UCS4BE {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func appendUint16(dst []byte, order binary.ByteOrder, v uint16) []byte {
	var b [2]byte
	order.PutUint16(b[:], v)
	return append(dst, b[:]...)
}
