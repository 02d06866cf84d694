package textenc

// sniffTail is the number of trailing bytes excluded from the heuristic
// scan so a sequence leader near the end can always look ahead.
const sniffTail = 6

// Evidence holds the counters gathered by the heuristic UTF-8 scan.
type Evidence struct {
	Seq2      int // valid 2-byte sequences
	Seq3      int // valid 3-byte sequences
	Seq4      int // valid 4-byte sequences
	Bad       int // high-bit bytes not part of a valid sequence
	LowBinary int // control bytes other than CR, LF and TAB
}

// Sequences returns the total number of valid multi-byte sequences.
func (ev Evidence) Sequences() int {
	return ev.Seq2 + ev.Seq3 + ev.Seq4
}

// Classify turns the counters into an encoding.
func (ev Evidence) Classify() Encoding {
	n := ev.Sequences()
	if n > 0 && n >= ev.Bad && ev.LowBinary == 0 {
		return UTF8
	}
	if ev.LowBinary > 0 || ev.Bad > 0 {
		return Binary
	}
	return ASCII
}

// Analyze scans all but the last few bytes of data counting UTF-8
// sequences, stray high-bit bytes and control bytes.
func Analyze(data []byte) Evidence {
	var ev Evidence
	for i := 0; i < len(data)-sniffTail; i++ {
		b := data[i]
		if b&0x80 == 0 {
			if (b < 0x20 || b == 0x7F) && b != '\r' && b != '\n' && b != '\t' {
				ev.LowBinary++
			}
			continue
		}
		n := sequenceLen(data[i:])
		switch n {
		case 2:
			ev.Seq2++
		case 3:
			ev.Seq3++
		case 4:
			ev.Seq4++
		default:
			ev.Bad++
			continue
		}
		i += n - 1
	}
	return ev
}

// sequenceLen returns the length of the well formed multi-byte sequence
// starting p, or 0. The caller guarantees at least 4 bytes are readable.
func sequenceLen(p []byte) int {
	var n int
	switch {
	case p[0]&0xE0 == 0xC0:
		n = 2
	case p[0]&0xF0 == 0xE0:
		n = 3
	case p[0]&0xF8 == 0xF0:
		n = 4
	default:
		return 0
	}
	for k := 1; k < n; k++ {
		if p[k]&0xC0 != 0x80 {
			return 0
		}
	}
	return n
}

// SniffEncoding determines the text encoding of a source from its first
// bytes. Byte order marks take priority over the heuristic scan.
func SniffEncoding(data []byte) Encoding {
	if len(data) < 2 {
		return ASCII
	}
	has := func(i int, b ...byte) bool {
		if len(data) < i+len(b) {
			return false
		}
		for k, v := range b {
			if data[i+k] != v {
				return false
			}
		}
		return true
	}
	switch {
	case has(0, 0xFE, 0xFF):
		if has(2, 0x00, 0x00) {
			return UCS4BE
		}
		return UCS2BE
	case has(0, 0xFF, 0xFE):
		if has(2, 0x00, 0x00) {
			return UCS4LE
		}
		return UCS2LE
	case has(0, 0x00, 0x00):
		if has(2, 0xFE, 0xFF) {
			return UCS4BE
		}
		return Binary
	case data[0] == 0xEF:
		if has(1, 0xBB, 0xBF) {
			return UTF8
		}
		return Binary
	}
	return Analyze(data).Classify()
}

// SniffLineEnding reports the style of the first line terminator in data,
// which is decoded in enc so wide encodings are compared by character
// rather than by byte. Any byte order mark must already be skipped.
func SniffLineEnding(data []byte, enc Encoding) LineEnding {
	c := Codec{Encoding: enc}
	var prev rune = -1
	for len(data) > 0 {
		r, n, err := c.DecodeChar(data)
		if err != nil {
			break
		}
		if r == '\n' {
			if prev == '\r' {
				return EndingCRLF
			}
			return EndingLF
		}
		prev = r
		data = data[n:]
	}
	return EndingNone
}

// Sniff determines both the encoding and the line-ending style of data.
func Sniff(data []byte) (Encoding, LineEnding) {
	enc := SniffEncoding(data)
	return enc, SniffLineEnding(data[BOMLength(enc, data):], enc)
}
