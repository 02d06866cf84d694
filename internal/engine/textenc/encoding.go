package textenc

import (
	"fmt"
	"strings"
)

// Encoding identifies the byte encoding of a text source.
type Encoding uint8

const (
	Binary Encoding = iota // arbitrary bytes
	ASCII                  // 7-bit text
	UTF8                   // UTF-8
	UCS2LE                 // 16-bit little-endian
	UCS2BE                 // 16-bit big-endian
	UCS4LE                 // 32-bit little-endian
	UCS4BE                 // 32-bit big-endian
)

// MaxCharLen is the largest number of bytes a single character occupies in
// any supported encoding, a UCS-2 surrogate pair or a UCS-4 unit pair.
const MaxCharLen = 8

var encodingNames = [...]string{
	Binary: "binary",
	ASCII:  "ascii",
	UTF8:   "utf-8",
	UCS2LE: "ucs-2le",
	UCS2BE: "ucs-2be",
	UCS4LE: "ucs-4le",
	UCS4BE: "ucs-4be",
}

// String returns the canonical name of the encoding.
func (e Encoding) String() string {
	if int(e) < len(encodingNames) {
		return encodingNames[e]
	}
	return fmt.Sprintf("encoding(%d)", uint8(e))
}

// Valid reports whether e is one of the defined encodings.
func (e Encoding) Valid() bool {
	return int(e) < len(encodingNames)
}

// UnitSize returns the size in bytes of one code unit. UTF-8 is variable
// width and reports 1.
func (e Encoding) UnitSize() int {
	switch e {
	case UCS2LE, UCS2BE:
		return 2
	case UCS4LE, UCS4BE:
		return 4
	default:
		return 1
	}
}

// Passthrough reports whether raw bytes in this encoding are already the
// canonical in-memory form and need no transcoding.
func (e Encoding) Passthrough() bool {
	return e == Binary || e == ASCII || e == UTF8
}

// ParseEncoding parses an encoding name. Common aliases such as "utf16le"
// and "utf-32be" are accepted.
func ParseEncoding(s string) (Encoding, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "_", "-")
	switch name {
	case "binary", "bin", "raw":
		return Binary, nil
	case "ascii", "us-ascii":
		return ASCII, nil
	case "utf-8", "utf8":
		return UTF8, nil
	case "ucs-2le", "ucs2le", "utf-16le", "utf16le":
		return UCS2LE, nil
	case "ucs-2be", "ucs2be", "utf-16be", "utf16be":
		return UCS2BE, nil
	case "ucs-4le", "ucs4le", "utf-32le", "utf32le":
		return UCS4LE, nil
	case "ucs-4be", "ucs4be", "utf-32be", "utf32be":
		return UCS4BE, nil
	}
	return Binary, fmt.Errorf("unknown text encoding %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (e Encoding) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("invalid text encoding %d", uint8(e))
	}
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Encoding) UnmarshalText(text []byte) error {
	v, err := ParseEncoding(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// LineEnding specifies the line terminator style of a source.
type LineEnding uint8

const (
	EndingNone LineEnding = iota // no terminator found
	EndingLF                     // Unix: \n
	EndingCRLF                   // DOS: \r\n
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case EndingLF:
		return "lf"
	case EndingCRLF:
		return "crlf"
	default:
		return "none"
	}
}

// Sequence returns the terminator characters. EndingNone yields "\n", the
// terminator used when new lines are introduced into such a source.
func (le LineEnding) Sequence() string {
	if le == EndingCRLF {
		return "\r\n"
	}
	return "\n"
}
