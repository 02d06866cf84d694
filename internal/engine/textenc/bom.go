package textenc

import "bytes"

// Byte order marks written ahead of encoded output.
var (
	bomUTF8   = []byte{0xEF, 0xBB, 0xBF}
	bomUCS2LE = []byte{0xFF, 0xFE}
	bomUCS2BE = []byte{0xFE, 0xFF}
	bomUCS4LE = []byte{0xFF, 0xFE, 0x00, 0x00}
	bomUCS4BE = []byte{0xFE, 0xFF, 0x00, 0x00}
)

// BOM returns the byte order mark emitted for enc. Binary and ASCII have
// none. The returned slice must not be modified.
func BOM(enc Encoding) []byte {
	switch enc {
	case UTF8:
		return bomUTF8
	case UCS2LE:
		return bomUCS2LE
	case UCS2BE:
		return bomUCS2BE
	case UCS4LE:
		return bomUCS4LE
	case UCS4BE:
		return bomUCS4BE
	default:
		return nil
	}
}

// BOMLength returns how many leading bytes of data are a byte order mark
// for enc and must be skipped before the first line. UCS sources are only
// ever detected from their mark so the full width is always skipped; a
// UTF-8 mark is optional and skipped only when present.
func BOMLength(enc Encoding, data []byte) int {
	switch enc {
	case UTF8:
		if bytes.HasPrefix(data, bomUTF8) {
			return len(bomUTF8)
		}
		return 0
	case UCS2LE, UCS2BE:
		return 2
	case UCS4LE, UCS4BE:
		return 4
	default:
		return 0
	}
}
