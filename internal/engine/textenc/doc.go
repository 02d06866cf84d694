// Package textenc classifies raw text bytes and converts between the seven
// source encodings understood by the buffer engine and canonical UTF-8.
//
// # Encodings
//
// A source is one of:
//
//   - Binary: arbitrary bytes, passed through verbatim
//   - ASCII: 7-bit text, passed through verbatim
//   - UTF8: UTF-8, with or without a byte-order mark
//   - UCS2LE, UCS2BE: 16-bit code units, always introduced by a byte-order mark
//   - UCS4LE, UCS4BE: 32-bit code units, always introduced by a byte-order mark
//
// # Sniffing
//
// SniffEncoding looks for a byte-order mark first and falls back to a
// heuristic scan counting well formed UTF-8 multi-byte sequences against
// stray high-bit bytes and control characters. SniffLineEnding reports the
// style of the first line terminator and is applied to the whole source.
//
// # Code points
//
// Codec decodes one character at a time into a rune. By default the full
// code point is kept, so UCS-4 characters outside the Basic Multilingual
// Plane survive a round trip and UCS-2 surrogate pairs are joined. An
// unpaired UCS-2 surrogate is carried as generalized UTF-8, so every UCS-2
// source round-trips unit for unit. Setting Codec.Narrow reproduces the
// historical 16-bit code unit: characters decoded from UTF-8 and UCS-4 are
// truncated to their low 16 bits.
package textenc
