// Package buffer presents an arbitrarily large byte source as a sequence of
// lines while keeping only a bounded window of raw bytes in memory.
//
// The buffer package provides:
//
//   - A fixed-capacity window over the source, re-centered on a miss
//   - A line index built by a single scan of the source
//   - Encoding and line-ending detection (see package textenc)
//   - Decoding of a line into canonical UTF-8 in a scratch "sandbox"
//   - Writing the lines back out in any supported encoding
//
// Basic usage:
//
//	f, _ := os.Open("big.log")
//	defer f.Close()
//
//	buf, _ := buffer.New(f, buffer.WithWindowSize(1<<20))
//	defer buf.Close()
//
//	if err := buf.Read(); err != nil {
//	    return err
//	}
//	text, _ := buf.DecodeLine(42) // UTF-8, valid until the next fetch
//
// Line Lookup:
//
// Lines are kept in a doubly linked list with a cursor at the last line
// selected. Selecting line n walks from the cursor, so scrolling and
// line-by-line editing cost O(1) per step while a random jump costs the
// distance from the cursor. There is no skip structure.
//
// Memory:
//
// The window never grows. A line longer than the window fails with
// ErrLineTooLarge while every other line stays reachable. Slices returned
// by LineContent, DecodeLine and EncodeLine alias internal storage and
// must not be kept across a later fetch.
//
// Thread Safety:
//
// A Buffer is owned by a single goroutine. Nothing is locked; callers
// sharing one must synchronize externally.
package buffer
