// Package engine provides the document facade for bbuf.
//
// An Engine is one file read into a line buffer, together with the undo
// history of edits made to it. It ties the sub-packages together:
//
//   - textenc: encoding detection and per-character transcoding
//   - buffer: the windowed line buffer and its read and write pipelines
//   - history: command-based undo/redo over buffer lines
//
// Files are reached through a vfs.VFS, so the same engine runs against the
// operating system or an in-memory file system in tests.
//
// # Basic Usage
//
//	e, err := engine.Open(vfs.NewOSFS(), "notes.txt")
//	if err != nil {
//		return err
//	}
//	defer e.Close()
//
//	first, _ := e.Line(0)
//	e.Replace(0, strings.ToUpper(first))
//	e.Insert(e.LineCount(), "appended")
//
//	// Convert to UTF-16 little-endian while saving.
//	e.Save(textenc.UCS2LE)
//
// # Lines
//
// Line returns decoded UTF-8 text without the line terminator; RawLine
// returns the bytes as they appear in the file. Lines that have not been
// edited are never copied into memory: the buffer re-reads them from the
// file through a fixed-size window when they are needed.
//
// # Saving
//
// Save and SaveAs write to a temporary file in the destination directory
// and rename it into place. The document is then read back from the new
// file, which clears the undo history and resets Modified.
//
// # External Changes
//
// Watch reports changes made to the file by other programs. A change is
// detected by comparing xxhash fingerprints of the file content, so
// touching the file or rewriting identical bytes is not reported.
//
// # Thread Safety
//
// All Engine methods are safe for concurrent use. Because reading a line
// may reposition the buffer's window, calls are serialized rather than
// shared between readers.
package engine
