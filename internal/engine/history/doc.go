// Package history provides undo/redo for line edits made to a buffer.
//
// The history system uses the Command pattern to encapsulate edit operations,
// enabling them to be executed, undone, and redone. Key concepts:
//
// # Operations
//
// An Operation records one line-level change as the line records before
// and after it. Because a record removed from the buffer still points at
// its bytes in the source, undoing the deletion of an unedited line costs
// no text copy.
//
// # Commands
//
// Commands implement the Command interface with Execute and Undo methods.
// Built-in commands include:
//   - InsertLineCommand: Insert a new line
//   - DeleteLineCommand: Remove a line
//   - ReplaceLineCommand: Replace a line's text
//   - CompoundCommand: Group multiple commands as one undo unit
//
// # Undo Log
//
// A History is a single ordered log of applied commands with a position
// marker. Undo moves the marker back, Redo moves it forward, and recording
// a new command discards whatever lies past the marker:
//
//	history := NewHistory(1000) // Max 1000 undo entries
//
//	history.Execute(NewReplaceLineCommand(3, []byte("new text\n")), buf)
//	history.Undo(buf)
//	history.Redo(buf)
//
// # Command Grouping
//
// Multiple commands can be grouped as a single undo unit:
//
//	history.BeginGroup("Join lines")
//	// ... multiple edits ...
//	history.EndGroup()
//
// # Checkpoints
//
// A Checkpoint marks a position in history, such as the last save.
// AtCheckpoint reports whether the buffer has been returned to it.
package history
