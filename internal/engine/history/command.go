package history

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dshills/bbuf/internal/engine/buffer"
)

// Command represents a composable edit action that can be executed and undone.
type Command interface {
	// Execute performs the command and returns an error if it fails.
	Execute(buf *buffer.Buffer) error

	// Undo reverses the command and returns an error if it fails.
	Undo(buf *buffer.Buffer) error

	// Description returns a human-readable description of the command.
	Description() string
}

// InsertLineCommand inserts a new line before Line.
type InsertLineCommand struct {
	Line int
	Text []byte
	op   *Operation
}

// NewInsertLineCommand creates a new insert command. text is copied.
func NewInsertLineCommand(n int, text []byte) *InsertLineCommand {
	return &InsertLineCommand{Line: n, Text: append([]byte(nil), text...)}
}

// Execute inserts the line.
func (c *InsertLineCommand) Execute(buf *buffer.Buffer) error {
	c.op = nil
	l := buffer.NewMemoryLine(c.Text, true)
	if err := buf.InsertRecord(c.Line, l); err != nil {
		return fmt.Errorf("insert line %d: %w", c.Line, err)
	}
	c.op = NewInsertOperation(c.Line, l)
	return nil
}

// Undo removes the inserted line.
func (c *InsertLineCommand) Undo(buf *buffer.Buffer) error {
	if c.op == nil {
		return nil
	}
	if err := c.op.Invert().Apply(buf); err != nil {
		return fmt.Errorf("undo insert: %w", err)
	}
	return nil
}

// Description returns a human-readable description.
func (c *InsertLineCommand) Description() string {
	return fmt.Sprintf("Insert line %d%s", c.Line+1, preview(c.Text))
}

// DeleteLineCommand removes Line.
type DeleteLineCommand struct {
	Line int
	op   *Operation
}

// NewDeleteLineCommand creates a new delete command.
func NewDeleteLineCommand(n int) *DeleteLineCommand {
	return &DeleteLineCommand{Line: n}
}

// Execute deletes the line, keeping its record for undo.
func (c *DeleteLineCommand) Execute(buf *buffer.Buffer) error {
	c.op = nil
	removed, err := buf.DeleteLine(c.Line)
	if err != nil {
		return fmt.Errorf("delete line %d: %w", c.Line, err)
	}
	c.op = NewDeleteOperation(c.Line, removed)
	return nil
}

// Undo restores the deleted record. File lines point back into the
// source, so only lines that were edited in memory cost memory here.
func (c *DeleteLineCommand) Undo(buf *buffer.Buffer) error {
	if c.op == nil {
		return nil
	}
	if err := c.op.Invert().Apply(buf); err != nil {
		return fmt.Errorf("undo delete: %w", err)
	}
	return nil
}

// Description returns a human-readable description.
func (c *DeleteLineCommand) Description() string {
	return fmt.Sprintf("Delete line %d", c.Line+1)
}

// ReplaceLineCommand replaces the text of Line.
type ReplaceLineCommand struct {
	Line int
	Text []byte
	op   *Operation
}

// NewReplaceLineCommand creates a new replace command. text is copied.
func NewReplaceLineCommand(n int, text []byte) *ReplaceLineCommand {
	return &ReplaceLineCommand{Line: n, Text: append([]byte(nil), text...)}
}

// Execute replaces the line.
func (c *ReplaceLineCommand) Execute(buf *buffer.Buffer) error {
	c.op = nil
	l := buffer.NewMemoryLine(c.Text, true)
	old, err := buf.ReplaceRecord(c.Line, l)
	if err != nil {
		return fmt.Errorf("replace line %d: %w", c.Line, err)
	}
	c.op = NewReplaceOperation(c.Line, old, l)
	return nil
}

// Undo puts the previous record back.
func (c *ReplaceLineCommand) Undo(buf *buffer.Buffer) error {
	if c.op == nil {
		return nil
	}
	if err := c.op.Invert().Apply(buf); err != nil {
		return fmt.Errorf("undo replace: %w", err)
	}
	return nil
}

// Description returns a human-readable description.
func (c *ReplaceLineCommand) Description() string {
	return fmt.Sprintf("Replace line %d%s", c.Line+1, preview(c.Text))
}

// preview quotes short line text for descriptions.
func preview(text []byte) string {
	s := strings.TrimRight(string(text), "\r\n")
	if s == "" || utf8.RuneCountInString(s) > 20 {
		return ""
	}
	return fmt.Sprintf(" %q", s)
}

// CompoundCommand groups multiple commands as one undo unit.
type CompoundCommand struct {
	Name     string
	Commands []Command
}

// NewCompoundCommand creates a new compound command.
func NewCompoundCommand(name string, commands ...Command) *CompoundCommand {
	return &CompoundCommand{
		Name:     name,
		Commands: commands,
	}
}

// Execute runs all commands in order.
func (c *CompoundCommand) Execute(buf *buffer.Buffer) error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(buf); err != nil {
			// On error, try to undo what we've done
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Undo(buf)
			}
			return fmt.Errorf("compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Undo reverses all commands in reverse order.
func (c *CompoundCommand) Undo(buf *buffer.Buffer) error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(buf); err != nil {
			return fmt.Errorf("undo compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Description returns the compound command's name.
func (c *CompoundCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(c.Commands))
}

// Add adds a command to the compound command.
func (c *CompoundCommand) Add(cmd Command) {
	c.Commands = append(c.Commands, cmd)
}

// IsEmpty returns true if the compound command has no commands.
func (c *CompoundCommand) IsEmpty() bool {
	return len(c.Commands) == 0
}
