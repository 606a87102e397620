// Package history provides undo/redo over document edits. Commands carry
// their own state; the stack only orders them and bounds memory.
package history

import (
	"fmt"

	"flowpaint/internal/field"
)

// DefaultLimit is how many undo steps are retained before the oldest is
// dropped.
const DefaultLimit = 100

// Command is one reversible document edit.
type Command interface {
	// Undo restores the document to its state before the edit.
	Undo(doc *field.Field) error
	// Redo reapplies the edit.
	Redo(doc *field.Field) error
}

// StrokeCommand captures a brush stroke as full before/after buffers. Strokes
// touch unpredictable regions (seamless mode mirrors stamps across edges), so
// whole snapshots are the safe unit at two channels per texel.
type StrokeCommand struct {
	Before []float32
	After  []float32
	W, H   int
}

// NewStroke builds a stroke command from Snapshot buffers taken at stroke
// begin and end. The slices are adopted, not copied.
func NewStroke(before, after []float32, w, h int) *StrokeCommand {
	return &StrokeCommand{Before: before, After: after, W: w, H: h}
}

func (c *StrokeCommand) Undo(doc *field.Field) error {
	if err := doc.Replace(c.Before, c.W, c.H); err != nil {
		return fmt.Errorf("history: undo stroke: %w", err)
	}
	return nil
}

func (c *StrokeCommand) Redo(doc *field.Field) error {
	if err := doc.Replace(c.After, c.W, c.H); err != nil {
		return fmt.Errorf("history: redo stroke: %w", err)
	}
	return nil
}

// Stack holds the undo and redo sequences. The zero value is ready to use
// with DefaultLimit.
type Stack struct {
	limit int
	undo  []Command
	redo  []Command
}

// NewStack returns a stack retaining at most limit undo steps; limit <= 0
// selects DefaultLimit.
func NewStack(limit int) *Stack {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Stack{limit: limit}
}

// Push records an already-applied edit. Any redoable edits are discarded, and
// the oldest undo step falls off once the limit is reached.
func (s *Stack) Push(cmd Command) {
	if s.limit <= 0 {
		s.limit = DefaultLimit
	}
	s.undo = append(s.undo, cmd)
	if len(s.undo) > s.limit {
		s.undo = s.undo[1:]
	}
	s.redo = s.redo[:0]
}

// Undo reverts the most recent edit and moves it to the redo stack. With
// nothing to undo it is a no-op. On failure both stacks are left unchanged.
func (s *Stack) Undo(doc *field.Field) error {
	if len(s.undo) == 0 {
		return nil
	}
	cmd := s.undo[len(s.undo)-1]
	if err := cmd.Undo(doc); err != nil {
		return err
	}
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, cmd)
	return nil
}

// Redo reapplies the most recently undone edit. With nothing to redo it is a
// no-op. On failure both stacks are left unchanged.
func (s *Stack) Redo(doc *field.Field) error {
	if len(s.redo) == 0 {
		return nil
	}
	cmd := s.redo[len(s.redo)-1]
	if err := cmd.Redo(doc); err != nil {
		return err
	}
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, cmd)
	return nil
}

func (s *Stack) CanUndo() bool { return len(s.undo) > 0 }
func (s *Stack) CanRedo() bool { return len(s.redo) > 0 }

// Clear drops both stacks. Called when a document is loaded or resized, since
// held snapshots no longer match the document dimensions.
func (s *Stack) Clear() {
	s.undo = nil
	s.redo = nil
}
