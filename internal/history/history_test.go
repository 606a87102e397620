package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowpaint/internal/field"
)

func assertUniform(t *testing.T, doc *field.Field, fx, fy float32) {
	t.Helper()
	gx, gy := doc.At(0, 0)
	assert.InDelta(t, fx, gx, 1e-6)
	assert.InDelta(t, fy, gy, 1e-6)
}

// fillStroke mutates doc to a uniform value and returns the command that
// round-trips the edit.
func fillStroke(doc *field.Field, fx, fy float32) *StrokeCommand {
	before := doc.Snapshot()
	doc.Fill(fx, fy)
	return NewStroke(before, doc.Snapshot(), doc.Width(), doc.Height())
}

func TestStrokeUndoRedo(t *testing.T) {
	doc := field.New(4, 4)
	s := NewStack(0)

	s.Push(fillStroke(doc, 0.8, 0.2))
	assertUniform(t, doc, 0.8, 0.2)

	require.NoError(t, s.Undo(doc))
	assertUniform(t, doc, field.Neutral, field.Neutral)

	require.NoError(t, s.Redo(doc))
	assertUniform(t, doc, 0.8, 0.2)
}

func TestUndoRedoEmptyAreNoops(t *testing.T) {
	doc := field.New(2, 2)
	s := NewStack(0)
	require.NoError(t, s.Undo(doc))
	require.NoError(t, s.Redo(doc))
	assertUniform(t, doc, field.Neutral, field.Neutral)
}

func TestPushClearsRedo(t *testing.T) {
	doc := field.New(2, 2)
	s := NewStack(0)

	s.Push(fillStroke(doc, 0.6, 0.6))
	require.NoError(t, s.Undo(doc))
	assert.True(t, s.CanRedo())

	s.Push(fillStroke(doc, 0.1, 0.9))
	assert.False(t, s.CanRedo())
	assert.True(t, s.CanUndo())
}

func TestCapacityDropsOldest(t *testing.T) {
	doc := field.New(2, 2)
	s := NewStack(3)

	s.Push(fillStroke(doc, 0.1, 0.1))
	s.Push(fillStroke(doc, 0.2, 0.2))
	s.Push(fillStroke(doc, 0.3, 0.3))
	s.Push(fillStroke(doc, 0.4, 0.4))

	for s.CanUndo() {
		require.NoError(t, s.Undo(doc))
	}
	// The first stroke fell off, so unwinding stops at its result.
	assertUniform(t, doc, 0.1, 0.1)
}

func TestDefaultLimit(t *testing.T) {
	doc := field.New(1, 1)
	var s Stack
	for i := 0; i < DefaultLimit+1; i++ {
		s.Push(fillStroke(doc, 0.25, 0.75))
	}
	n := 0
	for s.CanUndo() {
		require.NoError(t, s.Undo(doc))
		n++
	}
	assert.Equal(t, DefaultLimit, n)
}

func TestUndoFailureLeavesStacks(t *testing.T) {
	doc := field.New(4, 4)
	s := NewStack(0)
	// Snapshots from a differently sized document cannot be adopted.
	stale := make([]float32, 2*2*field.Channels)
	s.Push(NewStroke(stale, stale, 2, 2))

	err := s.Undo(doc)
	require.ErrorIs(t, err, field.ErrDimensionMismatch)
	assert.True(t, s.CanUndo())
	assert.False(t, s.CanRedo())
}

func TestClear(t *testing.T) {
	doc := field.New(2, 2)
	s := NewStack(0)
	s.Push(fillStroke(doc, 0.7, 0.3))
	require.NoError(t, s.Undo(doc))

	s.Clear()
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
}
