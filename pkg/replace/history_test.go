package replace

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_PushPop(t *testing.T) {
	h := NewHistory(10)
	require.False(t, h.CanUndo())

	h.Push(UndoRecord{Original: "a", Replacement: "b"})
	h.Push(UndoRecord{Original: "c", Replacement: "d"})
	require.Equal(t, 2, h.Len())

	// Strict LIFO: the most recent record pops first.
	rec, ok := h.Pop()
	require.True(t, ok)
	assert.Equal(t, "c", rec.Original)

	rec, ok = h.Pop()
	require.True(t, ok)
	assert.Equal(t, "a", rec.Original)

	_, ok = h.Pop()
	assert.False(t, ok)
}

func TestHistory_CapacityEvictsOldest(t *testing.T) {
	h := NewHistory(3)

	for i := 0; i < 5; i++ {
		h.Push(UndoRecord{Original: fmt.Sprintf("rec-%d", i)})
	}
	require.Equal(t, 3, h.Len(), "history never exceeds its capacity")

	// Oldest two were evicted; pops return 4, 3, 2.
	for _, want := range []string{"rec-4", "rec-3", "rec-2"} {
		rec, ok := h.Pop()
		require.True(t, ok)
		assert.Equal(t, want, rec.Original)
	}
}

func TestHistory_DefaultCapacity(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, DefaultHistoryCapacity, h.Capacity())
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(5)
	h.Push(UndoRecord{Original: "a"})
	h.Push(UndoRecord{Original: "b"})

	h.Clear()
	assert.Equal(t, 0, h.Len())
	assert.False(t, h.CanUndo())
}
