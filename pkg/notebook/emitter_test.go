package notebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBatch(t *testing.T) {
	selection := &SelectionState{Kind: SelectionByIndex, Primary: 1}

	t.Run("Unbatched", func(t *testing.T) {
		var b eventBatch
		event, ok := b.push(pendingEvent{rawEvents: []RawEvent{CellContentEvent{}}, versionID: 1})
		require.True(t, ok)
		assert.Equal(t, 1, event.versionID)
		assert.True(t, b.isEmpty())
	})

	t.Run("Merge", func(t *testing.T) {
		var b eventBatch
		b.beginBatch()
		_, ok := b.push(pendingEvent{rawEvents: []RawEvent{CellContentEvent{Index: 0}}, versionID: 1, synchronous: boolPtr(false), endSelection: selection})
		require.False(t, ok)
		b.push(pendingEvent{rawEvents: []RawEvent{CellContentEvent{Index: 1}}, versionID: 2, synchronous: boolPtr(true)})
		b.push(pendingEvent{versionID: 3})

		event, ok := b.endBatch()
		require.True(t, ok)
		assert.Equal(t, []RawEvent{CellContentEvent{Index: 0}, CellContentEvent{Index: 1}}, event.rawEvents)
		assert.Equal(t, 3, event.versionID)
		assert.True(t, *event.synchronous)
		assert.Same(t, selection, event.endSelection)
		assert.True(t, b.isEmpty())
	})

	t.Run("Nested", func(t *testing.T) {
		var b eventBatch
		b.beginBatch()
		b.beginBatch()
		b.push(pendingEvent{rawEvents: []RawEvent{CellContentEvent{}}})

		_, ok := b.endBatch()
		assert.False(t, ok)
		assert.False(t, b.isEmpty())

		_, ok = b.endBatch()
		assert.True(t, ok)

		_, ok = b.endBatch()
		assert.False(t, ok)
	})

	t.Run("Dirty", func(t *testing.T) {
		var b eventBatch
		b.beginBatch()
		b.push(pendingEvent{rawEvents: []RawEvent{CellInternalMetadataEvent{}, OutputEvent{Transient: true}}})
		assert.False(t, b.isDirty())

		b.push(pendingEvent{rawEvents: []RawEvent{CellMetadataEvent{Transient: false}}})
		assert.True(t, b.isDirty())
	})
}

func TestListeners(t *testing.T) {
	var (
		l   listeners[int]
		got []int
	)

	remove := l.add(func(v int) { got = append(got, v) })
	l.add(func(v int) { got = append(got, v*10) })

	l.fire(1)
	remove()
	l.fire(2)

	assert.Equal(t, []int{1, 10, 20}, got)
}
