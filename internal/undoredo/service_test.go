package undoredo

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateful/notebook/pkg/notebook"
)

type fakeElement struct {
	resource string
	label    string
	log      *[]string
	fail     bool
}

func (e *fakeElement) Resource() string { return e.resource }
func (e *fakeElement) Label() string    { return e.label }
func (e *fakeElement) Code() string     { return "test" }

func (e *fakeElement) Undo() error {
	if e.fail {
		return errors.New("boom")
	}
	*e.log = append(*e.log, "undo "+e.label)
	return nil
}

func (e *fakeElement) Redo() error {
	*e.log = append(*e.log, "redo "+e.label)
	return nil
}

func TestService_UndoRedo(t *testing.T) {
	var log []string
	s := New()

	a := &fakeElement{resource: "nb", label: "a", log: &log}
	b := &fakeElement{resource: "nb", label: "b", log: &log}
	s.PushElement(a, nil)
	s.PushElement(b, nil)

	assert.Same(t, b, s.LastElement("nb"))
	require.NoError(t, s.Undo("nb"))
	assert.Same(t, a, s.LastElement("nb"))
	require.True(t, s.CanRedo("nb"))

	require.NoError(t, s.Redo("nb"))
	assert.Equal(t, []string{"undo b", "redo b"}, log)
	assert.False(t, s.CanRedo("nb"))

	require.NoError(t, s.Undo("nb"))
	require.NoError(t, s.Undo("nb"))
	require.ErrorIs(t, s.Undo("nb"), ErrNothingToUndo)

	// A new element drops the redo entries.
	s.PushElement(&fakeElement{resource: "nb", label: "c", log: &log}, nil)
	require.ErrorIs(t, s.Redo("nb"), ErrNothingToRedo)
}

func TestService_Groups(t *testing.T) {
	var log []string
	s := New()
	group := &notebook.UndoRedoGroup{ID: 7}

	s.PushElement(&fakeElement{resource: "one", label: "one", log: &log}, group)
	s.PushElement(&fakeElement{resource: "two", label: "two", log: &log}, group)
	s.PushElement(&fakeElement{resource: "three", label: "three", log: &log}, nil)

	require.NoError(t, s.Undo("one"))
	assert.ElementsMatch(t, []string{"undo one", "undo two"}, log)
	assert.True(t, s.CanUndo("three"))
	assert.False(t, s.CanUndo("two"))

	log = nil
	require.NoError(t, s.Redo("two"))
	assert.ElementsMatch(t, []string{"redo one", "redo two"}, log)
	assert.Equal(t, []string{"one", "two", "three"}, s.Resources())
}

func TestService_MaxEntries(t *testing.T) {
	var log []string
	s := New(WithMaxEntries(2))

	for _, label := range []string{"a", "b", "c"} {
		s.PushElement(&fakeElement{resource: "nb", label: label, log: &log}, nil)
	}

	require.NoError(t, s.Undo("nb"))
	require.NoError(t, s.Undo("nb"))
	require.ErrorIs(t, s.Undo("nb"), ErrNothingToUndo)
	assert.Equal(t, []string{"undo c", "undo b"}, log)
}

func TestService_FailedUndoKeepsEntry(t *testing.T) {
	var log []string
	s := New()
	el := &fakeElement{resource: "nb", label: "a", log: &log, fail: true}
	s.PushElement(el, nil)

	require.Error(t, s.Undo("nb"))
	assert.Same(t, el, s.LastElement("nb"))
}

func TestService_RemoveElements(t *testing.T) {
	var log []string
	s := New()
	s.PushElement(&fakeElement{resource: "nb", label: "a", log: &log}, nil)

	s.RemoveElements("nb")
	assert.Nil(t, s.LastElement("nb"))
	assert.Empty(t, s.Resources())
}
