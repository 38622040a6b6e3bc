package notebook_test

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateful/notebook/internal/undoredo"
	"github.com/stateful/notebook/pkg/notebook"
)

func TestDocument_New(t *testing.T) {
	doc := notebook.New("", codeCells("a", "b"), nil, notebook.TransientOptions{})

	assert.Contains(t, doc.URI(), "untitled:")
	assert.Equal(t, []int{0, 1}, handles(doc))
	assert.Equal(t, 0, doc.VersionID())
	assert.Equal(t, "0_0,1;1,1", doc.AlternativeVersionID())
	assert.Equal(t, doc.URI()+"#cell1", doc.Cells()[1].URI())
}

func TestDocument_InsertCell(t *testing.T) {
	f := newFixture(t, codeCells("a=1", "b=2"))

	f.apply(t, &notebook.ReplaceEdit{Index: 1, Count: 0, Cells: codeCells("c=3")})

	assert.Equal(t, []string{"a=1", "c=3", "b=2"}, sources(f.doc))
	assert.Equal(t, []int{0, 2, 1}, handles(f.doc))
	assert.Equal(t, 1, f.doc.VersionID())

	require.Len(t, f.events, 1)
	event := f.events[0]
	assert.Equal(t, 1, event.VersionID)
	assert.True(t, event.Synchronous)
	require.Len(t, event.RawEvents, 1)
	change := event.RawEvents[0].(notebook.ModelChangeEvent)
	require.Len(t, change.Changes, 1)
	assert.Equal(t, 1, change.Changes[0].Start)
	assert.Equal(t, 0, change.Changes[0].DeleteCount)
	assert.Same(t, f.doc.Cells()[1], change.Changes[0].Cells[0])
}

func TestDocument_UndoRedoRoundTrip(t *testing.T) {
	f := newFixture(t, codeCells("a", "b", "c"))
	before := f.doc.AlternativeVersionID()

	f.apply(t,
		&notebook.ReplaceEdit{Index: 0, Count: 1, Cells: codeCells("x", "y")},
		&notebook.CellLanguageEdit{Target: notebook.AtIndex(2), Language: "go"},
	)
	after := f.doc.AlternativeVersionID()
	afterHandles := handles(f.doc)
	require.NotEqual(t, before, after)
	require.Equal(t, []string{"x", "y", "b", "c"}, sources(f.doc))

	require.NoError(t, f.undo.Undo(testURI))
	assert.Equal(t, []string{"a", "b", "c"}, sources(f.doc))
	assert.Equal(t, []int{0, 1, 2}, handles(f.doc))
	assert.Equal(t, "python", f.doc.Cells()[2].Language())
	assert.Equal(t, before, f.doc.AlternativeVersionID())

	require.NoError(t, f.undo.Redo(testURI))
	assert.Equal(t, []string{"x", "y", "b", "c"}, sources(f.doc))
	assert.Equal(t, afterHandles, handles(f.doc))
	assert.Equal(t, "go", f.doc.Cells()[3].Language())
	assert.Equal(t, after, f.doc.AlternativeVersionID())

	// One event per apply, undo, and redo.
	require.Len(t, f.events, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{f.events[0].VersionID, f.events[1].VersionID, f.events[2].VersionID})
}

func TestDocument_UndoRestoresSelection(t *testing.T) {
	f := newFixture(t, codeCells("a"))
	begin := &notebook.SelectionState{Kind: notebook.SelectionByIndex, Primary: 0}
	end := &notebook.SelectionState{Kind: notebook.SelectionByIndex, Primary: 1}

	_, err := f.doc.ApplyEdits(
		[]notebook.CellEdit{&notebook.ReplaceEdit{Index: 1, Cells: codeCells("b")}},
		notebook.ApplyOptions{
			BeginSelection:      begin,
			ComputeEndSelection: func() *notebook.SelectionState { return end },
			ComputeUndoRedo:     true,
		},
	)
	require.NoError(t, err)
	assert.Same(t, end, f.events[0].EndSelectionState)

	require.NoError(t, f.undo.Undo(testURI))
	assert.Same(t, begin, f.events[1].EndSelectionState)

	require.NoError(t, f.undo.Redo(testURI))
	assert.Same(t, end, f.events[2].EndSelectionState)
}

func TestDocument_MoveCells(t *testing.T) {
	f := newFixture(t, codeCells("a", "b", "c"))

	f.apply(t, &notebook.MoveEdit{Index: 0, Length: 1, NewIndex: 2})

	assert.Equal(t, []string{"b", "c", "a"}, sources(f.doc))
	assert.Equal(t, []int{1, 2, 0}, handles(f.doc))
	require.Len(t, f.events, 1)
	move := f.events[0].RawEvents[0].(notebook.MoveEvent)
	assert.Equal(t, 0, move.Index)
	assert.Equal(t, 2, move.NewIndex)
	assert.Equal(t, "Move Cell", f.undo.LastElement(testURI).Label())

	require.NoError(t, f.undo.Undo(testURI))
	assert.Equal(t, []int{0, 1, 2}, handles(f.doc))
}

func TestDocument_OutputItems(t *testing.T) {
	cells := codeCells("print(1)")
	cells[0].Outputs = []notebook.OutputData{textOutput("o1", "A")}
	f := newFixture(t, cells)

	f.apply(t, &notebook.OutputItemsEdit{
		OutputID: "o1",
		Items:    []notebook.OutputItem{{Mime: "text/plain", Data: []byte("B")}},
		Append:   true,
	})

	outputs := f.doc.Cells()[0].Outputs()
	require.Len(t, outputs, 1)
	assert.Equal(t, "o1", outputs[0].ID())
	assert.Equal(t, []notebook.OutputItem{
		{Mime: "text/plain", Data: []byte("A")},
		{Mime: "text/plain", Data: []byte("B")},
	}, outputs[0].Items())

	require.Len(t, f.events, 1)
	require.Len(t, f.events[0].RawEvents, 1)
	item := f.events[0].RawEvents[0].(notebook.OutputItemEvent)
	assert.True(t, item.Append)
	assert.Equal(t, "o1", item.OutputID)

	// Outputs are not undoable.
	assert.Nil(t, f.undo.LastElement(testURI))
}

func TestDocument_OutputItemsOfOutputCreatedInBatch(t *testing.T) {
	f := newFixture(t, codeCells("a", "b"))

	f.apply(t,
		&notebook.OutputEdit{Target: notebook.ByHandle(1), Outputs: []notebook.OutputData{textOutput("new", "1")}, Append: true},
		&notebook.OutputItemsEdit{OutputID: "new", Items: []notebook.OutputItem{{Mime: "text/plain", Data: []byte("2")}}, Append: true},
	)

	outputs := f.doc.Cells()[1].Outputs()
	require.Len(t, outputs, 1)
	assert.Len(t, outputs[0].Items(), 2)
}

func TestDocument_UnknownOutputIsSkipped(t *testing.T) {
	f := newFixture(t, codeCells("a"))

	changed, err := f.doc.ApplyEdits([]notebook.CellEdit{
		&notebook.OutputItemsEdit{OutputID: "missing", Items: []notebook.OutputItem{{Mime: "text/plain"}}},
		&notebook.MetadataEdit{Target: notebook.AtIndex(0), Metadata: notebook.Metadata{"tags": "x"}},
	}, notebook.ApplyOptions{})
	require.NoError(t, err)
	assert.True(t, changed)

	require.Len(t, f.events, 1)
	assert.Equal(t, []notebook.ChangeKind{notebook.ChangeCellMetadata}, rawKinds(f.events[0]))
	assert.Equal(t, notebook.Metadata{"tags": "x"}, f.doc.Cells()[0].Metadata())
}

func TestDocument_OutputsByOutputID(t *testing.T) {
	cells := codeCells("a", "b")
	cells[1].Outputs = []notebook.OutputData{textOutput("o1", "A")}
	f := newFixture(t, cells)

	f.apply(t,
		&notebook.OutputEdit{OutputID: "o1", Outputs: []notebook.OutputData{textOutput("o2", "B")}},
		&notebook.OutputEdit{OutputID: "missing", Outputs: []notebook.OutputData{textOutput("o3", "C")}},
	)

	assert.Empty(t, f.doc.Cells()[0].Outputs())
	outputs := f.doc.Cells()[1].Outputs()
	require.Len(t, outputs, 1)
	assert.Equal(t, []byte("B"), outputs[0].Items()[0].Data)

	t.Run("TargetAndOutputID", func(t *testing.T) {
		_, err := f.doc.ApplyEdits([]notebook.CellEdit{
			&notebook.OutputEdit{Target: notebook.AtIndex(0), OutputID: "o2"},
		}, notebook.ApplyOptions{})
		var editErr *notebook.InvalidEditError
		require.ErrorAs(t, err, &editErr)
	})
}

func TestDocument_OutputAppendsAreMerged(t *testing.T) {
	f := newFixture(t, codeCells("a"))

	f.apply(t,
		&notebook.OutputEdit{Target: notebook.AtIndex(0), Outputs: []notebook.OutputData{textOutput("o1", "1")}, Append: true},
		&notebook.OutputEdit{Target: notebook.AtIndex(0), Outputs: []notebook.OutputData{textOutput("o2", "2")}, Append: true},
	)

	require.Len(t, f.events, 1)
	require.Len(t, f.events[0].RawEvents, 1)
	output := f.events[0].RawEvents[0].(notebook.OutputEvent)
	assert.True(t, output.Append)
	assert.Len(t, output.Outputs, 2)

	// Clearing followed by an append is a single replace.
	f.apply(t,
		&notebook.OutputEdit{Target: notebook.AtIndex(0)},
		&notebook.OutputEdit{Target: notebook.AtIndex(0), Outputs: []notebook.OutputData{textOutput("o3", "3")}, Append: true},
	)
	require.Len(t, f.events, 2)
	require.Len(t, f.events[1].RawEvents, 1)
	output = f.events[1].RawEvents[0].(notebook.OutputEvent)
	assert.False(t, output.Append)
	require.Len(t, output.Outputs, 1)
	assert.Equal(t, "o3", output.Outputs[0].OutputID)
}

func TestDocument_EmptyOutputSpliceIsNoop(t *testing.T) {
	f := newFixture(t, codeCells("a"))

	changed, err := f.doc.ApplyEdits([]notebook.CellEdit{
		&notebook.OutputEdit{Target: notebook.AtIndex(0)},
		&notebook.OutputEdit{Target: notebook.AtIndex(0), Append: true},
	}, notebook.ApplyOptions{})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, f.events)
	assert.Equal(t, 0, f.doc.VersionID())
}

func TestDocument_ReplaceOutputsKeepsUnchanged(t *testing.T) {
	cells := codeCells("a")
	cells[0].Outputs = []notebook.OutputData{textOutput("o1", "1"), textOutput("o2", "2"), textOutput("o3", "3")}
	f := newFixture(t, cells)

	f.apply(t, &notebook.OutputEdit{
		Target:  notebook.AtIndex(0),
		Outputs: []notebook.OutputData{textOutput("", "1"), textOutput("", "changed"), textOutput("", "3")},
	})

	var ids []string
	for _, o := range f.doc.Cells()[0].Outputs() {
		ids = append(ids, o.ID())
	}
	assert.Equal(t, []string{"o1", "gen1", "o3"}, ids)
}

func TestDocument_TransientOutputs(t *testing.T) {
	f := newTransientFixture(t, codeCells("a"), notebook.TransientOptions{TransientOutputs: true})
	before := f.doc.AlternativeVersionID()

	f.apply(t, &notebook.OutputEdit{Target: notebook.AtIndex(0), Outputs: []notebook.OutputData{textOutput("o1", "1")}})

	assert.Equal(t, 1, f.doc.VersionID())
	assert.Equal(t, before, f.doc.AlternativeVersionID())
	assert.True(t, f.events[0].RawEvents[0].IsTransient())
}

func TestDocument_Metadata(t *testing.T) {
	f := newTransientFixture(t, codeCells("a"), notebook.TransientOptions{
		TransientCellMetadata: map[string]bool{"collapsed": true},
	})

	t.Run("TransientKey", func(t *testing.T) {
		before := f.doc.AlternativeVersionID()
		f.apply(t, &notebook.PartialMetadataEdit{Target: notebook.AtIndex(0), Metadata: notebook.Metadata{"collapsed": true}})

		assert.Equal(t, notebook.Metadata{"collapsed": true}, f.doc.Cells()[0].Metadata())
		assert.Equal(t, before, f.doc.AlternativeVersionID())
		assert.True(t, f.events[len(f.events)-1].RawEvents[0].IsTransient())
		assert.Nil(t, f.undo.LastElement(testURI))
	})

	t.Run("Equal", func(t *testing.T) {
		version := f.doc.VersionID()
		f.apply(t, &notebook.MetadataEdit{Target: notebook.AtIndex(0), Metadata: notebook.Metadata{"collapsed": true}})
		assert.Equal(t, version, f.doc.VersionID())
	})

	t.Run("Partial", func(t *testing.T) {
		f.apply(t, &notebook.PartialMetadataEdit{Target: notebook.AtIndex(0), Metadata: notebook.Metadata{"tags": []string{"x"}, "collapsed": nil}})

		assert.Equal(t, notebook.Metadata{"tags": []string{"x"}}, f.doc.Cells()[0].Metadata())
		assert.Equal(t, "Update Cell Metadata", f.undo.LastElement(testURI).Label())

		require.NoError(t, f.undo.Undo(testURI))
		assert.Equal(t, notebook.Metadata{"collapsed": true}, f.doc.Cells()[0].Metadata())
	})

	t.Run("Document", func(t *testing.T) {
		f.apply(t, &notebook.DocumentMetadataEdit{Metadata: notebook.Metadata{"kernel": "python3"}})
		assert.Equal(t, notebook.Metadata{"kernel": "python3"}, f.doc.Metadata())

		require.NoError(t, f.undo.Undo(testURI))
		assert.Empty(t, f.doc.Metadata())
	})

	t.Run("Internal", func(t *testing.T) {
		before := f.doc.AlternativeVersionID()
		f.apply(t, &notebook.PartialInternalMetadataEdit{Target: notebook.AtIndex(0), InternalMetadata: notebook.Metadata{notebook.InternalExecutionOrder: 1}})

		assert.Equal(t, 1, f.doc.Cells()[0].InternalMetadata()[notebook.InternalExecutionOrder])
		assert.Equal(t, before, f.doc.AlternativeVersionID())
	})
}

func TestDocument_DocumentMetadataLastEditWins(t *testing.T) {
	f := newFixture(t, codeCells("a"))

	f.apply(t,
		&notebook.DocumentMetadataEdit{Metadata: notebook.Metadata{"k": 1}},
		&notebook.DocumentMetadataEdit{Metadata: notebook.Metadata{"k": 2}},
	)

	assert.Equal(t, notebook.Metadata{"k": 2}, f.doc.Metadata())
}

func TestDocument_MetadataOnNewCellsIsCoalesced(t *testing.T) {
	f := newFixture(t, codeCells("a"))

	f.apply(t, &notebook.ReplaceEdit{Index: 1, Cells: codeCells("b")})
	insert := f.undo.LastElement(testURI)
	require.NotNil(t, insert)
	assert.Equal(t, "Insert Cell", insert.Label())

	newHandle := f.doc.Cells()[1].Handle()
	f.apply(t, &notebook.MetadataEdit{Target: notebook.ByHandle(newHandle), Metadata: notebook.Metadata{"id": "b"}})

	// Both batches share the undo entry.
	assert.Same(t, insert, f.undo.LastElement(testURI))
	assert.Equal(t, "edit", insert.Label())
	assert.Equal(t, 2, f.doc.VersionID())

	require.NoError(t, f.undo.Undo(testURI))
	assert.Equal(t, []string{"a"}, sources(f.doc))
	require.ErrorIs(t, f.undo.Undo(testURI), undoredo.ErrNothingToUndo)

	require.NoError(t, f.undo.Redo(testURI))
	require.Equal(t, []string{"a", "b"}, sources(f.doc))
	assert.Equal(t, newHandle, f.doc.Cells()[1].Handle())
	assert.Equal(t, notebook.Metadata{"id": "b"}, f.doc.Cells()[1].Metadata())
}

func TestDocument_MetadataEditOfOldCellIsNotCoalesced(t *testing.T) {
	f := newFixture(t, codeCells("a"))

	f.apply(t, &notebook.ReplaceEdit{Index: 1, Cells: codeCells("b")})
	insert := f.undo.LastElement(testURI)

	f.apply(t, &notebook.MetadataEdit{Target: notebook.AtIndex(0), Metadata: notebook.Metadata{"id": "a"}})
	assert.NotSame(t, insert, f.undo.LastElement(testURI))
}

func TestDocument_InvalidEdits(t *testing.T) {
	testCases := []struct {
		name  string
		edits []notebook.CellEdit
		check func(t *testing.T, err error)
	}{
		{
			name: "IndexOutOfRange",
			edits: []notebook.CellEdit{
				&notebook.MetadataEdit{Target: notebook.AtIndex(0), Metadata: notebook.Metadata{"a": 1}},
				&notebook.MetadataEdit{Target: notebook.AtIndex(5)},
			},
			check: func(t *testing.T, err error) {
				var indexErr *notebook.InvalidIndexError
				require.True(t, errors.As(err, &indexErr))
				assert.Equal(t, 5, indexErr.Index)
				assert.Equal(t, 2, indexErr.Length)
			},
		},
		{
			name:  "UnknownHandle",
			edits: []notebook.CellEdit{&notebook.CellLanguageEdit{Target: notebook.ByHandle(99), Language: "go"}},
			check: func(t *testing.T, err error) {
				var editErr *notebook.InvalidEditError
				require.True(t, errors.As(err, &editErr))
				assert.Equal(t, notebook.EditCellLanguage, editErr.EditType)
			},
		},
		{
			name:  "MissingTarget",
			edits: []notebook.CellEdit{&notebook.PartialMetadataEdit{}},
			check: func(t *testing.T, err error) {
				var editErr *notebook.InvalidEditError
				require.True(t, errors.As(err, &editErr))
			},
		},
		{
			name:  "NegativeCount",
			edits: []notebook.CellEdit{&notebook.ReplaceEdit{Index: 0, Count: -1}},
			check: func(t *testing.T, err error) {
				var editErr *notebook.InvalidEditError
				require.True(t, errors.As(err, &editErr))
			},
		},
		{
			name:  "MovePastEnd",
			edits: []notebook.CellEdit{&notebook.MoveEdit{Index: 0, Length: 1, NewIndex: 2}},
			check: func(t *testing.T, err error) {
				var indexErr *notebook.InvalidIndexError
				require.True(t, errors.As(err, &indexErr))
			},
		},
		{
			name:  "Nil",
			edits: []notebook.CellEdit{nil},
			check: func(t *testing.T, err error) {
				var editErr *notebook.InvalidEditError
				require.True(t, errors.As(err, &editErr))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, codeCells("a", "b"))

			changed, err := f.doc.ApplyEdits(tc.edits, notebook.ApplyOptions{ComputeUndoRedo: true})
			require.Error(t, err)
			assert.False(t, changed)
			tc.check(t, err)

			// Nothing was touched.
			assert.Empty(t, f.events)
			assert.Equal(t, 0, f.doc.VersionID())
			assert.Empty(t, f.doc.Cells()[0].Metadata())
		})
	}
}

func TestDocument_FailureAfterPartialApply(t *testing.T) {
	f := newFixture(t, codeCells("a", "b", "c"))

	// The replace runs first and removes the cell the metadata edit targets.
	changed, err := f.doc.ApplyEdits([]notebook.CellEdit{
		&notebook.ReplaceEdit{Index: 1, Count: 2},
		&notebook.MetadataEdit{Target: notebook.AtIndex(2), Metadata: notebook.Metadata{"a": 1}},
	}, notebook.ApplyOptions{ComputeUndoRedo: true})

	var indexErr *notebook.InvalidIndexError
	require.True(t, errors.As(err, &indexErr))
	assert.True(t, changed)
	assert.Equal(t, []string{"a"}, sources(f.doc))
	assert.Len(t, f.events, 1)
	assert.Equal(t, 1, f.doc.VersionID())

	require.NoError(t, f.undo.Undo(testURI))
	assert.Equal(t, []string{"a", "b", "c"}, sources(f.doc))
}

func TestDocument_CellContentChange(t *testing.T) {
	f := newFixture(t, codeCells("a", "b"))
	before := f.doc.AlternativeVersionID()

	f.doc.Cells()[1].SetSource("b2")

	assert.Equal(t, 1, f.doc.VersionID())
	assert.Equal(t, "0_0,1;1,2", f.doc.AlternativeVersionID())
	assert.NotEqual(t, before, f.doc.AlternativeVersionID())
	require.Len(t, f.events, 1)
	assert.Equal(t, []notebook.RawEvent{notebook.CellContentEvent{Index: 1}}, f.events[0].RawEvents)

	// Same content is not a change.
	f.doc.Cells()[1].SetSource("b2")
	assert.Len(t, f.events, 1)
}

func TestDocument_WillAddRemoveCells(t *testing.T) {
	f := newFixture(t, codeCells("a"))

	var lengths []int
	f.doc.OnWillAddRemoveCells(func(e notebook.WillAddRemoveCellsEvent) {
		lengths = append(lengths, f.doc.Len())
		require.Len(t, e.Changes, 1)
	})

	f.apply(t, &notebook.ReplaceEdit{Index: 0, Count: 1, Cells: codeCells("b", "c")})
	// Fired before the cells change.
	assert.Equal(t, []int{1}, lengths)
}

func TestDocument_ListenerCanApplyEdits(t *testing.T) {
	f := newFixture(t, codeCells("a"))

	once := false
	f.doc.OnDidChangeContent(func(notebook.ContentChangedEvent) {
		if once {
			return
		}
		once = true
		f.apply(t, &notebook.CellLanguageEdit{Target: notebook.AtIndex(0), Language: "go"})
	})

	f.apply(t, &notebook.MetadataEdit{Target: notebook.AtIndex(0), Metadata: notebook.Metadata{"a": 1}})

	assert.Equal(t, 2, f.doc.VersionID())
	require.Len(t, f.events, 2)
	assert.Equal(t, "go", f.doc.Cells()[0].Language())
}

func TestDocument_Dispose(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	undo := notebook.NewMockUndoRedoService(ctrl)
	group := &notebook.UndoRedoGroup{ID: 1}

	undo.EXPECT().PushElement(gomock.Any(), group).Do(func(el notebook.UndoRedoElement, _ *notebook.UndoRedoGroup) {
		assert.Equal(t, testURI, el.Resource())
		assert.Equal(t, "Insert Cell", el.Label())
	})
	undo.EXPECT().RemoveElements(testURI).Times(1)

	doc := notebook.New(testURI, codeCells("a"), nil, notebook.TransientOptions{}, notebook.WithUndoRedoService(undo))

	disposed := 0
	doc.OnWillDispose(func() { disposed++ })

	_, err := doc.ApplyEdits(
		[]notebook.CellEdit{&notebook.ReplaceEdit{Index: 1, Cells: codeCells("b")}},
		notebook.ApplyOptions{UndoGroup: group, ComputeUndoRedo: true},
	)
	require.NoError(t, err)

	cell := doc.Cells()[0]
	doc.Dispose()
	doc.Dispose()

	assert.Equal(t, 1, disposed)
	assert.True(t, doc.IsDisposed())
	assert.Equal(t, 0, doc.Len())

	_, err = doc.ApplyEdits([]notebook.CellEdit{&notebook.ReplaceEdit{Index: 0}}, notebook.ApplyOptions{})
	require.ErrorIs(t, err, notebook.ErrDisposed)

	// Detached cells no longer notify the document.
	cell.SetSource("changed")
	assert.Equal(t, 1, doc.VersionID())
}
