package notebook_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stateful/notebook/internal/undoredo"
	"github.com/stateful/notebook/pkg/notebook"
)

const testURI = "file:///workspace/test.ipynb"

func codeCell(source string) notebook.CellData {
	return notebook.CellData{CellKind: notebook.CodeKind, Language: "python", Source: source}
}

func codeCells(sources ...string) []notebook.CellData {
	result := make([]notebook.CellData, 0, len(sources))
	for _, src := range sources {
		result = append(result, codeCell(src))
	}
	return result
}

func textOutput(id, text string) notebook.OutputData {
	return notebook.OutputData{
		OutputID: id,
		Items:    []notebook.OutputItem{{Mime: "text/plain", Data: []byte(text)}},
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen%d", n)
	}
}

type fixture struct {
	doc    *notebook.Document
	undo   *undoredo.Service
	events []notebook.ContentChangedEvent
}

func newFixture(t *testing.T, cells []notebook.CellData, opts ...notebook.Option) *fixture {
	t.Helper()
	return newTransientFixture(t, cells, notebook.TransientOptions{}, opts...)
}

func newTransientFixture(t *testing.T, cells []notebook.CellData, transient notebook.TransientOptions, opts ...notebook.Option) *fixture {
	t.Helper()

	f := &fixture{undo: undoredo.New()}
	opts = append([]notebook.Option{
		notebook.WithUndoRedoService(f.undo),
		notebook.WithOutputIDGenerator(sequentialIDs()),
	}, opts...)
	f.doc = notebook.New(testURI, cells, notebook.Metadata{}, transient, opts...)
	f.doc.OnDidChangeContent(func(e notebook.ContentChangedEvent) {
		f.events = append(f.events, e)
	})
	return f
}

func (f *fixture) apply(t *testing.T, edits ...notebook.CellEdit) {
	t.Helper()
	_, err := f.doc.ApplyEdits(edits, notebook.ApplyOptions{Synchronous: true, ComputeUndoRedo: true})
	require.NoError(t, err)
}

func sources(doc *notebook.Document) []string {
	result := make([]string, 0, doc.Len())
	for _, c := range doc.Cells() {
		result = append(result, c.Source())
	}
	return result
}

func handles(doc *notebook.Document) []int {
	result := make([]int, 0, doc.Len())
	for _, c := range doc.Cells() {
		result = append(result, c.Handle())
	}
	return result
}

func rawKinds(e notebook.ContentChangedEvent) []notebook.ChangeKind {
	result := make([]notebook.ChangeKind, 0, len(e.RawEvents))
	for _, raw := range e.RawEvents {
		result = append(result, raw.Kind())
	}
	return result
}
