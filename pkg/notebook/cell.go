package notebook

import (
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/exp/slices"
)

// Cell is a single unit of a notebook document. Cells are owned by
// the document that created them and are mutated only through edits,
// except for the text content which belongs to the cell's TextBuffer.
type Cell struct {
	handle           int
	uri              string
	kind             CellKind
	language         string
	mime             string
	buffer           TextBuffer
	metadata         Metadata
	internalMetadata Metadata
	outputs          []*Output
	alternativeID    int

	// onDidChangeContent is set while the cell is attached to a document.
	onDidChangeContent func(*Cell)
}

// CellURI returns the identifier of the cell with the handle inside the document.
func CellURI(documentURI string, handle int) string {
	return fmt.Sprintf("%s#cell%d", documentURI, handle)
}

func (c *Cell) Handle() int { return c.handle }

func (c *Cell) URI() string { return c.uri }

func (c *Cell) Kind() CellKind { return c.kind }

func (c *Cell) Language() string { return c.language }

func (c *Cell) Mime() string { return c.mime }

func (c *Cell) TextBuffer() TextBuffer { return c.buffer }

func (c *Cell) Source() string { return c.buffer.Value() }

func (c *Cell) Metadata() Metadata { return c.metadata.Clone() }

func (c *Cell) InternalMetadata() Metadata { return c.internalMetadata.Clone() }

// AlternativeID changes every time the text content of the cell changes.
func (c *Cell) AlternativeID() int { return c.alternativeID }

func (c *Cell) Outputs() []*Output { return slices.Clone(c.outputs) }

// SetSource replaces the text content of the cell and notifies the owning document.
func (c *Cell) SetSource(source string) {
	if c.buffer.Value() == source {
		return
	}
	c.buffer.SetValue(source)
	c.alternativeID++
	if c.onDidChangeContent != nil {
		c.onDidChangeContent(c)
	}
}

func (c *Cell) detach() {
	c.onDidChangeContent = nil
}

// ToData describes the cell, with the transient parts removed when
// transient options are given.
func (c *Cell) ToData(transient *TransientOptions) CellData {
	data := CellData{
		CellKind:         c.kind,
		Language:         c.language,
		Mime:             c.mime,
		Source:           c.Source(),
		Outputs:          []OutputData{},
		Metadata:         c.metadata.Clone(),
		InternalMetadata: c.internalMetadata.Clone(),
	}
	if transient == nil || !transient.TransientOutputs {
		data.Outputs = outputsToData(c.outputs)
	}
	if transient != nil {
		data.Metadata = filterMetadata(c.metadata, transient.TransientCellMetadata)
	}
	return data
}

// fastEqual compares the cell to a cell description without
// looking at metadata or outputs.
func (c *Cell) fastEqual(b CellData) bool {
	if c.language != b.Language || c.mime != b.Mime || c.kind != b.CellKind {
		return false
	}

	for _, key := range executionFields {
		if !reflect.DeepEqual(c.internalMetadata[key], b.InternalMetadata[key]) {
			return false
		}
	}

	return linesEqual(c.buffer.LinesContent(), b.Source)
}

func linesEqual(lines []string, source string) bool {
	other := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
	return slices.Equal(lines, other)
}

func (c *Cell) outputIndex(outputID string) int {
	return slices.IndexFunc(c.outputs, func(o *Output) bool { return o.id == outputID })
}

type outputSplice struct {
	start       int
	deleteCount int
	newOutputs  []*Output
}

func (c *Cell) spliceOutputs(splice outputSplice) {
	c.outputs = slices.Replace(
		slices.Clone(c.outputs),
		splice.start,
		splice.start+splice.deleteCount,
		splice.newOutputs...,
	)
}

// changeOutputItems appends or replaces the items of an output and
// reports whether the output exists.
func (c *Cell) changeOutputItems(outputID string, appendItems bool, items []OutputItem) bool {
	idx := c.outputIndex(outputID)
	if idx < 0 {
		return false
	}
	output := c.outputs[idx]
	if appendItems {
		output.appendItems(items)
	} else {
		output.replaceItems(items)
	}
	return true
}

func filterMetadata(m Metadata, excluded map[string]bool) Metadata {
	result := make(Metadata, len(m))
	for k, v := range m {
		if excluded[k] {
			continue
		}
		result[k] = v
	}
	return result
}
