package notebook

import (
	"github.com/stateful/notebook/pkg/notebook/textbuf"
)

type CellKind int

const (
	MarkupKind CellKind = iota + 1
	CodeKind
)

func (k CellKind) String() string {
	switch k {
	case MarkupKind:
		return "markup"
	case CodeKind:
		return "code"
	default:
		return "unknown"
	}
}

// Metadata is arbitrary JSON-like data attached to a document, cell, or output.
type Metadata map[string]any

func (m Metadata) Clone() Metadata {
	result := make(Metadata, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

// Internal metadata keys maintained by the execution-state collaborator.
const (
	InternalExecutionOrder = "executionOrder"
	InternalLastRunSuccess = "lastRunSuccess"
	InternalRunStartTime   = "runStartTime"
	InternalRunEndTime     = "runEndTime"
	InternalExecutionID    = "executionId"
)

// executionFields are the internal metadata keys compared when
// deciding whether a live cell and a cell description are the same.
var executionFields = []string{
	InternalExecutionOrder,
	InternalLastRunSuccess,
	InternalRunStartTime,
	InternalRunEndTime,
}

type OutputItem struct {
	Mime string `json:"mime"`
	Data []byte `json:"data"`
}

// OutputData is the plain description of a cell output.
type OutputData struct {
	OutputID string       `json:"outputId,omitempty"`
	Items    []OutputItem `json:"items"`
	Metadata Metadata     `json:"metadata,omitempty"`
}

// CellData is the plain description of a cell, as used for inserting
// cells, snapshots, and reconciliation targets.
type CellData struct {
	CellKind         CellKind     `json:"cellKind"`
	Language         string       `json:"language"`
	Mime             string       `json:"mime,omitempty"`
	Source           string       `json:"source"`
	Outputs          []OutputData `json:"outputs"`
	Metadata         Metadata     `json:"metadata,omitempty"`
	InternalMetadata Metadata     `json:"internalMetadata,omitempty"`
}

// TransientOptions name the fields excluded from dirty tracking
// and from snapshots.
type TransientOptions struct {
	TransientOutputs          bool            `json:"transientOutputs"`
	TransientCellMetadata     map[string]bool `json:"transientCellMetadata,omitempty"`
	TransientDocumentMetadata map[string]bool `json:"transientDocumentMetadata,omitempty"`
	CellContentMetadata       map[string]bool `json:"cellContentMetadata,omitempty"`
}

type SelectionStateKind int

const (
	SelectionByHandle SelectionStateKind = iota
	SelectionByIndex
)

// CellRange is a half-open range of cell indexes.
type CellRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SelectionState is an opaque editor selection captured with undo entries.
type SelectionState struct {
	Kind       SelectionStateKind `json:"kind"`
	Primary    int                `json:"primary"`
	Selections []CellRange        `json:"selections,omitempty"`
}

// UndoRedoGroup ties undo entries that must be undone together.
type UndoRedoGroup struct {
	ID int64
}

// UndoRedoElement is a single entry handed to the undo/redo service.
type UndoRedoElement interface {
	Resource() string
	Label() string
	Code() string
	Undo() error
	Redo() error
}

// UndoRedoService stores and replays undo entries.
//
//go:generate mockgen --build_flags=--mod=mod -destination=./undoredo_mock_gen.go -package=notebook . UndoRedoService
type UndoRedoService interface {
	PushElement(element UndoRedoElement, group *UndoRedoGroup)
	LastElement(resource string) UndoRedoElement
	RemoveElements(resource string)
}

type CellExecutionState int

const (
	CellExecutionUnconfirmed CellExecutionState = iota + 1
	CellExecutionPending
	CellExecutionExecuting
)

type CellExecution struct {
	CellHandle int
	State      CellExecutionState
}

// ExecutionStateService reports the executions running for a notebook.
type ExecutionStateService interface {
	CellExecutionsForNotebook(uri string) []CellExecution
}

// TextBuffer holds the text content of a cell.
type TextBuffer interface {
	Value() string
	SetValue(string)
	LineCount() int
	LineMaxColumn(lineNumber int) int
	LinesContent() []string
	FindMatchesLineByLine(searchRange textbuf.Range, data *textbuf.SearchData, captureMatches bool, limit int) []textbuf.FindMatch
}

type TextBufferFactory func(source string) TextBuffer

func defaultTextBufferFactory(source string) TextBuffer {
	return textbuf.New(source)
}

type noopUndoRedoService struct{}

func (noopUndoRedoService) PushElement(UndoRedoElement, *UndoRedoGroup) {}

func (noopUndoRedoService) LastElement(string) UndoRedoElement { return nil }

func (noopUndoRedoService) RemoveElements(string) {}

type noopExecutionStateService struct{}

func (noopExecutionStateService) CellExecutionsForNotebook(string) []CellExecution { return nil }
