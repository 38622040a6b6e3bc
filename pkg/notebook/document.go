package notebook

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/stateful/notebook/internal/ulid"
)

// Document is the in-memory model of a notebook: an ordered sequence
// of cells plus document metadata. All mutations go through ApplyEdits,
// Reset, RestoreSnapshot, or the text content of a cell.
//
// A Document is not safe for concurrent use.
type Document struct {
	uri       string
	cells     []*Cell
	metadata  Metadata
	transient TransientOptions

	versionID int
	// notebookAltID is the leading counter of the alternative version id.
	// It only follows versionID for non-transient changes.
	notebookAltID int
	altVersionID  string

	handlePool           int
	newCellsFromLastEdit map[int]struct{}

	batch eventBatch
	ops   *operationManager

	undoService UndoRedoService
	execService ExecutionStateService
	logger      *zap.Logger
	newBuffer   TextBufferFactory
	newOutputID func() string

	onDidChangeContent   listeners[ContentChangedEvent]
	onWillAddRemoveCells listeners[WillAddRemoveCellsEvent]
	onWillDispose        listeners[struct{}]
	disposed             bool
}

type Option func(*Document)

func WithUndoRedoService(s UndoRedoService) Option {
	return func(d *Document) {
		d.undoService = s
	}
}

func WithExecutionStateService(s ExecutionStateService) Option {
	return func(d *Document) {
		d.execService = s
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(d *Document) {
		d.logger = logger
	}
}

func WithTextBufferFactory(f TextBufferFactory) Option {
	return func(d *Document) {
		d.newBuffer = f
	}
}

// WithOutputIDGenerator sets the function used for outputs created without an id.
func WithOutputIDGenerator(fn func() string) Option {
	return func(d *Document) {
		d.newOutputID = fn
	}
}

// New creates a document for uri. An empty uri gets an untitled one.
func New(uri string, cells []CellData, metadata Metadata, transient TransientOptions, opts ...Option) *Document {
	if uri == "" {
		uri = "untitled:" + uuid.NewString()
	}

	d := &Document{
		uri:                  uri,
		metadata:             metadata.Clone(),
		transient:            transient,
		altVersionID:         "1",
		newCellsFromLastEdit: make(map[int]struct{}),
		undoService:          noopUndoRedoService{},
		execService:          noopExecutionStateService{},
		logger:               zap.NewNop(),
		newBuffer:            defaultTextBufferFactory,
		newOutputID:          ulid.GenerateID,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.ops = &operationManager{doc: d, service: d.undoService}

	d.cells = make([]*Cell, 0, len(cells))
	for _, data := range cells {
		d.cells = append(d.cells, d.createCell(data))
	}
	d.altVersionID = d.generateAltVersionID()

	d.logger.Debug("initialized notebook document", zap.String("uri", uri), zap.Int("cells", len(d.cells)))

	return d
}

func (d *Document) URI() string { return d.uri }

func (d *Document) Len() int { return len(d.cells) }

// Cells returns the current cell sequence. The slice is a copy.
func (d *Document) Cells() []*Cell { return slices.Clone(d.cells) }

func (d *Document) Cell(index int) (*Cell, bool) {
	if index < 0 || index >= len(d.cells) {
		return nil, false
	}
	return d.cells[index], true
}

func (d *Document) Metadata() Metadata { return d.metadata.Clone() }

func (d *Document) TransientOptions() TransientOptions { return d.transient }

func (d *Document) VersionID() int { return d.versionID }

// AlternativeVersionID identifies the content of the document. Unlike
// VersionID it returns to a previous value when an edit is undone.
func (d *Document) AlternativeVersionID() string { return d.altVersionID }

func (d *Document) IsDisposed() bool { return d.disposed }

// CellIndex returns the index of the cell with handle, or -1.
func (d *Document) CellIndex(handle int) int {
	return slices.IndexFunc(d.cells, func(c *Cell) bool { return c.handle == handle })
}

func (d *Document) OnDidChangeContent(fn func(ContentChangedEvent)) (unsubscribe func()) {
	return d.onDidChangeContent.add(fn)
}

func (d *Document) OnWillAddRemoveCells(fn func(WillAddRemoveCellsEvent)) (unsubscribe func()) {
	return d.onWillAddRemoveCells.add(fn)
}

func (d *Document) OnWillDispose(fn func()) (unsubscribe func()) {
	return d.onWillDispose.add(func(struct{}) { fn() })
}

// Dispose detaches every cell and evicts the undo/redo entries of the
// document. Calling it more than once has no effect.
func (d *Document) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	d.onWillDispose.fire(struct{}{})
	d.undoService.RemoveElements(d.uri)
	for _, c := range d.cells {
		c.detach()
	}
	d.cells = nil
	d.onDidChangeContent.clear()
	d.onWillAddRemoveCells.clear()
	d.onWillDispose.clear()
	d.logger.Debug("disposed notebook document", zap.String("uri", d.uri))
}

func (d *Document) createCell(data CellData) *Cell {
	handle := d.handlePool
	d.handlePool++

	c := &Cell{
		handle:           handle,
		uri:              CellURI(d.uri, handle),
		kind:             data.CellKind,
		language:         data.Language,
		mime:             data.Mime,
		buffer:           d.newBuffer(data.Source),
		metadata:         data.Metadata.Clone(),
		internalMetadata: data.InternalMetadata.Clone(),
		alternativeID:    1,
	}
	for _, o := range data.Outputs {
		c.outputs = append(c.outputs, newOutput(o, d.newOutputID))
	}
	d.attach(c)
	return c
}

func (d *Document) attach(c *Cell) {
	c.onDidChangeContent = d.handleCellContentChange
}

// handleCellContentChange records a change of the text content of a cell.
func (d *Document) handleCellContentChange(c *Cell) {
	d.increaseVersionID(true)
	d.fire(pendingEvent{
		rawEvents:   []RawEvent{CellContentEvent{Index: d.CellIndex(c.handle)}},
		versionID:   d.versionID,
		synchronous: boolPtr(true),
	})
}

func (d *Document) generateAltVersionID() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(d.notebookAltID))
	b.WriteByte('_')
	for i, c := range d.cells {
		if i > 0 {
			b.WriteByte(';')
		}
		fmt.Fprintf(&b, "%d,%d", c.handle, c.alternativeID)
	}
	return b.String()
}

func (d *Document) increaseVersionID(transient bool) {
	d.versionID++
	if !transient {
		d.notebookAltID = d.versionID
	}
	d.altVersionID = d.generateAltVersionID()
}

func (d *Document) overwriteAltVersionID(altID string) {
	d.altVersionID = altID
	counter, _, _ := strings.Cut(altID, "_")
	if n, err := strconv.Atoi(counter); err == nil {
		d.notebookAltID = n
	}
}

func (d *Document) postUndoRedo(altID string) {
	d.increaseVersionID(true)
	d.overwriteAltVersionID(altID)
}

func (d *Document) executingHandles() []int {
	var handles []int
	for _, exe := range d.execService.CellExecutionsForNotebook(d.uri) {
		if exe.State == CellExecutionExecuting {
			handles = append(handles, exe.CellHandle)
		}
	}
	return handles
}
