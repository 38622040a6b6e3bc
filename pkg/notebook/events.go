package notebook

import (
	"golang.org/x/exp/slices"
)

type ChangeKind int

const (
	ChangeModel                ChangeKind = 1
	ChangeMove                 ChangeKind = 2
	ChangeCellLanguage         ChangeKind = 5
	ChangeCellMetadata         ChangeKind = 7
	ChangeOutput               ChangeKind = 8
	ChangeOutputItem           ChangeKind = 9
	ChangeCellContent          ChangeKind = 10
	ChangeDocumentMetadata     ChangeKind = 11
	ChangeCellInternalMetadata ChangeKind = 12
)

// RawEvent describes a single mutation of the document.
type RawEvent interface {
	Kind() ChangeKind
	// IsTransient reports whether the mutation is excluded from dirty tracking.
	IsTransient() bool
}

// CellSplice describes DeleteCount cells removed at Start and Cells inserted there.
type CellSplice struct {
	Start       int
	DeleteCount int
	Cells       []*Cell
}

type ModelChangeEvent struct {
	Changes []CellSplice
}

type MoveEvent struct {
	Index    int
	Length   int
	NewIndex int
	Cells    []*Cell
}

type CellLanguageEvent struct {
	Index    int
	Language string
}

type CellMetadataEvent struct {
	Index     int
	Metadata  Metadata
	Transient bool
}

type CellInternalMetadataEvent struct {
	Index            int
	InternalMetadata Metadata
}

type OutputEvent struct {
	Index     int
	Outputs   []OutputData
	Append    bool
	Transient bool
}

type OutputItemEvent struct {
	Index     int
	OutputID  string
	Items     []OutputItem
	Append    bool
	Transient bool
}

type CellContentEvent struct {
	Index int
}

type DocumentMetadataEvent struct {
	Metadata  Metadata
	Transient bool
}

func (ModelChangeEvent) Kind() ChangeKind          { return ChangeModel }
func (MoveEvent) Kind() ChangeKind                 { return ChangeMove }
func (CellLanguageEvent) Kind() ChangeKind         { return ChangeCellLanguage }
func (CellMetadataEvent) Kind() ChangeKind         { return ChangeCellMetadata }
func (CellInternalMetadataEvent) Kind() ChangeKind { return ChangeCellInternalMetadata }
func (OutputEvent) Kind() ChangeKind               { return ChangeOutput }
func (OutputItemEvent) Kind() ChangeKind           { return ChangeOutputItem }
func (CellContentEvent) Kind() ChangeKind          { return ChangeCellContent }
func (DocumentMetadataEvent) Kind() ChangeKind     { return ChangeDocumentMetadata }

func (ModelChangeEvent) IsTransient() bool          { return false }
func (MoveEvent) IsTransient() bool                 { return false }
func (CellLanguageEvent) IsTransient() bool         { return false }
func (e CellMetadataEvent) IsTransient() bool       { return e.Transient }
func (CellInternalMetadataEvent) IsTransient() bool { return true }
func (e OutputEvent) IsTransient() bool             { return e.Transient }
func (e OutputItemEvent) IsTransient() bool         { return e.Transient }
func (CellContentEvent) IsTransient() bool          { return false }
func (e DocumentMetadataEvent) IsTransient() bool   { return e.Transient }

// ContentChangedEvent is the merged notification fired once per edit
// transaction, undo, or redo.
type ContentChangedEvent struct {
	RawEvents         []RawEvent
	VersionID         int
	Synchronous       bool
	EndSelectionState *SelectionState
}

// WillAddRemoveCellsEvent is fired right before the cell sequence is spliced.
type WillAddRemoveCellsEvent struct {
	Changes []CellSplice
}

type listenerEntry[T any] struct {
	id int
	fn func(T)
}

type listeners[T any] struct {
	nextID  int
	entries []listenerEntry[T]
}

// add registers fn and returns a function removing it.
func (l *listeners[T]) add(fn func(T)) func() {
	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, listenerEntry[T]{id: id, fn: fn})
	return func() {
		l.entries = slices.DeleteFunc(l.entries, func(e listenerEntry[T]) bool { return e.id == id })
	}
}

func (l *listeners[T]) fire(value T) {
	for _, e := range slices.Clone(l.entries) {
		e.fn(value)
	}
}

func (l *listeners[T]) clear() {
	l.entries = nil
}
