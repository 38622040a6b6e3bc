package notebook

type EditType int

const (
	EditReplace EditType = iota + 1
	EditOutput
	EditMetadata
	EditCellLanguage
	EditDocumentMetadata
	EditMove
	EditOutputItems
	EditPartialMetadata
	EditPartialInternalMetadata
)

func (t EditType) String() string {
	switch t {
	case EditReplace:
		return "replace"
	case EditOutput:
		return "output"
	case EditMetadata:
		return "metadata"
	case EditCellLanguage:
		return "cellLanguage"
	case EditDocumentMetadata:
		return "documentMetadata"
	case EditMove:
		return "move"
	case EditOutputItems:
		return "outputItems"
	case EditPartialMetadata:
		return "partialMetadata"
	case EditPartialInternalMetadata:
		return "partialInternalMetadata"
	default:
		return "unknown"
	}
}

type cellRefKind int

const (
	refNone cellRefKind = iota
	refIndex
	refHandle
)

// CellRef points an edit at a cell either by its current index or
// by its handle. The zero value references nothing.
type CellRef struct {
	kind  cellRefKind
	value int
}

func AtIndex(index int) CellRef { return CellRef{kind: refIndex, value: index} }

func ByHandle(handle int) CellRef { return CellRef{kind: refHandle, value: handle} }

func (r CellRef) IsZero() bool { return r.kind == refNone }

func (r CellRef) Index() (int, bool) { return r.value, r.kind == refIndex }

func (r CellRef) Handle() (int, bool) { return r.value, r.kind == refHandle }

// CellEdit is one operation of an edit batch passed to ApplyEdits.
type CellEdit interface {
	EditType() EditType
	CellMutator
}

// CellMutator applies a resolved edit to the document. cellIndex is the
// index of the targeted cell, or -1 for edits without a cell target.
type CellMutator interface {
	mutate(d *Document, cellIndex int, tx editTransaction) error
}

// ReplaceEdit removes Count cells at Index and inserts Cells in their place.
type ReplaceEdit struct {
	Index int
	Count int
	Cells []CellData
}

// OutputEdit replaces the outputs of a cell, or appends to them.
// The cell is selected by Target, or by OutputID naming one of its
// outputs. An OutputID matching no output skips the edit.
type OutputEdit struct {
	Target   CellRef
	OutputID string
	Outputs  []OutputData
	Append   bool
}

// OutputItemsEdit replaces or appends the items of a single output.
type OutputItemsEdit struct {
	OutputID string
	Items    []OutputItem
	Append   bool
}

// MetadataEdit replaces the whole metadata of a cell.
type MetadataEdit struct {
	Target   CellRef
	Metadata Metadata
}

// PartialMetadataEdit merges keys into the metadata of a cell.
// A nil value removes the key.
type PartialMetadataEdit struct {
	Target   CellRef
	Metadata Metadata
}

// PartialInternalMetadataEdit merges keys into the internal metadata of
// a cell. A nil value removes the key. These edits are never undoable.
type PartialInternalMetadataEdit struct {
	Target           CellRef
	InternalMetadata Metadata
}

type CellLanguageEdit struct {
	Target   CellRef
	Language string
}

type DocumentMetadataEdit struct {
	Metadata Metadata
}

// MoveEdit moves Length cells starting at Index so that they start at NewIndex.
type MoveEdit struct {
	Index    int
	Length   int
	NewIndex int
}

func (*ReplaceEdit) EditType() EditType                 { return EditReplace }
func (*OutputEdit) EditType() EditType                  { return EditOutput }
func (*OutputItemsEdit) EditType() EditType             { return EditOutputItems }
func (*MetadataEdit) EditType() EditType                { return EditMetadata }
func (*PartialMetadataEdit) EditType() EditType         { return EditPartialMetadata }
func (*PartialInternalMetadataEdit) EditType() EditType { return EditPartialInternalMetadata }
func (*CellLanguageEdit) EditType() EditType            { return EditCellLanguage }
func (*DocumentMetadataEdit) EditType() EditType        { return EditDocumentMetadata }
func (*MoveEdit) EditType() EditType                    { return EditMove }

// cellTarget returns the cell reference of edits addressing a single cell.
func cellTarget(edit CellEdit) (CellRef, bool) {
	switch e := edit.(type) {
	case *OutputEdit:
		return e.Target, true
	case *MetadataEdit:
		return e.Target, true
	case *PartialMetadataEdit:
		return e.Target, true
	case *PartialInternalMetadataEdit:
		return e.Target, true
	case *CellLanguageEdit:
		return e.Target, true
	default:
		return CellRef{}, false
	}
}
