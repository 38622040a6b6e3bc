package notebook

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

type ApplyOptions struct {
	// Synchronous is passed through to the fired change event.
	Synchronous bool
	// BeginSelection is captured by the undo entry and restored on undo.
	BeginSelection *SelectionState
	// ComputeEndSelection is called once after the edits are applied,
	// and only if anything changed.
	ComputeEndSelection func() *SelectionState
	UndoGroup           *UndoRedoGroup
	// ComputeUndoRedo records the inverse operations of the batch with
	// the undo/redo service.
	ComputeUndoRedo bool
}

// editTransaction carries the per-batch context into mutators.
type editTransaction struct {
	synchronous     bool
	computeUndoRedo bool
	beginSelection  *SelectionState
	group           *UndoRedoGroup
}

func (tx editTransaction) withoutUndo() editTransaction {
	tx.computeUndoRedo = false
	return tx
}

type resolvedEdit struct {
	edit          CellEdit
	cellIndex     int
	end           int
	hasEnd        bool
	originalIndex int
}

// ApplyEdits applies a batch of edits as one transaction and fires a
// single ContentChangedEvent. It reports whether anything changed.
//
// All cell references are resolved and validated before the first
// mutation, so an *InvalidIndexError or *InvalidEditError returned for
// a malformed batch leaves the document untouched. An error raised
// while the batch is being applied does not roll back the edits that
// already took effect: those are still versioned, recorded as one undo
// entry, and announced, so the caller can undo them.
func (d *Document) ApplyEdits(edits []CellEdit, opts ApplyOptions) (changed bool, err error) {
	if d.disposed {
		return false, ErrDisposed
	}

	resolved, err := d.resolveEdits(edits)
	if err != nil {
		return false, err
	}

	d.logger.Debug("begin applying edits", zap.String("uri", d.uri), zap.Int("count", len(edits)))

	d.beginBatch()
	defer d.endBatch()

	d.ops.pushStackElement(d.altVersionID, nil)

	computeUndoRedo := opts.ComputeUndoRedo
	if computeUndoRedo && d.isOnlyEditingMetadataOnNewCells(edits) {
		if !d.ops.appendPreviousOperation() {
			computeUndoRedo = false
		}
	} else if computeUndoRedo {
		clear(d.newCellsFromLastEdit)
	}

	defer func() {
		if d.batch.isEmpty() {
			return
		}
		var endSelection *SelectionState
		if opts.ComputeEndSelection != nil {
			endSelection = opts.ComputeEndSelection()
		}
		d.increaseVersionID(d.ops.isUndoStackEmpty() && !d.batch.isDirty())
		d.ops.pushStackElement(d.altVersionID, endSelection)
		d.fire(pendingEvent{
			versionID:    d.versionID,
			synchronous:  boolPtr(opts.Synchronous),
			endSelection: endSelection,
		})
		changed = true
		d.logger.Debug("end applying edits", zap.String("uri", d.uri), zap.Int("count", len(edits)), zap.Int("version", d.versionID))
	}()

	tx := editTransaction{
		synchronous:     opts.Synchronous,
		computeUndoRedo: computeUndoRedo,
		beginSelection:  opts.BeginSelection,
		group:           opts.UndoGroup,
	}

	for _, r := range orderEdits(resolved) {
		if err := r.edit.mutate(d, r.cellIndex, tx); err != nil {
			d.logger.Error("failed to apply edits", zap.String("uri", d.uri), zap.Error(err))
			return false, err
		}
	}

	return false, nil
}

// resolveEdits maps every edit to the index of the cell it targets.
// Output item edits whose output cannot be found are dropped.
func (d *Document) resolveEdits(edits []CellEdit) ([]resolvedEdit, error) {
	result := make([]resolvedEdit, 0, len(edits))

	for i, edit := range edits {
		r := resolvedEdit{edit: edit, originalIndex: i, hasEnd: true}

		switch e := edit.(type) {
		case nil:
			return nil, errors.WithStack(&InvalidEditError{Reason: fmt.Sprintf("edit %d is nil", i)})
		case *ReplaceEdit:
			if e.Index < 0 || e.Index > len(d.cells) {
				return nil, errors.WithStack(&InvalidIndexError{Index: e.Index, Length: len(d.cells)})
			}
			if e.Count < 0 {
				return nil, errors.WithStack(&InvalidEditError{EditType: EditReplace, Reason: fmt.Sprintf("negative count %d", e.Count)})
			}
			r.cellIndex = e.Index
			r.end = e.Index + e.Count
		case *MoveEdit:
			if err := d.validateMove(e.Index, e.Length, e.NewIndex); err != nil {
				return nil, err
			}
			r.cellIndex = e.Index
			r.end = e.Index
		case *DocumentMetadataEdit:
			r.cellIndex = -1
			r.hasEnd = false
		case *OutputItemsEdit:
			idx, err := d.resolveOutputID(e.OutputID, edits[:i])
			if err != nil {
				return nil, err
			}
			if idx < 0 {
				continue
			}
			r.cellIndex = idx
			r.end = idx
		case *OutputEdit:
			if e.OutputID == "" {
				idx, err := d.resolveRef(EditOutput, e.Target)
				if err != nil {
					return nil, err
				}
				r.cellIndex = idx
				r.end = idx
				break
			}
			if !e.Target.IsZero() {
				return nil, errors.WithStack(&InvalidEditError{EditType: EditOutput, Reason: "target and outputId are mutually exclusive"})
			}
			idx, err := d.resolveOutputID(e.OutputID, edits[:i])
			if err != nil {
				return nil, err
			}
			if idx < 0 {
				continue
			}
			r.cellIndex = idx
			r.end = idx
		default:
			ref, ok := cellTarget(edit)
			if !ok {
				return nil, errors.WithStack(&InvalidEditError{EditType: edit.EditType(), Reason: "unsupported edit"})
			}
			idx, err := d.resolveRef(edit.EditType(), ref)
			if err != nil {
				return nil, err
			}
			r.cellIndex = idx
			r.end = idx
		}

		result = append(result, r)
	}

	return result, nil
}

func (d *Document) resolveRef(editType EditType, ref CellRef) (int, error) {
	if idx, ok := ref.Index(); ok {
		if idx < 0 || idx >= len(d.cells) {
			return -1, errors.WithStack(&InvalidIndexError{Index: idx, Length: len(d.cells)})
		}
		return idx, nil
	}
	if handle, ok := ref.Handle(); ok {
		idx := d.CellIndex(handle)
		if idx < 0 {
			return -1, errors.WithStack(&InvalidEditError{EditType: editType, Reason: fmt.Sprintf("no cell with handle %d", handle)})
		}
		return idx, nil
	}
	return -1, errors.WithStack(&InvalidEditError{EditType: editType, Reason: "missing cell reference"})
}

func (d *Document) validateMove(index, length, newIndex int) error {
	if length < 0 {
		return errors.WithStack(&InvalidEditError{EditType: EditMove, Reason: fmt.Sprintf("negative length %d", length)})
	}
	if index < 0 || index >= len(d.cells) || index+length > len(d.cells) {
		return errors.WithStack(&InvalidIndexError{Index: index, Length: len(d.cells)})
	}
	if newIndex < 0 || newIndex >= len(d.cells) || newIndex+length > len(d.cells) {
		return errors.WithStack(&InvalidIndexError{Index: newIndex, Length: len(d.cells)})
	}
	return nil
}

func (d *Document) cellIndexWithOutputID(outputID string) int {
	return slices.IndexFunc(d.cells, func(c *Cell) bool { return c.outputIndex(outputID) >= 0 })
}

// resolveOutputID returns the index of the cell owning the output, which
// may be created by one of the earlier edits of the same batch. It
// returns -1 when no cell has the output.
func (d *Document) resolveOutputID(outputID string, earlier []CellEdit) (int, error) {
	if idx := d.cellIndexWithOutputID(outputID); idx >= 0 {
		return idx, nil
	}

	for _, edit := range earlier {
		e, ok := edit.(*OutputEdit)
		if !ok {
			continue
		}
		if !slices.ContainsFunc(e.Outputs, func(o OutputData) bool { return o.OutputID == outputID }) {
			continue
		}
		if e.OutputID != "" {
			if idx := d.cellIndexWithOutputID(e.OutputID); idx >= 0 {
				return idx, nil
			}
			continue
		}
		return d.resolveRef(EditOutput, e.Target)
	}

	d.logger.Debug("skipping edit of unknown output", zap.String("uri", d.uri), zap.String("outputId", outputID))
	return -1, nil
}

func (d *Document) isOnlyEditingMetadataOnNewCells(edits []CellEdit) bool {
	for _, edit := range edits {
		var ref CellRef
		switch e := edit.(type) {
		case *PartialInternalMetadataEdit:
			continue
		case *MetadataEdit:
			ref = e.Target
		case *PartialMetadataEdit:
			ref = e.Target
		default:
			return false
		}

		var handle int
		if idx, ok := ref.Index(); ok {
			c, ok := d.Cell(idx)
			if !ok {
				return false
			}
			handle = c.handle
		} else if h, ok := ref.Handle(); ok {
			handle = h
		}
		if _, ok := d.newCellsFromLastEdit[handle]; !ok {
			return false
		}
	}
	return true
}

// orderEdits merges output appends and sorts the batch so that edits
// shifting cell indexes are applied from the end of the document.
func orderEdits(edits []resolvedEdit) []resolvedEdit {
	merged := mergeOutputEdits(edits)

	slices.SortStableFunc(merged, func(a, b resolvedEdit) int {
		switch {
		case !a.hasEnd && !b.hasEnd:
			return b.originalIndex - a.originalIndex
		case !a.hasEnd:
			return -1
		case !b.hasEnd:
			return 1
		case a.end != b.end:
			return b.end - a.end
		default:
			return b.originalIndex - a.originalIndex
		}
	})

	result := make([]resolvedEdit, 0, len(merged))
	for start := 0; start < len(merged); {
		end := start + 1
		for end < len(merged) && merged[end].cellIndex == merged[start].cellIndex {
			end++
		}

		var others, replaces []resolvedEdit
		for _, r := range merged[start:end] {
			if r.edit.EditType() == EditReplace {
				replaces = append(replaces, r)
			} else {
				others = append(others, r)
			}
		}
		slices.Reverse(others)
		result = append(result, others...)
		result = append(result, replaces...)

		start = end
	}

	return result
}

func mergeOutputEdits(edits []resolvedEdit) []resolvedEdit {
	merged := make([]resolvedEdit, 0, len(edits))

	for _, r := range edits {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			prev, prevOK := last.edit.(*OutputEdit)
			cur, curOK := r.edit.(*OutputEdit)

			if prevOK && curOK && cur.Append && last.cellIndex == r.cellIndex {
				switch {
				case prev.Append:
					outputs := append(slices.Clone(prev.Outputs), cur.Outputs...)
					last.edit = &OutputEdit{Target: prev.Target, OutputID: prev.OutputID, Outputs: outputs, Append: true}
					continue
				case len(prev.Outputs) == 0:
					last.edit = &OutputEdit{Target: prev.Target, OutputID: prev.OutputID, Outputs: cur.Outputs, Append: false}
					continue
				}
			}
		}
		merged = append(merged, r)
	}

	return merged
}

func (e *ReplaceEdit) mutate(d *Document, _ int, tx editTransaction) error {
	return d.replaceCells(e.Index, e.Count, e.Cells, tx)
}

func (e *MoveEdit) mutate(d *Document, _ int, tx editTransaction) error {
	return d.moveCells(e.Index, e.Length, e.NewIndex, tx.synchronous, tx.computeUndoRedo, tx.beginSelection, nil, tx.group)
}

func (e *DocumentMetadataEdit) mutate(d *Document, _ int, tx editTransaction) error {
	d.updateDocumentMetadata(e.Metadata, tx)
	return nil
}

func (e *OutputEdit) mutate(d *Document, cellIndex int, _ editTransaction) error {
	cell, err := d.cellAt(cellIndex)
	if err != nil {
		return err
	}
	if e.Append {
		d.spliceOutputs(cell, outputSplice{start: len(cell.outputs), newOutputs: d.newOutputs(e.Outputs)}, true)
	} else {
		d.replaceOutputs(cell, e.Outputs)
	}
	return nil
}

func (e *OutputItemsEdit) mutate(d *Document, cellIndex int, _ editTransaction) error {
	cell, err := d.cellAt(cellIndex)
	if err != nil {
		return err
	}
	d.changeOutputItems(cell, e.OutputID, e.Items, e.Append)
	return nil
}

func (e *MetadataEdit) mutate(d *Document, cellIndex int, tx editTransaction) error {
	cell, err := d.cellAt(cellIndex)
	if err != nil {
		return err
	}
	d.changeCellMetadata(cell, e.Metadata, tx)
	return nil
}

func (e *PartialMetadataEdit) mutate(d *Document, cellIndex int, tx editTransaction) error {
	cell, err := d.cellAt(cellIndex)
	if err != nil {
		return err
	}
	d.changeCellMetadataPartial(cell, e.Metadata, tx)
	return nil
}

func (e *PartialInternalMetadataEdit) mutate(d *Document, cellIndex int, _ editTransaction) error {
	cell, err := d.cellAt(cellIndex)
	if err != nil {
		return err
	}
	d.changeCellInternalMetadataPartial(cell, e.InternalMetadata)
	return nil
}

func (e *CellLanguageEdit) mutate(d *Document, cellIndex int, tx editTransaction) error {
	cell, err := d.cellAt(cellIndex)
	if err != nil {
		return err
	}
	d.changeCellLanguage(cell, e.Language, tx)
	return nil
}

func (d *Document) cellAt(index int) (*Cell, error) {
	c, ok := d.Cell(index)
	if !ok {
		return nil, errors.WithStack(&InvalidIndexError{Index: index, Length: len(d.cells)})
	}
	return c, nil
}
