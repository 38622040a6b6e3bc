package notebook

import (
	"reflect"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/stateful/notebook/pkg/notebook/lcs"
)

func (d *Document) replaceCells(index, count int, data []CellData, tx editTransaction) error {
	if count == 0 && len(data) == 0 {
		return nil
	}
	count = min(count, len(d.cells)-index)

	oldCells := slices.Clone(d.cells)
	oldHandles := make(map[int]struct{}, len(oldCells))
	for _, c := range oldCells {
		oldHandles[c.handle] = struct{}{}
	}

	for _, c := range d.cells[index : index+count] {
		c.detach()
	}

	newCells := make([]*Cell, 0, len(data))
	for _, cd := range data {
		c := d.createCell(cd)
		d.newCellsFromLastEdit[c.handle] = struct{}{}
		newCells = append(newCells, c)
	}

	cells := slices.Replace(slices.Clone(d.cells), index, index+count, newCells...)
	splices := diffCells(d.cells, cells, func(c *Cell) bool {
		_, ok := oldHandles[c.handle]
		return ok
	})

	d.onWillAddRemoveCells.fire(WillAddRemoveCellsEvent{Changes: splices})
	d.cells = cells

	if tx.computeUndoRedo {
		deleted := make([][]*Cell, len(splices))
		for i, s := range splices {
			deleted[i] = slices.Clone(oldCells[s.Start : s.Start+s.DeleteCount])
		}
		d.ops.pushEditOperation(&command{
			resource: d.uri,
			label:    "Insert Cell",
			code:     codeInsertCell,
			undo: func() error {
				for i, s := range splices {
					if err := d.replaceNewCells(s.Start, len(s.Cells), deleted[i], true, nil); err != nil {
						return err
					}
				}
				return nil
			},
			redo: func() error {
				for i := len(splices) - 1; i >= 0; i-- {
					s := splices[i]
					if err := d.replaceNewCells(s.Start, len(deleted[i]), s.Cells, true, nil); err != nil {
						return err
					}
				}
				return nil
			},
		}, tx.beginSelection, nil, d.altVersionID, tx.group)
	}

	d.fire(pendingEvent{
		rawEvents:   []RawEvent{ModelChangeEvent{Changes: splices}},
		versionID:   d.versionID,
		synchronous: boolPtr(tx.synchronous),
	})
	return nil
}

// replaceNewCells swaps count cells at index for already existing cells.
func (d *Document) replaceNewCells(index, count int, cells []*Cell, synchronous bool, endSelection *SelectionState) error {
	if index < 0 || count < 0 || index+count > len(d.cells) {
		return errors.WithStack(&InvalidIndexError{Index: index, Length: len(d.cells)})
	}

	for _, c := range d.cells[index : index+count] {
		c.detach()
	}
	for _, c := range cells {
		d.attach(c)
	}

	changes := []CellSplice{{Start: index, DeleteCount: count, Cells: cells}}
	d.onWillAddRemoveCells.fire(WillAddRemoveCellsEvent{Changes: changes})
	d.cells = slices.Replace(slices.Clone(d.cells), index, index+count, cells...)

	d.fire(pendingEvent{
		rawEvents:    []RawEvent{ModelChangeEvent{Changes: changes}},
		versionID:    d.versionID,
		synchronous:  boolPtr(synchronous),
		endSelection: endSelection,
	})
	return nil
}

func (d *Document) moveCells(index, length, newIndex int, synchronous, pushUndo bool, beforeSelection, endSelection *SelectionState, group *UndoRedoGroup) error {
	if err := d.validateMove(index, length, newIndex); err != nil {
		return err
	}

	if pushUndo {
		d.ops.pushEditOperation(&command{
			resource: d.uri,
			label:    "Move Cell",
			code:     codeMoveCell,
			undo: func() error {
				return d.moveCells(newIndex, length, index, true, false, beforeSelection, endSelection, group)
			},
			redo: func() error {
				return d.moveCells(index, length, newIndex, true, false, beforeSelection, endSelection, group)
			},
		}, beforeSelection, endSelection, d.altVersionID, group)
	}

	moved := slices.Clone(d.cells[index : index+length])
	rest := slices.Delete(slices.Clone(d.cells), index, index+length)
	d.cells = slices.Insert(rest, newIndex, moved...)

	d.fire(pendingEvent{
		rawEvents:    []RawEvent{MoveEvent{Index: index, Length: length, NewIndex: newIndex, Cells: moved}},
		versionID:    d.versionID,
		synchronous:  boolPtr(synchronous),
		endSelection: endSelection,
	})
	return nil
}

func (d *Document) updateDocumentMetadata(metadata Metadata, tx editTransaction) {
	if metadataEqual(d.metadata, metadata) {
		return
	}

	dirty := metadataChanged(d.metadata, metadata, d.transient.TransientDocumentMetadata)
	if dirty && tx.computeUndoRedo {
		old := d.metadata
		undoTx := tx.withoutUndo()
		d.ops.pushEditOperation(&command{
			resource: d.uri,
			label:    "Update Notebook Metadata",
			code:     codeTextBufferEdit,
			undo: func() error {
				d.updateDocumentMetadata(old, undoTx)
				return nil
			},
			redo: func() error {
				d.updateDocumentMetadata(metadata, undoTx)
				return nil
			},
		}, tx.beginSelection, nil, d.altVersionID, tx.group)
	}

	d.metadata = metadata.Clone()
	d.fire(pendingEvent{
		rawEvents:   []RawEvent{DocumentMetadataEvent{Metadata: d.metadata.Clone(), Transient: !dirty}},
		versionID:   d.versionID,
		synchronous: boolPtr(true),
	})
}

func (d *Document) changeCellMetadataPartial(cell *Cell, partial Metadata, tx editTransaction) {
	d.changeCellMetadata(cell, mergeMetadata(cell.metadata, partial), tx)
}

func (d *Document) changeCellMetadata(cell *Cell, metadata Metadata, tx editTransaction) {
	if metadataEqual(cell.metadata, metadata) {
		return
	}

	dirty := metadataChanged(cell.metadata, metadata, d.transient.TransientCellMetadata)
	if dirty && tx.computeUndoRedo {
		index := slices.Index(d.cells, cell)
		old := cell.metadata
		undoTx := tx.withoutUndo()
		update := func(m Metadata) error {
			if c, ok := d.Cell(index); ok {
				d.changeCellMetadata(c, m, undoTx)
			}
			return nil
		}
		d.ops.pushEditOperation(&command{
			resource: d.uri,
			label:    "Update Cell Metadata",
			code:     codeTextBufferEdit,
			undo:     func() error { return update(old) },
			redo:     func() error { return update(metadata) },
		}, tx.beginSelection, nil, d.altVersionID, tx.group)
	}

	cell.metadata = metadata.Clone()
	d.fire(pendingEvent{
		rawEvents:   []RawEvent{CellMetadataEvent{Index: slices.Index(d.cells, cell), Metadata: cell.metadata.Clone(), Transient: !dirty}},
		versionID:   d.versionID,
		synchronous: boolPtr(true),
	})
}

func (d *Document) changeCellInternalMetadataPartial(cell *Cell, partial Metadata) {
	cell.internalMetadata = mergeMetadata(cell.internalMetadata, partial)
	d.fire(pendingEvent{
		rawEvents:   []RawEvent{CellInternalMetadataEvent{Index: slices.Index(d.cells, cell), InternalMetadata: cell.internalMetadata.Clone()}},
		versionID:   d.versionID,
		synchronous: boolPtr(true),
	})
}

func (d *Document) changeCellLanguage(cell *Cell, language string, tx editTransaction) {
	if cell.language == language {
		return
	}

	old := cell.language
	cell.language = language

	if tx.computeUndoRedo {
		undoTx := tx.withoutUndo()
		d.ops.pushEditOperation(&command{
			resource: d.uri,
			label:    "Update Cell Language",
			code:     codeTextBufferEdit,
			undo: func() error {
				d.changeCellLanguage(cell, old, undoTx)
				return nil
			},
			redo: func() error {
				d.changeCellLanguage(cell, language, undoTx)
				return nil
			},
		}, tx.beginSelection, nil, d.altVersionID, tx.group)
	}

	d.fire(pendingEvent{
		rawEvents:   []RawEvent{CellLanguageEvent{Index: slices.Index(d.cells, cell), Language: language}},
		versionID:   d.versionID,
		synchronous: boolPtr(true),
	})
}

// replaceOutputs replaces all outputs of cell. When more than one output
// is given only the outputs that differ are spliced, keeping the
// identity of the unchanged ones.
func (d *Document) replaceOutputs(cell *Cell, outputs []OutputData) {
	if len(outputs) == 0 && len(cell.outputs) == 0 {
		return
	}

	if len(outputs) <= 1 {
		d.spliceOutputs(cell, outputSplice{start: 0, deleteCount: len(cell.outputs), newOutputs: d.newOutputs(outputs)}, false)
		return
	}

	original := make([]uint64, len(cell.outputs))
	for i, o := range cell.outputs {
		original[i] = hashItems(o.items)
	}
	modified := make([]uint64, len(outputs))
	for i, o := range outputs {
		modified[i] = hashItems(o.Items)
	}

	changes := lcs.ComputeDiff(original, modified)
	for i := len(changes) - 1; i >= 0; i-- {
		ch := changes[i]
		d.spliceOutputs(cell, outputSplice{
			start:       ch.OriginalStart,
			deleteCount: ch.OriginalLength,
			newOutputs:  d.newOutputs(outputs[ch.ModifiedStart : ch.ModifiedStart+ch.ModifiedLength]),
		}, false)
	}
}

func (d *Document) spliceOutputs(cell *Cell, splice outputSplice, appended bool) {
	if splice.deleteCount == 0 && len(splice.newOutputs) == 0 {
		return
	}

	cell.spliceOutputs(splice)
	d.fire(pendingEvent{
		rawEvents: []RawEvent{OutputEvent{
			Index:     slices.Index(d.cells, cell),
			Outputs:   outputsToData(cell.outputs),
			Append:    appended,
			Transient: d.transient.TransientOutputs,
		}},
		versionID:   d.versionID,
		synchronous: boolPtr(true),
	})
}

func (d *Document) changeOutputItems(cell *Cell, outputID string, items []OutputItem, appended bool) {
	if !cell.changeOutputItems(outputID, appended, items) {
		return
	}
	d.fire(pendingEvent{
		rawEvents: []RawEvent{OutputItemEvent{
			Index:     slices.Index(d.cells, cell),
			OutputID:  outputID,
			Items:     cloneItems(items),
			Append:    appended,
			Transient: d.transient.TransientOutputs,
		}},
		versionID:   d.versionID,
		synchronous: boolPtr(true),
	})
}

func (d *Document) newOutputs(data []OutputData) []*Output {
	result := make([]*Output, 0, len(data))
	for _, o := range data {
		result = append(result, newOutput(o, d.newOutputID))
	}
	return result
}

// mergeMetadata returns base with the keys of partial applied on top.
// A nil value removes the key.
func mergeMetadata(base, partial Metadata) Metadata {
	result := base.Clone()
	for k, v := range partial {
		if v == nil {
			delete(result, k)
			continue
		}
		result[k] = v
	}
	return result
}

func metadataEqual(a, b Metadata) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// metadataChanged reports whether a key outside of transient differs.
func metadataChanged(a, b Metadata, transient map[string]bool) bool {
	for k, v := range a {
		if !transient[k] && !reflect.DeepEqual(v, b[k]) {
			return true
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok && !transient[k] {
			return true
		}
	}
	return false
}
