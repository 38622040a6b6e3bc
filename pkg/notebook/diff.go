package notebook

import (
	"golang.org/x/exp/slices"
)

// diffCells computes the splices turning before into after. Elements of
// after for which contains is true already exist in before; every
// other element is an insertion.
func diffCells(before, after []*Cell, contains func(*Cell) bool) []CellSplice {
	var result []CellSplice

	push := func(start, deleteCount int, cells []*Cell) {
		if deleteCount == 0 && len(cells) == 0 {
			return
		}
		if n := len(result); n > 0 && result[n-1].Start+result[n-1].DeleteCount == start {
			result[n-1].DeleteCount += deleteCount
			result[n-1].Cells = append(result[n-1].Cells, cells...)
			return
		}
		result = append(result, CellSplice{Start: start, DeleteCount: deleteCount, Cells: slices.Clone(cells)})
	}

	beforeIdx, afterIdx := 0, 0
	for {
		if beforeIdx == len(before) {
			push(beforeIdx, 0, after[afterIdx:])
			break
		}
		if afterIdx == len(after) {
			push(beforeIdx, len(before)-beforeIdx, nil)
			break
		}

		b, a := before[beforeIdx], after[afterIdx]
		if a == b {
			beforeIdx++
			afterIdx++
			continue
		}

		if contains(a) {
			// a is still there, so b was removed
			push(beforeIdx, 1, nil)
			beforeIdx++
		} else {
			push(beforeIdx, 0, []*Cell{a})
			afterIdx++
		}
	}

	return result
}

// ComputeEdits returns the edits transforming cells into target. A cell
// for which isExecuting reports true is never considered unchanged, so a
// running cell is always replaced instead of kept. isExecuting may be nil.
func ComputeEdits(cells []*Cell, target []CellData, isExecuting func(handle int) bool) []CellEdit {
	equal := func(c *Cell, data CellData) bool {
		if isExecuting != nil && isExecuting(c.handle) {
			return false
		}
		return c.fastEqual(data)
	}

	var edits []CellEdit

	prefix := 0
	for prefix < min(len(cells), len(target)) && equal(cells[prefix], target[prefix]) {
		prefix++
	}

	for i := 0; i < prefix; i++ {
		edits = append(edits, computeCellEdits(i, cells[i], target[i])...)
	}

	if len(cells) == len(target) && prefix == len(cells) {
		return edits
	}

	suffix := 0
	for suffix < min(len(cells), len(target))-prefix &&
		equal(cells[len(cells)-suffix-1], target[len(target)-suffix-1]) {
		suffix++
	}

	edits = append(edits, &ReplaceEdit{
		Index: prefix,
		Count: len(cells) - prefix - suffix,
		Cells: slices.Clone(target[prefix : len(target)-suffix]),
	})

	for i := suffix; i > 0; i-- {
		idx := len(cells) - i
		edits = append(edits, computeCellEdits(idx, cells[idx], target[len(target)-i])...)
	}

	return edits
}

// computeCellEdits returns the metadata and output edits needed for a
// cell whose content is unchanged.
func computeCellEdits(index int, cell *Cell, target CellData) []CellEdit {
	var edits []CellEdit

	if !metadataEqual(cell.metadata, target.Metadata) {
		edits = append(edits, &MetadataEdit{Target: AtIndex(index), Metadata: target.Metadata.Clone()})
	}

	return append(edits, computeOutputEdits(index, cell.outputs, target.Outputs)...)
}

func computeOutputEdits(index int, current []*Output, target []OutputData) []CellEdit {
	if len(current) != len(target) {
		return []CellEdit{&OutputEdit{Target: AtIndex(index), Outputs: target, Append: false}}
	}

	var edits []CellEdit
	for i, o := range target {
		if itemsEqual(current[i].items, o.Items) {
			continue
		}
		edits = append(edits, &OutputItemsEdit{OutputID: current[i].id, Items: cloneItems(o.Items), Append: false})
	}
	return edits
}
