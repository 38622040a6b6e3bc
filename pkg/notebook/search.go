package notebook

import (
	"github.com/pkg/errors"

	"github.com/stateful/notebook/pkg/notebook/textbuf"
)

const defaultMaxResultsPerCell = 1000

type CellMatches struct {
	Cell    *Cell
	Matches []textbuf.FindMatch
}

type CellMatch struct {
	Cell  *Cell
	Match textbuf.FindMatch
}

// CellPosition is a position inside the text of the cell at CellIndex.
type CellPosition struct {
	CellIndex int
	Position  textbuf.Position
}

type FindOptions struct {
	// Filter restricts the searched cells. Nil searches all cells.
	Filter func(*Cell) (bool, error)
	// MaxResultsPerCell defaults to 1000.
	MaxResultsPerCell int
}

// FindMatches returns the matches of every cell in document order.
// Cells without matches are omitted.
func (d *Document) FindMatches(params textbuf.SearchParams, opts FindOptions) ([]CellMatches, error) {
	data, err := params.ParseSearchRequest()
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	limit := opts.MaxResultsPerCell
	if limit <= 0 {
		limit = defaultMaxResultsPerCell
	}

	var results []CellMatches
	for _, c := range d.cells {
		if opts.Filter != nil {
			ok, err := opts.Filter(c)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to filter cell %d", c.handle)
			}
			if !ok {
				continue
			}
		}

		matches := c.buffer.FindMatchesLineByLine(fullRange(c.buffer), data, false, limit)
		if len(matches) > 0 {
			results = append(results, CellMatches{Cell: c, Matches: matches})
		}
	}
	return results, nil
}

// FindNextMatch returns the first match at or after start. When end is
// given, the search wraps around to the first cell and stops at end.
// It returns nil if there is no match.
func (d *Document) FindNextMatch(params textbuf.SearchParams, start CellPosition, end *CellPosition) (*CellMatch, error) {
	if start.CellIndex < 0 || start.CellIndex >= len(d.cells) {
		return nil, errors.WithStack(&InvalidIndexError{Index: start.CellIndex, Length: len(d.cells)})
	}
	if end != nil && (end.CellIndex < 0 || end.CellIndex >= len(d.cells)) {
		return nil, errors.WithStack(&InvalidIndexError{Index: end.CellIndex, Length: len(d.cells)})
	}

	data, err := params.ParseSearchRequest()
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	cellIndex := start.CellIndex
	position := start.Position
	endCell := len(d.cells)
	wrapped := false

	for cellIndex < endCell {
		c := d.cells[cellIndex]

		// Back in the cell the search ends in: only look up to the end position.
		stopHere := end != nil && cellIndex == end.CellIndex && position.IsBefore(end.Position)

		searchRange := fullRange(c.buffer)
		searchRange.StartLineNumber = position.LineNumber
		searchRange.StartColumn = position.Column
		if stopHere {
			searchRange.EndLineNumber = end.Position.LineNumber
			searchRange.EndColumn = end.Position.Column
		}

		if matches := c.buffer.FindMatchesLineByLine(searchRange, data, false, 1); len(matches) > 0 {
			return &CellMatch{Cell: c, Match: matches[0]}, nil
		}
		if stopHere {
			break
		}

		cellIndex++
		if end != nil && !wrapped && cellIndex >= len(d.cells) {
			cellIndex = 0
			endCell = end.CellIndex + 1
			wrapped = true
		}
		position = textbuf.NewPosition(1, 1)
	}

	return nil, nil
}

func fullRange(buf TextBuffer) textbuf.Range {
	lineCount := buf.LineCount()
	return textbuf.NewRange(1, 1, lineCount, buf.LineMaxColumn(lineCount))
}
