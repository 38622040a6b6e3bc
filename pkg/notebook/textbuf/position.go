package textbuf

import "fmt"

// Position is a 1-based line and column pair. Columns count runes.
type Position struct {
	LineNumber int `json:"lineNumber"`
	Column     int `json:"column"`
}

func NewPosition(lineNumber, column int) Position {
	return Position{LineNumber: lineNumber, Column: column}
}

// IsBefore reports whether p is strictly before other.
func (p Position) IsBefore(other Position) bool {
	if p.LineNumber != other.LineNumber {
		return p.LineNumber < other.LineNumber
	}
	return p.Column < other.Column
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.LineNumber, p.Column)
}

// Range is an inclusive start and exclusive end position.
type Range struct {
	StartLineNumber int `json:"startLineNumber"`
	StartColumn     int `json:"startColumn"`
	EndLineNumber   int `json:"endLineNumber"`
	EndColumn       int `json:"endColumn"`
}

func NewRange(startLineNumber, startColumn, endLineNumber, endColumn int) Range {
	return Range{
		StartLineNumber: startLineNumber,
		StartColumn:     startColumn,
		EndLineNumber:   endLineNumber,
		EndColumn:       endColumn,
	}
}

func (r Range) Start() Position { return NewPosition(r.StartLineNumber, r.StartColumn) }

func (r Range) End() Position { return NewPosition(r.EndLineNumber, r.EndColumn) }

func (r Range) String() string {
	return fmt.Sprintf("[%s -> %s]", r.Start(), r.End())
}
