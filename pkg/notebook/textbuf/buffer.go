// Package textbuf holds the line-oriented text buffer used for the
// content of a single notebook cell.
package textbuf

import (
	"strings"
	"unicode/utf8"
)

// FindMatch is a single search hit.
type FindMatch struct {
	Range   Range    `json:"range"`
	Matches []string `json:"matches,omitempty"`
}

// Buffer is an in-memory text buffer split into lines.
type Buffer struct {
	lines []string
	eol   string
}

func New(text string) *Buffer {
	b := &Buffer{}
	b.SetValue(text)
	return b
}

func (b *Buffer) SetValue(text string) {
	b.eol = "\n"
	if strings.Contains(text, "\r\n") {
		b.eol = "\r\n"
	}
	b.lines = strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func (b *Buffer) Value() string {
	return strings.Join(b.lines, b.eol)
}

func (b *Buffer) EOL() string {
	return b.eol
}

func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// LineContent returns the text of the 1-based line without the line break.
func (b *Buffer) LineContent(lineNumber int) string {
	if lineNumber < 1 || lineNumber > len(b.lines) {
		return ""
	}
	return b.lines[lineNumber-1]
}

// LineMaxColumn returns the column right after the last character of the line.
func (b *Buffer) LineMaxColumn(lineNumber int) int {
	return utf8.RuneCountInString(b.LineContent(lineNumber)) + 1
}

func (b *Buffer) LinesContent() []string {
	return append([]string(nil), b.lines...)
}

// FindMatchesLineByLine returns at most limit matches inside searchRange.
// Matches never span lines. When captureMatches is set, the matched text
// and its submatches are returned with each hit.
func (b *Buffer) FindMatchesLineByLine(searchRange Range, data *SearchData, captureMatches bool, limit int) []FindMatch {
	if data == nil || data.Regex == nil || limit <= 0 {
		return nil
	}

	var result []FindMatch

	startLine := max(searchRange.StartLineNumber, 1)
	endLine := min(searchRange.EndLineNumber, len(b.lines))

	for lineNumber := startLine; lineNumber <= endLine; lineNumber++ {
		line := []rune(b.lines[lineNumber-1])

		from := 0
		if lineNumber == searchRange.StartLineNumber {
			from = clamp(searchRange.StartColumn-1, 0, len(line))
		}
		to := len(line)
		if lineNumber == searchRange.EndLineNumber {
			to = clamp(searchRange.EndColumn-1, from, len(line))
		}

		segment := string(line[from:to])
		for _, loc := range data.Regex.FindAllStringSubmatchIndex(segment, -1) {
			if loc[0] == loc[1] {
				continue
			}

			start := from + utf8.RuneCountInString(segment[:loc[0]])
			end := from + utf8.RuneCountInString(segment[:loc[1]])
			if !data.isWholeWord(line, start, end) {
				continue
			}

			match := FindMatch{
				Range: NewRange(lineNumber, start+1, lineNumber, end+1),
			}
			if captureMatches {
				for i := 0; i+1 < len(loc); i += 2 {
					if loc[i] < 0 {
						match.Matches = append(match.Matches, "")
						continue
					}
					match.Matches = append(match.Matches, segment[loc[i]:loc[i+1]])
				}
			}

			result = append(result, match)
			if len(result) >= limit {
				return result
			}
		}
	}

	return result
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
