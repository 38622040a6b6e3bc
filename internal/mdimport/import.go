// Package mdimport converts Markdown documents into notebook cells.
// Top-level fenced code blocks become code cells; the Markdown between
// them becomes markup cells.
package mdimport

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/stateful/notebook/pkg/notebook"
)

const markupLanguage = "markdown"

// Import parses source and returns a snapshot of its cells.
func Import(source []byte) *notebook.Snapshot {
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var cells []notebook.CellData
	pos := 0

	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		block, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			continue
		}

		start, stop, ok := fencedCodeBlockSpan(block, source)
		if !ok {
			cells = append(cells, codeCell(block, source))
			continue
		}
		if markup := markupCell(source[pos:start]); markup != nil {
			cells = append(cells, *markup)
		}
		cells = append(cells, codeCell(block, source))
		pos = stop
	}

	if markup := markupCell(source[pos:]); markup != nil {
		cells = append(cells, *markup)
	}

	return &notebook.Snapshot{Metadata: notebook.Metadata{}, Cells: cells}
}

func markupCell(data []byte) *notebook.CellData {
	content := strings.Trim(string(data), "\r\n")
	if strings.TrimSpace(content) == "" {
		return nil
	}
	return &notebook.CellData{
		CellKind: notebook.MarkupKind,
		Language: markupLanguage,
		Source:   content,
		Outputs:  []notebook.OutputData{},
	}
}

func codeCell(block *ast.FencedCodeBlock, source []byte) notebook.CellData {
	var buf bytes.Buffer
	for i := 0; i < block.Lines().Len(); i++ {
		line := block.Lines().At(i)
		_, _ = buf.Write(line.Value(source))
	}

	return notebook.CellData{
		CellKind: notebook.CodeKind,
		Language: string(block.Language(source)),
		Source:   strings.TrimRight(buf.String(), "\r\n"),
		Outputs:  []notebook.OutputData{},
	}
}

// fencedCodeBlockSpan returns the byte range of the block including
// its opening and closing fences.
func fencedCodeBlockSpan(block *ast.FencedCodeBlock, source []byte) (start, stop int, ok bool) {
	lines := block.Lines()

	switch {
	case block.Info != nil:
		start = lineStart(source, block.Info.Segment.Start)
	case lines.Len() > 0:
		// The opening fence is the line right before the content.
		start = lineStart(source, max(lines.At(0).Start-1, 0))
	default:
		// An empty block without info string has no position.
		return 0, 0, false
	}

	stop = lineEnd(source, start)
	if lines.Len() > 0 {
		stop = lines.At(lines.Len() - 1).Stop
	}
	// Skip the closing fence.
	return start, lineEnd(source, stop), true
}

func lineStart(source []byte, offset int) int {
	if idx := bytes.LastIndexByte(source[:offset], '\n'); idx != -1 {
		return idx + 1
	}
	return 0
}

// lineEnd returns the offset after the line break of the line at offset.
func lineEnd(source []byte, offset int) int {
	if offset >= len(source) {
		return len(source)
	}
	if idx := bytes.IndexByte(source[offset:], '\n'); idx != -1 {
		return offset + idx + 1
	}
	return len(source)
}
