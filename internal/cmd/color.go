package cmd

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"
)

// colorizer colors text only when writing to a terminal.
type colorizer struct {
	enabled bool
}

func newColorizer(w io.Writer) colorizer {
	f, ok := w.(*os.File)
	if !ok {
		return colorizer{}
	}
	return colorizer{enabled: isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())}
}

func (c colorizer) color(s, style string) string {
	if !c.enabled {
		return s
	}
	return ansi.Color(s, style)
}
