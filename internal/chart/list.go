package chart

import (
	"fmt"
	"io"
	"strings"

	"github.com/stlalpha/cpdisp/internal/ansi"
)

// DefaultListWidth is used when the terminal width is unknown.
const DefaultListWidth = 80

// WriteNames lays names out in columns that fit width.
func WriteNames(w io.Writer, names []string, width int) error {
	if width <= 0 {
		width = DefaultListWidth
	}
	col := 0
	for _, name := range names {
		if n := ansi.VisibleLength(name) + 2; n > col {
			col = n
		}
	}
	if col == 0 {
		return nil
	}
	perLine := width / col
	if perLine < 1 {
		perLine = 1
	}

	var b strings.Builder
	for i, name := range names {
		last := (i+1)%perLine == 0 || i == len(names)-1
		if last {
			b.WriteString(name)
			b.WriteByte('\n')
		} else {
			b.WriteString(ansi.PadVisible(name, col, ' '))
		}
	}
	_, err := fmt.Fprint(w, b.String())
	return err
}
