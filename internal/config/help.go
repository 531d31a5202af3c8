package config

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/stlalpha/cpdisp/internal/render"
)

const helpText = `
Generate nice looking charts of character encodings within the terminal.

Usage: cpdisp [options] codepage

    -h --help : print this help.
    -w --wide : print 2 byte tables.
    -d [directory] : look up charsets as mapping files in this directory first.
    -i : require user input between pages (only if -w is enabled).
    -r --range [from]:[to] : display only pages associated with this range of bytes.
    -n --no-format : no format.
    -N --raw : no format and print control characters raw.
    -x [byte]:[byte]:[byte]... : prefix in hex.
    -c : print hex code and name of control characters and whitespace characters.
    --charset (--icu) : codepage is a charset name (default).
    --locale : codepage is a locale name.
    --mapfile : codepage is the path of a mapping file.
    --output-encoding [charset] : encode the chart for a non UTF-8 terminal.
    --watch : redraw when the mapping file changes (--mapfile only).
    --config [file] : JSON file with default settings.
    --list : list the known charsets.
    --debug : log diagnostics to stderr.

Legend:
`

// legendColor maps an SGR background attribute to its ANSI color index.
func legendColor(attr int) lipgloss.Color {
	if attr >= 100 {
		return lipgloss.Color(fmt.Sprint(attr - 100 + 8))
	}
	return lipgloss.Color(fmt.Sprint(attr - 40))
}

// WriteHelp prints the usage text and the colour legend. Swatches are only
// coloured when w is a terminal that supports it.
func WriteHelp(w io.Writer) error {
	if _, err := io.WriteString(w, helpText); err != nil {
		return err
	}
	r := lipgloss.NewRenderer(w)
	for _, item := range render.Legend {
		swatch := r.NewStyle().Background(legendColor(item.Attr)).Width(4).Render("")
		if _, err := fmt.Fprintf(w, "    %s %s\n", swatch, item.Label); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}
