package render

import (
	"github.com/stlalpha/cpdisp/internal/ansi"
	"github.com/stlalpha/cpdisp/internal/classify"
)

// Attr returns the SGR background attribute a cell is drawn with.
func Attr(c classify.Cell) int {
	switch c.Category {
	case classify.Error:
		return ansi.BgRed
	case classify.Incomplete:
		return ansi.BgGreen
	case classify.BackendError:
		return ansi.BgYellow
	case classify.Control:
		if c.Text != "" || c.Annotated() {
			return ansi.BgBrightBlue
		}
		return ansi.BgBlue
	case classify.Whitespace:
		return ansi.BgLightGray
	case classify.PrivateUse:
		return ansi.BgMagenta
	default:
		return ansi.BgDefault
	}
}

// Legend lists the categories in the order the help text shows them.
var Legend = []struct {
	Attr  int
	Label string
}{
	{ansi.BgBlue, "control character"},
	{ansi.BgBrightBlue, "control character, verbose (-c)"},
	{ansi.BgLightGray, "whitespace, verbose (-c)"},
	{ansi.BgRed, "invalid or unassigned"},
	{ansi.BgGreen, "incomplete multi-byte sequence"},
	{ansi.BgYellow, "conversion error, see message below the table"},
	{ansi.BgMagenta, "private use character"},
}
