// Package classify turns a decode outcome into the category of chart cell
// that displays it.
package classify

import (
	"fmt"

	"github.com/stlalpha/cpdisp/internal/decode"
	"github.com/stlalpha/cpdisp/internal/ucd"
)

// Category is the kind of cell drawn for one probe.
type Category int

const (
	Normal Category = iota
	PrivateUse
	Control
	Whitespace
	Error
	Incomplete
	BackendError
)

var categoryNames = map[Category]string{
	Normal:       "normal",
	PrivateUse:   "private-use",
	Control:      "control",
	Whitespace:   "whitespace",
	Error:        "error",
	Incomplete:   "incomplete",
	BackendError: "backend-error",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Options are the chart settings that influence classification.
type Options struct {
	Raw     bool // show control characters as decoded text
	Verbose bool // annotate control and whitespace codepoints
}

// Cell is a classified probe. Text is drawn inside the cell; Message, when
// set, goes to the page's message log and the cell shows its tag instead.
type Cell struct {
	Category Category
	Text     string
	Message  string
	Rune     rune // annotated codepoint of verbose control and whitespace cells
}

// Annotated reports whether the cell refers to a message log entry.
func (c Cell) Annotated() bool { return c.Message != "" }

// Classify maps an outcome to a cell. It is a pure function of its
// arguments. fallback names codepoints the character database has no name
// for; nil uses the generic code point label.
func Classify(out decode.Outcome, opts Options, fallback func(rune) string) Cell {
	switch out.Kind {
	case decode.KindInvalid:
		return Cell{Category: Error}
	case decode.KindIncomplete:
		return Cell{Category: Incomplete}
	case decode.KindError:
		if out.Code.IsCharError() {
			return Cell{Category: Error}
		}
		return Cell{Category: BackendError, Message: out.Code.String()}
	}

	if len(out.Runes) == 0 {
		return Cell{Category: Error}
	}
	for _, r := range out.Runes {
		if !ucd.IsAssigned(r) {
			return Cell{Category: Error}
		}
	}

	if !opts.Raw {
		if r, ok := first(out.Runes, ucd.IsControl); ok {
			if !opts.Verbose {
				return Cell{Category: Control}
			}
			return annotate(Cell{Category: Control, Rune: r}, fallback)
		}
		if opts.Verbose {
			if r, ok := first(out.Runes, isVisibleWhitespace); ok {
				return annotate(Cell{Category: Whitespace, Rune: r}, fallback)
			}
		}
	}

	cell := Cell{Category: Normal, Text: DisplayText(out.Runes)}
	if _, ok := first(out.Runes, ucd.IsPrivateUse); ok {
		cell.Category = PrivateUse
	}
	return cell
}

// DisplayText renders runes as cell text, putting a dotted circle in front
// when the sequence contains a combining mark.
func DisplayText(runes []rune) string {
	if _, ok := first(runes, isCombining); ok {
		return string(append([]rune{ucd.DottedCircle}, runes...))
	}
	return string(runes)
}

// Annotation returns the text for codepoint r: two hex digits below U+0100,
// otherwise the U+ notation followed by the character name.
func Annotation(r rune, fallback func(rune) string) (text string, inline bool) {
	if r < 0x100 {
		return fmt.Sprintf("%02x", r), true
	}
	name, ok := ucd.Name(r)
	if !ok {
		if fallback != nil {
			name = fallback(r)
		} else {
			name = ucd.Label(r)
		}
	}
	if r < 0x10000 {
		return fmt.Sprintf("U+%04X %s", r, name), false
	}
	return fmt.Sprintf("U+%06X %s", r, name), false
}

func annotate(c Cell, fallback func(rune) string) Cell {
	text, inline := Annotation(c.Rune, fallback)
	if inline {
		c.Text = text
	} else {
		c.Message = text
	}
	return c
}

func first(runes []rune, pred func(rune) bool) (rune, bool) {
	for _, r := range runes {
		if pred(r) {
			return r, true
		}
	}
	return 0, false
}

func isVisibleWhitespace(r rune) bool {
	return r != ' ' && ucd.IsWhitespace(r)
}

func isCombining(r rune) bool {
	return ucd.CombiningClass(r) > 0
}
