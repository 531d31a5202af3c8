// Package ansi holds the escape sequences the chart is drawn with.
package ansi

import (
	"fmt"
	"strings"
)

const (
	// SaveCursor and RestoreCursor are the DEC forms (DECSC/DECRC); the grid
	// origin is saved once per page and every cell is addressed from it.
	SaveCursor    = "\x1b7"
	RestoreCursor = "\x1b8"
	// Reset clears all attributes.
	Reset = "\x1b[0m"
	// ReverseOn and ReverseOff toggle reverse video for the ruler.
	ReverseOn  = "\x1b[7m"
	ReverseOff = "\x1b[27m"

	// LeftToRightOverride and PopDirectional wrap cell text so right to
	// left glyphs stay inside their column.
	LeftToRightOverride = '\u202d'
	PopDirectional      = '\u202c'
)

// SGR background attributes used by the chart palette.
const (
	BgRed        = 41
	BgGreen      = 42
	BgYellow     = 43
	BgBlue       = 44
	BgMagenta    = 45
	BgLightGray  = 47
	BgDefault    = 49
	BgBrightBlue = 104
)

// SGR returns the select graphic rendition sequence for attr.
func SGR(attr int) string {
	return fmt.Sprintf("\x1b[%dm", attr)
}

// CursorUp moves the cursor up n rows.
func CursorUp(n int) string {
	return fmt.Sprintf("\x1b[%dA", n)
}

// CursorDown moves the cursor down n rows.
func CursorDown(n int) string {
	return fmt.Sprintf("\x1b[%dB", n)
}

// CursorForward moves the cursor right n columns.
func CursorForward(n int) string {
	return fmt.Sprintf("\x1b[%dC", n)
}

// Isolate wraps text in a left-to-right override.
func Isolate(text string) string {
	return string(LeftToRightOverride) + text + string(PopDirectional)
}

// EnableVT switches the console into escape sequence processing where the
// platform needs it.
func EnableVT() error {
	return setConsoleMode()
}

// StripAnsi removes CSI sequences and two byte ESC sequences from str.
func StripAnsi(str string) string {
	var result strings.Builder
	for i := 0; i < len(str); i++ {
		if str[i] != '\x1b' {
			result.WriteByte(str[i])
			continue
		}
		if i+1 < len(str) && str[i+1] == '[' {
			i += 2
			for i < len(str) && !(str[i] >= '@' && str[i] <= '~') {
				i++
			}
			continue
		}
		i++
	}
	return result.String()
}
