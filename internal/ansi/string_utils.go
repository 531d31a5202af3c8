package ansi

import (
	"strings"
	"unicode/utf8"
)

// VisibleLength returns the number of runes a string shows on screen,
// ignoring ANSI escape sequences.
func VisibleLength(s string) int {
	return utf8.RuneCountInString(StripAnsi(s))
}

// PadVisible pads a string to the specified width using the given pad character.
// ANSI escape sequences do not count toward the width.
func PadVisible(s string, width int, padChar rune) string {
	visLen := VisibleLength(s)
	if visLen >= width {
		return s
	}
	return s + strings.Repeat(string(padChar), width-visLen)
}
