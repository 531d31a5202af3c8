// Package ucd answers the Unicode character database questions the chart
// asks about a decoded codepoint: is it assigned, a control, whitespace,
// private use, a combining mark, and what is it called.
package ucd

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/unicode/runenames"
)

// DottedCircle is the placeholder base a combining mark is shown on.
const DottedCircle = '◌'

var assigned = []*unicode.RangeTable{
	unicode.L, unicode.M, unicode.N, unicode.P, unicode.S, unicode.Z, unicode.C,
}

// IsAssigned reports whether r has a general category other than Cn.
func IsAssigned(r rune) bool {
	return unicode.In(r, assigned...)
}

// IsControl matches the Cc, Cf, Zl and Zp general categories.
func IsControl(r rune) bool {
	return unicode.In(r, unicode.Cc, unicode.Cf, unicode.Zl, unicode.Zp)
}

// IsWhitespace reports the White_Space property.
func IsWhitespace(r rune) bool {
	return unicode.Is(unicode.White_Space, r)
}

// IsPrivateUse reports the Co general category.
func IsPrivateUse(r rune) bool {
	return unicode.Is(unicode.Co, r)
}

// CombiningClass returns the canonical combining class of r.
func CombiningClass(r rune) uint8 {
	return norm.NFD.PropertiesString(string(r)).CCC()
}

// Name returns the character name of r. Names the database only lists as a
// range (CJK ideographs, Hangul syllables) are derived algorithmically.
func Name(r rune) (string, bool) {
	name := runenames.Name(r)
	if name != "" && !strings.HasPrefix(name, "<") {
		return name, true
	}
	switch {
	case r >= hangulBase && r < hangulBase+hangulCount:
		return hangulName(r), true
	case r >= 0xF900 && r <= 0xFAFF, r >= 0x2F800 && r <= 0x2FA1F:
		if unicode.Is(unicode.Ideographic, r) {
			return fmt.Sprintf("CJK COMPATIBILITY IDEOGRAPH-%04X", r), true
		}
	case unicode.Is(unicode.Unified_Ideograph, r):
		return fmt.Sprintf("CJK UNIFIED IDEOGRAPH-%04X", r), true
	}
	return "", false
}

// Label returns the code point label used in place of a name, for
// example <control-0085> or <private-use-E000>.
func Label(r rune) string {
	kind := "reserved"
	switch {
	case unicode.Is(unicode.Cc, r):
		kind = "control"
	case unicode.Is(unicode.Co, r):
		kind = "private-use"
	case unicode.Is(unicode.Cs, r):
		kind = "surrogate"
	case isNoncharacter(r):
		kind = "noncharacter"
	case IsAssigned(r):
		kind = "unnamed"
	}
	return fmt.Sprintf("<%s-%04X>", kind, r)
}

func isNoncharacter(r rune) bool {
	return r >= 0xFDD0 && r <= 0xFDEF || r&0xFFFE == 0xFFFE
}

const (
	hangulBase   = 0xAC00
	hangulLCount = 19
	hangulVCount = 21
	hangulTCount = 28
	hangulNCount = hangulVCount * hangulTCount
	hangulCount  = hangulLCount * hangulNCount
)

var (
	jamoL = [hangulLCount]string{"G", "GG", "N", "D", "DD", "R", "M", "B", "BB", "S", "SS", "", "J", "JJ", "C", "K", "T", "P", "H"}
	jamoV = [hangulVCount]string{"A", "AE", "YA", "YAE", "EO", "E", "YEO", "YE", "O", "WA", "WAE", "OE", "YO", "U", "WEO", "WE", "WI", "YU", "EU", "YI", "I"}
	jamoT = [hangulTCount]string{"", "G", "GG", "GS", "N", "NJ", "NH", "D", "L", "LG", "LM", "LB", "LS", "LT", "LP", "LH", "M", "B", "BS", "S", "SS", "NG", "J", "C", "K", "T", "P", "H"}
)

func hangulName(r rune) string {
	s := int(r - hangulBase)
	return "HANGUL SYLLABLE " + jamoL[s/hangulNCount] + jamoV[(s%hangulNCount)/hangulTCount] + jamoT[s%hangulTCount]
}
