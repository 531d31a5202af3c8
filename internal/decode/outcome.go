// Package decode holds the result type shared by every conversion engine.
package decode

import "fmt"

// Kind identifies which variant of Outcome is populated.
type Kind int

const (
	KindDecoded    Kind = iota // Runes holds at least one scalar value
	KindInvalid                // probe is not a valid encoded unit
	KindIncomplete             // probe is a valid prefix of a longer unit
	KindError                  // engine failure outside the invalid/incomplete taxonomy
)

// Code is an engine error code carried by KindError outcomes.
type Code int

const (
	CodeNone Code = iota
	CodeInvalidChar
	CodeIllegalChar
	CodeIllegalEscape
	CodeUnsupportedEscape
	CodeBufferOverflow
	CodeInternal
)

var codeNames = map[Code]string{
	CodeNone:              "ZERO_ERROR",
	CodeInvalidChar:       "INVALID_CHAR_FOUND",
	CodeIllegalChar:       "ILLEGAL_CHAR_FOUND",
	CodeIllegalEscape:     "ILLEGAL_ESCAPE_SEQUENCE",
	CodeUnsupportedEscape: "UNSUPPORTED_ESCAPE_SEQUENCE",
	CodeBufferOverflow:    "BUFFER_OVERFLOW_ERROR",
	CodeInternal:          "INTERNAL_PROGRAM_ERROR",
}

// String returns the human-readable error name shown in the message log.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ERROR_%d", int(c))
}

// IsCharError reports whether the code means the input itself is bad,
// as opposed to a failure of the engine.
func (c Code) IsCharError() bool {
	switch c {
	case CodeInvalidChar, CodeIllegalChar, CodeIllegalEscape, CodeUnsupportedEscape:
		return true
	}
	return false
}

// Outcome is the result of decoding a single probe. Exactly one variant
// holds; use the constructors rather than building it by hand.
type Outcome struct {
	Kind     Kind
	Runes    []rune
	Consumed int
	Code     Code
}

// Decoded returns a successful outcome.
func Decoded(runes []rune, consumed int) Outcome {
	return Outcome{Kind: KindDecoded, Runes: runes, Consumed: consumed}
}

// Invalid returns the outcome for a byte sequence that maps to nothing.
func Invalid() Outcome {
	return Outcome{Kind: KindInvalid}
}

// Incomplete returns the outcome for a truncated multi-byte unit.
func Incomplete() Outcome {
	return Outcome{Kind: KindIncomplete}
}

// Failed returns an engine error outcome.
func Failed(code Code) Outcome {
	return Outcome{Kind: KindError, Code: code}
}

// OK reports whether the outcome is a successful decode.
func (o Outcome) OK() bool {
	return o.Kind == KindDecoded
}

func (o Outcome) String() string {
	switch o.Kind {
	case KindDecoded:
		return fmt.Sprintf("Decoded(%U, %d)", o.Runes, o.Consumed)
	case KindInvalid:
		return "Invalid"
	case KindIncomplete:
		return "Incomplete"
	default:
		return fmt.Sprintf("BackendError(%s)", o.Code)
	}
}
