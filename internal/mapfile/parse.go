package mapfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrInvalidMappingFile is the sentinel every parse failure wraps.
var ErrInvalidMappingFile = errors.New("invalid mapping file")

// ParseError reports the line a mapping file failed on.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%v: %s", ErrInvalidMappingFile, e.Msg)
	}
	return fmt.Sprintf("%v: line %d: %s", ErrInvalidMappingFile, e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrInvalidMappingFile }

const commentMarker = "#"

// Parse reads a mapping file.
//
// Each non-blank, non-comment line holds a source byte sequence followed by
// one or more target codepoints:
//
//	41      0041            # LATIN CAPITAL LETTER A
//	0x8140  0x4E00
//	81:40   U+4E00
//	e1      0065+0301
//	80                      # undefined
//
// ICU .ucm charmap lines (<U4E00> \x81\x40 |0) are accepted as well;
// encode-only fallbacks (|1, |2) are skipped.
func Parse(r io.Reader) (*Table, error) {
	t := New()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	defined := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		name := ""
		if i := strings.Index(line, commentMarker); i >= 0 {
			name = strings.TrimSpace(line[i+1:])
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var (
			e   Entry
			ok  bool
			err error
		)
		if isUCMLine(fields[0]) {
			e, ok, err = parseUCMLine(fields)
		} else if skipHeaderLine(fields) {
			continue
		} else {
			e, ok, err = parseLine(fields)
		}
		if err != nil {
			return nil, &ParseError{Line: lineNo, Msg: err.Error()}
		}
		if !ok {
			continue
		}
		e.Name = name
		if err := t.Add(e); err != nil {
			return nil, &ParseError{Line: lineNo, Msg: err.Error()}
		}
		if !e.Undefined() {
			defined++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMappingFile, err)
	}
	if defined == 0 {
		return nil, &ParseError{Msg: "no mappings"}
	}
	return t, nil
}

func parseLine(fields []string) (Entry, bool, error) {
	src, err := parseSource(fields[0])
	if err != nil {
		return Entry{}, false, err
	}
	e := Entry{Source: src}
	for i, field := range fields[1:] {
		if strings.EqualFold(field, "<UNDEFINED>") {
			e.Target = nil
			break
		}
		runes, err := parseTarget(field)
		if err != nil {
			if i == 0 {
				return Entry{}, false, err
			}
			break
		}
		e.Target = append(e.Target, runes...)
	}
	return e, true, nil
}

// parseSource accepts 8140, 0x8140, 81:40 and \x81\x40.
func parseSource(field string) ([]byte, error) {
	var groups []string
	switch {
	case strings.Contains(field, `\x`):
		groups = strings.Split(strings.TrimPrefix(field, `\x`), `\x`)
	case strings.Contains(field, ":"):
		groups = strings.Split(field, ":")
	default:
		groups = []string{trimHexPrefix(field)}
	}

	var out []byte
	for _, g := range groups {
		g = trimHexPrefix(g)
		if g == "" || len(g)%2 != 0 {
			return nil, fmt.Errorf("malformed hex byte sequence %q", field)
		}
		for i := 0; i < len(g); i += 2 {
			v, err := strconv.ParseUint(g[i:i+2], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("malformed hex byte sequence %q", field)
			}
			out = append(out, byte(v))
		}
	}
	if len(out) > MaxSourceLen {
		return nil, fmt.Errorf("source %q longer than %d bytes", field, MaxSourceLen)
	}
	return out, nil
}

// parseTarget accepts 4E00, 0x4E00, U+4E00, <U4E00> and + joined
// sequences of any of them.
func parseTarget(field string) ([]rune, error) {
	if strings.HasPrefix(field, "<U") {
		return parseUCMTarget(field)
	}
	normalized := strings.ReplaceAll(strings.ReplaceAll(field, "U+", "u"), "u+", "u")
	var out []rune
	for _, tok := range strings.Split(normalized, "+") {
		tok = trimHexPrefix(strings.TrimPrefix(tok, "u"))
		if tok == "" {
			return nil, fmt.Errorf("malformed codepoint %q", field)
		}
		r, err := parseCodepoint(tok)
		if err != nil {
			return nil, fmt.Errorf("malformed codepoint %q", field)
		}
		out = append(out, r)
	}
	return out, nil
}

func parseCodepoint(s string) (rune, error) {
	if len(s) > 6 {
		return 0, fmt.Errorf("codepoint %q too long", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return rune(v), nil
}

func trimHexPrefix(s string) string {
	return strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
}

func isUCMLine(field string) bool {
	return len(field) > 2 && strings.HasPrefix(field, "<U") && isHexDigit(field[2])
}

// skipHeaderLine matches ucm header and section lines such as
// <code_set_name> "ibm-943", CHARMAP and END CHARMAP.
func skipHeaderLine(fields []string) bool {
	switch fields[0] {
	case "CHARMAP", "END":
		return true
	}
	return strings.HasPrefix(fields[0], "<")
}

func parseUCMLine(fields []string) (Entry, bool, error) {
	if len(fields) < 2 {
		return Entry{}, false, fmt.Errorf("ucm line without byte sequence")
	}
	if len(fields) > 2 {
		switch fields[2] {
		case "|1", "|2":
			return Entry{}, false, nil
		}
	}
	target, err := parseUCMTarget(fields[0])
	if err != nil {
		return Entry{}, false, err
	}
	src, err := parseSource(fields[1])
	if err != nil {
		return Entry{}, false, err
	}
	return Entry{Source: src, Target: target}, true, nil
}

func parseUCMTarget(field string) ([]rune, error) {
	var out []rune
	for _, part := range strings.Split(field, ">") {
		if part == "" {
			continue
		}
		part = strings.TrimPrefix(part, "+")
		if !strings.HasPrefix(part, "<U") {
			return nil, fmt.Errorf("malformed codepoint %q", field)
		}
		r, err := parseCodepoint(part[2:])
		if err != nil {
			return nil, fmt.Errorf("malformed codepoint %q", field)
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("malformed codepoint %q", field)
	}
	return out, nil
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
