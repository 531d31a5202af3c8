// Package mapfile implements the mapping-table codec: a line oriented text
// format that maps byte sequences onto Unicode codepoints, and a decoder
// that looks probes up in the parsed table.
package mapfile

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/derekparker/trie"
	"github.com/stlalpha/cpdisp/internal/decode"
)

// MaxSourceLen is the longest byte sequence an entry may declare.
const MaxSourceLen = 4

// ErrDuplicateSource is returned when two entries share a source sequence.
var ErrDuplicateSource = errors.New("duplicate source sequence")

// Entry is one mapping: source bytes to target codepoints. An entry with no
// target marks the source as explicitly undefined.
type Entry struct {
	Source []byte
	Target []rune
	Name   string // trailing comment, if any
}

// Undefined reports whether the entry maps its source to nothing.
func (e Entry) Undefined() bool { return len(e.Target) == 0 }

// Table is an in-memory mapping table. It is built once and read-only
// afterwards; lookups go through a prefix trie keyed by the hex spelling of
// the source bytes so that byte boundaries survive the trie's rune keys.
type Table struct {
	entries []Entry
	index   *trie.Trie
	lengths []int // declared source lengths, longest first
	names   map[rune]string
}

// New returns an empty table.
func New() *Table {
	return &Table{
		index: trie.New(),
		names: make(map[rune]string),
	}
}

func key(src []byte) string {
	return hex.EncodeToString(src)
}

// Add inserts an entry. Source sequences must be unique and between 1 and
// MaxSourceLen bytes long.
func (t *Table) Add(e Entry) error {
	if len(e.Source) == 0 || len(e.Source) > MaxSourceLen {
		return fmt.Errorf("source length %d out of range 1..%d", len(e.Source), MaxSourceLen)
	}
	for _, r := range e.Target {
		if !utf8.ValidRune(r) {
			return fmt.Errorf("codepoint %X is not a Unicode scalar value", r)
		}
	}
	k := key(e.Source)
	if _, ok := t.index.Find(k); ok {
		return fmt.Errorf("%w %s", ErrDuplicateSource, k)
	}
	e.Source = append([]byte(nil), e.Source...)
	t.entries = append(t.entries, e)
	t.index.Add(k, len(t.entries)-1)

	n := len(e.Source)
	pos := sort.Search(len(t.lengths), func(i int) bool { return t.lengths[i] <= n })
	if pos == len(t.lengths) || t.lengths[pos] != n {
		t.lengths = append(t.lengths, 0)
		copy(t.lengths[pos+1:], t.lengths[pos:])
		t.lengths[pos] = n
	}

	if e.Name != "" && len(e.Target) == 1 {
		if _, seen := t.names[e.Target[0]]; !seen {
			t.names[e.Target[0]] = e.Name
		}
	}
	return nil
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns the entries in insertion order.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Lengths returns the declared source lengths, longest first.
func (t *Table) Lengths() []int {
	return append([]int(nil), t.lengths...)
}

// Name returns the comment attached to the first entry that decodes to r.
func (t *Table) Name(r rune) (string, bool) {
	name, ok := t.names[r]
	return name, ok
}

func (t *Table) lookup(src []byte) (Entry, bool) {
	node, ok := t.index.Find(key(src))
	if !ok {
		return Entry{}, false
	}
	i, ok := node.Meta().(int)
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Decode decodes src through the table. The longest declared source length
// that matches a prefix of src wins; any bytes left over are decoded in
// turn. capacity bounds the UTF-8 size of the decoded text.
func (t *Table) Decode(src []byte, capacity int) decode.Outcome {
	var runes []rune
	consumed := 0
	size := 0

	for consumed < len(src) {
		rest := src[consumed:]
		e, ok := t.match(rest)
		if !ok {
			if t.index.HasKeysWithPrefix(key(rest)) {
				return decode.Incomplete()
			}
			return decode.Invalid()
		}
		if e.Undefined() {
			return decode.Invalid()
		}
		for _, r := range e.Target {
			size += utf8.RuneLen(r)
		}
		if size > capacity {
			return decode.Failed(decode.CodeBufferOverflow)
		}
		runes = append(runes, e.Target...)
		consumed += len(e.Source)
	}

	if len(runes) == 0 {
		return decode.Invalid()
	}
	return decode.Decoded(runes, consumed)
}

func (t *Table) match(src []byte) (Entry, bool) {
	for _, n := range t.lengths {
		if len(src) < n {
			continue
		}
		if e, ok := t.lookup(src[:n]); ok {
			return e, true
		}
	}
	return Entry{}, false
}
