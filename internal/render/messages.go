package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/stlalpha/cpdisp/internal/ansi"
)

// MessageLogCapacity is the number of tags one page can hand out.
const MessageLogCapacity = 256

// ErrMessageLogFull is returned by Add once every tag of the page is used.
var ErrMessageLogFull = errors.New("message log full")

// Message is one annotation referenced from a cell by its tag.
type Message struct {
	Tag  string
	Attr int
	Text string
}

// MessageLog collects the annotations of one page. It is owned by a single
// renderer and cleared at every page boundary.
type MessageLog struct {
	entries []Message
}

// Tag returns the two letter tag of the n-th entry of a page.
func Tag(n int) string {
	return string([]byte{byte('A' + n/16), byte('A' + n%16)})
}

// Add appends an entry and returns its tag.
func (l *MessageLog) Add(attr int, text string) (string, error) {
	if len(l.entries) >= MessageLogCapacity {
		return "", ErrMessageLogFull
	}
	m := Message{Tag: Tag(len(l.entries)), Attr: attr, Text: text}
	l.entries = append(l.entries, m)
	return m.Tag, nil
}

// Len returns the number of pending entries.
func (l *MessageLog) Len() int { return len(l.entries) }

// Entries returns the pending entries, oldest first.
func (l *MessageLog) Entries() []Message {
	return append([]Message(nil), l.entries...)
}

// Flush writes every entry in tag order and clears the log.
func (l *MessageLog) Flush(w io.Writer) error {
	defer l.Clear()
	for _, m := range l.entries {
		if _, err := fmt.Fprintf(w, "%s%s: %s%s\n", ansi.SGR(m.Attr), m.Tag, m.Text, ansi.SGR(ansi.BgDefault)); err != nil {
			return err
		}
	}
	return nil
}

// Clear drops all entries.
func (l *MessageLog) Clear() {
	l.entries = l.entries[:0]
}
