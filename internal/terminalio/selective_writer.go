// Package terminalio adapts chart output to terminals that do not speak
// UTF-8.
package terminalio

import (
	"bytes"
	"io"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// ansiState tracks the parser state for ANSI escape sequences.
type ansiState int

const (
	ansiStateGround ansiState = iota // Normal text processing
	ansiStateEscape                  // Saw ESC (\x1b)
	ansiStateCSI                     // Saw ESC [ (Control Sequence Introducer)
)

// SelectiveWriter encodes printable text into a legacy encoding while
// passing ANSI escape sequences through unmodified. Runes the encoding
// cannot represent become its replacement byte (SUB for the single byte
// charmaps) and bidi control marks are dropped.
type SelectiveWriter struct {
	w       io.Writer
	encoder transform.Transformer
	state   ansiState
	ansiBuf bytes.Buffer
	partial []byte // incomplete UTF-8 sequence carried to the next Write
}

// NewSelectiveWriter wraps w so text written to it is encoded with enc.
func NewSelectiveWriter(w io.Writer, enc encoding.Encoding) *SelectiveWriter {
	return &SelectiveWriter{
		w: w,
		encoder: transform.Chain(
			runes.Remove(runes.In(unicode.Bidi_Control)),
			encoding.ReplaceUnsupported(enc.NewEncoder()),
		),
		state: ansiStateGround,
	}
}

// Write implements io.Writer. It always reports len(p) on success; an
// incomplete trailing rune is held back until the next call.
func (sw *SelectiveWriter) Write(p []byte) (int, error) {
	var text bytes.Buffer
	text.Write(sw.partial)
	sw.partial = sw.partial[:0]

	flushText := func(final bool) error {
		data := text.Bytes()
		if !final && len(data) > 0 {
			i := len(data) - 1
			for i > 0 && len(data)-i < utf8.UTFMax && !utf8.RuneStart(data[i]) {
				i--
			}
			if !utf8.FullRune(data[i:]) {
				sw.partial = append(sw.partial, data[i:]...)
				data = data[:i]
			}
		}
		defer text.Reset()
		if len(data) == 0 {
			return nil
		}
		encoded, _, err := transform.Bytes(sw.encoder, data)
		if err != nil {
			return err
		}
		_, err = sw.w.Write(encoded)
		return err
	}

	flushAnsi := func() error {
		if sw.ansiBuf.Len() == 0 {
			return nil
		}
		_, err := sw.w.Write(sw.ansiBuf.Bytes())
		sw.ansiBuf.Reset()
		return err
	}

	for _, b := range p {
		switch sw.state {
		case ansiStateGround:
			if b != 0x1b {
				text.WriteByte(b)
				continue
			}
			if err := flushText(true); err != nil {
				return 0, err
			}
			sw.ansiBuf.WriteByte(b)
			sw.state = ansiStateEscape

		case ansiStateEscape:
			sw.ansiBuf.WriteByte(b)
			if b == '[' {
				sw.state = ansiStateCSI
				continue
			}
			// two byte sequence such as ESC 7 or ESC 8
			if err := flushAnsi(); err != nil {
				return 0, err
			}
			sw.state = ansiStateGround

		case ansiStateCSI:
			sw.ansiBuf.WriteByte(b)
			if b >= '@' && b <= '~' {
				if err := flushAnsi(); err != nil {
					return 0, err
				}
				sw.state = ansiStateGround
			}
		}
	}

	if err := flushText(false); err != nil {
		return 0, err
	}
	return len(p), nil
}
