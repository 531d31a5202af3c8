// Package render draws codepage charts: one 16x16 grid of cells per table,
// addressed with cursor movement relative to a saved origin, followed by
// the page's message log.
package render

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/stlalpha/cpdisp/internal/ansi"
	"github.com/stlalpha/cpdisp/internal/classify"
	"github.com/stlalpha/cpdisp/internal/decode"
	"github.com/stlalpha/cpdisp/internal/logging"
	"github.com/stlalpha/cpdisp/internal/probe"
)

// QuitLine is the paging input that ends the chart.
const QuitLine = "q"

const (
	pagePrompt = "\n[q]: "
	ruler      = "  " + ansi.ReverseOn + "0 1 2 3 4 5 6 7 8 9 a b c d e f \n\n" +
		"0\n1\n2\n3\n4\n5\n6\n7\n8\n9\na\nb\nc\nd\ne\nf\n"
)

// Decoder is the part of a backend the renderer needs.
type Decoder interface {
	Decode(probe []byte) decode.Outcome
	Fallback(r rune) string
}

// LineReader supplies paging input. golang.org/x/term's Terminal satisfies
// it directly; NewLineReader adapts a plain io.Reader.
type LineReader interface {
	ReadLine() (string, error)
}

// Options is the validated chart configuration.
type Options struct {
	From, To    int
	Wide        bool
	Interactive bool
	NoFormat    bool
	Raw         bool
	Verbose     bool
	Prefix      probe.Prefix
}

// ErrInvalidRange guards against a range that configuration should have
// rejected.
var ErrInvalidRange = errors.New("invalid table range")

// Renderer writes charts to a terminal.
type Renderer struct {
	out  *bufio.Writer
	in   LineReader
	opts Options
	log  MessageLog
}

// New returns a renderer writing to w. in may be nil when paging is off.
func New(w io.Writer, in LineReader, opts Options) *Renderer {
	return &Renderer{out: bufio.NewWriter(w), in: in, opts: opts}
}

// Render draws every table of the configured range. It returns early when
// the quit line is read, input ends, or ctx is cancelled.
func (r *Renderer) Render(ctx context.Context, dec Decoder) error {
	if r.opts.From < 0 || r.opts.To > 255 || r.opts.From > r.opts.To {
		return fmt.Errorf("%w: %d:%d", ErrInvalidRange, r.opts.From, r.opts.To)
	}
	defer r.out.Flush()

	for table := r.opts.From; table <= r.opts.To; table++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.page(dec, table); err != nil {
			return err
		}
		if !r.opts.Interactive || table == r.opts.To {
			continue
		}
		more, err := r.waitForPage(ctx)
		if err != nil {
			return err
		}
		if !more {
			logging.Debug("paging stopped after table %d", table)
			break
		}
	}
	return r.out.Flush()
}

func (r *Renderer) page(dec Decoder, table int) error {
	format := !r.opts.NoFormat
	if format {
		fmt.Fprintf(r.out, "Table %d:\n", table)
		r.out.WriteString(ruler + ansi.CursorUp(17) + ansi.ReverseOff + ansi.SaveCursor)
	}

	copts := classify.Options{Raw: r.opts.Raw, Verbose: r.opts.Verbose}
	for row := 0; row < 16; row++ {
		for col := 0; col < 16; col++ {
			p := probe.Build(r.opts.Prefix, table, row, col, r.opts.Wide)
			cell := classify.Classify(dec.Decode(p), copts, dec.Fallback)
			if err := r.cell(row, col, cell); err != nil {
				return err
			}
		}
	}

	if format {
		r.out.WriteString(ansi.Reset + "\n\n")
		if err := r.log.Flush(r.out); err != nil {
			return err
		}
	}
	r.log.Clear()
	return r.out.Flush()
}

func (r *Renderer) cell(row, col int, c classify.Cell) error {
	if r.opts.NoFormat {
		switch c.Category {
		case classify.Normal, classify.PrivateUse:
			_, err := r.out.WriteString(c.Text)
			return err
		}
		return nil
	}

	attr := Attr(c)
	text := c.Text
	if c.Annotated() {
		tag, err := r.log.Add(attr, c.Message)
		if err != nil {
			return err
		}
		text = tag
	}
	if text == "" {
		text = " "
	}
	_, err := r.out.WriteString(ansi.RestoreCursor + ansi.CursorDown(row+1) + ansi.CursorForward(col*2+2) +
		ansi.SGR(attr) + ansi.Isolate(text) + " ")
	return err
}

// waitForPage blocks on one line of input or until ctx is done. It reports
// false when the chart should stop.
func (r *Renderer) waitForPage(ctx context.Context) (bool, error) {
	if r.in == nil {
		return false, nil
	}
	if !r.opts.NoFormat {
		r.out.WriteString(pagePrompt)
	}
	if err := r.out.Flush(); err != nil {
		return false, err
	}
	line, err := r.readLine(ctx)
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if strings.TrimRight(line, "\r") == QuitLine {
		return false, nil
	}
	if !r.opts.NoFormat {
		r.out.WriteString("\n")
	}
	return true, nil
}

type lineResult struct {
	line string
	err  error
}

// readLine abandons the read when ctx is done. The reading goroutine
// finishes on the next line or when input is closed.
func (r *Renderer) readLine(ctx context.Context) (string, error) {
	done := make(chan lineResult, 1)
	go func() {
		line, err := r.in.ReadLine()
		done <- lineResult{line, err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.line, res.err
	}
}

type readerLines struct {
	r *bufio.Reader
}

// NewLineReader reads newline terminated lines from r.
func NewLineReader(r io.Reader) LineReader {
	return &readerLines{r: bufio.NewReader(r)}
}

func (l *readerLines) ReadLine() (string, error) {
	line, err := l.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSuffix(line, "\n"), nil
}
