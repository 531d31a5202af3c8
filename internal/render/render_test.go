package render

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stlalpha/cpdisp/internal/ansi"
	"github.com/stlalpha/cpdisp/internal/backend"
	"github.com/stlalpha/cpdisp/internal/classify"
	"github.com/stlalpha/cpdisp/internal/mapfile"
	"github.com/stlalpha/cpdisp/internal/probe"
)

func tableBackend(t *testing.T, text string) backend.Backend {
	t.Helper()
	table, err := mapfile.Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	b := backend.NewTable("test", table)
	t.Cleanup(func() { b.Close() })
	return b
}

func render(t *testing.T, b backend.Backend, opts Options, input string) string {
	t.Helper()
	var out bytes.Buffer
	r := New(&out, NewLineReader(strings.NewReader(input)), opts)
	if err := r.Render(context.Background(), b); err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	return out.String()
}

func cellAt(row, col int, sgr, text string) string {
	return "\x1b8\x1b[" + strconv.Itoa(row+1) + "B\x1b[" + strconv.Itoa(col*2+2) + "C" +
		"\x1b[" + sgr + "m\u202d" + text + "\u202c "
}

func TestRenderNormalCell(t *testing.T) {
	b := tableBackend(t, "41 0041\n00 0000\n")
	out := render(t, b, Options{}, "")

	if !strings.HasPrefix(out, "Table 0:\n  \x1b[7m0 1 2 3 4 5 6 7 8 9 a b c d e f \n\n0\n") {
		t.Errorf("missing header, got prefix %q", out[:40])
	}
	if !strings.Contains(out, "f\n\x1b[17A\x1b[27m\x1b7") {
		t.Error("ruler does not end by saving the grid origin")
	}
	if want := cellAt(4, 1, "49", "A"); !strings.Contains(out, want) {
		t.Errorf("output does not contain cell %q", want)
	}
	if !strings.Contains(out, "\x1b[0m\n\n") {
		t.Error("page does not end with attribute reset")
	}
}

func TestRenderControlCell(t *testing.T) {
	b := tableBackend(t, "41 0041\n00 0000\n")

	plain := render(t, b, Options{}, "")
	if want := cellAt(0, 0, "44", " "); !strings.Contains(plain, want) {
		t.Errorf("plain output does not contain %q", want)
	}

	verbose := render(t, b, Options{Verbose: true}, "")
	if want := cellAt(0, 0, "104", "00"); !strings.Contains(verbose, want) {
		t.Errorf("verbose output does not contain %q", want)
	}
}

func TestRenderIncompleteThenWide(t *testing.T) {
	b := tableBackend(t, "8140 4E00\n")

	narrow := render(t, b, Options{}, "")
	if want := cellAt(8, 1, "42", " "); !strings.Contains(narrow, want) {
		t.Errorf("narrow output does not contain incomplete cell %q", want)
	}
	if want := cellAt(0, 0, "41", " "); !strings.Contains(narrow, want) {
		t.Errorf("narrow output does not contain error cell %q", want)
	}

	wide := render(t, b, Options{From: 0x81, To: 0x81, Wide: true}, "")
	if !strings.HasPrefix(wide, "Table 129:\n") {
		t.Errorf("wide output header = %q", wide[:12])
	}
	if want := cellAt(4, 0, "49", "一"); !strings.Contains(wide, want) {
		t.Errorf("wide output does not contain %q", want)
	}
}

func TestRenderMessageLog(t *testing.T) {
	b := tableBackend(t, "20 2028\n21 3000\n22 E000\n")
	out := render(t, b, Options{Verbose: true}, "")

	if want := cellAt(2, 0, "104", "AA"); !strings.Contains(out, want) {
		t.Errorf("output does not contain tagged cell %q", want)
	}
	if want := cellAt(2, 1, "47", "AB"); !strings.Contains(out, want) {
		t.Errorf("output does not contain tagged cell %q", want)
	}
	if want := cellAt(2, 2, "45", "\ue000"); !strings.Contains(out, want) {
		t.Errorf("output does not contain private use cell %q", want)
	}

	messages := "\x1b[104mAA: U+2028 LINE SEPARATOR\x1b[49m\n" +
		"\x1b[47mAB: U+3000 IDEOGRAPHIC SPACE\x1b[49m\n"
	if !strings.HasSuffix(out, "\x1b[0m\n\n"+messages) {
		t.Errorf("page does not end with the message log, got tail %q", out[len(out)-120:])
	}
}

func TestRenderMessageLogResetsPerPage(t *testing.T) {
	b := tableBackend(t, "0020 2028\n0120 2028\n")
	out := render(t, b, Options{From: 0, To: 1, Wide: true, Verbose: true}, "")
	if n := strings.Count(out, "AA: U+2028"); n != 2 {
		t.Errorf("expected tag AA on both pages, found %d", n)
	}
	if strings.Contains(out, "AB:") {
		t.Error("tag numbering carried over between pages")
	}
}

func TestRenderNoFormat(t *testing.T) {
	b := tableBackend(t, "00 0000\n41 0041\n42 0042\n43 E000\n")

	if got := render(t, b, Options{NoFormat: true}, ""); got != "AB\ue000" {
		t.Errorf("no-format output = %q, want %q", got, "AB\ue000")
	}
	if got := render(t, b, Options{NoFormat: true, Raw: true}, ""); got != "\x00AB\ue000" {
		t.Errorf("raw output = %q", got)
	}
}

func TestRenderPaging(t *testing.T) {
	b := tableBackend(t, "0041 0041\n")

	tests := []struct {
		name   string
		input  string
		tables []int
	}{
		{"quit after first", "q\n", []int{0}},
		{"empty line advances", "\nq\n", []int{0, 1}},
		{"any text advances", "next\n\n", []int{0, 1, 2}},
		{"eof stops", "", []int{0}},
		{"quit without newline", "\nq", []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, b, Options{From: 0, To: 2, Wide: true, Interactive: true}, tt.input)
			for table := 0; table <= 2; table++ {
				header := "Table " + strconv.Itoa(table) + ":\n"
				want := false
				for _, shown := range tt.tables {
					want = want || shown == table
				}
				if got := strings.Contains(out, header); got != want {
					t.Errorf("table %d shown = %v, want %v", table, got, want)
				}
			}
			if n := strings.Count(out, "\n[q]: "); n != len(tt.tables) && n != len(tt.tables)-1 {
				t.Errorf("unexpected prompt count %d", n)
			}
		})
	}
}

func TestRenderNoPromptOnLastPage(t *testing.T) {
	b := tableBackend(t, "41 0041\n")
	out := render(t, b, Options{Interactive: true}, "")
	if strings.Contains(out, "[q]:") {
		t.Error("prompt printed after the last page")
	}
}

func TestRenderRejectsInvertedRange(t *testing.T) {
	b := tableBackend(t, "41 0041\n")
	var out bytes.Buffer
	err := New(&out, nil, Options{From: 2, To: 1}).Render(context.Background(), b)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("output written for rejected range: %q", out.String())
	}
}

func TestRenderStopsOnCancel(t *testing.T) {
	b := tableBackend(t, "41 0041\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := New(&out, nil, Options{}).Render(ctx, b)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// blockingReader never returns a line until released.
type blockingReader struct {
	release chan struct{}
	reading chan struct{}
}

func (r *blockingReader) ReadLine() (string, error) {
	close(r.reading)
	<-r.release
	return "", nil
}

func TestRenderCancelDuringPagingRead(t *testing.T) {
	b := tableBackend(t, "41 0041\n")
	in := &blockingReader{release: make(chan struct{}), reading: make(chan struct{})}
	defer close(in.release)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- New(&out, in, Options{From: 0, To: 1, Wide: true, Interactive: true}).Render(ctx, b)
	}()

	select {
	case <-in.reading:
	case <-time.After(5 * time.Second):
		t.Fatal("Render never reached the paging read")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Render still blocked in the paging read after cancel")
	}
	if strings.Contains(out.String(), "Table 1:") {
		t.Error("second table drawn after cancel")
	}
}

func TestRenderWithPrefix(t *testing.T) {
	b := tableBackend(t, "8140 4E00\n")
	prefix, err := probe.ParsePrefix("81")
	if err != nil {
		t.Fatal(err)
	}
	out := render(t, b, Options{Prefix: prefix}, "")
	if want := cellAt(4, 0, "49", "一"); !strings.Contains(out, want) {
		t.Errorf("prefixed output does not contain %q", want)
	}
}

func TestTag(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "AA"},
		{1, "AB"},
		{15, "AP"},
		{16, "BA"},
		{17, "BB"},
		{255, "PP"},
	}
	for _, tt := range tests {
		if got := Tag(tt.n); got != tt.want {
			t.Errorf("Tag(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestMessageLogCapacity(t *testing.T) {
	var log MessageLog
	for i := 0; i < MessageLogCapacity; i++ {
		tag, err := log.Add(43, "x")
		if err != nil {
			t.Fatalf("Add #%d unexpected error: %v", i, err)
		}
		if tag != Tag(i) {
			t.Fatalf("Add #%d tag = %q, want %q", i, tag, Tag(i))
		}
	}
	if _, err := log.Add(43, "overflow"); !errors.Is(err, ErrMessageLogFull) {
		t.Fatalf("expected ErrMessageLogFull, got %v", err)
	}

	var out bytes.Buffer
	if err := log.Flush(&out); err != nil {
		t.Fatal(err)
	}
	if log.Len() != 0 {
		t.Errorf("log not cleared after flush, %d entries left", log.Len())
	}
	if !strings.HasPrefix(out.String(), "\x1b[43mAA: x\x1b[49m\n") {
		t.Errorf("unexpected flush output prefix %q", out.String()[:20])
	}
	if tag, _ := log.Add(41, "again"); tag != "AA" {
		t.Errorf("first tag after flush = %q, want AA", tag)
	}
}

func TestAttr(t *testing.T) {
	tests := []struct {
		name string
		cell classify.Cell
		want int
	}{
		{"error", classify.Cell{Category: classify.Error}, ansi.BgRed},
		{"incomplete", classify.Cell{Category: classify.Incomplete}, ansi.BgGreen},
		{"backend error", classify.Cell{Category: classify.BackendError, Message: "BUFFER_OVERFLOW_ERROR"}, ansi.BgYellow},
		{"control", classify.Cell{Category: classify.Control}, ansi.BgBlue},
		{"control verbose inline", classify.Cell{Category: classify.Control, Text: "0a"}, ansi.BgBrightBlue},
		{"control verbose logged", classify.Cell{Category: classify.Control, Message: "U+2028 LINE SEPARATOR"}, ansi.BgBrightBlue},
		{"whitespace", classify.Cell{Category: classify.Whitespace, Text: "09"}, ansi.BgLightGray},
		{"private use", classify.Cell{Category: classify.PrivateUse, Text: "\ue000"}, ansi.BgMagenta},
		{"normal", classify.Cell{Category: classify.Normal, Text: "A"}, ansi.BgDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Attr(tt.cell); got != tt.want {
				t.Errorf("Attr() = %d, want %d", got, tt.want)
			}
		})
	}
}
