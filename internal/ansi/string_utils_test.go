package ansi

import (
	"testing"
)

func TestVisibleLength(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"plain text", "Hello", 5},
		{"red background", "\x1b[41m \x1b[0m", 1},
		{"empty string", "", 0},
		{"only ansi codes", "\x1b[44m\x1b[0m", 0},
		{"cursor addressing", "\x1b8\x1b[5B\x1b[12CA", 1},
		{"multibyte glyph", "\x1b[49m一\x1b[0m", 1},
		{"saved cursor", "\x1b7AB", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VisibleLength(tt.input)
			if got != tt.want {
				t.Errorf("VisibleLength(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestPadVisible(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"pads plain", "ab", 4, "ab  "},
		{"ignores escapes", "\x1b[41mab\x1b[0m", 3, "\x1b[41mab\x1b[0m "},
		{"no pad when wide enough", "abcd", 2, "abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PadVisible(tt.input, tt.width, ' '); got != tt.want {
				t.Errorf("PadVisible(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
			}
		})
	}
}

func TestCursorSequences(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"sgr", SGR(BgBlue), "\x1b[44m"},
		{"down", CursorDown(3), "\x1b[3B"},
		{"forward", CursorForward(12), "\x1b[12C"},
		{"up", CursorUp(17), "\x1b[17A"},
		{"isolate", Isolate("A"), "\u202dA\u202c"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestStripAnsi(t *testing.T) {
	in := "\x1b7\x1b[44m\u202dA\u202c \x1b[0m"
	if got, want := StripAnsi(in), "\u202dA\u202c "; got != want {
		t.Errorf("StripAnsi() = %q, want %q", got, want)
	}
}
