package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stlalpha/cpdisp/internal/backend"
	"github.com/stlalpha/cpdisp/internal/probe"
)

func parse(t *testing.T, args ...string) (Chart, error) {
	t.Helper()
	var stderr bytes.Buffer
	return parseArgs(args, &stderr, "", false)
}

func TestParseArgsDefaults(t *testing.T) {
	c, err := parse(t, "CP437")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Ident != "CP437" {
		t.Errorf("Ident = %q, want CP437", c.Ident)
	}
	if c.Backend != backend.KindCharset {
		t.Errorf("Backend = %s, want charset", c.Backend)
	}
	if c.From != 0 || c.To != 0 {
		t.Errorf("non-wide range = %d:%d, want 0:0", c.From, c.To)
	}
}

func TestParseArgsFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(Chart) bool
	}{
		{"wide full range", []string{"-w", "SJIS"}, func(c Chart) bool { return c.Wide && c.From == 0 && c.To == 255 }},
		{"long wide", []string{"--wide", "SJIS"}, func(c Chart) bool { return c.Wide }},
		{"range", []string{"-w", "-r", "0x81:0x9f", "SJIS"}, func(c Chart) bool { return c.From == 0x81 && c.To == 0x9f }},
		{"single table", []string{"-w", "--range", "130", "SJIS"}, func(c Chart) bool { return c.From == 130 && c.To == 130 }},
		{"open end", []string{"-w", "-r", "240:", "SJIS"}, func(c Chart) bool { return c.From == 240 && c.To == 255 }},
		{"open start", []string{"-w", "-r", ":3", "SJIS"}, func(c Chart) bool { return c.From == 0 && c.To == 3 }},
		{"raw implies no-format", []string{"-N", "CP437"}, func(c Chart) bool { return c.Raw && c.NoFormat }},
		{"no-format", []string{"--no-format", "CP437"}, func(c Chart) bool { return c.NoFormat && !c.Raw }},
		{"verbose", []string{"-c", "CP437"}, func(c Chart) bool { return c.Verbose }},
		{"interactive wide", []string{"-w", "-i", "SJIS"}, func(c Chart) bool { return c.Interactive }},
		{"interactive dropped when narrow", []string{"-i", "CP437"}, func(c Chart) bool { return !c.Interactive }},
		{"prefix", []string{"-x", "1b:24:42", "ISO-2022-JP"}, func(c Chart) bool { return c.Prefix.String() == "1b:24:42" }},
		{"locale backend", []string{"--locale", "ja_JP.eucJP"}, func(c Chart) bool { return c.Backend == backend.KindLocale }},
		{"mapfile backend", []string{"--mapfile", "table.txt"}, func(c Chart) bool { return c.Backend == backend.KindMapFile }},
		{"last backend wins", []string{"--mapfile", "--icu", "CP437"}, func(c Chart) bool { return c.Backend == backend.KindCharset }},
		{"flags after codepage", []string{"SJIS", "-w", "-c"}, func(c Chart) bool { return c.Ident == "SJIS" && c.Wide && c.Verbose }},
		{"double dash", []string{"-w", "--", "-odd-name"}, func(c Chart) bool { return c.Ident == "-odd-name" }},
		{"watch with mapfile", []string{"--mapfile", "--watch", "t.txt"}, func(c Chart) bool { return c.Watch }},
		{"data path", []string{"-d", "/tmp/maps", "cp437"}, func(c Chart) bool { return c.DataPath == "/tmp/maps" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := parse(t, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.check(c) {
				t.Errorf("unexpected config %+v", c)
			}
		})
	}
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    error
		message string
	}{
		{"no codepage", []string{"-w"}, ErrNoCodepage, "No codepage given"},
		{"inverted range", []string{"-w", "-r", "2:1", "SJIS"}, ErrRangeOrder, "Range is the wrong way around"},
		{"inverted range narrow", []string{"-r", "2:1", "CP437"}, ErrRangeOrder, "Range is the wrong way around"},
		{"table too big", []string{"-w", "-r", "256", "SJIS"}, ErrRange, "Table index must be between 0 and 255"},
		{"negative table", []string{"-w", "-r", "-1:3", "SJIS"}, ErrRange, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if tt.message != "" && err.Error() != tt.message {
				t.Errorf("message = %q, want %q", err.Error(), tt.message)
			}
		})
	}
}

func TestParseArgsOtherErrors(t *testing.T) {
	for _, args := range [][]string{
		{"--bogus", "CP437"},
		{"-x", "zz", "CP437"},
		{"--watch", "CP437"},
	} {
		if _, err := parse(t, args...); err == nil {
			t.Errorf("parse(%q) succeeded, want error", args)
		}
	}
}

func TestParseArgsHelp(t *testing.T) {
	for _, flag := range []string{"-h", "--help"} {
		c, err := parse(t, flag)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", flag, err)
		}
		if !c.Help {
			t.Errorf("%s: Help not set", flag)
		}
	}
}

func TestParseArgsList(t *testing.T) {
	c, err := parse(t, "--list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.List {
		t.Error("List not set")
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in       string
		from, to int
		wantErr  error
	}{
		{"", 0, 255, nil},
		{"5", 5, 5, nil},
		{"0x10:0x20", 16, 32, nil},
		{"7:", 7, 255, nil},
		{":7", 0, 7, nil},
		{"255:255", 255, 255, nil},
		{"9:8", 0, 0, ErrRangeOrder},
		{"300", 0, 0, ErrRange},
		{"abc", 0, 0, ErrRange},
	}
	for _, tt := range tests {
		from, to, err := ParseRange(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ParseRange(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && (from != tt.from || to != tt.to) {
			t.Errorf("ParseRange(%q) = %d:%d, want %d:%d", tt.in, from, to, tt.from, tt.to)
		}
	}
}

func TestLoadDefaults_MissingFile(t *testing.T) {
	d, err := LoadDefaults(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if d != (Defaults{}) {
		t.Errorf("expected zero defaults, got %+v", d)
	}
}

func TestLoadDefaults_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("not json"), 0644)

	if _, err := LoadDefaults(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestDefaultsFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"backend":"locale","dataPath":"/maps","verbose":true,"outputEncoding":"cp437","interactive":true}`), 0644)

	c, err := parse(t, "--config", path, "-w", "ja_JP.eucJP")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Backend != backend.KindLocale || c.DataPath != "/maps" || !c.Verbose || !c.Interactive || c.OutputEncoding != "cp437" {
		t.Errorf("defaults not applied: %+v", c)
	}

	c, err = parse(t, "--config", path, "--mapfile", "-d", "/other", "--output-encoding", "latin1", "t.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Backend != backend.KindMapFile || c.DataPath != "/other" || c.OutputEncoding != "latin1" {
		t.Errorf("flags did not override defaults: %+v", c)
	}
	if c.Interactive {
		t.Error("interactive kept in narrow mode")
	}
}

func TestDefaultsFileBadBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"backend":"iconv"}`), 0644)
	if _, err := parse(t, "--config", path, "CP437"); err == nil {
		t.Error("expected error for unknown backend in defaults")
	}
}

func TestRenderOptions(t *testing.T) {
	c, err := parse(t, "-w", "-r", "1:2", "-c", "-x", "81", "SJIS")
	if err != nil {
		t.Fatal(err)
	}
	opts := c.RenderOptions()
	if opts.From != 1 || opts.To != 2 || !opts.Wide || !opts.Verbose || opts.Prefix.Len() != 1 {
		t.Errorf("RenderOptions() = %+v", opts)
	}
}

func TestWriteHelp(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHelp(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"-w --wide", "--mapfile", "Legend:", "private use character"} {
		if !strings.Contains(out, want) {
			t.Errorf("help text missing %q", want)
		}
	}
}

func TestParseRemoteArgs(t *testing.T) {
	var stderr bytes.Buffer
	if _, err := ParseRemoteArgs([]string{"--config", "/etc/passwd", "CP437"}, &stderr); !errors.Is(err, errRemoteConfig) {
		t.Fatalf("expected errRemoteConfig, got %v", err)
	}
	c, err := ParseRemoteArgs([]string{"CP437"}, &stderr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ConfigPath != "" {
		t.Errorf("ConfigPath = %q, want empty", c.ConfigPath)
	}
}

func TestParseArgsPrefixLength(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"narrow three bytes", []string{"-x", "1b:24:42", "ISO-2022-JP"}, false},
		{"narrow four bytes", []string{"-x", "1b:24:42:41", "ISO-2022-JP"}, true},
		{"wide two bytes", []string{"-w", "-x", "1b:24", "ISO-2022-JP"}, false},
		{"wide three bytes", []string{"-w", "-x", "1b:24:42", "ISO-2022-JP"}, true},
		{"wide four bytes", []string{"-w", "-x", "1b:24:42:41", "sjis"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := parse(t, tt.args...)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parse(%q) succeeded with a %d byte prefix", tt.args, c.Prefix.Len())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n := len(probe.Build(c.Prefix, 0xff, 15, 15, c.Wide)); n > probe.MaxProbe {
				t.Errorf("probe length %d exceeds %d", n, probe.MaxProbe)
			}
		})
	}
}

func TestParseArgsWidePrefixError(t *testing.T) {
	_, err := parse(t, "-w", "-x", "1b:24:42", "ISO-2022-JP")
	if !errors.Is(err, ErrPrefix) {
		t.Fatalf("expected ErrPrefix, got %v", err)
	}
	if want := "Prefix too long: at most 2 bytes fit in front of 2 byte tables"; err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}
