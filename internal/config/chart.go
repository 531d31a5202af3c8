// Package config turns a cpdisp command line, plus an optional JSON
// defaults file, into a validated chart configuration.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/stlalpha/cpdisp/internal/backend"
	"github.com/stlalpha/cpdisp/internal/probe"
	"github.com/stlalpha/cpdisp/internal/render"
)

// Validation errors. Their text is printed as is.
var (
	ErrRange      = errors.New("Table index must be between 0 and 255")
	ErrRangeOrder = errors.New("Range is the wrong way around")
	ErrNoCodepage = errors.New("No codepage given")
	ErrPrefix     = errors.New("Prefix too long")
)

// MaxTable is the highest table index.
const MaxTable = 255

// Chart is a validated chart configuration.
type Chart struct {
	Backend        backend.Kind
	Ident          string
	DataPath       string
	From, To       int
	Wide           bool
	Interactive    bool
	NoFormat       bool
	Raw            bool
	Verbose        bool
	Prefix         probe.Prefix
	OutputEncoding string
	Watch          bool
	Debug          bool
	List           bool
	Help           bool
	ConfigPath     string
}

// RenderOptions returns the part of the configuration the renderer uses.
func (c Chart) RenderOptions() render.Options {
	return render.Options{
		From:        c.From,
		To:          c.To,
		Wide:        c.Wide,
		Interactive: c.Interactive,
		NoFormat:    c.NoFormat,
		Raw:         c.Raw,
		Verbose:     c.Verbose,
		Prefix:      c.Prefix,
	}
}

// BackendOptions returns the engine open parameters.
func (c Chart) BackendOptions() backend.Options {
	return backend.Options{DataPath: c.DataPath}
}

// ParseArgs parses a command line without the program name. Flag errors
// are reported on stderr. With -h the returned Chart has Help set and no
// further validation is done.
func ParseArgs(args []string, stderr io.Writer) (Chart, error) {
	return parseArgs(args, stderr, DefaultPath(), false)
}

// ParseRemoteArgs parses a command line received over the network. No
// defaults file is read and --config is refused.
func ParseRemoteArgs(args []string, stderr io.Writer) (Chart, error) {
	return parseArgs(args, stderr, "", true)
}

// errRemoteConfig refuses --config on a remote command line.
var errRemoteConfig = errors.New("--config is not available remotely")

func parseArgs(args []string, stderr io.Writer, defaultConfig string, remote bool) (Chart, error) {
	var (
		c         Chart
		rangeArg  string
		prefixArg string
		kind      *backend.Kind
	)

	fs := flag.NewFlagSet("cpdisp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {}

	fs.BoolVar(&c.Help, "h", false, "print help")
	fs.BoolVar(&c.Help, "help", false, "print help")
	fs.BoolVar(&c.Wide, "w", false, "print 2 byte tables")
	fs.BoolVar(&c.Wide, "wide", false, "print 2 byte tables")
	fs.StringVar(&c.DataPath, "d", "", "directory of custom mapping files")
	fs.BoolVar(&c.Interactive, "i", false, "wait for input between pages")
	fs.StringVar(&rangeArg, "r", "", "table range from:to")
	fs.StringVar(&rangeArg, "range", "", "table range from:to")
	fs.BoolVar(&c.NoFormat, "n", false, "no format")
	fs.BoolVar(&c.NoFormat, "no-format", false, "no format")
	fs.BoolVar(&c.Raw, "N", false, "no format, raw control characters")
	fs.BoolVar(&c.Raw, "raw", false, "no format, raw control characters")
	fs.StringVar(&prefixArg, "x", "", "hex prefix bytes")
	fs.BoolVar(&c.Verbose, "c", false, "name control and whitespace characters")
	fs.StringVar(&c.OutputEncoding, "output-encoding", "", "encoding of the terminal")
	fs.BoolVar(&c.Watch, "watch", false, "re-render when the mapping file changes")
	fs.StringVar(&c.ConfigPath, "config", defaultConfig, "JSON defaults file")
	fs.BoolVar(&c.Debug, "debug", false, "debug logging")
	fs.BoolVar(&c.List, "list", false, "list known charsets")

	selectBackend := func(k backend.Kind) func(string) error {
		return func(string) error {
			kind = &k
			return nil
		}
	}
	fs.BoolFunc("mapfile", "use a mapping file", selectBackend(backend.KindMapFile))
	fs.BoolFunc("locale", "use a locale", selectBackend(backend.KindLocale))
	fs.BoolFunc("charset", "use the built-in charsets", selectBackend(backend.KindCharset))
	fs.BoolFunc("icu", "alias of --charset", selectBackend(backend.KindCharset))

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.Help = true
			return c, nil
		}
		return c, err
	}
	if c.Help {
		return c, nil
	}
	if c.Raw {
		c.NoFormat = true
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if remote && set["config"] {
		return c, errRemoteConfig
	}
	defaults, err := LoadDefaults(c.ConfigPath)
	if err != nil {
		return c, err
	}
	if err := c.applyDefaults(defaults, set, kind); err != nil {
		return c, err
	}

	if c.List {
		return c, nil
	}
	if len(positional) == 0 {
		return c, ErrNoCodepage
	}
	c.Ident = positional[0]

	if c.From, c.To, err = ParseRange(rangeArg); err != nil {
		return c, err
	}
	if !c.Wide {
		c.From, c.To = 0, 0
		c.Interactive = false
	}
	if prefixArg != "" {
		if c.Prefix, err = probe.ParsePrefix(prefixArg); err != nil {
			return c, err
		}
		if limit := probe.MaxPrefixLen(c.Wide); c.Prefix.Len() > limit {
			return c, fmt.Errorf("%w: at most %d bytes fit in front of %s tables", ErrPrefix, limit, tableWidth(c.Wide))
		}
	}
	if c.Watch && c.Backend != backend.KindMapFile {
		return c, fmt.Errorf("--watch needs the --mapfile backend")
	}
	return c, nil
}

func (c *Chart) applyDefaults(d Defaults, set map[string]bool, kind *backend.Kind) error {
	switch {
	case kind != nil:
		c.Backend = *kind
	case d.Backend != "":
		k, err := backend.ParseKind(d.Backend)
		if err != nil {
			return fmt.Errorf("config %s: %w", c.ConfigPath, err)
		}
		c.Backend = k
	}
	if !set["d"] && d.DataPath != "" {
		c.DataPath = d.DataPath
	}
	if !set["c"] && d.Verbose {
		c.Verbose = true
	}
	if !set["i"] && d.Interactive {
		c.Interactive = true
	}
	if !set["output-encoding"] && d.OutputEncoding != "" {
		c.OutputEncoding = d.OutputEncoding
	}
	return nil
}

// parseInterspersed lets flags follow positional arguments, the way
// getopt permutes argv.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		consumed := len(args) - len(rest)
		if consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// ParseRange parses from:to. A single index means that table only; an
// empty side keeps 0 or 255. Indexes are decimal or 0x-prefixed hex.
func ParseRange(s string) (from, to int, err error) {
	from, to = 0, MaxTable
	if s == "" {
		return from, to, nil
	}
	fromStr, toStr, hasColon := strings.Cut(s, ":")
	if fromStr != "" {
		if from, err = parseTable(fromStr); err != nil {
			return 0, 0, err
		}
	}
	switch {
	case !hasColon:
		to = from
	case toStr != "":
		if to, err = parseTable(toStr); err != nil {
			return 0, 0, err
		}
	}
	if to < from {
		return 0, 0, ErrRangeOrder
	}
	return from, to, nil
}

func tableWidth(wide bool) string {
	if wide {
		return "2 byte"
	}
	return "1 byte"
}

func parseTable(s string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrRange, s)
	}
	if n < 0 || n > MaxTable {
		return 0, ErrRange
	}
	return int(n), nil
}
