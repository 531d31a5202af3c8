// Package backend unifies the conversion engines behind one decode
// contract. The set of engines is closed: the mapping-table codec, the
// golang.org/x/text charset engines, and the locale engine.
package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stlalpha/cpdisp/internal/decode"
)

// OutputCapacity is the fixed UTF-8 output window handed to every engine.
const OutputCapacity = 64

var (
	// ErrNotFound means the identifier could not be resolved by the engine.
	ErrNotFound = errors.New("not found")
	// ErrInvalidData means a mapping file failed to parse.
	ErrInvalidData = errors.New("invalid data")
)

// Kind selects a conversion engine.
type Kind int

const (
	KindCharset Kind = iota
	KindLocale
	KindMapFile
)

var kindNames = map[Kind]string{
	KindCharset: "charset",
	KindLocale:  "locale",
	KindMapFile: "mapfile",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("backend(%d)", int(k))
}

// ParseKind maps a backend name to its Kind. "icu" is accepted as an alias
// for the charset engine.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "charset", "icu":
		return KindCharset, nil
	case "locale":
		return KindLocale, nil
	case "mapfile", "mapping", "map":
		return KindMapFile, nil
	}
	return 0, fmt.Errorf("unknown backend %q", s)
}

// Options are the engine-independent open parameters.
type Options struct {
	// DataPath is a directory of mapping files consulted by the charset
	// engine before the built-in encodings.
	DataPath string
}

// Backend is a conversion engine opened for one encoding.
type Backend interface {
	// Decode decodes a single probe.
	Decode(probe []byte) decode.Outcome
	// Name is the resolved encoding name, for headers and logs.
	Name() string
	// Fallback names r when the Unicode character database has no name.
	Fallback(r rune) string
	// Close releases the engine. It must be called exactly once.
	Close() error
}

// OpenError carries the failing identifier together with ErrNotFound or
// ErrInvalidData.
type OpenError struct {
	Kind  Kind
	Ident string
	Err   error
}

func (e *OpenError) Error() string {
	switch {
	case errors.Is(e.Err, ErrInvalidData):
		return fmt.Sprintf("Invalid mapping file %s", e.Ident)
	case e.Kind == KindLocale:
		return fmt.Sprintf("No such locale %s", e.Ident)
	case e.Kind == KindMapFile:
		return fmt.Sprintf("No such file %s", e.Ident)
	default:
		return fmt.Sprintf("No such codepage %s", e.Ident)
	}
}

func (e *OpenError) Unwrap() error { return e.Err }

// Open resolves ident with the selected engine.
func Open(kind Kind, ident string, opts Options) (Backend, error) {
	var (
		b   Backend
		err error
	)
	switch kind {
	case KindCharset:
		b, err = openCharset(ident, opts)
	case KindLocale:
		b, err = openLocale(ident)
	case KindMapFile:
		b, err = openMapFile(ident)
	default:
		err = fmt.Errorf("%w: unknown backend %s", ErrNotFound, kind)
	}
	if err != nil {
		return nil, &OpenError{Kind: kind, Ident: ident, Err: err}
	}
	return b, nil
}
