package backend

import (
	"fmt"
	"os"

	"github.com/stlalpha/cpdisp/internal/decode"
	"github.com/stlalpha/cpdisp/internal/logging"
	"github.com/stlalpha/cpdisp/internal/mapfile"
	"github.com/stlalpha/cpdisp/internal/ucd"
)

// mapFileBackend decodes through a table parsed from a mapping file.
type mapFileBackend struct {
	path   string
	table  *mapfile.Table
	closed bool
}

func openMapFile(path string) (Backend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	defer f.Close()

	table, err := mapfile.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	logging.Debug("mapping file %s: %d entries, source lengths %v", path, table.Len(), table.Lengths())
	return &mapFileBackend{path: path, table: table}, nil
}

// NewTable wraps an already built table, for callers that construct one
// programmatically.
func NewTable(name string, table *mapfile.Table) Backend {
	return &mapFileBackend{path: name, table: table}
}

func (b *mapFileBackend) Name() string { return b.path }

// Fallback prefers the comment the mapping file attached to the codepoint.
func (b *mapFileBackend) Fallback(r rune) string {
	if name, ok := b.table.Name(r); ok {
		return name
	}
	return ucd.Label(r)
}

func (b *mapFileBackend) Decode(probe []byte) decode.Outcome {
	return b.table.Decode(probe, OutputCapacity)
}

func (b *mapFileBackend) Close() error {
	if b.closed {
		return errClosed
	}
	b.closed = true
	b.table = nil
	return nil
}
