// Package chart ties configuration, backend and renderer together for one
// chart run.
package chart

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/stlalpha/cpdisp/internal/backend"
	"github.com/stlalpha/cpdisp/internal/config"
	"github.com/stlalpha/cpdisp/internal/logging"
	"github.com/stlalpha/cpdisp/internal/render"
	"github.com/stlalpha/cpdisp/internal/terminalio"
)

// Run opens the backend c selects, draws the chart to w and closes the
// backend. Nothing is written when the backend cannot be opened.
func Run(ctx context.Context, c config.Chart, w io.Writer, in render.LineReader) error {
	out, err := Output(w, c.OutputEncoding)
	if err != nil {
		return err
	}

	b, err := backend.Open(c.Backend, c.Ident, c.BackendOptions())
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logging.Warn("closing %s: %v", b.Name(), err)
		}
	}()
	logging.Debug("%s backend opened %s as %s, tables %d:%d", c.Backend, c.Ident, b.Name(), c.From, c.To)

	return render.New(out, in, c.RenderOptions()).Render(ctx, b)
}

// Output wraps w so chart text is encoded for a terminal using the named
// charset. An empty name or UTF-8 returns w unchanged.
func Output(w io.Writer, name string) (io.Writer, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "")) {
	case "", "utf8":
		return w, nil
	}
	enc, err := backend.LookupEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("output encoding %s: %w", name, err)
	}
	return terminalio.NewSelectiveWriter(w, enc), nil
}
