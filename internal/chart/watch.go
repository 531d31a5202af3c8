package chart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/stlalpha/cpdisp/internal/config"
	"github.com/stlalpha/cpdisp/internal/logging"
	"github.com/stlalpha/cpdisp/internal/render"
)

// DebounceDuration coalesces the burst of events an editor save produces.
var DebounceDuration = 300 * time.Millisecond

// Watch draws the chart, then redraws it whenever the mapping file is
// written or replaced, until ctx is done. A mapping file that fails to
// load is reported and the previous chart stays on screen.
func Watch(ctx context.Context, c config.Chart, w io.Writer, in render.LineReader) error {
	if err := Run(ctx, c, w, in); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch its directory.
	path := filepath.Clean(c.Ident)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	logging.Info("watching %s for changes", path)

	reload := make(chan struct{}, 1)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(DebounceDuration, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("file watcher error: %v", err)

		case <-reload:
			logging.Info("%s changed, redrawing", path)
			if err := Run(ctx, c, w, in); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logging.Warn("failed to reload %s: %v", path, err)
			}
		}
	}
}
