package mitigate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/oarkflow/log"
)

// CatalogWatcher reloads an external catalog file when it changes on disk.
// Each successful reload hands a freshly parsed catalog to the callback;
// running engine instances stay immutable and are swapped, never mutated.
// A reload that fails to parse keeps the current catalog in place.
type CatalogWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	logger   *log.Logger
	onReload func(*Catalog)
}

func NewCatalogWatcher(path string, logger *log.Logger, onReload func(*Catalog)) (*CatalogWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog watcher: %w", err)
	}
	// Watch the directory: editors and config managers replace files
	// rather than writing in place.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	return &CatalogWatcher{
		watcher:  watcher,
		path:     filepath.Clean(path),
		logger:   logger,
		onReload: onReload,
	}, nil
}

// Start consumes filesystem events until the context is canceled or the
// watcher is closed.
func (w *CatalogWatcher) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				w.reload()
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				if w.logger != nil {
					w.logger.Error().Err(err).Msg("catalog watcher error")
				}
			}
		}
	}()
}

func (w *CatalogWatcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if w.logger != nil {
			w.logger.Error().Err(err).Str("path", w.path).Msg("catalog reload read failed")
		}
		return
	}
	catalog, err := ParseCatalog(data)
	if err != nil {
		if w.logger != nil {
			w.logger.Error().Err(err).Str("path", w.path).Msg("catalog reload rejected, keeping current catalog")
		}
		return
	}
	if w.logger != nil {
		w.logger.Info().Str("path", w.path).Int("entries", catalog.Len()).Msg("catalog reloaded")
	}
	if w.onReload != nil {
		w.onReload(catalog)
	}
}

func (w *CatalogWatcher) Close() error {
	return w.watcher.Close()
}
