package prefs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reports preference changes made by other processes (another running
// client, or a manual edit). The directory is watched rather than the file
// because Save replaces the file by rename.
//
// The returned channel is closed when ctx is done or the watcher fails.
func (s Store) Watch(ctx context.Context, log *zap.Logger) (<-chan Prefs, error) {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}
	if err := w.Add(s.Dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", s.Dir, err)
	}

	out := make(chan Prefs, 1)
	target := filepath.Clean(s.Path())
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				p, err := s.Load()
				if err != nil {
					log.Debug("prefs reload failed", zap.Error(err))
					continue
				}
				select {
				case out <- p:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("prefs watcher error", zap.Error(err))
			}
		}
	}()
	return out, nil
}
