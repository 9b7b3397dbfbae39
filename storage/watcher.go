package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"MusicFlow/logger"

	"github.com/fsnotify/fsnotify"
)

// Watch evicts cached documents whose files change on disk, so edits made
// outside the server are picked up. It returns once the watcher is running
// and stops when ctx is cancelled. Without a cache there is nothing to do.
func (s *Store) Watch(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create data directory watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name, isDoc := documentName(event.Name)
				if !isDoc {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					logger.Debug("collection changed on disk",
						logger.String("collection", name), logger.String("op", event.Op.String()))
					s.evict(ctx, name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("data directory watcher error", logger.ErrorField(err))
			}
		}
	}()
	return nil
}

// documentName maps "<dir>/tracks.json" to "tracks".
func documentName(path string) (string, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".json") {
		return "", false
	}
	return strings.TrimSuffix(base, ".json"), true
}
