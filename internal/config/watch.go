package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

var watchDebounce = 250 * time.Millisecond

// Watch reloads the config at path whenever it changes and hands the result
// to onChange. The parent directory is watched so editors that replace the
// file on save are still seen. The returned channel closes when the watcher
// stops.
func Watch(ctx context.Context, path string, onChange func(*Config, error)) (<-chan struct{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	done := make(chan struct{})
	go func() {
		defer watcher.Close()
		defer close(done)

		debounceTimer := time.NewTimer(watchDebounce)
		debounceTimer.Stop()
		defer debounceTimer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if !debounceTimer.Stop() {
					select {
					case <-debounceTimer.C:
					default:
					}
				}
				debounceTimer.Reset(watchDebounce)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("config watcher error")

			case <-debounceTimer.C:
				cfg, err := LoadFrom(path)
				if err != nil {
					log.WithError(err).Warn("config reload failed")
				} else {
					log.WithField("path", path).Info("config reloaded")
				}
				if onChange != nil {
					onChange(cfg, err)
				}
			}
		}
	}()

	return done, nil
}
