package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"pomodoro/internal/logging"
	"pomodoro/internal/ui/preferences"
)

const reloadDebounce = 150 * time.Millisecond

// Watch reloads the settings file whenever it changes and passes the result
// to onChange. It watches the parent directory so editors that replace the
// file are still seen. Watching stops when ctx is done.
func Watch(ctx context.Context, path string, onChange func(preferences.Settings)) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go watchLoop(ctx, watcher, path, onChange)
	return nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, onChange func(preferences.Settings)) {
	defer watcher.Close()

	name := filepath.Clean(path)
	debounce := time.NewTimer(reloadDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			debounce.Reset(reloadDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Warnf("settings watcher: %v", err)
		case <-debounce.C:
			settings, err := LoadSettings(path)
			if err != nil {
				logging.Warnf("reload settings: %v", err)
				continue
			}
			logging.Infof("settings reloaded from %s", path)
			onChange(settings)
		}
	}
}
