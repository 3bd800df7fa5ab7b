package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/nvr-ai/go-motion/logger"
	"github.com/pkg/errors"
)

// Watch reloads the configuration file whenever it is written or replaced
// and passes every valid result to onChange. Invalid files are logged and
// skipped, so the last good configuration stays in effect.
//
// The parent directory is watched rather than the file itself, because many
// editors save by renaming a temporary file over the original.
//
// Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create config watcher")
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "watch %s", filepath.Dir(target))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(target)
			if err != nil {
				logger.Warn("config", "ignoring invalid update of %s: %v", target, err)
				continue
			}
			logger.Info("config", "reloaded %s", target)
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config", "watcher error: %v", err)
		}
	}
}
