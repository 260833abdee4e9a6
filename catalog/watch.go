package catalog

import (
	"context"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"iruka-hub/applog"
)

// Watch reloads the catalog whenever its file changes on disk. A reload that
// fails validation keeps the previously loaded catalog and logs the reason.
// Blocks until the context is canceled.
func (c *Catalog) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func(watcher *fsnotify.Watcher) {
		_ = watcher.Close()
	}(watcher)

	if err = watcher.Add(c.path); err != nil {
		return err
	}

	applog.Info("Watching game catalog for changes", zap.String("path", c.path))

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if reloadErr := c.Reload(); reloadErr != nil {
				applog.Warn("Catalog reload failed, keeping previous catalog",
					zap.String("path", c.path),
					zap.Error(reloadErr),
				)
				continue
			}
			applog.Info("Game catalog reloaded",
				zap.String("path", c.path),
				zap.Int("games", c.Len()),
			)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			applog.Warn("Catalog watcher error", zap.Error(watchErr))
		case <-ctx.Done():
			return nil
		}
	}
}
