package main

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watch runs paths once, then re-runs a file each time it is written until
// ctx is cancelled. A file that fails to load is reported and watched on.
func (a *app) watch(ctx context.Context, s *session, paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := make(map[string]bool, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		// Watch the directory so atomic saves that replace the file are seen.
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return err
		}
		watched[abs] = true
	}

	s.runFiles(paths)
	a.info("watching %d file(s), press Ctrl+C to stop", len(paths))
	a.logger.Info("watching for changes", "files", len(paths))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !watched[abs] {
				continue
			}
			a.logger.Debug("scenario changed", "path", event.Name, "op", event.Op.String())
			s.runFiles([]string{event.Name})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Error("watcher error", "error", err)
		}
	}
}
