package runtime

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/cuemby/kiln/pkg/log"
)

// Watch starts a filesystem watcher over the package tree and serves cached
// enumeration results until a change is observed. It blocks until ctx is
// cancelled. Runtimes are installed rarely, so any event simply drops the
// cache; the next ListAvailable rescans.
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	logger := log.WithComponent("runtime")

	if err := watcher.Add(r.root); err != nil {
		logger.Warn().Err(err).Str("dir", r.root).Msg("cannot watch package root")
		return err
	}
	// Watch each language subtree so new version directories are noticed
	for _, lang := range SupportedLanguages() {
		base := filepath.Join(r.root, lang)
		if info, err := os.Stat(base); err == nil && info.IsDir() {
			if err := watcher.Add(base); err != nil {
				logger.Warn().Err(err).Str("dir", base).Msg("cannot watch language dir")
			}
		}
	}

	r.mu.Lock()
	r.watching = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.watching = false
		r.cached = nil
		r.mu.Unlock()
	}()

	logger.Info().Str("root", r.root).Msg("watching package tree")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			r.invalidate()
			// A newly created language dir needs its own watch
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if filepath.Dir(event.Name) == r.root {
						_ = watcher.Add(event.Name)
					}
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("package tree watch error")
		}
	}
}
