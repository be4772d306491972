package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"hotkeyd/log"
)

// settle coalesces the burst of events an editor produces for one save.
const settle = 150 * time.Millisecond

// Watch calls apply with the new config whenever path changes on disk. The
// directory is watched rather than the file so atomic renames are seen. A
// file that fails to parse is logged and skipped. Watch returns once the
// watcher is set up; it stops when ctx is done.
func Watch(ctx context.Context, path string, apply func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	go watchLoop(ctx, w, filepath.Clean(path), apply)
	return nil
}

func watchLoop(ctx context.Context, w *fsnotify.Watcher, path string, apply func(*Config)) {
	defer w.Close()
	timer := time.NewTimer(settle)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(settle)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warnf("config watcher: %v", err)
		case <-timer.C:
			data, err := os.ReadFile(path)
			if err != nil {
				log.Warnf("reload %s: %v", path, err)
				continue
			}
			cfg, err := Parse(data)
			if err != nil {
				log.Warnf("reload %s: %v", path, err)
				continue
			}
			log.Infof("reloaded %s (%d bindings)", path, len(cfg.Bindings))
			apply(cfg)
		}
	}
}
