package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Watcher hot-reloads the config file so escalation settings (keyword, reply
// texts, system prompt) can change without a restart. Readers take cheap
// atomic snapshots; a swap never tears a partially-written config.
type Watcher struct {
	path string
	cur  atomic.Pointer[Config]
	fsw  *fsnotify.Watcher
}

// NewWatcher creates a Watcher seeded with the already-loaded config.
func NewWatcher(path string, initial *Config) *Watcher {
	w := &Watcher{path: path}
	w.cur.Store(initial)
	return w
}

// Current returns the latest config snapshot.
func (w *Watcher) Current() *Config {
	return w.cur.Load()
}

// Escalation returns the latest escalation settings snapshot.
func (w *Watcher) Escalation() EscalationConfig {
	return w.cur.Load().Escalation
}

// Start watches the config file's directory and reloads on changes.
// Watching the directory rather than the file survives editors that
// replace the file on save. Non-blocking after setup.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	w.fsw = fsw

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go w.loop(ctx)

	slog.Info("config watcher started", "path", w.path)
	return nil
}

// Stop closes the underlying filesystem watcher.
func (w *Watcher) Stop() {
	if w.fsw != nil {
		_ = w.fsw.Close()
	}
}

func (w *Watcher) loop(ctx context.Context) {
	target := filepath.Clean(w.path)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "error", err)
		}
	}
}

// reload re-parses the config file and swaps the snapshot. A broken file
// keeps the previous snapshot in place.
func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		slog.Warn("config reload failed, keeping previous config", "error", err)
		return
	}
	w.cur.Store(cfg)
	slog.Info("config reloaded",
		"keyword", cfg.Escalation.Keyword,
		"provider", cfg.Escalation.Provider,
	)
}
