package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc receives the freshly loaded configuration after a change
// to the config file. Only the fields the caller chooses to apply take
// effect at runtime (log level, license enforcement mode); everything
// else waits for a restart.
type ReloadFunc func(cfg *Config)

// Watcher watches the configuration file and triggers debounced
// reloads. A reload that fails to parse or validate is logged and
// dropped; the running configuration stays untouched.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewWatcher creates a Watcher for the given config file path.
func NewWatcher(path string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     path,
		debounce: 100 * time.Millisecond,
		logger:   logger.With("component", "config_watcher"),
		done:     make(chan struct{}),
	}
}

// Watch blocks until the context is cancelled, invoking onReload for
// every successfully re-loaded configuration.
func (w *Watcher) Watch(ctx context.Context, onReload ReloadFunc) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()
	defer close(w.done)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which drops
	// a direct file watch.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	w.logger.Info("config watcher started", "path", w.path)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload(onReload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watch error", "error", err)
		}
	}
}

func (w *Watcher) reload(onReload ReloadFunc) {
	cfg, err := LoadConfigWithEnvOverrides(w.path)
	if err != nil {
		w.logger.Error("config reload failed, keeping current configuration",
			"error", err)
		return
	}
	w.logger.Info("configuration reloaded", "path", w.path)
	onReload(cfg)
}
