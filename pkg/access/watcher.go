package access

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce coalesces rapid editor write/rename sequences into a
// single reload.
const defaultDebounce = 100 * time.Millisecond

// Watcher reloads a rules file into a Controller whenever it changes.
// Reload failures keep the previous rules active.
type Watcher struct {
	path       string
	controller *Controller
	watcher    *fsnotify.Watcher
	debounce   time.Duration
	logger     *slog.Logger
	done       chan struct{}
}

// NewWatcher creates a watcher for the given rules file. The file's parent
// directory is watched rather than the file itself so atomic
// rename-into-place saves are observed.
func NewWatcher(path string, controller *Controller) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:       path,
		controller: controller,
		watcher:    fw,
		debounce:   defaultDebounce,
		logger:     slog.Default().With("component", "access.watcher"),
		done:       make(chan struct{}),
	}, nil
}

// Start begins watching until the context is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	return w.watcher.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
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
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("rules watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	rules, err := LoadRules(w.path)
	if err != nil {
		w.logger.Error("rules reload failed, keeping previous rules",
			"path", w.path,
			"error", err,
		)
		return
	}

	w.controller.SetRules(rules)
	w.logger.Info("rules reloaded",
		"path", w.path,
		"banned_ips", len(rules.BannedIPs),
		"allowed_origins", len(rules.AllowedOrigins),
	)
}
