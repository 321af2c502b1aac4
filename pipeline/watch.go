package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures the regenerate-on-change loop.
type WatcherConfig struct {
	// Paths are the input files to watch (knowledge graph, structure file).
	Paths []string

	// DebounceDelay is how long to wait for more changes before regenerating.
	DebounceDelay time.Duration

	// Regenerate runs one pipeline pass.
	Regenerate func(ctx context.Context) error

	// Logger for logging events
	Logger *slog.Logger
}

// Watcher re-runs the pipeline whenever a watched input file changes.
// Changes are debounced so a burst of writes triggers one regeneration.
type Watcher struct {
	config  WatcherConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	// Debouncing: collect changed paths before regenerating
	pendingMu sync.Mutex
	pending   map[string]struct{}

	watched map[string]struct{}
}

// NewWatcher creates a watcher for the configured input files. Parent
// directories are watched rather than the files themselves so atomic
// rename-into-place saves are seen.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if config.DebounceDelay == 0 {
		config.DebounceDelay = 500 * time.Millisecond
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		config:  config,
		watcher: fsw,
		logger:  logger,
		pending: make(map[string]struct{}),
		watched: make(map[string]struct{}),
	}

	dirs := make(map[string]struct{})
	for _, p := range config.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.watched[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	return w, nil
}

// Run blocks, regenerating on changes, until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.config.DebounceDelay, func() {
			select {
			case fire <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.pendingMu.Lock()
			w.pending[event.Name] = struct{}{}
			w.pendingMu.Unlock()
			schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", slog.String("error", err.Error()))

		case <-fire:
			w.pendingMu.Lock()
			changed := make([]string, 0, len(w.pending))
			for p := range w.pending {
				changed = append(changed, p)
			}
			w.pending = make(map[string]struct{})
			w.pendingMu.Unlock()

			w.logger.Info("Inputs changed, regenerating",
				slog.Any("paths", changed))
			if err := w.config.Regenerate(ctx); err != nil {
				w.logger.Error("Regeneration failed", slog.String("error", err.Error()))
			}
		}
	}
}

// relevant reports whether the event touches a watched input file.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := w.watched[abs]
	return ok
}
