// Package watch re-runs generation when schema or template files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before running the callback.
const DefaultDebounce = 200 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	// Paths are files or directories. Directories are watched
	// recursively; for a file only events on that file count.
	Paths []string
	// Ignore holds doublestar patterns matched against slash-separated
	// event paths, e.g. "**/.git/**" or "**/*.swp".
	Ignore []string
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	Logger   *slog.Logger
}

// ChangeFunc is called with the sorted set of paths changed in one burst.
type ChangeFunc func(ctx context.Context, changed []string) error

// Watcher collects file system events and calls a ChangeFunc once per
// debounced burst. Callbacks never overlap.
type Watcher struct {
	cfg   Config
	fsw   *fsnotify.Watcher
	log   *slog.Logger
	files map[string]bool
	dirs  map[string]bool
}

// New creates a watcher over cfg.Paths. Every path must exist.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("watch: no paths given")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{
		cfg:   cfg,
		fsw:   fsw,
		log:   log.With("component", "watch"),
		files: make(map[string]bool),
		dirs:  make(map[string]bool),
	}
	for _, p := range cfg.Paths {
		if err := w.add(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		// Editors often replace files by rename, so watch the directory
		// and filter by name.
		w.files[abs] = true
		return w.addDir(filepath.Dir(abs), false)
	}
	return w.addDir(abs, true)
}

func (w *Watcher) addDir(dir string, recursive bool) error {
	if w.ignored(dir) {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watch: %s: %w", dir, err)
	}
	if !recursive {
		return nil
	}
	w.dirs[dir] = true
	w.log.Debug("watching directory", "path", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := w.addDir(filepath.Join(dir, e.Name()), true); err != nil {
				return err
			}
		}
	}
	return nil
}

// relevant reports whether an event should trigger the callback.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if w.ignored(ev.Name) {
		return false
	}
	if w.files[ev.Name] {
		return true
	}
	return w.dirs[filepath.Dir(ev.Name)]
}

func (w *Watcher) ignored(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range w.cfg.Ignore {
		if match, _ := doublestar.Match(pattern, slashed); match {
			return true
		}
	}
	return false
}

// Run delivers debounced changes to fn until ctx is cancelled. Errors from
// fn are logged and do not stop the watcher. Run closes the watcher before
// returning.
func (w *Watcher) Run(ctx context.Context, fn ChangeFunc) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.cfg.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.log.Debug("file event", "path", ev.Name, "op", ev.Op.String())

			if ev.Has(fsnotify.Create) && w.dirs[filepath.Dir(ev.Name)] {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addDir(ev.Name, true); err != nil {
						w.log.Warn("cannot watch new directory", "path", ev.Name, "error", err)
					}
				}
			}
			if !w.relevant(ev) {
				continue
			}
			pending[ev.Name] = true
			timer.Reset(w.cfg.Debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			slices.Sort(changed)
			clear(pending)

			w.log.Info("change detected", "files", len(changed))
			if err := fn(ctx, changed); err != nil {
				w.log.Error("regeneration failed", "error", err)
			}
		}
	}
}
