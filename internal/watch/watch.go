// Package watch reruns a callback when files under a set of roots change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 200 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Roots are watched recursively. Missing roots are skipped with a warning.
	Roots []string

	// Extensions limits events to files with these extensions, e.g. ".go".
	// Empty means every file.
	Extensions []string

	// Exclude lists directories whose contents never trigger a run, such as
	// the generated output tree.
	Exclude []string

	// Debounce is how long to wait for more changes before running.
	Debounce time.Duration

	// Logger for watcher events. Defaults to slog.Default().
	Logger *slog.Logger
}

// Watcher collects file system changes and reports them in batches.
type Watcher struct {
	opts    Options
	fsw     *fsnotify.Watcher
	logger  *slog.Logger
	exclude []string

	mu      sync.Mutex
	pending map[string]struct{}
}

// New creates a watcher and registers every directory under opts.Roots.
func New(opts Options) (*Watcher, error) {
	if len(opts.Roots) == 0 {
		return nil, errors.New("watch: no roots")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		opts:    opts,
		fsw:     fsw,
		logger:  logger,
		pending: make(map[string]struct{}),
	}
	for _, ex := range opts.Exclude {
		if abs, err := filepath.Abs(ex); err == nil {
			w.exclude = append(w.exclude, abs)
		}
	}
	for _, root := range opts.Roots {
		if err := w.addRecursive(root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Close releases the underlying watches.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run blocks until ctx is done, calling fn with the sorted set of changed
// paths after each quiet period. Calls to fn never overlap.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context, changed []string)) error {
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(event) {
				timer.Reset(w.opts.Debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-timer.C:
			if changed := w.drain(); len(changed) > 0 {
				fn(ctx, changed)
			}
		}
	}
}

// handle records event and reports whether it should trigger a run.
func (w *Watcher) handle(event fsnotify.Event) bool {
	path := event.Name
	if w.excluded(path) {
		return false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addRecursive(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			return false
		}
	}
	if event.Op == fsnotify.Chmod || !w.matches(path) {
		return false
	}

	w.mu.Lock()
	w.pending[path] = struct{}{}
	w.mu.Unlock()
	w.logger.Debug("file changed", "path", path, "op", event.Op.String())
	return true
}

func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.pending))
	for p := range w.pending {
		out = append(out, p)
	}
	clear(w.pending)
	slices.Sort(out)
	return out
}

func (w *Watcher) matches(path string) bool {
	if len(w.opts.Extensions) == 0 {
		return true
	}
	return slices.Contains(w.opts.Extensions, strings.ToLower(filepath.Ext(path)))
}

func (w *Watcher) excluded(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, ex := range w.exclude {
		if abs == ex || strings.HasPrefix(abs, ex+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// addRecursive watches root and every directory below it, skipping hidden,
// vendor and excluded directories.
func (w *Watcher) addRecursive(root string) error {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		w.logger.Warn("watch root does not exist", "path", root)
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		base := d.Name()
		if path != root && (base == "vendor" || base == "node_modules" || strings.HasPrefix(base, ".")) {
			return filepath.SkipDir
		}
		if w.excluded(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}
