package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Root error for all watcher failures.
var ErrWatch = errors.New("watch error")

// Quiet period after the last event before a change is reported. Editors
// write, rename, and chmod in quick succession; the window folds those
// into a single notification.
const defaultDebounce = 500 * time.Millisecond

// Patterns excluded from watching regardless of caller configuration.
var defaultIgnores = []string{
	"**/.git/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// Holds watcher configuration.
type Config struct {
	Root     string        // Directory tree to watch. Empty uses the working directory.
	Ignore   []string      // Additional doublestar patterns to exclude, relative to Root.
	Debounce time.Duration // Override for the debounce window. Zero uses the default.
}

// Watches a directory tree and reports debounced change notifications.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	ignores  []string
	debounce time.Duration
	changes  chan struct{}
}

// Creates a watcher over the configured root.
//
// Every non-ignored directory under the root is registered before New
// returns; directories created later are picked up by [Watcher.Run].
func New(cfg Config) (*Watcher, error) {
	root := cfg.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrWatch, err)
		}
		root = wd
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWatch, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWatch, err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	ignores := append([]string(nil), defaultIgnores...)
	ignores = append(ignores, cfg.Ignore...)

	w := &Watcher{
		fsw:      fsw,
		root:     root,
		ignores:  ignores,
		debounce: debounce,
		changes:  make(chan struct{}, 1),
	}

	if err := w.addDirectories(); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// Returns the channel on which change notifications are delivered.
//
// The channel carries at most one pending notification; changes arriving
// while one is pending coalesce into it.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Processes filesystem events until the context is cancelled.
//
// Returns nil on cancellation. The underlying watcher is closed when Run
// returns; Run must be called at most once.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	notify := func() {
		select {
		case w.changes <- struct{}{}:
		default:
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("%w: event channel closed", ErrWatch)
			}

			rel, err := filepath.Rel(w.root, evt.Name)
			if err != nil || w.ignored(rel) {
				continue
			}

			// Extend the watch to directories created after startup.
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}

			if timer == nil {
				timer = time.AfterFunc(w.debounce, notify)
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("%w: error channel closed", ErrWatch)
			}
			slog.Warn("watch error", "error", err)
		}
	}
}

// Registers every non-ignored directory under the root.
func (w *Watcher) addDirectories() error {
	return filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil
		}
		if w.ignored(rel) || w.ignored(rel+"/") {
			return filepath.SkipDir
		}

		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("%w: failed to watch %s: %w", ErrWatch, path, err)
		}
		return nil
	})
}

// Adds a newly created directory to the watch unless it is ignored.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return
	}
	if w.ignored(rel) || w.ignored(rel+"/") {
		return
	}

	if err := w.fsw.Add(path); err != nil {
		slog.Warn("failed to watch new directory", "path", path, "error", err)
	}
}

// Whether the path, relative to the root, matches an ignore pattern.
func (w *Watcher) ignored(rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pattern := range w.ignores {
		if matched, err := doublestar.Match(pattern, normalized); err == nil && matched {
			return true
		}
	}
	return false
}
