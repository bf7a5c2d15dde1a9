// Package watch rebuilds packages when their files change. A Watcher
// reports debounced batches of changed paths; a Rebuilder maps them to
// workspace packages and runs the build for those.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/logging"
)

// DefaultDebounce is used when Config.Debounce is not positive
const DefaultDebounce = 300 * time.Millisecond

var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// Config holds the parameters of a Watcher
type Config struct {
	// Root is the directory watched recursively
	Root string
	// Ignore are doublestar patterns, relative to Root, added to the
	// default ignores
	Ignore   []string
	Debounce time.Duration
	// OnChange receives the absolute paths changed during one debounce
	// window, sorted
	OnChange func(ctx context.Context, changed []string) error
}

// Watcher coalesces filesystem events under a root directory
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	root     string
	ignores  []string
	debounce time.Duration
	started  atomic.Bool
}

// New validates cfg and registers every directory under Root that is not
// ignored.
func New(cfg Config) (*Watcher, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrWatch, "cannot resolve watch root").
			WithDetail("root", cfg.Root)
	}
	for _, p := range cfg.Ignore {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Newf(errors.ErrConfigValid, "invalid ignore pattern %q", p).
				WithDetail("pattern", p)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrWatch, "cannot create file watcher")
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		root:     root,
		ignores:  append(append([]string(nil), defaultIgnores...), cfg.Ignore...),
		debounce: debounce,
	}
	if err := w.addDirectories(); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is done. OnChange never runs twice at the
// same time; events arriving during a run are delivered afterwards.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New(errors.ErrWatch, "watcher is already running")
	}
	logger := logging.GetLogger("watch")

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			logger.Debug().Msg("Build in progress, delaying changes")
			mu.Lock()
			timer.Reset(w.debounce)
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		changed := make([]string, 0, len(pending))
		for p := range pending {
			changed = append(changed, p)
		}
		clear(pending)
		mu.Unlock()
		if len(changed) == 0 || w.cfg.OnChange == nil {
			return
		}

		sort.Strings(changed)
		logger.Debug().Strs("changed", changed).Msg("Files changed")
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			logger.Error().Err(err).Msg("Rebuild failed")
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close file watcher")
		}
	}()

	logger.Info().Str("root", w.root).Dur("debounce", w.debounce).Msg("Watching for changes")
	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New(errors.ErrWatch, "file watcher closed unexpectedly")
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}
			if w.isIgnored(evt.Name) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}
			logger.Trace().Str("path", evt.Name).Str("op", evt.Op.String()).Msg("Event")

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New(errors.ErrWatch, "file watcher closed unexpectedly")
			}
			logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

func (w *Watcher) addDirectories() error {
	logger := logging.GetLogger("watch")
	count := 0
	err := filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			logger.Debug().Err(err).Str("path", path).Msg("Skipping inaccessible path")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.isIgnored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return errors.Wrap(err, errors.ErrWatch, "cannot watch directory").WithDetail("path", path)
		}
		count++
		return nil
	})
	if err != nil {
		return err
	}
	logger.Debug().Int("directories", count).Msg("Registered directories")
	return nil
}

func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		logger := logging.GetLogger("watch")
		logger.Warn().Err(err).Str("path", path).Msg("Cannot watch new directory")
	}
}

// isIgnored matches path, and path as a directory, against the ignores
func (w *Watcher) isIgnored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, p := range w.ignores {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, rel+"/"); ok {
			return true
		}
	}
	return false
}
