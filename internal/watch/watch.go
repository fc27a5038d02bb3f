// ABOUTME: Directory watcher that re-ingests tag-value documents when they change
// ABOUTME: fsnotify events are filtered by a doublestar pattern and debounced

package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const (
	DefaultPattern  = "**/*.spdx"
	DefaultDebounce = 250 * time.Millisecond
)

// Handler is called once per changed file after the debounce window
type Handler func(ctx context.Context, path string)

type Config struct {
	// Pattern is matched against paths relative to the root, slash separated
	Pattern  string
	Debounce time.Duration
	Logger   zerolog.Logger
}

type Watcher struct {
	root     string
	pattern  string
	debounce time.Duration
	log      zerolog.Logger
	fsw      *fsnotify.Watcher
	onChange Handler

	mu      sync.Mutex
	pending map[string]struct{}
}

// New watches root and every directory below it. Hidden directories are
// skipped.
func New(root string, cfg Config, onChange Handler) (*Watcher, error) {
	if cfg.Pattern == "" {
		cfg.Pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(cfg.Pattern) {
		return nil, fmt.Errorf("watch: bad pattern %q", cfg.Pattern)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{
		root:     root,
		pattern:  cfg.Pattern,
		debounce: cfg.Debounce,
		log:      cfg.Logger,
		fsw:      fsw,
		onChange: onChange,
		pending:  make(map[string]struct{}),
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Existing lists files under root that already match the pattern
func (w *Watcher) Existing() ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(w.root), w.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.Join(w.root, filepath.FromSlash(m))
	}
	return out, nil
}

// Run delivers changes until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("watch error")
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		w.log.Debug().Str("dir", path).Msg("watching")
		return nil
	})
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.log.Warn().Err(err).Str("dir", ev.Name).Msg("cannot watch new directory")
			}
			return
		}
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	if !w.Matches(ev.Name) {
		return
	}
	w.mu.Lock()
	w.pending[ev.Name] = struct{}{}
	w.mu.Unlock()
}

// Matches reports whether path falls under root and matches the pattern
func (w *Watcher) Matches(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	ok, _ := doublestar.Match(w.pattern, filepath.ToSlash(rel))
	return ok
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	clear(w.pending)
	w.mu.Unlock()

	for _, p := range paths {
		if ctx.Err() != nil {
			return
		}
		// removed again inside the window
		if _, err := os.Stat(p); err != nil {
			continue
		}
		w.onChange(ctx, p)
	}
}
