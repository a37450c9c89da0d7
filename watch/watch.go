// Package watch turns file system changes under a directory into queued
// conversion runs.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/geoknoesis/rdf-tabular/dataset"
	"github.com/geoknoesis/rdf-tabular/engine"
)

const eventChannelBuffer = 256

// DefaultDebounce is used when Config.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	Dir      string
	Patterns []string
	Debounce time.Duration
}

// Event is a settled change to a matching file.
type Event struct {
	// Path is relative to the watched directory, slash separated.
	Path    string
	AbsPath string
}

// Watcher emits an Event once a matching file has stopped changing for the
// debounce period and its content differs from the last emitted version.
type Watcher struct {
	dir      string
	patterns []string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	now      func() time.Time

	pendingMu sync.Mutex
	pending   map[string]time.Time

	hashMu sync.Mutex
	hashes map[string]string

	events  chan Event
	dropped atomic.Int64
}

// New validates cfg and opens an fsnotify watcher.
func New(cfg Config, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Dir == "" {
		return nil, errors.New("watch directory required")
	}
	if len(cfg.Patterns) == 0 {
		return nil, errors.New("at least one watch pattern required")
	}
	for _, p := range cfg.Patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid watch pattern %q", p)
		}
	}
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, err
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		dir:      dir,
		patterns: append([]string(nil), cfg.Patterns...),
		debounce: debounce,
		watcher:  fsw,
		logger:   logger.With("component", "watch"),
		now:      time.Now,
		pending:  make(map[string]time.Time),
		hashes:   make(map[string]string),
		events:   make(chan Event, eventChannelBuffer),
	}, nil
}

// Events returns the channel of settled changes. It is closed when the
// watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Matches reports whether rel (relative to the watched directory) matches
// any pattern.
func (w *Watcher) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range w.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Existing lists files already present that match the patterns, sorted.
func (w *Watcher) Existing() ([]string, error) {
	fsys := os.DirFS(w.dir)
	seen := make(map[string]bool)
	var out []string
	for _, p := range w.patterns {
		matches, err := doublestar.Glob(fsys, p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", p, err)
		}
		for _, m := range matches {
			if !seen[m] && !hidden(m) {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Start adds watches for the directory tree and processes events until ctx
// is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.dir); err != nil {
		return err
	}
	go w.processEvents(ctx)
	w.logger.Info("Watcher started", "dir", w.dir, "patterns", w.patterns, "debounce", w.debounce)
	return nil
}

// Stop closes the fsnotify watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// DroppedEvents returns the number of events dropped on a full channel.
func (w *Watcher) DroppedEvents() int64 {
	return w.dropped.Load()
}

func (w *Watcher) addWatchesRecursive(root string) error {
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
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	tick := w.debounce / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)
		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name
	rel, err := filepath.Rel(w.dir, path)
	if err != nil || hidden(rel) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
			}
			return
		}
	}
	if !w.Matches(rel) {
		return
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.pendingMu.Lock()
		delete(w.pending, path)
		w.pendingMu.Unlock()
		w.hashMu.Lock()
		delete(w.hashes, path)
		w.hashMu.Unlock()
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] = w.now()
	w.pendingMu.Unlock()
	w.logger.Debug("Change detected", "path", rel, "op", event.Op.String())
}

// flushPending emits every pending file that has been quiet for the
// debounce period.
func (w *Watcher) flushPending(ctx context.Context) {
	now := w.now()
	var ready []string
	w.pendingMu.Lock()
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.pendingMu.Unlock()
	sort.Strings(ready)

	for _, path := range ready {
		select {
		case <-ctx.Done():
			return
		default:
		}
		content, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				w.logger.Warn("Failed to read changed file", "path", path, "error", err)
			}
			continue
		}
		sum := sha256.Sum256(content)
		hash := hex.EncodeToString(sum[:])

		w.hashMu.Lock()
		unchanged := w.hashes[path] == hash
		w.hashes[path] = hash
		w.hashMu.Unlock()
		if unchanged {
			continue
		}

		rel, _ := filepath.Rel(w.dir, path)
		w.sendEvent(Event{Path: filepath.ToSlash(rel), AbsPath: path})
	}
}

func (w *Watcher) sendEvent(event Event) {
	select {
	case w.events <- event:
		w.logger.Debug("Sent watch event", "path", event.Path)
	default:
		dropped := w.dropped.Add(1)
		w.logger.Warn("Event channel full, dropping event", "path", event.Path, "total_dropped", dropped)
	}
}

// Pump submits a file job to q for every event until events is closed or
// ctx is done.
func Pump(ctx context.Context, events <-chan Event, q *engine.Queue, opts *dataset.FileOptions) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := q.Submit(ctx, engine.FileJob(ev.AbsPath, opts)); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, engine.ErrQueueClosed) {
					return nil
				}
				return fmt.Errorf("queue %s: %w", ev.Path, err)
			}
		}
	}
}

func hidden(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
