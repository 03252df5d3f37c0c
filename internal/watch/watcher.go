// Package watch reports content changes to fact graph documents under a
// directory tree.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ppiankov/triplecheck/internal/cache"
	"github.com/ppiankov/triplecheck/internal/logging"
)

const eventBuffer = 256

// Op is the kind of change reported for a document
type Op string

const (
	OpCreate Op = "create"
	OpModify Op = "modify"
	OpDelete Op = "delete"
)

// Event is a debounced document change
type Event struct {
	Path string // Absolute or root-joined path
	Rel  string // Path relative to the watched root
	Op   Op
}

// Config controls the watcher
type Config struct {
	Debounce    time.Duration
	Extensions  []string          // Defaults to .ttl and .nt
	ExcludeDirs []string          // Defaults to .git and the cache dir name
	Filter      func(string) bool // Optional extra filter on the file path
}

// Watcher watches a directory tree recursively
type Watcher struct {
	root       string
	cfg        Config
	fsw        *fsnotify.Watcher
	log        *zap.SugaredLogger
	extensions map[string]bool
	excludes   map[string]bool

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.RWMutex
	hashes map[string]string

	events  chan Event
	dropped atomic.Int64
}

// New creates a watcher rooted at root
func New(root string, cfg Config, log *zap.SugaredLogger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fs watcher")
	}

	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}

	extensions := make(map[string]bool)
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".ttl", ".nt"}
	}
	for _, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[strings.ToLower(ext)] = true
	}

	excludes := map[string]bool{".git": true}
	for _, d := range cfg.ExcludeDirs {
		excludes[d] = true
	}

	return &Watcher{
		root:       root,
		cfg:        cfg,
		fsw:        fsw,
		log:        logging.OrNop(log),
		extensions: extensions,
		excludes:   excludes,
		pending:    make(map[string]fsnotify.Op),
		hashes:     make(map[string]string),
		events:     make(chan Event, eventBuffer),
	}, nil
}

// Events returns the change channel. It is closed when the watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start adds the watches and begins processing in the background
func (w *Watcher) Start(ctx context.Context) error {
	info, err := os.Stat(w.root)
	if err != nil {
		return errors.Wrapf(err, "watch root %s", w.root)
	}
	if !info.IsDir() {
		return errors.Newf("watch root %s is not a directory", w.root)
	}

	if err := w.addRecursive(w.root); err != nil {
		return err
	}

	go w.loop(ctx)

	w.log.Infow("watching for changes",
		logging.FieldPath, w.root,
		"debounce", w.cfg.Debounce,
		"extensions", w.cfg.Extensions)
	return nil
}

// Stop closes the underlying watcher
func (w *Watcher) Stop() error {
	return w.fsw.Close()
}

// Seed records the current content hash of a file, so an event for it is
// only reported once its content differs.
func (w *Watcher) Seed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	w.setHash(path, cache.ContentHash(data))
	return nil
}

// Dropped returns the number of events lost to a full channel
func (w *Watcher) Dropped() int64 {
	return w.dropped.Load()
}

func (w *Watcher) setHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = hash
}

func (w *Watcher) hash(path string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	h, ok := w.hashes[path]
	return h, ok
}

func (w *Watcher) skipDir(path string) bool {
	base := filepath.Base(path)
	if path == w.root {
		return false
	}
	return w.excludes[base] || strings.HasPrefix(base, ".")
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.skipDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Warnw("cannot watch directory", logging.FieldPath, path, logging.FieldError, err)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.cfg.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Errorw("watcher error", logging.FieldError, err)
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	path := ev.Name

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.skipDir(path) {
				// files created before the watch was added are picked up by the walk
				if err := w.addRecursive(path); err != nil {
					w.log.Warnw("cannot watch new directory", logging.FieldPath, path, logging.FieldError, err)
				}
				w.queueExisting(path)
			}
			return
		}
	}

	if !w.wanted(path) {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] |= ev.Op
	w.pendingMu.Unlock()
}

func (w *Watcher) queueExisting(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !w.wanted(path) {
			return nil
		}
		w.pendingMu.Lock()
		w.pending[path] |= fsnotify.Create
		w.pendingMu.Unlock()
		return nil
	})
}

func (w *Watcher) wanted(path string) bool {
	if !w.extensions[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
		if w.excludes[part] {
			return false
		}
	}
	return w.cfg.Filter == nil || w.cfg.Filter(path)
}

func (w *Watcher) flush(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	batch := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path, op := range batch {
		if ctx.Err() != nil {
			return
		}

		rel, _ := filepath.Rel(w.root, path)
		ev := Event{Path: path, Rel: rel}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				w.hashMu.Lock()
				_, known := w.hashes[path]
				delete(w.hashes, path)
				w.hashMu.Unlock()
				if known || op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
					ev.Op = OpDelete
					w.send(ev)
				}
				continue
			}
			w.log.Warnw("cannot read changed file", logging.FieldPath, rel, logging.FieldError, err)
			continue
		}

		sum := cache.ContentHash(data)
		old, had := w.hash(path)
		if had && old == sum {
			continue
		}
		w.setHash(path, sum)

		if had {
			ev.Op = OpModify
		} else {
			ev.Op = OpCreate
		}
		w.send(ev)
	}
}

func (w *Watcher) send(ev Event) {
	select {
	case w.events <- ev:
		w.log.Debugw("change", logging.FieldPath, ev.Rel, "op", ev.Op)
	default:
		n := w.dropped.Add(1)
		w.log.Warnw("event channel full, dropping event", logging.FieldPath, ev.Rel, "total_dropped", n)
	}
}
