// Package watcher implements Component H: a recursive filesystem
// watcher that debounces bursts of writes, drops events that didn't
// actually change file contents, classifies the remainder as
// created/updated/deleted, and feeds them one at a time to an
// importOnly pipeline run through a single-writer FIFO coordinator.
//
// fsnotify is driven directly here, the same low-level library
// go-coffee wires under viper for config hot-reload (pkg/config/enhanced.go),
// rather than through viper's own watch support, since the entities
// being watched are declarative data files, not a process config file.
// golang.org/x/time/rate throttles how often the coordinator will
// start a fresh import run, bounding the damage an editor's autosave
// storm can do.
package watcher

import (
	"context"
	"crypto/sha256"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Action classifies a semantic watcher event.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event is the semantic, debounced, hash-guarded event the watcher
// emits.
type Event struct {
	Action Action
	Path   string
	// Slug is populated by the caller's Importer for created/updated
	// events, or carries the last known slug for deleted events.
	Slug string
}

// Importer runs an importOnly pipeline invocation over a single path
// and returns the slug it resolved to. It is implemented by
// internal/importer.
type Importer interface {
	ImportPath(ctx context.Context, path string) (slug string, err error)
}

// Watcher watches a set of roots recursively and emits semantic events
// on Events(), running at most one import at a time.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	importer  Importer
	log       zerolog.Logger
	debounce  time.Duration
	limiter   *rate.Limiter

	mu         sync.Mutex
	hashes     map[string][]byte
	slugByPath map[string]string
	timers     map[string]*time.Timer

	events chan Event
	queue  chan string // single-writer FIFO: paths awaiting import
}

// New builds a Watcher. debounce defaults to 150ms when zero.
func New(importer Importer, log zerolog.Logger, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 150 * time.Millisecond
	}

	w := &Watcher{
		fsWatcher:  fsw,
		importer:   importer,
		log:        log.With().Str("component", "watcher").Logger(),
		debounce:   debounce,
		limiter:    rate.NewLimiter(rate.Every(50*time.Millisecond), 10),
		hashes:     make(map[string][]byte),
		slugByPath: make(map[string]string),
		timers:     make(map[string]*time.Timer),
		events:     make(chan Event, 64),
		queue:      make(chan string, 256),
	}
	return w, nil
}

// AddRoot registers root and every existing subdirectory for watching.
func (w *Watcher) AddRoot(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsWatcher.Add(path)
		}
		return nil
	})
}

// Events returns the channel of semantic, debounced events.
func (w *Watcher) Events() <-chan Event { return w.events }

// Run drives the raw fsnotify loop and the single-writer import
// coordinator until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	go w.runCoordinator(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleRaw(ev)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) handleRaw(ev fsnotify.Event) {
	w.mu.Lock()
	if existing, ok := w.timers[ev.Name]; ok {
		existing.Stop()
	}
	w.timers[ev.Name] = time.AfterFunc(w.debounce, func() { w.settle(ev.Name, ev.Op) })
	w.mu.Unlock()
}

// settle runs after debounce has elapsed with no further writes to
// path. It applies the content-hash guard and, for surviving
// created/updated events, enqueues an import.
func (w *Watcher) settle(path string, op fsnotify.Op) {
	w.mu.Lock()
	delete(w.timers, path)
	w.mu.Unlock()

	if op&fsnotify.Remove != 0 || op&fsnotify.Rename != 0 {
		w.mu.Lock()
		slug := w.slugByPath[path]
		delete(w.slugByPath, path)
		delete(w.hashes, path)
		w.mu.Unlock()
		w.events <- Event{Action: ActionDeleted, Path: path, Slug: slug}
		return
	}

	hash, err := hashFile(path)
	if err != nil {
		w.log.Warn().Err(err).Str("path", path).Msg("failed to hash file, dropping event")
		return
	}

	w.mu.Lock()
	previous, seen := w.hashes[path]
	unchanged := seen && string(previous) == string(hash)
	w.hashes[path] = hash
	w.mu.Unlock()

	if unchanged {
		return
	}

	select {
	case w.queue <- path:
	default:
		w.log.Warn().Str("path", path).Msg("import queue full, dropping event")
	}
}

// runCoordinator is the single-writer FIFO: exactly one import runs at
// a time, queued in arrival order.
func (w *Watcher) runCoordinator(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.queue:
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
			w.runImport(ctx, path)
		}
	}
}

func (w *Watcher) runImport(ctx context.Context, path string) {
	w.mu.Lock()
	_, wasKnown := w.slugByPath[path]
	w.mu.Unlock()

	slug, err := w.importer.ImportPath(ctx, path)
	if err != nil {
		w.log.Error().Err(err).Str("path", path).Msg("watcher-triggered import failed")
		return
	}

	w.mu.Lock()
	w.slugByPath[path] = slug
	w.mu.Unlock()

	action := ActionUpdated
	if !wasKnown {
		action = ActionCreated
	}
	w.events <- Event{Action: action, Path: path, Slug: slug}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

func hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
