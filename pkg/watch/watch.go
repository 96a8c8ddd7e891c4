// Package watch reloads documents when they change on disk.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settle is how long a file must stay quiet before it is reported, so that
// editors writing in several steps trigger a single reload.
const settle = 100 * time.Millisecond

// Watcher reports changes to a set of files. Directories are watched rather
// than files so that atomic saves (write to temp, rename) are seen.
type Watcher struct {
	fs       *fsnotify.Watcher
	log      *zap.Logger
	onChange func(path string)

	mu      sync.Mutex
	files   map[string]int
	dirs    map[string]int
	pending map[string]*time.Timer
}

// New returns a Watcher calling onChange from its own goroutine.
func New(onChange func(path string), log *zap.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		fs:       fs,
		log:      log,
		onChange: onChange,
		files:    make(map[string]int),
		dirs:     make(map[string]int),
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Add watches path. Adding a path again only counts another reference.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files[abs] > 0 {
		w.files[abs]++
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = 1
	return nil
}

// Remove drops one reference to path and stops watching it with the last.
func (w *Watcher) Remove(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files[abs] == 0 {
		return
	}
	w.files[abs]--
	if w.files[abs] > 0 {
		return
	}
	delete(w.files, abs)
	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		_ = w.fs.Remove(dir)
	}
}

// Run delivers change notifications until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()
	for {
		select {
		case <-ctx.Done():
			w.stopPending()
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.touch(ev.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) touch(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[name]; !ok {
		return
	}
	if t, ok := w.pending[name]; ok {
		t.Stop()
	}
	w.pending[name] = time.AfterFunc(settle, func() {
		w.mu.Lock()
		delete(w.pending, name)
		_, watched := w.files[name]
		w.mu.Unlock()
		if watched {
			w.log.Debug("file changed", zap.String("path", name))
			w.onChange(name)
		}
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for name, t := range w.pending {
		t.Stop()
		delete(w.pending, name)
	}
}
