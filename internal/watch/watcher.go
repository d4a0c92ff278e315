// Package watch reports changes to the set of source files a document was
// assembled from, so the caller can regenerate its outputs.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before its change is reported.
const DefaultDebounce = 200 * time.Millisecond

// ChangeKind describes the type of file change detected.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota // tracked file written
	ChangeRemoved                    // tracked file removed or renamed away
	ChangeAdded                      // tracked file created, e.g. by an editor's atomic save
)

// String returns "modified", "removed" or "added".
func (k ChangeKind) String() string {
	switch k {
	case ChangeRemoved:
		return "removed"
	case ChangeAdded:
		return "added"
	}
	return "modified"
}

// Change is one debounced change to a tracked file.
type Change struct {
	Kind ChangeKind
	File string
}

// Watcher watches the directories of a set of tracked files and reports
// changes to those files only. Events are debounced per file.
type Watcher struct {
	Changes <-chan Change // Read-only external channel

	debounce time.Duration
	changes  chan Change
	done     chan struct{}
	watcher  *fsnotify.Watcher

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]struct{}
}

type pendingChange struct {
	at   time.Time
	kind ChangeKind
}

// New creates a watcher for files. A non-positive debounce selects DefaultDebounce.
func New(files []string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: creating watcher: %w", err)
	}

	ch := make(chan Change, 16)
	w := &Watcher{
		Changes:  ch,
		debounce: debounce,
		changes:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
	}
	if err := w.SetFiles(files); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// SetFiles replaces the tracked file set, subscribing to new directories and
// dropping directories no tracked file lives in any more.
func (w *Watcher) SetFiles(files []string) error {
	nextFiles := make(map[string]struct{}, len(files))
	nextDirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("watch: resolving %s: %w", f, err)
		}
		nextFiles[abs] = struct{}{}
		nextDirs[filepath.Dir(abs)] = struct{}{}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for dir := range nextDirs {
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch: adding %s: %w", dir, err)
		}
	}
	for dir := range w.dirs {
		if _, ok := nextDirs[dir]; !ok {
			_ = w.watcher.Remove(dir)
		}
	}
	w.files = nextFiles
	w.dirs = nextDirs
	return nil
}

// Files returns the tracked files.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	return out
}

// Start begins delivering changes on Changes.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) tracked(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[abs]
	return ok
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]pendingChange)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				for file, p := range pending {
					w.emit(Change{Kind: p.kind, File: file})
				}
				return
			}
			if !w.tracked(event.Name) {
				continue
			}
			switch {
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				pending[event.Name] = pendingChange{at: time.Now(), kind: ChangeRemoved}
			case event.Has(fsnotify.Create):
				pending[event.Name] = pendingChange{at: time.Now(), kind: ChangeAdded}
			case event.Has(fsnotify.Write):
				kind := ChangeModified
				if prev, ok := pending[event.Name]; ok && prev.kind == ChangeAdded {
					kind = ChangeAdded
				}
				pending[event.Name] = pendingChange{at: time.Now(), kind: kind}
			}

		case <-ticker.C:
			now := time.Now()
			for file, p := range pending {
				if now.Sub(p.at) >= w.debounce {
					w.emit(Change{Kind: p.kind, File: file})
					delete(pending, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.
		}
	}
}

// emit never blocks: when the buffer is full a regeneration is already queued.
func (w *Watcher) emit(c Change) {
	select {
	case w.changes <- c:
	default:
	}
}
