package task

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind describes the type of file change detected.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota // Task file written or recreated
	ChangeRemoved                    // Task file deleted
)

// Change represents a detected change of the watched task file.
type Change struct {
	Kind ChangeKind
	File string // Absolute path
}

// Watcher monitors a single task file using fsnotify. The parent directory is
// watched so editors that replace the file on save are still observed.
type Watcher struct {
	File    string
	Changes <-chan Change // Read-only external channel

	changes  chan Change // Internal write channel
	done     chan struct{}
	watcher  *fsnotify.Watcher
	started  bool
	stopOnce sync.Once
}

// NewWatcher creates a watcher for the task file at path.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 16)
	return &Watcher{
		File:    abs,
		Changes: ch,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}, nil
}

// Start begins watching the task file's directory. On failure the
// underlying fsnotify watcher is released.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.File)); err != nil {
		w.watcher.Close()
		return err
	}
	w.started = true
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel. It is safe to call
// without a successful Start and more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.watcher.Close()
		if w.started {
			<-w.done
		}
		close(w.changes)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Editors emit bursts of events per save; coalesce them.
	const debounce = 100 * time.Millisecond
	var pending time.Time
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if !pending.IsZero() {
					w.emitChange()
				}
				return
			}
			if filepath.Clean(event.Name) != w.File {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= debounce {
				w.emitChange()
				pending = time.Time{}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.
		}
	}
}

func (w *Watcher) emitChange() {
	kind := ChangeModified
	if _, err := os.Stat(w.File); os.IsNotExist(err) {
		kind = ChangeRemoved
	}
	select {
	case w.changes <- Change{Kind: kind, File: w.File}:
	default:
		// A change is already queued; the consumer reloads the file anyway.
	}
}
