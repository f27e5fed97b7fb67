package behavioral

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileOp represents the type of file operation
type FileOp int

const (
	// FileCreated indicates the transcript was (re)created, e.g. by an editor's rename-save
	FileCreated FileOp = iota
	// FileWritten indicates the transcript was written to
	FileWritten
	// FileRemoved indicates the transcript was removed or moved away
	FileRemoved
)

// String returns a human-readable representation of the file operation
func (op FileOp) String() string {
	switch op {
	case FileCreated:
		return "created"
	case FileWritten:
		return "written"
	case FileRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// FileEvent is a change to the watched transcript
type FileEvent struct {
	Path      string    // Absolute path to the transcript
	Op        FileOp    // Type of operation
	Timestamp time.Time // When the event was emitted
}

// DefaultDebounceDelay is the default delay for coalescing rapid writes
const DefaultDebounceDelay = 100 * time.Millisecond

// TranscriptWatcher reports changes to one transcript file. The parent
// directory is watched so rename-based saves are seen as well.
type TranscriptWatcher struct {
	watcher *fsnotify.Watcher
	events  chan FileEvent
	errors  chan error
	done    chan struct{}
	path    string

	mu            sync.Mutex
	debounceDelay time.Duration
	pending       *time.Timer
	closed        bool
}

// NewTranscriptWatcher starts watching path. The file's directory must exist.
func NewTranscriptWatcher(path string) (*TranscriptWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(abs)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("transcript parent is not a directory: " + dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	tw := &TranscriptWatcher{
		watcher:       watcher,
		events:        make(chan FileEvent, 16),
		errors:        make(chan error, 4),
		done:          make(chan struct{}),
		path:          abs,
		debounceDelay: DefaultDebounceDelay,
	}

	go tw.processEvents()
	return tw, nil
}

// processEvents converts fsnotify events for the transcript into FileEvents
func (tw *TranscriptWatcher) processEvents() {
	for {
		select {
		case <-tw.done:
			return
		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			tw.handleEvent(event)
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			select {
			case tw.errors <- err:
			default:
				// Error channel full, drop the error
			}
		}
	}
}

// handleEvent filters by path and maps the operation
func (tw *TranscriptWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != tw.path {
		return
	}

	switch {
	case event.Has(fsnotify.Create):
		tw.debounce(FileCreated)
	case event.Has(fsnotify.Write):
		tw.debounce(FileWritten)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		tw.cancelPending()
		tw.sendEvent(FileRemoved)
	}
}

// debounce coalesces a burst of create/write events into one
func (tw *TranscriptWatcher) debounce(op FileOp) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.closed {
		return
	}
	if tw.pending != nil {
		tw.pending.Stop()
	}
	tw.pending = time.AfterFunc(tw.debounceDelay, func() {
		tw.mu.Lock()
		tw.pending = nil
		tw.mu.Unlock()

		tw.sendEvent(op)
	})
}

func (tw *TranscriptWatcher) cancelPending() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.pending != nil {
		tw.pending.Stop()
		tw.pending = nil
	}
}

// sendEvent delivers an event without blocking
func (tw *TranscriptWatcher) sendEvent(op FileOp) {
	event := FileEvent{
		Path:      tw.path,
		Op:        op,
		Timestamp: time.Now(),
	}

	select {
	case tw.events <- event:
	case <-tw.done:
	default:
		// Events channel full, drop the event
	}
}

// Events returns the channel for receiving transcript changes
func (tw *TranscriptWatcher) Events() <-chan FileEvent {
	return tw.events
}

// Errors returns the channel for receiving watcher errors
func (tw *TranscriptWatcher) Errors() <-chan error {
	return tw.errors
}

// Path returns the absolute transcript path being watched
func (tw *TranscriptWatcher) Path() string {
	return tw.path
}

// SetDebounceDelay sets the delay for coalescing rapid writes
func (tw *TranscriptWatcher) SetDebounceDelay(delay time.Duration) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.debounceDelay = delay
}

// Close stops the watcher and releases resources
func (tw *TranscriptWatcher) Close() error {
	tw.mu.Lock()
	if tw.closed {
		tw.mu.Unlock()
		return nil
	}
	tw.closed = true
	if tw.pending != nil {
		tw.pending.Stop()
		tw.pending = nil
	}
	tw.mu.Unlock()

	close(tw.done)
	return tw.watcher.Close()
}
