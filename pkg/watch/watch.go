// Package watch re-runs a callback when a file's content changes.
//
// The directory holding the file is watched rather than the file itself, so
// editors that replace files by rename are handled. Bursts of events are
// debounced and the callback only fires when the content hash differs from
// the last one seen.
package watch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/historygraph/pkg/cache"
)

// DefaultDebounce is the quiet period after the last event before the file
// is re-read.
const DefaultDebounce = 100 * time.Millisecond

// FileWatcher watches a single file.
type FileWatcher struct {
	path     string
	callback func(data []byte)
	debounce time.Duration
	logger   *log.Logger
	watcher  *fsnotify.Watcher

	mu       sync.Mutex
	lastHash string

	stopCh chan struct{}
	doneCh chan struct{}
}

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithDebounce sets the quiet period. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(fw *FileWatcher) {
		if d > 0 {
			fw.debounce = d
		}
	}
}

// WithLogger sets the logger used for watcher errors.
func WithLogger(l *log.Logger) Option {
	return func(fw *FileWatcher) {
		if l != nil {
			fw.logger = l
		}
	}
}

// New starts watching path. The callback receives the new content each time
// it changes. The directory containing path must exist; the file may not.
// The current content, if any, is taken as the baseline and does not fire.
func New(path string, callback func(data []byte), opts ...Option) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch directory %s: %w", dir, err)
	}

	fw := &FileWatcher{
		path:     path,
		callback: callback,
		debounce: DefaultDebounce,
		logger:   log.New(io.Discard),
		watcher:  watcher,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(fw)
	}
	if data, err := os.ReadFile(path); err == nil {
		fw.lastHash = cache.Hash(data)
	}

	go fw.run()
	return fw, nil
}

// Stop terminates the watcher and waits for its goroutine. It is safe to
// call more than once.
func (fw *FileWatcher) Stop() {
	select {
	case <-fw.stopCh:
		return
	default:
		close(fw.stopCh)
	}
	fw.watcher.Close()
	<-fw.doneCh
}

func (fw *FileWatcher) run() {
	defer close(fw.doneCh)

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	fileName := filepath.Base(fw.path)

	for {
		select {
		case <-fw.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != fileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(fw.debounce)
			debounceCh = debounceTimer.C

		case <-debounceCh:
			debounceCh = nil
			fw.checkFile()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watch error", "path", fw.path, "error", err)
		}
	}
}

func (fw *FileWatcher) checkFile() {
	data, err := os.ReadFile(fw.path)
	if err != nil {
		fw.logger.Debug("re-read failed", "path", fw.path, "error", err)
		return
	}
	h := cache.Hash(data)

	fw.mu.Lock()
	changed := h != fw.lastHash
	if changed {
		fw.lastHash = h
	}
	fw.mu.Unlock()

	if changed {
		fw.callback(data)
	}
}
