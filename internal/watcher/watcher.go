// Package watcher provides poll-based watching of dictionary files.
package watcher

import (
	"context"
	"os"
	"sync"
	"time"

	"cjd/internal/logging"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
)

// Event represents a file system event
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// ChangeHandler is called after the debounce quiet period with the
// events collected for one file
type ChangeHandler func(path string, events []Event)

// Config contains watcher configuration
type Config struct {
	PollInterval time.Duration
	Debounce     time.Duration
}

// DefaultConfig returns the default watcher configuration
func DefaultConfig() Config {
	return Config{
		PollInterval: 2 * time.Second,
		Debounce:     750 * time.Millisecond,
	}
}

// Watcher polls dictionary files for content changes
type Watcher struct {
	config  Config
	logger  *logging.Logger
	handler ChangeHandler
	files   map[string]*fileWatcher // path -> watcher

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
	wg     sync.WaitGroup
}

// fileWatcher watches a single dictionary file
type fileWatcher struct {
	path      string
	debouncer *Debouncer
	lastMod   time.Time
	lastSize  int64
	exists    bool
	stopCh    chan struct{}
}

// New creates a new dictionary file watcher
func New(config Config, logger *logging.Logger, handler ChangeHandler) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		config:  config,
		logger:  logger,
		handler: handler,
		files:   make(map[string]*fileWatcher),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins watching
func (w *Watcher) Start() error {
	w.logger.Info("Starting dictionary watcher", map[string]interface{}{
		"pollInterval": w.config.PollInterval.String(),
		"debounce":     w.config.Debounce.String(),
	})
	return nil
}

// Stop stops watching
func (w *Watcher) Stop() error {
	w.logger.Info("Stopping dictionary watcher", nil)
	w.cancel()

	w.mu.Lock()
	for _, fw := range w.files {
		close(fw.stopCh)
		fw.debouncer.Cancel()
	}
	w.mu.Unlock()

	w.wg.Wait()
	w.logger.Info("Dictionary watcher stopped", nil)
	return nil
}

// WatchFile starts watching a dictionary file. The file does not have to
// exist yet: its appearance is reported as a create event.
func (w *Watcher) WatchFile(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.files[path]; exists {
		return nil // Already watching
	}

	fw := &fileWatcher{
		path:      path,
		debouncer: NewDebouncer(w.config.Debounce),
		stopCh:    make(chan struct{}),
	}

	// Seed the baseline so only future changes trigger
	if info, err := os.Stat(path); err == nil {
		fw.exists = true
		fw.lastMod = info.ModTime()
		fw.lastSize = info.Size()
	}

	w.files[path] = fw

	w.wg.Add(1)
	go w.watchFile(fw)

	w.logger.Info("Watching dictionary", map[string]interface{}{
		"path": path,
	})

	return nil
}

// UnwatchFile stops watching a dictionary file
func (w *Watcher) UnwatchFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if fw, exists := w.files[path]; exists {
		close(fw.stopCh)
		fw.debouncer.Cancel()
		delete(w.files, path)
		w.logger.Info("Stopped watching dictionary", map[string]interface{}{
			"path": path,
		})
	}
}

// watchFile polls one file for changes
// Using polling instead of fsnotify for simplicity and cross-platform compatibility
func (w *Watcher) watchFile(fw *fileWatcher) {
	defer w.wg.Done()

	pollInterval := w.config.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.checkFile(fw)
		case <-fw.stopCh:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

// checkFile compares the file's current stat against the last poll
func (w *Watcher) checkFile(fw *fileWatcher) {
	var events []Event

	info, err := os.Stat(fw.path)
	switch {
	case err != nil && fw.exists:
		events = append(events, Event{
			Type:      EventDelete,
			Path:      fw.path,
			Timestamp: time.Now(),
		})
		fw.exists = false
		fw.lastMod = time.Time{}
		fw.lastSize = 0

	case err == nil && !fw.exists:
		events = append(events, Event{
			Type:      EventCreate,
			Path:      fw.path,
			Timestamp: time.Now(),
		})
		fw.exists = true
		fw.lastMod = info.ModTime()
		fw.lastSize = info.Size()

	case err == nil:
		if !info.ModTime().Equal(fw.lastMod) || info.Size() != fw.lastSize {
			events = append(events, Event{
				Type:      EventModify,
				Path:      fw.path,
				Timestamp: time.Now(),
			})
			fw.lastMod = info.ModTime()
			fw.lastSize = info.Size()
		}
	}

	if len(events) > 0 {
		// Debounce the events
		fw.debouncer.Trigger(func() {
			w.logger.Debug("Dictionary change detected", map[string]interface{}{
				"path":       fw.path,
				"eventCount": len(events),
			})
			if w.handler != nil {
				w.handler(fw.path, events)
			}
		})
	}
}

// WatchedFiles returns the list of watched dictionary paths
func (w *Watcher) WatchedFiles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	return files
}

// Stats returns watcher statistics
func (w *Watcher) Stats() map[string]interface{} {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return map[string]interface{}{
		"watchedFiles":   len(w.files),
		"pollIntervalMs": int(w.config.PollInterval / time.Millisecond),
		"debounceMs":     int(w.config.Debounce / time.Millisecond),
	}
}
