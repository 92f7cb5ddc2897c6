package indexer

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last relevant event before
// the change callback fires.
const DefaultDebounce = 200 * time.Millisecond

// WatchOptions configures file watching behavior.
type WatchOptions struct {
	// Debounce groups bursts of events into one callback. 0 = DefaultDebounce.
	Debounce time.Duration

	// Exclude uses the same patterns as ScanOptions.Exclude; excluded
	// directories are not watched.
	Exclude []string
}

// FileWatcher calls onChange once a burst of source-file changes under a
// root has settled.
//
// Every directory under the root is watched (fsnotify is not recursive), and
// directories created later are added as they appear. Events on anything
// other than source files and directories are ignored.
//
// **Usage:**
//
//	watcher, err := NewFileWatcher(root, WatchOptions{}, func() { index.Rebuild(ctx) }, logger)
//	if err != nil {
//	    return err
//	}
//	if err := watcher.Start(); err != nil {
//	    return err
//	}
//	defer watcher.Stop()
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	root     string
	exclude  excludeMatcher
	debounce time.Duration
	onChange func()
	logger   *slog.Logger

	// Watched directories, for recognising directory removal.
	dirs   map[string]struct{}
	dirsMu sync.Mutex

	// Debouncing
	timer   *time.Timer
	pending bool
	timerMu sync.Mutex

	// Running onChange calls; Stop waits for them.
	callbacks sync.WaitGroup

	// Lifecycle
	stopChan chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
}

// NewFileWatcher creates a watcher for root. It does not watch anything
// until Start.
func NewFileWatcher(root string, options WatchOptions, onChange func(), logger *slog.Logger) (*FileWatcher, error) {
	exclude, err := newExcludeMatcher(options.Exclude)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FileWatcher{
		watcher:  watcher,
		root:     root,
		exclude:  exclude,
		debounce: options.Debounce,
		onChange: onChange,
		logger:   logger,
		dirs:     make(map[string]struct{}),
		stopChan: make(chan struct{}),
	}, nil
}

// Start adds watches for the whole tree and begins processing events in the
// background.
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.stopped {
		return fmt.Errorf("watcher already stopped")
	}
	if fw.started {
		return fmt.Errorf("watcher already started")
	}

	if err := fw.addTree(fw.root); err != nil {
		return fmt.Errorf("failed to setup watches: %w", err)
	}

	fw.started = true
	go fw.eventLoop()

	fw.logger.Info("file watcher started", "root", fw.root, "directories", fw.watchedDirs())
	return nil
}

// addTree watches dir and every non-excluded directory below it.
func (fw *FileWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			// Vanished or unreadable subdirectory; keep going.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != fw.root && fw.exclude.match(relSlash(fw.root, path)) {
			return filepath.SkipDir
		}

		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn("failed to watch directory", "path", path, "error", err)
			return nil
		}
		fw.dirsMu.Lock()
		fw.dirs[path] = struct{}{}
		fw.dirsMu.Unlock()
		return nil
	})
}

// Stop stops the file watcher. Pending callbacks are cancelled and a
// callback already running is waited for, so onChange must not call Stop.
// Safe to call multiple times.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return nil
	}
	fw.stopped = true
	close(fw.stopChan)

	fw.timerMu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.pending = false
	fw.timerMu.Unlock()

	err := fw.watcher.Close()
	fw.mu.Unlock()

	fw.callbacks.Wait()
	fw.logger.Debug("file watcher stopped")
	return err
}

func (fw *FileWatcher) eventLoop() {
	for {
		select {
		case <-fw.stopChan:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("file watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if fw.exclude.match(relSlash(fw.root, path)) {
		return
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	fw.dirsMu.Lock()
	_, wasDir := fw.dirs[path]
	if wasDir && (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
		delete(fw.dirs, path)
	}
	fw.dirsMu.Unlock()

	switch {
	case event.Has(fsnotify.Create) && isDir(path):
		if err := fw.addTree(path); err != nil {
			fw.logger.Warn("failed to watch new directory", "path", path, "error", err)
		}
		fw.schedule(event)

	case wasDir, IsSourceFile(path):
		fw.schedule(event)
	}
}

// schedule restarts the debounce timer.
func (fw *FileWatcher) schedule(event fsnotify.Event) {
	fw.logger.Debug("file event", "op", event.Op.String(), "path", event.Name)

	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	select {
	case <-fw.stopChan:
		return
	default:
	}

	fw.pending = true
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, fw.fire)
}

func (fw *FileWatcher) fire() {
	fw.timerMu.Lock()
	select {
	case <-fw.stopChan:
		fw.timerMu.Unlock()
		return
	default:
	}
	if !fw.pending {
		fw.timerMu.Unlock()
		return
	}
	fw.pending = false
	fw.callbacks.Add(1)
	fw.timerMu.Unlock()

	defer fw.callbacks.Done()
	fw.onChange()
}

// isDir reports whether path is a real directory. Symlinks are not followed.
func isDir(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.IsDir()
}

func (fw *FileWatcher) watchedDirs() int {
	fw.dirsMu.Lock()
	defer fw.dirsMu.Unlock()
	return len(fw.dirs)
}

// GetStats returns file watcher statistics.
func (fw *FileWatcher) GetStats() FileWatcherStats {
	fw.timerMu.Lock()
	pending := fw.pending
	fw.timerMu.Unlock()

	fw.mu.Lock()
	running := fw.started && !fw.stopped
	fw.mu.Unlock()

	return FileWatcherStats{
		WatchedDirs:   fw.watchedDirs(),
		ChangePending: pending,
		IsRunning:     running,
	}
}

// FileWatcherStats contains file watcher statistics.
type FileWatcherStats struct {
	WatchedDirs   int
	ChangePending bool
	IsRunning     bool
}
