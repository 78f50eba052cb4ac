package codebase

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tliron/commonlog"
)

var watchLog = commonlog.GetLogger("mini.watcher")

// Change lists what one polling pass found.
type Change struct {
	Updated []*FileInfo
	Removed []string
}

func (c Change) Empty() bool {
	return len(c.Updated) == 0 && len(c.Removed) == 0
}

// FileWatcher polls the codebase root and reanalyzes files whose
// modification time moved.
type FileWatcher struct {
	codebase     *Codebase
	stopCh       chan struct{}
	doneCh       chan struct{}
	pollInterval time.Duration
	modTimes     map[string]time.Time
	onChange     func(Change)
}

// NewFileWatcher creates a watcher polling at the configured interval.
// onChange, if not nil, is called from the polling goroutine after every pass
// that found something.
func NewFileWatcher(c *Codebase, onChange func(Change)) *FileWatcher {
	interval := c.Config().Watch.Interval.Duration
	if interval <= 0 {
		interval = time.Second
	}
	return &FileWatcher{
		codebase:     c,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
		pollInterval: interval,
		modTimes:     make(map[string]time.Time),
		onChange:     onChange,
	}
}

func (w *FileWatcher) Start() {
	go w.run()
}

// Stop ends polling and waits for the current pass to finish.
func (w *FileWatcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (w *FileWatcher) run() {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.notify(w.Scan())

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.notify(w.Scan())
		}
	}
}

func (w *FileWatcher) notify(change Change) {
	if change.Empty() {
		return
	}
	watchLog.Debugf("%d updated, %d removed", len(change.Updated), len(change.Removed))
	if w.onChange != nil {
		w.onChange(change)
	}
}

// Scan runs one polling pass. It must not be called while the watcher is
// running.
func (w *FileWatcher) Scan() Change {
	var change Change
	root := w.codebase.RootDir()
	currentFiles := make(map[string]bool)

	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.codebase.Config().IsSource(path) {
			return nil
		}

		currentFiles[path] = true

		lastMod, known := w.modTimes[path]
		if !known || !info.ModTime().Equal(lastMod) {
			w.modTimes[path] = info.ModTime()
			file, err := w.codebase.ScanFile(path)
			if err != nil {
				watchLog.Warningf("%s: %s", path, err)
				return nil
			}
			change.Updated = append(change.Updated, file)
		}
		return nil
	})

	for path := range w.modTimes {
		if !currentFiles[path] {
			delete(w.modTimes, path)
			w.codebase.RemoveFile(path)
			change.Removed = append(change.Removed, path)
		}
	}
	sort.Strings(change.Removed)
	return change
}
