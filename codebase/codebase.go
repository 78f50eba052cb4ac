// Package codebase keeps an analyzed copy of every mini source file under a
// root directory.
package codebase

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/mini/config"
	"github.com/dhamidi/mini/frontend"
)

var log = commonlog.GetLogger("mini.codebase")

// FileInfo is the latest analysis of one file.
type FileInfo struct {
	Path    string
	Content []byte
	Result  *frontend.Result
}

type Codebase struct {
	mu      sync.RWMutex
	rootDir string
	cfg     *config.Config
	files   map[string]*FileInfo
}

// New creates a codebase rooted at rootDir. A nil cfg selects the defaults.
func New(rootDir string, cfg *config.Config) *Codebase {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Codebase{
		rootDir: rootDir,
		cfg:     cfg,
		files:   make(map[string]*FileInfo),
	}
}

func (c *Codebase) RootDir() string {
	return c.rootDir
}

func (c *Codebase) Config() *config.Config {
	return c.cfg
}

// ScanAll analyzes every source file below the root. Hidden directories are
// skipped. Files that cannot be read are logged and skipped; their errors are
// returned joined once the walk is complete.
func (c *Codebase) ScanAll() error {
	var errs []error
	err := filepath.Walk(c.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != c.rootDir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !c.cfg.IsSource(path) {
			return nil
		}
		if _, err := c.ScanFile(path); err != nil {
			log.Warningf("%s: %s", path, err)
			errs = append(errs, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return errors.Join(errs...)
}

// ScanFile reads path from disk and analyzes it.
func (c *Codebase) ScanFile(path string) (*FileInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.UpdateFile(path, content), nil
}

// UpdateFile analyzes content as the new text of path.
func (c *Codebase) UpdateFile(path string, content []byte) *FileInfo {
	opts := append(c.cfg.AnalyzeOptions(), frontend.WithFilename(c.displayPath(path)))
	info := &FileInfo{
		Path:    path,
		Content: content,
		Result:  frontend.Analyze(content, opts...),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[path] = info
	return info
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Files returns all known files sorted by path.
func (c *Codebase) Files() []*FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	files := make([]*FileInfo, 0, len(c.files))
	for _, f := range c.files {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files
}

// Failing returns the files whose analysis reported errors.
func (c *Codebase) Failing() []*FileInfo {
	var failing []*FileInfo
	for _, f := range c.Files() {
		if !f.Result.OK() {
			failing = append(failing, f)
		}
	}
	return failing
}

// displayPath names path relative to the root when it lies below it.
func (c *Codebase) displayPath(path string) string {
	rel, err := filepath.Rel(c.rootDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
