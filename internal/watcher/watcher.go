// Package watcher reports batches of changed Python files under a directory tree,
// or changes to one file of any extension.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/huangsam/ecoscore/internal/contract"
)

// Watcher collects file system events under root and delivers them in
// debounced batches. With a target set only that file is reported.
type Watcher struct {
	root     string
	target   string
	excludes []string
	debounce time.Duration
	fsw      *fsnotify.Watcher
}

// New watches every non-excluded directory under root.
func New(root string, debounce time.Duration, excludes []string) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{root: root, excludes: excludes, debounce: debounce, fsw: fsw}
	if err := w.addRecursive(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// NewForFile watches a single file through its parent directory.
// The file is reported whatever its extension.
func NewForFile(file string, debounce time.Duration) (*Watcher, error) {
	info, err := os.Stat(file)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("watch target %s is a directory", file)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{root: filepath.Dir(file), target: filepath.Clean(file), debounce: debounce, fsw: fsw}
	if err := fsw.Add(w.root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// excluded reports whether a path under root is filtered out.
func (w *Watcher) excluded(path string, isDir bool) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		rel += "/"
	}
	return contract.ShouldIgnore(rel, w.excludes)
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Directories can vanish between the event and the walk
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.excluded(path, true) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// relevant reports whether an event should trigger re-analysis.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if w.target != "" {
		return filepath.Clean(event.Name) == w.target
	}
	if !strings.HasSuffix(event.Name, ".py") {
		return false
	}
	return !w.excluded(event.Name, false)
}

// Run blocks until ctx is done, calling onChange with the sorted, deduplicated
// paths that changed during each quiet period.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.target == "" && event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
					continue
				}
			}
			if !w.relevant(event) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			clear(pending)
			onChange(paths)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				contract.LogWarn("File watcher overflowed, some changes may be missed", err)
				continue
			}
			return fmt.Errorf("file watcher: %w", err)
		}
	}
}
