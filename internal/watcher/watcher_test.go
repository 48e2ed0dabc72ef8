package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrors(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent"), time.Millisecond, nil)
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "a.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0o600))
	_, err = New(file, time.Millisecond, nil)
	assert.ErrorContains(t, err, "not a directory")
}

func TestNewForFileErrors(t *testing.T) {
	_, err := NewForFile(filepath.Join(t.TempDir(), "absent.cfg"), time.Millisecond)
	assert.Error(t, err)

	_, err = NewForFile(t.TempDir(), time.Millisecond)
	assert.ErrorContains(t, err, "is a directory")
}

func TestRelevantFileTarget(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "job.script")
	require.NoError(t, os.WriteFile(target, []byte("x = 1\n"), 0o600))

	w, err := NewForFile(target, time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"target write", fsnotify.Event{Name: target, Op: fsnotify.Write}, true},
		{"target replaced", fsnotify.Event{Name: filepath.Join(root, ".", "job.script"), Op: fsnotify.Create}, true},
		{"target chmod", fsnotify.Event{Name: target, Op: fsnotify.Chmod}, false},
		{"sibling python", fsnotify.Event{Name: filepath.Join(root, "other.py"), Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.event))
		})
	}
}

func TestRelevant(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, time.Millisecond, []string{"venv/"})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"python write", fsnotify.Event{Name: filepath.Join(root, "a.py"), Op: fsnotify.Write}, true},
		{"python create", fsnotify.Event{Name: filepath.Join(root, "pkg", "b.py"), Op: fsnotify.Create}, true},
		{"python remove", fsnotify.Event{Name: filepath.Join(root, "c.py"), Op: fsnotify.Remove}, true},
		{"chmod only", fsnotify.Event{Name: filepath.Join(root, "a.py"), Op: fsnotify.Chmod}, false},
		{"not python", fsnotify.Event{Name: filepath.Join(root, "README.md"), Op: fsnotify.Write}, false},
		{"excluded dir", fsnotify.Event{Name: filepath.Join(root, "venv", "lib.py"), Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.event))
		})
	}
}

func TestRunDebouncesChanges(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, 50*time.Millisecond, nil)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	var batches [][]string
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(paths []string) {
			mu.Lock()
			batches = append(batches, paths)
			mu.Unlock()
			cancel()
		})
	}()

	path := filepath.Join(root, "app.py")
	for i := range 3 {
		require.NoError(t, os.WriteFile(path, []byte("x = "+string(rune('0'+i))+"\n"), 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0o600))

	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, batches, 1)
	assert.Equal(t, []string{path}, batches[0])
}

func TestRunFileTarget(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "job.script")
	require.NoError(t, os.WriteFile(target, []byte("x = 0\n"), 0o600))

	w, err := NewForFile(target, 50*time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	var batches [][]string
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(paths []string) {
			mu.Lock()
			batches = append(batches, paths)
			mu.Unlock()
			cancel()
		})
	}()

	require.NoError(t, os.WriteFile(filepath.Join(root, "other.py"), []byte("y = 1\n"), 0o600))
	require.NoError(t, os.WriteFile(target, []byte("x = 1\n"), 0o600))

	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, batches, 1)
	assert.Equal(t, []string{target}, batches[0])
}
