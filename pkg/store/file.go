package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// File persists all keys in a single JSON document. Saves rewrite the
// whole document through a temp file and rename, so a crash mid-write
// leaves the previous document intact.
//
// Watch observes external edits to the document, for configuration-style
// signals that should pick up changes made outside the process.
type File struct {
	path string

	mu     sync.RWMutex
	values map[string]string
	closed bool
}

// NewFile opens or creates the document at path.
func NewFile(path string) (*File, error) {
	f := &File{path: path, values: make(map[string]string)}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &f.values); err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", path, err)
		}
	}
	return f, nil
}

// Load returns the value under key.
func (f *File) Load(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return "", false, ErrClosed
	}
	v, ok := f.values[key]
	return v, ok, nil
}

// Save stores value under key and rewrites the document.
func (f *File) Save(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	f.values[key] = value
	return f.flushLocked()
}

// Delete removes key and rewrites the document.
func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	delete(f.values, key)
	return f.flushLocked()
}

// Close marks the store closed. The document stays on disk.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Path returns the document's location.
func (f *File) Path() string { return f.path }

func (f *File) flushLocked() error {
	data, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", f.path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".filament-*")
	if err != nil {
		return fmt.Errorf("store: temp file for %s: %w", f.path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: close %s: %w", f.path, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: rename %s: %w", f.path, err)
	}
	return nil
}

// Watch begins watching the document and returns a channel that emits a
// decoded snapshot whenever the file is written. The current contents are
// emitted immediately so callers can hydrate before the first change. The
// channel closes when ctx is done or the watcher fails.
func (f *File) Watch(ctx context.Context) (<-chan map[string]string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	// Watch the directory rather than the file: the rename dance in
	// flushLocked replaces the inode on every save.
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("store: watch %s: %w", f.path, err)
	}

	out := make(chan map[string]string)

	go func() {
		defer close(out)
		defer watcher.Close()

		if snap, err := f.snapshotFromDisk(); err == nil {
			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != f.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				snap, err := f.snapshotFromDisk()
				if err != nil {
					continue
				}
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Keep watching despite errors.
			}
		}
	}()

	return out, nil
}

// snapshotFromDisk re-reads the document, refreshes the in-memory view,
// and returns a copy.
func (f *File) snapshotFromDisk() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	fresh := make(map[string]string)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &fresh); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	if !f.closed {
		f.values = fresh
	}
	f.mu.Unlock()

	out := make(map[string]string, len(fresh))
	for k, v := range fresh {
		out[k] = v
	}
	return out, nil
}

var _ Store = (*File)(nil)
