package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileStore persists the mapping as one JSON document, the durable
// analog of browser local storage. Every Get re-reads the file so a
// write by a sibling process is visible on the next read; writes are
// atomic (temp file + rename). Watch uses fsnotify on the backing file,
// which is how a sibling process' login/logout becomes observable.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore opens a store backed by the JSON file at path, creating
// parent directories as needed. A missing file is an empty mapping.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store: file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: mkdir %s: %w", filepath.Dir(path), err)
	}
	return &FileStore{path: path}, nil
}

// Get implements Store.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.read()
	v, ok := values[key]
	return v, ok
}

// Set implements Store.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.read()
	values[key] = value
	return s.write(values)
}

// Remove implements Store.
func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.read()
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.write(values)
}

// Watch implements Watcher. Each event on the backing file is diffed
// against the previously observed content so the callback fires once
// per changed key; an unreadable file reports the empty key.
func (s *FileStore) Watch(fn func(key string)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: watch: %w", err)
	}
	// Watch the directory, not the file: the atomic rename on write
	// replaces the inode, which would silently detach a file watch.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("store: watch %s: %w", filepath.Dir(s.path), err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.mu.Lock()
		last := s.read()
		s.mu.Unlock()
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				s.mu.Lock()
				current := s.read()
				s.mu.Unlock()
				for _, key := range changedKeys(last, current) {
					fn(key)
				}
				last = current
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				fn("")
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = watcher.Close()
			<-done
		})
	}, nil
}

// read must be called with mu held. A missing or corrupt file is an
// empty mapping; the next write repairs it.
func (s *FileStore) read() map[string]string {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]string{}
	}
	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return map[string]string{}
	}
	return values
}

// write must be called with mu held.
func (s *FileStore) write(values map[string]string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".store-*")
	if err != nil {
		return fmt.Errorf("store: temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("store: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("store: rename: %w", err)
	}
	return nil
}

func changedKeys(before, after map[string]string) []string {
	var keys []string
	for k, v := range after {
		if prev, ok := before[k]; !ok || prev != v {
			keys = append(keys, k)
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys
}
