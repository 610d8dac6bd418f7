// Package store provides the durable key/value persistence the session
// layer writes through, with change notifications for observers in the
// same process or in sibling processes sharing a file-backed store.
package store

import "sync"

// Store is a key-string to string mapping. Absence is not an error.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool)
	// Set creates or replaces the value for key.
	Set(key, value string) error
	// Remove deletes key. Removing an absent key is a no-op.
	Remove(key string) error
}

// Watcher is implemented by stores that can report mutations. The
// callback receives the changed key, or an empty key meaning
// "everything may have changed". The returned stop function releases
// the subscription and is safe to call more than once.
type Watcher interface {
	Watch(fn func(key string)) (stop func(), err error)
}

// MemoryStore is the in-process Store used when no durable backing is
// available. Watch callbacks fire synchronously after each mutation.
type MemoryStore struct {
	mu       sync.Mutex
	values   map[string]string
	watchers map[int]func(key string)
	nextID   int
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:   make(map[string]string),
		watchers: make(map[int]func(key string)),
	}
}

// Get implements Store.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set implements Store and notifies watchers.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	s.values[key] = value
	fns := s.snapshotWatchers()
	s.mu.Unlock()
	for _, fn := range fns {
		fn(key)
	}
	return nil
}

// Remove implements Store and notifies watchers.
func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	_, existed := s.values[key]
	delete(s.values, key)
	fns := s.snapshotWatchers()
	s.mu.Unlock()
	if existed {
		for _, fn := range fns {
			fn(key)
		}
	}
	return nil
}

// Watch implements Watcher.
func (s *MemoryStore) Watch(fn func(key string)) (func(), error) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, id)
			s.mu.Unlock()
		})
	}, nil
}

// snapshotWatchers must be called with mu held; callbacks run unlocked
// so they may re-enter the store.
func (s *MemoryStore) snapshotWatchers() []func(key string) {
	fns := make([]func(key string), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	return fns
}
