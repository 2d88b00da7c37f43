// Package memory is a process-local Backend. Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
)

// Store provides in-memory storage of raw values
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte // key -> value
}

// New creates an empty memory store
func New() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Get returns a copy of the value stored under key, or nil
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, v...), nil
}

// SetMany stores every pair under one lock
func (s *Store) SetMany(_ context.Context, kv map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range kv {
		s.data[k] = append([]byte{}, v...)
	}
	return nil
}

// Delete removes keys; missing keys are ignored
func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

// Keys returns the stored keys, sorted
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}
