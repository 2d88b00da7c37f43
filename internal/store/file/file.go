// Package file is a Backend that keeps every key in one JSON document on
// disk. Writes go through a temp file and a rename; an exclusive flock on
// "<path>.lock" keeps a second process away from the same document.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/MrSnakeDoc/reel/internal/logger"
)

const documentFormat = 1

// ErrLocked is returned by Open when another process holds the data file.
var ErrLocked = errors.New("data file is locked by another process")

// document is the on-disk layout. Values are kept as strings so any blob a
// caller stored, valid JSON or not, round-trips untouched.
type document struct {
	Format    int               `json:"format"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Values    map[string]string `json:"values"`
}

// Store is a single-file Backend
type Store struct {
	path string
	lock *flock.Flock
	log  logger.Logger

	mu     sync.Mutex
	values map[string]string
}

// Open locks path and loads it. A missing file starts empty; an unreadable
// document is moved aside and replaced by an empty one.
func Open(path string, log logger.Logger) (*Store, error) {
	s := &Store{
		path: path,
		lock: flock.New(path + ".lock"),
		log:  logger.Component(log, "store.file"),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	ok, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	if err := s.load(); err != nil {
		_ = s.lock.Unlock()
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.values = map[string]string{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read data file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
		if rerr := os.Rename(s.path, aside); rerr != nil {
			return fmt.Errorf("move corrupt data file aside: %w", rerr)
		}
		s.log.Warn("data file is corrupt, starting empty",
			logger.String("path", s.path),
			logger.String("moved_to", aside),
			logger.Error(err))
		s.values = map[string]string{}
		return nil
	}

	s.values = doc.Values
	if s.values == nil {
		s.values = map[string]string{}
	}
	return nil
}

// Get returns the value stored under key, or nil
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return nil, nil
	}
	return []byte(v), nil
}

// SetMany writes every pair in one document rewrite. On failure the
// in-memory view is left as it was.
func (s *Store) SetMany(_ context.Context, kv map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := copyValues(s.values)
	for k, v := range kv {
		next[k] = string(v)
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

// Delete removes keys and rewrites the document when anything changed.
func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := copyValues(s.values)
	changed := false
	for _, k := range keys {
		if _, ok := next[k]; ok {
			delete(next, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *Store) write(values map[string]string) error {
	data, err := json.MarshalIndent(document{
		Format:    documentFormat,
		UpdatedAt: time.Now().UTC(),
		Values:    values,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal data file: %w", err)
	}

	w, err := newAtomicWriter(s.path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.abort()
		return fmt.Errorf("write data file: %w", err)
	}
	if err := w.commit(); err != nil {
		return fmt.Errorf("commit data file: %w", err)
	}
	return nil
}

// Path returns the data file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the file lock.
func (s *Store) Close() error {
	if err := s.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

func copyValues(in map[string]string) map[string]string {
	out := make(map[string]string, len(in)+8)
	for k, v := range in {
		out[k] = v
	}
	return out
}
