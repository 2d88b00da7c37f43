// Package session owns the working state of the process. It runs the startup
// sequence (load, reconcile, write back, drop legacy keys) and serializes
// every later mutation together with its write-back.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/reel/internal/catalog"
	"github.com/MrSnakeDoc/reel/internal/library"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/reconcile"
	"github.com/MrSnakeDoc/reel/internal/store"
)

// ErrNotInitialized is returned before Init succeeded.
var ErrNotInitialized = errors.New("session not initialized")

// CatalogLoader produces the compiled catalog. It is called on Init and on
// every Reinitialize so a changed catalog file is picked up.
type CatalogLoader func() (*catalog.Source, error)

// Options configures a Session.
type Options struct {
	Adapter         *store.Adapter
	LoadCatalog     CatalogLoader
	DefaultIdentity string

	// SaveTimeout bounds every write-back. Zero means no extra bound.
	SaveTimeout time.Duration
}

// Status is a point-in-time view for health reporting.
type Status struct {
	Initialized    bool
	CatalogVersion int
	Entries        int
	LastSavedAt    time.Time
	LastSaveErr    error
	LastInitAt     time.Time
}

// Session holds the single working State.
type Session struct {
	opts Options
	log  logger.Logger

	mu          sync.Mutex
	state       library.State
	engine      *reconcile.Engine
	initialized bool
	lastSavedAt time.Time
	lastSaveErr error
	lastInitAt  time.Time
}

// New creates an uninitialized session.
func New(opts Options, log logger.Logger) *Session {
	return &Session{
		opts: opts,
		log:  logger.Component(log, "session"),
	}
}

// Init loads, reconciles and writes back. It fails only when the catalog
// cannot be loaded or the backend cannot be read at all; a corrupt snapshot
// falls back to the catalog.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, engine, err := s.bootstrap(ctx)
	if err != nil {
		return err
	}

	s.state = state
	s.engine = engine
	s.initialized = true
	s.lastInitAt = time.Now()
	return nil
}

// Reinitialize reloads the catalog and reconciles again from storage. The
// player selection and filter survive when still valid.
func (s *Session) Reinitialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	state, engine, err := s.bootstrap(ctx)
	if err != nil {
		return err
	}

	state.SelectedID = prev.SelectedID
	state = state.SetFilter(prev.Filter).Normalize()

	s.state = state
	s.engine = engine
	s.initialized = true
	s.lastInitAt = time.Now()

	s.log.Info("session reinitialized",
		logger.Int("catalog_version", state.CatalogVersion),
		logger.Int("entries", len(state.Entries)))
	return nil
}

// bootstrap must be called with mu held.
func (s *Session) bootstrap(ctx context.Context) (library.State, *reconcile.Engine, error) {
	src, err := s.opts.LoadCatalog()
	if err != nil {
		return library.State{}, nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	engine := reconcile.New(src, s.opts.DefaultIdentity, s.log)

	snap, source, err := s.opts.Adapter.Load(ctx)
	switch {
	case errors.Is(err, store.ErrCorruptSnapshot):
		s.preserveCorrupt(ctx, err)
		snap, source = store.Snapshot{}, store.SourceNone
	case err != nil:
		return library.State{}, nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	res := engine.Run(snap, source)
	if res.ColdStart {
		s.log.Info("cold start from catalog",
			logger.Int("catalog_version", src.Version),
			logger.Int("entries", len(res.State.Entries)))
	}

	if s.save(ctx, res.State) && source == store.SourceLegacy {
		if err := s.opts.Adapter.DropLegacy(ctx); err != nil {
			s.log.Warn("failed to delete legacy keys", logger.Error(err))
		} else {
			s.log.Info("legacy keys migrated and deleted")
		}
	}

	return res.State, engine, nil
}

// preserveCorrupt logs the undecodable key and copies the raw values aside
// before the catalog fallback overwrites them.
func (s *Session) preserveCorrupt(ctx context.Context, err error) {
	key := "unknown"
	var corrupt *store.CorruptError
	if errors.As(err, &corrupt) {
		key = corrupt.Key
	}
	s.log.Error("persisted snapshot is corrupt, falling back to catalog",
		logger.String("key", key),
		logger.Error(err))

	prefix, perr := s.opts.Adapter.Preserve(ctx, strconv.FormatInt(time.Now().Unix(), 10))
	if perr != nil {
		s.log.Warn("failed to copy corrupt snapshot aside", logger.Error(perr))
		return
	}
	if prefix != "" {
		s.log.Warn("corrupt snapshot copied aside", logger.String("prefix", prefix))
	}
}

// save writes state back. Failures are logged and remembered, never
// returned: the in-memory state stays authoritative. Must hold mu.
func (s *Session) save(ctx context.Context, state library.State) bool {
	if s.opts.SaveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.SaveTimeout)
		defer cancel()
	}

	if err := s.opts.Adapter.Save(ctx, store.FromState(state)); err != nil {
		s.lastSaveErr = err
		s.log.Warn("failed to persist snapshot", logger.Error(err))
		return false
	}
	s.lastSaveErr = nil
	s.lastSavedAt = time.Now()
	return true
}

// Apply runs fn on the current state, stores the result and writes it back
// before releasing the lock. It returns the new state.
func (s *Session) Apply(ctx context.Context, fn func(library.State) library.State) (library.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return library.State{}, ErrNotInitialized
	}

	s.state = fn(s.state)
	s.save(ctx, s.state)
	return s.state.Clone(), nil
}

// View returns a deep copy of the current state.
func (s *Session) View() library.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Clone()
}

// CatalogVersion returns the version of the catalog the state was
// reconciled against, or 0 before Init.
func (s *Session) CatalogVersion() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return 0
	}
	return s.engine.CatalogVersion()
}

// Status reports initialization and persistence health.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		Initialized:    s.initialized,
		CatalogVersion: s.state.CatalogVersion,
		Entries:        len(s.state.Entries),
		LastSavedAt:    s.lastSavedAt,
		LastSaveErr:    s.lastSaveErr,
		LastInitAt:     s.lastInitAt,
	}
}
