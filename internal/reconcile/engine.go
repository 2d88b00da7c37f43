// Package reconcile merges the compiled catalog with whatever a previous run
// persisted, producing the working state a session starts from.
package reconcile

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/reel/internal/catalog"
	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/MrSnakeDoc/reel/internal/favorites"
	"github.com/MrSnakeDoc/reel/internal/library"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/store"
)

// Test seams.
var (
	newID = uuid.NewString
	now   = time.Now
)

// Result is the outcome of one reconciliation.
type Result struct {
	State library.State

	// ColdStart is true when the working set is the catalog verbatim
	// because nothing usable was persisted.
	ColdStart bool

	// Applied lists the migrations that ran, in order.
	Applied []string
}

// Engine reconciles snapshots against one catalog.
type Engine struct {
	catalog         *catalog.Source
	defaultIdentity string
	migrations      []Migration
	log             logger.Logger
}

// New creates an engine with the built-in migrations.
func New(src *catalog.Source, defaultIdentity string, log logger.Logger) *Engine {
	return &Engine{
		catalog:         src,
		defaultIdentity: favorites.Normalize(defaultIdentity),
		migrations:      DefaultMigrations(),
		log:             logger.Component(log, "reconcile"),
	}
}

// WithMigrations replaces the migration pipeline.
func (e *Engine) WithMigrations(m []Migration) *Engine {
	e.migrations = m
	return e
}

// CatalogVersion returns the version of the compiled catalog.
func (e *Engine) CatalogVersion() int {
	return e.catalog.Version
}

// ColdStart builds the working state from the catalog alone.
func (e *Engine) ColdStart() Result {
	entries := e.catalog.EntriesCopy()
	snap := store.Snapshot{
		Entries:        entries,
		Categories:     e.catalog.CategoryNames(),
		CategoryColors: e.catalog.Colors(),
	}
	return Result{State: e.finalize(snap, entries), ColdStart: true}
}

// Run reconciles a loaded snapshot. SourceNone is a cold start.
func (e *Engine) Run(snap store.Snapshot, source store.Source) Result {
	if source == store.SourceNone {
		return e.ColdStart()
	}

	env := Env{
		Source:          source,
		CompiledVersion: e.catalog.Version,
		Catalog:         e.catalog.EntriesCopy(),
		DefaultIdentity: e.defaultIdentity,
	}

	var (
		applied    []string
		introduced []domain.Entry
	)
	for _, m := range e.migrations {
		if !m.Applies(snap, env) {
			continue
		}
		var added []domain.Entry
		snap, added = m.Apply(snap, env)
		introduced = append(introduced, added...)
		applied = append(applied, m.Name)
	}

	e.log.Info("snapshot reconciled",
		logger.String("source", source.String()),
		logger.Int("stored_version", snap.CatalogVersion),
		logger.Int("catalog_version", e.catalog.Version),
		logger.Int("introduced", len(introduced)),
		logger.String("migrations", strings.Join(applied, ",")))

	return Result{State: e.finalize(snap, introduced), Applied: applied}
}

// finalize stamps the catalog version, fills registries, layers favorites
// over compiled defaults and registers categories of introduced entries.
func (e *Engine) finalize(snap store.Snapshot, introduced []domain.Entry) library.State {
	snap.CatalogVersion = e.catalog.Version

	if snap.Categories == nil {
		snap.Categories = e.catalog.CategoryNames()
	}
	if snap.CategoryColors == nil {
		snap.CategoryColors = e.catalog.Colors()
	}
	if favorites.Normalize(snap.ActiveIdentity) == "" {
		snap.ActiveIdentity = e.defaultIdentity
	}

	defaults := favorites.Ledger(e.catalog.Favorites())
	if displaced := displacedIDs(e.catalog.Entries, snap.Entries); len(displaced) > 0 {
		e.logDisplaced(displaced, introduced)
		defaults = defaults.Remap(displaced)
	}

	ledger := favorites.Merge(defaults, snap.Favorites)
	ledger = remapDefaults(ledger, e.catalog.Entries, snap.Entries)
	valid := make(map[string]bool, len(snap.Entries))
	for _, en := range snap.Entries {
		valid[en.ID] = true
	}
	snap.Favorites = ledger.Prune(func(id string) bool { return valid[id] })

	s := snap.State()
	colors := e.catalog.Colors()
	for _, en := range introduced {
		if color, known := colors[en.Category]; known {
			s = s.AddCategory(en.Category, color)
		}
	}
	return s
}

// logDisplaced reports catalog entries that surfaced under a fresh id in
// this run because their catalog id was already taken.
func (e *Engine) logDisplaced(displaced map[string]string, introduced []domain.Entry) {
	fresh := make(map[string]bool, len(introduced))
	for _, en := range introduced {
		fresh[en.ID] = true
	}
	for catalogID, id := range displaced {
		if !fresh[id] {
			continue
		}
		e.log.Warn("catalog id already used by an entry with another ref, assigned a new id",
			logger.String("catalog_id", catalogID),
			logger.String("id", id))
	}
}
