package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/MrSnakeDoc/reel/internal/favorites"
)

// ErrCorruptSnapshot is returned by Load when a persisted value cannot be
// decoded. Callers fall back to the catalog.
var ErrCorruptSnapshot = errors.New("persisted snapshot is corrupt")

// PreservedPrefix starts the keys Preserve copies raw values under.
const PreservedPrefix = "corrupt-"

// CorruptError names the key that failed to decode. It matches
// ErrCorruptSnapshot with errors.Is.
type CorruptError struct {
	Key string
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("%v: key %s: %v", ErrCorruptSnapshot, e.Key, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

func (e *CorruptError) Is(target error) bool { return target == ErrCorruptSnapshot }

// Adapter reads and writes Snapshots through a Backend.
type Adapter struct {
	backend Backend
}

// NewAdapter creates a new adapter over backend
func NewAdapter(backend Backend) *Adapter {
	return &Adapter{backend: backend}
}

// Load reads the current key layout, or the legacy one when the current
// entries key is absent.
func (a *Adapter) Load(ctx context.Context) (Snapshot, Source, error) {
	raw, err := a.backend.Get(ctx, KeyEntries)
	if err != nil {
		return Snapshot{}, SourceNone, fmt.Errorf("failed to read %s: %w", KeyEntries, err)
	}
	if raw != nil {
		snap, err := a.loadCurrent(ctx, raw)
		return snap, SourceCurrent, err
	}

	raw, err = a.backend.Get(ctx, LegacyKeyVault)
	if err != nil {
		return Snapshot{}, SourceNone, fmt.Errorf("failed to read %s: %w", LegacyKeyVault, err)
	}
	if raw != nil {
		snap, err := a.loadLegacy(ctx, raw)
		return snap, SourceLegacy, err
	}

	return Snapshot{}, SourceNone, nil
}

func (a *Adapter) loadCurrent(ctx context.Context, entries []byte) (Snapshot, error) {
	var snap Snapshot
	if err := decode(KeyEntries, entries, &snap.Entries); err != nil {
		return Snapshot{}, err
	}

	fields := []struct {
		key string
		dst any
	}{
		{KeyCatalogVersion, &snap.CatalogVersion},
		{KeyCategories, &snap.Categories},
		{KeyCategoryColors, &snap.CategoryColors},
		{KeyFavorites, &snap.Favorites},
		{KeyActiveIdentity, &snap.ActiveIdentity},
		{KeyIsAuthorized, &snap.IsAuthorized},
	}
	for _, f := range fields {
		raw, err := a.backend.Get(ctx, f.key)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to read %s: %w", f.key, err)
		}
		if raw == nil {
			continue
		}
		if err := decode(f.key, raw, f.dst); err != nil {
			return Snapshot{}, err
		}
	}
	return snap, nil
}

func (a *Adapter) loadLegacy(ctx context.Context, vault []byte) (Snapshot, error) {
	var snap Snapshot
	if err := decode(LegacyKeyVault, vault, &snap.Legacy); err != nil {
		return Snapshot{}, err
	}

	for _, f := range []struct {
		key string
		dst any
	}{
		{LegacyKeyCategories, &snap.Categories},
		{LegacyKeyCategoryColors, &snap.CategoryColors},
	} {
		raw, err := a.backend.Get(ctx, f.key)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to read %s: %w", f.key, err)
		}
		if raw == nil {
			continue
		}
		if err := decode(f.key, raw, f.dst); err != nil {
			return Snapshot{}, err
		}
	}

	// The legacy flag is a bare "true"/"false" string, not JSON.
	auth, err := a.backend.Get(ctx, LegacyKeyAuth)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read %s: %w", LegacyKeyAuth, err)
	}
	snap.IsAuthorized = strings.TrimSpace(string(auth)) == "true"

	return snap, nil
}

func decode(key string, raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return &CorruptError{Key: key, Err: err}
	}
	return nil
}

// Preserve copies the raw value of every current and legacy key present
// under PreservedPrefix+stamp+"/"+key, so a following Save cannot lose them.
// It returns the prefix used, or "" when nothing was stored.
func (a *Adapter) Preserve(ctx context.Context, stamp string) (string, error) {
	prefix := PreservedPrefix + stamp + "/"
	kv := make(map[string][]byte)
	for _, key := range append(CurrentKeys(), LegacyKeys()...) {
		raw, err := a.backend.Get(ctx, key)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", key, err)
		}
		if raw != nil {
			kv[prefix+key] = raw
		}
	}
	if len(kv) == 0 {
		return "", nil
	}
	if err := a.backend.SetMany(ctx, kv); err != nil {
		return "", fmt.Errorf("failed to preserve snapshot: %w", err)
	}
	return prefix, nil
}

// Save writes every current-generation key in one batch.
func (a *Adapter) Save(ctx context.Context, snap Snapshot) error {
	values := []struct {
		key string
		val any
	}{
		{KeyEntries, nonNilEntries(snap.Entries)},
		{KeyCatalogVersion, snap.CatalogVersion},
		{KeyCategories, nonNilStrings(snap.Categories)},
		{KeyCategoryColors, nonNilColors(snap.CategoryColors)},
		{KeyFavorites, nonNilLedger(snap.Favorites)},
		{KeyActiveIdentity, snap.ActiveIdentity},
		{KeyIsAuthorized, snap.IsAuthorized},
	}

	kv := make(map[string][]byte, len(values))
	for _, v := range values {
		data, err := json.Marshal(v.val)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", v.key, err)
		}
		kv[v.key] = data
	}

	if err := a.backend.SetMany(ctx, kv); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// DropLegacy deletes every legacy key.
func (a *Adapter) DropLegacy(ctx context.Context) error {
	if err := a.backend.Delete(ctx, LegacyKeys()...); err != nil {
		return fmt.Errorf("failed to delete legacy keys: %w", err)
	}
	return nil
}

// Close closes the underlying backend.
func (a *Adapter) Close() error {
	return a.backend.Close()
}

func nonNilEntries(v []domain.Entry) []domain.Entry {
	if v == nil {
		return []domain.Entry{}
	}
	return v
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilColors(v map[string]string) map[string]string {
	if v == nil {
		return map[string]string{}
	}
	return v
}

func nonNilLedger(v favorites.Ledger) favorites.Ledger {
	if v == nil {
		return favorites.Ledger{}
	}
	return v
}
