package store

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/MrSnakeDoc/reel/internal/favorites"
)

// ArchiveFormat identifies the export document layout.
const ArchiveFormat = "reel-archive/1"

// Archive is the human-shareable export of a snapshot.
type Archive struct {
	Format         string            `json:"format"`
	ExportedAt     time.Time         `json:"exportedAt"`
	CatalogVersion int               `json:"catalogVersion"`
	Entries        []domain.Entry    `json:"entries"`
	Categories     []domain.Category `json:"categories"`
	Favorites      favorites.Ledger  `json:"favorites"`
}

// NewArchive builds an archive of snap stamped with at.
func NewArchive(snap Snapshot, at time.Time) Archive {
	cats := make([]domain.Category, 0, len(snap.Categories))
	for _, name := range snap.Categories {
		cats = append(cats, domain.Category{Name: name, Color: domain.CategoryColor(snap.CategoryColors, name)})
	}
	return Archive{
		Format:         ArchiveFormat,
		ExportedAt:     at.UTC(),
		CatalogVersion: snap.CatalogVersion,
		Entries:        nonNilEntries(snap.Entries),
		Categories:     cats,
		Favorites:      nonNilLedger(snap.Favorites),
	}
}

// WriteArchive encodes the archive of snap as indented JSON.
func WriteArchive(w io.Writer, snap Snapshot, at time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewArchive(snap, at)); err != nil {
		return fmt.Errorf("failed to encode archive: %w", err)
	}
	return nil
}
