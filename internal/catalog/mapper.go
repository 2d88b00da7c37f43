package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/reel/internal/domain"
)

// ErrEmptyCatalog is returned when a catalog file yields no usable entry.
var ErrEmptyCatalog = errors.New("no valid entries found in catalog")

// entrySpacing staggers CreatedAt so catalog order survives a sort by age.
const entrySpacing = 100 * time.Second

// Mapper converts a parsed catalog File into a Source
type Mapper struct {
	now func() time.Time
}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{now: time.Now}
}

// MapSource validates the file and builds the Source
func (m *Mapper) MapSource(file File) (*Source, error) {
	if file.Version <= 0 {
		return nil, fmt.Errorf("catalog version must be > 0, got %d", file.Version)
	}

	src := &Source{
		Version:          file.Version,
		DefaultFavorites: make(map[string][]string, len(file.Favorites)),
	}

	seenCategory := make(map[string]bool, len(file.Categories))
	for _, c := range file.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" || seenCategory[name] {
			continue
		}
		seenCategory[name] = true
		color := c.Color
		if color == "" {
			color = domain.FallbackColor
		}
		src.Categories = append(src.Categories, domain.Category{Name: name, Color: color})
	}

	now := m.now()
	for idx, props := range file.Entries {
		ref := strings.TrimSpace(props.Ref)
		// Skip entries without a reference
		if ref == "" {
			continue
		}

		id := strings.TrimSpace(props.ID)
		if id == "" {
			id = "c-" + ref
		}

		category := strings.TrimSpace(props.Category)
		if category == "" {
			category = domain.CategoryOther
		}

		src.Entries = append(src.Entries, domain.Entry{
			ID:          id,
			ExternalRef: ref,
			CreatedAt:   now.Add(-time.Duration(idx) * entrySpacing),
			Title:       strings.TrimSpace(props.Title),
			Category:    category,
			Thumbnail:   strings.TrimSpace(props.Thumbnail),
			Status:      domain.StatusReady,
			Reviews:     []domain.Review{},
		})
	}

	if len(src.Entries) == 0 {
		return nil, ErrEmptyCatalog
	}

	for identity, ids := range file.Favorites {
		identity = strings.TrimSpace(identity)
		if identity == "" {
			continue
		}
		src.DefaultFavorites[identity] = append(src.DefaultFavorites[identity], ids...)
	}

	return src, nil
}

// Load reads, parses and maps a catalog in one step.
// An empty path loads the embedded catalog.
func Load(path string) (*Source, error) {
	file, err := NewLoader(path).Load()
	if err != nil {
		return nil, err
	}
	src, err := NewMapper().MapSource(file)
	if err != nil {
		return nil, fmt.Errorf("failed to map catalog: %w", err)
	}
	return src, nil
}
