package catalog

// File represents the top-level structure of catalog.yaml
type File struct {
	Version    int                 `yaml:"version"`
	Categories []CategoryProps     `yaml:"categories"`
	Entries    []EntryProps        `yaml:"entries"`
	Favorites  map[string][]string `yaml:"favorites,omitempty"`
}

// CategoryProps declares a category and its display color
type CategoryProps struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color,omitempty"`
}

// EntryProps contains the descriptive fields of a catalog entry
type EntryProps struct {
	ID        string `yaml:"id,omitempty"`
	Title     string `yaml:"title"`
	Category  string `yaml:"category,omitempty"`
	Ref       string `yaml:"ref"`
	Thumbnail string `yaml:"thumbnail,omitempty"`
}
