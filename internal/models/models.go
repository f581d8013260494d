package models

import "time"

type (
	Config struct {
		// Paths
		RepoDir        string `toml:"RepoDir"`
		WikiDir        string `toml:"WikiDir"`
		CachePath      string `toml:"CachePath"`
		BleveIndexPath string `toml:"BleveIndexPath"`

		// Catalog layout
		ManifestName string     `toml:"ManifestName"`
		NexusDomain  string     `toml:"NexusDomain"`
		Games        []Game     `toml:"Games"`
		Categories   []Category `toml:"Categories"`

		// Output
		WikiHTML bool   `toml:"WikiHTML"`
		LogLevel string `toml:"LogLevel"`
	}

	// Game is one top-level directory of the mod repository.
	Game struct {
		Prefix string `toml:"Prefix"`
		Dir    string `toml:"Dir"`
	}

	// Category is a valid manifest category with its display label.
	Category struct {
		Key   string `toml:"Key"`
		Label string `toml:"Label"`
	}

	// ModSummary is the reportable view of one cataloged mod.
	ModSummary struct {
		FullFilename string    `json:"fullFilename"`
		RelPath      string    `json:"relPath"`
		RelFilename  string    `json:"relFilename"`
		Status       string    `json:"status"`
		Title        string    `json:"title"`
		Author       string    `json:"author"`
		ModTime      time.Time `json:"modTime"`
		Description  []string  `json:"description"`
		ReadmeDesc   []string  `json:"readmeDescription"`
		Categories   []string  `json:"categories"`
		NexusLink    string    `json:"nexusLink,omitempty"`
		Screenshots  []string  `json:"screenshots,omitempty"`
		Hash         string    `json:"hash,omitempty"`
	}
)

// CategoryKeys returns the configured category keys in order.
func (c Config) CategoryKeys() []string {
	keys := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		keys = append(keys, cat.Key)
	}
	return keys
}

// CategoryLabel returns the display label for key, or key itself if unknown.
func (c Config) CategoryLabel(key string) string {
	for _, cat := range c.Categories {
		if cat.Key == key {
			return cat.Label
		}
	}
	return key
}
