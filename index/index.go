package index

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-modcabinet/internal/helpers"
	"go-modcabinet/internal/models"

	"github.com/blevesearch/bleve/v2"
	log "github.com/sirupsen/logrus"
)

const defaultIndexPath = "modcabinet.bleve"

// Item is the indexed form of one cataloged mod.
// By default, all fields defined here are indexed and searchable using their
// lowercase JSON tag names (e.g., query '+author:someuser' or '+categories:qol').
type Item struct {
	ID           string    `json:"id"`                    // BLAKE3 of the absolute path
	Title        string    `json:"title"`                 // Mod title, or file name if untitled
	Description  string    `json:"description"`           // Description lines joined with newlines
	ReadmeDesc   string    `json:"readmeDescription"`     // README-sourced description
	Author       string    `json:"author"`                // Author directory name
	Categories   []string  `json:"categories,omitempty"`  // Category keys
	Game         string    `json:"game,omitempty"`        // Game prefix (e.g., BL2)
	FilePath     string    `json:"filePath"`              // Absolute path of the mod file
	RelFilename  string    `json:"relFilename"`           // Path relative to the repository
	RelPath      string    `json:"relPath,omitempty"`     // Directory relative to the repository
	NexusLink    string    `json:"nexusLink,omitempty"`   // Primary download link
	Screenshots  []string  `json:"screenshots,omitempty"` // Other links
	ModTime      time.Time `json:"modTime"`               // File modification time
	Hash         string    `json:"hash,omitempty"`        // BLAKE3 of the file contents
}

// ItemID returns the document ID used for the mod at path.
func ItemID(path string) string {
	return helpers.HashBytes([]byte(path))
}

// ItemFromSummary builds the index document for a mod.
func ItemFromSummary(cfg models.Config, m models.ModSummary) Item {
	title := m.Title
	if title == "" {
		title = filepath.Base(m.RelFilename)
	}
	item := Item{
		ID:          ItemID(m.FullFilename),
		Title:       title,
		Description: strings.Join(m.Description, "\n"),
		ReadmeDesc:  strings.Join(m.ReadmeDesc, "\n"),
		Author:      m.Author,
		Categories:  m.Categories,
		FilePath:    m.FullFilename,
		RelFilename: m.RelFilename,
		RelPath:     m.RelPath,
		NexusLink:   m.NexusLink,
		Screenshots: m.Screenshots,
		ModTime:     m.ModTime,
		Hash:        m.Hash,
	}
	first := strings.SplitN(filepath.ToSlash(m.RelFilename), "/", 2)[0]
	for _, g := range cfg.Games {
		if g.Dir == first {
			item.Game = g.Prefix
			break
		}
	}
	return item
}

// OpenOrCreateIndex opens an existing Bleve index or creates a new one if it doesn't exist.
func OpenOrCreateIndex(indexPath string) (bleve.Index, error) {
	if indexPath == "" {
		indexPath = defaultIndexPath
	}

	index, err := bleve.Open(indexPath)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		log.Infof("Creating new index at: %s", indexPath)
		mapping := bleve.NewIndexMapping()
		index, err = bleve.New(indexPath, mapping)
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err // Other error opening index
	} else {
		log.Infof("Opened existing index at: %s", indexPath)
	}
	return index, nil
}

// IndexItem adds or updates an item in the Bleve index.
func IndexItem(index bleve.Index, item Item) error {
	return index.Index(item.ID, item)
}

// DeleteItem removes the document for the mod at path.
func DeleteItem(index bleve.Index, path string) error {
	return index.Delete(ItemID(path))
}

// Update indexes every mod in current and removes every mod in deleted, in
// one batch.
func Update(index bleve.Index, cfg models.Config, current, deleted []models.ModSummary) error {
	batch := index.NewBatch()
	for _, m := range current {
		item := ItemFromSummary(cfg, m)
		if err := batch.Index(item.ID, item); err != nil {
			return err
		}
	}
	for _, m := range deleted {
		batch.Delete(ItemID(m.FullFilename))
	}
	if err := index.Batch(batch); err != nil {
		return err
	}
	log.Infof("Indexed %d mods, removed %d", len(current), len(deleted))
	return nil
}

// SearchIndex performs a search query against the index.
func SearchIndex(index bleve.Index, query string) (*bleve.SearchResult, error) {
	searchQuery := bleve.NewQueryStringQuery(query)
	searchRequest := bleve.NewSearchRequest(searchQuery)
	searchRequest.Fields = []string{"*"} // Request all stored fields
	searchResults, err := index.Search(searchRequest)
	if err != nil {
		return nil, err
	}
	return searchResults, nil
}

// DeleteIndex removes the index directory. Use with caution!
func DeleteIndex(indexPath string) error {
	if indexPath == "" {
		indexPath = defaultIndexPath
	}
	log.Infof("Attempting to delete index at: %s", indexPath)
	return os.RemoveAll(indexPath)
}
