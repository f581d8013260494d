package cmd

import (
	"errors"
	"fmt"
	"sort"

	index "go-modcabinet/index"

	"github.com/blevesearch/bleve/v2" // Import bleve package directly
	log "github.com/sirupsen/logrus"
)

// runSearchLogic executes the search against a specific index path.
func runSearchLogic(indexPath string, query string) {
	log.Debugf("runSearchLogic called with indexPath: %s, query: %s", indexPath, query)

	if query == "" {
		log.Error("Search query cannot be empty.")
		return
	}

	if indexPath == "" {
		log.Error("Index path cannot be empty.")
		return
	}

	log.Infof("Opening Bleve index at: %s", indexPath)
	// Use Open instead of OpenOrCreateIndex to avoid creating index during search
	bleveIndex, err := bleve.Open(indexPath)
	if err != nil {
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			log.Errorf("Bleve index not found at %s. Run 'sort' first to create it.", indexPath)
		} else {
			log.Errorf("Failed to open Bleve index at %s: %v", indexPath, err)
		}
		return
	}
	defer func() {
		log.Debug("Closing Bleve index.")
		if err := bleveIndex.Close(); err != nil {
			log.Errorf("Error closing Bleve index: %v", err)
		}
	}()

	log.Infof("Performing search with query: %s", query)

	searchResults, err := index.SearchIndex(bleveIndex, query)
	if err != nil {
		log.Errorf("Error performing search: %v", err)
		return
	}

	log.Infof("Search finished. Hits: %d, Total: %d, Took: %s",
		len(searchResults.Hits),
		searchResults.Total,
		searchResults.Took)

	if searchResults.Total > 0 {
		fmt.Println("--- Search Results ---")
		for i, hit := range searchResults.Hits {
			fmt.Printf("[%d] %v (Score: %.2f)\n", i+1, hit.Fields["title"], hit.Score)
			fields := make([]string, 0, len(hit.Fields))
			for field := range hit.Fields {
				if field != "title" {
					fields = append(fields, field)
				}
			}
			sort.Strings(fields)
			for _, field := range fields {
				fmt.Printf("  %s: %v\n", field, hit.Fields[field])
			}
			fmt.Println("---")
		}
	} else {
		fmt.Println("No results found matching your query.")
	}
}
