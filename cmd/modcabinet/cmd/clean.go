package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	index "go-modcabinet/index"
	"go-modcabinet/internal/cache"
	"go-modcabinet/internal/helpers"
	"go-modcabinet/internal/report"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().BoolP("index", "i", false, "Also remove the search index")
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove generated wiki pages and a stale run lock",
	Long: `Removes the wiki pages written by 'sort --wiki' (one .md and .html per
configured category plus the index page) and the run lock file left behind by
an interrupted run. Optionally removes the search index as well.`,
	Run: runClean,
}

func runClean(cmd *cobra.Command, args []string) {
	cfg := globalConfig
	cleanIndex, _ := cmd.Flags().GetBool("index")

	var removed, filesFailed int

	remove := func(path, kind string) {
		err := os.Remove(path)
		switch {
		case err == nil:
			log.Infof("Removed %s: %s", kind, path)
			removed++
		case os.IsNotExist(err):
			log.Debugf("No %s at %s", kind, path)
		default:
			log.Errorf("Failed to remove %s %q: %v", kind, path, err)
			filesFailed++
		}
	}

	// The lock file may only go if nobody holds it.
	lockPath := cache.LockPath(cfg.CachePath)
	if _, err := os.Stat(lockPath); err == nil {
		lock, err := cache.Lock(lockPath)
		if err != nil {
			log.WithError(err).Error("Run lock is held by another process, leaving it in place.")
			filesFailed++
		} else {
			_ = lock.Unlock()
			remove(lockPath, "run lock")
		}
	}

	if cfg.WikiDir != "" {
		log.Infof("Scanning for generated wiki pages in %s...", cfg.WikiDir)
		names := []string{report.IndexPage}
		for _, cat := range cfg.Categories {
			names = append(names, helpers.ConvertToSlug(cat.Label))
		}
		for _, name := range names {
			for _, ext := range []string{".md", ".html"} {
				remove(filepath.Join(cfg.WikiDir, name+ext), "wiki page")
			}
		}
	}

	if cleanIndex {
		indexPath := indexPathFor(cfg)
		if err := index.DeleteIndex(indexPath); err != nil {
			log.Errorf("Failed to remove search index %q: %v", indexPath, err)
			filesFailed++
		} else {
			removed++
		}
	}

	var summaryParts []string
	summaryParts = append(summaryParts, fmt.Sprintf("Clean complete. Removed %d item(s)", removed))
	if filesFailed > 0 {
		summaryParts = append(summaryParts, fmt.Sprintf("failed to remove %d", filesFailed))
	}
	log.Info(strings.Join(summaryParts, ", ") + ".")

	if filesFailed > 0 {
		os.Exit(1)
	}
}
