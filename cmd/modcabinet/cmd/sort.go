package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	index "go-modcabinet/index"
	"go-modcabinet/internal/cache"
	"go-modcabinet/internal/database"
	"go-modcabinet/internal/dirinfo"
	"go-modcabinet/internal/models"
	"go-modcabinet/internal/report"
	"go-modcabinet/internal/sorter"

	"github.com/fatih/color"
	"github.com/gosuri/uilive"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sortCmd runs one catalog pass over the repository.
var sortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Catalog the mod repository and report what changed",
	Long: `Walks every configured game directory, parses the cabinet.info manifests,
mod files and READMEs it finds, and updates the cache. Only files whose
modification time changed are parsed again. New, updated and deleted mods are
reported, and optionally the search index and wiki pages are refreshed.`,
	Run: runSort,
}

func init() {
	rootCmd.AddCommand(sortCmd)

	sortCmd.Flags().Bool("dry-run", false, "Report changes without saving the cache, index or wiki")
	sortCmd.Flags().Bool("no-index", false, "Do not update the search index")
	sortCmd.Flags().Bool("wiki", false, "Write wiki pages to WikiDir")
	sortCmd.Flags().Bool("html", false, "Also render wiki pages to HTML. Overrides config.")
	sortCmd.Flags().Bool("no-color", false, "Disable colored output")
	sortCmd.Flags().Bool("show-config", false, "Print the effective configuration as JSON and exit")

	// Bind flags to Viper
	viper.BindPFlag("sort.dry_run", sortCmd.Flags().Lookup("dry-run"))
	viper.BindPFlag("sort.no_index", sortCmd.Flags().Lookup("no-index"))
	viper.BindPFlag("sort.wiki", sortCmd.Flags().Lookup("wiki"))
	viper.BindPFlag("sort.html", sortCmd.Flags().Lookup("html"))
	viper.BindPFlag("sort.no_color", sortCmd.Flags().Lookup("no-color"))
	viper.BindPFlag("sort.show_config", sortCmd.Flags().Lookup("show-config"))
}

func runSort(cmd *cobra.Command, args []string) {
	cfg := globalConfig
	if cmd.Flags().Changed("html") {
		cfg.WikiHTML = viper.GetBool("sort.html")
	}

	if viper.GetBool("sort.show_config") {
		out, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			log.WithError(err).Fatal("Failed to marshal configuration")
		}
		fmt.Println(string(out))
		return
	}

	if cfg.RepoDir == "" {
		log.Fatal("RepoDir is not set in the configuration. Please check config file or use --repo-dir.")
	}
	dryRun := viper.GetBool("sort.dry_run")

	lock, err := cache.Lock(cache.LockPath(cfg.CachePath))
	if err != nil {
		log.WithError(err).Fatal("Could not acquire run lock")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.WithError(err).Warn("Error releasing run lock")
		}
	}()

	db, err := database.Open(cfg.CachePath)
	if err != nil {
		log.WithError(err).Fatalf("Failed to open cache database at %s", cfg.CachePath)
	}
	defer db.Close()

	modCache, err := cache.Open(db)
	if err != nil {
		log.WithError(err).Fatal("Failed to load cache")
	}

	s := sorter.New(cfg, modCache)
	writer := uilive.New()
	writer.Start()
	s.OnDir = func(d *dirinfo.DirInfo) {
		fmt.Fprintf(writer, "Processing %s...\n", d.RelDir)
	}
	res, err := s.Run()
	fmt.Fprintf(writer, "Processed %d mod directories.\n", res.Dirs)
	writer.Stop()
	if err != nil {
		log.WithError(err).Fatal("Catalog run failed")
	}

	colorize := !color.NoColor && !viper.GetBool("sort.no_color")
	if err := report.WriteConsole(os.Stdout, res, colorize); err != nil {
		log.WithError(err).Error("Failed to write report")
	}

	if dryRun {
		log.Info("Dry run: cache, index and wiki left untouched.")
		return
	}

	if err := modCache.Save(db); err != nil {
		log.WithError(err).Fatal("Failed to save cache")
	}

	all := summaries(modCache)
	if !viper.GetBool("sort.no_index") {
		updateIndex(cfg, all, res.Deleted)
	}
	if viper.GetBool("sort.wiki") {
		if cfg.WikiDir == "" {
			log.Error("WikiDir is not set in the configuration, skipping wiki pages.")
		} else if err := report.WriteWiki(cfg.WikiDir, report.Wiki(cfg, all), cfg.WikiHTML); err != nil {
			log.WithError(err).Error("Failed to write wiki pages")
		}
	}
	log.Infof("Run complete: %d mods cataloged, %d changed, %d deleted.", res.Total, len(res.Changed), len(res.Deleted))
}

func summaries(c *cache.Cache) []models.ModSummary {
	mods := c.Mods()
	out := make([]models.ModSummary, 0, len(mods))
	for _, m := range mods {
		out = append(out, m.Summary())
	}
	return out
}

// updateIndex refreshes the search index. Index problems never fail the run.
func updateIndex(cfg models.Config, current, deleted []models.ModSummary) {
	indexPath := indexPathFor(cfg)
	bleveIndex, err := index.OpenOrCreateIndex(indexPath)
	if err != nil {
		log.WithError(err).Errorf("Failed to open search index at %s", indexPath)
		return
	}
	defer func() {
		if err := bleveIndex.Close(); err != nil {
			log.WithError(err).Warn("Error closing search index")
		}
	}()
	if err := index.Update(bleveIndex, cfg, current, deleted); err != nil {
		log.WithError(err).Error("Failed to update search index")
	}
}

// indexPathFor returns the configured index path, defaulting to a directory
// next to the cache database.
func indexPathFor(cfg models.Config) string {
	if cfg.BleveIndexPath != "" {
		return cfg.BleveIndexPath
	}
	return filepath.Join(filepath.Dir(cfg.CachePath), "modcabinet.bleve")
}
