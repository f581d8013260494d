package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"go-modcabinet/internal/cache"
	"go-modcabinet/internal/database"
	"go-modcabinet/internal/helpers"
	"go-modcabinet/internal/modfile"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// dbCmd represents the base command for cache database operations
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Interact with the catalog cache",
	Long:  `Perform operations like viewing, verifying, exporting or managing entries in the catalog cache.`,
}

// dbViewCmd represents the command to view cached mod records
var dbViewCmd = &cobra.Command{
	Use:   "view",
	Short: "View mod records stored in the cache",
	Long:  `Lists the mods that have been recorded in the cache.`,
	Run:   runDbView,
}

// dbVerifyCmd represents the command to verify cached records against the filesystem
var dbVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify cached mod records against the filesystem",
	Long: `Checks that every cached mod file still exists and, optionally, that its
contents still hash to the value recorded when it was parsed.`,
	Run: runDbVerify,
}

// dbDeleteCmd removes one record from the cache
var dbDeleteCmd = &cobra.Command{
	Use:   "delete [MOD_FILE_PATH]",
	Short: "Delete a mod record from the cache",
	Long: `Removes the record for the given absolute mod file path. The next 'sort'
run parses the file again and reports it as new.`,
	Args: cobra.ExactArgs(1),
	Run:  runDbDelete,
}

// dbSearchCmd represents the command to search cached records by title
var dbSearchCmd = &cobra.Command{
	Use:   "search [TITLE_QUERY]",
	Short: "Search cached mod records by title",
	Long:  `Searches cached records for mods whose titles contain the provided query text (case-insensitive).`,
	Args:  cobra.ExactArgs(1),
	Run:   runDbSearch,
}

// dbExportCmd writes the cache to a snapshot file
var dbExportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Export the cache as a gzip-compressed JSON snapshot",
	Args:  cobra.ExactArgs(1),
	Run:   runDbExport,
}

// dbImportCmd merges a snapshot file into the cache
var dbImportCmd = &cobra.Command{
	Use:   "import [FILE]",
	Short: "Import a snapshot written by 'db export' into the cache",
	Args:  cobra.ExactArgs(1),
	Run:   runDbImport,
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbViewCmd)
	dbCmd.AddCommand(dbVerifyCmd)
	dbCmd.AddCommand(dbDeleteCmd)
	dbCmd.AddCommand(dbSearchCmd)
	dbCmd.AddCommand(dbExportCmd)
	dbCmd.AddCommand(dbImportCmd)

	dbVerifyCmd.Flags().Bool("check-hash", true, "Perform hash check for existing files")
}

// openCacheDB opens the cache database configured in globalConfig.
func openCacheDB() *database.DB {
	if globalConfig.CachePath == "" {
		log.Fatal("Cache path is not set in the configuration. Please check config file or use --cache.")
	}
	db, err := database.Open(globalConfig.CachePath)
	if err != nil {
		log.WithError(err).Fatalf("Failed to open cache database at %s", globalConfig.CachePath)
	}
	return db
}

// foldMods calls fn for every readable mod record in db.
func foldMods(db *database.DB, fn func(key string, m *modfile.ModFile)) error {
	return db.Fold(func(key []byte, value []byte) error {
		keyStr := string(key)
		if !strings.HasPrefix(keyStr, cache.ModPrefix) {
			return nil
		}
		m, err := modfile.Unserialize(value)
		if err != nil {
			log.WithError(err).Warnf("Failed to unmarshal record for key %s", keyStr)
			return nil // Continue folding over other keys
		}
		fn(keyStr, m)
		return nil
	})
}

func printModTable(tw *tabwriter.Writer) {
	fmt.Fprintln(tw, "Title\tAuthor\tCategories\tModified\tFile")
	fmt.Fprintln(tw, "-----\t------\t----------\t--------\t----")
}

func printModRow(tw *tabwriter.Writer, m *modfile.ModFile) {
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		m.Title,
		m.Author,
		strings.Join(m.Categories(), ","),
		m.ModTime().Format("2006-01-02 15:04"),
		m.RelFilename,
	)
}

func runDbView(cmd *cobra.Command, args []string) {
	log.Info("Viewing cached mod records...")
	db := openCacheDB()
	defer db.Close()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	printModTable(tw)

	count := 0
	errFold := foldMods(db, func(_ string, m *modfile.ModFile) {
		printModRow(tw, m)
		count++
	})
	if errFold != nil {
		log.WithError(errFold).Error("Error occurred during database scan (Fold)")
	}

	if err := tw.Flush(); err != nil {
		log.WithError(err).Error("Error flushing table writer for db view")
	}
	log.Infof("Displayed %d entries.", count)
}

func runDbVerify(cmd *cobra.Command, args []string) {
	log.Info("Verifying cached mod records against filesystem...")
	checkHashFlag, _ := cmd.Flags().GetBool("check-hash")

	db := openCacheDB()
	defer db.Close()

	var totalEntries, foundOk, foundHashMismatch, missing int
	errFold := foldMods(db, func(_ string, m *modfile.ModFile) {
		totalEntries++
		entry := log.WithField("path", m.FullFilename)

		_, statErr := os.Stat(m.FullFilename)
		switch {
		case statErr == nil && (!checkHashFlag || m.Hash == ""):
			foundOk++
			entry.Info("[FOUND] File exists (hash check skipped).")
		case statErr == nil:
			if helpers.CheckHash(m.FullFilename, m.Hash) {
				foundOk++
				entry.Info("[OK] File exists and hash matches.")
			} else {
				foundHashMismatch++
				entry.Warn("[MISMATCH] File exists but hash mismatch. The next 'sort' run will reparse it if its mtime changed.")
			}
		case os.IsNotExist(statErr):
			missing++
			entry.Error("[MISSING] File not found. The next 'sort' run will report it as deleted.")
		default:
			log.WithError(statErr).Errorf("[ERROR] Could not check file status for %s", m.FullFilename)
		}
	})
	if errFold != nil {
		log.WithError(errFold).Error("Error occurred during database scan (Fold)")
	}

	log.Infof("Verification Summary: Total Entries=%d, OK=%d, Missing=%d, Mismatch=%d",
		totalEntries, foundOk, missing, foundHashMismatch)
	if missing > 0 || foundHashMismatch > 0 {
		os.Exit(1)
	}
}

func runDbDelete(cmd *cobra.Command, args []string) {
	path, err := filepath.Abs(args[0])
	if err != nil {
		log.WithError(err).Fatalf("Invalid path %s", args[0])
	}
	db := openCacheDB()
	defer db.Close()

	err = db.Delete(cache.ModKey(path))
	if errors.Is(err, database.ErrNotFound) {
		log.Fatalf("No cached record found for %s", path)
	} else if err != nil {
		log.WithError(err).Fatalf("Failed to delete record for %s", path)
	}
	log.Infof("Deleted cached record for %s", path)
}

func runDbSearch(cmd *cobra.Command, args []string) {
	searchTerm := strings.ToLower(args[0]) // Case-insensitive search
	log.Infof("Searching cached records for titles containing: '%s'", searchTerm)

	db := openCacheDB()
	defer db.Close()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	printModTable(tw)

	matchCount := 0
	errFold := foldMods(db, func(_ string, m *modfile.ModFile) {
		if strings.Contains(strings.ToLower(m.Title), searchTerm) {
			matchCount++
			printModRow(tw, m)
		}
	})
	if errFold != nil {
		log.WithError(errFold).Error("Error occurred during database scan (Fold)")
	}

	if err := tw.Flush(); err != nil {
		log.WithError(err).Error("Error flushing table writer for db search")
	}
	log.Infof("Found %d matching entries for query '%s'.", matchCount, searchTerm)
}

func runDbExport(cmd *cobra.Command, args []string) {
	db := openCacheDB()
	defer db.Close()

	c, err := cache.Open(db)
	if err != nil {
		log.WithError(err).Fatal("Failed to load cache")
	}

	f, err := os.Create(args[0])
	if err != nil {
		log.WithError(err).Fatalf("Failed to create snapshot file %s", args[0])
	}
	if err := c.WriteSnapshot(f); err != nil {
		f.Close()
		log.WithError(err).Fatal("Failed to write snapshot")
	}
	if err := f.Close(); err != nil {
		log.WithError(err).Fatalf("Failed to close snapshot file %s", args[0])
	}
	log.Infof("Exported %d mod records and %d READMEs to %s", c.Len(), c.ReadmeCount(), args[0])
}

func runDbImport(cmd *cobra.Command, args []string) {
	lock, err := cache.Lock(cache.LockPath(globalConfig.CachePath))
	if err != nil {
		log.WithError(err).Fatal("Could not acquire run lock")
	}
	defer lock.Unlock()

	db := openCacheDB()
	defer db.Close()

	c, err := cache.Open(db)
	if err != nil {
		log.WithError(err).Fatal("Failed to load cache")
	}

	f, err := os.Open(args[0])
	if err != nil {
		log.WithError(err).Fatalf("Failed to open snapshot file %s", args[0])
	}
	defer f.Close()

	if err := c.ReadSnapshot(f); err != nil {
		log.WithError(err).Fatal("Failed to read snapshot")
	}
	if err := c.Save(db); err != nil {
		log.WithError(err).Fatal("Failed to save cache")
	}
	log.Infof("Imported snapshot %s; cache now holds %d mod records", args[0], c.Len())
}
