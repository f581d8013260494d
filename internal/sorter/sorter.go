package sorter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go-modcabinet/internal/cabinet"
	"go-modcabinet/internal/cache"
	"go-modcabinet/internal/config"
	"go-modcabinet/internal/diag"
	"go-modcabinet/internal/dirinfo"
	"go-modcabinet/internal/modfile"
	"go-modcabinet/internal/models"
	"go-modcabinet/internal/readme"

	log "github.com/sirupsen/logrus"
)

// Result is the outcome of one catalog run.
type Result struct {
	// Changed holds the New and Updated records, sorted by path.
	Changed []models.ModSummary
	// Deleted holds the records that were not seen during the run.
	Deleted []models.ModSummary
	// Messages are the ERROR, WARNING and NOTICE lines of the run.
	Messages []string
	// Total is the number of records left in the cache.
	Total int
	// Dirs is the number of directories carrying a manifest.
	Dirs int
}

// Sorter merges manifests, mod files and READMEs into the cache, one
// directory at a time.
type Sorter struct {
	cfg   models.Config
	cache *cache.Cache
	msgs  *diag.Log
	valid cabinet.CategorySet
	dirs  int

	// OnDir, if set, is called for every directory holding a manifest
	// before it is processed.
	OnDir func(dir *dirinfo.DirInfo)
}

type pick struct {
	info *cabinet.ModInfo
	mod  *modfile.ModFile
}

// New returns a Sorter that records into c.
func New(cfg models.Config, c *cache.Cache) *Sorter {
	if cfg.ManifestName == "" {
		cfg.ManifestName = config.DefaultManifestName
	}
	if cfg.NexusDomain == "" {
		cfg.NexusDomain = config.DefaultNexusDomain
	}
	c.BeginRun()
	return &Sorter{
		cfg:   cfg,
		cache: c,
		msgs:  diag.New(),
		valid: cabinet.NewCategorySet(cfg.CategoryKeys()...),
	}
}

// Messages returns the diagnostics recorded so far.
func (s *Sorter) Messages() []string {
	return s.msgs.Messages()
}

// ProcessDir handles one directory of the tree. Directories without a
// manifest are ignored. Only filesystem failures are returned; manifest
// problems are recorded as messages.
func (s *Sorter) ProcessDir(root, dirpath string, filenames []string) error {
	dir := dirinfo.New(root, dirpath, filenames)
	if !dir.Has(s.cfg.ManifestName) {
		return nil
	}
	s.dirs++
	if s.OnDir != nil {
		s.OnDir(dir)
	}

	var rm *readme.Readme
	if p := dir.Readme(); p != "" {
		var err error
		if rm, err = s.cache.LoadReadme(p); err != nil {
			return err
		}
	}

	manifestPath, err := dir.Path(s.cfg.ManifestName)
	if err != nil {
		return err
	}
	_, relManifest, err := dir.RelPaths(s.cfg.ManifestName)
	if err != nil {
		return err
	}
	info := cabinet.New(relManifest, s.msgs, s.valid)
	if err := info.LoadFile(manifestPath); err != nil {
		return err
	}

	picks, err := s.pickFiles(dir, info, relManifest)
	if err != nil {
		return err
	}

	for _, p := range picks {
		readmeDesc := []string{}
		if rm != nil {
			readmeDesc = rm.FindMatching(p.mod.Title, info.SingleMod())
		}
		p.mod.UpdateReadmeDesc(readmeDesc)
		p.mod.SetCategories(p.info.Categories)
		p.mod.SetURLs(p.info.URLs, s.cfg.NexusDomain)

		log.WithFields(log.Fields{
			"file":   p.mod.RelFilename,
			"status": p.mod.Status,
		}).Debug("Merged mod record")
	}
	return nil
}

func (s *Sorter) pickFiles(dir *dirinfo.DirInfo, info *cabinet.CabinetInfo, relManifest string) ([]pick, error) {
	if info.SingleMod() {
		entry, ok := info.Get("")
		if !ok {
			// The category line was rejected and already reported.
			return nil, nil
		}
		name := s.singleModFile(dir)
		if name == "" {
			s.msgs.Errorf("No mod file found for %s", relManifest)
			return nil, nil
		}
		m, err := s.cache.Load(dir, name)
		if err != nil {
			return nil, err
		}
		return []pick{{info: entry, mod: m}}, nil
	}

	var picks []pick
	for _, entry := range info.ModList() {
		if !dir.Has(entry.Filename) {
			s.msgs.Errorf("Mod file %q listed in %s does not exist", entry.Filename, relManifest)
			continue
		}
		m, err := s.cache.Load(dir, entry.Filename)
		if err != nil {
			return nil, err
		}
		picks = append(picks, pick{info: entry, mod: m})
	}
	return picks, nil
}

// singleModFile picks the mod file of a single-mod directory: the first
// .blcm file, else the first .txt file that is not a README, else the first
// other file that is neither README nor manifest.
func (s *Sorter) singleModFile(dir *dirinfo.DirInfo) string {
	if blcm := dir.WithExt("blcm"); len(blcm) > 0 {
		return blcm[0]
	}
	for _, name := range dir.WithExt("txt") {
		if !strings.Contains(name, "readme") {
			return name
		}
	}
	manifest := strings.ToLower(s.cfg.ManifestName)
	for _, name := range dir.All() {
		if name != manifest && !strings.Contains(name, "readme") {
			return name
		}
	}
	return ""
}

// Finish reports and removes the records not seen during the run, and
// collects the changed records.
func (s *Sorter) Finish() Result {
	var res Result
	for _, m := range s.cache.Unseen() {
		s.msgs.Noticef("Deleting %s - %s", m.RelFilename, m.Title)
		res.Deleted = append(res.Deleted, m.Summary())
		s.cache.DeleteMod(m.FullFilename)
	}
	if n := s.cache.PruneReadmes(); n > 0 {
		log.Debugf("Dropped %d READMEs no longer present", n)
	}

	for _, m := range s.cache.Mods() {
		if m.Status == modfile.StatusNew || m.Status == modfile.StatusUpdated {
			res.Changed = append(res.Changed, m.Summary())
		}
	}
	res.Messages = s.msgs.Messages()
	res.Total = s.cache.Len()
	res.Dirs = s.dirs
	return res
}

// Walk processes every directory below gameDir (relative to root)
// depth-first in lexical order.
func (s *Sorter) Walk(root, gameDir string) error {
	start := filepath.Join(root, gameDir)
	if _, err := os.Stat(start); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warnf("Game directory %s does not exist, skipping", start)
			return nil
		}
		return fmt.Errorf("error reading game directory %s: %w", start, err)
	}

	return filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error walking %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return fmt.Errorf("error listing %s: %w", path, err)
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() {
				names = append(names, e.Name())
			}
		}
		return s.ProcessDir(root, path, names)
	})
}

// Run walks every configured game directory and finishes the run.
func (s *Sorter) Run() (Result, error) {
	for _, game := range s.cfg.Games {
		log.Infof("Processing %s (%s)", game.Dir, game.Prefix)
		if err := s.Walk(s.cfg.RepoDir, game.Dir); err != nil {
			return Result{}, err
		}
	}
	return s.Finish(), nil
}
