package cache

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"go-modcabinet/internal/database"
	"go-modcabinet/internal/dirinfo"
	"go-modcabinet/internal/modfile"
	"go-modcabinet/internal/readme"

	log "github.com/sirupsen/logrus"
)

// Key prefixes for the two collections stored in the database.
const (
	ModPrefix    = "mods/"
	ReadmePrefix = "readmes/"
)

// Cache holds the mod records and parsed READMEs of the catalog, keyed by
// absolute path. It is owned by a single run and is not safe for concurrent
// use.
type Cache struct {
	mods        map[string]*modfile.ModFile
	readmes     map[string]*readme.Readme
	readmesSeen map[string]bool
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		mods:        make(map[string]*modfile.ModFile),
		readmes:     make(map[string]*readme.Readme),
		readmesSeen: make(map[string]bool),
	}
}

// Open loads both collections from db. Every loaded mod record starts out
// Cached and unseen.
func Open(db *database.DB) (*Cache, error) {
	c := New()
	err := db.Fold(func(key []byte, value []byte) error {
		k := string(key)
		switch {
		case strings.HasPrefix(k, ModPrefix):
			m, err := modfile.Unserialize(value)
			if err != nil {
				log.WithError(err).Warnf("Skipping unreadable mod record %s", k)
				return nil
			}
			c.mods[strings.TrimPrefix(k, ModPrefix)] = m
		case strings.HasPrefix(k, ReadmePrefix):
			r, err := readme.Unserialize(value)
			if err != nil {
				log.WithError(err).Warnf("Skipping unreadable README record %s", k)
				return nil
			}
			c.readmes[strings.TrimPrefix(k, ReadmePrefix)] = r
		default:
			log.Debugf("Ignoring unknown cache key %s", k)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error reading cache database: %w", err)
	}
	log.Infof("Loaded %d mod records and %d READMEs from cache", len(c.mods), len(c.readmes))
	return c, nil
}

// Load returns the record for filename in dir. The file is parsed only when
// it is not cached yet (New) or its mtime differs from the cached one
// (Updated); otherwise the cached record is returned as-is.
func (c *Cache) Load(dir *dirinfo.DirInfo, filename string) (*modfile.ModFile, error) {
	fullFilename, err := dir.Path(filename)
	if err != nil {
		return nil, err
	}
	mtime, err := statMTime(fullFilename)
	if err != nil {
		return nil, err
	}

	cached, ok := c.mods[fullFilename]
	if ok && cached.MTime == mtime {
		log.WithField("file", fullFilename).Debug("Using cached mod record")
		return cached, nil
	}

	status := modfile.StatusNew
	if ok {
		status = modfile.StatusUpdated
	}
	m, err := modfile.Load(dir, filename, mtime, status)
	if err != nil {
		return nil, err
	}
	c.mods[fullFilename] = m
	return m, nil
}

// LoadReadme returns the parsed README at path, re-parsing only when its
// mtime changed.
func (c *Cache) LoadReadme(path string) (*readme.Readme, error) {
	mtime, err := statMTime(path)
	if err != nil {
		return nil, err
	}
	c.readmesSeen[path] = true

	if cached, ok := c.readmes[path]; ok && cached.MTime == mtime {
		return cached, nil
	}
	r, err := readme.Load(path, mtime)
	if err != nil {
		return nil, err
	}
	c.readmes[path] = r
	return r, nil
}

// Mods returns every mod record sorted by path.
func (c *Cache) Mods() []*modfile.ModFile {
	out := make([]*modfile.ModFile, 0, len(c.mods))
	for _, path := range c.ModPaths() {
		out = append(out, c.mods[path])
	}
	return out
}

// ModPaths returns the sorted keys of the mod collection.
func (c *Cache) ModPaths() []string {
	paths := make([]string, 0, len(c.mods))
	for p := range c.mods {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (c *Cache) Mod(path string) (*modfile.ModFile, bool) {
	m, ok := c.mods[path]
	return m, ok
}

func (c *Cache) HasMod(path string) bool {
	_, ok := c.mods[path]
	return ok
}

func (c *Cache) DeleteMod(path string) {
	delete(c.mods, path)
}

// Len returns the number of mod records.
func (c *Cache) Len() int {
	return len(c.mods)
}

// Readme returns the cached README for path.
func (c *Cache) Readme(path string) (*readme.Readme, bool) {
	r, ok := c.readmes[path]
	return r, ok
}

// ReadmeCount returns the number of cached READMEs.
func (c *Cache) ReadmeCount() int {
	return len(c.readmes)
}

// Unseen returns the mod records not touched during this run, sorted by path.
func (c *Cache) Unseen() []*modfile.ModFile {
	var out []*modfile.ModFile
	for _, m := range c.Mods() {
		if !m.Seen {
			out = append(out, m)
		}
	}
	return out
}

// PruneReadmes drops READMEs that were not loaded during this run and
// returns how many were removed.
func (c *Cache) PruneReadmes() int {
	removed := 0
	for path := range c.readmes {
		if !c.readmesSeen[path] {
			delete(c.readmes, path)
			removed++
		}
	}
	return removed
}

// Save writes both collections to db and removes keys for records that no
// longer exist.
func (c *Cache) Save(db *database.DB) error {
	live := make(map[string]bool, len(c.mods)+len(c.readmes))

	for path, m := range c.mods {
		data, err := m.MarshalJSON()
		if err != nil {
			return fmt.Errorf("error serializing mod record %s: %w", path, err)
		}
		key := string(ModKey(path))
		if err := db.Put([]byte(key), data); err != nil {
			return err
		}
		live[key] = true
	}
	for path, r := range c.readmes {
		data, err := r.MarshalJSON()
		if err != nil {
			return fmt.Errorf("error serializing README record %s: %w", path, err)
		}
		key := ReadmePrefix + path
		if err := db.Put([]byte(key), data); err != nil {
			return err
		}
		live[key] = true
	}

	removed := 0
	for _, prefix := range []string{ModPrefix, ReadmePrefix} {
		keys, err := db.KeysWithPrefix([]byte(prefix))
		if err != nil {
			return fmt.Errorf("error listing cache keys: %w", err)
		}
		for _, key := range keys {
			if live[string(key)] {
				continue
			}
			if err := db.Delete(key); err != nil && !errors.Is(err, database.ErrNotFound) {
				return err
			}
			removed++
		}
	}

	if err := db.Sync(); err != nil {
		return fmt.Errorf("error syncing cache database: %w", err)
	}
	log.Infof("Saved %d mod records and %d READMEs to cache (%d stale keys removed)", len(c.mods), len(c.readmes), removed)
	return nil
}

// ModKey returns the database key for a mod path.
func ModKey(path string) []byte {
	return []byte(ModPrefix + path)
}

func statMTime(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("error reading modification time of %s: %w", path, err)
	}
	return info.ModTime().UnixNano(), nil
}

// BeginRun clears the per-run seen flags so that a cache can be reused for
// another run in the same process.
func (c *Cache) BeginRun() {
	for _, m := range c.mods {
		m.Seen = false
	}
	c.readmesSeen = make(map[string]bool)
}
