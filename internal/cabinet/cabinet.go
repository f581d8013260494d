package cabinet

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"go-modcabinet/internal/diag"
)

// maxLineLength caps a single manifest line.
const maxLineLength = 4 * 1024 * 1024

// CategorySet is the set of category keys a manifest may use.
type CategorySet map[string]struct{}

// NewCategorySet builds a CategorySet from keys.
func NewCategorySet(keys ...string) CategorySet {
	s := make(CategorySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key is a valid category.
func (s CategorySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// ModInfo is one mod described by a manifest. Filename is empty for the
// implicit entry of a single-mod manifest.
type ModInfo struct {
	Filename   string
	Categories []string
	URLs       []string
}

// AddURL attaches a link to the mod.
func (m *ModInfo) AddURL(url string) {
	m.URLs = append(m.URLs, url)
}

// CabinetInfo is a parsed cabinet.info manifest.
//
// A manifest is either multi-mod, with one "filename: cat1, cat2" line per
// mod, or single-mod, with a bare category line describing the only mod in
// the directory. URL lines attach to the most recent mod. Problems are
// reported to the message log and never abort parsing.
type CabinetInfo struct {
	RelFilename string

	msgs      *diag.Log
	valid     CategorySet
	mods      map[string]*ModInfo
	order     []string
	singleMod bool
}

// New returns an empty CabinetInfo. relFilename is the name used in
// messages.
func New(relFilename string, msgs *diag.Log, valid CategorySet) *CabinetInfo {
	return &CabinetInfo{
		RelFilename: relFilename,
		msgs:        msgs,
		valid:       valid,
		mods:        make(map[string]*ModInfo),
	}
}

// LoadFile parses the manifest at path.
func (c *CabinetInfo) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", path, err)
	}
	defer f.Close()
	if err := c.Load(f); err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	return nil
}

// Load parses manifest lines from r.
func (c *CabinetInfo) Load(r io.Reader) error {
	prevModfile := ""
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		line := scanner.Text()
		stripped := strings.TrimSpace(line)
		switch {
		case stripped == "" || strings.HasPrefix(line, "#"):
			continue

		case strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://"):
			if mod, ok := c.mods[prevModfile]; ok {
				mod.AddURL(stripped)
			} else {
				c.msgs.Errorf("Did not find previous modfile but got URL, in %s", c.RelFilename)
			}

		case strings.Contains(line, ": "):
			if c.singleMod {
				c.msgs.Errorf("Unknown line \"%s\" found in single-mod info file %s", stripped, c.RelFilename)
				continue
			}
			parts := strings.SplitN(line, ": ", 2)
			if c.Register(parts[0], parts[1]) {
				prevModfile = parts[0]
			}

		default:
			if len(c.mods) > 0 {
				c.msgs.Errorf("Unknown line \"%s\" inside %s", stripped, c.RelFilename)
				continue
			}
			c.singleMod = true
			if c.Register("", stripped) {
				prevModfile = ""
			}
		}
	}
	return scanner.Err()
}

// Register adds a mod with a comma-separated category list. An empty name
// registers the unnamed single-mod entry. Invalid categories are warned
// about and skipped; if none are left, or the name is already registered,
// the mod is not added and false is returned.
func (c *CabinetInfo) Register(name, categoryText string) bool {
	if _, dup := c.mods[name]; dup {
		c.msgs.Errorf("%s specified twice inside %s", name, c.RelFilename)
		return false
	}

	var realCats []string
	for _, cat := range strings.Split(strings.ToLower(categoryText), ",") {
		cat = strings.TrimSpace(cat)
		if c.valid.Has(cat) {
			realCats = append(realCats, cat)
		} else {
			c.msgs.Warnf("Invalid category \"%s\" in %s", cat, c.RelFilename)
		}
	}

	if len(realCats) == 0 {
		report := name
		if report == "" {
			report = "the mod"
		}
		c.msgs.Errorf("No categories found for %s in %s", report, c.RelFilename)
		return false
	}

	c.mods[name] = &ModInfo{Filename: name, Categories: realCats}
	c.order = append(c.order, name)
	return true
}

// SingleMod reports whether this is a single-mod manifest.
func (c *CabinetInfo) SingleMod() bool {
	return c.singleMod
}

// Get returns the mod registered under name.
func (c *CabinetInfo) Get(name string) (*ModInfo, bool) {
	m, ok := c.mods[name]
	return m, ok
}

// Has reports whether name is registered.
func (c *CabinetInfo) Has(name string) bool {
	_, ok := c.mods[name]
	return ok
}

// Len returns the number of registered mods.
func (c *CabinetInfo) Len() int {
	return len(c.mods)
}

// ModList returns the registered mods in registration order.
func (c *CabinetInfo) ModList() []*ModInfo {
	out := make([]*ModInfo, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.mods[name])
	}
	return out
}
