package modfile

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"
	"time"

	"go-modcabinet/internal/dirinfo"
	"go-modcabinet/internal/helpers"

	log "github.com/sirupsen/logrus"
)

// Status describes how a record changed relative to the previous run.
type Status int

const (
	StatusUnknown Status = iota
	StatusCached
	StatusNew
	StatusUpdated
)

func (s Status) String() string {
	switch s {
	case StatusCached:
		return "Cached"
	case StatusNew:
		return "New"
	case StatusUpdated:
		return "Updated"
	default:
		return "Unknown"
	}
}

// ModFile is the catalog record for one mod file.
type ModFile struct {
	Content

	Status Status
	// Seen is set whenever the record is touched during a run. Records that
	// are never seen are deleted at the end of the run.
	Seen bool

	FullFilename string
	RelPath      string
	RelFilename  string
	Author       string
	MTime        int64 // Modification time in Unix nanoseconds
	Hash         string

	ReadmeDesc  []string
	NexusLink   string
	Screenshots []string
	categories  map[string]struct{}
}

// New returns an empty record with the given mtime and status. It is the
// starting point for both parsing and deserializing.
func New(mtime int64, status Status) *ModFile {
	return &ModFile{
		Status:     status,
		MTime:      mtime,
		categories: make(map[string]struct{}),
	}
}

// Load parses the named file from dir into a new record.
func Load(dir *dirinfo.DirInfo, filename string, mtime int64, status Status) (*ModFile, error) {
	m := New(mtime, status)
	m.Seen = true

	fullFilename, err := dir.Path(filename)
	if err != nil {
		return nil, err
	}
	m.FullFilename = fullFilename
	if m.RelPath, m.RelFilename, err = dir.RelPaths(filename); err != nil {
		return nil, err
	}
	m.Author = dir.Author

	data, err := os.ReadFile(fullFilename)
	if err != nil {
		return nil, fmt.Errorf("error reading mod file %s: %w", fullFilename, err)
	}
	m.Hash = helpers.HashBytes(data)

	if m.Content, err = ParseContent(bytes.NewReader(data), fullFilename); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"file":   m.RelFilename,
		"status": m.Status,
	}).Debugf("Parsed mod file, title %q", m.Title)
	return m, nil
}

// ModTime returns the modification time as a time.Time.
func (m *ModFile) ModTime() time.Time {
	return time.Unix(0, m.MTime)
}

// Categories returns the category set as a sorted slice.
func (m *ModFile) Categories() []string {
	out := make([]string, 0, len(m.categories))
	for c := range m.categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// HasCategory reports whether the record is tagged with cat.
func (m *ModFile) HasCategory(cat string) bool {
	_, ok := m.categories[cat]
	return ok
}

// markUpdated flags the record as updated unless it is brand new this run.
func (m *ModFile) markUpdated() {
	if m.Status != StatusNew {
		m.Status = StatusUpdated
	}
}

// SetCategories replaces the category set, updating the status if the set
// changed.
func (m *ModFile) SetCategories(categories []string) {
	m.Seen = true
	newCats := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		newCats[c] = struct{}{}
	}
	if !sameSet(newCats, m.categories) {
		m.markUpdated()
		m.categories = newCats
	}
}

// SetURLs sorts urls into the nexus link (the first one on nexusDomain) and
// screenshots (everything else), updating the status if either changed.
func (m *ModFile) SetURLs(urls []string, nexusDomain string) {
	m.Seen = true
	nexusLink := ""
	var screenshots []string
	for _, url := range urls {
		if nexusLink == "" && strings.Contains(url, nexusDomain) {
			nexusLink = url
		} else {
			screenshots = append(screenshots, url)
		}
	}
	if nexusLink != m.NexusLink || !slices.Equal(screenshots, m.Screenshots) {
		m.markUpdated()
	}
	m.NexusLink = nexusLink
	m.Screenshots = screenshots
}

// UpdateReadmeDesc replaces the README-sourced description.
func (m *ModFile) UpdateReadmeDesc(desc []string) {
	m.Seen = true
	if !slices.Equal(desc, m.ReadmeDesc) {
		m.markUpdated()
	}
	m.ReadmeDesc = slices.Clone(desc)
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
