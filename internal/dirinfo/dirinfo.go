package dirinfo

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// UnknownAuthor is reported when a directory sits too shallow in the tree to
// carry an author segment.
const UnknownAuthor = "(unknown)"

// ErrNotFound is returned when a filename is not present in the directory.
var ErrNotFound = errors.New("file not found in directory")

// DirInfo is a case-insensitive snapshot of the files in one directory.
type DirInfo struct {
	RootDir string
	DirPath string
	RelDir  string
	Author  string
	CurPath string

	lowerMapping map[string]string
	names        []string
	extensionMap map[string][]string
	noExtension  []string
	readme       string
}

// New builds a DirInfo for dirPath (which lives under rootDir) from the given
// listing. Names are matched case-insensitively; when two names only differ
// by case the later one wins.
func New(rootDir, dirPath string, filenames []string) *DirInfo {
	d := &DirInfo{
		RootDir:      rootDir,
		DirPath:      dirPath,
		Author:       UnknownAuthor,
		lowerMapping: make(map[string]string, len(filenames)),
		extensionMap: make(map[string][]string),
	}

	d.RelDir = relativeTo(rootDir, dirPath)
	components := strings.Split(filepath.ToSlash(d.RelDir), "/")
	if len(components) > 1 {
		d.Author = components[1]
	}
	d.CurPath = components[len(components)-1]

	for _, name := range filenames {
		lower := strings.ToLower(name)
		if _, dup := d.lowerMapping[lower]; !dup {
			d.names = append(d.names, lower)
			if idx := strings.LastIndex(lower, "."); idx >= 0 {
				ext := lower[idx+1:]
				d.extensionMap[ext] = append(d.extensionMap[ext], lower)
			} else {
				d.noExtension = append(d.noExtension, lower)
			}
		}
		d.lowerMapping[lower] = filepath.Join(dirPath, name)

		// Only one README per directory is expected; if there are several
		// the first in listing order is used.
		if d.readme == "" && strings.Contains(lower, "readme") {
			d.readme = lower
		}
	}
	return d
}

// Has reports whether the directory contains name (case-insensitive).
func (d *DirInfo) Has(name string) bool {
	_, ok := d.lowerMapping[strings.ToLower(name)]
	return ok
}

// Path returns the absolute path for name.
func (d *DirInfo) Path(name string) (string, error) {
	p, ok := d.lowerMapping[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%s in %s: %w", name, d.DirPath, ErrNotFound)
	}
	return p, nil
}

// All returns every lower-cased name in listing order.
func (d *DirInfo) All() []string {
	return d.names
}

// WithExt returns the lower-cased names carrying the given extension.
func (d *DirInfo) WithExt(ext string) []string {
	return d.extensionMap[strings.ToLower(ext)]
}

// NoExt returns the lower-cased names without an extension.
func (d *DirInfo) NoExt() []string {
	return d.noExtension
}

// Readme returns the absolute path of the directory's README, or "" if there
// is none.
func (d *DirInfo) Readme() string {
	if d.readme == "" {
		return ""
	}
	return d.lowerMapping[d.readme]
}

// RelPaths returns the directory and file paths of name relative to the root.
func (d *DirInfo) RelPaths(name string) (relDir, relFile string, err error) {
	full, err := d.Path(name)
	if err != nil {
		return "", "", err
	}
	return d.RelDir, relativeTo(d.RootDir, full), nil
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return ""
	}
	return rel
}
