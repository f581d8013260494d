package modfile

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"go-modcabinet/internal/similarity"

	"golang.org/x/text/encoding/charmap"
)

// Dialect identifies which of the recognized mod file formats a file uses.
type Dialect int

const (
	// DialectFreeform is plain text with commands after a free-text header.
	DialectFreeform Dialect = iota
	// DialectBLCMM is the XML-ish format written by the BLCMM mod manager.
	DialectBLCMM
	// DialectFilterTool is the bracketed "#<Category>" format from FilterTool.
	DialectFilterTool
)

func (d Dialect) String() string {
	switch d {
	case DialectBLCMM:
		return "BLCMM"
	case DialectFilterTool:
		return "FilterTool"
	default:
		return "Freeform"
	}
}

const maxLineLength = 4 * 1024 * 1024

var (
	blcmmCategoryRe = regexp.MustCompile(`<category name="(.*)">`)
	blcmmCommentRe  = regexp.MustCompile(`<comment>(.*)</comment>`)
	ftCategoryRe    = regexp.MustCompile(`#<(.*)>`)
)

// Content is the title and description pulled out of a single mod file.
type Content struct {
	Title string
	Desc  []string
}

// ParseContent reads a mod file from r and extracts its title and
// description. filename is only used to derive a fallback title for
// freeform files. The stream is decoded as ISO-8859-1, which accepts any
// byte sequence.
func ParseContent(r io.Reader, filename string) (Content, error) {
	lines, err := readLines(charmap.ISO8859_1.NewDecoder().Reader(r))
	if err != nil {
		return Content{}, fmt.Errorf("error reading %s: %w", filename, err)
	}

	var c Content
	dialect, body := Sniff(lines)
	switch dialect {
	case DialectBLCMM:
		c.loadBLCMM(body)
	case DialectFilterTool:
		c.loadFilterTool(body)
	default:
		c.loadFreeform(body, fallbackTitle(filename))
	}
	c.trimDesc()
	return c, nil
}

// Sniff classifies lines by their first non-blank line and returns the lines
// the dialect parser should see. BLCMM parsing resumes after the sniffed line;
// the others start over.
func Sniff(lines []string) (Dialect, []string) {
	idx := 0
	for idx < len(lines) && strings.TrimSpace(lines[idx]) == "" {
		idx++
	}
	if idx == len(lines) {
		return DialectFreeform, lines
	}
	first := lines[idx]
	switch {
	case strings.Contains(first, "<BLCMM"):
		return DialectBLCMM, lines[idx+1:]
	case strings.HasPrefix(first, "#<"):
		return DialectFilterTool, lines
	default:
		return DialectFreeform, lines
	}
}

// loadBLCMM takes the first category name as the title and then the first
// contiguous run of comments as the description. Anything other than a
// comment inside that run ends extraction.
func (c *Content) loadBLCMM(lines []string) {
	findingMainCat := true
	readingComments := false
	for _, line := range lines {
		switch {
		case findingMainCat:
			if m := blcmmCategoryRe.FindStringSubmatch(line); m != nil {
				c.Title = m[1]
				findingMainCat = false
			}
		case readingComments:
			m := blcmmCommentRe.FindStringSubmatch(line)
			if m == nil {
				return
			}
			c.AddCommentLine(m[1], "")
		default:
			if m := blcmmCommentRe.FindStringSubmatch(line); m != nil {
				readingComments = true
				c.AddCommentLine(m[1], "")
			}
		}
	}
}

// loadFilterTool takes the first bracket marker as the title; plain lines
// after it are description until a nested category, a hotfix or a set
// command. Nested categories with "description" in the name are read
// through, since that is a common layout.
func (c *Content) loadFilterTool(lines []string) {
	findingMainCat := true
	for _, line := range lines {
		if findingMainCat {
			if m := ftCategoryRe.FindStringSubmatch(line); m != nil {
				c.Title = m[1]
				findingMainCat = false
			}
			continue
		}

		stripped := strings.TrimSpace(line)
		if !strings.Contains(line, "#<hotfix>") {
			if m := ftCategoryRe.FindStringSubmatch(line); m != nil {
				if !strings.Contains(strings.ToLower(m[1]), "description") {
					return
				}
				continue
			}
		}
		switch {
		case strings.HasPrefix(stripped, "set "):
			return
		case strings.HasPrefix(stripped, "#<hotfix>"):
			return
		case stripped != "":
			c.AddCommentLine(line, "")
		}
	}
}

// loadFreeform treats everything up to the first set command as comments.
// The title defaults to the filename, unless the first comment line is close
// enough to it.
func (c *Content) loadFreeform(lines []string, tempTitle string) {
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "set ") {
			break
		}
		c.AddCommentLine(line, tempTitle)
	}
	if c.Title == "" {
		c.Title = tempTitle
	}
}

// AddCommentLine cleans up a raw comment line and appends it to the
// description. Leading blank lines, repeated blank lines and an opening
// ASCII-art banner are dropped. When matchTitle is set and no title is known
// yet, a first line similar enough to matchTitle becomes the title instead.
func (c *Content) AddCommentLine(commentLine, matchTitle string) {
	line := strings.Trim(commentLine, "/#\n\r\t ")

	if line == "" && len(c.Desc) == 0 {
		return
	}
	if line == "" && c.Desc[len(c.Desc)-1] == "" {
		return
	}
	if len(c.Desc) == 0 && strings.Trim(line, "_/\\.:|#~ \t") == "" {
		return
	}

	if c.Title == "" && matchTitle != "" && len(c.Desc) == 0 {
		if similarity.Matches(strings.ToLower(line), strings.ToLower(matchTitle)) {
			c.Title = line
			return
		}
	}

	c.Desc = append(c.Desc, line)
}

func (c *Content) trimDesc() {
	for len(c.Desc) > 0 && c.Desc[len(c.Desc)-1] == "" {
		c.Desc = c.Desc[:len(c.Desc)-1]
	}
}

func fallbackTitle(filename string) string {
	base := filepath.Base(filename)
	if idx := strings.LastIndex(base, "."); idx >= 0 {
		return base[:idx]
	}
	return base
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
