package readme

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"go-modcabinet/internal/similarity"

	log "github.com/sirupsen/logrus"
)

// DefaultSection holds any text that appears before the first heading.
const DefaultSection = "(default)"

const maxLineLength = 4 * 1024 * 1024

// Readme is a README split into named sections. Headings may be "#" style,
// "-" style, or text underlined with "===" / "---"; the same rules apply to
// Markdown and plain text.
type Readme struct {
	Filename string
	MTime    int64

	// FirstSection is the first section that received any content. It is
	// the fallback match for single-mod directories.
	FirstSection string

	mapping map[string][]string
	order   []string
}

// New returns an empty Readme containing only the default section.
func New(mtime int64) *Readme {
	return &Readme{
		MTime:   mtime,
		mapping: map[string][]string{DefaultSection: {}},
		order:   []string{DefaultSection},
	}
}

// Load parses the README at path.
func Load(path string, mtime int64) (*Readme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening README %s: %w", path, err)
	}
	defer f.Close()

	r := New(mtime)
	r.Filename = path
	if err := r.Read(f); err != nil {
		return nil, fmt.Errorf("error reading README %s: %w", path, err)
	}
	log.WithField("readme", path).Debugf("Parsed README with %d sections", len(r.order))
	return r, nil
}

// Parse is a convenience wrapper reading a README from r.
func Parse(r io.Reader) (*Readme, error) {
	rm := New(0)
	if err := rm.Read(r); err != nil {
		return nil, err
	}
	return rm, nil
}

// Read parses lines from r into sections.
func (r *Readme) Read(src io.Reader) error {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	prevLine := ""
	cur := DefaultSection
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "#"):
			cur = strings.ToLower(strings.TrimLeft(line, "# \t"))
			r.open(cur)

		case isUnderline(line):
			// An underline turns the line above it into a heading, as long
			// as that line is content we can take back.
			lines := r.mapping[cur]
			if prevLine != "" && len(lines) > 0 && lines[len(lines)-1] == prevLine {
				r.mapping[cur] = lines[:len(lines)-1]
				if r.FirstSection == cur && len(r.mapping[cur]) == 0 {
					r.FirstSection = ""
				}
				cur = strings.ToLower(prevLine)
				r.open(cur)
			} else {
				r.appendLine(cur, line)
			}

		case strings.HasPrefix(line, "-"):
			cur = strings.ToLower(strings.TrimLeft(line, "- \t"))
			r.open(cur)

		default:
			if len(r.mapping[cur]) > 0 || line != "" {
				r.appendLine(cur, line)
			}
		}
		prevLine = line
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	for name, lines := range r.mapping {
		for len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		r.mapping[name] = lines
	}
	return nil
}

// open starts (or restarts) the named section with no lines.
func (r *Readme) open(name string) {
	if _, ok := r.mapping[name]; !ok {
		r.order = append(r.order, name)
	}
	r.mapping[name] = []string{}
}

// appendLine adds line to section. The first section to receive content
// becomes FirstSection, the default section included.
func (r *Readme) appendLine(section, line string) {
	if r.FirstSection == "" {
		r.FirstSection = section
	}
	r.mapping[section] = append(r.mapping[section], line)
}

func isUnderline(line string) bool {
	if len(line) < 3 || (line[0] != '=' && line[0] != '-') {
		return false
	}
	return strings.Trim(line, line[:1]) == ""
}

// Sections returns the section names in the order they first appeared.
func (r *Readme) Sections() []string {
	return slices.Clone(r.order)
}

// Section returns a copy of the named section's lines.
func (r *Readme) Section(name string) ([]string, bool) {
	lines, ok := r.mapping[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(lines), true
}

// Mapping returns a copy of every section keyed by name.
func (r *Readme) Mapping() map[string][]string {
	out := make(map[string][]string, len(r.mapping))
	for k, v := range r.mapping {
		out[k] = slices.Clone(v)
	}
	return out
}

// FindMatching returns the lines of the section that best fits modName.
//
// For a single-mod directory an "overview" section wins, then the first
// section whose name is similar to modName, then the first section with
// content, then the default section. In a directory with several mods only
// a similar section name counts; otherwise nothing is returned, since prose
// attached to the wrong mod is worse than none.
func (r *Readme) FindMatching(modName string, singleMod bool) []string {
	lower := strings.ToLower(modName)
	if singleMod {
		if lines, ok := r.Section("overview"); ok {
			return lines
		}
	}
	for _, section := range r.order {
		if similarity.Matches(lower, section) {
			lines, _ := r.Section(section)
			return lines
		}
	}
	if !singleMod {
		return []string{}
	}
	if r.FirstSection != "" {
		lines, _ := r.Section(r.FirstSection)
		return lines
	}
	lines, _ := r.Section(DefaultSection)
	return lines
}

type serializedReadme struct {
	Filename     string              `json:"f"`
	MTime        int64               `json:"m"`
	Mapping      map[string][]string `json:"d"`
	Order        []string            `json:"o"`
	FirstSection string              `json:"s"`
}

// MarshalJSON implements json.Marshaler.
func (r *Readme) MarshalJSON() ([]byte, error) {
	return json.Marshal(serializedReadme{
		Filename:     r.Filename,
		MTime:        r.MTime,
		Mapping:      r.mapping,
		Order:        r.order,
		FirstSection: r.FirstSection,
	})
}

// Unserialize creates a Readme from its serialized form.
func Unserialize(data []byte) (*Readme, error) {
	var s serializedReadme
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("error unmarshalling README record: %w", err)
	}
	r := New(s.MTime)
	r.Filename = s.Filename
	r.FirstSection = s.FirstSection
	for name, lines := range s.Mapping {
		if lines == nil {
			lines = []string{}
		}
		r.mapping[name] = lines
	}
	// Older snapshots may lack an order; fall back to whatever the map holds.
	seen := map[string]bool{DefaultSection: true}
	for _, name := range s.Order {
		if _, ok := r.mapping[name]; ok && !seen[name] {
			r.order = append(r.order, name)
			seen[name] = true
		}
	}
	for name := range r.mapping {
		if !seen[name] {
			r.order = append(r.order, name)
			seen[name] = true
		}
	}
	return r, nil
}
