package report

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go-modcabinet/internal/helpers"
	"go-modcabinet/internal/models"

	log "github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
)

// IndexPage is the name of the wiki landing page.
const IndexPage = "Home"

// Page is one generated wiki page.
type Page struct {
	Name     string // file name without extension
	Title    string
	Markdown string
}

// Wiki renders one page per configured category, listing its mods sorted by
// title, plus an index page linking to every category.
func Wiki(cfg models.Config, mods []models.ModSummary) []Page {
	byCat := make(map[string][]models.ModSummary)
	for _, m := range mods {
		for _, c := range m.Categories {
			byCat[c] = append(byCat[c], m)
		}
	}

	var pages []Page
	var index strings.Builder
	fmt.Fprintf(&index, "# Mod Cabinet\n\n")
	for _, cat := range cfg.Categories {
		list := byCat[cat.Key]
		sort.SliceStable(list, func(i, j int) bool {
			ti, tj := strings.ToLower(displayTitle(list[i])), strings.ToLower(displayTitle(list[j]))
			if ti != tj {
				return ti < tj
			}
			return list[i].RelFilename < list[j].RelFilename
		})

		name := helpers.ConvertToSlug(cat.Label)
		fmt.Fprintf(&index, "* [%s](%s) (%d)\n", cat.Label, name, len(list))
		pages = append(pages, Page{
			Name:     name,
			Title:    cat.Label,
			Markdown: categoryPage(cfg, cat.Label, list),
		})
	}
	pages = append(pages, Page{Name: IndexPage, Title: "Mod Cabinet", Markdown: index.String()})
	return pages
}

func categoryPage(cfg models.Config, label string, mods []models.ModSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", label)
	if len(mods) == 0 {
		b.WriteString("_No mods in this category yet._\n")
		return b.String()
	}
	for _, m := range mods {
		fmt.Fprintf(&b, "## %s\n\n", displayTitle(m))
		fmt.Fprintf(&b, "* **Author:** %s\n", m.Author)
		if game := gameFor(cfg, m.RelFilename); game != "" {
			fmt.Fprintf(&b, "* **Game:** %s\n", game)
		}
		fmt.Fprintf(&b, "* **File:** `%s`\n", filepath.ToSlash(m.RelFilename))
		fmt.Fprintf(&b, "* **Updated:** %s\n", m.ModTime.Format("2006-01-02"))
		if m.NexusLink != "" {
			fmt.Fprintf(&b, "* **Nexus:** <%s>\n", m.NexusLink)
		}
		b.WriteString("\n")

		desc := m.ReadmeDesc
		if len(desc) == 0 {
			desc = m.Description
		}
		for _, line := range desc {
			fmt.Fprintf(&b, "> %s\n", line)
		}
		if len(desc) > 0 {
			b.WriteString("\n")
		}

		for i, ss := range m.Screenshots {
			fmt.Fprintf(&b, "* [Screenshot %d](%s)\n", i+1, ss)
		}
		if len(m.Screenshots) > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func displayTitle(m models.ModSummary) string {
	if m.Title != "" {
		return m.Title
	}
	return filepath.Base(m.RelFilename)
}

// gameFor returns the prefix of the game directory holding rel.
func gameFor(cfg models.Config, rel string) string {
	first := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	for _, g := range cfg.Games {
		if g.Dir == first {
			return g.Prefix
		}
	}
	return ""
}

// RenderHTML converts Markdown to HTML.
func RenderHTML(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("error rendering markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteWiki writes every page to dir as Markdown, and as HTML as well when
// withHTML is set.
func WriteWiki(dir string, pages []Page, withHTML bool) error {
	if !helpers.CheckAndMakeDir(dir) {
		return fmt.Errorf("could not create wiki directory %s", dir)
	}
	for _, p := range pages {
		mdPath := filepath.Join(dir, p.Name+".md")
		if err := os.WriteFile(mdPath, []byte(p.Markdown), 0644); err != nil {
			return fmt.Errorf("error writing %s: %w", mdPath, err)
		}
		if !withHTML {
			continue
		}
		body, err := RenderHTML(p.Markdown)
		if err != nil {
			return err
		}
		var doc bytes.Buffer
		fmt.Fprintf(&doc, "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n", html.EscapeString(p.Title))
		doc.Write(body)
		doc.WriteString("</body>\n</html>\n")
		htmlPath := filepath.Join(dir, p.Name+".html")
		if err := os.WriteFile(htmlPath, doc.Bytes(), 0644); err != nil {
			return fmt.Errorf("error writing %s: %w", htmlPath, err)
		}
	}
	log.Infof("Wrote %d wiki pages to %s", len(pages), dir)
	return nil
}
