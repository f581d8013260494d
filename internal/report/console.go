package report

import (
	"fmt"
	"io"
	"strings"

	"go-modcabinet/internal/sorter"

	"github.com/fatih/color"
)

// WriteConsole prints the changed records of a run followed by its
// diagnostics.
func WriteConsole(w io.Writer, res sorter.Result, colorize bool) error {
	newC := color.New(color.FgGreen, color.Bold)
	updC := color.New(color.FgYellow, color.Bold)
	errC := color.New(color.FgRed)
	warnC := color.New(color.FgYellow)
	noteC := color.New(color.FgCyan)
	dim := color.New(color.Faint)
	for _, c := range []*color.Color{newC, updC, errC, warnC, noteC, dim} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var b strings.Builder
	for _, m := range res.Changed {
		status := m.Status
		if status == "New" {
			status = newC.Sprint(status)
		} else {
			status = updC.Sprint(status)
		}
		fmt.Fprintf(&b, "%s (%s)\n", m.RelFilename, status)
		fmt.Fprintln(&b, m.Title)
		fmt.Fprintln(&b, m.Author)
		fmt.Fprintln(&b, m.ModTime.Format("2006-01-02 15:04:05"))
		writeLines(&b, "Description", m.Description)
		writeLines(&b, "README", m.ReadmeDesc)
		fmt.Fprintf(&b, "Categories: %s\n", strings.Join(m.Categories, ", "))
		if m.NexusLink != "" {
			fmt.Fprintf(&b, "Nexus Link: %s\n", m.NexusLink)
		}
		if len(m.Screenshots) > 0 {
			fmt.Fprintln(&b, "Screenshots:")
			for _, ss := range m.Screenshots {
				fmt.Fprintf(&b, " * %s\n", ss)
			}
		}
		fmt.Fprintln(&b, dim.Sprint("--"))
	}

	if len(res.Messages) > 0 {
		fmt.Fprintln(&b, "Errors encountered during run:")
		for _, msg := range res.Messages {
			switch {
			case strings.HasPrefix(msg, "ERROR"):
				msg = errC.Sprint(msg)
			case strings.HasPrefix(msg, "WARNING"):
				msg = warnC.Sprint(msg)
			case strings.HasPrefix(msg, "NOTICE"):
				msg = noteC.Sprint(msg)
			}
			fmt.Fprintf(&b, " * %s\n", msg)
		}
	} else {
		fmt.Fprintln(&b, "No errors encountered during run.")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeLines(b *strings.Builder, label string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", label)
	for _, l := range lines {
		fmt.Fprintf(b, "  %s\n", l)
	}
}
