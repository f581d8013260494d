package modfile

import (
	"slices"

	"go-modcabinet/internal/models"
)

// Summary returns the reportable view of the record.
func (m *ModFile) Summary() models.ModSummary {
	return models.ModSummary{
		FullFilename: m.FullFilename,
		RelPath:      m.RelPath,
		RelFilename:  m.RelFilename,
		Status:       m.Status.String(),
		Title:        m.Title,
		Author:       m.Author,
		ModTime:      m.ModTime(),
		Description:  slices.Clone(m.Desc),
		ReadmeDesc:   slices.Clone(m.ReadmeDesc),
		Categories:   m.Categories(),
		NexusLink:    m.NexusLink,
		Screenshots:  slices.Clone(m.Screenshots),
		Hash:         m.Hash,
	}
}
