package modfile

import (
	"encoding/json"
	"fmt"
)

// serializedModFile is the on-disk form of a ModFile. Short keys keep the
// compressed cache small.
type serializedModFile struct {
	FullFilename string   `json:"ff"`
	RelPath      string   `json:"rp"`
	RelFilename  string   `json:"rf"`
	Author       string   `json:"a"`
	MTime        int64    `json:"m"`
	Title        string   `json:"t"`
	Desc         []string `json:"d"`
	ReadmeDesc   []string `json:"r"`
	NexusLink    string   `json:"n"`
	Screenshots  []string `json:"s"`
	Categories   []string `json:"c"`
	Hash         string   `json:"h,omitempty"`
}

// MarshalJSON implements json.Marshaler. Status and Seen are per-run state
// and are not stored.
func (m *ModFile) MarshalJSON() ([]byte, error) {
	return json.Marshal(serializedModFile{
		FullFilename: m.FullFilename,
		RelPath:      m.RelPath,
		RelFilename:  m.RelFilename,
		Author:       m.Author,
		MTime:        m.MTime,
		Title:        m.Title,
		Desc:         m.Desc,
		ReadmeDesc:   m.ReadmeDesc,
		NexusLink:    m.NexusLink,
		Screenshots:  m.Screenshots,
		Categories:   m.Categories(),
		Hash:         m.Hash,
	})
}

// Unserialize creates a cached record from its serialized form.
func Unserialize(data []byte) (*ModFile, error) {
	var s serializedModFile
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("error unmarshalling mod record: %w", err)
	}
	m := New(s.MTime, StatusCached)
	m.FullFilename = s.FullFilename
	m.RelPath = s.RelPath
	m.RelFilename = s.RelFilename
	m.Author = s.Author
	m.Title = s.Title
	m.Desc = s.Desc
	m.ReadmeDesc = s.ReadmeDesc
	m.NexusLink = s.NexusLink
	m.Screenshots = s.Screenshots
	m.Hash = s.Hash
	for _, c := range s.Categories {
		m.categories[c] = struct{}{}
	}
	return m, nil
}
