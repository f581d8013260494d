package index

import (
	"path/filepath"
	"testing"
	"time"

	"go-modcabinet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaries() []models.ModSummary {
	return []models.ModSummary{
		{
			FullFilename: "/repo/Borderlands 2 mods/Alice/loot.txt",
			RelFilename:  filepath.Join("Borderlands 2 mods", "Alice", "loot.txt"),
			Title:        "Better Loot",
			Author:       "Alice",
			Description:  []string{"Makes legendary drops more common."},
			Categories:   []string{"farming"},
			ModTime:      time.Date(2019, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{
			FullFilename: "/repo/Pre Sequel Mods/Bob/skills.blcm",
			RelFilename:  filepath.Join("Pre Sequel Mods", "Bob", "skills.blcm"),
			Title:        "Skill Rework",
			Author:       "Bob",
			Description:  []string{"Reworks every skill tree."},
			Categories:   []string{"skills"},
		},
	}
}

func testConfig() models.Config {
	return models.Config{Games: []models.Game{{Prefix: "BL2", Dir: "Borderlands 2 mods"}, {Prefix: "TPS", Dir: "Pre Sequel Mods"}}}
}

func TestItemFromSummary(t *testing.T) {
	m := summaries()[0]
	item := ItemFromSummary(testConfig(), m)
	assert.Equal(t, ItemID(m.FullFilename), item.ID)
	assert.Len(t, item.ID, 64)
	assert.Equal(t, "BL2", item.Game)
	assert.Equal(t, "Makes legendary drops more common.", item.Description)

	m.Title = ""
	assert.Equal(t, "loot.txt", ItemFromSummary(testConfig(), m).Title)
}

func TestIndexAndSearch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mods.bleve")
	idx, err := OpenOrCreateIndex(path)
	require.NoError(t, err)

	mods := summaries()
	require.NoError(t, Update(idx, testConfig(), mods, nil))

	res, err := SearchIndex(idx, "legendary")
	require.NoError(t, err)
	require.Equal(t, uint64(1), res.Total)
	assert.Equal(t, ItemID(mods[0].FullFilename), res.Hits[0].ID)

	res, err = SearchIndex(idx, "+author:bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Total)

	require.NoError(t, Update(idx, testConfig(), nil, mods[:1]))
	res, err = SearchIndex(idx, "legendary")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), res.Total)

	require.NoError(t, DeleteItem(idx, mods[1].FullFilename))
	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	require.NoError(t, IndexItem(idx, ItemFromSummary(testConfig(), mods[1])))
	require.NoError(t, idx.Close())

	reopened, err := OpenOrCreateIndex(path)
	require.NoError(t, err)
	count, err = reopened.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
	require.NoError(t, reopened.Close())

	require.NoError(t, DeleteIndex(path))
	assert.NoDirExists(t, path)
}
