package cache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-modcabinet/internal/database"
	"go-modcabinet/internal/dirinfo"
	"go-modcabinet/internal/modfile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	root string
	dir  string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "Borderlands 2 mods", "Author")
	require.NoError(t, os.MkdirAll(dir, 0755))
	return fixture{root: root, dir: dir}
}

func (f fixture) write(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func (f fixture) dirInfo(names ...string) *dirinfo.DirInfo {
	return dirinfo.New(f.root, f.dir, names)
}

func openDB(t *testing.T, path string) *database.DB {
	t.Helper()
	db, err := database.Open(path)
	require.NoError(t, err)
	return db
}

func TestLoadReusesByMTime(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "mod.txt", "#<Mod>\n\nFirst.\n\nset a b c\n")
	c := New()

	m, err := c.Load(f.dirInfo("mod.txt"), "mod.txt")
	require.NoError(t, err)
	assert.Equal(t, modfile.StatusNew, m.Status)
	assert.Equal(t, "Mod", m.Title)

	again, err := c.Load(f.dirInfo("mod.txt"), "MOD.TXT")
	require.NoError(t, err)
	assert.Same(t, m, again)

	f.write(t, "mod.txt", "#<Mod Renamed>\n\nSecond.\n\nset a b c\n")
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	updated, err := c.Load(f.dirInfo("mod.txt"), "mod.txt")
	require.NoError(t, err)
	assert.NotSame(t, m, updated)
	assert.Equal(t, modfile.StatusUpdated, updated.Status)
	assert.Equal(t, "Mod Renamed", updated.Title)
	assert.Equal(t, 1, c.Len())
}

func TestLoadMissing(t *testing.T) {
	f := newFixture(t)
	c := New()
	_, err := c.Load(f.dirInfo("mod.txt"), "other.txt")
	assert.True(t, errors.Is(err, dirinfo.ErrNotFound))

	_, err = c.Load(f.dirInfo("mod.txt"), "mod.txt")
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestLoadReadme(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "README.md", "# Overview\nGreat mod.\n")
	c := New()

	r, err := c.LoadReadme(path)
	require.NoError(t, err)
	lines, ok := r.Section("overview")
	require.True(t, ok)
	assert.Equal(t, []string{"Great mod."}, lines)

	again, err := c.LoadReadme(path)
	require.NoError(t, err)
	assert.Same(t, r, again)
	assert.Equal(t, 0, c.PruneReadmes())
}

func TestSaveAndOpen(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.txt", "#<Alpha>\n\nAlpha desc.\n\nset a b c\n")
	f.write(t, "b.txt", "#<Beta>\n\nBeta desc.\n\nset a b c\n")
	readmePath := f.write(t, "readme.txt", "Alpha\n=====\nFrom the readme.\n")
	d := f.dirInfo("a.txt", "b.txt", "readme.txt")

	c := New()
	a, err := c.Load(d, "a.txt")
	require.NoError(t, err)
	a.SetCategories([]string{"qol", "gear"})
	a.SetURLs([]string{"https://www.nexusmods.com/mods/1", "https://img.example/1.png"}, "nexusmods.com")
	a.UpdateReadmeDesc([]string{"From the readme."})
	_, err = c.Load(d, "b.txt")
	require.NoError(t, err)
	_, err = c.LoadReadme(readmePath)
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "cache", "modcache.db")
	db := openDB(t, dbPath)
	require.NoError(t, c.Save(db))
	require.NoError(t, db.Close())

	db = openDB(t, dbPath)
	defer db.Close()
	reopened, err := Open(db)
	require.NoError(t, err)
	assert.Equal(t, c.ModPaths(), reopened.ModPaths())
	assert.Equal(t, 1, reopened.ReadmeCount())

	got, ok := reopened.Mod(a.FullFilename)
	require.True(t, ok)
	assert.Equal(t, modfile.StatusCached, got.Status)
	assert.False(t, got.Seen)
	assert.Equal(t, a.Title, got.Title)
	assert.Equal(t, a.Desc, got.Desc)
	assert.ElementsMatch(t, a.Categories(), got.Categories())
	assert.Equal(t, a.NexusLink, got.NexusLink)
	assert.Equal(t, a.Screenshots, got.Screenshots)
	assert.Equal(t, a.ReadmeDesc, got.ReadmeDesc)
	assert.Equal(t, a.MTime, got.MTime)
	assert.Len(t, reopened.Unseen(), 2)

	// Deleting a record and saving again removes its key.
	reopened.DeleteMod(a.FullFilename)
	require.NoError(t, reopened.Save(db))
	assert.False(t, db.Has(ModKey(a.FullFilename)))
	assert.Equal(t, 1, reopened.ReadmeCount())
}

func TestCachedRecordSurvivesReload(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.txt", "#<Alpha>\n\nAlpha desc.\n\nset a b c\n")
	d := f.dirInfo("a.txt")

	c := New()
	_, err := c.Load(d, "a.txt")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.WriteSnapshot(&buf))

	restored := New()
	require.NoError(t, restored.ReadSnapshot(&buf))

	m, err := restored.Load(d, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, modfile.StatusCached, m.Status)
	assert.False(t, m.Seen)
}

func TestSnapshotRoundTrip(t *testing.T) {
	c := New()
	m := modfile.New(123456789, modfile.StatusNew)
	m.FullFilename = "/repo/BL2/Author/mod.blcm"
	m.RelFilename = "BL2/Author/mod.blcm"
	m.Title = "Mod"
	m.Desc = []string{"one", "", "two"}
	m.SetCategories([]string{"skills", "qol"})
	c.mods[m.FullFilename] = m

	var buf bytes.Buffer
	require.NoError(t, c.WriteSnapshot(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0x1f, 0x8b}))

	restored := New()
	require.NoError(t, restored.ReadSnapshot(&buf))
	got, ok := restored.Mod(m.FullFilename)
	require.True(t, ok)
	assert.Equal(t, m.Desc, got.Desc)
	assert.ElementsMatch(t, []string{"qol", "skills"}, got.Categories())
	assert.Equal(t, int64(123456789), got.MTime)

	assert.Error(t, New().ReadSnapshot(bytes.NewReader([]byte("not gzip"))))
}

func TestLock(t *testing.T) {
	path := LockPath(filepath.Join(t.TempDir(), "cache", "modcache.db"))
	assert.Equal(t, ".lock", filepath.Ext(path))

	fl, err := Lock(path)
	require.NoError(t, err)

	_, err = Lock(path)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, fl.Unlock())
	fl2, err := Lock(path)
	require.NoError(t, err)
	require.NoError(t, fl2.Unlock())
}
