package cabinet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-modcabinet/internal/diag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInfo() (*CabinetInfo, *diag.Log) {
	msgs := diag.New()
	return New("cabinet.info", msgs, NewCategorySet("cat1", "cat2")), msgs
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name     string
		cats     string
		wantCats []string
	}{
		{"Single cat", "cat1", []string{"cat1"}},
		{"Two cats", "cat1, cat2", []string{"cat1", "cat2"}},
		{"Two cats strange whitespace", "   cat1,   cat2 ", []string{"cat1", "cat2"}},
		{"Upper case", "CAT1,Cat2", []string{"cat1", "cat2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, msgs := newInfo()
			assert.True(t, info.Register("xyzzy", tt.cats))
			require.True(t, info.Has("xyzzy"))
			mod, _ := info.Get("xyzzy")
			assert.Empty(t, mod.URLs)
			assert.Equal(t, tt.wantCats, mod.Categories)
			assert.Equal(t, 0, msgs.Len())
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	info, msgs := newInfo()
	assert.True(t, info.Register("xyzzy", "cat1"))
	assert.False(t, info.Register("xyzzy", "cat2"))
	require.Equal(t, 1, msgs.Len())
	assert.Contains(t, msgs.Messages()[0], "specified twice")
	mod, _ := info.Get("xyzzy")
	assert.Equal(t, []string{"cat1"}, mod.Categories)
}

func TestRegisterInvalidCategoryNoValid(t *testing.T) {
	info, msgs := newInfo()
	assert.False(t, info.Register("xyzzy", "cat3"))
	assert.False(t, info.Has("xyzzy"))
	require.Equal(t, 2, msgs.Len())
	assert.Contains(t, msgs.Messages()[0], "Invalid category")
	assert.True(t, strings.HasPrefix(msgs.Messages()[0], "WARNING"))
	assert.Contains(t, msgs.Messages()[1], "No categories")
	assert.Contains(t, msgs.Messages()[1], "xyzzy")
}

func TestRegisterInvalidCategoryOneValid(t *testing.T) {
	info, msgs := newInfo()
	assert.True(t, info.Register("xyzzy", "cat1, cat3"))
	require.Equal(t, 1, msgs.Len())
	assert.Contains(t, msgs.Messages()[0], "Invalid category")
	mod, _ := info.Get("xyzzy")
	assert.Equal(t, []string{"cat1"}, mod.Categories)
}

func TestRegisterNoNameNoCategories(t *testing.T) {
	msgs := diag.New()
	info := New("cabinet.info", msgs, NewCategorySet())
	assert.False(t, info.Register("", "cat3"))
	require.Equal(t, 2, msgs.Len())
	assert.Contains(t, msgs.Messages()[1], "the mod")
}

func TestModList(t *testing.T) {
	info, _ := newInfo()
	assert.True(t, info.Register("b.txt", "cat1"))
	assert.True(t, info.Register("a.txt", "cat2"))
	list := info.ModList()
	require.Len(t, list, 2)
	assert.Equal(t, "b.txt", list[0].Filename)
	assert.Equal(t, "a.txt", list[1].Filename)
	assert.Equal(t, 2, info.Len())
}

func load(t *testing.T, body string) (*CabinetInfo, *diag.Log) {
	t.Helper()
	info, msgs := newInfo()
	require.NoError(t, info.Load(strings.NewReader(body)))
	return info, msgs
}

func TestLoadMultiMod(t *testing.T) {
	info, msgs := load(t, `# Comment line

first.blcm: cat1, cat2
https://www.nexusmods.com/borderlands2/mods/1
https://i.imgur.com/a.png
second.txt: cat2
https://i.imgur.com/b.png
`)
	assert.Equal(t, 0, msgs.Len())
	assert.False(t, info.SingleMod())
	require.Equal(t, 2, info.Len())

	first, _ := info.Get("first.blcm")
	assert.Equal(t, []string{"cat1", "cat2"}, first.Categories)
	assert.Equal(t, []string{"https://www.nexusmods.com/borderlands2/mods/1", "https://i.imgur.com/a.png"}, first.URLs)

	second, _ := info.Get("second.txt")
	assert.Equal(t, []string{"https://i.imgur.com/b.png"}, second.URLs)
}

func TestLoadSingleMod(t *testing.T) {
	info, msgs := load(t, "cat1, cat2\nhttp://www.nexusmods.com/x\n")
	assert.Equal(t, 0, msgs.Len())
	assert.True(t, info.SingleMod())
	mod, ok := info.Get("")
	require.True(t, ok)
	assert.Equal(t, "", mod.Filename)
	assert.Equal(t, []string{"cat1", "cat2"}, mod.Categories)
	assert.Equal(t, []string{"http://www.nexusmods.com/x"}, mod.URLs)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantMsgs []string
		wantMods int
	}{
		{
			"Orphan URL",
			"https://example.com/\nmod.txt: cat1\n",
			[]string{"Did not find previous modfile"},
			1,
		},
		{
			"Named line in single-mod manifest",
			"cat1\nmod.txt: cat2\n",
			[]string{"found in single-mod info file"},
			1,
		},
		{
			"Bare line in multi-mod manifest",
			"mod.txt: cat1\ncat2\n",
			[]string{"Unknown line \"cat2\" inside"},
			1,
		},
		{
			"Rejected entry does not take URLs",
			"good.txt: cat1\nbad.txt: cat9\nhttps://i.imgur.com/a.png\n",
			[]string{"Invalid category", "No categories found for bad.txt"},
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, msgs := load(t, tt.body)
			require.Equal(t, len(tt.wantMsgs), msgs.Len(), "messages: %v", msgs.Messages())
			for i, want := range tt.wantMsgs {
				assert.Contains(t, msgs.Messages()[i], want)
			}
			assert.Equal(t, tt.wantMods, info.Len())
		})
	}

	// The URL after a rejected entry goes to the previous good one.
	info, _ := load(t, "good.txt: cat1\nbad.txt: cat9\nhttps://i.imgur.com/a.png\n")
	good, _ := info.Get("good.txt")
	assert.Equal(t, []string{"https://i.imgur.com/a.png"}, good.URLs)
}

func TestLoadMessagesKeepLineVerbatim(t *testing.T) {
	info, msgs := load(t, "mod.txt: cat1\nC:\\mods\\\"x\"\n")
	require.Equal(t, 1, msgs.Len())
	assert.Equal(t, `ERROR: Unknown line "C:\mods\"x"" inside cabinet.info`, msgs.Messages()[0])
	assert.Equal(t, 1, info.Len())

	_, msgs = load(t, `mod.txt: cat1, c\at`)
	require.Equal(t, 1, msgs.Len())
	assert.Equal(t, `WARNING: Invalid category "c\at" in cabinet.info`, msgs.Messages()[0])
}

func TestLoadLongLine(t *testing.T) {
	long := strings.Repeat("x", 200*1024)
	info, msgs := load(t, "mod.txt: cat1\n"+long+"\nother.txt: cat2\n")
	assert.Equal(t, 2, info.Len())
	require.Equal(t, 1, msgs.Len())
	assert.Contains(t, msgs.Messages()[0], "Unknown line")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cabinet.info")
	require.NoError(t, os.WriteFile(path, []byte("mod.txt: cat1\n"), 0644))
	info, _ := newInfo()
	require.NoError(t, info.LoadFile(path))
	assert.True(t, info.Has("mod.txt"))

	assert.Error(t, info.LoadFile(filepath.Join(t.TempDir(), "nope.info")))
}
