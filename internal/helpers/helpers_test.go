package helpers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToSlug(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Empty string", "", ""},
		{"Category label", "Weapons and Gear", "weapons_and_gear"},
		{"With colon", "Mod: Reborn", "mod-reborn"},
		{"Apostrophe dropped", "Modder's Resources", "modders_resources"},
		{"With version", "Better Loot v1.5", "better_loot_v1.5"},
		{"Repeated separators", "mixed-_-separator--test", "mixed-separator-test"},
		{"Leading/trailing separators", "-_Leading Trailing_-_", "leading_trailing"},
		{"All invalid", "!@#$%^&*()+", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertToSlug(tt.input))
		})
	}
}

func TestHashFileMatchesHashBytes(t *testing.T) {
	content := []byte("set foo bar baz\n")
	path := filepath.Join(t.TempDir(), "mod.txt")
	require.NoError(t, os.WriteFile(path, content, 0644))

	got, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, HashBytes(content), got)
	assert.Len(t, got, 64)
	assert.Equal(t, strings.ToUpper(got), got)

	assert.NotEqual(t, HashBytes([]byte("set foo bar qux\n")), got)
}

func TestCheckHash(t *testing.T) {
	tempDir := t.TempDir()
	content := []byte("this is test content for hashing")
	path := filepath.Join(tempDir, "mod.blcm")
	require.NoError(t, os.WriteFile(path, content, 0644))
	want := HashBytes(content)

	tests := []struct {
		name string
		path string
		hash string
		ok   bool
	}{
		{"No file exists", filepath.Join(tempDir, "missing.blcm"), want, false},
		{"Match", path, want, true},
		{"Match lowercase", path, strings.ToLower(want), true},
		{"Mismatch", path, "incorrecthash", false},
		{"Empty hash", path, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, CheckHash(tt.path, tt.hash))
		})
	}
}

func TestCheckAndMakeDir(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "existing_file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	tests := []struct {
		name       string
		dir        string
		wantResult bool
	}{
		{"Create simple directory", filepath.Join(base, "wiki"), true},
		{"Create nested directory", filepath.Join(base, "cache", "nested", "dir"), true},
		{"Directory already exists", base, true},
		{"Path is a file", file, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantResult, CheckAndMakeDir(tt.dir))
			info, err := os.Stat(tt.dir)
			require.NoError(t, err)
			assert.Equal(t, tt.wantResult, info.IsDir())
		})
	}
}
