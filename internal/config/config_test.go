package config

import (
	"os"
	"path/filepath"
	"testing"

	"go-modcabinet/internal/models"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
RepoDir = "/srv/BLCMods"
WikiDir = "/srv/ModSorted.wiki"
CachePath = "/srv/cache/modcache.db"
NexusDomain = "nexus.example"
WikiHTML = true

[[Games]]
Prefix = "BL2"
Dir = "Borderlands 2 mods"

[[Categories]]
Key = "gear"
Label = "Weapons and Gear"

[[Categories]]
Key = "qol"
Label = "Quality of Life"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/BLCMods", cfg.RepoDir)
	assert.Equal(t, "/srv/ModSorted.wiki", cfg.WikiDir)
	assert.Equal(t, "/srv/cache/modcache.db", cfg.CachePath)
	assert.Equal(t, "nexus.example", cfg.NexusDomain)
	assert.Equal(t, DefaultManifestName, cfg.ManifestName)
	assert.True(t, cfg.WikiHTML)
	assert.Equal(t, []models.Game{{Prefix: "BL2", Dir: "Borderlands 2 mods"}}, cfg.Games)
	assert.Equal(t, []string{"gear", "qol"}, cfg.CategoryKeys())
	assert.Equal(t, "Quality of Life", cfg.CategoryLabel("qol"))
	assert.Equal(t, "unknown", cfg.CategoryLabel("unknown"))
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("RepoDir = [unterminated"), 0644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestNormalizeDefaults(t *testing.T) {
	cfg, err := Normalize(models.Config{RepoDir: "/repo"})
	require.NoError(t, err)
	assert.Equal(t, DefaultManifestName, cfg.ManifestName)
	assert.Equal(t, DefaultNexusDomain, cfg.NexusDomain)
	assert.Equal(t, DefaultCachePath, cfg.CachePath)
	assert.Equal(t, DefaultGames, cfg.Games)
	assert.Len(t, cfg.Categories, 13)
	assert.Equal(t, "general", cfg.Categories[0].Key)
}

func TestNormalizeExpandsHome(t *testing.T) {
	home, err := homedir.Dir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	cfg, err := Normalize(models.Config{RepoDir: "~/mods", CachePath: "~/cache/db"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "mods"), cfg.RepoDir)
	assert.Equal(t, filepath.Join(home, "cache", "db"), cfg.CachePath)
}
