package config

import (
	"fmt"

	"go-modcabinet/internal/models"

	"github.com/BurntSushi/toml"
	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultManifestName = "cabinet.info"
	DefaultNexusDomain  = "nexusmods.com"
	DefaultCachePath    = "cache/modcache.db"
)

// DefaultGames are the game directories scanned when none are configured.
var DefaultGames = []models.Game{
	{Prefix: "BL2", Dir: "Borderlands 2 mods"},
	{Prefix: "TPS", Dir: "Pre Sequel Mods"},
}

// DefaultCategories are the categories used when none are configured.
var DefaultCategories = []models.Category{
	{Key: "general", Label: "General Gameplay and Balance"},
	{Key: "skills", Label: "Characters and Skills"},
	{Key: "farming", Label: "Farming and Looting"},
	{Key: "gear", Label: "Weapons and Gear"},
	{Key: "tools", Label: "Tools and Misc"},
	{Key: "gamemodes", Label: "Game Modes"},
	{Key: "overhaul", Label: "Overhauls"},
	{Key: "qol", Label: "Quality of Life"},
	{Key: "skins", Label: "Visuals and Standalone Skins"},
	{Key: "cheats", Label: "Cheat Mods"},
	{Key: "wip", Label: "Works in Progress"},
	{Key: "resources", Label: "Modder's Resources"},
	{Key: "misc", Label: "Miscellaneous Mods"},
}

// LoadConfig reads the configuration from the specified path (defaulting to
// "config.toml"), fills in defaults and expands "~" in paths.
func LoadConfig(configFilePath string) (models.Config, error) {
	if configFilePath == "" {
		configFilePath = "config.toml"
	}
	var cfg models.Config
	if _, err := toml.DecodeFile(configFilePath, &cfg); err != nil {
		return models.Config{}, fmt.Errorf("error loading config file %s: %w", configFilePath, err)
	}

	cfg, err := Normalize(cfg)
	if err != nil {
		return models.Config{}, err
	}
	log.Infof("Configuration loaded from %s", configFilePath)
	return cfg, nil
}

// Normalize applies defaults and expands home-relative paths.
func Normalize(cfg models.Config) (models.Config, error) {
	if cfg.ManifestName == "" {
		cfg.ManifestName = DefaultManifestName
	}
	if cfg.NexusDomain == "" {
		cfg.NexusDomain = DefaultNexusDomain
	}
	if cfg.CachePath == "" {
		cfg.CachePath = DefaultCachePath
	}
	if len(cfg.Games) == 0 {
		cfg.Games = append([]models.Game(nil), DefaultGames...)
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = append([]models.Category(nil), DefaultCategories...)
	}
	if cfg.RepoDir == "" {
		log.Warn("Warning: RepoDir is not set in config.toml")
	}

	for _, p := range []*string{&cfg.RepoDir, &cfg.WikiDir, &cfg.CachePath, &cfg.BleveIndexPath} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return models.Config{}, fmt.Errorf("error expanding path %q: %w", *p, err)
		}
		*p = expanded
	}
	return cfg, nil
}
