package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"go-modcabinet/internal/config"
	"go-modcabinet/internal/models"
)

// cfgFile holds the path to the config file specified by the user
var cfgFile string

// repoDirFlag holds the value of the --repo-dir flag
var repoDirFlag string

// cachePathFlag holds the value of the --cache flag
var cachePathFlag string

// logLevel and logFormat hold the values of the logging flags
var (
	logLevel  string
	logFormat string
)

// globalConfig holds the loaded configuration
var globalConfig models.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "modcabinet",
	Short: "Catalog the mods of a mod repository",
	Long: `Mod Cabinet walks a repository of user-submitted mod files, reads the
cabinet.info manifest of every mod directory, and keeps a catalog of mod
titles, descriptions, authors, categories and links up to date.`,
	PersistentPreRunE: loadGlobalConfig, // Load config before any command runs
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Add persistent flags that apply to all commands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.toml", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&repoDirFlag, "repo-dir", "", "Mod repository root (overrides config)")
	rootCmd.PersistentFlags().StringVar(&cachePathFlag, "cache", "", "Cache database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Logging format (text, json)")

	// Hook to configure logging before any command runs
	cobra.OnInitialize(initLogging)
}

// initLogging configures logrus based on persistent flags
func initLogging() {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		log.WithError(err).Warnf("Invalid log level '%s', using default 'info'", logLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	switch logFormat {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		log.Warnf("Invalid log format '%s', using default 'text'", logFormat)
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	log.Debugf("Logging configured: Level=%s, Format=%s", log.GetLevel(), logFormat)
}

// loadGlobalConfig attempts to load the configuration and applies flag overrides.
func loadGlobalConfig(cmd *cobra.Command, args []string) error {
	var err error
	globalConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		// Some commands (search, db export) can run on defaults alone, so a
		// missing config is not fatal here.
		log.WithError(err).Warnf("Failed to load configuration from %s, using defaults", cfgFile)
		if globalConfig, err = config.Normalize(models.Config{}); err != nil {
			return err
		}
	}

	// Apply the config's log level unless --log-level was given explicitly.
	if globalConfig.LogLevel != "" && !cmd.Flags().Changed("log-level") {
		if level, err := log.ParseLevel(globalConfig.LogLevel); err == nil {
			log.SetLevel(level)
		} else {
			log.Warnf("Invalid LogLevel '%s' in config, ignoring", globalConfig.LogLevel)
		}
	}

	if cmd.Flags().Changed("repo-dir") {
		if repoDirFlag != "" {
			globalConfig.RepoDir = repoDirFlag
			log.Debugf("Overriding RepoDir based on --repo-dir flag: %s", repoDirFlag)
		} else {
			log.Warn("--repo-dir flag provided but value is empty, ignoring.")
		}
	}
	if cmd.Flags().Changed("cache") {
		if cachePathFlag != "" {
			globalConfig.CachePath = cachePathFlag
			log.Debugf("Overriding CachePath based on --cache flag: %s", cachePathFlag)
		} else {
			log.Warn("--cache flag provided but value is empty, ignoring.")
		}
	}

	// Re-run normalization so flag values get "~" expanded too.
	globalConfig, err = config.Normalize(globalConfig)
	return err
}
