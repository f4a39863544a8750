// Package cli provides the command-line interface for the profiler.
package cli

import (
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"nse-profiler/internal/cache"
	"nse-profiler/internal/config"
	"nse-profiler/internal/feed"
	"nse-profiler/internal/logging"
	"nse-profiler/internal/profile"
	"nse-profiler/internal/store"
)

// Version information
const (
	Version = "0.3.0"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   store.DataStore
	Cache   *cache.ProfileCache // nil when disabled
	Source  feed.Source
	Builder *profile.Builder
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	builder, err := profile.NewBuilder(profile.Config{
		NumBins:      cfg.Profile.NumBins,
		ValueAreaPct: cfg.Profile.ValueAreaPct,
	})
	if err != nil {
		// config.Load validated the same bounds already
		logger.Fatal().Err(err).Msg("Invalid profile configuration")
	}
	app.Builder = builder

	dbPath := cfg.Data.DBPath
	if dbPath == "" {
		dbPath = filepath.Join(config.DefaultConfigDir(), "profiler.db")
	}
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, persistence unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", dbPath).Msg("SQLite store initialized")
	}

	if cfg.Cache.Enabled {
		ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
		profileCache, err := cache.NewProfileCache(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, ttl)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Redis, running without cache")
		} else {
			app.Cache = profileCache
			logger.Debug().Str("addr", cfg.Cache.Addr).Msg("Profile cache initialized")
		}
	}

	app.Source = feed.NewYahooSource()

	rootCmd := &cobra.Command{
		Use:   "profiler",
		Short: "NSE volume profile toolkit",
		Long: `nse-profiler computes per-day volume-at-price profiles (VPOC, value
area high/low) for NSE symbols from intraday candles.

Data comes from Yahoo Finance or imported NSE bhavcopy files; computed
profiles are persisted to a local SQLite summary table.

Use 'profiler help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/nse-profiler)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	addProfileCommands(rootCmd, app)
	addDataCommands(rootCmd, app)
	addRunCommand(rootCmd, app)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("nse-profiler v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Profile Configuration")
	output.Printf("  Bins:            %d\n", cfg.Profile.NumBins)
	output.Printf("  Value Area %%:    %.1f%%\n", cfg.Profile.ValueAreaPct)
	output.Println()

	output.Bold("Data Configuration")
	output.Printf("  Source:          %s\n", cfg.Data.Source)
	output.Printf("  Timeframe:       %s\n", cfg.Data.Timeframe)
	output.Printf("  Database:        %s\n", cfg.Data.DBPath)
	output.Println()

	output.Bold("Cache Configuration")
	output.Printf("  Enabled:         %v\n", cfg.Cache.Enabled)
	output.Printf("  Address:         %s\n", cfg.Cache.Addr)
	output.Printf("  TTL:             %d h\n", cfg.Cache.TTLHours)
	output.Println()

	output.Bold("Schedule")
	output.Printf("  Daily Cron:      %s\n", cfg.Schedule.DailyCron)
	output.Printf("  Workers:         %d\n", cfg.Schedule.Workers)

	return nil
}
