package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/gallr/internal/config"
	"github.com/pders01/gallr/internal/debuglog"
	"github.com/pders01/gallr/internal/provider"
	"github.com/pders01/gallr/internal/search"
	"github.com/pders01/gallr/internal/storage"
	"github.com/pders01/gallr/internal/tui"
	"github.com/pders01/gallr/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	dbPath     string
	logLevel   string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:           "gallr",
	Short:         "Search and browse images in the terminal",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer debuglog.Close()

		if !quiet {
			tui.ShowBanner(Version)
		}
		return runTUI(cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to database file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error, off")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Skip startup banner")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func runTUI(cfg *config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	images, err := provider.Default(cfg).Resolve(cfg.API.Provider)
	if err != nil {
		return err
	}
	debuglog.Infof("using provider %s", images.Name())

	favorites := search.New(store, cfg.Database.SearchIndex)
	if c, ok := favorites.(search.Closer); ok {
		defer c.Close()
	}

	app := tui.NewApp(store, cfg, images, favorites)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// loadConfig reads the config file, applies flag overrides, validates
// endpoints and paths, and starts logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dbPath != "" {
		cfg.Database.Path = config.ExpandPath(dbPath)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		return nil, err
	}
	tui.ApplyColors(cfg.UI.Colors)
	return cfg, nil
}

func validateConfig(cfg *config.Config) error {
	endpoints := validation.NewEndpointValidator()
	if cfg.API.BaseURL != "" {
		base, err := endpoints.ValidateAndNormalize(cfg.API.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid api.base_url: %w", err)
		}
		cfg.API.BaseURL = base
	}
	if cfg.API.FeedURL != "" {
		if err := endpoints.ValidateTemplate(cfg.API.FeedURL, "{query}"); err != nil {
			return fmt.Errorf("invalid api.feed_url: %w", err)
		}
	}

	paths := validation.NewPermissivePathHandler()
	db, err := paths.GetSecureDBPath(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("invalid database.path: %w", err)
	}
	cfg.Database.Path = db

	// an empty index path keeps the favorites index in memory
	if cfg.Database.SearchIndex != "" {
		idx, err := paths.GetSecureIndexPath(cfg.Database.SearchIndex)
		if err != nil {
			return fmt.Errorf("invalid database.search_index: %w", err)
		}
		cfg.Database.SearchIndex = idx
	}

	logPath, err := paths.GetSecureLogPath(cfg.Log.Path)
	if err != nil {
		return fmt.Errorf("invalid log.path: %w", err)
	}
	cfg.Log.Path = logPath
	return nil
}

// openStore opens the favorites and history database named by cfg,
// creating its directory on first run.
func openStore(cfg *config.Config) (*storage.Store, error) {
	if _, err := validation.NewPermissivePathHandler().EnsureSecureDirectory(filepath.Dir(cfg.Database.Path)); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
}
