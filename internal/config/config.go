package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Session  SessionConfig  `mapstructure:"session"`
	Database DatabaseConfig `mapstructure:"database"`
	UI       UIConfig       `mapstructure:"ui"`
	Media    MediaConfig    `mapstructure:"media"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Log      LogConfig      `mapstructure:"log"`
}

type APIConfig struct {
	// Provider names the image source; "auto" picks the best one that is
	// configured.
	Provider    string        `mapstructure:"provider"`
	BaseURL     string        `mapstructure:"base_url"`
	Key         string        `mapstructure:"key"`
	ImageType   string        `mapstructure:"image_type"`
	Orientation string        `mapstructure:"orientation"`
	SafeSearch  bool          `mapstructure:"safe_search"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	// FeedURL is a template for the feed provider; {query} is replaced by
	// the escaped search query.
	FeedURL string `mapstructure:"feed_url"`
}

type SessionConfig struct {
	DiscardStale bool `mapstructure:"discard_stale"`
}

type DatabaseConfig struct {
	Path         string        `mapstructure:"path"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SearchIndex  string        `mapstructure:"search_index"`
	HistoryLimit int           `mapstructure:"history_limit"`
}

type UIConfig struct {
	Colors  UIColors      `mapstructure:"colors"`
	Preview PreviewConfig `mapstructure:"preview"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type PreviewConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	Width     int  `mapstructure:"width"`
	Height    int  `mapstructure:"height"`
	CacheSize int  `mapstructure:"cache_size"`
}

type MediaConfig struct {
	Darwin        MediaPlayers `mapstructure:"darwin"`
	Linux         MediaPlayers `mapstructure:"linux"`
	Windows       MediaPlayers `mapstructure:"windows"`
	DefaultOpener string       `mapstructure:"default_opener"`
}

type MediaPlayers struct {
	Image []string `mapstructure:"image"`
}

type KeyConfig struct {
	Modifier string `mapstructure:"modifier"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".gallr")

	return &Config{
		API: APIConfig{
			Provider:    "auto",
			BaseURL:     "https://pixabay.com",
			ImageType:   "photo",
			Orientation: "horizontal",
			SafeSearch:  true,
			HTTPTimeout: 30 * time.Second,
			UserAgent:   "gallr/1.0 (https://github.com/pders01/gallr)",
			FeedURL:     "https://www.flickr.com/services/feeds/photos_public.gne?format=atom&tags={query}",
		},
		Session: SessionConfig{
			DiscardStale: true,
		},
		Database: DatabaseConfig{
			Path:         filepath.Join(dataDir, "gallr.db"),
			Timeout:      1 * time.Second,
			SearchIndex:  filepath.Join(dataDir, "favorites.bleve"),
			HistoryLimit: 50,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Preview: PreviewConfig{
				Enabled:   true,
				Width:     48,
				Height:    16,
				CacheSize: 64,
			},
		},
		Media: MediaConfig{
			Darwin: MediaPlayers{
				Image: []string{"qlmanage", "open"},
			},
			Linux: MediaPlayers{
				Image: []string{"sxiv", "feh", "eog", "xdg-open"},
			},
			Windows: MediaPlayers{
				Image: []string{"start"},
			},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
		},
		Log: LogConfig{
			Level: "off",
			Path:  filepath.Join(dataDir, "gallr.log"),
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// DefaultConfigPath returns ~/.config/gallr/config.toml.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "gallr", "config.toml")
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v, "", reflect.ValueOf(*defaultConfig()))

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultConfigPath()))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GALLR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// setDefaults registers every leaf of the default config so that a config
// file or environment variable overriding one key keeps the rest of its
// section.
func setDefaults(v *viper.Viper, prefix string, val reflect.Value) {
	t := val.Type()
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("mapstructure")
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		field := val.Field(i)
		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Duration(0)) {
			setDefaults(v, key, field)
			continue
		}
		v.SetDefault(key, field.Interface())
	}
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Log.Path = expandPath(cfg.Log.Path)
}

// ExpandPath is exported for command line overrides.
func ExpandPath(path string) string {
	return expandPath(path)
}

func Save(config *Config, path string) error {
	v := viper.New()

	for key, value := range toMap(reflect.ValueOf(*config)) {
		v.Set(key, value)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

// toMap mirrors setDefaults: nested maps keyed by mapstructure tags, with
// durations written as strings for TOML readability.
func toMap(val reflect.Value) map[string]interface{} {
	out := make(map[string]interface{})
	t := val.Type()
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("mapstructure")
		if key == "" {
			continue
		}
		field := val.Field(i)
		switch {
		case field.Type() == reflect.TypeOf(time.Duration(0)):
			out[key] = time.Duration(field.Int()).String()
		case field.Kind() == reflect.Struct:
			out[key] = toMap(field)
		default:
			out[key] = field.Interface()
		}
	}
	return out
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
