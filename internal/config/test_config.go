package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.API.Key = "test-key"
	cfg.API.HTTPTimeout = 5 * time.Second
	cfg.API.UserAgent = "gallr-test/1.0"
	cfg.Database.Path = ":memory:"
	cfg.Database.SearchIndex = ""
	cfg.UI.Preview.Enabled = false
	cfg.Log.Level = "off"
	return cfg
}
