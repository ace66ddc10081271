// Package config loads the grid server configuration from defaults, an
// optional YAML file and GRID_ environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables read by Load. A double underscore
// separates nested keys: GRID_REST__BASE_URL sets rest.base_url.
const EnvPrefix = "GRID_"

// Config is the grid server configuration.
type Config struct {
	Addr            string `koanf:"addr"`
	APIAddr         string `koanf:"api_addr"`
	BasePath        string `koanf:"base_path"`
	DatabasePath    string `koanf:"database_path"`
	ManifestPath    string `koanf:"manifest_path"`
	DefaultPageSize int    `koanf:"default_page_size"`
	MaxReportRows   int    `koanf:"max_report_rows"`
	LogLevel        string `koanf:"log_level"`
	DemoData        bool   `koanf:"demo_data"`
	REST            REST   `koanf:"rest"`
}

// REST configures the optional remote row source and column registry.
type REST struct {
	BaseURL string   `koanf:"base_url"`
	APIKey  string   `koanf:"api_key"`
	Modules []string `koanf:"modules"`
}

// Enabled reports whether a remote backend is configured.
func (r REST) Enabled() bool { return strings.TrimSpace(r.BaseURL) != "" }

// Defaults returns the values used when nothing overrides them.
func Defaults() map[string]any {
	return map[string]any{
		"addr":              ":8080",
		"api_addr":          "",
		"base_path":         "/admin",
		"database_path":     "data/datagrid.db",
		"default_page_size": 25,
		"max_report_rows":   5000,
		"log_level":         "info",
		"demo_data":         true,
	}
}

// Load reads configuration. Precedence: env vars > config file > defaults.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: stat %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Validate checks the values Load cannot default.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: addr is required")
	}
	if c.DefaultPageSize <= 0 {
		return fmt.Errorf("config: default_page_size must be positive, got %d", c.DefaultPageSize)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log_level: %w", err)
	}
	return level, nil
}
