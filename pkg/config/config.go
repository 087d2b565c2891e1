// Package config provides configuration loading for the dailybrief agent.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable overriding the config path
const EnvConfigPath = "DAILYBRIEF_CONFIG"

// Config is the complete agent configuration
type Config struct {
	// StagingDir is the directory the delivery channel is permitted to read
	// artifacts from. The renderer writes there and delivery reads there;
	// it is the single shared constant both sides consume.
	StagingDir string `yaml:"staging_dir"`

	Source   SourceConfig   `yaml:"source"`
	Renderer RendererConfig `yaml:"renderer"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Store    StoreConfig    `yaml:"store"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// SourceConfig configures the daily-snippet source
type SourceConfig struct {
	// Kind selects the source: "page" (scraped HTML) or "feed" (RSS/Atom)
	Kind string `yaml:"kind"`
	// PageURL is the month-templated page URL with a %d placeholder
	PageURL string `yaml:"page_url"`
	// FeedURL is the feed URL, required when Kind is "feed"
	FeedURL string `yaml:"feed_url"`
	// Window is the number of markup nodes scanned after the date match
	Window int `yaml:"window"`
	// MaxLines caps the extracted snippet
	MaxLines int `yaml:"max_lines"`
}

// RendererConfig configures the external chart renderer
type RendererConfig struct {
	// Command is the argv prefix, e.g. ["python3", "fibo_chart.py"];
	// symbol and optional dates are appended
	Command []string `yaml:"command"`
	// Timeout bounds one renderer invocation
	Timeout time.Duration `yaml:"timeout"`
}

// UnmarshalYAML accepts Go duration strings ("2m") for the timeout
func (r *RendererConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Command []string `yaml:"command"`
		Timeout string   `yaml:"timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Command != nil {
		r.Command = raw.Command
	}
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("renderer.timeout: %w", err)
		}
		r.Timeout = d
	}
	return nil
}

// ScheduleConfig configures the cadence trigger
type ScheduleConfig struct {
	// Daily is the cron spec for the daily text pipeline
	Daily string `yaml:"daily"`
}

// StoreConfig configures the dispatch-record store
type StoreConfig struct {
	// Backend selects the store: "file", "postgres", "mongo" or "supabase"
	Backend string `yaml:"backend"`
	// Path is the record file for the file backend
	Path string `yaml:"path"`
	// DSN is the Postgres connection string for the postgres backend
	DSN string `yaml:"dsn"`
	// MongoURI and MongoDB configure the mongo backend
	MongoURI string `yaml:"mongo_uri"`
	MongoDB  string `yaml:"mongo_db"`
	// SupabaseURL, SupabaseKey and SupabasePassword configure the supabase
	// backend
	SupabaseURL      string `yaml:"supabase_url"`
	SupabaseKey      string `yaml:"supabase_key"`
	SupabasePassword string `yaml:"supabase_password"`
}

// TelegramConfig configures the delivery channel. An empty token selects
// console delivery.
type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID string `yaml:"chat_id"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		StagingDir: "/tmp",
		Source: SourceConfig{
			Kind:     "page",
			PageURL:  "https://www.santodelgiorno.it/?mese=%d",
			Window:   40,
			MaxLines: 20,
		},
		Renderer: RendererConfig{
			Command: []string{"python3", "fibo_chart.py"},
			Timeout: 2 * time.Minute,
		},
		Schedule: ScheduleConfig{
			Daily: "0 8 * * *",
		},
		Store: StoreConfig{
			Backend: "file",
			Path:    defaultStorePath(),
			MongoDB: "dailybrief",
		},
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.StagingDir == "" {
		return fmt.Errorf("staging_dir is required")
	}
	switch c.Source.Kind {
	case "page":
		if c.Source.PageURL == "" {
			return fmt.Errorf("source.page_url is required for the page source")
		}
	case "feed":
		if c.Source.FeedURL == "" {
			return fmt.Errorf("source.feed_url is required for the feed source")
		}
	default:
		return fmt.Errorf("source.kind must be \"page\" or \"feed\", got %q", c.Source.Kind)
	}
	if len(c.Renderer.Command) == 0 {
		return fmt.Errorf("renderer.command is required")
	}
	switch c.Store.Backend {
	case "file":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the file backend")
		}
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the postgres backend")
		}
	case "mongo":
		if c.Store.MongoURI == "" {
			return fmt.Errorf("store.mongo_uri is required for the mongo backend")
		}
	case "supabase":
		if c.Store.SupabaseURL == "" || c.Store.SupabaseKey == "" {
			return fmt.Errorf("store.supabase_url and store.supabase_key are required for the supabase backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Load resolves the config path and loads it. Precedence: the explicit path
// (usually the --config flag), $DAILYBRIEF_CONFIG, the user config file.
// When none exists the defaults are returned.
func Load(explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = userConfigPath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicitPath != "" {
			return nil, fmt.Errorf("config file %s does not exist", explicitPath)
		}
		config := DefaultConfig()
		if err := config.Validate(); err != nil {
			return nil, err
		}
		return config, nil
	}

	return LoadFromFile(path)
}

// userConfigPath returns ~/.config/dailybrief/config.yaml
func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "dailybrief", "config.yaml")
}

// defaultStorePath returns ~/.local/state/dailybrief/dispatch.json
func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "dispatch.json"
	}
	return filepath.Join(home, ".local", "state", "dailybrief", "dispatch.json")
}
