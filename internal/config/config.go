// Package config handles loading and validation of homedex configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/okibler/homedex/internal/notion"
)

// ServerConfig specifies how the HTTP API listens.
type ServerConfig struct {
	// Addr is the listen address, host:port. Defaults to ":8080".
	Addr string `yaml:"addr"`
}

// CacheConfig specifies where offline snapshots are stored.
type CacheConfig struct {
	// Path is the SQLite database file. Empty means ~/.homedex/cache.db.
	Path string `yaml:"path"`
}

// RoomsConfig contains room resolution settings.
type RoomsConfig struct {
	// EnableHeuristics turns on title-substring room matching as a
	// fallback when relation data is missing. Debug aid, off by default.
	EnableHeuristics bool `yaml:"enable_heuristics"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server  ServerConfig `yaml:"server"`
	Cache   CacheConfig  `yaml:"cache"`
	Rooms   RoomsConfig  `yaml:"rooms"`
	Offline bool         `yaml:"offline"`

	// Notion credentials and database IDs are loaded from environment,
	// not from the config file.
	NotionToken     string `yaml:"-"`
	DatabaseID      string `yaml:"-"`
	RoomsDatabaseID string `yaml:"-"`
	ItemsDatabaseID string `yaml:"-"`
}

// Load reads configuration from an optional YAML file and environment
// variables. NOTION_TOKEN and the database IDs come from the environment
// only. If a .env file exists in the current directory, it is loaded
// first. Database IDs may be given as Notion share URLs; they are
// normalized to plain IDs here.
func Load(path string) (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}

	cfg.NotionToken = os.Getenv("NOTION_TOKEN")
	cfg.DatabaseID = os.Getenv("NOTION_DATABASE_ID")
	cfg.RoomsDatabaseID = os.Getenv("NOTION_ROOMS_DATABASE_ID")
	cfg.ItemsDatabaseID = os.Getenv("NOTION_ITEMS_DATABASE_ID")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks required fields and normalizes database identifiers.
// All problems are reported at once.
func (c *Config) Validate() error {
	var errs []error

	if c.NotionToken == "" {
		errs = append(errs, errors.New("NOTION_TOKEN environment variable is required"))
	}

	if c.DatabaseID == "" {
		errs = append(errs, errors.New("NOTION_DATABASE_ID environment variable is required"))
	} else if id, err := notion.NormalizeID(c.DatabaseID); err != nil {
		errs = append(errs, fmt.Errorf("NOTION_DATABASE_ID: %w", err))
	} else {
		c.DatabaseID = id
	}

	// Rooms databases are optional; the rooms endpoints report their own
	// configuration errors when missing.
	if c.RoomsDatabaseID != "" {
		if id, err := notion.NormalizeID(c.RoomsDatabaseID); err != nil {
			errs = append(errs, fmt.Errorf("NOTION_ROOMS_DATABASE_ID: %w", err))
		} else {
			c.RoomsDatabaseID = id
		}
	}
	if c.ItemsDatabaseID != "" {
		if id, err := notion.NormalizeID(c.ItemsDatabaseID); err != nil {
			errs = append(errs, fmt.Errorf("NOTION_ITEMS_DATABASE_ID: %w", err))
		} else {
			c.ItemsDatabaseID = id
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
