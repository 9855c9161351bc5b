// Package config loads settings from an optional YAML file with
// environment-variable overrides. Precedence, lowest to highest:
// built-in defaults, the config file, RSM_* environment variables,
// then whatever flags the caller applies on top.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultPath is consulted when no -config flag is given.
const DefaultPath = "rsm.yml"

type InventoryConfig struct {
	// AllowNegative lets part consumption drive stock below zero.
	AllowNegative bool `yaml:"allow_negative"`
	// LowStockThreshold is the dashboard's low-stock cutoff.
	LowStockThreshold int `yaml:"low_stock_threshold"`
}

type BackupConfig struct {
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

type ShopConfig struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Phone   string `yaml:"phone"`
}

type Config struct {
	DB        string          `yaml:"db"`
	Operator  string          `yaml:"operator"`
	Inventory InventoryConfig `yaml:"inventory"`
	Backups   BackupConfig    `yaml:"backups"`
	Shop      ShopConfig      `yaml:"shop"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DB:       "rsm.db",
		Operator: "system",
		Inventory: InventoryConfig{
			AllowNegative:     true,
			LowStockThreshold: 5,
		},
		Backups: BackupConfig{
			Dir:           "backups",
			RetentionDays: 15,
		},
		Shop: ShopConfig{
			Name: "Repair Shop",
		},
	}
}

// Load builds the configuration. A named file must exist; with path ""
// the default file is used when present and skipped otherwise.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Unmarshal over the defaults: keys absent from the file keep
		// their default values.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case explicit:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()

	if cfg.DB == "" {
		return nil, fmt.Errorf("config: db path cannot be empty")
	}
	if cfg.Inventory.LowStockThreshold < 0 {
		return nil, fmt.Errorf("config: low_stock_threshold cannot be negative")
	}
	if cfg.Backups.RetentionDays < 0 {
		return nil, fmt.Errorf("config: retention_days cannot be negative")
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("RSM_DB"); v != "" {
		c.DB = v
	}
	if v := os.Getenv("RSM_OPERATOR"); v != "" {
		c.Operator = v
	}
	if v := os.Getenv("RSM_ALLOW_NEGATIVE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("config: ignoring RSM_ALLOW_NEGATIVE=%q: %v", v, err)
		} else {
			c.Inventory.AllowNegative = b
		}
	}
	if v := os.Getenv("RSM_LOW_STOCK_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("config: ignoring RSM_LOW_STOCK_THRESHOLD=%q: %v", v, err)
		} else {
			c.Inventory.LowStockThreshold = n
		}
	}
	if v := os.Getenv("RSM_BACKUP_DIR"); v != "" {
		c.Backups.Dir = v
	}
	if v := os.Getenv("RSM_BACKUP_RETENTION_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("config: ignoring RSM_BACKUP_RETENTION_DAYS=%q: %v", v, err)
		} else {
			c.Backups.RetentionDays = n
		}
	}
	if v := os.Getenv("RSM_SHOP_NAME"); v != "" {
		c.Shop.Name = v
	}
}
