package sqlite

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes a SQLite connection.
type Config struct {
	// Path is the database file path, or ":memory:".
	Path string `json:"path" yaml:"path"`
	// Options are go-sqlite3 DSN parameters, e.g. "_foreign_keys": "on".
	Options map[string]string `json:"options" yaml:"options"`
}

// LoadConfig reads a Config from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("sqlite: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("sqlite: parse config %s: %w", path, err)
	}
	if cfg.Path == "" {
		return Config{}, fmt.Errorf("sqlite: config %s has no path", path)
	}
	return cfg, nil
}
