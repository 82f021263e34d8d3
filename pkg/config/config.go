package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	MemoryPath             string `json:"memoryPath" env:"HINDSIGHT_MEMORY_PATH"`
	MaxContextObservations int    `json:"maxContextObservations" env:"HINDSIGHT_MAX_CONTEXT_OBSERVATIONS"`
	MaxContextTokens       int    `json:"maxContextTokens" env:"HINDSIGHT_MAX_CONTEXT_TOKENS"`
	AutoCompress           bool   `json:"autoCompress" env:"HINDSIGHT_AUTO_COMPRESS"`
	// MinConfidence is parsed for forward compatibility; recall does not
	// filter on it yet.
	MinConfidence       float64  `json:"minConfidence" env:"HINDSIGHT_MIN_CONFIDENCE"`
	Debug               bool     `json:"debug" env:"HINDSIGHT_DEBUG"`
	IgnoreGlobs         []string `json:"ignoreGlobs" env:"HINDSIGHT_IGNORE_GLOBS"`
	MaintenanceSchedule string   `json:"maintenanceSchedule" env:"HINDSIGHT_MAINTENANCE_SCHEDULE"`
	RetentionDays       int      `json:"retentionDays" env:"HINDSIGHT_RETENTION_DAYS"`
}

func DefaultConfig() *Config {
	return &Config{
		MemoryPath:             "~/.hindsight",
		MaxContextObservations: 50,
		MaxContextTokens:       2000,
		AutoCompress:           true,
		MinConfidence:          0,
		Debug:                  false,
		IgnoreGlobs: []string{
			"**/.env*",
			"**/*.pem",
			"**/node_modules/**",
			"**/.git/**",
		},
		MaintenanceSchedule: "0 4 * * *",
		RetentionDays:       90,
	}
}

// DefaultPath is where LoadConfig looks when no explicit path is given.
func DefaultPath() string {
	return expandHome("~/.hindsight/settings.json")
}

func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := env.Parse(cfg); err != nil {
				return nil, fmt.Errorf("parse env overrides: %w", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse settings file: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env overrides: %w", err)
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	if path == "" {
		path = DefaultPath()
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// MemoryDir resolves the configured memory location to an absolute directory.
func (c *Config) MemoryDir() string {
	return expandHome(c.MemoryPath)
}

// ArchivePath is the SQLite file inside the memory directory.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.MemoryDir(), "memory.db")
}

// LogDir is where diagnostic logs go. Never stdout: stdout carries the
// hook protocol.
func (c *Config) LogDir() string {
	return filepath.Join(c.MemoryDir(), "logs")
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
