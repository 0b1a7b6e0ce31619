package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/taskgate/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of a config file. Absent keys leave the
// corresponding Config field unchanged.
type fileConfig struct {
	StoreBackend string          `json:"store" yaml:"store"`
	StorePath    string          `json:"store_path" yaml:"store_path"`
	Latency      *timex.Duration `json:"latency" yaml:"latency"`
	TokenSecret  string          `json:"token_secret" yaml:"token_secret"`
	LogLevel     string          `json:"log_level" yaml:"log_level"`
}

// parseFile overlays cfg with values from the file at path. Files ending in
// .yaml or .yml are read as YAML, everything else as JSON.
func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.StoreBackend != "" {
		cfg.StoreBackend = fc.StoreBackend
	}
	if fc.StorePath != "" {
		cfg.StorePath = fc.StorePath
	}
	if fc.Latency != nil {
		cfg.Latency = fc.Latency.Duration
	}
	if fc.TokenSecret != "" {
		cfg.TokenSecret = fc.TokenSecret
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	return nil
}
