package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskgate/internal/common"
	"github.com/spf13/pflag"
)

// Config holds runtime settings for the taskgate CLI.
//
// Fields:
//   - StoreBackend: "memory", "sqlite" or "bolt".
//   - StorePath: file backing the sqlite or bolt store.
//   - Latency: simulated round-trip time of login and signup.
//   - TokenSecret: HMAC key for session tokens; random per run when empty.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	StoreBackend string
	StorePath    string
	Latency      time.Duration
	TokenSecret  string
	LogLevel     string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.StoreBackend = "sqlite"
	c.StorePath = "taskgate.db"
	c.Latency = 500 * time.Millisecond
	c.TokenSecret = ""
	c.LogLevel = "warn"
}

// LoadConfig builds a Config by applying defaults, then the file named by the
// --config flag (if any), then every flag explicitly set in fs. Later sources
// take precedence over earlier ones.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path, err := fs.GetString(FlagConfig)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyFlags(cfg, fs); err != nil {
		return nil, err
	}

	if cfg.Latency < 0 {
		return nil, fmt.Errorf("latency must not be negative, got %s", cfg.Latency)
	}

	if cfg.TokenSecret == "" {
		secret, err := common.MakeRandHexString(32)
		if err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
		cfg.TokenSecret = secret
	}
	return cfg, nil
}
