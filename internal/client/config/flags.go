package config

import (
	"github.com/spf13/pflag"
)

// Flag names understood by LoadConfig.
const (
	FlagConfig    = "config"
	FlagStore     = "store"
	FlagStorePath = "store-path"
	FlagLatency   = "latency"
	FlagSecret    = "secret"
	FlagLogLevel  = "log-level"
)

// RegisterFlags declares the configuration flags on fs, with the built-in
// defaults shown in help output.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "path to a JSON or YAML config file")
	fs.StringP(FlagStore, "s", d.StoreBackend, "store backend: memory, sqlite or bolt")
	fs.StringP(FlagStorePath, "p", d.StorePath, "file backing the sqlite or bolt store")
	fs.DurationP(FlagLatency, "l", d.Latency, "simulated latency of login and signup")
	fs.String(FlagSecret, d.TokenSecret, "session token signing secret (random when empty)")
	fs.String(FlagLogLevel, d.LogLevel, "log level: debug, info, warn or error")
}

// applyFlags copies every flag the user actually set onto cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	if fs.Changed(FlagStore) {
		if cfg.StoreBackend, err = fs.GetString(FlagStore); err != nil {
			return err
		}
	}
	if fs.Changed(FlagStorePath) {
		if cfg.StorePath, err = fs.GetString(FlagStorePath); err != nil {
			return err
		}
	}
	if fs.Changed(FlagLatency) {
		if cfg.Latency, err = fs.GetDuration(FlagLatency); err != nil {
			return err
		}
	}
	if fs.Changed(FlagSecret) {
		if cfg.TokenSecret, err = fs.GetString(FlagSecret); err != nil {
			return err
		}
	}
	if fs.Changed(FlagLogLevel) {
		if cfg.LogLevel, err = fs.GetString(FlagLogLevel); err != nil {
			return err
		}
	}
	return nil
}
