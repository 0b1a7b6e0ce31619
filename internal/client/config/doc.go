// Package config loads runtime configuration for the taskgate CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file named by --config / -c. Files ending in .yaml or
//     .yml are YAML, anything else is JSON.
//  3. Command-line flags explicitly set by the user.
//
// Supported flags
//
//	-c, --config string      config file
//	-s, --store string       store backend: memory, sqlite or bolt
//	-p, --store-path string  file backing the sqlite or bolt store
//	-l, --latency duration   simulated latency of login and signup
//	    --secret string      session token signing secret
//	    --log-level string   debug, info, warn or error
//
// # File schema
//
// Durations may be strings like "500ms" or integer nanoseconds:
//
//	{
//	  "store": "bolt",
//	  "store_path": "data/tasks.bolt",
//	  "latency": "250ms",
//	  "log_level": "info"
//	}
package config
