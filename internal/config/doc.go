// ABOUTME: Configuration package documentation
// ABOUTME: YAML settings for the bridge with defaults and validation
// Package config loads bridge settings from YAML.
//
// Values missing from the file keep their defaults; command-line flags are
// applied on top by the caller.
//
// Example:
//
//	cfg, err := config.Load("bison.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	interval := cfg.Audio.TickInterval()
package config
