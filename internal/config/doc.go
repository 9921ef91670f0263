// Package config loads, normalizes, and validates the TOML configuration for
// the assembly pipeline.
package config
