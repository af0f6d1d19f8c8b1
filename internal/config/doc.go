// Package config loads, normalizes, and validates slasher configuration data.
//
// It supplies defaults matching the historical CLI (threshold 0, crop height
// 15000, aura margin 100, scan step 5), expands user paths (including tilde
// shortcuts), and reads TOML files. Command-line flags are layered on top by
// the CLI after Load returns.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical enum spellings, and clear validation errors.
package config
