// Package config loads and validates application configuration from
// environment variables and optional YAML config files.
package config
