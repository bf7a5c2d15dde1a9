// Package config handles configuration management for jiek.
// It supports loading configuration from multiple sources including
// the embedded defaults, TOML files, environment variables, command-line
// flags and the "jiek" field of each package.json.
package config
