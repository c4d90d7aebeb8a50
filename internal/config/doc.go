// Package config loads, normalizes, and validates the TOML configuration for
// the batch pipeline. Every directory and numeric constant the orchestrator
// uses is explicit here so tests can inject alternate paths and assets.
package config
