// Package config loads, parses and validates service configuration from
// defaults, an optional config.yaml and TASKS_-prefixed environment variables.
package config
