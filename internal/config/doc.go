// Package config defines the application configuration for the server and
// worker binaries and loads it from the environment (MODERATION_ prefix)
// with an optional config.yaml underneath.
package config
