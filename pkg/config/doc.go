// Package config loads the relay configuration from an optional YAML file,
// a .env file and process environment variables, then fills in defaults.
package config
