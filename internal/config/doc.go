// Package config holds the tokhist run configuration and the .tokhist
// YAML file with per-source settings.
package config
