package config

import (
	"maps"
	"slices"
)

// Resolve returns the configured module IDs in load order. Lexicographic
// order happens to be the dependency order this repo needs: attachment.*
// and channel.* load before gateway.* and pipeline.*, so every service a
// module resolves at Start has been registered during Provision.
func Resolve(cfg *Config) []string {
	return slices.Sorted(maps.Keys(cfg.Modules))
}
