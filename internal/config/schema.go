// Package config reads slackbridge.yaml: parsing, ${VAR} expansion from
// the environment, and structural validation before anything boots.
package config

import "gopkg.in/yaml.v3"

// Config mirrors the top level of slackbridge.yaml. Module sections stay
// as raw YAML nodes; each module decodes its own during Configure.
type Config struct {
	// Version of the config format. Only "1" exists so far.
	Version string `yaml:"version"`

	// Modules keys are registered module IDs, e.g. "channel.slack".
	Modules map[string]yaml.Node `yaml:"modules"`
}
