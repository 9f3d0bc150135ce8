package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// varPattern matches ${VAR} and ${VAR:-default}. Deployments keep Slack
// credentials out of the file itself and reference them this way, e.g.
// bot_token: ${SLACK_BOT_TOKEN}.
var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// Load reads the YAML file at path, substitutes environment variables,
// and decodes the result into a Config. Substitution happens on the raw
// bytes before YAML parsing so a variable can expand to any YAML scalar.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	expanded, err := substituteEnv(raw)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// substituteEnv expands every ${VAR} and ${VAR:-default} occurrence.
// A variable that is unset and carries no default is an error; all such
// variables are collected so one load reports every missing credential
// instead of the first.
func substituteEnv(raw []byte) ([]byte, error) {
	var missing []error

	out := varPattern.ReplaceAllFunc(raw, func(ref []byte) []byte {
		groups := varPattern.FindSubmatch(ref)
		name := string(groups[1])

		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		if groups[2] != nil {
			return groups[2]
		}

		missing = append(missing, fmt.Errorf("%s is not set and has no default", name))
		return ref
	})

	return out, errors.Join(missing...)
}
