package config

import (
	"errors"
	"fmt"

	"github.com/hexastack/slackbridge/internal/core"
)

// Validate rejects a config the bridge could not run: missing or
// unsupported version, module IDs the binary does not know, or no
// channel module at all. A deployment with no channel cannot receive
// anything, so at least one is required.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if len(cfg.Modules) == 0 {
		errs = append(errs, errors.New("config: at least one module must be configured"))
	}

	hasChannel := false
	for id := range cfg.Modules {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
			continue
		}
		if core.ModuleID(id).Namespace() == "channel" {
			hasChannel = true
		}
	}

	if len(cfg.Modules) > 0 && !hasChannel {
		errs = append(errs, errors.New("config: at least one channel.* module must be configured"))
	}

	return errors.Join(errs...)
}
