package core

import (
	"context"

	"gopkg.in/yaml.v3"
)

// The lifecycle interfaces below are all optional. A module implements
// the ones it needs; the loader and App probe with type assertions.
// Order per module: New, Configure, Provision, Validate, then Start
// once every module is loaded, Stop in reverse order at shutdown, and
// Reload whenever the configuration file is reloaded.

// Configurable receives the module's raw section of the YAML config,
// before Provision. Modules decode into their own Config struct and
// apply defaults.
type Configurable interface {
	Configure(node *yaml.Node) error
}

// Provisioner sets a module up: open the database, build the API client,
// publish services other modules will resolve at Start.
type Provisioner interface {
	Provision(ctx *AppContext) error
}

// Validator checks the provisioned module for misconfiguration that
// should fail boot, like a missing signing secret in webhook mode.
// Validate must not change state.
type Validator interface {
	Validate() error
}

// Starter begins a module's runtime work: bind the gateway listener,
// open the Socket Mode connection, launch the retention sweeper.
type Starter interface {
	Start() error
}

// Stopper releases what Start and Provision acquired. Called in reverse
// load order during shutdown and when a later module's Start fails.
type Stopper interface {
	Stop(ctx context.Context) error
}

// Reloader applies a changed configuration to a running module. The
// Slack channel uses this to rotate tokens and the signing secret
// without dropping its transports.
type Reloader interface {
	Reload(ctx *AppContext) error
}
