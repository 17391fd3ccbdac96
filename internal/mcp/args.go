package mcp

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ErrMissingArgument is wrapped by errors for absent required tool arguments.
var ErrMissingArgument = errors.New("missing required argument")

// requireArgs reports the first key that is absent or null in args.
func requireArgs(args map[string]interface{}, keys ...string) error {
	for _, key := range keys {
		if v, ok := args[key]; !ok || v == nil {
			return fmt.Errorf("%w: %s", ErrMissingArgument, key)
		}
	}
	return nil
}

// decodeArgs decodes the argument bag into a typed struct. Defaults for
// omitted keys are filled in by the caller afterwards: a value pre-set on
// an interface{} field would coerce the caller's value to its type.
func decodeArgs(args map[string]interface{}, dst interface{}) error {
	if err := mapstructure.Decode(args, dst); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

type projectArgs struct {
	ProjectID string `mapstructure:"project_id"`
}

// Body fields are interface{} so caller values reach the control plane
// as sent: numbers keep their fractions and strings stay strings.

type createProjectArgs struct {
	Name        interface{} `mapstructure:"name" json:"name"`
	Mode        interface{} `mapstructure:"mode" json:"mode"`
	Description interface{} `mapstructure:"description" json:"description,omitempty"`
}

type deleteProjectArgs struct {
	ProjectID string `mapstructure:"project_id"`
	Hard      bool   `mapstructure:"hard"`
}

// createTableArgs doubles as the request body. Indexes and RLSPolicies are
// omitted unless the call carries them; an empty array is still sent.
type createTableArgs struct {
	ProjectID   string      `mapstructure:"project_id" json:"-"`
	Name        interface{} `mapstructure:"name" json:"name"`
	Columns     interface{} `mapstructure:"columns" json:"columns"`
	Indexes     interface{} `mapstructure:"indexes" json:"indexes,omitempty"`
	RLSPolicies interface{} `mapstructure:"rls_policies" json:"rls_policies,omitempty"`
}

type runMigrationArgs struct {
	ProjectID          string      `mapstructure:"project_id" json:"-"`
	SQL                interface{} `mapstructure:"sql" json:"sql"`
	StatementTimeoutMS interface{} `mapstructure:"statement_timeout_ms" json:"statement_timeout_ms"`
}

type restoreProjectArgs struct {
	ProjectID    string      `mapstructure:"project_id" json:"-"`
	ArtifactPath interface{} `mapstructure:"artifact_path" json:"artifact_path"`
}
