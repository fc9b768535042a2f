package pipeline

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

var (
	ErrEmptyRepository       = errors.New("repository must be set")
	ErrEmptyBranch           = errors.New("branch must be set")
	ErrUnknownTriggerType    = errors.New("unknown trigger type")
	ErrMissingOwner          = errors.New("owner must be set for a GitHub trigger")
	ErrMissingSecret         = errors.New("secret reference must be set for a GitHub trigger")
	ErrBlankCron             = errors.New("cron expression must not be blank")
	ErrInvalidTarget         = errors.New("target environment must not be empty")
	ErrDuplicateTarget       = errors.New("target environment listed more than once")
	ErrDuplicatePipelineName = errors.New("pipeline name already derived for another descriptor")
	ErrInvalidGraph          = errors.New("invalid pipeline graph")
)

// ConfigError reports a descriptor that cannot be compiled. It is fatal to that descriptor only.
type ConfigError struct {
	Repository string
	Branch     string
	Field      string
	Err        error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid descriptor %s@%s: %s: %v", e.Repository, e.Branch, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func newConfigError(desc model.RepoDescriptor, field string, err error) *ConfigError {
	return &ConfigError{
		Repository: desc.Repository,
		Branch:     desc.Branch,
		Field:      field,
		Err:        err,
	}
}

// IsConfigError reports whether err is, or wraps, a *ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError

	return errors.As(err, &cfgErr)
}
