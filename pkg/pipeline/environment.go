package pipeline

import (
	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

// PlanEnvironments returns the environments desc deploys to, in order.
//
// Non-empty desc.Targets are used verbatim, which lets a repository skip a tier or go to prod
// directly; otherwise order is used. Environments without an account in accounts are dropped
// silently since estates are provisioned tier by tier.
func PlanEnvironments(desc model.RepoDescriptor, order []model.EnvironmentID, accounts model.AccountRegistry) []model.EnvironmentID {
	candidates := order
	if len(desc.Targets) > 0 {
		candidates = desc.Targets
	}

	planned := make([]model.EnvironmentID, 0, len(candidates))
	for _, env := range candidates {
		if _, ok := accounts.Account(env); !ok {
			continue
		}
		planned = append(planned, env)
	}

	return planned
}
