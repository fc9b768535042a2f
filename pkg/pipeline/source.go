package pipeline

import (
	"strings"

	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

const (
	SourceStageName = "Source"
	SourceArtifact  = model.ArtifactRef("SourceArtifact")
)

// SourceBinding is the source action of a pipeline and the commit hook that starts it.
type SourceBinding struct {
	Stage model.StageSpec
	Hook  model.CommitHook
}

// BindSource resolves the trigger of desc into the source action.
func BindSource(desc model.RepoDescriptor) (SourceBinding, error) {
	params := map[string]string{
		"repository": desc.Repository,
		"branch":     desc.Branch,
	}
	hook := model.CommitHook{
		Repository: desc.Repository,
		Branch:     desc.Branch,
	}

	switch trigger := derefTrigger(desc.Trigger).(type) {
	case model.CodeCommitTrigger:
		hook.Trigger = trigger.Type()
	case model.GitHubTrigger:
		if strings.TrimSpace(trigger.Owner) == "" {
			return SourceBinding{}, newConfigError(desc, "owner", ErrMissingOwner)
		}
		if strings.TrimSpace(trigger.SecretRef) == "" {
			return SourceBinding{}, newConfigError(desc, "secretRef", ErrMissingSecret)
		}
		hook.Trigger = trigger.Type()
		hook.Owner = trigger.Owner
		params["owner"] = trigger.Owner
		params["secret_ref"] = trigger.SecretRef
	default:
		return SourceBinding{}, newConfigError(desc, "triggerType", ErrUnknownTriggerType)
	}

	return SourceBinding{
		Stage: model.StageSpec{
			Stage:          SourceStageName,
			Action:         SourceStageName,
			Kind:           model.SourceKind,
			OutputArtifact: SourceArtifact,
			RunOrder:       model.DefaultRunOrder,
			Parameters:     params,
		},
		Hook: hook,
	}, nil
}

func derefTrigger(trigger model.Trigger) model.Trigger {
	switch t := trigger.(type) {
	case *model.CodeCommitTrigger:
		if t != nil {
			return *t
		}
	case *model.GitHubTrigger:
		if t != nil {
			return *t
		}
	default:
		return trigger
	}

	return nil
}
