package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/cicd-assembler/pkg/pipeline"
	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

func TestBindSource(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		trigger  model.Trigger
		wantHook model.CommitHook
		wantErr  error
		field    string
	}{
		"codecommit": {
			trigger:  model.CodeCommitTrigger{},
			wantHook: model.CommitHook{Repository: "svc-a", Branch: "main", Trigger: model.CodeCommitTriggerType},
		},
		"codecommit pointer": {
			trigger:  &model.CodeCommitTrigger{},
			wantHook: model.CommitHook{Repository: "svc-a", Branch: "main", Trigger: model.CodeCommitTriggerType},
		},
		"github": {
			trigger:  model.GitHubTrigger{Owner: "acme", SecretRef: "github-token"},
			wantHook: model.CommitHook{Repository: "svc-a", Branch: "main", Trigger: model.GitHubTriggerType, Owner: "acme"},
		},
		"github without owner": {
			trigger: model.GitHubTrigger{SecretRef: "github-token"},
			wantErr: pipeline.ErrMissingOwner,
			field:   "owner",
		},
		"github without secret": {
			trigger: model.GitHubTrigger{Owner: "acme", SecretRef: "  "},
			wantErr: pipeline.ErrMissingSecret,
			field:   "secretRef",
		},
		"no trigger": {
			wantErr: pipeline.ErrUnknownTriggerType,
			field:   "triggerType",
		},
		"nil pointer": {
			trigger: (*model.GitHubTrigger)(nil),
			wantErr: pipeline.ErrUnknownTriggerType,
			field:   "triggerType",
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			desc := model.RepoDescriptor{Repository: "svc-a", Branch: "main", Trigger: tc.trigger}
			got, err := pipeline.BindSource(desc)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				var cfgErr *pipeline.ConfigError
				require.ErrorAs(t, err, &cfgErr)
				assert.Equal(t, tc.field, cfgErr.Field)
				assert.Equal(t, "svc-a", cfgErr.Repository)
				assert.Equal(t, "main", cfgErr.Branch)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantHook, got.Hook)
			assert.Equal(t, model.SourceKind, got.Stage.Kind)
			assert.Equal(t, pipeline.SourceStageName, got.Stage.Stage)
			assert.Equal(t, pipeline.SourceArtifact, got.Stage.OutputArtifact)
			assert.True(t, got.Stage.InputArtifact.IsZero())
		})
	}
}

func TestBindSourceGitHubParameters(t *testing.T) {
	t.Parallel()

	desc := model.RepoDescriptor{
		Repository: "svc-a",
		Branch:     "main",
		Trigger:    model.GitHubTrigger{Owner: "acme", SecretRef: "github-token"},
	}
	got, err := pipeline.BindSource(desc)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"repository": "svc-a",
		"branch":     "main",
		"owner":      "acme",
		"secret_ref": "github-token",
	}, got.Stage.Parameters)
}

func TestConfigErrorMessage(t *testing.T) {
	t.Parallel()

	desc := model.RepoDescriptor{Repository: "svc-a", Branch: "main", Trigger: model.GitHubTrigger{}}
	_, err := pipeline.BindSource(desc)
	require.Error(t, err)
	assert.Equal(t, "invalid descriptor svc-a@main: owner: owner must be set for a GitHub trigger", err.Error())
	assert.True(t, pipeline.IsConfigError(err))
	assert.False(t, pipeline.IsConfigError(assert.AnError))
}
