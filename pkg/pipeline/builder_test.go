package pipeline_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/cicd-assembler/pkg/pipeline"
	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

func TestBuildPromotesThroughTargets(t *testing.T) {
	t.Parallel()

	pg := buildGraph(t, svcA(), testPolicy())

	assert.Equal(t, "acme-svc-a-main", pg.Name)
	assert.Equal(t, []string{
		"Source",
		"Build",
		"Test",
		"Deploy-to-dev-environment",
		"prod-approval",
		"Deploy-to-prod-environment",
	}, stageNames(pg))
	assert.Equal(t, []model.StageKind{
		model.SourceKind,
		model.BuildKind,
		model.TestKind,
		model.DeployKind,
		model.ApprovalKind,
		model.DeployKind,
	}, stageKinds(pg))
	require.NoError(t, pipeline.Validate(pg))
}

func TestBuildWithoutProdAccount(t *testing.T) {
	t.Parallel()

	policy := testPolicy()
	policy.Accounts = model.AccountRegistry{model.Dev: "111"}
	pg := buildGraph(t, svcA(), policy)

	assert.Equal(t, []string{"Source", "Build", "Test", "Deploy-to-dev-environment"}, stageNames(pg))
	_, ok := pg.Find(model.ApprovalKind, model.Prod)
	assert.False(t, ok)
	assert.Equal(t, []string{
		"acme-svc-a-main-build",
		"acme-svc-a-main-test",
		"acme-svc-a-main-dev-deploy",
	}, pg.Notification.Projects)
}

func TestBuildGitHubWithoutOwner(t *testing.T) {
	t.Parallel()

	desc := svcA()
	desc.Trigger = model.GitHubTrigger{SecretRef: "github-token"}

	pg, err := pipeline.Build(desc, testPrefix, testPolicy())
	require.ErrorIs(t, err, pipeline.ErrMissingOwner)
	assert.True(t, pipeline.IsConfigError(err))
	assert.Nil(t, pg)
}

func TestBuildWithCron(t *testing.T) {
	t.Parallel()

	plain := buildGraph(t, svcA(), testPolicy())

	desc := svcA()
	desc.Cron = "0 3 * * ? *"
	scheduled := buildGraph(t, desc, testPolicy())

	assert.Equal(t, []model.ScheduleAnnotation{{
		Rule:       "acme-svc-a-main-trigger",
		Expression: "0 3 * * ? *",
		Target:     pipeline.SourceStageName,
	}}, scheduled.Schedules)
	assert.Len(t, scheduled.CommitHooks, 1)

	scheduled.Schedules = nil
	assert.Empty(t, cmp.Diff(plain, scheduled))
}

func TestBuildActions(t *testing.T) {
	t.Parallel()

	pg := buildGraph(t, svcA(), testPolicy())
	versionParam := "/acme/it/cicd/simple-cicd/svc-a/main/version"

	want := []model.StageSpec{
		{
			Stage: "Source", Action: "Source", Kind: model.SourceKind,
			OutputArtifact: pipeline.SourceArtifact, RunOrder: 1,
			Parameters: map[string]string{"repository": "svc-a", "branch": "main"},
		},
		{
			Stage: "Build", Action: "Build", Kind: model.BuildKind,
			InputArtifact: pipeline.SourceArtifact, OutputArtifact: pipeline.BuildArtifact, RunOrder: 1,
			Project:    "acme-svc-a-main-build",
			Parameters: map[string]string{"REPO_NAME": "svc-a"},
		},
		{
			Stage: "Build", Action: "VersionStamp", Kind: model.VersionStampKind, RunOrder: 20,
			Parameters: map[string]string{"repo": "svc-a", "branch": "main"},
		},
		{
			Stage: "Test", Action: "Test", Kind: model.TestKind,
			InputArtifact: pipeline.BuildArtifact, OutputArtifact: pipeline.TestArtifact, RunOrder: 1,
			Project:    "acme-svc-a-main-test",
			Parameters: map[string]string{"REPO_NAME": "svc-a", "SEMVER_PARAMETER": versionParam},
		},
		{
			Stage: "Deploy-to-dev-environment", Action: "Deploy", Kind: model.DeployKind,
			InputArtifact: pipeline.TestArtifact, OutputArtifact: "dev-DeployArtifact",
			Environment: model.Dev, RunOrder: 1, Project: "acme-svc-a-main-dev-deploy",
			Parameters: map[string]string{
				"TARGET_ENV":         "dev",
				"TARGET_ACCOUNT_ID":  "111",
				"TARGET_REGION":      "eu-west-1",
				"CROSS_ACCOUNT_ROLE": "cicd-deploy",
				"REPO_NAME":          "svc-a",
				"SEMVER_PARAMETER":   versionParam,
			},
		},
		{
			Stage: "prod-approval", Action: "Promote", Kind: model.ApprovalKind,
			Environment: model.Prod, RunOrder: 1,
		},
		{
			Stage: "Deploy-to-prod-environment", Action: "Deploy", Kind: model.DeployKind,
			InputArtifact: pipeline.TestArtifact, OutputArtifact: "prod-DeployArtifact",
			Environment: model.Prod, RunOrder: 1, Project: "acme-svc-a-main-prod-deploy",
			Parameters: map[string]string{
				"TARGET_ENV":         "prod",
				"TARGET_ACCOUNT_ID":  "222",
				"CROSS_ACCOUNT_ROLE": "cicd-deploy",
				"REPO_NAME":          "svc-a",
				"SEMVER_PARAMETER":   versionParam,
			},
		},
	}

	if diff := cmp.Diff(want, pg.Stages); diff != "" {
		t.Errorf("unexpected actions (-want +got):\n%s", diff)
	}

	assert.Equal(t, []model.CommitHook{{Repository: "svc-a", Branch: "main", Trigger: model.CodeCommitTriggerType}}, pg.CommitHooks)
	assert.Equal(t, model.VersionKey{
		Repository: "svc-a",
		Branch:     "main",
		Parameter:  versionParam,
		Initial:    pipeline.InitialVersion,
	}, pg.Version)
	assert.Equal(t, model.NotificationBinding{
		Topic:     "acme-svc-a-main-cicd-topic",
		Parameter: "/acme/it/cicd/sns-topic/svc-a-main-arn",
		Projects: []string{
			"acme-svc-a-main-build",
			"acme-svc-a-main-test",
			"acme-svc-a-main-dev-deploy",
			"acme-svc-a-main-prod-deploy",
		},
	}, pg.Notification)
}

func TestBuildApprovalPolicy(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		approvals []model.EnvironmentID
		want      []string
	}{
		"default gates prod": {
			approvals: nil,
			want:      []string{"Source", "Build", "Test", "Deploy-to-dev-environment", "prod-approval", "Deploy-to-prod-environment"},
		},
		"no gates": {
			approvals: []model.EnvironmentID{},
			want:      []string{"Source", "Build", "Test", "Deploy-to-dev-environment", "Deploy-to-prod-environment"},
		},
		"every tier gated": {
			approvals: []model.EnvironmentID{model.Dev, model.Prod},
			want:      []string{"Source", "Build", "Test", "dev-approval", "Deploy-to-dev-environment", "prod-approval", "Deploy-to-prod-environment"},
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			policy := testPolicy()
			policy.ApprovalRequired = tc.approvals
			pg := buildGraph(t, svcA(), policy)
			assert.Equal(t, tc.want, stageNames(pg))
			require.NoError(t, pipeline.Validate(pg))
		})
	}
}

func TestBuildDefaultOrder(t *testing.T) {
	t.Parallel()

	desc := svcA()
	desc.Targets = nil
	policy := testPolicy()
	policy.Accounts[model.Test] = "333"

	pg := buildGraph(t, desc, policy)
	assert.Equal(t, []string{
		"Source",
		"Build",
		"Test",
		"Deploy-to-dev-environment",
		"Deploy-to-test-environment",
		"prod-approval",
		"Deploy-to-prod-environment",
	}, stageNames(pg))
}

func TestBuildNoEnvironment(t *testing.T) {
	t.Parallel()

	policy := testPolicy()
	policy.Accounts = model.AccountRegistry{}

	pg := buildGraph(t, svcA(), policy)
	assert.Equal(t, []string{"Source", "Build", "Test"}, stageNames(pg))
	require.NoError(t, pipeline.Validate(pg))
}

func TestBuildInvalidDescriptor(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		mutate  func(desc *model.RepoDescriptor)
		wantErr error
		field   string
	}{
		"empty repository": {
			mutate:  func(desc *model.RepoDescriptor) { desc.Repository = " " },
			wantErr: pipeline.ErrEmptyRepository,
			field:   "repository",
		},
		"empty branch": {
			mutate:  func(desc *model.RepoDescriptor) { desc.Branch = "" },
			wantErr: pipeline.ErrEmptyBranch,
			field:   "branch",
		},
		"blank cron": {
			mutate:  func(desc *model.RepoDescriptor) { desc.Cron = "   " },
			wantErr: pipeline.ErrBlankCron,
			field:   "cron",
		},
		"empty target": {
			mutate:  func(desc *model.RepoDescriptor) { desc.Targets = []model.EnvironmentID{model.Dev, ""} },
			wantErr: pipeline.ErrInvalidTarget,
			field:   "targets",
		},
		"duplicate target": {
			mutate:  func(desc *model.RepoDescriptor) { desc.Targets = []model.EnvironmentID{model.Dev, model.Dev} },
			wantErr: pipeline.ErrDuplicateTarget,
			field:   "targets",
		},
		"targets equal once sanitised": {
			mutate:  func(desc *model.RepoDescriptor) { desc.Targets = []model.EnvironmentID{"a/b", "a_b"} },
			wantErr: pipeline.ErrDuplicateTarget,
			field:   "targets",
		},
		"unknown trigger": {
			mutate:  func(desc *model.RepoDescriptor) { desc.Trigger = nil },
			wantErr: pipeline.ErrUnknownTriggerType,
			field:   "triggerType",
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			desc := svcA()
			tc.mutate(&desc)
			_, err := pipeline.Build(desc, testPrefix, testPolicy())
			require.ErrorIs(t, err, tc.wantErr)

			var cfgErr *pipeline.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	t.Parallel()

	desc := svcA()
	desc.Cron = "0 3 * * ? *"

	first := buildGraph(t, desc, testPolicy())
	second := buildGraph(t, desc, testPolicy())

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("graphs differ (-first +second):\n%s", diff)
	}

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestBuildJSONValidates(t *testing.T) {
	t.Parallel()

	pg := buildGraph(t, svcA(), testPolicy())

	data, err := json.Marshal(pg)
	require.NoError(t, err)

	var decoded model.PipelineGraph
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NoError(t, pipeline.Validate(&decoded))
	assert.Equal(t, pg, &decoded)
}
