package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/cicd-assembler/pkg/pipeline"
	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

const testPrefix = "acme"

func testPolicy() model.Policy {
	return model.Policy{
		Accounts:         model.AccountRegistry{model.Dev: "111", model.Prod: "222"},
		Regions:          map[model.EnvironmentID]string{model.Dev: "eu-west-1"},
		ApprovalRequired: []model.EnvironmentID{model.Prod},
		ParameterRoot:    "/acme/it/cicd",
		CrossAccountRole: "cicd-deploy",
	}
}

func svcA() model.RepoDescriptor {
	return model.RepoDescriptor{
		Repository: "svc-a",
		Branch:     "main",
		Trigger:    model.CodeCommitTrigger{},
		Targets:    []model.EnvironmentID{model.Dev, model.Prod},
	}
}

func buildGraph(t *testing.T, desc model.RepoDescriptor, policy model.Policy) *model.PipelineGraph {
	t.Helper()

	pg, err := pipeline.Build(desc, testPrefix, policy)
	require.NoError(t, err)

	return pg
}

func stageNames(pg *model.PipelineGraph) []string {
	var names []string
	for _, phase := range pg.Phases() {
		names = append(names, phase.Name)
	}

	return names
}

func stageKinds(pg *model.PipelineGraph) []model.StageKind {
	var kinds []model.StageKind
	for _, phase := range pg.Phases() {
		kinds = append(kinds, phase.Kind)
	}

	return kinds
}
