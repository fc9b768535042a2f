package measure_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/cicd-assembler/pkg/pipeline/measure"
	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

func TestPipelineMeasure(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	opt := measure.PipelineMeasure(m)
	require.NoError(t, opt.New())

	stages := []model.StageSpec{
		{Stage: "Source", Action: "Source", Kind: model.SourceKind},
		{Stage: "Build", Action: "Build", Kind: model.BuildKind},
		{Stage: "Deploy-to-dev-environment", Action: "Deploy", Kind: model.DeployKind, Environment: model.Dev},
		{Stage: "prod-approval", Action: "Promote", Kind: model.ApprovalKind, Environment: model.Prod},
		{Stage: "Deploy-to-prod-environment", Action: "Deploy", Kind: model.DeployKind, Environment: model.Prod},
	}

	var parent *model.StageSpec
	for i := range stages {
		require.NoError(t, opt.PrepareStage("acme-svc-a-main", parent, &stages[i]))
		parent = &stages[i]
	}
	assert.Nil(t, m.GetMetric("acme-svc-a-main"))

	pg := &model.PipelineGraph{Name: "acme-svc-a-main", Stages: stages}
	require.NoError(t, opt.AfterCompile(pg, 1500*time.Microsecond))
	require.NoError(t, opt.AfterCompile(pg, 1500*time.Microsecond))
	require.NoError(t, opt.Finish())

	mt := m.GetMetric("acme-svc-a-main")
	require.NotNil(t, mt)
	assert.Equal(t, 5, mt.TotalStages())
	assert.Equal(t, 1, mt.ApprovalGates())
	assert.Equal(t, 1, mt.KindCount(model.BuildKind))
	assert.Zero(t, mt.KindCount(model.TestKind))
	assert.Equal(t, []model.EnvironmentID{model.Dev, model.Prod}, mt.DeployEnvironments())
	assert.Equal(t, 2*time.Millisecond, mt.CompileDuration())
	assert.Len(t, m.AllMetrics(), 1)
}

func TestPipelineMeasureSkipsUnfinishedPipeline(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	opt := measure.PipelineMeasure(m)

	stage := model.StageSpec{Stage: "Source", Action: "Source", Kind: model.SourceKind}
	require.NoError(t, opt.PrepareStage("acme-svc-a-main", nil, &stage))
	assert.Empty(t, m.AllMetrics())
	assert.Error(t, opt.AfterCompile(nil, time.Second))
}
