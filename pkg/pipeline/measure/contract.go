package measure

import (
	"time"

	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

// Measure holds one Metric per compiled pipeline.
type Measure interface {
	// AddMetric registers a fresh metric for a pipeline, replacing any previous one.
	AddMetric(pipelineName string) Metric
	GetMetric(pipelineName string) Metric
	AllMetrics() map[string]Metric
}

// Metric describes the shape of a compiled pipeline.
type Metric interface {
	AddStage(kind model.StageKind, env model.EnvironmentID)
	KindCount(kind model.StageKind) int
	TotalStages() int
	ApprovalGates() int
	DeployEnvironments() []model.EnvironmentID
	SetCompileDuration(elapsed time.Duration)
	CompileDuration() time.Duration
}
