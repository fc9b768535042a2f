package measure

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	return nil
}

func (pm *pipelineMeasure) PrepareStage(string, *model.StageSpec, *model.StageSpec) error {
	return nil
}

// AfterCompile records a fresh metric from the finished graph, so recompiling a pipeline does
// not double its counts and a failed build leaves nothing behind.
func (pm *pipelineMeasure) AfterCompile(pg *model.PipelineGraph, elapsed time.Duration) error {
	if pg == nil {
		return errors.New("no pipeline graph to measure")
	}

	mt := pm.AddMetric(pg.Name)
	for _, stage := range pg.Stages {
		mt.AddStage(stage.Kind, stage.Environment)
	}
	mt.SetCompileDuration(elapsed)

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	return nil
}

// PipelineMeasure returns an option recording the shape of every compiled pipeline in measure.
func PipelineMeasure(measure Measure) model.CompileOption {
	return &pipelineMeasure{measure}
}
