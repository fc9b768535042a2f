package pipeline

import (
	"strings"

	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

// AttachTriggers annotates graph with the schedule of desc, if any. The commit hook declared by
// the source binding stays in place: both triggers can start the pipeline.
//
// graph is not modified; an annotated copy is returned when there is something to attach.
func AttachTriggers(graph *model.PipelineGraph, desc model.RepoDescriptor) *model.PipelineGraph {
	cron := strings.TrimSpace(desc.Cron)
	if cron == "" {
		return graph
	}

	out := graph.Clone()
	out.Schedules = append(out.Schedules, model.ScheduleAnnotation{
		Rule:       resourceName(graph.Name, "trigger"),
		Expression: cron,
		Target:     SourceStageName,
	})

	return out
}
