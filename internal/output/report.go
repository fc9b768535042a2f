package output

import (
	"github.com/pkg/errors"

	"github.com/askiada/cicd-assembler/pkg/pipeline"
	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

// Report captures the outcome of a batch compilation.
type Report struct {
	Pipelines []*model.PipelineGraph `json:"pipelines"`
	Errors    []Rejection            `json:"errors,omitempty"`
	Summary   Summary                `json:"summary"`
}

// Rejection describes a descriptor that did not compile.
type Rejection struct {
	Repository string `json:"repository,omitempty"`
	Branch     string `json:"branch,omitempty"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`
}

// Summary counts compiled and rejected descriptors.
type Summary struct {
	Compiled int `json:"compiled"`
	Rejected int `json:"rejected"`
}

// NewReport builds a report from compilation results, keeping their order.
func NewReport(results []pipeline.Result) Report {
	graphs, errs := pipeline.SplitResults(results)

	report := Report{
		Pipelines: graphs,
		Summary:   Summary{Compiled: len(graphs), Rejected: len(errs)},
	}
	if report.Pipelines == nil {
		report.Pipelines = []*model.PipelineGraph{}
	}

	for _, err := range errs {
		report.Errors = append(report.Errors, NewRejection(err))
	}

	return report
}

// NewRejection describes err, filling the descriptor fields when err is a *pipeline.ConfigError.
func NewRejection(err error) Rejection {
	rejection := Rejection{Message: err.Error()}

	var cfgErr *pipeline.ConfigError
	if errors.As(err, &cfgErr) {
		rejection.Repository = cfgErr.Repository
		rejection.Branch = cfgErr.Branch
		rejection.Field = cfgErr.Field
	}

	return rejection
}
