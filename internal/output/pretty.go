package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

// PathReport is the promotion path of a pipeline to one environment.
type PathReport struct {
	Pipeline    string              `json:"pipeline"`
	Environment model.EnvironmentID `json:"environment"`
	Actions     []string            `json:"actions"`
}

// PrettyRenderer renders compiled graphs in a human-friendly format.
type PrettyRenderer struct {
	out io.Writer
}

// NewPretty creates a PrettyRenderer writing to the provided writer.
func NewPretty(out io.Writer) *PrettyRenderer {
	return &PrettyRenderer{out: out}
}

// Render lists every pipeline stage by stage, then the rejected descriptors and a summary.
func (p *PrettyRenderer) Render(report Report) error {
	var buffer bytes.Buffer

	for _, pg := range report.Pipelines {
		writeGraph(&buffer, pg)
	}

	for _, rejection := range report.Errors {
		fmt.Fprintf(&buffer, "Rejected %s\n", rejection.Message)
	}

	fmt.Fprintf(&buffer, "SUMMARY: %d compiled, %d rejected\n", report.Summary.Compiled, report.Summary.Rejected)

	_, err := buffer.WriteTo(p.out)

	return err
}

// RenderPath lists the actions of a promotion path.
func (p *PrettyRenderer) RenderPath(path *PathReport) error {
	_, err := fmt.Fprintf(p.out, "Pipeline %s to %s\n  %s\n", path.Pipeline, path.Environment, strings.Join(path.Actions, " -> "))

	return err
}

func writeGraph(buffer *bytes.Buffer, pg *model.PipelineGraph) {
	fmt.Fprintf(buffer, "Pipeline %s (%s@%s)\n", pg.Name, pg.Repository, pg.Branch)

	for _, phase := range pg.Phases() {
		fmt.Fprintf(buffer, "  Stage %s\n", phase.Name)
		for _, action := range phase.Actions {
			fmt.Fprintf(buffer, "    • %s\n", describeAction(action))
		}
	}

	for _, hook := range pg.CommitHooks {
		owner := ""
		if hook.Owner != "" {
			owner = hook.Owner + "/"
		}
		fmt.Fprintf(buffer, "  On commit: %s %s%s@%s\n", hook.Trigger, owner, hook.Repository, hook.Branch)
	}
	for _, schedule := range pg.Schedules {
		fmt.Fprintf(buffer, "  On schedule: %s (%s)\n", schedule.Expression, schedule.Rule)
	}
	fmt.Fprintf(buffer, "  Version: %s (initial %s)\n", pg.Version.Parameter, pg.Version.Initial)
	fmt.Fprintf(buffer, "  Notifications: %s\n", pg.Notification.Topic)
}

func describeAction(action model.StageSpec) string {
	var sb strings.Builder

	sb.WriteString(action.Action)
	if action.Kind != model.StageKind(action.Action) {
		fmt.Fprintf(&sb, " [%s]", action.Kind)
	}
	if action.Environment != "" {
		fmt.Fprintf(&sb, " env=%s", action.Environment)
	}
	if action.RunOrder != model.DefaultRunOrder {
		fmt.Fprintf(&sb, " run_order=%d", action.RunOrder)
	}
	if !action.InputArtifact.IsZero() || !action.OutputArtifact.IsZero() {
		fmt.Fprintf(&sb, " %s -> %s", artifactLabel(action.InputArtifact), artifactLabel(action.OutputArtifact))
	}
	if action.Project != "" {
		fmt.Fprintf(&sb, " (%s)", action.Project)
	}

	return sb.String()
}

func artifactLabel(ref model.ArtifactRef) string {
	if ref.IsZero() {
		return "-"
	}

	return string(ref)
}
