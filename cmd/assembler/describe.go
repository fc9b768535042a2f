package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/cicd-assembler/internal/output"
	"github.com/askiada/cicd-assembler/pkg/pipeline"
	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

func newDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <pipeline>",
		Short: "Print the promotion path of a pipeline to an environment",
		Args:  cobra.ExactArgs(1),
		RunE:  runDescribe,
	}
	cmd.Flags().String("env", "", "target environment (defaults to the last one deployed)")
	cmd.Flags().String("format", formatPretty, "output format (pretty|json)")

	return cmd
}

func runDescribe(cmd *cobra.Command, args []string) error {
	env, err := cmd.Flags().GetString("env")
	if err != nil {
		return errors.Wrap(err, "unable to parse --env")
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return errors.Wrap(err, "unable to parse --format")
	}

	report, err := compileBatch(cmd)
	if err != nil {
		return err
	}

	var pg *model.PipelineGraph
	for _, candidate := range report.Pipelines {
		if candidate.Name == args[0] {
			pg = candidate

			break
		}
	}
	if pg == nil {
		return errors.Errorf("pipeline %q not found", args[0])
	}

	target := model.EnvironmentID(env)
	if target == "" {
		target = lastDeploy(pg)
	}

	actions, err := pipeline.PromotionPath(pg, target)
	if err != nil {
		return err
	}

	path := &output.PathReport{Pipeline: pg.Name, Environment: target, Actions: actions}
	if strings.EqualFold(format, formatJSON) {
		return output.NewJSON(cmd.OutOrStdout()).RenderPath(path)
	}

	return output.NewPretty(cmd.OutOrStdout()).RenderPath(path)
}

func lastDeploy(pg *model.PipelineGraph) model.EnvironmentID {
	var env model.EnvironmentID
	for _, stage := range pg.Stages {
		if stage.Kind == model.DeployKind {
			env = stage.Environment
		}
	}

	return env
}
