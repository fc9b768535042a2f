package main

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/cicd-assembler/internal/ctxlog"
	"github.com/askiada/cicd-assembler/pkg/pipeline/drawer"
	"github.com/askiada/cicd-assembler/pkg/pipeline/measure"
)

func newDrawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Write one Graphviz DOT file per compiled pipeline",
		Args:  cobra.NoArgs,
		RunE:  runDraw,
	}
	cmd.Flags().String("out", "graphs", "directory the DOT files are written to")

	return cmd
}

func runDraw(cmd *cobra.Command, _ []string) error {
	dir, err := cmd.Flags().GetString("out")
	if err != nil {
		return errors.Wrap(err, "unable to parse --out")
	}

	m := measure.NewDefaultMeasure()
	report, err := compileBatch(cmd,
		drawer.PipelineDrawer(drawer.NewDOTDrawer(), dir),
		measure.PipelineMeasure(m),
	)
	if err != nil {
		return err
	}

	logger := ctxlog.FromContext(cmd.Context())
	for _, pg := range report.Pipelines {
		if mt := m.GetMetric(pg.Name); mt != nil {
			logger.Info("pipeline drawn",
				"pipeline", pg.Name,
				"actions", mt.TotalStages(),
				"approvals", mt.ApprovalGates(),
				"environments", mt.DeployEnvironments(),
				"compile_duration", mt.CompileDuration(),
			)
		}
		fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(dir, pg.Name+".dot"))
	}

	for _, rejection := range report.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "rejected: %s\n", rejection.Message)
	}

	return rejectedError(report.Summary.Rejected)
}
