package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/cicd-assembler/internal/ctxlog"
	"github.com/askiada/cicd-assembler/internal/server"
	"github.com/askiada/cicd-assembler/pkg/pipeline/drawer"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compiled pipelines over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("addr", ":8080", "listen address")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return errors.Wrap(err, "unable to parse --addr")
	}

	report, err := compileBatch(cmd)
	if err != nil {
		return err
	}

	if report.Summary.Rejected > 0 {
		ctxlog.FromContext(cmd.Context()).Warn("serving with rejected descriptors", "rejected", report.Summary.Rejected)
	}

	return server.New(report, drawer.NewDOTDrawer()).Run(cmd.Context(), addr)
}
