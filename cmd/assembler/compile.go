package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/cicd-assembler/internal/output"
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile every descriptor and print the pipeline graphs",
		Args:  cobra.NoArgs,
		RunE:  runCompile,
	}
	cmd.Flags().String("format", formatPretty, "output format (pretty|json)")

	return cmd
}

func runCompile(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return errors.Wrap(err, "unable to parse --format")
	}
	format = strings.ToLower(format)
	if format != formatPretty && format != formatJSON {
		return errors.Errorf("unsupported format %q", format)
	}

	report, err := compileBatch(cmd)
	if err != nil {
		return err
	}

	switch format {
	case formatJSON:
		err = output.NewJSON(cmd.OutOrStdout()).Render(report)
	default:
		err = output.NewPretty(cmd.OutOrStdout()).Render(report)
	}
	if err != nil {
		return errors.Wrap(err, "unable to render report")
	}

	return rejectedError(report.Summary.Rejected)
}
