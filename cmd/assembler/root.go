package main

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/cicd-assembler/internal/ctxlog"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "assembler",
		Short:             "Assembler compiles repository descriptors into CI/CD pipeline graphs",
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogger,
	}

	persistent := cmd.PersistentFlags()
	persistent.StringP("config", "c", "project-config.json", "project settings file (.json|.yaml|.yml|.hcl)")
	persistent.String("group", "", "only compile the repositories of this group")
	persistent.Int("concurrency", 0, "descriptors compiled at once (0 means GOMAXPROCS)")
	persistent.String("log-level", "info", "log level (debug|info|warn|error)")

	cmd.AddCommand(newCompileCmd())
	cmd.AddCommand(newDrawCmd())
	cmd.AddCommand(newDescribeCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

func setupLogger(cmd *cobra.Command, _ []string) error {
	raw, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return errors.Wrap(err, "unable to parse --log-level")
	}

	var level slog.Level
	err = level.UnmarshalText([]byte(raw))
	if err != nil {
		return errors.Wrapf(err, "invalid --log-level %q", raw)
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))

	return nil
}
