package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/cicd-assembler/internal/config"
	"github.com/askiada/cicd-assembler/internal/ctxlog"
	"github.com/askiada/cicd-assembler/internal/output"
	"github.com/askiada/cicd-assembler/pkg/pipeline"
	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

const (
	formatPretty = "pretty"
	formatJSON   = "json"
)

// compileBatch loads the settings, compiles the selected descriptors and runs the finish hooks
// of opts.
func compileBatch(cmd *cobra.Command, opts ...model.CompileOption) (output.Report, error) {
	flags := cmd.Flags()

	cfgPath, err := flags.GetString("config")
	if err != nil {
		return output.Report{}, errors.Wrap(err, "unable to parse --config")
	}
	group, err := flags.GetString("group")
	if err != nil {
		return output.Report{}, errors.Wrap(err, "unable to parse --group")
	}
	concurrency, err := flags.GetInt("concurrency")
	if err != nil {
		return output.Report{}, errors.Wrap(err, "unable to parse --concurrency")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return output.Report{}, err
	}

	descriptors, err := cfg.Descriptors(group)
	if err != nil {
		return output.Report{}, err
	}

	options := []pipeline.Option{pipeline.WithCompileOptions(opts...)}
	if concurrency > 0 {
		options = append(options, pipeline.WithConcurrency(concurrency))
	}

	compiler, err := pipeline.New(cfg.Prefix(), cfg.Policy(), options...)
	if err != nil {
		return output.Report{}, errors.Wrap(err, "unable to create compiler")
	}

	ctxlog.FromContext(cmd.Context()).Debug("compiling", "config", cfgPath, "group", group, "descriptors", len(descriptors))

	results, err := compiler.CompileAll(cmd.Context(), descriptors)
	if err != nil {
		return output.Report{}, errors.Wrap(err, "unable to compile descriptors")
	}

	err = compiler.Finish()
	if err != nil {
		return output.Report{}, err
	}

	return output.NewReport(results), nil
}
