package pipeline

import (
	"context"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/cicd-assembler/internal/ctxlog"
	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

// Compiler compiles descriptors against a fixed prefix and policy.
type Compiler struct {
	prefix     string
	policy     model.Policy
	opts       []model.CompileOption
	concurrent int
}

// Result is the outcome of compiling one descriptor: either Graph or Err is set.
type Result struct {
	Descriptor model.RepoDescriptor
	Graph      *model.PipelineGraph
	Err        error
}

// New creates a compiler. The policy is read, never written, and must not be mutated by the
// caller while the compiler is in use.
func New(prefix string, policy model.Policy, options ...Option) (*Compiler, error) {
	c := &Compiler{
		prefix:     prefix,
		policy:     policy,
		concurrent: runtime.GOMAXPROCS(0),
	}

	for _, option := range options {
		option(c)
	}

	for _, opt := range c.opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply compile option")
		}
	}

	return c, nil
}

// Compile compiles a single descriptor and runs the option hooks.
func (c *Compiler) Compile(desc model.RepoDescriptor) (*model.PipelineGraph, error) {
	start := time.Now()
	name := DeriveName(c.prefix, desc)

	pg, err := build(desc, c.prefix, c.policy, func(parent, stage *model.StageSpec) error {
		for _, opt := range c.opts {
			err := opt.PrepareStage(name, parent, stage)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	for _, opt := range c.opts {
		err := opt.AfterCompile(pg, elapsed)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to run after compile hook for %s", pg.Name)
		}
	}

	return pg, nil
}

// CompileAll compiles descriptors in parallel. Results keep the order of descriptors.
//
// A ConfigError only fails its own descriptor. When several descriptors derive the same
// pipeline name, the first one is compiled and the others fail with ErrDuplicatePipelineName.
// The returned error is set when an option hook fails or ctx is cancelled.
func (c *Compiler) CompileAll(ctx context.Context, descriptors []model.RepoDescriptor) ([]Result, error) {
	logger := ctxlog.FromContext(ctx)
	results := make([]Result, len(descriptors))

	owners := make(map[string]string, len(descriptors))
	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(c.concurrent)

	for idx, desc := range descriptors {
		idx, desc := idx, desc
		results[idx].Descriptor = desc

		err := precheck(desc)
		if err != nil {
			results[idx].Err = err

			continue
		}

		name := DeriveName(c.prefix, desc)
		if owner, ok := owners[name]; ok {
			results[idx].Err = newConfigError(desc, "pipelineName", errors.Wrapf(ErrDuplicatePipelineName, "%s is already derived for %s", name, owner))

			continue
		}
		owners[name] = desc.Key()

		errGrp.Go(func() error {
			if err := dCtx.Err(); err != nil {
				return err
			}

			pg, err := c.Compile(desc)
			if err != nil && !IsConfigError(err) {
				return errors.Wrapf(err, "unable to compile %s", desc.Key())
			}

			results[idx].Graph = pg
			results[idx].Err = err

			return nil
		})
	}

	err := errGrp.Wait()
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		if res.Err != nil {
			logger.Warn("descriptor rejected", "descriptor", res.Descriptor.Key(), "error", res.Err)

			continue
		}
		logger.Debug("pipeline compiled", "pipeline", res.Graph.Name, "stages", len(res.Graph.Stages))
	}

	return results, nil
}

// precheck rejects a descriptor before it claims a pipeline name.
func precheck(desc model.RepoDescriptor) error {
	err := validateDescriptor(desc)
	if err != nil {
		return err
	}

	_, err = BindSource(desc)

	return err
}

// Finish runs the finish hook of every option.
func (c *Compiler) Finish() error {
	for _, opt := range c.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish compile option")
		}
	}

	return nil
}

// SplitResults separates compiled graphs from rejected descriptors, keeping their order.
func SplitResults(results []Result) ([]*model.PipelineGraph, []error) {
	var (
		graphs []*model.PipelineGraph
		errs   []error
	)

	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)

			continue
		}
		graphs = append(graphs, res.Graph)
	}

	return graphs, errs
}
