package pipeline

import (
	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

// PromotionPath returns the shortest chain of actions a commit goes through before it is
// deployed to env, from the source action to the deploy action.
func PromotionPath(pg *model.PipelineGraph, env model.EnvironmentID) ([]string, error) {
	deploy, ok := pg.Find(model.DeployKind, env)
	if !ok {
		return nil, errors.Errorf("pipeline %s does not deploy to %s", pg.Name, env)
	}

	source, ok := pg.Find(model.SourceKind, "")
	if !ok {
		return nil, errors.Wrapf(ErrInvalidGraph, "pipeline %s has no source action", pg.Name)
	}

	topo, err := Topology(pg)
	if err != nil {
		return nil, errors.Wrap(err, "unable to build topology")
	}

	path, err := graph.ShortestPath(topo, source.Key(), deploy.Key())
	if err != nil {
		return nil, errors.Wrapf(err, "unable to find a path from %s to %s", source.Key(), deploy.Key())
	}

	return path, nil
}
