package pipeline

import (
	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/cicd-assembler/internal/store"
	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

// Edge attributes set on topology edges.
const (
	EdgeKindAttribute     = "kind"
	EdgeArtifactAttribute = "artifact"

	SequenceEdge = "sequence"
	ArtifactEdge = "artifact"
)

// VertexKindAttribute holds the model.StageKind of a topology vertex.
const VertexKindAttribute = "kind"

func stageHash(stage model.StageSpec) string {
	return stage.Key()
}

// Topology returns the dependency graph of pg. Vertices are actions keyed by
// model.StageSpec.Key and weighted by their position. Every action has a sequence edge to the
// next one, and every artifact has an edge from its producer to each of its consumers.
// Vertices and edges are listed in insertion order.
func Topology(pg *model.PipelineGraph) (graph.Graph[string, model.StageSpec], error) {
	topo := graph.NewWithStore(stageHash, store.NewStageStore(), graph.Directed(), graph.PreventCycles(), graph.Weighted())

	producers := make(map[model.ArtifactRef]string, len(pg.Stages))
	for idx, stage := range pg.Stages {
		err := topo.AddVertex(stage,
			graph.VertexWeight(idx),
			graph.VertexAttribute(VertexKindAttribute, string(stage.Kind)),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add action %s", stage.Key())
		}

		if idx > 0 {
			err = topo.AddEdge(pg.Stages[idx-1].Key(), stage.Key(),
				graph.EdgeWeight(1),
				graph.EdgeAttribute(EdgeKindAttribute, SequenceEdge),
			)
			if err != nil {
				return nil, errors.Wrapf(err, "unable to link %s to %s", pg.Stages[idx-1].Key(), stage.Key())
			}
		}

		if !stage.InputArtifact.IsZero() {
			err = linkArtifact(topo, producers, stage)
			if err != nil {
				return nil, err
			}
		}

		if !stage.OutputArtifact.IsZero() {
			producers[stage.OutputArtifact] = stage.Key()
		}
	}

	return topo, nil
}

func linkArtifact(topo graph.Graph[string, model.StageSpec], producers map[model.ArtifactRef]string, stage model.StageSpec) error {
	producer, ok := producers[stage.InputArtifact]
	if !ok {
		return errors.Wrapf(ErrInvalidGraph, "%s consumes %s before it is produced", stage.Key(), stage.InputArtifact)
	}

	options := []func(*graph.EdgeProperties){
		graph.EdgeWeight(1),
		graph.EdgeAttribute(EdgeKindAttribute, ArtifactEdge),
		graph.EdgeAttribute(EdgeArtifactAttribute, string(stage.InputArtifact)),
	}

	err := topo.AddEdge(producer, stage.Key(), options...)
	if errors.Is(err, graph.ErrEdgeAlreadyExists) {
		err = topo.UpdateEdge(producer, stage.Key(), options...)
	}
	if err != nil {
		return errors.Wrapf(err, "unable to link artifact %s from %s to %s", stage.InputArtifact, producer, stage.Key())
	}

	return nil
}
