package store_test

import (
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/cicd-assembler/internal/store"
	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

func stage(name string) model.StageSpec {
	return model.StageSpec{Stage: name, Action: name, RunOrder: 1}
}

func newGraph(t *testing.T, names ...string) graph.Graph[string, model.StageSpec] {
	t.Helper()

	g := graph.NewWithStore(model.StageSpec.Key, store.NewStageStore(), graph.Directed(), graph.PreventCycles())
	for _, name := range names {
		require.NoError(t, g.AddVertex(stage(name)))
	}

	return g
}

func TestStageStoreInsertionOrder(t *testing.T) {
	t.Parallel()

	s := store.NewStageStore()
	for _, name := range []string{"Source", "Build", "Test", "Deploy"} {
		require.NoError(t, s.AddVertex(name+"/"+name, stage(name), graph.VertexProperties{}))
	}

	keys, err := s.ListVertices()
	require.NoError(t, err)
	assert.Equal(t, []string{"Source/Source", "Build/Build", "Test/Test", "Deploy/Deploy"}, keys)

	count, err := s.VertexCount()
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	require.ErrorIs(t, s.AddVertex("Build/Build", stage("Build"), graph.VertexProperties{}), graph.ErrVertexAlreadyExists)

	require.NoError(t, s.RemoveVertex("Build/Build"))
	keys, err = s.ListVertices()
	require.NoError(t, err)
	assert.Equal(t, []string{"Source/Source", "Test/Test", "Deploy/Deploy"}, keys)

	_, _, err = s.Vertex("Build/Build")
	require.ErrorIs(t, err, graph.ErrVertexNotFound)
}

func TestStageStoreEdges(t *testing.T) {
	t.Parallel()

	g := newGraph(t, "Source", "Build", "Test")
	require.NoError(t, g.AddEdge("Test/Test", "Build/Build"))
	require.NoError(t, g.AddEdge("Source/Source", "Build/Build"))
	require.NoError(t, g.AddEdge("Source/Source", "Test/Test"))

	edges, err := g.Edges()
	require.NoError(t, err)
	require.Len(t, edges, 3)
	assert.Equal(t, "Test/Test", edges[0].Source)
	assert.Equal(t, "Source/Source", edges[1].Source)
	assert.Equal(t, "Test/Test", edges[2].Target)

	require.ErrorIs(t, g.RemoveVertex("Build/Build"), graph.ErrVertexHasEdges)

	require.NoError(t, g.RemoveEdge("Source/Source", "Build/Build"))
	edges, err = g.Edges()
	require.NoError(t, err)
	assert.Len(t, edges, 2)

	_, err = g.Edge("Source/Source", "Build/Build")
	require.ErrorIs(t, err, graph.ErrEdgeNotFound)
}

func TestStageStoreCreatesCycle(t *testing.T) {
	t.Parallel()

	g := newGraph(t, "Source", "Build", "Test")
	require.NoError(t, g.AddEdge("Source/Source", "Build/Build"))
	require.NoError(t, g.AddEdge("Build/Build", "Test/Test"))

	require.ErrorIs(t, g.AddEdge("Test/Test", "Source/Source"), graph.ErrEdgeCreatesCycle)

	s := store.NewStageStore()
	require.NoError(t, s.AddVertex("a", stage("a"), graph.VertexProperties{}))
	cycle, err := s.CreatesCycle("a", "a")
	require.NoError(t, err)
	assert.True(t, cycle)

	_, err = s.CreatesCycle("a", "missing")
	require.Error(t, err)
}
