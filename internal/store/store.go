// Package store provides the graph.Store backing pipeline topologies.
//
// The in-memory store shipped with dominikbraun/graph lists vertices and edges in map order.
// Topologies are rendered and diffed, so this store keeps insertion order instead.
package store

import (
	"fmt"
	"sync"

	"github.com/dominikbraun/graph"

	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

// StageStore is an insertion-ordered graph.Store of pipeline actions keyed by model.StageSpec.Key.
type StageStore struct {
	lock             sync.RWMutex
	order            []string
	stages           map[string]model.StageSpec
	vertexProperties map[string]*graph.VertexProperties

	edgeOrder []edgeKey
	outEdges  map[string]map[string]graph.Edge[string] // producer -> consumer
	inEdges   map[string]map[string]graph.Edge[string] // consumer -> producer
}

type edgeKey struct {
	source, target string
}

// NewStageStore creates an empty store.
func NewStageStore() *StageStore {
	return &StageStore{
		stages:           make(map[string]model.StageSpec),
		vertexProperties: make(map[string]*graph.VertexProperties),
		outEdges:         make(map[string]map[string]graph.Edge[string]),
		inEdges:          make(map[string]map[string]graph.Edge[string]),
	}
}

func (s *StageStore) AddVertex(key string, stage model.StageSpec, p graph.VertexProperties) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.stages[key]; ok {
		return graph.ErrVertexAlreadyExists
	}

	s.order = append(s.order, key)
	s.stages[key] = stage
	s.vertexProperties[key] = &p

	return nil
}

// ListVertices returns the keys in insertion order.
func (s *StageStore) ListVertices() ([]string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return append([]string(nil), s.order...), nil
}

func (s *StageStore) VertexCount() (int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.order), nil
}

func (s *StageStore) Vertex(key string) (model.StageSpec, graph.VertexProperties, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	stage, ok := s.stages[key]
	if !ok {
		return stage, graph.VertexProperties{}, graph.ErrVertexNotFound
	}

	return stage, *s.vertexProperties[key], nil
}

func (s *StageStore) RemoveVertex(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.stages[key]; !ok {
		return graph.ErrVertexNotFound
	}

	if len(s.inEdges[key]) > 0 || len(s.outEdges[key]) > 0 {
		return graph.ErrVertexHasEdges
	}

	delete(s.inEdges, key)
	delete(s.outEdges, key)
	delete(s.stages, key)
	delete(s.vertexProperties, key)

	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)

			break
		}
	}

	return nil
}

func (s *StageStore) AddEdge(sourceKey, targetKey string, edge graph.Edge[string]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.outEdges[sourceKey]; !ok {
		s.outEdges[sourceKey] = make(map[string]graph.Edge[string])
	}
	if _, ok := s.outEdges[sourceKey][targetKey]; !ok {
		s.edgeOrder = append(s.edgeOrder, edgeKey{source: sourceKey, target: targetKey})
	}

	s.outEdges[sourceKey][targetKey] = edge

	if _, ok := s.inEdges[targetKey]; !ok {
		s.inEdges[targetKey] = make(map[string]graph.Edge[string])
	}

	s.inEdges[targetKey][sourceKey] = edge

	return nil
}

func (s *StageStore) UpdateEdge(sourceKey, targetKey string, edge graph.Edge[string]) error {
	if _, err := s.Edge(sourceKey, targetKey); err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.outEdges[sourceKey][targetKey] = edge
	s.inEdges[targetKey][sourceKey] = edge

	return nil
}

func (s *StageStore) RemoveEdge(sourceKey, targetKey string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.inEdges[targetKey], sourceKey)
	delete(s.outEdges[sourceKey], targetKey)

	for i, k := range s.edgeOrder {
		if k.source == sourceKey && k.target == targetKey {
			s.edgeOrder = append(s.edgeOrder[:i], s.edgeOrder[i+1:]...)

			break
		}
	}

	return nil
}

func (s *StageStore) Edge(sourceKey, targetKey string) (graph.Edge[string], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	edge, ok := s.outEdges[sourceKey][targetKey]
	if !ok {
		return graph.Edge[string]{}, graph.ErrEdgeNotFound
	}

	return edge, nil
}

// ListEdges returns the edges in insertion order.
func (s *StageStore) ListEdges() ([]graph.Edge[string], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	res := make([]graph.Edge[string], 0, len(s.edgeOrder))
	for _, k := range s.edgeOrder {
		res = append(res, s.outEdges[k.source][k.target])
	}

	return res, nil
}

// CreatesCycle walks the producers of source looking for target, without building the
// predecessor map graph.CreatesCycle would.
func (s *StageStore) CreatesCycle(source, target string) (bool, error) {
	if _, _, err := s.Vertex(source); err != nil {
		return false, fmt.Errorf("could not get vertex with key %v: %w", source, err)
	}

	if _, _, err := s.Vertex(target); err != nil {
		return false, fmt.Errorf("could not get vertex with key %v: %w", target, err)
	}

	if source == target {
		return true, nil
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	stack := []string{source}
	visited := make(map[string]struct{})

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := visited[current]; ok {
			continue
		}
		if current == target {
			return true, nil
		}
		visited[current] = struct{}{}

		for producer := range s.inEdges[current] {
			stack = append(stack, producer)
		}
	}

	return false, nil
}

var _ graph.Store[string, model.StageSpec] = (*StageStore)(nil)
