package measure

import (
	"sync"
)

type DefaultMeasure struct {
	mu        sync.RWMutex
	Pipelines map[string]Metric
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		Pipelines: make(map[string]Metric),
	}
}

func (m *DefaultMeasure) AddMetric(pipelineName string) Metric {
	mt := newDefaultMetric()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Pipelines[pipelineName] = mt

	return mt
}

// GetMetric returns nil for a pipeline that was never registered.
func (m *DefaultMeasure) GetMetric(pipelineName string) Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.Pipelines[pipelineName]
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make(map[string]Metric, len(m.Pipelines))
	for name, mt := range m.Pipelines {
		res[name] = mt
	}

	return res
}

var _ Measure = (*DefaultMeasure)(nil)
