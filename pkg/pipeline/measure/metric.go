package measure

import (
	"sync"
	"time"

	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

type DefaultMetric struct {
	mu              *sync.Mutex
	kinds           map[model.StageKind]int
	deploys         []model.EnvironmentID
	total           int
	compileDuration time.Duration
}

func newDefaultMetric() *DefaultMetric {
	return &DefaultMetric{
		mu:    &sync.Mutex{},
		kinds: make(map[model.StageKind]int),
	}
}

func (mt *DefaultMetric) AddStage(kind model.StageKind, env model.EnvironmentID) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.total++
	mt.kinds[kind]++
	if kind == model.DeployKind {
		mt.deploys = append(mt.deploys, env)
	}
}

func (mt *DefaultMetric) KindCount(kind model.StageKind) int {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.kinds[kind]
}

func (mt *DefaultMetric) TotalStages() int {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.total
}

func (mt *DefaultMetric) ApprovalGates() int {
	return mt.KindCount(model.ApprovalKind)
}

// DeployEnvironments returns the deployed environments in promotion order.
func (mt *DefaultMetric) DeployEnvironments() []model.EnvironmentID {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return append([]model.EnvironmentID(nil), mt.deploys...)
}

func (mt *DefaultMetric) SetCompileDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.compileDuration = round(elapsed)
}

func (mt *DefaultMetric) CompileDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.compileDuration
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Hour)
	case d > time.Minute:
		d = d.Round(time.Minute)
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}

var _ Metric = (*DefaultMetric)(nil)
