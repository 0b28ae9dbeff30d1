package measure

import (
	"sync"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

type DefaultMeasure struct {
	Steps map[string]Metric
	mu    sync.Mutex
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		Steps: make(map[string]Metric),
	}
}

// AddMetric returns the metric of the step, creating it when the step is new or changed kind.
func (m *DefaultMeasure) AddMetric(name string, kind model.StepKind) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mt, ok := m.Steps[name]; ok && mt.Kind() == kind {
		return mt
	}

	mt := &DefaultMetric{
		mu:   &sync.Mutex{},
		kind: kind,
	}
	m.Steps[name] = mt

	return mt
}

func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Steps[name]
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Metric, len(m.Steps))
	for name, mt := range m.Steps {
		out[name] = mt
	}

	return out
}

var _ Measure = (*DefaultMeasure)(nil)
