package measure

import (
	"time"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

type Measure interface {
	AddMetric(name string, kind model.StepKind) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

type Metric interface {
	AddFit(report model.FitReport)
	Kind() model.StepKind
	Fits() int64
	CacheHits() int64
	AVGDuration() time.Duration
	GetTotalDuration() time.Duration
	// RowsRemoved is the number of rows dropped over all fits. RowsAdded is the number of rows created.
	RowsRemoved() int64
	RowsAdded() int64
	LastRows() (in, out int)
}
