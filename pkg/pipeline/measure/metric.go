package measure

import (
	"sync"
	"time"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

type DefaultMetric struct {
	mu          *sync.Mutex
	kind        model.StepKind
	stepElapsed time.Duration
	total       int64
	cacheHits   int64
	rowsRemoved int64
	rowsAdded   int64
	lastIn      int
	lastOut     int
}

func (mt *DefaultMetric) AddFit(report model.FitReport) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.total++
	mt.stepElapsed += report.Duration
	if report.Cached {
		mt.cacheHits++
	}
	if diff := report.RowsIn - report.RowsOut; diff > 0 {
		mt.rowsRemoved += int64(diff)
	} else {
		mt.rowsAdded += int64(-diff)
	}
	mt.lastIn, mt.lastOut = report.RowsIn, report.RowsOut
}

func (mt *DefaultMetric) Kind() model.StepKind {
	return mt.kind
}

func (mt *DefaultMetric) Fits() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.total
}

func (mt *DefaultMetric) CacheHits() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.cacheHits
}

func (mt *DefaultMetric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.total == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.stepElapsed) / float64(mt.total)))
}

func (mt *DefaultMetric) GetTotalDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.stepElapsed
}

func (mt *DefaultMetric) RowsRemoved() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.rowsRemoved
}

func (mt *DefaultMetric) RowsAdded() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.rowsAdded
}

func (mt *DefaultMetric) LastRows() (int, int) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.lastIn, mt.lastOut
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
