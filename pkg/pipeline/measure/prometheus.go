package measure

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

const namespace = "resample_pipeline"

// Prometheus exports the step fits of a pipeline as Prometheus metrics.
type Prometheus struct {
	duration    *prometheus.HistogramVec
	rowsRemoved *prometheus.CounterVec
	rowsAdded   *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
	fits        prometheus.Counter
}

// NewPrometheus registers the pipeline metrics in reg. pipelineName tells the pipelines sharing reg apart.
func NewPrometheus(reg prometheus.Registerer, pipelineName string) (*Prometheus, error) {
	labels := prometheus.Labels{"pipeline": pipelineName}
	pm := &Prometheus{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "step_fit_duration_seconds",
			Help:        "Time spent fitting a pipeline step.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"step", "kind"}),
		rowsRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "step_rows_removed_total",
			Help:        "Rows removed by a resampling step while fitting.",
			ConstLabels: labels,
		}, []string{"step"}),
		rowsAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "step_rows_added_total",
			Help:        "Rows created by a resampling step while fitting.",
			ConstLabels: labels,
		}, []string{"step"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "step_cache_hits_total",
			Help:        "Steps loaded from the memory instead of being fitted.",
			ConstLabels: labels,
		}, []string{"step"}),
		fits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "fits_total",
			Help:        "Completed pipeline fits.",
			ConstLabels: labels,
		}),
	}

	for _, c := range []prometheus.Collector{pm.duration, pm.rowsRemoved, pm.rowsAdded, pm.cacheHits, pm.fits} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "unable to register pipeline metric")
		}
	}

	return pm, nil
}

func (pm *Prometheus) New() error {
	return nil
}

func (pm *Prometheus) PrepareStep(_, _ *model.StepInfo) error {
	return nil
}

func (pm *Prometheus) OnStepFit(step *model.StepInfo, report model.FitReport) error {
	pm.duration.WithLabelValues(step.Name, string(step.Kind)).Observe(report.Duration.Seconds())
	if report.Cached {
		pm.cacheHits.WithLabelValues(step.Name).Inc()
	}
	if diff := report.RowsIn - report.RowsOut; diff > 0 {
		pm.rowsRemoved.WithLabelValues(step.Name).Add(float64(diff))
	} else if diff < 0 {
		pm.rowsAdded.WithLabelValues(step.Name).Add(float64(-diff))
	}

	return nil
}

func (pm *Prometheus) Finish() error {
	pm.fits.Inc()

	return nil
}

var _ model.PipelineOption = (*Prometheus)(nil)
