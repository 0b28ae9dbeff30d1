package measure

import (
	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	return nil
}

func (pm *pipelineMeasure) PrepareStep(_, step *model.StepInfo) error {
	if step.Kind == model.PassthroughKind {
		return nil
	}
	pm.AddMetric(step.Name, step.Kind)

	return nil
}

func (pm *pipelineMeasure) OnStepFit(step *model.StepInfo, report model.FitReport) error {
	mt := pm.GetMetric(step.Name)
	if mt == nil {
		mt = pm.AddMetric(step.Name, step.Kind)
	}
	mt.AddFit(report)

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	return nil
}

// PipelineMeasure records the fit of every step in measure.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
