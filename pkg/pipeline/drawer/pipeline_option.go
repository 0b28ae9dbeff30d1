package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/measure"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m         measure.Measure
	startTime time.Time
	last      string
}

func (pd *pipelineDrawer) reset() error {
	err := pd.Reset()
	if err != nil {
		return errors.Wrap(err, "unable to reset drawer")
	}
	err = pd.AddStep(model.StartStep)
	if err != nil {
		return errors.Wrap(err, "unable to add start step to drawer")
	}
	err = pd.AddStep(model.EndStep)
	if err != nil {
		return errors.Wrap(err, "unable to add end step to drawer")
	}
	pd.startTime = time.Now()
	pd.last = model.StartStep.Name

	return nil
}

func (pd *pipelineDrawer) New() error {
	return pd.reset()
}

// PrepareStep redraws the whole chain at the start of every fit, the steps may have changed since the last one.
func (pd *pipelineDrawer) PrepareStep(parentStep, step *model.StepInfo) error {
	if parentStep == model.StartStep {
		if err := pd.reset(); err != nil {
			return err
		}
	}

	err := pd.AddStep(step)
	if err != nil {
		return err
	}
	err = pd.AddLink(parentStep.Name, step.Name)
	if err != nil {
		return err
	}
	pd.last = step.Name

	return nil
}

func (pd *pipelineDrawer) OnStepFit(_ *model.StepInfo, _ model.FitReport) error {
	return nil
}

func (pd *pipelineDrawer) Finish() error {
	err := pd.AddLink(pd.last, model.EndStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to link last step")
	}

	if pd.m != nil {
		err := pd.SetTotalTime(model.EndStep.Name, pd.startTime)
		if err != nil {
			return errors.Wrap(err, "unable to set total time")
		}
		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer draws the pipeline after every fit. measure may be nil.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, m: measure}
}
