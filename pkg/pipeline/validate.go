package pipeline

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

const paramSep = "__"

var reservedNames = map[string]struct{}{
	"steps":   {},
	"memory":  {},
	"verbose": {},
}

func isPassthrough(est any) bool {
	if est == nil {
		return true
	}
	_, ok := est.(passthrough)

	return ok
}

func validateNames(steps []Step) error {
	seen := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		switch {
		case step.Name == "":
			return errors.Wrap(ErrInvalidStepName, "names must not be empty")
		case strings.Contains(step.Name, paramSep):
			return errors.Wrapf(ErrInvalidStepName, "%q must not contain %q", step.Name, paramSep)
		}
		if _, ok := reservedNames[step.Name]; ok {
			return errors.Wrapf(ErrInvalidStepName, "%q conflicts with a pipeline parameter", step.Name)
		}
		if _, ok := seen[step.Name]; ok {
			return errors.Wrapf(ErrInvalidStepName, "%q is not unique", step.Name)
		}
		seen[step.Name] = struct{}{}
	}

	return nil
}

// intermediateKind inspects the capabilities of a non-final step.
func intermediateKind(est any) (model.StepKind, error) {
	if isPassthrough(est) {
		return model.PassthroughKind, nil
	}
	if _, ok := est.(*Pipeline); ok {
		return "", ErrNestedPipeline
	}

	_, fitter := est.(model.Fitter)
	_, fitTransformer := est.(model.FitTransformer)
	_, transformer := est.(model.Transformer)
	_, resampler := est.(model.Resampler)

	switch {
	case resampler && (transformer || fitTransformer):
		return "", ErrTransformAndResample
	case resampler:
		return model.ResamplerKind, nil
	case transformer && (fitter || fitTransformer):
		return model.TransformerKind, nil
	}

	return "", ErrInvalidStep
}

func finalKind(est any) (model.StepKind, error) {
	if isPassthrough(est) {
		return model.PassthroughKind, nil
	}
	if _, ok := est.(model.Fitter); ok {
		return model.EstimatorKind, nil
	}
	if _, ok := est.(model.Resampler); ok {
		return model.ResamplerKind, nil
	}

	return "", ErrInvalidFinalStep
}

// Validate checks the step names and the capabilities of every step.
func (p *Pipeline) Validate() error {
	_, err := p.stepInfos()

	return err
}

func (p *Pipeline) stepInfos() ([]*model.StepInfo, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}
	if len(p.steps) == 0 {
		return nil, ErrNoSteps
	}
	if err := validateNames(p.steps); err != nil {
		return nil, err
	}

	last := len(p.steps) - 1
	infos := make([]*model.StepInfo, len(p.steps))
	for idx, step := range p.steps {
		var (
			kind model.StepKind
			err  error
		)
		if idx == last {
			kind, err = finalKind(step.Estimator)
		} else {
			kind, err = intermediateKind(step.Estimator)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "step %q (%T)", step.Name, step.Estimator)
		}

		infos[idx] = &model.StepInfo{
			Kind:  kind,
			Name:  step.Name,
			Type:  fmt.Sprintf("%T", step.Estimator),
			Index: idx,
			Total: len(p.steps),
		}
	}

	return infos, nil
}
