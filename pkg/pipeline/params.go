package pipeline

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/memory"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

// routeFitParams splits stepname__parameter keys into per-step parameters.
func (p *Pipeline) routeFitParams(params model.Params) (map[string]model.Params, error) {
	routed := make(map[string]model.Params, len(p.steps))
	for _, step := range p.steps {
		routed[step.Name] = model.Params{}
	}

	for key, value := range params {
		name, param, ok := strings.Cut(key, paramSep)
		if !ok {
			return nil, errors.Wrapf(ErrFitParam, "the pipeline does not accept the %q parameter, e.g. use %q", key, "stepname"+paramSep+key)
		}
		stepParams, ok := routed[name]
		if !ok {
			return nil, errors.Wrapf(ErrFitParam, "unknown step %q in %q", name, key)
		}
		if isPassthrough(p.steps[p.stepIndex(name)].Estimator) {
			return nil, errors.Wrapf(ErrFitParam, "step %q is passthrough and cannot take %q", name, key)
		}
		if param == "" {
			return nil, errors.Wrapf(ErrFitParam, "empty parameter name in %q", key)
		}
		stepParams[param] = value
	}

	return routed, nil
}

// GetParams returns the pipeline parameters, the steps by name, and the parameters of every step
// implementing model.ParamGetter as stepname__parameter.
func (p *Pipeline) GetParams() model.Params {
	params := model.Params{
		"steps":   p.Steps(),
		"memory":  p.Memory(),
		"verbose": p.verbose,
	}

	for _, step := range p.steps {
		params[step.Name] = step.Estimator
		getter, ok := step.Estimator.(model.ParamGetter)
		if !ok {
			continue
		}
		for key, value := range getter.GetParams() {
			params[step.Name+paramSep+key] = value
		}
	}

	return params
}

// SetParams sets the pipeline parameters. A step name replaces the estimator of that step,
// stepname__parameter is forwarded to the SetParams method of the step.
func (p *Pipeline) SetParams(params model.Params) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}

	if value, ok := params["steps"]; ok {
		steps, ok := value.([]Step)
		if !ok {
			return errors.Wrapf(ErrInvalidParam, "steps must be []Step, got %T", value)
		}
		p.steps = append([]Step(nil), steps...)
		p.shared = nil
		p.fitted = false
	}

	nested := make(map[string]model.Params)
	// sorted so that errors do not depend on map iteration order
	for _, key := range sortedKeys(params) {
		value := params[key]
		switch key {
		case "steps":
			continue
		case "memory":
			if value == nil {
				p.setMemory(nil)

				continue
			}
			mem, ok := value.(memory.Memory)
			if !ok {
				return errors.Wrapf(ErrInvalidParam, "memory must be a memory.Memory, got %T", value)
			}
			p.setMemory(mem)

			continue
		case "verbose":
			verbose, ok := value.(bool)
			if !ok {
				return errors.Wrapf(ErrInvalidParam, "verbose must be a bool, got %T", value)
			}
			p.verbose = verbose

			continue
		}

		name, param, isNested := strings.Cut(key, paramSep)
		idx := p.stepIndex(name)
		if idx < 0 {
			return errors.Wrapf(ErrInvalidParam, "%q: no step named %q", key, name)
		}
		if !isNested {
			p.steps[idx].Estimator = value
			delete(p.shared, name)
			p.fitted = false

			continue
		}
		if nested[name] == nil {
			nested[name] = model.Params{}
		}
		nested[name][param] = value
	}

	for _, name := range sortedKeys(nested) {
		est := p.ownStep(name)
		setter, ok := est.(model.ParamSetter)
		if !ok {
			return errors.Wrapf(ErrInvalidParam, "step %q (%T) does not accept parameters", name, est)
		}
		if err := setter.SetParams(nested[name]); err != nil {
			return errors.Wrapf(err, "unable to set parameters of step %q", name)
		}
		p.fitted = false
	}

	return nil
}

// ownStep returns the estimator of the named step. A step shared with the memory is replaced by a clone first,
// so that changing it leaves the cached entry and the other pipelines untouched.
func (p *Pipeline) ownStep(name string) any {
	idx := p.stepIndex(name)
	est := p.steps[idx].Estimator
	if !p.shared[name] {
		return est
	}
	if cloner, ok := est.(model.Cloner); ok {
		est = cloner.Clone()
		p.steps[idx].Estimator = est
	}
	delete(p.shared, name)

	return est
}

func (p *Pipeline) stepIndex(name string) int {
	for idx, step := range p.steps {
		if step.Name == name {
			return idx
		}
	}

	return -1
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}
