package pipeline

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/memory"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

// Step is a named estimator.
type Step struct {
	Estimator any
	Name      string
}

type passthrough struct{}

func (passthrough) String() string { return "passthrough" }

// Passthrough marks a step that is skipped. A nil estimator is skipped as well.
var Passthrough any = passthrough{}

// Pipeline is a pipeline of transformers and resamplers with a final estimator.
type Pipeline struct {
	cache   *memory.Cache
	logger  *zap.Logger
	rows    *model.Rows
	shared  map[string]bool
	steps   []Step
	opts    []model.PipelineOption
	verbose bool
	fitted  bool
}

// New creates a new pipeline. The steps are validated when the pipeline is fitted.
func New(steps []Step, opts ...Option) (*Pipeline, error) {
	pipe := &Pipeline{
		steps:  append([]Step(nil), steps...),
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(pipe)
	}

	for _, opt := range pipe.opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// Make creates a pipeline whose step names are the lower-cased type names of the estimators.
func Make(estimators []any, opts ...Option) (*Pipeline, error) {
	return New(NameEstimators(estimators...), opts...)
}

// NameEstimators names the estimators after their type. Repeated names get a "-1", "-2", ... suffix.
func NameEstimators(estimators ...any) []Step {
	names := make([]string, len(estimators))
	count := make(map[string]int)
	for i, est := range estimators {
		names[i] = estimatorName(est)
		count[names[i]]++
	}

	for name, n := range count {
		if n == 1 {
			delete(count, name)
		}
	}

	steps := make([]Step, len(estimators))
	for i := len(estimators) - 1; i >= 0; i-- {
		name := names[i]
		if n, ok := count[name]; ok {
			count[name]--
			name = fmt.Sprintf("%s-%d", name, n)
		}
		steps[i] = Step{Name: name, Estimator: estimators[i]}
	}

	return steps
}

func estimatorName(est any) string {
	if isPassthrough(est) {
		return "passthrough"
	}

	t := reflect.TypeOf(est)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return strings.ToLower(t.Name())
}

func (p *Pipeline) setMemory(mem memory.Memory) {
	if mem == nil {
		p.cache = nil

		return
	}
	p.cache = memory.NewCache(mem)
}

// Memory returns the memory used to cache fitted steps, if any.
func (p *Pipeline) Memory() memory.Memory {
	if p.cache == nil {
		return nil
	}

	return p.cache.Memory()
}

// Steps returns a copy of the steps. After a fit, the estimators are the fitted ones.
func (p *Pipeline) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// NamedStep returns the estimator of the step called name.
func (p *Pipeline) NamedStep(name string) (any, bool) {
	for _, step := range p.steps {
		if step.Name == name {
			return step.Estimator, true
		}
	}

	return nil, false
}

// Len returns the number of steps, the final estimator included.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// FinalEstimator returns the estimator of the last step.
func (p *Pipeline) FinalEstimator() any {
	if len(p.steps) == 0 {
		return nil
	}

	return p.steps[len(p.steps)-1].Estimator
}

// IsFitted reports whether the last fit succeeded.
func (p *Pipeline) IsFitted() bool {
	return p.fitted
}

// Rows returns the rows kept and removed by the last predict call, relative to its input.
// It returns nil before any prediction.
func (p *Pipeline) Rows() *model.Rows {
	if p.rows == nil {
		return nil
	}

	return &model.Rows{
		Kept:     append([]int{}, p.rows.Kept...),
		Outliers: append([]int{}, p.rows.Outliers...),
	}
}

// Method is a method of the pipeline that depends on the final estimator.
type Method string

const (
	MethodFit          Method = "fit"
	MethodFitTransform Method = "fit_transform"
	MethodFitResample  Method = "fit_resample"
	MethodFitPredict   Method = "fit_predict"
	MethodPredict      Method = "predict"
	MethodPredictProba Method = "predict_proba"
	MethodTransform    Method = "transform"
	MethodScore        Method = "score"
)

// Supports reports whether the final estimator provides method.
// Calling a method that is not supported returns ErrNotSupported.
func (p *Pipeline) Supports(method Method) bool {
	if len(p.steps) == 0 {
		return false
	}

	final := p.FinalEstimator()
	pass := isPassthrough(final)
	_, fitter := final.(model.Fitter)

	switch method {
	case MethodFit:
		_, resampler := final.(model.Resampler)

		return pass || fitter || resampler
	case MethodFitTransform:
		_, fitTransformer := final.(model.FitTransformer)
		_, transformer := final.(model.Transformer)

		return pass || fitTransformer || (fitter && transformer)
	case MethodFitResample:
		_, resampler := final.(model.Resampler)

		return pass || resampler
	case MethodFitPredict:
		_, ok := final.(model.FitPredictor)

		return ok
	case MethodPredict, MethodScore:
		_, ok := final.(model.Predictor)

		return ok
	case MethodPredictProba:
		_, ok := final.(model.ProbaPredictor)

		return ok
	case MethodTransform:
		_, ok := final.(model.Transformer)

		return pass || ok
	}

	return false
}

func (p *Pipeline) checkSupport(method Method) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}
	if len(p.steps) == 0 {
		return ErrNoSteps
	}
	if !p.Supports(method) {
		return errors.Wrapf(ErrNotSupported, "%s on %T", method, p.FinalEstimator())
	}

	return nil
}

var (
	_ model.Fitter         = (*Pipeline)(nil)
	_ model.FitTransformer = (*Pipeline)(nil)
	_ model.Resampler      = (*Pipeline)(nil)
	_ model.FitPredictor   = (*Pipeline)(nil)
	_ model.Predictor      = (*Pipeline)(nil)
	_ model.ProbaPredictor = (*Pipeline)(nil)
	_ model.Transformer    = (*Pipeline)(nil)
	_ model.ParamGetter    = (*Pipeline)(nil)
	_ model.ParamSetter    = (*Pipeline)(nil)
)
