package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

// fitRun carries the output of the intermediate steps to the final estimator.
type fitRun struct {
	log    *zap.Logger
	final  *model.StepInfo
	X      mat.Matrix
	params model.Params
	y      []float64
}

func (p *Pipeline) logElapsed(log *zap.Logger, idx int, start time.Time) {
	if !p.verbose {
		return
	}
	log.Info(fmt.Sprintf("[Pipeline] (step %d of %d) Processing %s", idx+1, len(p.steps), p.steps[idx].Name),
		zap.Duration("total", time.Since(start)))
}

func (p *Pipeline) prepareOptions(infos []*model.StepInfo) error {
	parent := model.StartStep
	for _, info := range infos {
		for _, opt := range p.opts {
			if err := opt.PrepareStep(parent, info); err != nil {
				return errors.Wrap(err, "unable to prepare step")
			}
		}
		parent = info
	}

	return nil
}

func (p *Pipeline) onStepFit(info *model.StepInfo, report model.FitReport) error {
	for _, opt := range p.opts {
		if err := opt.OnStepFit(info, report); err != nil {
			return errors.Wrapf(err, "unable to report fit of step %q", info.Name)
		}
	}

	return nil
}

// fit validates the pipeline and fits every step but the last, in order.
// Each fitted step replaces the step it was fitted from.
func (p *Pipeline) fit(X mat.Matrix, y []float64, params model.Params) (*fitRun, error) {
	if X == nil {
		return nil, ErrInputMustBeSet
	}
	p.fitted = false
	p.shared = make(map[string]bool)

	infos, err := p.stepInfos()
	if err != nil {
		return nil, err
	}
	stepParams, err := p.routeFitParams(params)
	if err != nil {
		return nil, err
	}
	if err := p.prepareOptions(infos); err != nil {
		return nil, err
	}

	log := p.logger.With(zap.String("fit_id", uuid.NewString()))
	last := len(p.steps) - 1
	Xt, yt := X, y

	for idx := 0; idx < last; idx++ {
		info := infos[idx]
		start := time.Now()
		if info.Kind == model.PassthroughKind {
			p.logElapsed(log, idx, start)

			continue
		}

		rowsIn := rowCount(Xt)
		res, err := p.fitStep(log, info, p.steps[idx].Estimator, Xt, yt, stepParams[info.Name])
		if err != nil {
			return nil, errors.Wrapf(err, "step %q", info.Name)
		}
		p.steps[idx].Estimator = res.fitted
		if res.shared {
			p.shared[info.Name] = true
		}
		Xt, yt = res.X, res.y

		err = p.onStepFit(info, model.FitReport{
			Duration: time.Since(start),
			RowsIn:   rowsIn,
			RowsOut:  rowCount(Xt),
			Cached:   res.cached,
		})
		if err != nil {
			return nil, err
		}
		p.logElapsed(log, idx, start)
	}

	return &fitRun{
		log:    log,
		final:  infos[last],
		X:      Xt,
		y:      yt,
		params: stepParams[infos[last].Name],
	}, nil
}

// runFinal runs fn against the final estimator, then reports the fit to the options.
func (p *Pipeline) runFinal(run *fitRun, fn func(est any) (rowsOut int, err error)) error {
	start := time.Now()
	rowsIn := rowCount(run.X)

	rowsOut, err := fn(p.FinalEstimator())
	if err != nil {
		return errors.Wrapf(err, "final step %q", run.final.Name)
	}

	if run.final.Kind != model.PassthroughKind {
		err = p.onStepFit(run.final, model.FitReport{
			Duration: time.Since(start),
			RowsIn:   rowsIn,
			RowsOut:  rowsOut,
		})
		if err != nil {
			return err
		}
	}
	p.logElapsed(run.log, len(p.steps)-1, start)

	for _, opt := range p.opts {
		if err := opt.Finish(); err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}
	p.fitted = true

	return nil
}

// Fit fits the transformers and resamplers one after the other, then fits the final estimator
// on the transformed and resampled data.
// params are routed to the steps by name: the parameter p of step s is passed as s__p.
func (p *Pipeline) Fit(X mat.Matrix, y []float64, params model.Params) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}
	run, err := p.fit(X, y, params)
	if err != nil {
		return err
	}

	return p.runFinal(run, func(est any) (int, error) {
		if isPassthrough(est) {
			return rowCount(run.X), nil
		}
		if fitter, ok := est.(model.Fitter); ok {
			return rowCount(run.X), fitter.Fit(run.X, run.y, run.params)
		}
		Xt, _, err := est.(model.Resampler).FitResample(run.X, run.y, run.params) //nolint:forcetypeassert
		if err != nil {
			return 0, errors.Wrap(err, "unable to fit and resample")
		}

		return rowCount(Xt), nil
	})
}

// FitTransform fits the pipeline and returns the output of the final estimator's transform.
// With a passthrough final step, it returns the output of the last intermediate step.
func (p *Pipeline) FitTransform(X mat.Matrix, y []float64, params model.Params) (mat.Matrix, error) {
	if err := p.checkSupport(MethodFitTransform); err != nil {
		return nil, err
	}
	run, err := p.fit(X, y, params)
	if err != nil {
		return nil, err
	}

	var Xt mat.Matrix
	err = p.runFinal(run, func(est any) (int, error) {
		if isPassthrough(est) {
			Xt = run.X

			return rowCount(Xt), nil
		}
		out, err := fitTransform(est, run.X, run.y, run.params)
		if err != nil {
			return 0, err
		}
		Xt = out

		return rowCount(Xt), nil
	})
	if err != nil {
		return nil, err
	}

	return Xt, nil
}

// FitResample fits the pipeline and returns the output of the final estimator's resample.
// With a passthrough final step, it returns the output of the last intermediate step.
func (p *Pipeline) FitResample(X mat.Matrix, y []float64, params model.Params) (mat.Matrix, []float64, error) {
	if err := p.checkSupport(MethodFitResample); err != nil {
		return nil, nil, err
	}
	run, err := p.fit(X, y, params)
	if err != nil {
		return nil, nil, err
	}

	var (
		Xt mat.Matrix
		yt []float64
	)
	err = p.runFinal(run, func(est any) (int, error) {
		if isPassthrough(est) {
			Xt, yt = run.X, run.y

			return rowCount(Xt), nil
		}
		outX, outY, err := est.(model.Resampler).FitResample(run.X, run.y, run.params) //nolint:forcetypeassert
		if err != nil {
			return 0, errors.Wrap(err, "unable to fit and resample")
		}
		Xt, yt = outX, outY

		return rowCount(Xt), nil
	})
	if err != nil {
		return nil, nil, err
	}

	return Xt, yt, nil
}

// FitPredict fits the pipeline and returns the output of the final estimator's fit-predict.
func (p *Pipeline) FitPredict(X mat.Matrix, y []float64, params model.Params) ([]float64, error) {
	if err := p.checkSupport(MethodFitPredict); err != nil {
		return nil, err
	}
	run, err := p.fit(X, y, params)
	if err != nil {
		return nil, err
	}

	var pred []float64
	err = p.runFinal(run, func(est any) (int, error) {
		out, err := est.(model.FitPredictor).FitPredict(run.X, run.y, run.params) //nolint:forcetypeassert
		if err != nil {
			return 0, errors.Wrap(err, "unable to fit and predict")
		}
		pred = out

		return len(pred), nil
	})
	if err != nil {
		return nil, err
	}

	return pred, nil
}
