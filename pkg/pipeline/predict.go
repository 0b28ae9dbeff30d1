package pipeline

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

// ScoreFunc scores predictions against the true labels.
type ScoreFunc func(yTrue, yPred []float64) (float64, error)

func (p *Pipeline) checkFitted(X mat.Matrix) error {
	if !p.fitted {
		return ErrNotFitted
	}
	if X == nil {
		return ErrInputMustBeSet
	}

	return nil
}

func checkTransformRows(name string, in, out mat.Matrix) error {
	if out == nil || rowCount(out) != rowCount(in) {
		return errors.Wrapf(ErrRowMismatch, "step %q: transformers must keep the number of rows", name)
	}

	return nil
}

// filterRows runs the intermediate steps without fitting them. Resamplers implementing model.RowFilter remove
// rows, the others are skipped. The returned rows are relative to X.
func (p *Pipeline) filterRows(X mat.Matrix) (mat.Matrix, *model.Rows, error) {
	rows := model.AllRows(rowCount(X))
	Xt := X

	for _, step := range p.steps[:len(p.steps)-1] {
		est := step.Estimator
		if isPassthrough(est) {
			continue
		}

		if _, ok := est.(model.Resampler); ok {
			filter, ok := est.(model.RowFilter)
			if !ok {
				continue
			}

			rowsIn := rowCount(Xt)
			out, stepRows, err := filter.FilterRows(Xt)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "step %q: unable to filter rows", step.Name)
			}
			if out == nil {
				return nil, nil, errors.Wrapf(ErrRowMismatch, "step %q returned no features", step.Name)
			}
			if stepRows == nil {
				if rowCount(out) != rowsIn {
					return nil, nil, errors.Wrapf(ErrRowMismatch, "step %q removed rows without reporting them", step.Name)
				}
				Xt = out

				continue
			}

			if err := stepRows.Validate(rowsIn); err != nil {
				return nil, nil, errors.Wrapf(err, "step %q", step.Name)
			}
			if rowCount(out) != len(stepRows.Kept) {
				return nil, nil, errors.Wrapf(ErrRowMismatch, "step %q kept %d rows but returned %d", step.Name, len(stepRows.Kept), rowCount(out))
			}
			Xt = out
			rows = stepRows.Compose(rows)

			continue
		}

		transformer, ok := est.(model.Transformer)
		if !ok {
			return nil, nil, errors.Wrapf(ErrInvalidStep, "step %q (%T)", step.Name, est)
		}
		out, err := transformer.Transform(Xt)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "step %q: unable to transform", step.Name)
		}
		if err := checkTransformRows(step.Name, Xt, out); err != nil {
			return nil, nil, err
		}
		Xt = out
	}

	return Xt, rows, nil
}

// preparePredict filters the rows of X and records them for AlignLabels.
func (p *Pipeline) preparePredict(X mat.Matrix) (mat.Matrix, error) {
	p.rows = nil
	if err := p.checkFitted(X); err != nil {
		return nil, err
	}

	Xt, rows, err := p.filterRows(X)
	if err != nil {
		return nil, err
	}
	p.rows = rows

	return Xt, nil
}

// Predict applies the transformers and row filters to X, then predicts with the final estimator.
// The predictions are aligned with Rows().Kept.
func (p *Pipeline) Predict(X mat.Matrix) ([]float64, error) {
	if err := p.checkSupport(MethodPredict); err != nil {
		return nil, err
	}
	Xt, err := p.preparePredict(X)
	if err != nil {
		return nil, err
	}

	pred, err := p.FinalEstimator().(model.Predictor).Predict(Xt) //nolint:forcetypeassert
	if err != nil {
		return nil, errors.Wrapf(err, "final step %q: unable to predict", p.steps[len(p.steps)-1].Name)
	}

	return pred, nil
}

// PredictProba applies the transformers and row filters to X, then predicts probabilities with the final estimator.
func (p *Pipeline) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := p.checkSupport(MethodPredictProba); err != nil {
		return nil, err
	}
	Xt, err := p.preparePredict(X)
	if err != nil {
		return nil, err
	}

	proba, err := p.FinalEstimator().(model.ProbaPredictor).PredictProba(Xt) //nolint:forcetypeassert
	if err != nil {
		return nil, errors.Wrapf(err, "final step %q: unable to predict probabilities", p.steps[len(p.steps)-1].Name)
	}

	return proba, nil
}

// Transform applies the transformers, then the final estimator's transform.
// Resamplers are skipped, so the output keeps the rows of X.
func (p *Pipeline) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.checkSupport(MethodTransform); err != nil {
		return nil, err
	}
	if err := p.checkFitted(X); err != nil {
		return nil, err
	}

	Xt := X
	last := len(p.steps) - 1
	for idx, step := range p.steps {
		if isPassthrough(step.Estimator) {
			continue
		}
		if _, ok := step.Estimator.(model.Resampler); ok && idx < last {
			continue
		}
		transformer, ok := step.Estimator.(model.Transformer)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidStep, "step %q (%T)", step.Name, step.Estimator)
		}
		out, err := transformer.Transform(Xt)
		if err != nil {
			return nil, errors.Wrapf(err, "step %q: unable to transform", step.Name)
		}
		if err := checkTransformRows(step.Name, Xt, out); err != nil {
			return nil, err
		}
		Xt = out
	}

	return Xt, nil
}

// AlignLabels returns the labels of the rows kept by the last prediction, in order.
// y must hold one label per row of the input of that prediction.
func (p *Pipeline) AlignLabels(y []float64) ([]float64, error) {
	if p.rows == nil {
		return nil, ErrNoRows
	}
	if total := len(p.rows.Kept) + len(p.rows.Outliers); len(y) != total {
		return nil, errors.Wrapf(ErrRowMismatch, "got %d labels for %d rows", len(y), total)
	}

	out := make([]float64, len(p.rows.Kept))
	for i, idx := range p.rows.Kept {
		out[i] = y[idx]
	}

	return out, nil
}

// Score predicts X, drops the labels of the rows removed by the row filters, then scores the predictions.
func (p *Pipeline) Score(X mat.Matrix, y []float64, score ScoreFunc) (float64, error) {
	if score == nil {
		return 0, errors.Wrap(ErrInvalidParam, "score function must be set")
	}
	pred, err := p.Predict(X)
	if err != nil {
		return 0, err
	}
	yTrue, err := p.AlignLabels(y)
	if err != nil {
		return 0, err
	}

	value, err := score(yTrue, pred)
	if err != nil {
		return 0, errors.Wrap(err, "unable to score predictions")
	}

	return value, nil
}
