package pipeline

import (
	"encoding"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/memory"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

var errNotRestorable = errors.New("cached step cannot be restored")

type stepResult struct {
	fitted any
	X      mat.Matrix
	y      []float64
	cached bool
	// shared is set when fitted is the object held by the memory, so other pipelines may hold it too.
	shared bool
}

func rowCount(X mat.Matrix) int {
	r, _ := X.Dims()

	return r
}

// fitTransform fits est and returns the transformed features.
func fitTransform(est any, X mat.Matrix, y []float64, params model.Params) (mat.Matrix, error) {
	if ft, ok := est.(model.FitTransformer); ok {
		Xt, err := ft.FitTransform(X, y, params)
		if err != nil {
			return nil, errors.Wrap(err, "unable to fit and transform")
		}

		return Xt, nil
	}

	fitter, ok := est.(model.Fitter)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidStep, "%T does not implement fit", est)
	}
	transformer, ok := est.(model.Transformer)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidStep, "%T does not implement transform", est)
	}

	if err := fitter.Fit(X, y, params); err != nil {
		return nil, errors.Wrap(err, "unable to fit")
	}
	Xt, err := transformer.Transform(X)
	if err != nil {
		return nil, errors.Wrap(err, "unable to transform")
	}

	return Xt, nil
}

// runStep fits an intermediate step without any cache.
func runStep(kind model.StepKind, est any, X mat.Matrix, y []float64, params model.Params) (*stepResult, error) {
	switch kind {
	case model.ResamplerKind:
		resampler, ok := est.(model.Resampler)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidStep, "%T does not implement resample", est)
		}
		Xt, yt, err := resampler.FitResample(X, y, params)
		if err != nil {
			return nil, errors.Wrap(err, "unable to fit and resample")
		}
		if Xt == nil {
			return nil, errors.Wrap(ErrRowMismatch, "resampler returned no features")
		}
		if yt != nil && rowCount(Xt) != len(yt) {
			return nil, errors.Wrapf(ErrRowMismatch, "resampler returned %d rows and %d labels", rowCount(Xt), len(yt))
		}

		return &stepResult{fitted: est, X: Xt, y: yt}, nil
	case model.TransformerKind:
		Xt, err := fitTransform(est, X, y, params)
		if err != nil {
			return nil, err
		}
		if Xt == nil || rowCount(Xt) != rowCount(X) {
			return nil, errors.Wrap(ErrRowMismatch, "transformers must keep the number of rows")
		}

		return &stepResult{fitted: est, X: Xt, y: y}, nil
	}

	return nil, errors.Wrapf(ErrInvalidStep, "cannot fit a %s step", kind)
}

func cacheKey(info *model.StepInfo, est any, hyper model.Params, X mat.Matrix, y []float64, params model.Params) (string, error) {
	kb := memory.NewKeyBuilder().
		String(string(info.Kind)).
		String(fmt.Sprintf("%T", est))
	if err := kb.JSON(hyper); err != nil {
		return "", errors.Wrap(err, "hyper-parameters")
	}
	kb.Matrix(X).Floats(y)
	if err := kb.JSON(params); err != nil {
		return "", errors.Wrap(err, "fit parameters")
	}

	return kb.Sum(), nil
}

func newEntry(res *stepResult) *memory.Entry {
	entry := &memory.Entry{
		X:    memory.CopyMatrix(res.X),
		Y:    res.y,
		Step: res.fitted,
	}
	if marshaler, ok := res.fitted.(encoding.BinaryMarshaler); ok {
		state, err := marshaler.MarshalBinary()
		if err == nil {
			entry.State = state
		}
	}

	return entry
}

// restoreStep returns the fitted step of entry. A step with a binary state is restored into a fresh clone,
// so that pipelines never share it. Steps without state are shared with the memory.
func restoreStep(entry *memory.Entry, newClone func() any) (any, bool, error) {
	if entry.State != nil {
		clone := newClone()
		if unmarshaler, ok := clone.(encoding.BinaryUnmarshaler); ok {
			if err := unmarshaler.UnmarshalBinary(entry.State); err != nil {
				return nil, false, errors.Wrap(err, "unable to restore fitted step")
			}

			return clone, false, nil
		}
	}
	if entry.Step != nil {
		return entry.Step, true, nil
	}

	return nil, false, errNotRestorable
}

// fitStep fits an intermediate step, going through the memory when the pipeline has one.
// With a memory, the step is cloned first and the fitted clone replaces the original step.
func (p *Pipeline) fitStep(log *zap.Logger, info *model.StepInfo, est any, X mat.Matrix, y []float64, params model.Params) (*stepResult, error) {
	if p.cache == nil {
		return runStep(info.Kind, est, X, y, params)
	}

	cloner, cloneable := est.(model.Cloner)
	getter, hasParams := est.(model.ParamGetter)
	if !cloneable || !hasParams {
		log.Debug("step is not cacheable, fitting it directly",
			zap.String("step", info.Name), zap.String("type", info.Type))

		return runStep(info.Kind, est, X, y, params)
	}

	clone := cloner.Clone()
	key, err := cacheKey(info, est, getter.GetParams(), X, y, params)
	if err != nil {
		log.Debug("unable to compute cache key, fitting step directly", zap.String("step", info.Name), zap.Error(err))

		return runStep(info.Kind, clone, X, y, params)
	}

	out, err := p.cache.Do(key, func() (*memory.Entry, error) {
		res, err := runStep(info.Kind, clone, X, y, params)
		if err != nil {
			return nil, err
		}

		return newEntry(res), nil
	})
	if err != nil {
		return nil, err
	}

	if out.LoadErr != nil {
		log.Warn("unable to load cached step, it was fitted again", zap.String("step", info.Name), zap.Error(out.LoadErr))
	}
	switch {
	case out.StoreErr == nil:
	case errors.Is(out.StoreErr, memory.ErrNotPersistable):
		log.Debug("fitted step cannot be persisted", zap.String("step", info.Name))
	default:
		log.Warn("unable to store fitted step", zap.String("step", info.Name), zap.Error(out.StoreErr))
	}

	fitted, shared, err := restoreStep(out.Entry, cloner.Clone)
	if err != nil {
		log.Debug("cached step cannot be restored, fitting it directly", zap.String("step", info.Name), zap.Error(err))

		return runStep(info.Kind, cloner.Clone(), X, y, params)
	}

	log.Debug("step served by memory", zap.String("step", info.Name), zap.Bool("hit", out.Hit), zap.String("key", key))

	return &stepResult{fitted: fitted, X: out.Entry.X, y: out.Entry.Y, cached: out.Hit, shared: shared}, nil
}
